package main

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"roleradar/internal/analysis"
	"roleradar/internal/config"
	"roleradar/internal/db"
	"roleradar/internal/events"
	"roleradar/internal/graph"
	"roleradar/internal/report"
	gormrepository "roleradar/internal/repository/gorm"
	"roleradar/internal/resolver"
	"roleradar/internal/roles"
	"roleradar/internal/scoring"
	"roleradar/internal/search"
	"roleradar/internal/secrets"
)

// app is the wired object graph shared by serve and the one-shot commands.
type app struct {
	cfg      config.Config
	log      *zap.Logger
	db       *db.DB
	store    *gormrepository.Store
	graph    *graph.Store
	hub      *events.Hub
	analyzer analysis.Analyzer
	ingestor *search.Ingestor
	resolver *resolver.Engine
	report   *report.Service
}

func buildApp(ctx context.Context, cfg config.Config, log *zap.Logger) (*app, error) {
	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		log.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		db.Close(dbConn)
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	store := gormrepository.New(dbConn.Gorm)

	graphStore, err := graph.Open(cfg.Graph.Path)
	if err != nil {
		db.Close(dbConn)
		return nil, fmt.Errorf("open graph: %w", err)
	}

	analyzer, err := analysis.NewGeminiAnalyzer(ctx, secrets.Get(secrets.AnalysisAPIKey), analysis.GeminiOptions{
		Model:      cfg.Analysis.Model,
		Timeout:    cfg.Analysis.Timeout,
		MaxRetries: cfg.Analysis.MaxRetries,
	}, log)
	if err != nil {
		db.Close(dbConn)
		return nil, fmt.Errorf("init analyzer: %w", err)
	}

	hub := events.NewHub()
	searchClient := search.NewClient(
		&http.Client{Timeout: cfg.Search.Timeout},
		cfg.Search.BaseURL,
		secrets.Get(secrets.SearchAPIKey),
		cfg.Search.Depth,
	)
	ingestor := &search.Ingestor{
		Repo:       store,
		Client:     searchClient,
		Logger:     log,
		Events:     hub,
		MaxResults: cfg.Search.MaxResults,
	}
	resolverEngine := &resolver.Engine{
		Repo:            store,
		Graph:           graphStore,
		Analyzer:        analyzer,
		Roles:           roles.NewClassifier(roles.DefaultRules()),
		Scorer:          scoring.New(cfg.Scoring),
		Logger:          log,
		Events:          hub,
		NoCompanyPolicy: cfg.Processing.NoCompanyPolicy,
	}
	reportSvc := &report.Service{
		Repo:     store,
		Analyzer: analyzer,
		Logger:   log,
	}

	return &app{
		cfg:      cfg,
		log:      log,
		db:       dbConn,
		store:    store,
		graph:    graphStore,
		hub:      hub,
		analyzer: analyzer,
		ingestor: ingestor,
		resolver: resolverEngine,
		report:   reportSvc,
	}, nil
}

func (a *app) Close() {
	_ = db.Close(a.db)
	_ = a.log.Sync()
}
