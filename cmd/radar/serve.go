package main

import (
	"context"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	cronrunner "roleradar/internal/cron"
	"roleradar/internal/handler"

	_ "roleradar/docs"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server with the scheduled search and processing jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := buildApp(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		// The graph is a derived projection; rebuild it from the relational
		// store so a deleted or stale snapshot heals on startup.
		if err := a.graph.Rebuild(ctx, a.store); err != nil {
			log.Warn("graph rebuild failed, serving last snapshot", zap.Error(err))
		}

		if strings.EqualFold(cfg.App.Env, "dev") {
			gin.SetMode(gin.DebugMode)
		} else {
			gin.SetMode(gin.ReleaseMode)
		}
		engine := gin.New()
		engine.Use(gin.Recovery())
		engine.Use(corsMiddleware())

		healthHandler := &handler.HealthHandler{DB: a.db.Gorm, Graph: a.graph}
		healthHandler.Register(engine)
		companyHandler := &handler.CompanyHandler{Repo: a.store, Report: a.report, Graph: a.graph}
		companyHandler.Register(engine)
		oppHandler := &handler.OpportunityHandler{Repo: a.store}
		oppHandler.Register(engine)
		signalHandler := &handler.SignalHandler{Repo: a.store}
		signalHandler.Register(engine)
		resultHandler := &handler.ResultHandler{Repo: a.store, Resolver: a.resolver, BatchLimit: cfg.Processing.BatchLimit}
		resultHandler.Register(engine)
		summaryHandler := &handler.SummaryHandler{Report: a.report}
		summaryHandler.Register(engine)
		graphHandler := &handler.GraphHandler{Graph: a.graph}
		graphHandler.Register(engine)
		streamHandler := &handler.StreamHandler{Hub: a.hub, Logger: log}
		streamHandler.Register(engine)

		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

		srv := &http.Server{
			Addr:    cfg.Server.HTTPAddr,
			Handler: engine,
		}

		cronRunner := cronrunner.New(log, ctx)
		if cfg.Cron.Enabled {
			registerJobs(cronRunner, a, log)
			cronRunner.Start()
			defer cronRunner.Stop()
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
		}()

		select {
		case <-ctx.Done():
			log.Info("shutdown requested")
		case err := <-errCh:
			log.Error("server error", zap.Error(err))
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	},
}

func registerJobs(runner *cronrunner.Runner, a *app, log *zap.Logger) {
	batch := a.cfg.Processing.BatchLimit

	if _, err := runner.Add(a.cfg.Cron.Search, func(ctx context.Context) {
		if _, err := a.ingestor.RunSearches(ctx, a.cfg.Search.Queries()); err != nil {
			log.Warn("cron search pass failed", zap.Error(err))
			return
		}
		if _, err := a.resolver.ProcessUnprocessed(ctx, batch); err != nil {
			log.Warn("cron post-search processing failed", zap.Error(err))
		}
	}); err != nil {
		log.Warn("cron register search failed", zap.Error(err))
	}

	if _, err := runner.Add(a.cfg.Cron.Process, func(ctx context.Context) {
		if _, err := a.resolver.ProcessUnprocessed(ctx, batch); err != nil {
			log.Warn("cron processing pass failed", zap.Error(err))
		}
	}); err != nil {
		log.Warn("cron register process failed", zap.Error(err))
	}

	if _, err := runner.Add(a.cfg.Cron.Rescore, func(ctx context.Context) {
		if _, err := a.resolver.RescoreAll(ctx); err != nil {
			log.Warn("cron rescore pass failed", zap.Error(err))
		}
	}); err != nil {
		log.Warn("cron register rescore failed", zap.Error(err))
	}

	if _, err := runner.Add(a.cfg.Cron.GraphRebuild, func(ctx context.Context) {
		if err := a.graph.Rebuild(ctx, a.store); err != nil {
			log.Warn("cron graph rebuild failed", zap.Error(err))
		}
	}); err != nil {
		log.Warn("cron register graph rebuild failed", zap.Error(err))
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
