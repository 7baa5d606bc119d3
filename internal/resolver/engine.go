package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"roleradar/internal/analysis"
	"roleradar/internal/events"
	"roleradar/internal/graph"
	"roleradar/internal/models"
	"roleradar/internal/repository"
	"roleradar/internal/roles"
	"roleradar/internal/scoring"
)

// What happens to a record whose extraction yields no company name.
const (
	NoCompanyDiscard    = "discard"
	NoCompanyQuarantine = "quarantine"
)

// A detected signal below or at this confidence is not persisted.
const signalConfidenceFloor = 0.5

const maxDescriptionLen = 500

// Engine turns raw search results into companies, opportunities and hiring
// signals. Records are processed strictly one at a time; each record's
// persistence steps run in a single transaction, with analysis calls made
// before the transaction opens so no network I/O holds a database lock.
type Engine struct {
	Repo     repository.Repository
	Graph    *graph.Store
	Analyzer analysis.Analyzer
	Roles    *roles.Classifier
	Scorer   *scoring.Engine
	Logger   *zap.Logger
	Events   *events.Hub

	// NoCompanyPolicy is NoCompanyDiscard or NoCompanyQuarantine.
	NoCompanyPolicy string
}

// BatchResult reports one ProcessUnprocessed pass.
type BatchResult struct {
	Fetched     int `json:"fetched"`
	Processed   int `json:"processed"`
	Quarantined int `json:"quarantined"`
	Failed      int `json:"failed"`

	Companies     int `json:"companies_created"`
	Opportunities int `json:"opportunities_created"`
	Signals       int `json:"signals_created"`
}

// recordOutcome carries what one record's transaction produced, so graph
// updates and events apply only after commit.
type recordOutcome struct {
	companyCreated bool
	company        *models.Company
	opportunity    *models.Opportunity
	signal         *models.HiringSignal
	quarantined    bool
}

// ProcessUnprocessed drains up to limit unprocessed records. A record that
// fails to persist is left unprocessed and retried on the next pass; the
// batch carries on with the remaining records.
func (e *Engine) ProcessUnprocessed(ctx context.Context, limit int) (BatchResult, error) {
	var res BatchResult
	records, err := e.Repo.ListUnprocessedSearchResults(ctx, limit)
	if err != nil {
		return res, fmt.Errorf("list unprocessed results: %w", err)
	}
	res.Fetched = len(records)
	for i := range records {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		outcome, err := e.processRecord(ctx, &records[i])
		if err != nil {
			res.Failed++
			e.Logger.Error("record processing failed",
				zap.Uint64("result_id", records[i].ID),
				zap.String("url", records[i].URL),
				zap.Error(err))
			continue
		}
		if outcome.quarantined {
			res.Quarantined++
			continue
		}
		res.Processed++
		if outcome.companyCreated {
			res.Companies++
		}
		if outcome.opportunity != nil {
			res.Opportunities++
		}
		if outcome.signal != nil {
			res.Signals++
		}
		e.applyGraph(outcome)
		e.publish(outcome, records[i].ID)
	}
	e.Logger.Info("processing pass complete",
		zap.Int("fetched", res.Fetched),
		zap.Int("processed", res.Processed),
		zap.Int("quarantined", res.Quarantined),
		zap.Int("failed", res.Failed),
		zap.Int("companies", res.Companies),
		zap.Int("opportunities", res.Opportunities),
		zap.Int("signals", res.Signals))
	return res, nil
}

func (e *Engine) processRecord(ctx context.Context, rec *models.SearchResult) (recordOutcome, error) {
	var out recordOutcome

	text := rec.Title + "\n\n" + rec.Content
	ext := e.Analyzer.ExtractEntities(ctx, text)
	if ext.CompanyName == "" {
		if err := e.handleNoCompany(ctx, rec, &out); err != nil {
			return recordOutcome{}, err
		}
		return out, nil
	}
	det := e.Analyzer.DetectHiringSignal(ctx, text, ext.CompanyName)

	now := time.Now().UTC()
	err := e.Repo.InTx(ctx, func(tx *gorm.DB) error {
		company, err := e.resolveCompany(ctx, tx, ext, rec, now, &out)
		if err != nil {
			return err
		}
		if err := e.upsertOpportunity(ctx, tx, company, ext, rec, now, &out); err != nil {
			return err
		}
		if err := e.recordSignal(ctx, tx, company, det, rec, now, &out); err != nil {
			return err
		}
		if err := e.rescoreTx(ctx, tx, company.ID, now); err != nil {
			return err
		}
		return e.Repo.MarkSearchResultProcessedTx(ctx, tx, rec.ID)
	})
	if err != nil {
		return recordOutcome{}, err
	}
	return out, nil
}

func (e *Engine) handleNoCompany(ctx context.Context, rec *models.SearchResult, out *recordOutcome) error {
	if e.NoCompanyPolicy == NoCompanyQuarantine {
		if err := e.Repo.MarkSearchResultQuarantined(ctx, rec.ID); err != nil {
			return fmt.Errorf("quarantine result: %w", err)
		}
		out.quarantined = true
		e.Logger.Info("result quarantined, no company extracted",
			zap.Uint64("result_id", rec.ID), zap.String("url", rec.URL))
		return nil
	}
	if err := e.Repo.MarkSearchResultProcessed(ctx, rec.ID); err != nil {
		return fmt.Errorf("discard result: %w", err)
	}
	e.Logger.Debug("result discarded, no company extracted",
		zap.Uint64("result_id", rec.ID), zap.String("url", rec.URL))
	return nil
}

func (e *Engine) resolveCompany(ctx context.Context, tx *gorm.DB, ext analysis.Extraction, rec *models.SearchResult, now time.Time, out *recordOutcome) (*models.Company, error) {
	company, err := e.Repo.GetCompanyByNameTx(ctx, tx, ext.CompanyName)
	if err != nil {
		return nil, fmt.Errorf("look up company %q: %w", ext.CompanyName, err)
	}
	if company != nil {
		out.company = company
		return company, nil
	}
	company = &models.Company{
		Name:        ext.CompanyName,
		Industry:    ext.Industry,
		Location:    ext.Location,
		Description: truncate(rec.Content, maxDescriptionLen),
		LastUpdated: now,
	}
	if err := e.Repo.CreateCompanyTx(ctx, tx, company); err != nil {
		return nil, fmt.Errorf("create company %q: %w", ext.CompanyName, err)
	}
	out.company = company
	out.companyCreated = true
	return company, nil
}

func (e *Engine) upsertOpportunity(ctx context.Context, tx *gorm.DB, company *models.Company, ext analysis.Extraction, rec *models.SearchResult, now time.Time, out *recordOutcome) error {
	if ext.JobTitle == "" {
		return nil
	}
	existing, err := e.Repo.FindActiveOpportunityTx(ctx, tx, company.ID, ext.JobTitle)
	if err != nil {
		return fmt.Errorf("look up opportunity: %w", err)
	}
	if existing != nil {
		// Repeat sighting. last_seen is deliberately not refreshed.
		return nil
	}
	roleType := ext.RoleType
	if roleType == "" {
		roleType = e.Roles.Classify(ext.JobTitle)
	}
	var keywords []byte
	if len(ext.Keywords) > 0 {
		keywords, err = json.Marshal(ext.Keywords)
		if err != nil {
			return fmt.Errorf("encode keywords: %w", err)
		}
	}
	opp := &models.Opportunity{
		CompanyID:      company.ID,
		Title:          ext.JobTitle,
		RoleType:       roleType,
		Description:    rec.Content,
		URL:            rec.URL,
		Location:       ext.Location,
		Keywords:       keywords,
		IsActive:       true,
		DiscoveredDate: now,
	}
	if err := e.Repo.CreateOpportunityTx(ctx, tx, opp); err != nil {
		return fmt.Errorf("create opportunity: %w", err)
	}
	out.opportunity = opp
	return nil
}

func (e *Engine) recordSignal(ctx context.Context, tx *gorm.DB, company *models.Company, det analysis.SignalDetection, rec *models.SearchResult, now time.Time, out *recordOutcome) error {
	if !det.HasSignal || det.Confidence <= signalConfidenceFloor || !models.KnownSignalType(det.SignalType) {
		return nil
	}
	existing, err := e.Repo.FindHiringSignalTx(ctx, tx, company.ID, det.SignalType, rec.URL)
	if err != nil {
		return fmt.Errorf("look up signal: %w", err)
	}
	if existing != nil {
		return nil
	}
	sig := &models.HiringSignal{
		CompanyID:    company.ID,
		SignalType:   det.SignalType,
		Confidence:   det.Confidence,
		Description:  truncate(det.Description, maxDescriptionLen),
		SourceURL:    rec.URL,
		DetectedDate: now,
	}
	if err := e.Repo.CreateHiringSignalTx(ctx, tx, sig); err != nil {
		return fmt.Errorf("create signal: %w", err)
	}
	out.signal = sig
	return nil
}

// rescoreTx recomputes and stores one company's score from the current
// transaction's view of its openings and signal history.
func (e *Engine) rescoreTx(ctx context.Context, tx *gorm.DB, companyID uint64, now time.Time) error {
	active, err := e.Repo.CountActiveOpportunitiesByCompanyTx(ctx, tx, companyID)
	if err != nil {
		return fmt.Errorf("count active opportunities: %w", err)
	}
	signals, err := e.Repo.ListSignalsSinceByCompanyTx(ctx, tx, companyID, now.Add(-e.Scorer.Window()))
	if err != nil {
		return fmt.Errorf("list recent signals: %w", err)
	}
	score := e.Scorer.Score(scoring.Snapshot{
		ActiveOpportunities: int(active),
		Signals:             signals,
	}, now)
	if err := e.Repo.UpdateCompanyScoreTx(ctx, tx, companyID, score, now); err != nil {
		return fmt.Errorf("update company score: %w", err)
	}
	return nil
}

// RescoreCompany recomputes one company's score outside the processing path.
func (e *Engine) RescoreCompany(ctx context.Context, companyID uint64) error {
	now := time.Now().UTC()
	return e.Repo.InTx(ctx, func(tx *gorm.DB) error {
		return e.rescoreTx(ctx, tx, companyID, now)
	})
}

// RescoreAll walks every company and recomputes its score. Scores decay as
// signals age out of the window, so this runs on a schedule even when no new
// data arrives.
func (e *Engine) RescoreAll(ctx context.Context) (int, error) {
	ids, err := e.Repo.ListCompanyIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list companies: %w", err)
	}
	rescored := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return rescored, err
		}
		if err := e.RescoreCompany(ctx, id); err != nil {
			e.Logger.Error("rescore failed", zap.Uint64("company_id", id), zap.Error(err))
			continue
		}
		rescored++
	}
	e.Logger.Info("rescore pass complete", zap.Int("companies", rescored))
	return rescored, nil
}

// applyGraph mirrors the committed entities into the relationship graph.
// Graph write failures are logged, never propagated: the relational store
// is authoritative and the next rebuild heals the projection.
func (e *Engine) applyGraph(out recordOutcome) {
	if e.Graph == nil || out.company == nil {
		return
	}
	if err := e.Graph.AddCompanyNode(out.company.ID, out.company.Name); err != nil {
		e.Logger.Warn("graph update failed", zap.Uint64("company_id", out.company.ID), zap.Error(err))
		return
	}
	if out.opportunity != nil {
		if err := e.Graph.AddOpportunityEdge(out.opportunity.ID, out.company.ID, out.opportunity.Title, out.opportunity.RoleType); err != nil {
			e.Logger.Warn("graph update failed", zap.Uint64("opportunity_id", out.opportunity.ID), zap.Error(err))
		}
	}
	if out.signal != nil {
		if err := e.Graph.AddSignalEdge(out.signal.ID, out.company.ID, out.signal.SignalType, out.signal.Description); err != nil {
			e.Logger.Warn("graph update failed", zap.Uint64("signal_id", out.signal.ID), zap.Error(err))
		}
	}
}

func (e *Engine) publish(out recordOutcome, resultID uint64) {
	if e.Events == nil {
		return
	}
	if out.companyCreated {
		e.Events.Publish(events.Event{Type: events.TypeCompanyCreated, Data: out.company})
	}
	if out.opportunity != nil {
		e.Events.Publish(events.Event{Type: events.TypeOpportunityCreated, Data: out.opportunity})
	}
	if out.signal != nil {
		e.Events.Publish(events.Event{Type: events.TypeSignalDetected, Data: out.signal})
	}
	e.Events.Publish(events.Event{Type: events.TypeResultProcessed, Data: map[string]uint64{"result_id": resultID}})
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
