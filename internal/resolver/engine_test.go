package resolver

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"roleradar/internal/analysis"
	"roleradar/internal/events"
	"roleradar/internal/graph"
	"roleradar/internal/models"
	"roleradar/internal/roles"
	"roleradar/internal/scoring"
)

// stubAnalyzer drives the pipeline with canned analysis results.
type stubAnalyzer struct {
	extract func(text string) analysis.Extraction
	detect  func(text, company string) analysis.SignalDetection
}

func (a *stubAnalyzer) ExtractEntities(ctx context.Context, text string) analysis.Extraction {
	if a.extract == nil {
		return analysis.Extraction{}
	}
	return a.extract(text)
}

func (a *stubAnalyzer) DetectHiringSignal(ctx context.Context, text, company string) analysis.SignalDetection {
	if a.detect == nil {
		return analysis.SignalDetection{}
	}
	return a.detect(text, company)
}

func (a *stubAnalyzer) Summarize(ctx context.Context, lines []string) string {
	return "summary"
}

func newTestEngine(t *testing.T, repo *stubRepo, an analysis.Analyzer) *Engine {
	t.Helper()
	g, err := graph.Open(filepath.Join(t.TempDir(), "graph.json"))
	if err != nil {
		t.Fatalf("open graph: %v", err)
	}
	return &Engine{
		Repo:            repo,
		Graph:           g,
		Analyzer:        an,
		Roles:           roles.NewClassifier(nil),
		Scorer:          &scoring.Engine{Weights: scoring.DefaultWeights()},
		Logger:          zap.NewNop(),
		Events:          events.NewHub(),
		NoCompanyPolicy: NoCompanyDiscard,
	}
}

func seedResult(repo *stubRepo, url, title, content string) {
	_, _ = repo.InsertSearchResultIfNew(context.Background(), &models.SearchResult{
		Query:   "security hiring",
		Title:   title,
		Content: content,
		URL:     url,
	})
}

func techCorpAnalyzer() *stubAnalyzer {
	return &stubAnalyzer{
		extract: func(text string) analysis.Extraction {
			return analysis.Extraction{
				CompanyName: "TechCorp",
				JobTitle:    "Security Engineer",
				Industry:    "fintech",
				Location:    "Berlin",
				Keywords:    []string{"cissp", "cloud"},
			}
		},
		detect: func(text, company string) analysis.SignalDetection {
			return analysis.SignalDetection{
				HasSignal:   true,
				SignalType:  models.SignalFunding,
				Confidence:  0.8,
				Description: "raised a series B",
			}
		},
	}
}

func TestProcess_CreatesCompanyOpportunityAndSignal(t *testing.T) {
	repo := &stubRepo{}
	seedResult(repo, "https://example.com/a", "TechCorp hiring", "TechCorp raised a series B and is hiring a Security Engineer")

	e := newTestEngine(t, repo, techCorpAnalyzer())
	res, err := e.ProcessUnprocessed(context.Background(), 10)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if res.Processed != 1 || res.Companies != 1 || res.Opportunities != 1 || res.Signals != 1 {
		t.Fatalf("result=%+v", res)
	}

	if len(repo.companies) != 1 {
		t.Fatalf("companies=%d want=1", len(repo.companies))
	}
	company := repo.companies[0]
	if company.Name != "TechCorp" || company.Industry != "fintech" {
		t.Fatalf("company=%+v", company)
	}
	// 1 opening (10*0.4) + confidence 0.8 (80*0.3) + funding bonus (50*0.2)
	// + recent activity (100*0.1) = 48.
	if company.Score < 47.9 || company.Score > 48.1 {
		t.Fatalf("score=%v want=48", company.Score)
	}

	if len(repo.opportunities) != 1 {
		t.Fatalf("opportunities=%d want=1", len(repo.opportunities))
	}
	opp := repo.opportunities[0]
	if opp.Title != "Security Engineer" || !opp.IsActive || opp.CompanyID != company.ID {
		t.Fatalf("opportunity=%+v", opp)
	}
	if opp.RoleType != roles.RoleSecurity {
		t.Fatalf("role_type=%q want=%q", opp.RoleType, roles.RoleSecurity)
	}
	if !strings.Contains(string(opp.Keywords), "cissp") {
		t.Fatalf("keywords=%s", opp.Keywords)
	}

	if len(repo.signals) != 1 {
		t.Fatalf("signals=%d want=1", len(repo.signals))
	}
	sig := repo.signals[0]
	if sig.SignalType != models.SignalFunding || sig.SourceURL != "https://example.com/a" {
		t.Fatalf("signal=%+v", sig)
	}

	if !repo.results[0].Processed {
		t.Fatalf("record not marked processed")
	}

	// Graph mirrors the committed entities.
	if got := e.Graph.NodeCount(); got != 3 {
		t.Fatalf("graph nodes=%d want=3", got)
	}
	conns := e.Graph.ConnectionsOf(company.ID)
	if len(conns.Opportunities) != 1 || len(conns.Signals) != 1 {
		t.Fatalf("connections=%+v", conns)
	}
}

func TestProcess_DescriptionLengths(t *testing.T) {
	repo := &stubRepo{}
	content := strings.Repeat("TechCorp is scaling its security org. ", 32) // well past 500 runes
	seedResult(repo, "https://example.com/a", "TechCorp hiring", content)

	e := newTestEngine(t, repo, techCorpAnalyzer())
	if _, err := e.ProcessUnprocessed(context.Background(), 10); err != nil {
		t.Fatalf("process: %v", err)
	}

	// Company carries a 500-rune teaser of the source content.
	company := repo.companies[0]
	if got := len([]rune(company.Description)); got != maxDescriptionLen {
		t.Fatalf("company description length=%d want=%d", got, maxDescriptionLen)
	}
	if !strings.HasPrefix(content, company.Description) {
		t.Fatalf("company description is not a prefix of the source content")
	}

	// The opportunity keeps the full content, untruncated.
	if got := repo.opportunities[0].Description; got != content {
		t.Fatalf("opportunity description length=%d want=%d (full content)", len([]rune(got)), len([]rune(content)))
	}
}

func TestProcess_RepeatSightingDeduplicates(t *testing.T) {
	repo := &stubRepo{}
	seedResult(repo, "https://example.com/a", "TechCorp hiring", "first sighting")
	seedResult(repo, "https://example.com/b", "TechCorp hiring again", "second sighting")

	e := newTestEngine(t, repo, techCorpAnalyzer())
	res, err := e.ProcessUnprocessed(context.Background(), 10)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if res.Processed != 2 {
		t.Fatalf("processed=%d want=2", res.Processed)
	}
	if len(repo.companies) != 1 {
		t.Fatalf("companies=%d want=1", len(repo.companies))
	}
	if len(repo.opportunities) != 1 {
		t.Fatalf("opportunities=%d want=1, repeat sighting must not duplicate", len(repo.opportunities))
	}
	// Different source URLs are distinct signal evidence.
	if len(repo.signals) != 2 {
		t.Fatalf("signals=%d want=2", len(repo.signals))
	}
}

func TestProcess_SecondPassIsNoOp(t *testing.T) {
	repo := &stubRepo{}
	seedResult(repo, "https://example.com/a", "TechCorp hiring", "content")

	e := newTestEngine(t, repo, techCorpAnalyzer())
	if _, err := e.ProcessUnprocessed(context.Background(), 10); err != nil {
		t.Fatalf("first pass: %v", err)
	}
	res, err := e.ProcessUnprocessed(context.Background(), 10)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if res.Fetched != 0 {
		t.Fatalf("fetched=%d want=0", res.Fetched)
	}
}

func TestProcess_ConfidenceGate(t *testing.T) {
	repo := &stubRepo{}
	seedResult(repo, "https://example.com/a", "TechCorp news", "content")

	an := techCorpAnalyzer()
	an.detect = func(text, company string) analysis.SignalDetection {
		return analysis.SignalDetection{
			HasSignal:  true,
			SignalType: models.SignalExpansion,
			Confidence: 0.5, // at the floor, not above it
		}
	}
	e := newTestEngine(t, repo, an)
	if _, err := e.ProcessUnprocessed(context.Background(), 10); err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(repo.signals) != 0 {
		t.Fatalf("signals=%d want=0 at confidence floor", len(repo.signals))
	}
	if !repo.results[0].Processed {
		t.Fatalf("record not marked processed")
	}
}

func TestProcess_NoCompanyDiscard(t *testing.T) {
	repo := &stubRepo{}
	seedResult(repo, "https://example.com/a", "opinion piece", "nothing concrete")

	e := newTestEngine(t, repo, &stubAnalyzer{})
	res, err := e.ProcessUnprocessed(context.Background(), 10)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if res.Processed != 1 || res.Companies != 0 {
		t.Fatalf("result=%+v", res)
	}
	if !repo.results[0].Processed || repo.results[0].Quarantined {
		t.Fatalf("record=%+v want processed, not quarantined", repo.results[0])
	}
}

func TestProcess_NoCompanyQuarantine(t *testing.T) {
	repo := &stubRepo{}
	seedResult(repo, "https://example.com/a", "opinion piece", "nothing concrete")

	e := newTestEngine(t, repo, &stubAnalyzer{})
	e.NoCompanyPolicy = NoCompanyQuarantine
	res, err := e.ProcessUnprocessed(context.Background(), 10)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if res.Quarantined != 1 || res.Processed != 0 {
		t.Fatalf("result=%+v", res)
	}
	if repo.results[0].Processed || !repo.results[0].Quarantined {
		t.Fatalf("record=%+v want quarantined", repo.results[0])
	}
	// Quarantined rows leave the unprocessed queue.
	pending, _ := repo.ListUnprocessedSearchResults(context.Background(), 10)
	if len(pending) != 0 {
		t.Fatalf("pending=%d want=0", len(pending))
	}
}

func TestProcess_PersistenceFailureLeavesRecordUnprocessed(t *testing.T) {
	repo := &stubRepo{failCreateOpportunity: true}
	seedResult(repo, "https://example.com/a", "TechCorp hiring", "content")

	e := newTestEngine(t, repo, techCorpAnalyzer())
	res, err := e.ProcessUnprocessed(context.Background(), 10)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if res.Failed != 1 || res.Processed != 0 {
		t.Fatalf("result=%+v", res)
	}
	// The transaction rolled back, so nothing committed and the record
	// stays in the queue for the next pass.
	if len(repo.companies) != 0 || len(repo.opportunities) != 0 {
		t.Fatalf("companies=%d opportunities=%d want rollback", len(repo.companies), len(repo.opportunities))
	}
	if repo.results[0].Processed {
		t.Fatalf("failed record must stay unprocessed")
	}
	if got := e.Graph.NodeCount(); got != 0 {
		t.Fatalf("graph nodes=%d want=0 after rollback", got)
	}

	// Next pass succeeds once the fault clears.
	repo.failCreateOpportunity = false
	res, err = e.ProcessUnprocessed(context.Background(), 10)
	if err != nil {
		t.Fatalf("retry pass: %v", err)
	}
	if res.Processed != 1 {
		t.Fatalf("result=%+v want processed on retry", res)
	}
}

func TestRescoreAll_DecaysStaleScores(t *testing.T) {
	repo := &stubRepo{}
	old := time.Now().UTC().Add(-120 * 24 * time.Hour)
	repo.companies = append(repo.companies, models.Company{ID: 1, Name: "Stale Co", Score: 40})
	repo.nextID = 1
	repo.signals = append(repo.signals, models.HiringSignal{
		ID: 2, CompanyID: 1, SignalType: models.SignalFunding, Confidence: 0.9, DetectedDate: old,
	})

	e := newTestEngine(t, repo, &stubAnalyzer{})
	n, err := e.RescoreAll(context.Background())
	if err != nil {
		t.Fatalf("rescore: %v", err)
	}
	if n != 1 {
		t.Fatalf("rescored=%d want=1", n)
	}
	if repo.companies[0].Score != 0 {
		t.Fatalf("score=%v want=0 after the signal aged out", repo.companies[0].Score)
	}
}
