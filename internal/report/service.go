package report

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"roleradar/internal/analysis"
	"roleradar/internal/repository"
)

const signalWindow = 90 * 24 * time.Hour

// Service assembles read-only views over the resolved entities.
type Service struct {
	Repo     repository.Repository
	Analyzer analysis.Analyzer
	Logger   *zap.Logger
}

// CompanyRank is one row of the top-companies board.
type CompanyRank struct {
	ID                  uint64  `json:"id"`
	Name                string  `json:"name"`
	Score               float64 `json:"score"`
	Industry            string  `json:"industry,omitempty"`
	Location            string  `json:"location,omitempty"`
	ActiveOpportunities int64   `json:"active_opportunities"`
	SignalCount         int64   `json:"signal_count"`
}

// OpportunityView is an opening joined with its company's standing.
type OpportunityView struct {
	ID             uint64    `json:"id"`
	Title          string    `json:"title"`
	RoleType       string    `json:"role_type,omitempty"`
	URL            string    `json:"url,omitempty"`
	Location       string    `json:"location,omitempty"`
	CompanyID      uint64    `json:"company_id"`
	CompanyName    string    `json:"company_name"`
	CompanyScore   float64   `json:"company_score"`
	DiscoveredDate time.Time `json:"discovered_date"`
}

// Summary is the dashboard aggregate.
type Summary struct {
	TotalCompanies      int64             `json:"total_companies"`
	TotalOpportunities  int64             `json:"total_opportunities"`
	RecentSignals       int64             `json:"recent_signals"`
	TopCompanies        []CompanyRank     `json:"top_companies"`
	RecentOpportunities []OpportunityView `json:"recent_opportunities"`
	Narrative           string            `json:"narrative,omitempty"`
	GeneratedAt         time.Time         `json:"generated_at"`
}

// TopCompanies returns up to limit companies ordered by score descending,
// each annotated with its active opening and signal counts.
func (s *Service) TopCompanies(ctx context.Context, limit int) ([]CompanyRank, error) {
	companies, err := s.Repo.ListTopCompanies(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list top companies: %w", err)
	}
	ranks := make([]CompanyRank, 0, len(companies))
	for _, c := range companies {
		active, err := s.Repo.CountActiveOpportunitiesByCompany(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("count opportunities for %d: %w", c.ID, err)
		}
		sigs, err := s.Repo.CountSignalsByCompany(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("count signals for %d: %w", c.ID, err)
		}
		ranks = append(ranks, CompanyRank{
			ID:                  c.ID,
			Name:                c.Name,
			Score:               c.Score,
			Industry:            c.Industry,
			Location:            c.Location,
			ActiveOpportunities: active,
			SignalCount:         sigs,
		})
	}
	return ranks, nil
}

// ActiveOpportunities returns the newest active openings with company context.
func (s *Service) ActiveOpportunities(ctx context.Context, limit int) ([]OpportunityView, error) {
	active := true
	opps, err := s.Repo.ListOpportunities(ctx, repository.ListOpportunitiesParams{
		Limit:   limit,
		Active:  &active,
		OrderBy: "discovered_date",
	})
	if err != nil {
		return nil, fmt.Errorf("list opportunities: %w", err)
	}
	views := make([]OpportunityView, 0, len(opps))
	for _, o := range opps {
		views = append(views, OpportunityView{
			ID:             o.ID,
			Title:          o.Title,
			RoleType:       o.RoleType,
			URL:            o.URL,
			Location:       o.Location,
			CompanyID:      o.CompanyID,
			CompanyName:    o.Company.Name,
			CompanyScore:   o.Company.Score,
			DiscoveredDate: o.DiscoveredDate,
		})
	}
	return views, nil
}

// DashboardSummary builds the aggregate view. The narrative is best-effort:
// when the analyzer is degraded it falls back to a plain statistic line.
func (s *Service) DashboardSummary(ctx context.Context) (*Summary, error) {
	now := time.Now().UTC()
	companies, err := s.Repo.CountCompanies(ctx)
	if err != nil {
		return nil, fmt.Errorf("count companies: %w", err)
	}
	opportunities, err := s.Repo.CountActiveOpportunities(ctx)
	if err != nil {
		return nil, fmt.Errorf("count opportunities: %w", err)
	}
	signals, err := s.Repo.CountSignalsSince(ctx, now.Add(-signalWindow))
	if err != nil {
		return nil, fmt.Errorf("count signals: %w", err)
	}
	top, err := s.TopCompanies(ctx, 10)
	if err != nil {
		return nil, err
	}
	recent, err := s.ActiveOpportunities(ctx, 10)
	if err != nil {
		return nil, err
	}
	summary := &Summary{
		TotalCompanies:      companies,
		TotalOpportunities:  opportunities,
		RecentSignals:       signals,
		TopCompanies:        top,
		RecentOpportunities: recent,
		GeneratedAt:         now,
	}
	summary.Narrative = s.narrative(ctx, summary)
	return summary, nil
}

func (s *Service) narrative(ctx context.Context, summary *Summary) string {
	lines := make([]string, 0, len(summary.TopCompanies)+1)
	lines = append(lines, fmt.Sprintf(
		"%d companies tracked, %d active openings, %d hiring signals in the last 90 days.",
		summary.TotalCompanies, summary.TotalOpportunities, summary.RecentSignals))
	for _, c := range summary.TopCompanies {
		lines = append(lines, fmt.Sprintf(
			"%s: score %.1f, %d openings, %d signals",
			c.Name, c.Score, c.ActiveOpportunities, c.SignalCount))
	}
	return s.Analyzer.Summarize(ctx, lines)
}

// Stats is a lightweight operational snapshot for the CLI.
type Stats struct {
	SearchResults     int64 `json:"search_results"`
	Unprocessed       int64 `json:"unprocessed"`
	Companies         int64 `json:"companies"`
	ActiveOpportunity int64 `json:"active_opportunities"`
	RecentSignals     int64 `json:"recent_signals"`
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	now := time.Now().UTC()
	total, err := s.Repo.CountSearchResults(ctx, repository.ListSearchResultsParams{})
	if err != nil {
		return nil, fmt.Errorf("count results: %w", err)
	}
	// Pending means still in the queue: neither processed nor quarantined.
	flag := false
	pending, err := s.Repo.CountSearchResults(ctx, repository.ListSearchResultsParams{
		Processed:   &flag,
		Quarantined: &flag,
	})
	if err != nil {
		return nil, fmt.Errorf("count unprocessed: %w", err)
	}
	companies, err := s.Repo.CountCompanies(ctx)
	if err != nil {
		return nil, fmt.Errorf("count companies: %w", err)
	}
	opportunities, err := s.Repo.CountActiveOpportunities(ctx)
	if err != nil {
		return nil, fmt.Errorf("count opportunities: %w", err)
	}
	signals, err := s.Repo.CountSignalsSince(ctx, now.Add(-signalWindow))
	if err != nil {
		return nil, fmt.Errorf("count signals: %w", err)
	}
	return &Stats{
		SearchResults:     total,
		Unprocessed:       pending,
		Companies:         companies,
		ActiveOpportunity: opportunities,
		RecentSignals:     signals,
	}, nil
}
