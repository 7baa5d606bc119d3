package resolver

import (
	"context"
	"errors"
	"sort"
	"time"

	"gorm.io/gorm"

	"roleradar/internal/models"
	"roleradar/internal/repository"
)

// stubRepo is a test-only in-memory implementation of repository.Repository.
// InTx snapshots state and restores it when fn fails, mimicking rollback.
type stubRepo struct {
	results       []models.SearchResult
	companies     []models.Company
	opportunities []models.Opportunity
	signals       []models.HiringSignal
	nextID        uint64

	failCreateOpportunity bool
}

func (s *stubRepo) id() uint64 {
	s.nextID++
	return s.nextID
}

func (s *stubRepo) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	results := append([]models.SearchResult(nil), s.results...)
	companies := append([]models.Company(nil), s.companies...)
	opportunities := append([]models.Opportunity(nil), s.opportunities...)
	signals := append([]models.HiringSignal(nil), s.signals...)
	nextID := s.nextID
	if err := fn(nil); err != nil {
		s.results = results
		s.companies = companies
		s.opportunities = opportunities
		s.signals = signals
		s.nextID = nextID
		return err
	}
	return nil
}

func (s *stubRepo) InsertSearchResultIfNew(ctx context.Context, item *models.SearchResult) (bool, error) {
	for _, r := range s.results {
		if r.URL == item.URL {
			return false, nil
		}
	}
	item.ID = s.id()
	item.RetrievedAt = time.Now().UTC()
	s.results = append(s.results, *item)
	return true, nil
}

func (s *stubRepo) ListUnprocessedSearchResults(ctx context.Context, limit int) ([]models.SearchResult, error) {
	var out []models.SearchResult
	for _, r := range s.results {
		if r.Processed || r.Quarantined {
			continue
		}
		out = append(out, r)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *stubRepo) MarkSearchResultProcessed(ctx context.Context, id uint64) error {
	for i := range s.results {
		if s.results[i].ID == id {
			s.results[i].Processed = true
			return nil
		}
	}
	return errors.New("result not found")
}

func (s *stubRepo) MarkSearchResultProcessedTx(ctx context.Context, tx *gorm.DB, id uint64) error {
	return s.MarkSearchResultProcessed(ctx, id)
}

func (s *stubRepo) MarkSearchResultQuarantined(ctx context.Context, id uint64) error {
	for i := range s.results {
		if s.results[i].ID == id {
			s.results[i].Quarantined = true
			return nil
		}
	}
	return errors.New("result not found")
}

func (s *stubRepo) ListSearchResults(ctx context.Context, params repository.ListSearchResultsParams) ([]models.SearchResult, error) {
	return s.results, nil
}

func (s *stubRepo) CountSearchResults(ctx context.Context, params repository.ListSearchResultsParams) (int64, error) {
	var n int64
	for _, r := range s.results {
		if params.Processed != nil && r.Processed != *params.Processed {
			continue
		}
		if params.Quarantined != nil && r.Quarantined != *params.Quarantined {
			continue
		}
		if params.Query != nil && r.Query != *params.Query {
			continue
		}
		n++
	}
	return n, nil
}

func (s *stubRepo) GetCompanyByNameTx(ctx context.Context, tx *gorm.DB, name string) (*models.Company, error) {
	for i := range s.companies {
		if s.companies[i].Name == name {
			c := s.companies[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (s *stubRepo) CreateCompanyTx(ctx context.Context, tx *gorm.DB, item *models.Company) error {
	item.ID = s.id()
	item.CreatedAt = time.Now().UTC()
	s.companies = append(s.companies, *item)
	return nil
}

func (s *stubRepo) UpdateCompanyScoreTx(ctx context.Context, tx *gorm.DB, id uint64, score float64, at time.Time) error {
	for i := range s.companies {
		if s.companies[i].ID == id {
			s.companies[i].Score = score
			s.companies[i].LastUpdated = at
			return nil
		}
	}
	return errors.New("company not found")
}

func (s *stubRepo) GetCompanyByID(ctx context.Context, id uint64) (*models.Company, error) {
	for i := range s.companies {
		if s.companies[i].ID == id {
			c := s.companies[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (s *stubRepo) ListTopCompanies(ctx context.Context, limit int) ([]models.Company, error) {
	out := append([]models.Company(nil), s.companies...)
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *stubRepo) ListCompanyIDs(ctx context.Context) ([]uint64, error) {
	out := make([]uint64, 0, len(s.companies))
	for _, c := range s.companies {
		out = append(out, c.ID)
	}
	return out, nil
}

func (s *stubRepo) CountCompanies(ctx context.Context) (int64, error) {
	return int64(len(s.companies)), nil
}

func (s *stubRepo) FindActiveOpportunityTx(ctx context.Context, tx *gorm.DB, companyID uint64, title string) (*models.Opportunity, error) {
	for i := range s.opportunities {
		o := s.opportunities[i]
		if o.CompanyID == companyID && o.Title == title && o.IsActive {
			return &o, nil
		}
	}
	return nil, nil
}

func (s *stubRepo) CreateOpportunityTx(ctx context.Context, tx *gorm.DB, item *models.Opportunity) error {
	if s.failCreateOpportunity {
		return errors.New("stub: opportunity insert failed")
	}
	item.ID = s.id()
	s.opportunities = append(s.opportunities, *item)
	return nil
}

func (s *stubRepo) CountActiveOpportunitiesByCompanyTx(ctx context.Context, tx *gorm.DB, companyID uint64) (int64, error) {
	return s.CountActiveOpportunitiesByCompany(ctx, companyID)
}

func (s *stubRepo) ListOpportunities(ctx context.Context, params repository.ListOpportunitiesParams) ([]models.Opportunity, error) {
	var out []models.Opportunity
	for _, o := range s.opportunities {
		if params.CompanyID != nil && o.CompanyID != *params.CompanyID {
			continue
		}
		if params.Active != nil && o.IsActive != *params.Active {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (s *stubRepo) CountActiveOpportunities(ctx context.Context) (int64, error) {
	var n int64
	for _, o := range s.opportunities {
		if o.IsActive {
			n++
		}
	}
	return n, nil
}

func (s *stubRepo) CountActiveOpportunitiesByCompany(ctx context.Context, companyID uint64) (int64, error) {
	var n int64
	for _, o := range s.opportunities {
		if o.CompanyID == companyID && o.IsActive {
			n++
		}
	}
	return n, nil
}

func (s *stubRepo) FindHiringSignalTx(ctx context.Context, tx *gorm.DB, companyID uint64, signalType, sourceURL string) (*models.HiringSignal, error) {
	for i := range s.signals {
		sig := s.signals[i]
		if sig.CompanyID == companyID && sig.SignalType == signalType && sig.SourceURL == sourceURL {
			return &sig, nil
		}
	}
	return nil, nil
}

func (s *stubRepo) CreateHiringSignalTx(ctx context.Context, tx *gorm.DB, item *models.HiringSignal) error {
	item.ID = s.id()
	s.signals = append(s.signals, *item)
	return nil
}

func (s *stubRepo) ListSignalsSinceByCompanyTx(ctx context.Context, tx *gorm.DB, companyID uint64, since time.Time) ([]models.HiringSignal, error) {
	var out []models.HiringSignal
	for _, sig := range s.signals {
		if sig.CompanyID == companyID && sig.DetectedDate.After(since) {
			out = append(out, sig)
		}
	}
	return out, nil
}

func (s *stubRepo) ListSignals(ctx context.Context, params repository.ListSignalsParams) ([]models.HiringSignal, error) {
	var out []models.HiringSignal
	for _, sig := range s.signals {
		if params.CompanyID != nil && sig.CompanyID != *params.CompanyID {
			continue
		}
		if params.Type != nil && sig.SignalType != *params.Type {
			continue
		}
		out = append(out, sig)
	}
	return out, nil
}

func (s *stubRepo) CountSignalsSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	for _, sig := range s.signals {
		if sig.DetectedDate.After(since) {
			n++
		}
	}
	return n, nil
}

func (s *stubRepo) CountSignalsByCompany(ctx context.Context, companyID uint64) (int64, error) {
	var n int64
	for _, sig := range s.signals {
		if sig.CompanyID == companyID {
			n++
		}
	}
	return n, nil
}

var _ repository.Repository = (*stubRepo)(nil)
