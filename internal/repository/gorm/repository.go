package gormrepository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"roleradar/internal/models"
	"roleradar/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(fn)
}

// session returns tx when a unit of work is open, otherwise the root handle.
func (s *Store) session(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db.WithContext(ctx)
}

// --- Raw intake -------------------------------------------------------------

func (s *Store) InsertSearchResultIfNew(ctx context.Context, item *models.SearchResult) (bool, error) {
	if s == nil || s.db == nil || item == nil {
		return false, nil
	}
	if strings.TrimSpace(item.URL) == "" {
		return false, nil
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "url"}},
		DoNothing: true,
	}).Create(item)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) ListUnprocessedSearchResults(ctx context.Context, limit int) ([]models.SearchResult, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	limit = normalizeLimit(limit, 100)
	var items []models.SearchResult
	err := s.db.WithContext(ctx).
		Model(&models.SearchResult{}).
		Where("processed = ?", false).
		Where("quarantined = ?", false).
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) MarkSearchResultProcessed(ctx context.Context, id uint64) error {
	if s == nil || s.db == nil || id == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&models.SearchResult{}).
		Where("id = ?", id).
		Update("processed", true).Error
}

func (s *Store) MarkSearchResultProcessedTx(ctx context.Context, tx *gorm.DB, id uint64) error {
	if s == nil || id == 0 {
		return nil
	}
	return s.session(ctx, tx).
		Model(&models.SearchResult{}).
		Where("id = ?", id).
		Update("processed", true).Error
}

func (s *Store) MarkSearchResultQuarantined(ctx context.Context, id uint64) error {
	if s == nil || s.db == nil || id == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&models.SearchResult{}).
		Where("id = ?", id).
		Update("quarantined", true).Error
}

func (s *Store) ListSearchResults(ctx context.Context, params repository.ListSearchResultsParams) ([]models.SearchResult, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := searchResultFilters(s.db.WithContext(ctx).Model(&models.SearchResult{}), params)
	query = applyOrder(query, params.OrderBy, params.Asc, "retrieved_at")
	var items []models.SearchResult
	if err := query.Limit(normalizeLimit(params.Limit, 100)).Offset(normalizeOffset(params.Offset)).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// CountSearchResults applies the same filters as ListSearchResults so that
// pagination totals match the filtered listing.
func (s *Store) CountSearchResults(ctx context.Context, params repository.ListSearchResultsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	query := searchResultFilters(s.db.WithContext(ctx).Model(&models.SearchResult{}), params)
	var n int64
	if err := query.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func searchResultFilters(query *gorm.DB, params repository.ListSearchResultsParams) *gorm.DB {
	if params.Query != nil && strings.TrimSpace(*params.Query) != "" {
		query = query.Where("query = ?", strings.TrimSpace(*params.Query))
	}
	if params.Processed != nil {
		query = query.Where("processed = ?", *params.Processed)
	}
	if params.Quarantined != nil {
		query = query.Where("quarantined = ?", *params.Quarantined)
	}
	return query
}

// --- Companies --------------------------------------------------------------

func (s *Store) GetCompanyByNameTx(ctx context.Context, tx *gorm.DB, name string) (*models.Company, error) {
	if s == nil {
		return nil, nil
	}
	var item models.Company
	err := s.session(ctx, tx).Where("name = ?", name).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) CreateCompanyTx(ctx context.Context, tx *gorm.DB, item *models.Company) error {
	if s == nil || item == nil {
		return nil
	}
	if item.LastUpdated.IsZero() {
		item.LastUpdated = time.Now().UTC()
	}
	return s.session(ctx, tx).Create(item).Error
}

func (s *Store) UpdateCompanyScoreTx(ctx context.Context, tx *gorm.DB, id uint64, score float64, at time.Time) error {
	if s == nil || id == 0 {
		return nil
	}
	return s.session(ctx, tx).
		Model(&models.Company{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"score":        score,
			"last_updated": at,
		}).Error
}

func (s *Store) GetCompanyByID(ctx context.Context, id uint64) (*models.Company, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Company
	err := s.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListTopCompanies(ctx context.Context, limit int) ([]models.Company, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Company
	err := s.db.WithContext(ctx).
		Model(&models.Company{}).
		Order("score desc").
		Limit(normalizeLimit(limit, 20)).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListCompanyIDs(ctx context.Context) ([]uint64, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var ids []uint64
	err := s.db.WithContext(ctx).
		Model(&models.Company{}).
		Order("id asc").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *Store) CountCompanies(ctx context.Context) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Company{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// --- Opportunities ----------------------------------------------------------

func (s *Store) FindActiveOpportunityTx(ctx context.Context, tx *gorm.DB, companyID uint64, title string) (*models.Opportunity, error) {
	if s == nil {
		return nil, nil
	}
	var item models.Opportunity
	err := s.session(ctx, tx).
		Where("company_id = ?", companyID).
		Where("title = ?", title).
		Where("is_active = ?", true).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) CreateOpportunityTx(ctx context.Context, tx *gorm.DB, item *models.Opportunity) error {
	if s == nil || item == nil {
		return nil
	}
	return s.session(ctx, tx).Create(item).Error
}

func (s *Store) CountActiveOpportunitiesByCompanyTx(ctx context.Context, tx *gorm.DB, companyID uint64) (int64, error) {
	if s == nil {
		return 0, nil
	}
	var n int64
	err := s.session(ctx, tx).
		Model(&models.Opportunity{}).
		Where("company_id = ?", companyID).
		Where("is_active = ?", true).
		Count(&n).Error
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Store) ListOpportunities(ctx context.Context, params repository.ListOpportunitiesParams) ([]models.Opportunity, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.Opportunity{}).Preload("Company")
	if params.CompanyID != nil && *params.CompanyID > 0 {
		query = query.Where("company_id = ?", *params.CompanyID)
	}
	if params.Active != nil {
		query = query.Where("is_active = ?", *params.Active)
	}
	if params.RoleType != nil && strings.TrimSpace(*params.RoleType) != "" {
		query = query.Where("role_type = ?", strings.TrimSpace(*params.RoleType))
	}
	query = applyOrder(query, params.OrderBy, params.Asc, "discovered_date")
	var items []models.Opportunity
	if err := query.Limit(normalizeLimit(params.Limit, 50)).Offset(normalizeOffset(params.Offset)).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountActiveOpportunities(ctx context.Context) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var n int64
	err := s.db.WithContext(ctx).
		Model(&models.Opportunity{}).
		Where("is_active = ?", true).
		Count(&n).Error
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Store) CountActiveOpportunitiesByCompany(ctx context.Context, companyID uint64) (int64, error) {
	return s.CountActiveOpportunitiesByCompanyTx(ctx, nil, companyID)
}

// --- Hiring signals ---------------------------------------------------------

func (s *Store) FindHiringSignalTx(ctx context.Context, tx *gorm.DB, companyID uint64, signalType, sourceURL string) (*models.HiringSignal, error) {
	if s == nil {
		return nil, nil
	}
	var item models.HiringSignal
	err := s.session(ctx, tx).
		Where("company_id = ?", companyID).
		Where("signal_type = ?", signalType).
		Where("source_url = ?", sourceURL).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) CreateHiringSignalTx(ctx context.Context, tx *gorm.DB, item *models.HiringSignal) error {
	if s == nil || item == nil {
		return nil
	}
	return s.session(ctx, tx).Create(item).Error
}

func (s *Store) ListSignalsSinceByCompanyTx(ctx context.Context, tx *gorm.DB, companyID uint64, since time.Time) ([]models.HiringSignal, error) {
	if s == nil {
		return nil, nil
	}
	var items []models.HiringSignal
	err := s.session(ctx, tx).
		Model(&models.HiringSignal{}).
		Where("company_id = ?", companyID).
		Where("detected_date > ?", since).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListSignals(ctx context.Context, params repository.ListSignalsParams) ([]models.HiringSignal, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.HiringSignal{}).Preload("Company")
	if params.CompanyID != nil && *params.CompanyID > 0 {
		query = query.Where("company_id = ?", *params.CompanyID)
	}
	if params.Type != nil && strings.TrimSpace(*params.Type) != "" {
		query = query.Where("signal_type = ?", strings.TrimSpace(*params.Type))
	}
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("detected_date >= ?", *params.Since)
	}
	query = applyOrder(query, params.OrderBy, params.Asc, "detected_date")
	var items []models.HiringSignal
	if err := query.Limit(normalizeLimit(params.Limit, 50)).Offset(normalizeOffset(params.Offset)).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountSignalsSince(ctx context.Context, since time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	query := s.db.WithContext(ctx).Model(&models.HiringSignal{})
	if !since.IsZero() {
		query = query.Where("detected_date > ?", since)
	}
	var n int64
	if err := query.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Store) CountSignalsByCompany(ctx context.Context, companyID uint64) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var n int64
	err := s.db.WithContext(ctx).
		Model(&models.HiringSignal{}).
		Where("company_id = ?", companyID).
		Count(&n).Error
	if err != nil {
		return 0, err
	}
	return n, nil
}

// --- Helpers ----------------------------------------------------------------

var orderColumns = map[string]bool{
	"id":              true,
	"score":           true,
	"name":            true,
	"title":           true,
	"query":           true,
	"retrieved_at":    true,
	"discovered_date": true,
	"detected_date":   true,
	"last_updated":    true,
	"last_seen":       true,
	"confidence":      true,
}

func applyOrder(query *gorm.DB, orderBy string, asc *bool, fallback string) *gorm.DB {
	col := strings.TrimSpace(strings.ToLower(orderBy))
	if col == "" || !orderColumns[col] {
		col = fallback
	}
	dir := "desc"
	if asc != nil && *asc {
		dir = "asc"
	}
	return query.Order(col + " " + dir)
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 500 {
		return 500
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
