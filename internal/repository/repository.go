package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"roleradar/internal/models"
)

// Repository is the relational store behind the resolver, the reporting
// surface, and the graph rebuild. Methods with a Tx suffix run inside the
// per-record unit of work opened by InTx; everything else is a standalone
// read or an idempotent single-row write.
type Repository interface {
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error

	// Raw intake.
	InsertSearchResultIfNew(ctx context.Context, item *models.SearchResult) (bool, error)
	ListUnprocessedSearchResults(ctx context.Context, limit int) ([]models.SearchResult, error)
	MarkSearchResultProcessed(ctx context.Context, id uint64) error
	MarkSearchResultProcessedTx(ctx context.Context, tx *gorm.DB, id uint64) error
	MarkSearchResultQuarantined(ctx context.Context, id uint64) error
	ListSearchResults(ctx context.Context, params ListSearchResultsParams) ([]models.SearchResult, error)
	CountSearchResults(ctx context.Context, params ListSearchResultsParams) (int64, error)

	// Companies.
	GetCompanyByNameTx(ctx context.Context, tx *gorm.DB, name string) (*models.Company, error)
	CreateCompanyTx(ctx context.Context, tx *gorm.DB, item *models.Company) error
	UpdateCompanyScoreTx(ctx context.Context, tx *gorm.DB, id uint64, score float64, at time.Time) error
	GetCompanyByID(ctx context.Context, id uint64) (*models.Company, error)
	ListTopCompanies(ctx context.Context, limit int) ([]models.Company, error)
	ListCompanyIDs(ctx context.Context) ([]uint64, error)
	CountCompanies(ctx context.Context) (int64, error)

	// Opportunities.
	FindActiveOpportunityTx(ctx context.Context, tx *gorm.DB, companyID uint64, title string) (*models.Opportunity, error)
	CreateOpportunityTx(ctx context.Context, tx *gorm.DB, item *models.Opportunity) error
	CountActiveOpportunitiesByCompanyTx(ctx context.Context, tx *gorm.DB, companyID uint64) (int64, error)
	ListOpportunities(ctx context.Context, params ListOpportunitiesParams) ([]models.Opportunity, error)
	CountActiveOpportunities(ctx context.Context) (int64, error)
	CountActiveOpportunitiesByCompany(ctx context.Context, companyID uint64) (int64, error)

	// Hiring signals.
	FindHiringSignalTx(ctx context.Context, tx *gorm.DB, companyID uint64, signalType, sourceURL string) (*models.HiringSignal, error)
	CreateHiringSignalTx(ctx context.Context, tx *gorm.DB, item *models.HiringSignal) error
	ListSignalsSinceByCompanyTx(ctx context.Context, tx *gorm.DB, companyID uint64, since time.Time) ([]models.HiringSignal, error)
	ListSignals(ctx context.Context, params ListSignalsParams) ([]models.HiringSignal, error)
	CountSignalsSince(ctx context.Context, since time.Time) (int64, error)
	CountSignalsByCompany(ctx context.Context, companyID uint64) (int64, error)
}

type ListSearchResultsParams struct {
	Limit       int
	Offset      int
	Query       *string
	Processed   *bool
	Quarantined *bool
	OrderBy     string
	Asc         *bool
}

type ListOpportunitiesParams struct {
	Limit     int
	Offset    int
	CompanyID *uint64
	Active    *bool
	RoleType  *string
	OrderBy   string
	Asc       *bool
}

type ListSignalsParams struct {
	Limit     int
	Offset    int
	CompanyID *uint64
	Type      *string
	Since     *time.Time
	OrderBy   string
	Asc       *bool
}
