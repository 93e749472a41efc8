package db

import (
	"context"

	"github.com/AI2HU/geolens/internal/models"
)

// NoSQLDatabase defines the interface for document database operations
// (brand analyses, GEO analyses and reports)
type NoSQLDatabase interface {
	// Connection management
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Ping(ctx context.Context) error

	// Brand analysis operations
	CreateBrandAnalysis(ctx context.Context, record *models.BrandAnalysisRecord) error
	GetBrandAnalysis(ctx context.Context, id string) (*models.BrandAnalysisRecord, error)
	ListBrandAnalyses(ctx context.Context, sessionID string) ([]*models.BrandAnalysisRecord, error)

	// GEO analysis operations
	CreateGeoAnalysis(ctx context.Context, record *models.GeoAnalysisRecord) error
	GetGeoAnalysis(ctx context.Context, id string) (*models.GeoAnalysisRecord, error)
	ListGeoAnalyses(ctx context.Context, sessionID string) ([]*models.GeoAnalysisRecord, error)
	UpdateGeoAnalysisProgress(ctx context.Context, id string, progress float64) error
	CompleteGeoAnalysis(ctx context.Context, id string, result *models.AnalysisResult, status string) error

	// Report operations
	CreateReport(ctx context.Context, report *models.Report) error
	ListReports(ctx context.Context, sessionID string) ([]*models.Report, error)
	MarkReportSent(ctx context.Context, id string) error
}
