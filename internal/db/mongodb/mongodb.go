package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AI2HU/geolens/internal/db"
	"github.com/AI2HU/geolens/internal/models"
)

// MongoDB implements the NoSQLDatabase interface for MongoDB
type MongoDB struct {
	client   *mongo.Client
	database *mongo.Database
	config   *db.Config
}

const (
	collBrandAnalyses = "brand_analyses"
	collGeoAnalyses   = "geo_analyses"
	collReports       = "reports"
)

// New creates a new MongoDB database instance
func New(config *db.Config) (*MongoDB, error) {
	return &MongoDB{
		config: config,
	}, nil
}

// Connect establishes connection to MongoDB
func (m *MongoDB) Connect(ctx context.Context) error {
	clientOptions := options.Client().ApplyURI(m.config.URI)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	m.client = client
	m.database = client.Database(m.config.Database)

	if err := m.createIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// Disconnect closes the MongoDB connection
func (m *MongoDB) Disconnect(ctx context.Context) error {
	if m.client != nil {
		return m.client.Disconnect(ctx)
	}
	return nil
}

// Ping checks the database connection
func (m *MongoDB) Ping(ctx context.Context) error {
	if m.client == nil {
		return fmt.Errorf("not connected to database")
	}
	return m.client.Ping(ctx, nil)
}

// createIndexes creates necessary indexes for session-scoped lookups
func (m *MongoDB) createIndexes(ctx context.Context) error {
	sessionCreated := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "session_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
	}

	for _, coll := range []string{collBrandAnalyses, collGeoAnalyses, collReports} {
		if _, err := m.database.Collection(coll).Indexes().CreateMany(ctx, sessionCreated); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", coll, err)
		}
	}

	return nil
}

// Brand Analysis Operations

// CreateBrandAnalysis stores a brand discovery result
func (m *MongoDB) CreateBrandAnalysis(ctx context.Context, record *models.BrandAnalysisRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	record.CreatedAt = time.Now()
	record.UpdatedAt = record.CreatedAt

	_, err := m.database.Collection(collBrandAnalyses).InsertOne(ctx, record)
	return err
}

// GetBrandAnalysis retrieves a brand analysis by ID
func (m *MongoDB) GetBrandAnalysis(ctx context.Context, id string) (*models.BrandAnalysisRecord, error) {
	var record models.BrandAnalysisRecord
	err := m.database.Collection(collBrandAnalyses).FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("brand analysis not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListBrandAnalyses lists brand analyses for a session, newest first
func (m *MongoDB) ListBrandAnalyses(ctx context.Context, sessionID string) ([]*models.BrandAnalysisRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := m.database.Collection(collBrandAnalyses).Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []*models.BrandAnalysisRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// GEO Analysis Operations

// CreateGeoAnalysis stores a new GEO analysis record, usually in running state
func (m *MongoDB) CreateGeoAnalysis(ctx context.Context, record *models.GeoAnalysisRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	record.CreatedAt = time.Now()
	record.UpdatedAt = record.CreatedAt

	_, err := m.database.Collection(collGeoAnalyses).InsertOne(ctx, record)
	return err
}

// GetGeoAnalysis retrieves a GEO analysis by ID
func (m *MongoDB) GetGeoAnalysis(ctx context.Context, id string) (*models.GeoAnalysisRecord, error) {
	var record models.GeoAnalysisRecord
	err := m.database.Collection(collGeoAnalyses).FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("geo analysis not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListGeoAnalyses lists GEO analyses for a session, newest first
func (m *MongoDB) ListGeoAnalyses(ctx context.Context, sessionID string) ([]*models.GeoAnalysisRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := m.database.Collection(collGeoAnalyses).Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []*models.GeoAnalysisRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// UpdateGeoAnalysisProgress updates the progress percentage of a running analysis
func (m *MongoDB) UpdateGeoAnalysisProgress(ctx context.Context, id string, progress float64) error {
	update := bson.M{"$set": bson.M{
		"progress_status": progress,
		"updated_at":      time.Now(),
	}}

	result, err := m.database.Collection(collGeoAnalyses).UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("geo analysis not found: %s", id)
	}
	return nil
}

// CompleteGeoAnalysis attaches the final result and terminal status
func (m *MongoDB) CompleteGeoAnalysis(ctx context.Context, id string, result *models.AnalysisResult, status string) error {
	update := bson.M{"$set": bson.M{
		"result":          result,
		"status":          status,
		"progress_status": 100.0,
		"updated_at":      time.Now(),
	}}

	updateResult, err := m.database.Collection(collGeoAnalyses).UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if updateResult.MatchedCount == 0 {
		return fmt.Errorf("geo analysis not found: %s", id)
	}
	return nil
}

// Report Operations

// CreateReport stores a report delivery record
func (m *MongoDB) CreateReport(ctx context.Context, report *models.Report) error {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	report.CreatedAt = time.Now()

	_, err := m.database.Collection(collReports).InsertOne(ctx, report)
	return err
}

// ListReports lists reports for a session, newest first
func (m *MongoDB) ListReports(ctx context.Context, sessionID string) ([]*models.Report, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := m.database.Collection(collReports).Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reports []*models.Report
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// MarkReportSent flags a report as delivered by email
func (m *MongoDB) MarkReportSent(ctx context.Context, id string) error {
	update := bson.M{"$set": bson.M{"email_sent": true}}

	result, err := m.database.Collection(collReports).UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("report not found: %s", id)
	}
	return nil
}
