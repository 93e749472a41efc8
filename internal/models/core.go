package models

import (
	"time"
)

// Core domain models

// Session represents one visitor session keyed by collected email
type Session struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
}

// BrandInfo represents discovered information about a brand
type BrandInfo struct {
	Name        string   `json:"name" bson:"name"`
	Website     string   `json:"website" bson:"website"`
	Country     string   `json:"country" bson:"country"`
	Description string   `json:"description" bson:"description"`
	Industry    string   `json:"industry" bson:"industry"`
	Competitors []string `json:"competitors" bson:"competitors"`
}

// BrandAnalysisRecord is a persisted brand discovery result for a session
type BrandAnalysisRecord struct {
	ID        string    `json:"id" bson:"_id"`
	SessionID string    `json:"session_id" bson:"session_id"`
	Brand     BrandInfo `json:"brand" bson:"brand"`
	Status    string    `json:"status" bson:"status"` // pending, completed, failed
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// GeoAnalysisRecord is a persisted GEO analysis result for a session
type GeoAnalysisRecord struct {
	ID             string          `json:"id" bson:"_id"`
	SessionID      string          `json:"session_id" bson:"session_id"`
	BrandName      string          `json:"brand_name" bson:"brand_name"`
	SearchQueries  []string        `json:"search_queries" bson:"search_queries"`
	Competitors    []string        `json:"competitors" bson:"competitors"`
	LLMModels      []string        `json:"llm_models" bson:"llm_models"`
	Result         *AnalysisResult `json:"result,omitempty" bson:"result,omitempty"`
	ProgressStatus float64         `json:"progress_status" bson:"progress_status"`
	Status         string          `json:"status" bson:"status"` // running, completed, failed
	CreatedAt      time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" bson:"updated_at"`
}

// Report represents a delivered (or pending) analysis report
type Report struct {
	ID        string    `json:"id" bson:"_id"`
	SessionID string    `json:"session_id" bson:"session_id"`
	BrandName string    `json:"brand_name" bson:"brand_name"`
	Recipient string    `json:"recipient" bson:"recipient"`
	EmailSent bool      `json:"email_sent" bson:"email_sent"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Schedule represents a recurring GEO monitoring configuration
type Schedule struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	SessionID string          `json:"session_id,omitempty"`
	Request   AnalysisRequest `json:"request"`
	CronExpr  string          `json:"cron_expr"` // Cron expression for scheduling
	Enabled   bool            `json:"enabled"`
	LastRun   *time.Time      `json:"last_run,omitempty"`
	NextRun   *time.Time      `json:"next_run,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ModelInfo represents information about an available model from a provider
type ModelInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Provider    string `json:"provider,omitempty"`
}
