package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/AI2HU/geolens/internal/db"
	"github.com/AI2HU/geolens/internal/geo"
	"github.com/AI2HU/geolens/internal/logger"
	"github.com/AI2HU/geolens/internal/models"
)

// Scheduler runs recurring GEO analyses from persisted schedules.
type Scheduler struct {
	sql      db.SQLDatabase
	nosql    db.NoSQLDatabase
	analyzer *geo.Analyzer
	cron     *cron.Cron
	running  bool
	mu       sync.RWMutex
}

// New creates a new scheduler
func New(sqlDB db.SQLDatabase, nosqlDB db.NoSQLDatabase, analyzer *geo.Analyzer) *Scheduler {
	return &Scheduler{
		sql:      sqlDB,
		nosql:    nosqlDB,
		analyzer: analyzer,
		cron:     cron.New(),
	}
}

// Start loads all enabled schedules and starts the cron loop
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	schedules, err := s.sql.ListSchedules(ctx, boolPtr(true))
	if err != nil {
		return fmt.Errorf("failed to load schedules: %w", err)
	}

	for _, schedule := range schedules {
		if err := s.registerSchedule(schedule); err != nil {
			logger.Error("Failed to register schedule %s: %v", schedule.ID, err)
		}
	}

	s.cron.Start()
	s.running = true

	logger.Info("Scheduler started with %d schedules", len(schedules))
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cron.Stop()
	s.running = false

	logger.Info("Scheduler stopped")
}

// registerSchedule registers a schedule with cron
func (s *Scheduler) registerSchedule(schedule *models.Schedule) error {
	entryID, err := s.cron.AddFunc(schedule.CronExpr, func() {
		if err := s.executeSchedule(context.Background(), schedule.ID); err != nil {
			logger.Error("Failed to execute schedule %s: %v", schedule.ID, err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	next := s.cron.Entry(entryID).Next
	if !next.IsZero() {
		schedule.NextRun = &next
		if err := s.sql.UpdateSchedule(context.Background(), schedule); err != nil {
			logger.Warning("Failed to record next run for schedule %s: %v", schedule.ID, err)
		}
	}

	logger.Info("Registered schedule %s with cron expression: %s", schedule.ID, schedule.CronExpr)
	return nil
}

// executeSchedule runs one scheduled analysis and persists the outcome. The
// schedule is re-read so edits made since registration take effect.
func (s *Scheduler) executeSchedule(ctx context.Context, scheduleID string) error {
	schedule, err := s.sql.GetSchedule(ctx, scheduleID)
	if err != nil {
		return fmt.Errorf("failed to load schedule: %w", err)
	}
	if !schedule.Enabled {
		logger.Info("Schedule %s is disabled, skipping", schedule.ID)
		return nil
	}

	logger.Info("Executing schedule %s for brand %q", schedule.ID, schedule.Request.BrandName)

	record := &models.GeoAnalysisRecord{
		SessionID:     schedule.SessionID,
		BrandName:     schedule.Request.BrandName,
		SearchQueries: schedule.Request.QueryStrings(),
		Competitors:   schedule.Request.Competitors,
		LLMModels:     schedule.Request.Models,
		Status:        "running",
	}
	if err := s.nosql.CreateGeoAnalysis(ctx, record); err != nil {
		return fmt.Errorf("failed to create analysis record: %w", err)
	}

	result, runErr := s.analyzer.RunStreaming(ctx, &schedule.Request, func(event geo.Event) {
		if event.Progress == nil {
			return
		}
		if err := s.nosql.UpdateGeoAnalysisProgress(ctx, record.ID, *event.Progress); err != nil {
			logger.Debug("Failed to update progress for analysis %s: %v", record.ID, err)
		}
	})

	status := "completed"
	if runErr != nil {
		status = "failed"
	}
	if err := s.nosql.CompleteGeoAnalysis(ctx, record.ID, result, status); err != nil {
		logger.Error("Failed to persist analysis %s: %v", record.ID, err)
	}

	now := time.Now()
	schedule.LastRun = &now
	if err := s.sql.UpdateSchedule(ctx, schedule); err != nil {
		logger.Warning("Failed to record last run for schedule %s: %v", schedule.ID, err)
	}

	if runErr != nil {
		return fmt.Errorf("analysis failed: %w", runErr)
	}

	logger.Info("Schedule %s completed: mention rate %.1f%%", schedule.ID, result.OverallMetrics.MentionRate)
	return nil
}

// RunNow executes a schedule immediately, outside its cron cadence
func (s *Scheduler) RunNow(ctx context.Context, scheduleID string) error {
	return s.executeSchedule(ctx, scheduleID)
}

// IsRunning reports whether the cron loop is active
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

func boolPtr(b bool) *bool {
	return &b
}
