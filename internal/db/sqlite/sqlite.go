package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/AI2HU/geolens/internal/db"
	"github.com/AI2HU/geolens/internal/models"
)

// SQLite implements the SQLDatabase interface for SQLite
type SQLite struct {
	db     *sql.DB
	config *db.Config
}

// New creates a new SQLite database instance
func New(config *db.Config) (*SQLite, error) {
	return &SQLite{
		config: config,
	}, nil
}

// Connect establishes connection to SQLite
func (s *SQLite) Connect(ctx context.Context) error {
	// Expand the URI path (handle ~ and relative paths)
	dbPath := s.config.URI
	if strings.HasPrefix(dbPath, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	} else if !filepath.IsAbs(dbPath) {
		absPath, err := filepath.Abs(dbPath)
		if err != nil {
			return fmt.Errorf("failed to resolve absolute path: %w", err)
		}
		dbPath = absPath
	}

	// Ensure the directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open SQLite database at path '%s': %w", dbPath, err)
	}

	if err := conn.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping SQLite database at path '%s': %w", dbPath, err)
	}

	s.db = conn

	if err := s.createTables(ctx); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// Disconnect closes the SQLite connection
func (s *SQLite) Disconnect(ctx context.Context) error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping checks the database connection
func (s *SQLite) Ping(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("not connected to database")
	}
	return s.db.PingContext(ctx)
}

// DB exposes the underlying handle for migration tooling
func (s *SQLite) DB() *sql.DB {
	return s.db
}

// createTables creates necessary tables
func (s *SQLite) createTables(ctx context.Context) error {
	createSessionsTable := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		last_activity DATETIME NOT NULL
	);`

	createSchedulesTable := `
	CREATE TABLE IF NOT EXISTS schedules (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		session_id TEXT,
		request TEXT NOT NULL, -- JSON-encoded analysis request
		cron_expr TEXT NOT NULL,
		enabled BOOLEAN NOT NULL DEFAULT 1,
		last_run DATETIME,
		next_run DATETIME,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);`

	createIndexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_sessions_email ON sessions(email);",
		"CREATE INDEX IF NOT EXISTS idx_schedules_enabled ON schedules(enabled);",
		"CREATE INDEX IF NOT EXISTS idx_schedules_next_run ON schedules(next_run);",
	}

	queries := []string{createSessionsTable, createSchedulesTable}
	queries = append(queries, createIndexes...)

	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}

	return nil
}

// Session Operations

// CreateSession creates a new session, assigning an id when missing
func (s *SQLite) CreateSession(ctx context.Context, session *models.Session) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	now := time.Now()
	session.CreatedAt = now
	session.LastActivity = now

	query := `
		INSERT INTO sessions (id, email, created_at, last_activity)
		VALUES (?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		session.ID,
		session.Email,
		session.CreatedAt,
		session.LastActivity,
	)

	return err
}

// GetSession retrieves a session by ID
func (s *SQLite) GetSession(ctx context.Context, id string) (*models.Session, error) {
	query := `
		SELECT id, email, created_at, last_activity
		FROM sessions WHERE id = ?`

	var session models.Session
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID,
		&session.Email,
		&session.CreatedAt,
		&session.LastActivity,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session not found: %s", id)
	}
	if err != nil {
		return nil, err
	}

	return &session, nil
}

// GetSessionByEmail retrieves the most recent session for an email
func (s *SQLite) GetSessionByEmail(ctx context.Context, email string) (*models.Session, error) {
	query := `
		SELECT id, email, created_at, last_activity
		FROM sessions WHERE email = ?
		ORDER BY last_activity DESC LIMIT 1`

	var session models.Session
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&session.ID,
		&session.Email,
		&session.CreatedAt,
		&session.LastActivity,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session not found for email: %s", email)
	}
	if err != nil {
		return nil, err
	}

	return &session, nil
}

// TouchSession updates the session's last activity timestamp
func (s *SQLite) TouchSession(ctx context.Context, id string) error {
	query := "UPDATE sessions SET last_activity = ? WHERE id = ?"
	result, err := s.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("session not found: %s", id)
	}

	return nil
}

// DeleteSession deletes a session
func (s *SQLite) DeleteSession(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("session not found: %s", id)
	}

	return nil
}

// Schedule Operations

// CreateSchedule creates a new schedule
func (s *SQLite) CreateSchedule(ctx context.Context, schedule *models.Schedule) error {
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	schedule.CreatedAt = time.Now()
	schedule.UpdatedAt = time.Now()

	requestJSON, err := json.Marshal(schedule.Request)
	if err != nil {
		return fmt.Errorf("failed to encode schedule request: %w", err)
	}

	query := `
		INSERT INTO schedules (id, name, session_id, request, cron_expr, enabled, last_run, next_run, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		schedule.ID,
		schedule.Name,
		schedule.SessionID,
		string(requestJSON),
		schedule.CronExpr,
		schedule.Enabled,
		schedule.LastRun,
		schedule.NextRun,
		schedule.CreatedAt,
		schedule.UpdatedAt,
	)

	return err
}

// GetSchedule retrieves a schedule by ID
func (s *SQLite) GetSchedule(ctx context.Context, id string) (*models.Schedule, error) {
	query := `
		SELECT id, name, session_id, request, cron_expr, enabled, last_run, next_run, created_at, updated_at
		FROM schedules WHERE id = ?`

	schedule, err := scanSchedule(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("schedule not found: %s", id)
	}
	return schedule, err
}

// ListSchedules lists all schedules, optionally filtered by enabled status
func (s *SQLite) ListSchedules(ctx context.Context, enabled *bool) ([]*models.Schedule, error) {
	query := `
		SELECT id, name, session_id, request, cron_expr, enabled, last_run, next_run, created_at, updated_at
		FROM schedules`
	args := []interface{}{}

	if enabled != nil {
		query += " WHERE enabled = ?"
		args = append(args, *enabled)
	}

	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedules []*models.Schedule
	for rows.Next() {
		schedule, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, schedule)
	}

	return schedules, rows.Err()
}

// UpdateSchedule updates an existing schedule
func (s *SQLite) UpdateSchedule(ctx context.Context, schedule *models.Schedule) error {
	schedule.UpdatedAt = time.Now()

	requestJSON, err := json.Marshal(schedule.Request)
	if err != nil {
		return fmt.Errorf("failed to encode schedule request: %w", err)
	}

	query := `
		UPDATE schedules
		SET name = ?, session_id = ?, request = ?, cron_expr = ?, enabled = ?, last_run = ?, next_run = ?, updated_at = ?
		WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query,
		schedule.Name,
		schedule.SessionID,
		string(requestJSON),
		schedule.CronExpr,
		schedule.Enabled,
		schedule.LastRun,
		schedule.NextRun,
		schedule.UpdatedAt,
		schedule.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("schedule not found: %s", schedule.ID)
	}

	return nil
}

// DeleteSchedule deletes a schedule
func (s *SQLite) DeleteSchedule(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM schedules WHERE id = ?", id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("schedule not found: %s", id)
	}

	return nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanSchedule
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSchedule(row scanner) (*models.Schedule, error) {
	var schedule models.Schedule
	var sessionID sql.NullString
	var requestJSON string
	var lastRun, nextRun sql.NullTime

	err := row.Scan(
		&schedule.ID,
		&schedule.Name,
		&sessionID,
		&requestJSON,
		&schedule.CronExpr,
		&schedule.Enabled,
		&lastRun,
		&nextRun,
		&schedule.CreatedAt,
		&schedule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	schedule.SessionID = sessionID.String
	if lastRun.Valid {
		schedule.LastRun = &lastRun.Time
	}
	if nextRun.Valid {
		schedule.NextRun = &nextRun.Time
	}
	if err := json.Unmarshal([]byte(requestJSON), &schedule.Request); err != nil {
		return nil, fmt.Errorf("failed to decode schedule request: %w", err)
	}

	return &schedule, nil
}
