package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AI2HU/geolens/internal/db"
	"github.com/AI2HU/geolens/internal/models"
)

func newTestStore(t *testing.T) *SQLite {
	t.Helper()

	store, err := New(&db.Config{
		Provider: "sqlite",
		URI:      filepath.Join(t.TempDir(), "geolens.db"),
	})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Connect(ctx))
	t.Cleanup(func() { _ = store.Disconnect(ctx) })

	return store
}

func TestSessionLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	session := &models.Session{Email: "user@example.com"}
	require.NoError(t, store.CreateSession(ctx, session))
	require.NotEmpty(t, session.ID)

	got, err := store.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", got.Email)

	byEmail, err := store.GetSessionByEmail(ctx, "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, session.ID, byEmail.ID)

	require.NoError(t, store.TouchSession(ctx, session.ID))

	require.NoError(t, store.DeleteSession(ctx, session.ID))
	_, err = store.GetSession(ctx, session.ID)
	require.Error(t, err)
}

func TestSessionNotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetSession(ctx, "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session not found")

	require.Error(t, store.TouchSession(ctx, "missing"))
	require.Error(t, store.DeleteSession(ctx, "missing"))
}

func TestScheduleRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	schedule := &models.Schedule{
		Name: "weekly acme check",
		Request: models.AnalysisRequest{
			BrandName:   "Acme",
			Competitors: []string{"Zeta"},
			Queries:     []models.Query{{Text: "best crm tools"}},
			Models:      []string{"gpt-4o-mini"},
		},
		CronExpr: "0 9 * * 1",
		Enabled:  true,
	}
	require.NoError(t, store.CreateSchedule(ctx, schedule))
	require.NotEmpty(t, schedule.ID)

	got, err := store.GetSchedule(ctx, schedule.ID)
	require.NoError(t, err)
	assert.Equal(t, "weekly acme check", got.Name)
	assert.Equal(t, "Acme", got.Request.BrandName)
	assert.Equal(t, []string{"Zeta"}, got.Request.Competitors)
	assert.Equal(t, "best crm tools", got.Request.Queries[0].Text)
	assert.Nil(t, got.LastRun)

	got.Enabled = false
	require.NoError(t, store.UpdateSchedule(ctx, got))

	enabled := true
	active, err := store.ListSchedules(ctx, &enabled)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := store.ListSchedules(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.False(t, all[0].Enabled)

	require.NoError(t, store.DeleteSchedule(ctx, schedule.ID))
	_, err = store.GetSchedule(ctx, schedule.ID)
	require.Error(t, err)
}
