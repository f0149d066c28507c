package redis_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/dukex/stateflow/pkg/models"
	"github.com/dukex/stateflow/pkg/persistence"
	"github.com/dukex/stateflow/pkg/persistence/redis"
	"github.com/dukex/stateflow/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedis(t *testing.T) (*redis.Persistence, context.Context) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)

	endpoint, err := container.Endpoint(ctx, "redis")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	p, err := redis.NewPersistence(ctx, logger, endpoint)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, p.Close(ctx))
		require.NoError(t, testcontainers.TerminateContainer(container))
		cancel()
	})

	return p, ctx
}

func TestNewPersistence_InvalidURL(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	_, err := redis.NewPersistence(t.Context(), logger, "http://localhost")
	assert.Error(t, err)
}

func TestPersistence_DraftLifecycle(t *testing.T) {
	p, ctx := setupRedis(t)

	require.NoError(t, p.HealthCheck(ctx))

	drafts, err := p.Drafts(ctx)
	require.NoError(t, err)
	assert.Empty(t, drafts)

	older := &models.Draft{ID: "older", Document: testutil.CampaignDocument(), CreatedAt: time.Now().UTC().Add(-time.Hour)}
	newer := &models.Draft{ID: "newer", Document: models.WorkflowDocument{Name: "n"}}

	require.NoError(t, p.SaveDraft(ctx, older))
	require.NoError(t, p.SaveDraft(ctx, newer))

	loaded, err := p.DraftByID(ctx, "older")
	require.NoError(t, err)
	assert.Equal(t, older.Document.StartAt, loaded.Document.StartAt)
	assert.Len(t, loaded.Document.Steps, len(older.Document.Steps))

	drafts, err = p.Drafts(ctx)
	require.NoError(t, err)
	require.Len(t, drafts, 2)
	assert.Equal(t, "newer", drafts[0].ID)

	require.NoError(t, p.DeleteDraft(ctx, "older"))

	_, err = p.DraftByID(ctx, "older")
	assert.True(t, persistence.IsDraftNotFound(err))
	assert.True(t, persistence.IsDraftNotFound(p.DeleteDraft(ctx, "older")))

	drafts, err = p.Drafts(ctx)
	require.NoError(t, err)
	assert.Len(t, drafts, 1)
}

func TestPersistence_SaveDraftRequiresID(t *testing.T) {
	p, ctx := setupRedis(t)

	assert.True(t, persistence.IsInvalidDraft(p.SaveDraft(ctx, &models.Draft{})))
}
