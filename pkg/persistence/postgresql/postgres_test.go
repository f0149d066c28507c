package postgresql_test

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/dukex/stateflow/pkg/models"
	"github.com/dukex/stateflow/pkg/persistence"
	"github.com/dukex/stateflow/pkg/persistence/postgresql"
	"github.com/dukex/stateflow/pkg/testutil"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var postgresContainer *postgres.PostgresContainer

func dropDb(ctx context.Context, t *testing.T, databaseURL string) {
	t.Helper()

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	for _, table := range []string{"drafts", "schema_migrations"} {
		_, err = db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE")
		require.NoError(t, err)
	}

	err = db.Close()
	require.NoError(t, err)
}

func setupTestDB(t *testing.T) (*postgresql.Persistence, context.Context, string) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)

	if postgresContainer == nil || !postgresContainer.IsRunning() {
		var err error

		postgresContainer, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("stateflow_test"),
			postgres.WithUsername("stateflow"),
			postgres.WithPassword("stateflow"),
			postgres.BasicWaitStrategies(),
		)
		require.NoError(t, err)
	}

	databaseURL, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	dropDb(ctx, t, databaseURL)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		dropDb(ctx, t, databaseURL)

		err = p.Close(ctx)
		require.NoError(t, err)

		cancel()
	})

	return p, ctx, databaseURL
}

func TestNewPersistence_Migrations(t *testing.T) {
	_, ctx, databaseURL := setupTestDB(t)

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	defer func() {
		err := db.Close()
		require.NoError(t, err)
	}()

	var exists bool

	err = db.QueryRowContext(ctx, `SELECT EXISTS (SELECT FROM
information_schema.tables WHERE table_name = 'drafts')`).Scan(&exists)
	require.NoError(t, err)
	assert.True(t, exists, "drafts table should exist")

	var version int

	err = db.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_migrations").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, 2, version)
}

func TestNewPersistence_HealthCheck(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	assert.NoError(t, p.HealthCheck(ctx))
}

func TestNewPersistence_SaveAndRetrieveDraft(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	draft := &models.Draft{
		ID:       "draft-1",
		Document: testutil.CampaignDocument(),
		Diagnostics: models.Diagnostics{
			{Severity: models.SeverityError, Kind: models.KindStructural, Message: "graph has no start node"},
		},
	}

	require.NoError(t, p.SaveDraft(ctx, draft))

	loaded, err := p.DraftByID(ctx, "draft-1")
	require.NoError(t, err)

	assert.Equal(t, draft.Document.Name, loaded.Document.Name)
	assert.Equal(t, draft.Document.StartAt, loaded.Document.StartAt)
	assert.Len(t, loaded.Document.Steps, len(draft.Document.Steps))
	assert.Equal(t, draft.Diagnostics, loaded.Diagnostics)
	assert.WithinDuration(t, draft.CreatedAt, loaded.CreatedAt, time.Millisecond)

	draft.Document.Name = "renamed"
	require.NoError(t, p.SaveDraft(ctx, draft))

	drafts, err := p.Drafts(ctx)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "renamed", drafts[0].Document.Name)
}

func TestNewPersistence_DeleteDraft(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	require.NoError(t, p.SaveDraft(ctx, &models.Draft{ID: "d", Document: models.WorkflowDocument{Name: "n"}}))
	require.NoError(t, p.DeleteDraft(ctx, "d"))

	_, err := p.DraftByID(ctx, "d")
	assert.True(t, persistence.IsDraftNotFound(err))

	err = p.DeleteDraft(ctx, "d")
	assert.True(t, persistence.IsDraftNotFound(err))

	drafts, err := p.Drafts(ctx)
	require.NoError(t, err)
	assert.Empty(t, drafts)
}

func TestNewPersistence_SaveDraftRequiresID(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	err := p.SaveDraft(ctx, &models.Draft{})
	assert.True(t, persistence.IsInvalidDraft(err))
}
