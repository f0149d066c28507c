// Package postgresql provides PostgreSQL persistence for workflow drafts.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/stateflow/pkg/models"
	"github.com/dukex/stateflow/pkg/persistence/sqlbase"
	_ "github.com/lib/pq"
)

const (
	maxOpenConns    = 10
	connMaxIdleTime = 5 * time.Minute
)

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db        *sql.DB
	logger    *slog.Logger
	draftRepo *DraftRepository
}

// NewPersistence creates a new PostgreSQL persistence layer.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	database.SetMaxOpenConns(maxOpenConns)
	database.SetConnMaxIdleTime(connMaxIdleTime)

	err = database.PingContext(ctx)
	if err == nil {
		err = sqlbase.NewMigrationManager(logger, database, migrations()).RunMigrations(ctx)
	}

	if err != nil {
		_ = database.Close()

		return nil, fmt.Errorf("failed to initialize PostgreSQL persistence: %w", err)
	}

	return &Persistence{
		db:        database,
		logger:    logger,
		draftRepo: NewDraftRepository(database, logger),
	}, nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// Drafts returns all drafts that are not deleted.
func (p *Persistence) Drafts(ctx context.Context) ([]*models.Draft, error) {
	return p.draftRepo.GetAll(ctx)
}

// DraftByID returns a draft by its ID.
func (p *Persistence) DraftByID(ctx context.Context, id string) (*models.Draft, error) {
	return p.draftRepo.GetByID(ctx, id)
}

// SaveDraft inserts or updates a draft.
func (p *Persistence) SaveDraft(ctx context.Context, draft *models.Draft) error {
	return p.draftRepo.Save(ctx, draft)
}

// DeleteDraft soft deletes a draft by setting deleted_at timestamp.
func (p *Persistence) DeleteDraft(ctx context.Context, id string) error {
	return p.draftRepo.Delete(ctx, id)
}
