package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/stateflow/pkg/models"
	"github.com/dukex/stateflow/pkg/persistence"
)

// DraftRepository handles draft-related database operations.
type DraftRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewDraftRepository creates a new draft repository.
func NewDraftRepository(db *sql.DB, logger *slog.Logger) *DraftRepository {
	return &DraftRepository{db: db, logger: logger}
}

type rowScanner interface {
	Scan(dest ...any) error
}

// GetAll returns all drafts, newest first.
func (r *DraftRepository) GetAll(ctx context.Context) ([]*models.Draft, error) {
	query := `
		SELECT
			id
		  , document
		  , diagnostics
		  , created_at
		  , updated_at
		FROM drafts
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query drafts: %w", err)
	}

	defer func(ctx context.Context, r *DraftRepository) {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}(ctx, r)

	drafts := make([]*models.Draft, 0)

	for rows.Next() {
		draft, err := r.scanDraft(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan draft: %w", err)
		}

		drafts = append(drafts, draft)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating drafts: %w", err)
	}

	return drafts, nil
}

// GetByID returns the draft with id or an ErrDraftNotFound error.
func (r *DraftRepository) GetByID(ctx context.Context, id string) (*models.Draft, error) {
	query := `
		SELECT
			id
		  , document
		  , diagnostics
		  , created_at
		  , updated_at
		FROM drafts
		WHERE id = $1 AND deleted_at IS NULL
	`

	draft, err := r.scanDraft(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewDraftError("DraftByID", id, persistence.ErrDraftNotFound)
		}

		return nil, fmt.Errorf("failed to scan draft: %w", err)
	}

	return draft, nil
}

// Save inserts or updates a draft. A previously deleted draft is restored.
func (r *DraftRepository) Save(ctx context.Context, draft *models.Draft) error {
	if draft.ID == "" {
		return &persistence.DraftError{Op: "SaveDraft", Err: persistence.ErrInvalidDraft, Message: "missing draft id"}
	}

	now := time.Now().UTC()

	if draft.CreatedAt.IsZero() {
		draft.CreatedAt = now
	}

	draft.UpdatedAt = now

	documentJSON, err := json.Marshal(draft.Document)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	diagnostics := draft.Diagnostics
	if diagnostics == nil {
		diagnostics = models.Diagnostics{}
	}

	diagnosticsJSON, err := json.Marshal(diagnostics)
	if err != nil {
		return fmt.Errorf("failed to marshal diagnostics: %w", err)
	}

	query := `
		INSERT INTO drafts (id, name, document, diagnostics, created_by, blocking, created_at, updated_at, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULL)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			document = EXCLUDED.document,
			diagnostics = EXCLUDED.diagnostics,
			created_by = EXCLUDED.created_by,
			blocking = EXCLUDED.blocking,
			updated_at = EXCLUDED.updated_at,
			deleted_at = NULL
	`

	_, err = r.db.ExecContext(ctx, query,
		draft.ID,
		draft.Document.Name,
		documentJSON,
		diagnosticsJSON,
		draft.Document.CreatedBy,
		draft.Diagnostics.Blocking(),
		draft.CreatedAt,
		draft.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}

	return nil
}

// Delete soft deletes a draft.
func (r *DraftRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE drafts SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL",
		id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if affected == 0 {
		return persistence.NewDraftError("DeleteDraft", id, persistence.ErrDraftNotFound)
	}

	return nil
}

func (r *DraftRepository) scanDraft(row rowScanner) (*models.Draft, error) {
	var (
		draft           models.Draft
		documentJSON    []byte
		diagnosticsJSON []byte
	)

	err := row.Scan(&draft.ID, &documentJSON, &diagnosticsJSON, &draft.CreatedAt, &draft.UpdatedAt)
	if err != nil {
		return nil, err
	}

	err = json.Unmarshal(documentJSON, &draft.Document)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}

	err = json.Unmarshal(diagnosticsJSON, &draft.Diagnostics)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal diagnostics: %w", err)
	}

	return &draft, nil
}
