// Package persistence provides the storage abstraction for workflow drafts.
package persistence

import (
	"context"

	"github.com/dukex/stateflow/pkg/models"
)

// Persistence stores drafts: compiled documents kept locally until they are submitted.
type Persistence interface {
	Drafts(ctx context.Context) ([]*models.Draft, error)
	DraftByID(ctx context.Context, id string) (*models.Draft, error)
	SaveDraft(ctx context.Context, draft *models.Draft) error
	DeleteDraft(ctx context.Context, id string) error
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}
