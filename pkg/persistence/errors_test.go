package persistence_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dukex/stateflow/pkg/persistence"
	"github.com/stretchr/testify/assert"
)

func TestStandardizedErrors(t *testing.T) {
	t.Parallel()

	t.Run("error checking functions work correctly", func(t *testing.T) {
		draftErr := persistence.NewDraftError("DraftByID", "draft-123", persistence.ErrDraftNotFound)
		wrapped := fmt.Errorf("loading: %w", draftErr)

		assert.True(t, persistence.IsDraftNotFound(draftErr))
		assert.True(t, persistence.IsDraftNotFound(wrapped))
		assert.False(t, persistence.IsInvalidDraft(wrapped))
		assert.True(t, errors.Is(draftErr, persistence.ErrDraftNotFound))
	})

	t.Run("draft error contains context", func(t *testing.T) {
		err := persistence.NewDraftError("DeleteDraft", "draft-123", persistence.ErrDraftNotFound)

		assert.Contains(t, err.Error(), "DeleteDraft")
		assert.Contains(t, err.Error(), "draft-123")
		assert.Contains(t, err.Error(), "draft not found")
	})

	t.Run("message is included when set", func(t *testing.T) {
		err := &persistence.DraftError{Op: "SaveDraft", Err: persistence.ErrInvalidDraft, Message: "missing id"}

		assert.Contains(t, err.Error(), "missing id")
		assert.True(t, persistence.IsInvalidDraft(err))
	})
}
