// Package file provides file-based persistence for workflow drafts.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dukex/stateflow/pkg/models"
	"github.com/dukex/stateflow/pkg/persistence"
)

const draftsDir = "drafts"

// Persistence implements the persistence.Persistence interface using the file system.
// Each draft is one JSON file under <root>/drafts.
type Persistence struct {
	root string
}

// NewPersistence creates a new instance of Persistence with the specified root directory.
func NewPersistence(root string) *Persistence {
	return &Persistence{root: strings.Replace(root, "file://", "", 1)}
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck checks if the file persistence layer is healthy by verifying the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Drafts returns every stored draft, newest first.
func (fp *Persistence) Drafts(ctx context.Context) ([]*models.Draft, error) {
	root := os.DirFS(path.Join(fp.root, draftsDir))

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list draft files: %w", err)
	}

	drafts := make([]*models.Draft, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		draft, err := fp.DraftByID(ctx, strings.TrimSuffix(file, ".json"))
		if err != nil {
			return nil, fmt.Errorf("failed to load draft %s: %w", file, err)
		}

		drafts = append(drafts, draft)
	}

	sort.SliceStable(drafts, func(i, j int) bool {
		return drafts[i].CreatedAt.After(drafts[j].CreatedAt)
	})

	return drafts, nil
}

// DraftByID reads a draft from the file system.
func (fp *Persistence) DraftByID(_ context.Context, id string) (*models.Draft, error) {
	filePath, err := fp.draftPath("DraftByID", id)
	if err != nil {
		return nil, err
	}

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewDraftError("DraftByID", id, persistence.ErrDraftNotFound)
		}

		return nil, fmt.Errorf("failed to fetch draft %s: %w", id, err)
	}

	var draft models.Draft

	err = json.Unmarshal(body, &draft)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft %s: %w", id, err)
	}

	return &draft, nil
}

// SaveDraft writes draft to the file system, stamping its timestamps.
func (fp *Persistence) SaveDraft(_ context.Context, draft *models.Draft) error {
	filePath, err := fp.draftPath("SaveDraft", draft.ID)
	if err != nil {
		return err
	}

	err = os.MkdirAll(path.Join(fp.root, draftsDir), 0750)
	if err != nil {
		return fmt.Errorf("failed to create drafts directory: %w", err)
	}

	now := time.Now().UTC()
	if draft.CreatedAt.IsZero() {
		draft.CreatedAt = now
	}

	draft.UpdatedAt = now

	data, err := json.MarshalIndent(draft, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal draft %s: %w", draft.ID, err)
	}

	return os.WriteFile(filePath, data, 0600)
}

// DeleteDraft removes a draft by its ID.
func (fp *Persistence) DeleteDraft(_ context.Context, id string) error {
	filePath, err := fp.draftPath("DeleteDraft", id)
	if err != nil {
		return err
	}

	err = os.Remove(filePath)
	if err != nil && os.IsNotExist(err) {
		return persistence.NewDraftError("DeleteDraft", id, persistence.ErrDraftNotFound)
	}

	if err != nil {
		return fmt.Errorf("failed to delete draft %s: %w", id, err)
	}

	return nil
}

// draftPath rejects ids that would escape the drafts directory.
func (fp *Persistence) draftPath(op, id string) (string, error) {
	if id == "" || id != filepath.Base(id) || strings.HasPrefix(id, ".") {
		return "", &persistence.DraftError{Op: op, DraftID: id, Err: persistence.ErrInvalidDraft, Message: "invalid draft id"}
	}

	return filepath.Clean(path.Join(fp.root, draftsDir, id+".json")), nil
}
