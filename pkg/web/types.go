// Package web provides the HTTP API used by the workflow canvas.
package web

import (
	"github.com/dukex/stateflow/pkg/models"
)

// CompileRequest is the body of POST /compile. The graph is compiled as drawn;
// its problems are reported as diagnostics, not rejected.
type CompileRequest struct {
	Graph     models.Graph `json:"graph"      validate:"-"`
	Name      string       `json:"name"`
	CreatedBy string       `json:"created_by"`
}

// DecompileRequest is the body of POST /decompile.
type DecompileRequest struct {
	Document models.WorkflowDocument `json:"document"`
	// StartAt overrides the document's start step.
	StartAt string `json:"start_at,omitempty"`
}

// SubmitRequest is the body of POST /workflows.
type SubmitRequest struct {
	Graph     models.Graph `json:"graph"`
	Name      string       `json:"name"       validate:"required,min=1"`
	CreatedBy string       `json:"created_by"`
}

// DraftRequest is the body of POST /drafts and PUT /drafts/:id.
type DraftRequest struct {
	Graph     models.Graph `json:"graph"`
	Name      string       `json:"name"       validate:"required,min=1"`
	CreatedBy string       `json:"created_by"`
}

// DraftSummary is one entry of GET /drafts.
type DraftSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Steps       int    `json:"steps"`
	Diagnostics int    `json:"diagnostics"`
	Blocking    bool   `json:"blocking"`
	CreatedBy   string `json:"created_by,omitempty"`
}

// NewDraftSummary summarises draft for listings.
func NewDraftSummary(draft *models.Draft) DraftSummary {
	return DraftSummary{
		ID:          draft.ID,
		Name:        draft.Document.Name,
		Steps:       len(draft.Document.Steps),
		Diagnostics: len(draft.Diagnostics),
		Blocking:    draft.Diagnostics.Blocking(),
		CreatedBy:   draft.Document.CreatedBy,
	}
}
