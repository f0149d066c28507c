package models

import "time"

// DocumentVersion is the only step-document format version the engine accepts.
const DocumentVersion = 1

// WorkflowDocument is the submission payload for the workflow-execution service.
type WorkflowDocument struct {
	Name      string         `json:"name"              validate:"required"`
	Version   int            `json:"version"`
	Active    bool           `json:"active"`
	StartAt   string         `json:"startAt,omitempty"`
	Steps     []Step         `json:"steps"             validate:"dive"`
	Input     map[string]any `json:"input"`
	CreatedBy string         `json:"createdBy"`
}

// StepByName returns the first step named name.
func (d WorkflowDocument) StepByName(name string) (Step, bool) {
	for _, step := range d.Steps {
		if step.Name == name {
			return step, true
		}
	}

	return Step{}, false
}

// StepDescriptor is the engine's per-step view returned with a workflow map.
type StepDescriptor struct {
	Name      string `json:"name"`
	Action    Action `json:"action"`
	InputJSON string `json:"inputJson"` // serialized type-specific fields
	Next      string `json:"Next,omitempty"`
}

// WorkflowMap resolves step names and the start step of a persisted workflow.
type WorkflowMap struct {
	StartAt string           `json:"startAt"`
	Steps   []StepDescriptor `json:"steps"`
}

// Draft is a compiled document saved locally without being submitted.
type Draft struct {
	ID          string           `json:"id"`
	Document    WorkflowDocument `json:"document"`
	Diagnostics Diagnostics      `json:"diagnostics"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}
