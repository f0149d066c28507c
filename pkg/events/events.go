// Package events defines the domain events published by the editor backend.
package events

import (
	"time"
)

type EventType string

// Topic carries every editor event.
const Topic = "stateflow.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	WorkflowSubmittedEvent EventType = "workflow.submitted"
	DraftSavedEvent        EventType = "draft.saved"
	DraftDeletedEvent      EventType = "draft.deleted"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// NewBaseEvent stamps an event of eventType with id and the current time.
func NewBaseEvent(id string, eventType EventType) BaseEvent {
	return BaseEvent{
		ID:        id,
		Type:      eventType,
		Timestamp: time.Now().UTC(),
	}
}

// WorkflowSubmitted is published after the execution service accepted a document.
type WorkflowSubmitted struct {
	BaseEvent

	WorkflowID string `json:"workflow_id"`
	Name       string `json:"name"`
	StepCount  int    `json:"step_count"`
	CreatedBy  string `json:"created_by,omitempty"`
	Warnings   int    `json:"warnings"`
}

func (e WorkflowSubmitted) GetType() EventType {
	return WorkflowSubmittedEvent
}

// DraftSaved is published whenever a draft is created or updated.
type DraftSaved struct {
	BaseEvent

	DraftID     string `json:"draft_id"`
	Name        string `json:"name"`
	Diagnostics int    `json:"diagnostics"`
	Blocking    bool   `json:"blocking"`
}

func (e DraftSaved) GetType() EventType {
	return DraftSavedEvent
}

type DraftDeleted struct {
	BaseEvent

	DraftID string `json:"draft_id"`
}

func (e DraftDeleted) GetType() EventType {
	return DraftDeletedEvent
}
