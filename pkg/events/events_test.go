package events_test

import (
	"encoding/json"
	"testing"

	"github.com/dukex/stateflow/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventTypes(t *testing.T) {
	assert.Equal(t, events.WorkflowSubmittedEvent, events.WorkflowSubmitted{}.GetType())
	assert.Equal(t, events.DraftSavedEvent, events.DraftSaved{}.GetType())
	assert.Equal(t, events.DraftDeletedEvent, events.DraftDeleted{}.GetType())
}

func TestWorkflowSubmitted_JSON(t *testing.T) {
	event := events.WorkflowSubmitted{
		BaseEvent:  events.NewBaseEvent("evt-1", events.WorkflowSubmittedEvent),
		WorkflowID: "wf-1",
		Name:       "campaign",
		StepCount:  3,
	}

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "evt-1", decoded["id"])
	assert.Equal(t, "workflow.submitted", decoded["type"])
	assert.Equal(t, "wf-1", decoded["workflow_id"])
	assert.InDelta(t, 3, decoded["step_count"], 0)
	assert.NotContains(t, decoded, "created_by")
	assert.NotContains(t, decoded, "metadata")
}
