// Package testutil provides test data builders for graphs and step documents.
package testutil

import (
	"github.com/dukex/stateflow/pkg/models"
)

// StartNode creates the Start node with id "start" and the given input configuration.
func StartNode(configuration string) models.Node {
	return models.Node{
		ID:            "start",
		Type:          models.NodeTypeStart,
		Label:         "Start",
		Configuration: configuration,
	}
}

// Node creates a node; overrides are applied in order.
func Node(id string, nodeType models.NodeType, label, configuration string, overrides ...func(*models.Node)) models.Node {
	node := models.Node{
		ID:            id,
		Type:          nodeType,
		Label:         label,
		Position:      models.Position{X: 100, Y: 200},
		Configuration: configuration,
	}

	for _, override := range overrides {
		override(&node)
	}

	return node
}

// WithPosition sets the node position.
func WithPosition(x, y float64) func(*models.Node) {
	return func(n *models.Node) {
		n.Position = models.Position{X: x, Y: y}
	}
}

// Link creates edges chaining ids in order: ids[0] -> ids[1] -> ...
func Link(ids ...string) []models.Edge {
	edges := make([]models.Edge, 0, len(ids))

	for i := 1; i < len(ids); i++ {
		edges = append(edges, models.Edge{Source: ids[i-1], Target: ids[i]})
	}

	return edges
}

// CampaignGraph creates a representative graph: send a campaign, wait a day,
// branch on whether it was opened, and finish.
func CampaignGraph() models.Graph {
	return models.Graph{
		Nodes: []models.Node{
			StartNode(`{"campaignId": "c-42"}`),
			Node("1", models.NodeTypeTask, "Send", `{"resource": "arn:aws:lambda:send-campaign", "templateId": "welcome"}`),
			Node("2", models.NodeTypeWait, "Wait a day", `{"seconds": 86400}`),
			Node("3", models.NodeTypeChoice, "Opened?", `[{"condition": "$.opened == true", "next": "Done"}]`),
			Node("4", models.NodeTypeTask, "Resend", `{"resource": "arn:aws:lambda:send-campaign", "subject": "Reminder"}`),
			Node("5", models.NodeTypeSuccess, "Done", ""),
		},
		Edges: []models.Edge{
			{Source: "start", Target: "1"},
			{Source: "1", Target: "2"},
			{Source: "2", Target: "3"},
			{Source: "3", Target: "4"},
			{Source: "3", Target: "5"},
			{Source: "4", Target: "5"},
		},
	}
}

// CampaignDocument creates a consistent step document.
func CampaignDocument() models.WorkflowDocument {
	delay := 3600.0

	return models.WorkflowDocument{
		Name:    "re-engagement",
		Version: models.DocumentVersion,
		Active:  true,
		StartAt: "Tag",
		Steps: []models.Step{
			{Name: "Tag", Action: models.ActionPass, Parameters: map[string]any{"tag": "dormant"}, Override: true, Next: "Send"},
			{Name: "Send", Action: models.ActionTask, Resource: "arn:send", Parameters: map[string]any{"templateId": "t-1"}, Next: "Hold"},
			{Name: "Hold", Action: models.ActionWait, Seconds: &delay, Next: "Route"},
			{
				Name:   "Route",
				Action: models.ActionChoice,
				Choices: []models.ChoiceRule{
					{"condition": "$.clicked", "next": "Fan"},
					{"condition": "$.bounced", "next": "Bounced"},
				},
				Default: "Sleep",
			},
			{Name: "Fan", Action: models.ActionParallel, Branches: []any{map[string]any{"startAt": "x"}}, Next: "Done"},
			{Name: "Sleep", Action: models.ActionWait, Timestamp: "2025-01-01T00:00:00Z", Next: "Done"},
			{Name: "Bounced", Action: models.ActionFail},
			{Name: "Done", Action: models.ActionSuccess},
		},
		Input:     map[string]any{"segment": "dormant"},
		CreatedBy: "ops@example.com",
	}
}
