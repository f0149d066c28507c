package validation_test

import (
	"testing"

	"github.com/dukex/stateflow/pkg/models"
	"github.com/dukex/stateflow/pkg/testutil"
	"github.com/dukex/stateflow/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateNode(t *testing.T) {
	tests := []struct {
		name          string
		nodeType      models.NodeType
		configuration string
		message       string
	}{
		{"valid task", models.NodeTypeTask, `{"resource": "arn:x", "p": 1}`, ""},
		{"task resource not a string", models.NodeTypeTask, `{"resource": 5}`, "missing resource in task node `N`"},
		{"valid choice", models.NodeTypeChoice, `[]`, ""},
		{"choice with scalar rule", models.NodeTypeChoice, `[1]`, "Choice node `N` rules must be objects"},
		{"choice string", models.NodeTypeChoice, `"x"`, "Choice node `N` JSON must be an array"},
		{"valid parallel", models.NodeTypeParallel, `[{"a": 1}]`, ""},
		{"parallel blank", models.NodeTypeParallel, ``, "Parallel node `N` input must be an array"},
		{"valid wait fractional seconds", models.NodeTypeWait, `{"seconds": 1.5}`, ""},
		{"wait timestamp with offset", models.NodeTypeWait, `{"timestamp": "2025-06-01T08:30:00+02:00"}`, ""},
		{"wait date only", models.NodeTypeWait, `{"timestamp": "2025-06-01"}`, ""},
		{"wait timestamp without zone", models.NodeTypeWait, `{"timestamp": "2025-06-01T08:30:00"}`, ""},
		{"wait timestamp not a date", models.NodeTypeWait, `{"timestamp": "next week"}`, "Wait node `N` timestamp is not an ISO-8601 date or date-time"},
		{"wait both fields", models.NodeTypeWait, `{"seconds": 1, "timestamp": "2025-06-01"}`, "Wait node `N` missing valid seconds or timestamp"},
		{"wait timestamp number", models.NodeTypeWait, `{"timestamp": 17}`, "Wait node `N` missing valid seconds or timestamp"},
		{"valid pass", models.NodeTypePass, `{"override": false}`, ""},
		{"pass array", models.NodeTypePass, `[]`, "Pass node `N` configuration must be an object"},
		{"success ignores configuration", models.NodeTypeSuccess, `[1, 2, 3]`, ""},
		{"malformed json", models.NodeTypeWait, `{"seconds":`, "invalid JSON configuration in wait node `N`"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diagnostics := validation.ValidateNode(testutil.Node("1", tt.nodeType, "N", tt.configuration))

			if tt.message == "" {
				assert.Empty(t, diagnostics)

				return
			}

			require.Len(t, diagnostics, 1)
			assert.Equal(t, tt.message, diagnostics[0].Message)
			assert.Equal(t, "N", diagnostics[0].Label)
			assert.Equal(t, "1", diagnostics[0].NodeID)
			assert.NotEmpty(t, diagnostics[0].Detail)
		})
	}
}

func TestValidateNode_UnknownType(t *testing.T) {
	diagnostics := validation.ValidateNode(testutil.Node("1", "map", "N", ""))

	require.Len(t, diagnostics, 1)
	assert.True(t, diagnostics.Blocking())
}

func TestValidateGraph(t *testing.T) {
	tests := []struct {
		name     string
		graph    models.Graph
		messages []string
		blocking bool
	}{
		{
			name:  "campaign graph is clean",
			graph: testutil.CampaignGraph(),
		},
		{
			name: "missing label",
			graph: models.Graph{
				Nodes: []models.Node{testutil.StartNode(""), testutil.Node("1", models.NodeTypeSuccess, "", "")},
				Edges: testutil.Link("start", "1"),
			},
			messages: []string{`node with id "1" has no label`},
			blocking: true,
		},
		{
			name: "start with incoming and two outgoing edges",
			graph: models.Graph{
				Nodes: []models.Node{
					testutil.StartNode(""),
					testutil.Node("1", models.NodeTypePass, "A", ""),
					testutil.Node("2", models.NodeTypeSuccess, "B", ""),
				},
				Edges: []models.Edge{
					{Source: "start", Target: "1"},
					{Source: "start", Target: "2"},
					{Source: "1", Target: "start"},
				},
			},
			messages: []string{
				"start node has incoming edges; they are ignored",
				"start node has 2 outgoing edges; only the first is used",
			},
		},
		{
			name: "pass with two successors",
			graph: models.Graph{
				Nodes: []models.Node{
					testutil.StartNode(""),
					testutil.Node("1", models.NodeTypePass, "A", ""),
					testutil.Node("2", models.NodeTypeSuccess, "B", ""),
					testutil.Node("3", models.NodeTypeSuccess, "C", ""),
				},
				Edges: []models.Edge{
					{Source: "start", Target: "1"},
					{Source: "1", Target: "2"},
					{Source: "1", Target: "3"},
				},
			},
			messages: []string{"pass node `A` has 2 outgoing edges; only the first is used"},
		},
		{
			name: "choice with two defaults",
			graph: models.Graph{
				Nodes: []models.Node{
					testutil.StartNode(""),
					testutil.Node("1", models.NodeTypeChoice, "D", "[]"),
					testutil.Node("2", models.NodeTypeSuccess, "B", ""),
					testutil.Node("3", models.NodeTypeSuccess, "C", ""),
				},
				Edges: []models.Edge{
					{Source: "start", Target: "1"},
					{Source: "1", Target: "2", Default: true},
					{Source: "1", Target: "3", Default: true},
				},
			},
			messages: []string{"Choice node `D` has 2 default edges; only the first is used"},
		},
		{
			name: "choice rule targets count as reachable",
			graph: models.Graph{
				Nodes: []models.Node{
					testutil.StartNode(""),
					testutil.Node("1", models.NodeTypeChoice, "D", `[{"next": "B"}]`),
					testutil.Node("2", models.NodeTypeSuccess, "B", ""),
				},
				Edges: testutil.Link("start", "1"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diagnostics := validation.ValidateGraph(tt.graph)

			messages := make([]string, 0, len(diagnostics))
			for _, d := range diagnostics {
				messages = append(messages, d.Message)
			}

			if len(tt.messages) == 0 {
				assert.Empty(t, messages)
			} else {
				assert.Equal(t, tt.messages, messages)
			}

			assert.Equal(t, tt.blocking, diagnostics.Blocking())
		})
	}
}
