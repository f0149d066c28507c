package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/dukex/stateflow/pkg/models"
	"github.com/dukex/stateflow/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const yamlGraph = `
nodes:
  - id: start
    type: start
    label: Start
    configuration: '{"region": "eu"}'
  - id: "1"
    type: wait
    label: Pause
    configuration: '{"seconds": 60}'
  - id: "2"
    type: success
    label: Done
edges:
  - source: start
    target: "1"
  - source: "1"
    target: "2"
`

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	app := newApp()
	app.Writer = &stdout
	app.ErrWriter = &stderr

	err := app.Run(t.Context(), append([]string{"stateflow"}, args...))

	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	return path
}

func writeJSON(t *testing.T, name string, value any) string {
	t.Helper()

	data, err := json.Marshal(value)
	require.NoError(t, err)

	return writeFile(t, name, data)
}

func TestCompileCommand_JSON(t *testing.T) {
	in := writeJSON(t, "graph.json", testutil.CampaignGraph())

	stdout, stderr, err := run(t, "compile", "--in", in, "--name", "campaign", "--created-by", "ops")
	require.NoError(t, err)
	assert.Empty(t, stderr)

	var doc models.WorkflowDocument
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	assert.Equal(t, "campaign", doc.Name)
	assert.Equal(t, "ops", doc.CreatedBy)
	assert.Equal(t, "Send", doc.StartAt)
	assert.Len(t, doc.Steps, 5)
}

func TestCompileCommand_YAMLToFile(t *testing.T) {
	in := writeFile(t, "graph.yaml", []byte(yamlGraph))
	out := filepath.Join(t.TempDir(), "doc.json")

	stdout, _, err := run(t, "compile", "--in", in, "--name", "pause", "--out", out)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var doc models.WorkflowDocument
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "Pause", doc.StartAt)
	assert.Equal(t, map[string]any{"region": "eu"}, doc.Input)
	require.Len(t, doc.Steps, 2)
	require.NotNil(t, doc.Steps[0].Seconds)
	assert.InDelta(t, 60, *doc.Steps[0].Seconds, 0)
	assert.Equal(t, "Done", doc.Steps[0].Next)
}

func TestCompileCommand_Diagnostics(t *testing.T) {
	blocked := writeJSON(t, "blocked.json", models.Graph{
		Nodes: []models.Node{testutil.Node("1", models.NodeTypeSuccess, "Done", "")},
	})

	stdout, stderr, err := run(t, "compile", "--in", blocked, "--name", "x")
	require.ErrorIs(t, err, errBlocking)
	assert.NotEmpty(t, stdout, "the document is still written")
	assert.Contains(t, stderr, "graph has no start node")

	warning := writeJSON(t, "warning.json", models.Graph{
		Nodes: []models.Node{
			testutil.StartNode(""),
			testutil.Node("1", models.NodeTypeTask, "Send", `{"templateId": "t"}`),
		},
		Edges: testutil.Link("start", "1"),
	})

	_, _, err = run(t, "compile", "--in", warning, "--name", "x")
	require.NoError(t, err)

	_, _, err = run(t, "compile", "--in", warning, "--name", "x", "--strict")
	require.ErrorIs(t, err, errDiagnostics)
}

func TestCompileCommand_MissingFile(t *testing.T) {
	_, _, err := run(t, "compile", "--in", filepath.Join(t.TempDir(), "nope.json"), "--name", "x")
	require.Error(t, err)
}

func TestDecompileCommand(t *testing.T) {
	doc := testutil.CampaignDocument()
	in := writeJSON(t, "doc.json", doc)

	stdout, _, err := run(t, "decompile", "--in", in)
	require.NoError(t, err)

	var graph models.Graph
	require.NoError(t, json.Unmarshal([]byte(stdout), &graph))
	assert.Len(t, graph.Nodes, len(doc.Steps)+1)
	assert.Equal(t, "start", graph.Nodes[0].ID)

	out := filepath.Join(t.TempDir(), "graph.yaml")

	_, stderr, err := run(t, "decompile", "--in", in, "--start", "Missing", "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stderr, "start step `Missing` does not exist")

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var fromYAML models.Graph
	require.NoError(t, yaml.Unmarshal(data, &fromYAML))
	assert.Len(t, fromYAML.Nodes, len(doc.Steps)+1)
}

func TestValidateCommand(t *testing.T) {
	clean := writeFile(t, "graph.yaml", []byte(yamlGraph))

	stdout, _, err := run(t, "validate", "--in", clean)
	require.NoError(t, err)
	assert.Equal(t, "ok\n", stdout)

	broken := writeJSON(t, "broken.json", models.Graph{
		Nodes: []models.Node{
			testutil.StartNode(""),
			testutil.Node("1", models.NodeTypeWait, "Pause", `{"seconds": "soon"}`),
		},
		Edges: testutil.Link("start", "1"),
	})

	stdout, _, err = run(t, "validate", "--in", broken)
	require.NoError(t, err, "configuration problems are warnings")
	assert.Contains(t, stdout, "Wait node `Pause` missing valid seconds or timestamp")

	blocked := writeJSON(t, "blocked.json", models.Graph{
		Nodes: []models.Node{testutil.Node("1", models.NodeTypeSuccess, "Done", "")},
	})

	stdout, _, err = run(t, "validate", "--in", blocked)
	require.ErrorIs(t, err, errBlocking)
	assert.Contains(t, stdout, "graph has no start node")
}
