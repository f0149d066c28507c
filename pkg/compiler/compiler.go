// Package compiler translates an editable workflow graph into the step document
// accepted by the workflow-execution service.
package compiler

import (
	"github.com/dukex/stateflow/pkg/models"
	"github.com/dukex/stateflow/pkg/validation"
)

// Result is a compiled document plus everything that was wrong with the graph.
// A document is always produced; callers decide whether diagnostics block submission.
type Result struct {
	Document    models.WorkflowDocument `json:"document"`
	Diagnostics models.Diagnostics      `json:"diagnostics"`
}

type options struct {
	createdBy string
}

// Option customises a compilation.
type Option func(*options)

// WithCreatedBy records the author of the compiled document.
func WithCreatedBy(createdBy string) Option {
	return func(o *options) {
		o.createdBy = createdBy
	}
}

// Compile turns nodes and edges into a WorkflowDocument named name.
//
// Steps keep the order of nodes (the Start node excluded). Malformed node
// configuration never aborts compilation: the affected fields are left out and a
// diagnostic names the node.
func Compile(nodes []models.Node, edges []models.Edge, name string, opts ...Option) Result {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	graph := models.Graph{Nodes: nodes, Edges: edges}
	idx := graph.Index()
	diagnostics := validation.ValidateGraph(graph)

	document := models.WorkflowDocument{
		Name:      name,
		Version:   models.DocumentVersion,
		Active:    true,
		Steps:     make([]models.Step, 0, len(nodes)),
		Input:     map[string]any{},
		CreatedBy: o.createdBy,
	}

	var (
		start    models.Node
		hasStart bool
	)

	for _, node := range nodes {
		if !node.Type.Valid() {
			continue
		}

		if node.IsStart() {
			if !hasStart {
				start, hasStart = node, true
			}

			continue
		}

		cfg, nodeDiagnostics := validation.ParseNode(node)
		diagnostics = append(diagnostics, nodeDiagnostics...)

		step := ExtractStep(node.Type, node.Label, cfg)
		step, transitionDiagnostics := linkStep(idx, node, step)
		diagnostics = append(diagnostics, transitionDiagnostics...)

		document.Steps = append(document.Steps, step)
	}

	if hasStart {
		cfg, startDiagnostics := validation.ParseNode(start)
		diagnostics = append(diagnostics, startDiagnostics...)

		if input, ok := cfg.(models.StartConfig); ok && input.Input != nil {
			document.Input = input.Input
		}

		if target, ok := firstTarget(idx, validation.ResolvedOutgoing(idx, start.ID)); ok {
			document.StartAt = target.Label
		}
	}

	return Result{
		Document:    document,
		Diagnostics: diagnostics,
	}
}

// ExtractStep builds the step named name from a parsed configuration.
// Transition fields (next, default) are not set.
//
// Task steps always carry parameters, possibly empty. Pass steps carry them only
// when the configuration has keys besides override, so an empty Pass parameter
// object does not survive a decompile and recompile.
func ExtractStep(nodeType models.NodeType, name string, cfg models.NodeConfig) models.Step {
	action, _ := models.ActionFor(nodeType)

	step := models.Step{
		Name:   name,
		Action: action,
	}

	switch c := cfg.(type) {
	case models.TaskConfig:
		step.Resource = c.Resource
		step.Parameters = c.Parameters
	case models.PassConfig:
		step.Parameters = c.Parameters
		step.Override = c.Override
	case models.ChoiceConfig:
		step.Choices = c.Choices
	case models.ParallelConfig:
		step.Branches = c.Branches
	case models.WaitConfig:
		step.Seconds = c.Seconds
		step.Timestamp = c.Timestamp
	}

	return step
}

// linkStep resolves the outgoing edges of node into next or default pointers.
func linkStep(idx models.GraphIndex, node models.Node, step models.Step) (models.Step, models.Diagnostics) {
	if node.Type.IsTerminal() {
		return step, nil
	}

	outgoing := validation.ResolvedOutgoing(idx, node.ID)

	if node.Type != models.NodeTypeChoice {
		if target, ok := firstTarget(idx, outgoing); ok {
			step.Next = target.Label
		}

		return step, nil
	}

	var diagnostics models.Diagnostics

	if target, ok := choiceDefault(idx, outgoing); ok {
		step.Default = target.Label
	}

	for _, rule := range step.Choices {
		next := rule.Next()
		if next == "" {
			continue
		}

		if _, ok := idx.NodeByLabel(next); !ok {
			diagnostics = append(diagnostics,
				models.Warnf(models.KindReference, node, "Choice node `%s` rule points at unknown step `%s`", node.Label, next))
		}
	}

	return step, diagnostics
}

// choiceDefault prefers an edge explicitly flagged as default and otherwise
// falls back to the first edge added.
func choiceDefault(idx models.GraphIndex, outgoing []models.Edge) (models.Node, bool) {
	for _, edge := range outgoing {
		if !edge.Default {
			continue
		}

		if target, ok := idx.Node(edge.Target); ok && !target.IsStart() {
			return target, true
		}
	}

	return firstTarget(idx, outgoing)
}

func firstTarget(idx models.GraphIndex, edges []models.Edge) (models.Node, bool) {
	for _, edge := range edges {
		target, ok := idx.Node(edge.Target)
		if ok && !target.IsStart() && target.Type.Valid() {
			return target, true
		}
	}

	return models.Node{}, false
}
