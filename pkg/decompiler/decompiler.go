// Package decompiler rebuilds an editable graph from a persisted step document.
package decompiler

import (
	"strconv"

	"github.com/dukex/stateflow/pkg/compiler"
	"github.com/dukex/stateflow/pkg/models"
)

// StartNodeID is the fixed identifier of the synthesized Start node.
const StartNodeID = "start"

// Layout constants for the synthesized graph. Presentation only.
const (
	columnX     = 250.0
	rowSpacing  = 120.0
	branchShift = 220.0
)

// Result is a decompiled graph plus the references that could not be resolved.
type Result struct {
	Graph       models.Graph       `json:"graph"`
	Diagnostics models.Diagnostics `json:"diagnostics"`
}

// Decompile synthesizes nodes and edges for steps, anchored to a Start node that
// points at startStepName. Node ids are the 1-based step positions.
func Decompile(steps []models.Step, startStepName string) Result {
	return decompile(steps, startStepName, nil)
}

// DecompileDocument decompiles doc and carries its input into the Start node.
func DecompileDocument(doc models.WorkflowDocument) Result {
	startAt := doc.StartAt
	if startAt == "" && len(doc.Steps) > 0 {
		startAt = doc.Steps[0].Name
	}

	return decompile(doc.Steps, startAt, doc.Input)
}

func decompile(steps []models.Step, startStepName string, input map[string]any) Result {
	var diagnostics models.Diagnostics

	startConfig, err := models.FormatConfig(models.StartConfig{Input: input})
	if err != nil {
		startConfig = "{}"
	}

	start := models.Node{
		ID:            StartNodeID,
		Type:          models.NodeTypeStart,
		Label:         "Start",
		Position:      models.Position{X: columnX, Y: 0},
		Configuration: startConfig,
	}

	nodes := make([]models.Node, 0, len(steps)+1)
	nodes = append(nodes, start)

	byName := make(map[string]models.Node, len(steps))
	kept := make([]models.Step, 0, len(steps))

	for i, step := range steps {
		id := strconv.Itoa(i + 1)

		nodeType, ok := models.NodeTypeFor(step.Action)
		if !ok {
			diagnostics = append(diagnostics, models.Diagnostic{
				Severity: models.SeverityWarning,
				Kind:     models.KindStructural,
				NodeID:   id,
				Label:    step.Name,
				Message:  "step `" + step.Name + "` has unknown action " + strconv.Quote(string(step.Action)) + "; it is skipped",
			})

			continue
		}

		configuration, err := models.FormatConfig(models.ConfigFromStep(nodeType, step))
		if err != nil {
			configuration = "{}"
		}

		node := models.Node{
			ID:            id,
			Type:          nodeType,
			Label:         step.Name,
			Position:      position(i),
			Configuration: configuration,
		}

		if _, duplicate := byName[step.Name]; duplicate {
			diagnostics = append(diagnostics,
				models.Warnf(models.KindStructural, node, "duplicate step name `%s`; references resolve to the first step", step.Name))
		} else {
			byName[step.Name] = node
		}

		nodes = append(nodes, node)
		kept = append(kept, step)
	}

	edges := make([]models.Edge, 0, len(kept)+1)

	if target, ok := byName[startStepName]; ok {
		edges = append(edges, models.Edge{Source: start.ID, Target: target.ID})
	} else {
		diagnostics = append(diagnostics, models.Diagnostic{
			Severity: models.SeverityWarning,
			Kind:     models.KindReference,
			NodeID:   start.ID,
			Label:    start.Label,
			Message:  "start step `" + startStepName + "` does not exist",
		})
	}

	for i, step := range kept {
		source := nodes[i+1]

		for _, link := range links(step) {
			target, ok := byName[link.name]
			if !ok {
				diagnostics = append(diagnostics,
					models.Warnf(models.KindReference, source, "step `%s` points at unknown step `%s`", step.Name, link.name))

				continue
			}

			edges = append(edges, models.Edge{Source: source.ID, Target: target.ID, Default: link.isDefault})
		}
	}

	return Result{
		Graph:       models.Graph{Nodes: nodes, Edges: edges},
		Diagnostics: diagnostics,
	}
}

type link struct {
	name      string
	isDefault bool
}

// links lists the outgoing transitions of step in the order edges are created.
// A Choice step gets edges only when it has a default: the default comes first
// and rule targets follow. Without a default the rule targets stay in the
// configuration alone, since recompiling would turn the first edge into a default.
func links(step models.Step) []link {
	if step.IsTerminal() {
		return nil
	}

	if step.Action != models.ActionChoice {
		if step.Next == "" {
			return nil
		}

		return []link{{name: step.Next}}
	}

	if step.Default == "" {
		return nil
	}

	out := []link{{name: step.Default, isDefault: true}}
	seen := map[string]bool{step.Default: true}

	for _, rule := range step.Choices {
		next := rule.Next()
		if next == "" || seen[next] {
			continue
		}

		seen[next] = true

		out = append(out, link{name: next})
	}

	return out
}

func position(i int) models.Position {
	x := columnX
	if i%2 == 1 {
		x += branchShift
	}

	return models.Position{X: x, Y: float64(i+1) * rowSpacing}
}

// StepsFromMap rebuilds steps from the descriptors of a workflow map.
// Each descriptor's inputJson is interpreted with the compiler's extraction rules.
func StepsFromMap(workflowMap models.WorkflowMap) ([]models.Step, models.Diagnostics) {
	var diagnostics models.Diagnostics

	steps := make([]models.Step, 0, len(workflowMap.Steps))

	for _, descriptor := range workflowMap.Steps {
		nodeType, ok := models.NodeTypeFor(descriptor.Action)
		if !ok {
			diagnostics = append(diagnostics, models.Diagnostic{
				Severity: models.SeverityWarning,
				Kind:     models.KindStructural,
				Label:    descriptor.Name,
				Message:  "step `" + descriptor.Name + "` has unknown action " + strconv.Quote(string(descriptor.Action)),
			})

			continue
		}

		value, err := models.ParseJSON(descriptor.InputJSON)
		if err != nil {
			diagnostics = append(diagnostics, models.Diagnostic{
				Severity: models.SeverityWarning,
				Kind:     models.KindConfiguration,
				Label:    descriptor.Name,
				Message:  "invalid inputJson for step `" + descriptor.Name + "`",
				Detail:   err.Error(),
			})

			value = nil
		}

		cfg := models.EmptyConfig(nodeType)
		if value != nil {
			cfg = models.ConfigFrom(nodeType, value)
		}

		step := compiler.ExtractStep(nodeType, descriptor.Name, cfg)

		switch {
		case step.IsTerminal():
		case nodeType == models.NodeTypeChoice:
			step.Default = descriptor.Next
		default:
			step.Next = descriptor.Next
		}

		steps = append(steps, step)
	}

	return steps, diagnostics
}
