package validation

import (
	"github.com/dukex/stateflow/pkg/models"
)

// ValidateGraph reports structural problems of g: start markers, step names,
// edge endpoints, per-type edge multiplicity and reachability from the start.
// Configuration contents are not inspected here, see ValidateNode.
func ValidateGraph(g models.Graph) models.Diagnostics {
	var diagnostics models.Diagnostics

	idx := g.Index()

	starts := make([]models.Node, 0, 1)
	labels := make(map[string]bool, len(g.Nodes))

	for _, node := range g.Nodes {
		if !node.Type.Valid() {
			diagnostics = append(diagnostics,
				models.Errorf(models.KindStructural, node, "node %s has unknown type %q", describe(node), string(node.Type)))

			continue
		}

		if node.IsStart() {
			starts = append(starts, node)

			continue
		}

		if node.Label == "" {
			diagnostics = append(diagnostics,
				models.Errorf(models.KindStructural, node, "node with id %q has no label", node.ID))

			continue
		}

		if labels[node.Label] {
			diagnostics = append(diagnostics,
				models.Errorf(models.KindStructural, node, "duplicate step name `%s`", node.Label))

			continue
		}

		labels[node.Label] = true
	}

	switch len(starts) {
	case 0:
		diagnostics = append(diagnostics, models.Diagnostic{
			Severity: models.SeverityError,
			Kind:     models.KindStructural,
			Message:  "graph has no start node",
		})
	case 1:
	default:
		for _, extra := range starts[1:] {
			diagnostics = append(diagnostics,
				models.Errorf(models.KindStructural, extra, "graph has %d start nodes; exactly one is allowed", len(starts)))
		}
	}

	for _, edge := range g.Edges {
		for _, endpoint := range []string{edge.Source, edge.Target} {
			if _, ok := idx.Node(endpoint); !ok {
				diagnostics = append(diagnostics, models.Diagnostic{
					Severity: models.SeverityWarning,
					Kind:     models.KindReference,
					NodeID:   endpoint,
					Message:  "edge " + edge.Source + " -> " + edge.Target + " references unknown node " + endpoint,
				})
			}
		}
	}

	for _, node := range g.Nodes {
		diagnostics = append(diagnostics, validateEdges(idx, node)...)
	}

	if len(starts) == 1 {
		diagnostics = append(diagnostics, validateReachability(g, idx, starts[0])...)
	}

	return diagnostics
}

// ResolvedOutgoing returns the edges leaving id whose target exists.
func ResolvedOutgoing(idx models.GraphIndex, id string) []models.Edge {
	var out []models.Edge

	for _, edge := range idx.Outgoing(id) {
		if _, ok := idx.Node(edge.Target); ok {
			out = append(out, edge)
		}
	}

	return out
}

func validateEdges(idx models.GraphIndex, node models.Node) models.Diagnostics {
	var diagnostics models.Diagnostics

	outgoing := ResolvedOutgoing(idx, node.ID)

	switch {
	case node.IsStart():
		if len(idx.Incoming(node.ID)) > 0 {
			diagnostics = append(diagnostics,
				models.Warnf(models.KindStructural, node, "start node has incoming edges; they are ignored"))
		}

		switch len(outgoing) {
		case 0:
			diagnostics = append(diagnostics,
				models.Errorf(models.KindStructural, node, "start node has no outgoing edge"))
		case 1:
		default:
			diagnostics = append(diagnostics,
				models.Warnf(models.KindStructural, node, "start node has %d outgoing edges; only the first is used", len(outgoing)))
		}

	case node.Type.IsTerminal():
		if len(outgoing) > 0 {
			diagnostics = append(diagnostics,
				models.Warnf(models.KindStructural, node, "%s node `%s` is terminal; outgoing edges are ignored", node.Type, node.Label))
		}

	case node.Type == models.NodeTypeChoice:
		defaults := 0

		for _, edge := range outgoing {
			if edge.Default {
				defaults++
			}
		}

		if defaults > 1 {
			diagnostics = append(diagnostics,
				models.Warnf(models.KindStructural, node, "Choice node `%s` has %d default edges; only the first is used", node.Label, defaults))
		}

	default:
		if len(outgoing) > 1 {
			diagnostics = append(diagnostics,
				models.Warnf(models.KindStructural, node, "%s node `%s` has %d outgoing edges; only the first is used", node.Type, node.Label, len(outgoing)))
		}
	}

	return diagnostics
}

// validateReachability walks edges (and Choice rule targets) from the start node
// and reports every step that cannot be reached.
func validateReachability(g models.Graph, idx models.GraphIndex, start models.Node) models.Diagnostics {
	visited := map[string]bool{start.ID: true}
	queue := []string{start.ID}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		node, _ := idx.Node(id)
		if node.Type.IsTerminal() {
			continue
		}

		targets := make([]string, 0)
		for _, edge := range ResolvedOutgoing(idx, id) {
			targets = append(targets, edge.Target)
		}

		if node.Type == models.NodeTypeChoice {
			targets = append(targets, choiceRuleTargets(idx, node)...)
		}

		for _, target := range targets {
			if !visited[target] {
				visited[target] = true
				queue = append(queue, target)
			}
		}
	}

	var diagnostics models.Diagnostics

	for _, node := range g.Nodes {
		if visited[node.ID] || node.IsStart() || !node.Type.Valid() {
			continue
		}

		diagnostics = append(diagnostics,
			models.Warnf(models.KindStructural, node, "step `%s` is unreachable from the start node", node.Label))
	}

	return diagnostics
}

func choiceRuleTargets(idx models.GraphIndex, node models.Node) []string {
	value, err := models.ParseJSON(node.Configuration)
	if err != nil {
		return nil
	}

	cfg, _ := models.ConfigFrom(models.NodeTypeChoice, value).(models.ChoiceConfig)

	var targets []string

	for _, rule := range cfg.Choices {
		if target, ok := idx.NodeByLabel(rule.Next()); ok {
			targets = append(targets, target.ID)
		}
	}

	return targets
}
