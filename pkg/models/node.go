// Package models defines the editable workflow graph and its compiled step form.
package models

// NodeType is the closed set of vertex kinds the canvas can draw.
type NodeType string

const (
	NodeTypeStart    NodeType = "start"
	NodeTypePass     NodeType = "pass"
	NodeTypeTask     NodeType = "task"
	NodeTypeChoice   NodeType = "choice"
	NodeTypeParallel NodeType = "parallel"
	NodeTypeWait     NodeType = "wait"
	NodeTypeSuccess  NodeType = "success"
	NodeTypeFailure  NodeType = "failure"
)

// NodeTypes lists every node type in canvas palette order.
var NodeTypes = []NodeType{
	NodeTypeStart,
	NodeTypePass,
	NodeTypeTask,
	NodeTypeChoice,
	NodeTypeParallel,
	NodeTypeWait,
	NodeTypeSuccess,
	NodeTypeFailure,
}

// Valid reports whether t is one of the known node types.
func (t NodeType) Valid() bool {
	for _, known := range NodeTypes {
		if t == known {
			return true
		}
	}

	return false
}

// IsTerminal reports whether nodes of this type end an execution path.
func (t NodeType) IsTerminal() bool {
	return t == NodeTypeSuccess || t == NodeTypeFailure
}

// Position is the canvas coordinate of a node. It has no meaning to compilation.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Node represents a vertex in the editable graph.
type Node struct {
	ID            string   `json:"id"            yaml:"id"            validate:"required"`
	Type          NodeType `json:"type"          yaml:"type"          validate:"required,oneof=start pass task choice parallel wait success failure"`
	Label         string   `json:"label"         yaml:"label"`
	Position      Position `json:"position"      yaml:"position"`
	Configuration string   `json:"configuration" yaml:"configuration"` // JSON text as typed in the editor
}

// IsStart reports whether the node is the graph's entry marker.
func (n Node) IsStart() bool {
	return n.Type == NodeTypeStart
}

// Edge is a directed transition between two nodes, identified by (Source, Target).
type Edge struct {
	Source string `json:"source"            yaml:"source"  validate:"required"`
	Target string `json:"target"            yaml:"target"  validate:"required"`
	// Default marks the fallback branch of a Choice node.
	Default bool `json:"default,omitempty" yaml:"default,omitempty"`
}

// Graph is the full canvas content for one workflow.
type Graph struct {
	Nodes []Node `json:"nodes" yaml:"nodes" validate:"dive"`
	Edges []Edge `json:"edges" yaml:"edges" validate:"dive"`
}

// GraphIndex resolves nodes by id and label and edges by source without rescanning.
type GraphIndex struct {
	byID     map[string]Node
	byLabel  map[string]Node
	outgoing map[string][]Edge
	incoming map[string][]Edge
}

// Index builds lookup tables over g. When ids or labels repeat, the first node wins.
func (g Graph) Index() GraphIndex {
	idx := GraphIndex{
		byID:     make(map[string]Node, len(g.Nodes)),
		byLabel:  make(map[string]Node, len(g.Nodes)),
		outgoing: make(map[string][]Edge),
		incoming: make(map[string][]Edge),
	}

	for _, node := range g.Nodes {
		if _, seen := idx.byID[node.ID]; !seen {
			idx.byID[node.ID] = node
		}

		if node.IsStart() {
			continue
		}

		if _, seen := idx.byLabel[node.Label]; !seen {
			idx.byLabel[node.Label] = node
		}
	}

	for _, edge := range g.Edges {
		idx.outgoing[edge.Source] = append(idx.outgoing[edge.Source], edge)
		idx.incoming[edge.Target] = append(idx.incoming[edge.Target], edge)
	}

	return idx
}

// Node returns the node with the given id.
func (idx GraphIndex) Node(id string) (Node, bool) {
	node, ok := idx.byID[id]

	return node, ok
}

// NodeByLabel returns the non-start node with the given label.
func (idx GraphIndex) NodeByLabel(label string) (Node, bool) {
	node, ok := idx.byLabel[label]

	return node, ok
}

// Outgoing returns the edges leaving id, in insertion order.
func (idx GraphIndex) Outgoing(id string) []Edge {
	return idx.outgoing[id]
}

// Incoming returns the edges entering id, in insertion order.
func (idx GraphIndex) Incoming(id string) []Edge {
	return idx.incoming[id]
}
