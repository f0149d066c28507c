package models

import (
	"encoding/json"
	"strings"
)

// Action is the execution-engine type tag of a compiled step.
type Action string

const (
	ActionPass     Action = "Pass"
	ActionTask     Action = "Task"
	ActionChoice   Action = "Choice"
	ActionParallel Action = "Parallel"
	ActionWait     Action = "Wait"
	ActionSuccess  Action = "Success"
	ActionFail     Action = "Fail"
)

var actionsByNodeType = map[NodeType]Action{
	NodeTypePass:     ActionPass,
	NodeTypeTask:     ActionTask,
	NodeTypeChoice:   ActionChoice,
	NodeTypeParallel: ActionParallel,
	NodeTypeWait:     ActionWait,
	NodeTypeSuccess:  ActionSuccess,
	NodeTypeFailure:  ActionFail,
}

// ActionFor maps a node type to its step action. Start nodes have no action.
func ActionFor(t NodeType) (Action, bool) {
	action, ok := actionsByNodeType[t]

	return action, ok
}

// NodeTypeFor is the inverse of ActionFor. Matching is case-insensitive.
func NodeTypeFor(action Action) (NodeType, bool) {
	for nodeType, known := range actionsByNodeType {
		if strings.EqualFold(string(known), string(action)) {
			return nodeType, true
		}
	}

	return "", false
}

// ChoiceRule is a single branch rule of a Choice step, e.g. {"condition": "$.x==1", "next": "A"}.
type ChoiceRule map[string]any

// Next returns the name of the step the rule transitions to, if any.
func (r ChoiceRule) Next() string {
	next, _ := r["next"].(string)

	return next
}

// Step is the compiled counterpart of a non-start node.
type Step struct {
	Name   string `json:"name"   validate:"required"`
	Action Action `json:"action" validate:"required"`
	Next   string `json:"next,omitempty"`

	// Task
	Resource string `json:"resource,omitempty"`
	// Task and Pass. Emitted whenever non-nil, even when empty.
	Parameters map[string]any `json:"parameters,omitempty"`
	// Pass
	Override bool `json:"override,omitempty"`

	// Choice
	Choices []ChoiceRule `json:"choices,omitempty"`
	Default string       `json:"default,omitempty"`

	// Parallel
	Branches []any `json:"branches,omitempty"`

	// Wait: exactly one of the two is set.
	Seconds   *float64 `json:"seconds,omitempty"`
	Timestamp string   `json:"timestamp,omitempty"`
}

// IsTerminal reports whether the step ends an execution path.
func (s Step) IsTerminal() bool {
	return s.Action == ActionSuccess || s.Action == ActionFail
}

// MarshalJSON keeps an empty parameters object on the wire.
func (s Step) MarshalJSON() ([]byte, error) {
	type plain Step

	out := struct {
		plain
		Parameters *map[string]any `json:"parameters,omitempty"`
	}{plain: plain(s)}

	if s.Parameters != nil {
		out.Parameters = &s.Parameters
	}

	return json.Marshal(out)
}
