package models

import (
	"encoding/json"
	"fmt"
	"maps"
	"strings"
	"time"
)

// NodeConfig is the parsed, type-specific configuration of a node.
// Exactly one variant exists per node type.
type NodeConfig interface {
	NodeType() NodeType
}

// StartConfig holds the workflow input carried by the Start node.
type StartConfig struct {
	Input map[string]any
}

// PassConfig holds a Pass node's parameters and override flag.
type PassConfig struct {
	Parameters map[string]any
	Override   bool
}

// TaskConfig holds a Task node's resource and the remaining parameters.
type TaskConfig struct {
	Resource   string
	Parameters map[string]any
}

// ChoiceConfig holds a Choice node's rule list.
type ChoiceConfig struct {
	Choices []ChoiceRule
}

// ParallelConfig holds a Parallel node's branch definitions.
type ParallelConfig struct {
	Branches []any
}

// WaitConfig holds either a delay in seconds or an absolute timestamp.
type WaitConfig struct {
	Seconds   *float64
	Timestamp string
}

// TerminalConfig is the (empty) configuration of Success and Failure nodes.
type TerminalConfig struct {
	Type NodeType
}

func (StartConfig) NodeType() NodeType    { return NodeTypeStart }
func (PassConfig) NodeType() NodeType     { return NodeTypePass }
func (TaskConfig) NodeType() NodeType     { return NodeTypeTask }
func (ChoiceConfig) NodeType() NodeType   { return NodeTypeChoice }
func (ParallelConfig) NodeType() NodeType { return NodeTypeParallel }
func (WaitConfig) NodeType() NodeType     { return NodeTypeWait }
func (c TerminalConfig) NodeType() NodeType {
	return c.Type
}

// ParseJSON decodes a configuration string. Blank input decodes to an empty object.
func ParseJSON(raw string) (any, error) {
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}, nil
	}

	var value any

	err := json.Unmarshal([]byte(raw), &value)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration JSON: %w", err)
	}

	return value, nil
}

// EmptyConfig returns the zero configuration for t.
func EmptyConfig(t NodeType) NodeConfig {
	switch t {
	case NodeTypeStart:
		return StartConfig{Input: map[string]any{}}
	case NodeTypePass:
		return PassConfig{}
	case NodeTypeTask:
		return TaskConfig{}
	case NodeTypeChoice:
		return ChoiceConfig{}
	case NodeTypeParallel:
		return ParallelConfig{}
	case NodeTypeWait:
		return WaitConfig{}
	default:
		return TerminalConfig{Type: t}
	}
}

// ConfigFrom converts a decoded JSON value into the variant for t.
// Fields that do not have the expected shape are dropped; validation reports them.
func ConfigFrom(t NodeType, value any) NodeConfig {
	obj, isObject := value.(map[string]any)
	arr, isArray := value.([]any)

	switch t {
	case NodeTypeStart:
		if !isObject {
			return EmptyConfig(t)
		}

		return StartConfig{Input: maps.Clone(obj)}

	case NodeTypePass:
		cfg := PassConfig{}
		if !isObject {
			return cfg
		}

		cfg.Override, _ = obj["override"].(bool)

		params := without(obj, "override")
		if len(params) > 0 {
			cfg.Parameters = params
		}

		return cfg

	case NodeTypeTask:
		cfg := TaskConfig{}
		if !isObject {
			return cfg
		}

		cfg.Resource, _ = obj["resource"].(string)
		cfg.Parameters = without(obj, "resource")

		return cfg

	case NodeTypeChoice:
		cfg := ChoiceConfig{}
		if !isArray {
			return cfg
		}

		for _, item := range arr {
			if rule, ok := item.(map[string]any); ok {
				cfg.Choices = append(cfg.Choices, ChoiceRule(maps.Clone(rule)))
			}
		}

		return cfg

	case NodeTypeParallel:
		if !isArray {
			return ParallelConfig{}
		}

		return ParallelConfig{Branches: append([]any(nil), arr...)}

	case NodeTypeWait:
		cfg := WaitConfig{}
		if !isObject {
			return cfg
		}

		rawSeconds, hasSeconds := obj["seconds"]
		rawTimestamp, hasTimestamp := obj["timestamp"]

		if hasSeconds == hasTimestamp {
			return cfg
		}

		if seconds, ok := rawSeconds.(float64); ok && hasSeconds {
			cfg.Seconds = &seconds
		}

		if timestamp, ok := rawTimestamp.(string); ok && hasTimestamp && ValidTimestamp(timestamp) {
			cfg.Timestamp = timestamp
		}

		return cfg

	default:
		return TerminalConfig{Type: t}
	}
}

// timestampLayouts are the ISO-8601 forms a Wait timestamp may take. Parsing
// with a seconds layout also accepts fractional seconds.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	time.DateOnly,
}

// ValidTimestamp reports whether s is an ISO-8601 date or date-time, with or
// without a zone offset. The Wait configuration rules use the same check.
func ValidTimestamp(s string) bool {
	for _, layout := range timestampLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}

	return false
}

// ConfigFromStep reassembles the node configuration a step was compiled from.
func ConfigFromStep(t NodeType, step Step) NodeConfig {
	switch t {
	case NodeTypePass:
		return PassConfig{Parameters: maps.Clone(step.Parameters), Override: step.Override}
	case NodeTypeTask:
		return TaskConfig{Resource: step.Resource, Parameters: maps.Clone(step.Parameters)}
	case NodeTypeChoice:
		return ChoiceConfig{Choices: append([]ChoiceRule(nil), step.Choices...)}
	case NodeTypeParallel:
		return ParallelConfig{Branches: append([]any(nil), step.Branches...)}
	case NodeTypeWait:
		cfg := WaitConfig{Timestamp: step.Timestamp}
		if step.Seconds != nil {
			seconds := *step.Seconds
			cfg.Seconds = &seconds
		}

		return cfg
	default:
		return EmptyConfig(t)
	}
}

// FormatConfig renders cfg as the JSON text the canvas edits.
// The output re-parses through ParseJSON and ConfigFrom to an equal configuration.
func FormatConfig(cfg NodeConfig) (string, error) {
	var value any

	switch c := cfg.(type) {
	case StartConfig:
		value = nonNil(c.Input)
	case PassConfig:
		obj := nonNil(maps.Clone(c.Parameters))
		if c.Override {
			obj["override"] = true
		}

		value = obj
	case TaskConfig:
		obj := nonNil(maps.Clone(c.Parameters))
		if c.Resource != "" {
			obj["resource"] = c.Resource
		}

		value = obj
	case ChoiceConfig:
		rules := make([]ChoiceRule, 0, len(c.Choices))
		value = append(rules, c.Choices...)
	case ParallelConfig:
		branches := make([]any, 0, len(c.Branches))
		value = append(branches, c.Branches...)
	case WaitConfig:
		obj := map[string]any{}

		switch {
		case c.Seconds != nil:
			obj["seconds"] = *c.Seconds
		case c.Timestamp != "":
			obj["timestamp"] = c.Timestamp
		}

		value = obj
	default:
		value = map[string]any{}
	}

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to format %s configuration: %w", cfg.NodeType(), err)
	}

	return string(data), nil
}

func without(obj map[string]any, key string) map[string]any {
	out := make(map[string]any, len(obj))

	for k, v := range obj {
		if k != key {
			out[k] = v
		}
	}

	return out
}

func nonNil(obj map[string]any) map[string]any {
	if obj == nil {
		return map[string]any{}
	}

	return obj
}
