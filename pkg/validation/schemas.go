// Package validation checks node configurations and graph topology, reporting
// problems as diagnostics instead of errors.
package validation

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dukex/stateflow/pkg/models"
	"github.com/xeipuuv/gojsonschema"
)

// rule is one schema check; the first failing rule of a node type wins.
type rule struct {
	schema  *gojsonschema.Schema
	message string // format string taking the node label
}

const (
	objectSchema = `{"type": "object"}`

	passSchema = `{
		"type": "object",
		"properties": {"override": {"type": "boolean"}}
	}`

	taskSchema = `{
		"type": "object",
		"required": ["resource"],
		"properties": {"resource": {"type": "string", "minLength": 1}}
	}`

	arraySchema = `{"type": "array"}`

	choiceRulesSchema = `{
		"type": "array",
		"items": {"type": "object"}
	}`

	waitSchema = `{
		"type": "object",
		"oneOf": [
			{
				"required": ["seconds"],
				"not": {"required": ["timestamp"]},
				"properties": {"seconds": {"type": "number"}}
			},
			{
				"required": ["timestamp"],
				"not": {"required": ["seconds"]},
				"properties": {"timestamp": {"type": "string"}}
			}
		]
	}`

	waitTimestampSchema = `{
		"type": "object",
		"properties": {"timestamp": {"type": "string", "format": "` + timestampFormat + `"}}
	}`
)

var rules = map[models.NodeType][]rule{
	models.NodeTypeStart: {
		{mustSchema(objectSchema), "Start node `%s` input must be an object"},
	},
	models.NodeTypePass: {
		{mustSchema(objectSchema), "Pass node `%s` configuration must be an object"},
		{mustSchema(passSchema), "Pass node `%s` override must be a boolean"},
	},
	models.NodeTypeTask: {
		{mustSchema(taskSchema), "missing resource in task node `%s`"},
	},
	models.NodeTypeChoice: {
		{mustSchema(arraySchema), "Choice node `%s` JSON must be an array"},
		{mustSchema(choiceRulesSchema), "Choice node `%s` rules must be objects"},
	},
	models.NodeTypeParallel: {
		{mustSchema(arraySchema), "Parallel node `%s` input must be an array"},
	},
	models.NodeTypeWait: {
		{mustSchema(waitSchema), "Wait node `%s` missing valid seconds or timestamp"},
		{mustSchema(waitTimestampSchema), "Wait node `%s` timestamp is not an ISO-8601 date or date-time"},
	},
}

// timestampFormat is checked by models.ValidTimestamp so that configuration
// parsing and validation agree on which timestamps are kept.
const timestampFormat = "iso8601"

type timestampChecker struct{}

func (timestampChecker) IsFormat(input any) bool {
	s, ok := input.(string)
	if !ok {
		return true
	}

	return models.ValidTimestamp(s)
}

var registerFormats = sync.OnceFunc(func() {
	gojsonschema.FormatCheckers.Add(timestampFormat, timestampChecker{})
})

func mustSchema(source string) *gojsonschema.Schema {
	registerFormats()

	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
	if err != nil {
		panic(fmt.Sprintf("invalid built-in schema: %v", err))
	}

	return schema
}

// check runs value through schema and returns the joined violations, if any.
func check(schema *gojsonschema.Schema, value any) (string, bool) {
	result, err := schema.Validate(gojsonschema.NewGoLoader(value))
	if err != nil {
		return err.Error(), false
	}

	if result.Valid() {
		return "", true
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, violation := range result.Errors() {
		violations = append(violations, violation.String())
	}

	return strings.Join(violations, "; "), false
}
