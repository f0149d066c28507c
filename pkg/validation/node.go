package validation

import (
	"fmt"

	"github.com/dukex/stateflow/pkg/models"
)

// ValidateConfig checks a decoded configuration against the rules of the node's type.
// At most one diagnostic is returned per node.
func ValidateConfig(node models.Node, value any) models.Diagnostics {
	for _, r := range rules[node.Type] {
		detail, ok := check(r.schema, value)
		if ok {
			continue
		}

		d := models.Warnf(models.KindConfiguration, node, r.message, node.Label)
		d.Detail = detail

		return models.Diagnostics{d}
	}

	return nil
}

// ParseNode decodes and validates a node's configuration.
// Malformed JSON yields a single diagnostic and the empty configuration for the type.
func ParseNode(node models.Node) (models.NodeConfig, models.Diagnostics) {
	value, err := models.ParseJSON(node.Configuration)
	if err != nil {
		d := models.Warnf(
			models.KindConfiguration,
			node,
			"invalid JSON configuration in %s node `%s`",
			node.Type,
			node.Label,
		)
		d.Detail = err.Error()

		return models.EmptyConfig(node.Type), models.Diagnostics{d}
	}

	return models.ConfigFrom(node.Type, value), ValidateConfig(node, value)
}

// ValidateNode parses the node's configuration and returns only the diagnostics.
func ValidateNode(node models.Node) models.Diagnostics {
	if !node.Type.Valid() {
		return models.Diagnostics{
			models.Errorf(models.KindStructural, node, "node `%s` has unknown type %q", node.Label, string(node.Type)),
		}
	}

	_, diagnostics := ParseNode(node)

	return diagnostics
}

func describe(node models.Node) string {
	if node.Label != "" {
		return fmt.Sprintf("`%s`", node.Label)
	}

	return fmt.Sprintf("with id %q", node.ID)
}
