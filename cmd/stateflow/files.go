package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dukex/stateflow/pkg/models"
	"gopkg.in/yaml.v3"
)

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func readGraph(path string) (models.Graph, error) {
	var graph models.Graph

	data, err := os.ReadFile(path)
	if err != nil {
		return graph, fmt.Errorf("failed to read graph: %w", err)
	}

	if isYAML(path) {
		err = yaml.Unmarshal(data, &graph)
	} else {
		err = json.Unmarshal(data, &graph)
	}

	if err != nil {
		return graph, fmt.Errorf("failed to parse graph %s: %w", path, err)
	}

	return graph, nil
}

func readDocument(path string) (models.WorkflowDocument, error) {
	var doc models.WorkflowDocument

	data, err := os.ReadFile(path)
	if err != nil {
		return doc, fmt.Errorf("failed to read document: %w", err)
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("failed to parse document %s: %w", path, err)
	}

	return doc, nil
}

// writeOutput writes value to path, or to w when path is empty.
// Graphs may be written as YAML; everything else is indented JSON.
func writeOutput(w io.Writer, path string, value any) error {
	var (
		data []byte
		err  error
	)

	_, isGraph := value.(models.Graph)
	if isGraph && isYAML(path) {
		data, err = yaml.Marshal(value)
	} else {
		data, err = json.MarshalIndent(value, "", "  ")
		data = append(data, '\n')
	}

	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}

	if path == "" {
		_, err = w.Write(data)

		return err
	}

	return os.WriteFile(path, data, 0o644)
}

func reportDiagnostics(w io.Writer, diagnostics models.Diagnostics) {
	for _, d := range diagnostics {
		line := d.String()
		if d.Label != "" {
			line = d.Label + ": " + line
		}

		fmt.Fprintln(w, line)
	}
}
