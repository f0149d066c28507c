package models

import "fmt"

// Severity tells callers whether a diagnostic must block submission.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// DiagnosticKind groups diagnostics by the part of the input they describe.
type DiagnosticKind string

const (
	KindStructural    DiagnosticKind = "structural"    // start markers, duplicate names, topology
	KindConfiguration DiagnosticKind = "configuration" // per-node JSON configuration
	KindReference     DiagnosticKind = "reference"     // edges or pointers naming nothing
)

// Diagnostic is a non-fatal message about malformed or ambiguous input.
type Diagnostic struct {
	Severity Severity       `json:"severity"`
	Kind     DiagnosticKind `json:"kind"`
	NodeID   string         `json:"node_id,omitempty"`
	Label    string         `json:"label,omitempty"`
	Message  string         `json:"message"`
	Detail   string         `json:"detail,omitempty"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Severity, d.Kind, d.Message)
}

// Diagnostics is an ordered list of diagnostics.
type Diagnostics []Diagnostic

// Blocking reports whether any diagnostic has error severity.
func (ds Diagnostics) Blocking() bool {
	for _, d := range ds {
		if d.Severity == SeverityError {
			return true
		}
	}

	return false
}

// ForLabel returns the diagnostics attached to the node labelled label.
func (ds Diagnostics) ForLabel(label string) Diagnostics {
	var out Diagnostics

	for _, d := range ds {
		if d.Label == label {
			out = append(out, d)
		}
	}

	return out
}

// Warnf builds a warning diagnostic.
func Warnf(kind DiagnosticKind, node Node, format string, args ...any) Diagnostic {
	return Diagnostic{
		Severity: SeverityWarning,
		Kind:     kind,
		NodeID:   node.ID,
		Label:    node.Label,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Errorf builds a blocking diagnostic.
func Errorf(kind DiagnosticKind, node Node, format string, args ...any) Diagnostic {
	d := Warnf(kind, node, format, args...)
	d.Severity = SeverityError

	return d
}
