package polex

import (
	"strings"

	"github.com/funvibe/polex/internal/diagnostics"
)

// Issues is the diagnostic set produced by Parse, Check and Compile. A nil
// *Issues means success.
type Issues struct {
	inner  *diagnostics.Issues
	source string
}

func newIssues(inner *diagnostics.Issues, source string) *Issues {
	return &Issues{inner: inner, source: source}
}

// Err converts the set to an error, nil when empty.
func (i *Issues) Err() error {
	if i == nil {
		return nil
	}
	return i.inner.Err()
}

// Errors exposes the raw diagnostics.
func (i *Issues) Errors() []*diagnostics.DiagnosticError {
	if i == nil {
		return nil
	}
	return i.inner.Errors()
}

// String renders the diagnostics with a source snippet and caret per issue,
// the way the CLI prints them.
func (i *Issues) String() string {
	if i == nil || i.inner.Empty() {
		return ""
	}
	lines := strings.Split(i.source, "\n")
	var sb strings.Builder
	for n, err := range i.inner.Errors() {
		if n > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString("ERROR: ")
		sb.WriteString(err.Error())
		if err.Line > 0 && err.Line <= len(lines) {
			sb.WriteString("\n | ")
			sb.WriteString(lines[err.Line-1])
			sb.WriteString("\n | ")
			sb.WriteString(strings.Repeat(".", maxInt(err.Column-1, 0)))
			sb.WriteString("^")
		}
	}
	return sb.String()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
