// Package diagnostics defines the categorized error model shared by the
// parser, the checker and the evaluator.
//
// Host-contract failures (bad configuration, duplicate declarations) surface
// as ordinary Go errors at environment-build time. Everything that happens
// inside an expression becomes a positioned DiagnosticError accumulated into
// an Issues set, or an error-tagged runtime value carrying a Kind.
package diagnostics

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind categorizes an error raised while parsing, checking or evaluating an
// expression.
type Kind int

const (
	SyntaxError Kind = iota
	TypeCheckError
	UndeclaredReference
	NoMatchingOverload
	InvalidArgument
	DivideByZero
	Overflow
	OutOfBounds
	NoSuchKey
	NoSuchField
	NoSuchAttribute
	IterationBudgetExceeded
	MessageResolutionFailure
	InvalidConversion
)

var kindNames = map[Kind]string{
	SyntaxError:              "SyntaxError",
	TypeCheckError:           "TypeCheckError",
	UndeclaredReference:      "UndeclaredReference",
	NoMatchingOverload:       "NoMatchingOverload",
	InvalidArgument:          "InvalidArgument",
	DivideByZero:             "DivideByZero",
	Overflow:                 "Overflow",
	OutOfBounds:              "OutOfBounds",
	NoSuchKey:                "NoSuchKey",
	NoSuchField:              "NoSuchField",
	NoSuchAttribute:          "NoSuchAttribute",
	IterationBudgetExceeded:  "IterationBudgetExceeded",
	MessageResolutionFailure: "MessageResolutionFailure",
	InvalidConversion:        "InvalidConversion",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// DiagnosticError is a single positioned issue. Line and Column are 1-based;
// zero means the position is unknown.
type DiagnosticError struct {
	Kind    Kind
	Message string
	Line    int
	Column  int
	ExprID  int64
}

// NewError creates a positioned diagnostic.
func NewError(kind Kind, line, column int, format string, args ...interface{}) *DiagnosticError {
	return &DiagnosticError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Line:    line,
		Column:  column,
	}
}

func (e *DiagnosticError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%d:%d: %s: %s", e.Line, e.Column, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Issues accumulates diagnostics across a whole parse or check pass. The
// checker reports every problem it finds, not just the first one.
type Issues struct {
	errs []*DiagnosticError
}

func NewIssues(errs ...*DiagnosticError) *Issues {
	return &Issues{errs: errs}
}

// Append adds one diagnostic to the set.
func (i *Issues) Append(err *DiagnosticError) {
	i.errs = append(i.errs, err)
}

// Extend merges another issue set into this one.
func (i *Issues) Extend(other *Issues) {
	if other != nil {
		i.errs = append(i.errs, other.errs...)
	}
}

// Errors returns the accumulated diagnostics sorted by source position.
func (i *Issues) Errors() []*DiagnosticError {
	out := make([]*DiagnosticError, len(i.errs))
	copy(out, i.errs)
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Line != out[b].Line {
			return out[a].Line < out[b].Line
		}
		return out[a].Column < out[b].Column
	})
	return out
}

// Empty reports whether the set holds no diagnostics.
func (i *Issues) Empty() bool {
	return i == nil || len(i.errs) == 0
}

// Err converts the set into a single Go error, or nil when empty.
func (i *Issues) Err() error {
	if i.Empty() {
		return nil
	}
	return errors.New(i.String())
}

func (i *Issues) String() string {
	if i.Empty() {
		return ""
	}
	var sb strings.Builder
	for n, err := range i.Errors() {
		if n > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString("ERROR: ")
		sb.WriteString(err.Error())
	}
	return sb.String()
}
