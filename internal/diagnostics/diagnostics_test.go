package diagnostics

import (
	"strings"
	"testing"
)

func TestIssuesAccumulateAndSort(t *testing.T) {
	issues := NewIssues()
	issues.Append(NewError(TypeCheckError, 2, 5, "second"))
	issues.Append(NewError(UndeclaredReference, 1, 3, "first"))
	issues.Append(NewError(TypeCheckError, 2, 1, "also second line"))

	if issues.Empty() {
		t.Fatal("issues should not be empty")
	}
	errs := issues.Errors()
	if errs[0].Message != "first" || errs[1].Message != "also second line" {
		t.Fatalf("errors not sorted by position: %v", issues)
	}
	if issues.Err() == nil {
		t.Fatal("non-empty issues must convert to an error")
	}
	rendered := issues.String()
	if !strings.Contains(rendered, "1:3: UndeclaredReference: first") {
		t.Errorf("rendering = %q", rendered)
	}
}

func TestEmptyIssues(t *testing.T) {
	issues := NewIssues()
	if !issues.Empty() || issues.Err() != nil || issues.String() != "" {
		t.Error("empty issues must be inert")
	}
	var nilIssues *Issues
	if !nilIssues.Empty() {
		t.Error("nil issues are empty")
	}
}

func TestKindNames(t *testing.T) {
	for kind, want := range map[Kind]string{
		SyntaxError:             "SyntaxError",
		DivideByZero:            "DivideByZero",
		Overflow:                "Overflow",
		IterationBudgetExceeded: "IterationBudgetExceeded",
	} {
		if kind.String() != want {
			t.Errorf("kind %d = %q, want %q", int(kind), kind.String(), want)
		}
	}
}
