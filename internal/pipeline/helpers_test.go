package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/yuin/goldmark/ast"
)

// compileBody compiles body or fails the test.
func compileBody(t *testing.T, body string) *CompiledDocument {
	t.Helper()
	doc, err := NewCompiler(nil).Compile(context.Background(), body)
	if err != nil {
		t.Fatalf("Compile(%q) error: %v", body, err)
	}
	return doc
}

// renderBody compiles and renders body with the default bindings.
func renderBody(t *testing.T, body string) *Rendered {
	t.Helper()
	out, err := NewBinder(nil).Render(context.Background(), compileBody(t, body))
	if err != nil {
		t.Fatalf("Render(%q) error: %v", body, err)
	}
	return out
}

// collect returns the nodes of type T in document order.
func collect[T ast.Node](root ast.Node) []T {
	var out []T
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if v, ok := n.(T); ok {
				out = append(out, v)
			}
		}
		return ast.WalkContinue, nil
	})
	return out
}

func contains(s, substr string) bool { return strings.Contains(s, substr) }
