package pipeline

// Notes:
// - Compile cancellation is tested with an already-cancelled context; a
//   mid-parse cancel is not deterministic for small inputs
// - Component detection reports the first offending tag only

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestCompile
// ---------------------------------------------------------------------------

func TestCompile_EndToEnd(t *testing.T) {
	t.Parallel()

	out := renderBody(t, "![[img/x.png|X]]\n# Title")
	for _, s := range []string{`alt="X"`, `id="title"`, `<h1 class="heading heading-1 heading-bordered"`} {
		if !strings.Contains(out.HTML, s) {
			t.Errorf("HTML = %q, want to contain %q", out.HTML, s)
		}
	}
	if len(out.Images) != 1 || out.Images[0].Src != "img/x.png" {
		t.Errorf("Images = %+v", out.Images)
	}
}

func TestCompile_StripsLeftoverFrontmatter(t *testing.T) {
	t.Parallel()

	out := renderBody(t, "---\ntitle: x\n---\nBody")
	if strings.Contains(out.HTML, "title: x") {
		t.Errorf("metadata block leaked into HTML: %q", out.HTML)
	}
	if !strings.Contains(out.HTML, "<p>Body</p>") {
		t.Errorf("HTML = %q", out.HTML)
	}
}

func TestCompile_NormalizesLineEndings(t *testing.T) {
	t.Parallel()

	crlf := renderBody(t, "# A\r\n\r\ntext\r\n").HTML
	lf := renderBody(t, "# A\n\ntext\n").HTML
	if crlf != lf {
		t.Errorf("CRLF output differs:\n%q\n%q", crlf, lf)
	}
}

func TestCompile_ComponentTags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     string
		wantErr  bool
		wantLine int
		wantMsg  string
	}{
		{name: "block component", body: "<Chart data={x} />\n", wantErr: true, wantLine: 1, wantMsg: "<Chart>"},
		{name: "inline component", body: "intro\n\ntext <Foo/> more", wantErr: true, wantLine: 3, wantMsg: "<Foo>"},
		{name: "multi-line component", body: "text\n\n<Callout>\nhi\n</Callout>\n", wantErr: true, wantLine: 3, wantMsg: "<Callout>"},
		{name: "lowercase html allowed", body: "<div>ok</div>\n", wantErr: false},
		{name: "component in fenced code allowed", body: "```jsx\n<Chart />\n```", wantErr: false},
		{name: "component in code span allowed", body: "use `<Chart />` here", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewCompiler(nil).Compile(context.Background(), tt.body)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("Compile() error = %v", err)
				}
				return
			}
			if !errors.Is(err, ErrCompile) {
				t.Fatalf("Compile() error = %v, want ErrCompile", err)
			}
			var ce *CompileError
			if !errors.As(err, &ce) {
				t.Fatalf("error = %T, want *CompileError", err)
			}
			if ce.Line != tt.wantLine {
				t.Errorf("Line = %d, want %d", ce.Line, tt.wantLine)
			}
			if !strings.Contains(ce.Msg, tt.wantMsg) {
				t.Errorf("Msg = %q, want to contain %q", ce.Msg, tt.wantMsg)
			}
		})
	}
}

func TestCompile_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewCompiler(nil).Compile(ctx, "text"); !errors.Is(err, context.Canceled) {
		t.Errorf("Compile() error = %v, want context.Canceled", err)
	}
}

func TestCompile_Empty(t *testing.T) {
	t.Parallel()

	out := renderBody(t, "")
	if out.HTML != "" {
		t.Errorf("HTML = %q, want empty", out.HTML)
	}
}

func TestCompileError_Error(t *testing.T) {
	t.Parallel()

	withLine := &CompileError{Line: 4, Msg: "bad"}
	if got := withLine.Error(); got != "compile failed: line 4: bad" {
		t.Errorf("Error() = %q", got)
	}
	noLine := &CompileError{Msg: "bad"}
	if got := noLine.Error(); got != "compile failed: bad" {
		t.Errorf("Error() = %q", got)
	}
	cause := errors.New("cause")
	if !errors.Is(&CompileError{Msg: "x", Err: cause}, cause) {
		t.Error("CompileError should unwrap to its cause")
	}
}

func TestCompile_Diagrams(t *testing.T) {
	t.Parallel()

	out := renderBody(t, "```mermaid\ngraph TD; A-->B\n```")
	want := `<div class="diagram" data-diagram="0">` + DiagramStartPlaceholder + "0" + DiagramEndPlaceholder + `</div>`
	if !strings.Contains(out.HTML, want) {
		t.Errorf("HTML = %q, want diagram placeholder", out.HTML)
	}
	if len(out.CodeBlocks) != 0 {
		t.Errorf("diagram fence counted as code block: %+v", out.CodeBlocks)
	}
}
