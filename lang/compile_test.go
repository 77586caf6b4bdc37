package lang

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

const banner = "// Compiled with tup 0.1a\n\n"

func TestCompile_Scenario(t *testing.T) {
	src := `#GLOBALVAR g 12
#CONTEXT c
#VAR x ab
value=${g}${x}
#ENDCONTEXT
`

	got, err := Compile(t.Context(), src, WithProcessEnv([]string{}))
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}

	want := banner +
		"\n// Context 'c'\n" +
		"// Snapshot: {'g': '1', 'x': 'a'}\n" +
		"value=1a\n" +
		"// Snapshot: {'g': '1', 'x': 'b'}\n" +
		"value=1b\n" +
		"// Next context\n" +
		"\n// Context 'c'\n" +
		"// Snapshot: {'g': '2', 'x': 'a'}\n" +
		"value=2a\n" +
		"// Snapshot: {'g': '2', 'x': 'b'}\n" +
		"value=2b\n" +
		"// Next context\n"

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestCompile_Empty(t *testing.T) {
	got, err := Compile(t.Context(), "// nothing here\n\n")
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}

	if got != banner {
		t.Errorf("got %q, want banner only", got)
	}
}

func TestCompile_MultipleContexts(t *testing.T) {
	src := `#GLOBALVAR g 1
#CONTEXT first
a${g}
#ENDCONTEXT
#CONTEXT second
#VAR g 9
b${g}
#ENDCONTEXT
`

	got, err := Compile(t.Context(), src, WithBanner("// test"))
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}

	want := "// test\n\n" +
		"\n// Context 'first'\n" +
		"// Snapshot: {'g': '1'}\n" +
		"a1\n" +
		"// Next context\n" +
		"\n// Context 'second'\n" +
		"// Snapshot: {'g': '9'}\n" +
		"b9\n" +
		"// Next context\n"

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestCompile_ContextWithoutVariables(t *testing.T) {
	got, err := Compile(t.Context(), "#CONTEXT c\nplain\n#ENDCONTEXT\n")
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}

	want := banner + "\n// Context 'c'\n// Snapshot: {}\nplain\n// Next context\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCompile_EmptyLocalValues(t *testing.T) {
	got, err := Compile(t.Context(), "#CONTEXT c\n#VAR x \nline\n#ENDCONTEXT\n")
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}

	want := banner + "\n// Context 'c'\n// Next context\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCompile_EmptyGlobalValues(t *testing.T) {
	got, err := Compile(t.Context(), "#GLOBALVAR g \n#CONTEXT c\nline\n#ENDCONTEXT\n")
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}

	if got != banner {
		t.Errorf("got %q, want banner only", got)
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{name: "unknown directive", src: "#FOO\n", want: ErrUnknownDirective},
		{name: "unclosed", src: "#CONTEXT c\n", want: ErrUnclosedContext},
		{
			name: "unknown variable",
			src:  "#CONTEXT c\n${nope}\n#ENDCONTEXT\n",
			want: ErrUnknownVariable,
		},
		{
			name: "bad expression",
			src:  "#CONTEXT c\n${(}\n#ENDCONTEXT\n",
			want: ErrExpressionEvaluation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Compile(t.Context(), tt.src)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}

			if out != "" {
				t.Errorf("expected no partial output, got %q", out)
			}
		})
	}
}

func TestCompile_SnapshotLimit(t *testing.T) {
	src := "#GLOBALVAR g 123\n#CONTEXT c\n#VAR x ab\n${g}${x}\n#ENDCONTEXT\n"

	_, err := Compile(t.Context(), src, WithMaxSnapshots(5))
	if !errors.Is(err, ErrSnapshotLimit) {
		t.Fatalf("expected ErrSnapshotLimit, got %v", err)
	}

	out, err := Compile(t.Context(), src, WithMaxSnapshots(6))
	if err != nil {
		t.Fatalf("unexpected error at exact limit: %v", err)
	}

	if n := strings.Count(out, "// Snapshot: "); n != 6 {
		t.Errorf("expected 6 snapshot blocks, got %d", n)
	}
}

func TestCompile_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := Compile(ctx, "#CONTEXT c\nline\n#ENDCONTEXT\n")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

// wideGlobals declares six globals of 200 values each, 200^6 snapshots.
func wideGlobals() string {
	var sb strings.Builder

	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		sb.WriteString("#GLOBALVAR " + name + " " + strings.Repeat("x", 200) + "\n")
	}

	return sb.String()
}

func TestCompile_GlobalsWithoutContexts(t *testing.T) {
	ctx, cancel := context.WithTimeout(t.Context(), time.Second)
	defer cancel()

	got, err := Compile(ctx, wideGlobals(), WithMaxSnapshots(10))
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}

	if got != banner {
		t.Errorf("got %q, want banner only", got)
	}
}

func TestCompile_EmptyLocalsDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()

	src := wideGlobals() + "#CONTEXT c\n#VAR x \nline\n#ENDCONTEXT\n"

	done := make(chan error, 1)

	go func() {
		_, err := Compile(ctx, src)
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("expected context.DeadlineExceeded, got %v", err)
		}

	case <-time.After(5 * time.Second):
		t.Fatal("compile did not observe its deadline")
	}
}

func TestContext_CompileCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	c := NewContext("solo")
	c.CodeLines = append(c.CodeLines, "line")

	if _, err := c.Compile(ctx, Snapshot{}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestCompileReader(t *testing.T) {
	src := "#GLOBALVAR g 1\n#CONTEXT c\n${g}\n#ENDCONTEXT\n"

	fromString, err := Compile(t.Context(), src)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}

	fromReader, err := CompileReader(t.Context(), strings.NewReader(src))
	if err != nil {
		t.Fatalf("compile reader error: %v", err)
	}

	if fromString != fromReader {
		t.Errorf("outputs differ:\n%q\n%q", fromString, fromReader)
	}
}

func TestCompileRegistry_Unclosed(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Fold(Directive{Kind: KindOpenContext, Name: "c"}); err != nil {
		t.Fatal(err)
	}

	if _, err := CompileRegistry(t.Context(), reg); !errors.Is(err, ErrUnclosedContext) {
		t.Errorf("expected ErrUnclosedContext, got %v", err)
	}
}

func TestContext_Compile(t *testing.T) {
	c := NewContext("solo")
	c.Variables = append(c.Variables, NewVariable("x", "ab", ScopeLocal))
	c.CodeLines = append(c.CodeLines, "<${x}>")

	got, err := c.Compile(t.Context(), NewSnapshot(Binding{Name: "g", Value: "1"}))
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}

	want := "\n// Context 'solo'\n" +
		"// Snapshot: {'g': '1', 'x': 'a'}\n<a>\n" +
		"// Snapshot: {'g': '1', 'x': 'b'}\n<b>\n"

	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
