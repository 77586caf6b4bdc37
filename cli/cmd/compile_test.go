package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ardnew/tup/lang"
)

func TestCompileRun(t *testing.T) {
	want := lang.DefaultBanner() + "\n\n" +
		"\n// Context 'c'\n" +
		"// Snapshot: {'g': '1', 'x': 'a'}\nvalue=1a\n" +
		"// Snapshot: {'g': '1', 'x': 'b'}\nvalue=1b\n" +
		"// Next context\n" +
		"\n// Context 'c'\n" +
		"// Snapshot: {'g': '2', 'x': 'a'}\nvalue=2a\n" +
		"// Snapshot: {'g': '2', 'x': 'b'}\nvalue=2b\n" +
		"// Next context\n"

	var out bytes.Buffer

	c := &Compile{
		Input:     stdio,
		Output:    stdio,
		MaxPasses: 64,
		Stdin:     strings.NewReader(scenario),
		Stdout:    &out,
	}

	if err := c.Run(t.Context()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if out.String() != want {
		t.Errorf("output mismatch:\n got: %q\nwant: %q", out.String(), want)
	}
}

func TestCompileRun_Files(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.tup")
	out := filepath.Join(dir, "out.c")

	if err := os.WriteFile(in, []byte(scenario), 0o600); err != nil {
		t.Fatal(err)
	}

	c := &Compile{Input: in, Output: out, MaxPasses: 64, Banner: "// banner"}
	if err := c.Run(t.Context()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(string(data), "// banner\n\n") {
		t.Errorf("output does not start with banner: %q", data)
	}
}

func TestCompileRun_NoPartialOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.c")

	if err := os.WriteFile(out, []byte("previous"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		compile Compile
		want    error
	}{
		{
			name:    "unknown variable",
			compile: Compile{Stdin: strings.NewReader("#CONTEXT c\n${nope}\n#ENDCONTEXT\n")},
			want:    lang.ErrUnknownVariable,
		},
		{
			name:    "unclosed",
			compile: Compile{Stdin: strings.NewReader("#CONTEXT c\n")},
			want:    lang.ErrUnclosedContext,
		},
		{
			name: "snapshot limit",
			compile: Compile{
				Stdin:        strings.NewReader(scenario),
				MaxSnapshots: 3,
			},
			want: lang.ErrSnapshotLimit,
		},
		{
			// The single pass rewrites the line to "${d}".
			name: "non-terminating",
			compile: Compile{
				Stdin: strings.NewReader(
					"#CONTEXT c\n#VAR d $\n#VAR o {\n#VAR r }\n${d+o+'d'+r}\n#ENDCONTEXT\n",
				),
				MaxPasses: 1,
			},
			want: lang.ErrNonTerminatingExpansion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.compile
			c.Input, c.Output = stdio, out

			err := c.Run(t.Context())
			if !errors.Is(err, tt.want) {
				t.Fatalf("Run() error = %v, want %v", err, tt.want)
			}

			data, err := os.ReadFile(out)
			if err != nil || string(data) != "previous" {
				t.Errorf("output modified: %q, %v", data, err)
			}
		})
	}
}

func TestCompileRun_Timeout(t *testing.T) {
	// Eight variables of eight values each is far more than a nanosecond of
	// work.
	var src strings.Builder

	src.WriteString("#CONTEXT c\n")

	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		src.WriteString("#VAR " + name + " 01234567\n")
	}

	src.WriteString("${a}\n#ENDCONTEXT\n")

	c := &Compile{
		Input:   stdio,
		Output:  stdio,
		Timeout: time.Nanosecond,
		Stdin:   strings.NewReader(src.String()),
		Stdout:  &bytes.Buffer{},
	}

	if err := c.Run(t.Context()); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run() error = %v, want deadline exceeded", err)
	}
}
