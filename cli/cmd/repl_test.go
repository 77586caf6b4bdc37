package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ardnew/tup/lang"
)

// The interactive program needs a terminal; these cases fail before it starts.
func TestReplRun_Errors(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		r := &Repl{Input: filepath.Join(t.TempDir(), "missing.tup")}

		if err := r.Run(t.Context()); !errors.Is(err, ErrReadSource) {
			t.Errorf("Run() error = %v, want ErrReadSource", err)
		}
	})

	t.Run("unclosed", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "unclosed.tup")
		if err := os.WriteFile(path, []byte("#CONTEXT c\n"), 0o600); err != nil {
			t.Fatal(err)
		}

		r := &Repl{Input: path, MaxPasses: 64}

		if err := r.Run(t.Context()); !errors.Is(err, lang.ErrUnclosedContext) {
			t.Errorf("Run() error = %v, want ErrUnclosedContext", err)
		}
	})

	t.Run("stdin", func(t *testing.T) {
		r := &Repl{
			Input:     stdio,
			Context:   "nope",
			MaxPasses: 64,
			Stdin:     strings.NewReader(scenario),
		}

		if err := r.Run(t.Context()); err == nil || !strings.Contains(err.Error(), "no such context") {
			t.Errorf("Run() error = %v, want unknown context", err)
		}
	})
}
