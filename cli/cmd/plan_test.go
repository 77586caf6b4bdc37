package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/tup/lang"
)

func TestPlanRun(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var out bytes.Buffer

		p := &Plan{
			Input:  stdio,
			Output: stdio,
			Format: "json",
			Indent: 0,
			Stdin:  strings.NewReader(scenario),
			Stdout: &out,
		}

		if err := p.Run(t.Context()); err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		var got lang.Manifest
		if err := json.Unmarshal(out.Bytes(), &got); err != nil {
			t.Fatalf("output is not JSON: %v\n%s", err, out.String())
		}

		want := lang.Manifest{
			Globals: []lang.VariableInfo{{Name: "g", Values: []string{"1", "2"}}},
			Contexts: []lang.ContextInfo{{
				Name:      "c",
				Line:      2,
				Locals:    []lang.VariableInfo{{Name: "x", Values: []string{"a", "b"}}},
				CodeLines: 1,
				Snapshots: 2,
			}},
			GlobalSnapshots: 2,
			Blocks:          4,
		}

		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("manifest mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		var out bytes.Buffer

		p := &Plan{
			Input:  stdio,
			Output: stdio,
			Format: "yaml",
			Indent: 2,
			Stdin:  strings.NewReader(scenario),
			Stdout: &out,
		}

		if err := p.Run(t.Context()); err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		for _, want := range []string{"blocks: 4", "name: c", "global_snapshots: 2"} {
			if !strings.Contains(out.String(), want) {
				t.Errorf("output missing %q:\n%s", want, out.String())
			}
		}
	})

	t.Run("structural error", func(t *testing.T) {
		p := &Plan{
			Input:  stdio,
			Output: stdio,
			Format: "yaml",
			Stdin:  strings.NewReader("#ENDCONTEXT\n"),
			Stdout: &bytes.Buffer{},
		}

		if err := p.Run(t.Context()); !errors.Is(err, lang.ErrNoActiveContext) {
			t.Errorf("Run() error = %v, want ErrNoActiveContext", err)
		}
	})
}
