package cmd

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ardnew/tup/lang"
)

func TestEvalRun(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		bind    []string
		want    string
		wantErr error
	}{
		{
			name: "bindings",
			line: "value=${g}${x}",
			bind: []string{"g=1", "x=a"},
			want: "value=1a\n",
		},
		{
			name: "rebinding",
			line: "${x}",
			bind: []string{"x=a", "x=b"},
			want: "b\n",
		},
		{
			name: "value with equals",
			line: "${x}",
			bind: []string{"x=a=b"},
			want: "a=b\n",
		},
		{
			name: "no markers",
			line: "plain text",
			want: "plain text\n",
		},
		{
			name:    "unknown variable",
			line:    "${y}",
			bind:    []string{"x=1"},
			wantErr: lang.ErrUnknownVariable,
		},
		{
			name:    "malformed binding",
			line:    "${x}",
			bind:    []string{"x"},
			wantErr: ErrInvalidBind,
		},
		{
			name:    "empty name",
			line:    "${x}",
			bind:    []string{"=1"},
			wantErr: ErrInvalidBind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer

			e := &Eval{Line: tt.line, Bind: tt.bind, MaxPasses: 64, Stdout: &out}

			err := e.Run(t.Context())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Run() error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			if out.String() != tt.want {
				t.Errorf("output = %q, want %q", out.String(), tt.want)
			}
		})
	}
}
