package cmd

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/ardnew/tup/lang"
	"github.com/ardnew/tup/log"
)

// Eval expands a single line against explicit bindings.
type Eval struct {
	Line      string   `arg:"" help:"Line to expand, e.g. 'v=${x}${y}'"`
	Bind      []string `       help:"Bind a variable (repeatable)"             placeholder:"NAME=VALUE" sep:"none" short:"b"`
	MaxPasses int      `       help:"Maximum substitution passes"   default:"64"`

	Stdout io.Writer `kong:"-"`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) error {
	snapshot, err := parseBindings(e.Bind)
	if err != nil {
		return err
	}

	log.DebugContext(ctx, "eval",
		slog.String("line", e.Line),
		slog.String("snapshot", snapshot.String()),
	)

	x := lang.NewExpander(
		lang.WithMaxPasses(e.MaxPasses),
		lang.WithLogger(log.Default()),
	)

	result, err := x.Expand(e.Line, snapshot)
	if err != nil {
		return lang.WrapError(err).With(
			slog.String("command", "eval"),
			slog.String("line", e.Line),
		)
	}

	return writeOutput(stdio, e.Stdout, []byte(result+"\n"))
}

// parseBindings builds a snapshot from NAME=VALUE pairs in order. A later
// binding of a name replaces an earlier one.
func parseBindings(pairs []string) (lang.Snapshot, error) {
	bindings := make([]lang.Binding, 0, len(pairs))

	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")

		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return lang.Snapshot{}, ErrInvalidBind.With(slog.String("bind", pair))
		}

		bindings = append(bindings, lang.Binding{Name: name, Value: value})
	}

	return lang.NewSnapshot(bindings...), nil
}
