package cmd

import (
	"bytes"
	"context"
	"io"
	"log/slog"

	"github.com/ardnew/tup/lang"
	"github.com/ardnew/tup/log"
)

// Plan describes the variables and contexts of a source file and the number
// of blocks a compilation would emit, without expanding anything.
type Plan struct {
	Input  string `arg:"" default:"-"    help:"Source file or '-' for stdin" optional:""`
	Output string `       default:"-"    help:"Output file or '-' for stdout"               short:"o" type:"path"`
	Format string `       default:"yaml" help:"Manifest format"               enum:"yaml,json" short:"F"`
	Indent int    `       default:"2"    help:"Indentation width (0 for compact JSON)"`

	Stdin  io.Reader `kong:"-"`
	Stdout io.Writer `kong:"-"`
}

// Run executes the plan command.
func (p *Plan) Run(ctx context.Context) error {
	logger := log.Default().With(slog.String("command", "plan"))

	src, err := openSource(p.Input, p.Stdin)
	if err != nil {
		return err
	}
	defer src.Close()

	m, err := lang.PlanReader(ctx, src, lang.WithLogger(logger))
	if err != nil {
		return lang.WrapError(err).With(
			slog.String("command", "plan"),
			slog.String("input", p.Input),
		)
	}

	var buf bytes.Buffer

	switch p.Format {
	case "json":
		err = m.FormatJSON(ctx, &buf, p.Indent)
	default:
		err = m.FormatYAML(ctx, &buf, p.Indent)
	}

	if err != nil {
		return lang.WrapError(err).With(
			slog.String("command", "plan"),
			slog.String("format", p.Format),
		)
	}

	logger.DebugContext(ctx, "planned",
		slog.Int("context_count", len(m.Contexts)),
		slog.Uint64("blocks", m.Blocks),
	)

	return writeOutput(p.Output, p.Stdout, buf.Bytes())
}
