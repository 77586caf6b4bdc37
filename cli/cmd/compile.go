package cmd

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/ardnew/tup/lang"
	"github.com/ardnew/tup/log"
)

// Compile expands a source file into every variant of its contexts.
type Compile struct {
	Input        string        `arg:"" default:"-" help:"Source file or '-' for stdin" optional:""`
	Output       string        `       default:"-" help:"Output file or '-' for stdout"              short:"o" type:"path"`
	MaxPasses    int           `       default:"64" help:"Maximum substitution passes per line"`
	MaxSnapshots uint64        `       default:"0"  help:"Maximum snapshot blocks emitted (0 is unlimited)"`
	Timeout      time.Duration `       default:"0"  help:"Abort compilation after this duration (0 is unlimited)"`
	Banner       string        `                    help:"Replace the banner line of the output"`

	Stdin  io.Reader `kong:"-"`
	Stdout io.Writer `kong:"-"`
}

// Run executes the compile command.
func (c *Compile) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if c.Timeout > 0 {
		var stop context.CancelFunc

		ctx, stop = context.WithTimeout(ctx, c.Timeout)
		defer stop()
	}

	logger := log.Default().With(slog.String("command", "compile"))

	src, err := openSource(c.Input, c.Stdin)
	if err != nil {
		return err
	}
	defer src.Close()

	start := time.Now()

	out, err := lang.CompileReader(ctx, src, c.options(logger)...)
	if err != nil {
		return lang.WrapError(err).With(
			slog.String("command", "compile"),
			slog.String("input", c.Input),
		)
	}

	if err := writeOutput(c.Output, c.Stdout, []byte(out)); err != nil {
		return err
	}

	logger.InfoContext(ctx, "compiled",
		slog.String("input", c.Input),
		slog.String("output", c.Output),
		slog.Int("bytes", len(out)),
		slog.Duration("elapsed", time.Since(start)),
	)

	return nil
}

func (c *Compile) options(logger log.Logger) []lang.Option {
	opts := []lang.Option{
		lang.WithMaxPasses(c.MaxPasses),
		lang.WithMaxSnapshots(c.MaxSnapshots),
		lang.WithLogger(logger),
	}

	if c.Banner != "" {
		opts = append(opts, lang.WithBanner(c.Banner))
	}

	return opts
}
