package cmd

import (
	"context"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/tup/cli/cmd/repl"
	"github.com/ardnew/tup/lang"
	"github.com/ardnew/tup/log"
)

// Repl explores the snapshots of a source file interactively.
type Repl struct {
	Input     string `arg:""         help:"Source file or '-' for stdin"`
	Context   string `               help:"Context to explore (default: first)"          short:"c"`
	MaxPasses int    `default:"64"   help:"Maximum substitution passes per line"`
	History   bool   `default:"true" help:"Persist input history in the cache directory" negatable:""`

	Stdin io.Reader `kong:"-"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger := log.Default().With(slog.String("command", "repl"))

	src, err := openSource(r.Input, r.Stdin)
	if err != nil {
		return err
	}
	defer src.Close()

	cfg := repl.Config{
		Context: r.Context,
		Logger:  logger,
		Options: []lang.Option{
			lang.WithMaxPasses(r.MaxPasses),
			lang.WithLogger(logger),
		},
	}

	// The source consumes standard input, so keys come from the terminal.
	if r.Input == stdio {
		cfg.ProgramOptions = append(cfg.ProgramOptions, tea.WithInputTTY())
	}

	if r.History {
		if ktx := kongContextFrom(ctx); ktx != nil {
			cfg.CacheDir = ktx.Model.Vars()[CacheIdentifier]
		}
	}

	if err := repl.Run(ctx, src, cfg); err != nil {
		return lang.WrapError(err).With(
			slog.String("command", "repl"),
			slog.String("input", r.Input),
		)
	}

	return nil
}
