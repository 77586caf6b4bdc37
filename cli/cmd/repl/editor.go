package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ardnew/tup/lang"
	"github.com/ardnew/tup/log"
)

const defaultEditor = "vi"

// editSourceCommand implements [tea.ExecCommand] for the edit-parse-retry
// loop. It writes the session source to a temp file, opens the user's
// editor, and checks that the result still parses and folds into a registry.
// On error the user is prompted to re-edit; declining leaves the session
// unchanged.
type editSourceCommand struct {
	source    string
	ctxFunc   func() context.Context
	logger    log.Logger
	newSource string
	stdin     io.Reader
	stdout    io.Writer
	stderr    io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editSourceCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editSourceCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editSourceCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit loop. An emptied file cancels the edit and leaves
// newSource empty. If the user declines to re-edit a broken source, Run
// returns [ErrEditDeclined].
func (c *editSourceCommand) Run() error {
	ctx := c.ctxFunc()

	f, err := os.CreateTemp("", "tup-repl-*.tup")
	if err != nil {
		return err
	}

	path := f.Name()

	defer os.Remove(path)

	if err := f.Close(); err != nil {
		return err
	}

	content := c.source

	for {
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			return err
		}

		if err := runEditor(ctx, c.stdin, c.stdout, c.stderr, path); err != nil {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		content = string(data)
		if strings.TrimSpace(content) == "" {
			return nil
		}

		err = validate(ctx, content)

		c.logger.TraceContext(ctx, "editor parse attempt",
			slog.Int("content_length", len(data)),
			slog.Bool("success", err == nil),
		)

		if err == nil {
			c.newSource = content

			return nil
		}

		fmt.Fprintf(c.stderr, "\nerror: %s\n", err)
		fmt.Fprint(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "n", "no":
			return ErrEditDeclined
		}
	}
}

// validate reports whether source parses and satisfies the structural rules.
func validate(ctx context.Context, source string) error {
	directives, err := lang.ParseString(ctx, source)
	if err != nil {
		return err
	}

	_, err = lang.Build(directives)

	return err
}

// runEditor launches the user's editor on the given file path.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}

	cmd := exec.CommandContext(ctx, editor, path)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}
