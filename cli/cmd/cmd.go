package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
)

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// stdin returns r, or os.Stdin if r is nil.
func stdin(r io.Reader) io.Reader {
	if r == nil {
		return os.Stdin
	}

	return r
}

// stdout returns w, or os.Stdout if w is nil.
func stdout(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}

	return w
}

// openSource opens the named source file. The name "-" selects in, which
// the caller must not close.
func openSource(name string, in io.Reader) (io.ReadCloser, error) {
	if name == "" || name == stdio {
		return io.NopCloser(stdin(in)), nil
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, ErrReadSource.With(slog.String("file", name)).Wrap(err)
	}

	return f, nil
}

// writeOutput writes data to the named file, or to out if name is "-".
//
// A named file is replaced atomically: data is written to a temporary file in
// the destination directory, which is then renamed over the target. On any
// failure the target is left untouched.
func writeOutput(name string, out io.Writer, data []byte) (err error) {
	if name == "" || name == stdio {
		if _, err := stdout(out).Write(data); err != nil {
			return ErrWriteOutput.With(slog.String("file", stdio)).Wrap(err)
		}

		return nil
	}

	fail := func(err error) error {
		return ErrWriteOutput.With(slog.String("file", name)).Wrap(err)
	}

	dir, base := filepath.Split(name)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".*")
	if err != nil {
		return fail(err)
	}

	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()

		return fail(err)
	}

	if err := tmp.Chmod(outputFileMode); err != nil {
		_ = tmp.Close()

		return fail(err)
	}

	if err := tmp.Close(); err != nil {
		return fail(err)
	}

	if err := os.Rename(tmp.Name(), name); err != nil {
		return fail(err)
	}

	return nil
}

// outputFileMode is the permission mode of written output files.
const outputFileMode os.FileMode = 0o644
