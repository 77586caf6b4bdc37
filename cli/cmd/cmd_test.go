package cmd

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const scenario = `#GLOBALVAR g 12
#CONTEXT c
#VAR x ab
value=${g}${x}
#ENDCONTEXT
`

func TestOpenSource(t *testing.T) {
	t.Run("stdin", func(t *testing.T) {
		rc, err := openSource(stdio, strings.NewReader("from stdin"))
		if err != nil {
			t.Fatal(err)
		}
		defer rc.Close()

		data, err := io.ReadAll(rc)
		if err != nil || string(data) != "from stdin" {
			t.Errorf("read %q, %v", data, err)
		}
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "in.tup")
		if err := os.WriteFile(path, []byte("from file"), 0o600); err != nil {
			t.Fatal(err)
		}

		rc, err := openSource(path, nil)
		if err != nil {
			t.Fatal(err)
		}
		defer rc.Close()

		data, err := io.ReadAll(rc)
		if err != nil || string(data) != "from file" {
			t.Errorf("read %q, %v", data, err)
		}
	})

	t.Run("missing", func(t *testing.T) {
		_, err := openSource(filepath.Join(t.TempDir(), "nope"), nil)
		if !errors.Is(err, ErrReadSource) {
			t.Errorf("err = %v, want ErrReadSource", err)
		}

		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("err = %v, want os.ErrNotExist", err)
		}
	})
}

func TestWriteOutput(t *testing.T) {
	t.Run("stdout", func(t *testing.T) {
		var buf bytes.Buffer
		if err := writeOutput(stdio, &buf, []byte("data")); err != nil {
			t.Fatal(err)
		}

		if buf.String() != "data" {
			t.Errorf("wrote %q", buf.String())
		}
	})

	t.Run("replace", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "out.c")

		if err := os.WriteFile(path, []byte("old"), 0o600); err != nil {
			t.Fatal(err)
		}

		if err := writeOutput(path, nil, []byte("new")); err != nil {
			t.Fatal(err)
		}

		data, err := os.ReadFile(path)
		if err != nil || string(data) != "new" {
			t.Errorf("read %q, %v", data, err)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatal(err)
		}

		if len(entries) != 1 {
			t.Errorf("temporary files left behind: %v", entries)
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "no", "such", "out.c")

		if err := writeOutput(path, nil, []byte("x")); !errors.Is(err, ErrWriteOutput) {
			t.Errorf("err = %v, want ErrWriteOutput", err)
		}
	})
}

func TestError(t *testing.T) {
	cause := errors.New("disk full")
	err := ErrWriteConfig.With(slog.String("file", "f")).Wrap(cause)

	if !errors.Is(err, ErrWriteConfig) {
		t.Error("derived error does not match its sentinel")
	}

	if errors.Is(err, ErrWriteOutput) {
		t.Error("derived error matches another sentinel")
	}

	if !errors.Is(err, cause) {
		t.Error("cause not wrapped")
	}

	if got := err.Error(); got != "write configuration file: disk full" {
		t.Errorf("Error() = %q", got)
	}

	attrs := err.LogValue().Group()
	if len(attrs) != 3 || attrs[2].Key != "file" {
		t.Errorf("LogValue() = %v", attrs)
	}
}
