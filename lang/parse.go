package lang

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"strings"
)

// ParseReader reads source lines from r and parses each into a [Directive].
// Blank and comment lines are dropped. Each returned directive records its
// 1-based source line number.
func ParseReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) ([]Directive, error) {
	o := makeOptions(opts...)

	s := bufio.NewScanner(r)
	s.Buffer(
		make([]byte, 0, min(bufio.MaxScanTokenSize, o.maxLineSize)),
		o.maxLineSize,
	)

	directives := make([]Directive, 0)
	line := 0

	for s.Scan() {
		line++

		text := strings.TrimSuffix(s.Text(), "\r")

		d, ok, err := ParseLine(text)
		if err != nil {
			return nil, WrapError(err).WithLine(line, text)
		}

		if !ok {
			continue
		}

		d.Line = line
		directives = append(directives, d)
	}

	if err := s.Err(); err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.Int("line", line+1))
	}

	o.logger.TraceContext(ctx, "parse complete",
		slog.Int("line_count", line),
		slog.Int("directive_count", len(directives)))

	return directives, nil
}

// ParseString parses source text into directives.
func ParseString(
	ctx context.Context,
	s string,
	opts ...Option,
) ([]Directive, error) {
	return ParseReader(ctx, strings.NewReader(s), opts...)
}
