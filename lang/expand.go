package lang

import (
	"log/slog"
	"regexp"
	"strings"
)

// markerPattern matches a ${expression} marker, non-greedy up to the first
// closing brace.
var markerPattern = regexp.MustCompile(`\$\{([^}]*)\}`)

// HasMarker reports whether line contains a ${...} marker.
func HasMarker(line string) bool {
	return markerPattern.MatchString(line)
}

// Expander rewrites code lines by evaluating their ${...} markers.
type Expander struct {
	evaluator Evaluator
	maxPasses int
}

// NewExpander returns an Expander using the evaluator and pass bound from
// opts.
func NewExpander(opts ...Option) *Expander {
	o := makeOptions(opts...)

	return newExpander(&o)
}

func newExpander(o *options) *Expander {
	return &Expander{
		evaluator: o.eval(),
		maxPasses: o.maxPasses,
	}
}

// Expand substitutes every marker in line with its evaluated result.
//
// Each pass replaces all non-overlapping markers, left to right, in a single
// scan of the current text. Text produced by a substitution is not rescanned
// within the same pass, but the whole rewritten line is scanned again on the
// next pass, so a result may itself contain a marker. Expansion stops at the
// first pass that finds no marker. If the line still holds a marker after the
// maximum number of passes, Expand fails with [ErrNonTerminatingExpansion].
func (x *Expander) Expand(line string, bindings Snapshot) (string, error) {
	for pass := 0; pass < x.maxPasses; pass++ {
		matches := markerPattern.FindAllStringSubmatchIndex(line, -1)
		if matches == nil {
			return line, nil
		}

		rewritten, err := x.substitute(line, matches, bindings)
		if err != nil {
			return "", WrapError(err).With(slog.Int("pass", pass+1))
		}

		line = rewritten
	}

	if !HasMarker(line) {
		return line, nil
	}

	return "", ErrNonTerminatingExpansion.
		With(
			slog.Int("max_passes", x.maxPasses),
			slog.String("partial", line),
			slog.String("snapshot", bindings.String()),
		)
}

// substitute performs one pass over line, replacing each matched marker.
func (x *Expander) substitute(
	line string,
	matches [][]int,
	bindings Snapshot,
) (string, error) {
	var sb strings.Builder

	sb.Grow(len(line))

	last := 0

	for _, m := range matches {
		// m[0]:m[1] is the whole marker, m[2]:m[3] the expression.
		sb.WriteString(line[last:m[0]])

		result, err := x.evaluator.Evaluate(line[m[2]:m[3]], bindings)
		if err != nil {
			return "", err
		}

		sb.WriteString(result)

		last = m[1]
	}

	sb.WriteString(line[last:])

	return sb.String(), nil
}
