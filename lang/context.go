package lang

import (
	"context"
	"iter"
	"log/slog"
	"strings"
)

// Context is a named scope of local variables and code lines.
//
// A Context is built while it is open in a [Registry] and must not be
// modified after it is closed.
type Context struct {
	Name      string
	Variables []*Variable // local variables in declaration order
	CodeLines []string    // raw code lines in declaration order
	Line      int         // source line of the opening directive
}

// NewContext creates an empty context.
func NewContext(name string) *Context {
	return &Context{Name: name}
}

// Lookup returns the local variable named name.
func (c *Context) Lookup(name string) (*Variable, bool) {
	return findVariable(c.Variables, name)
}

// Snapshots returns the local snapshots of c layered on inherited.
// Local bindings take precedence over inherited bindings of the same name.
func (c *Context) Snapshots(inherited Snapshot) iter.Seq[Snapshot] {
	return Enumerate(c.Variables, inherited)
}

// Count returns the number of local snapshots of c.
func (c *Context) Count() uint64 {
	return Count(c.Variables)
}

// Compile expands every code line of c for each local snapshot layered on
// inherited and returns the rendered block. Cancellation of ctx is observed
// before each local snapshot.
func (c *Context) Compile(
	ctx context.Context,
	inherited Snapshot,
	opts ...Option,
) (string, error) {
	o := makeOptions(opts...)

	var sb strings.Builder

	err := c.compileTo(ctx, &sb, inherited, newExpander(&o), nil)
	if err != nil {
		return "", err
	}

	return sb.String(), nil
}

// compileTo writes the rendered block of c to sb.
//
// The block is a header naming the context, then for each local snapshot a
// comment recording its bindings followed by the expanded code lines.
// The budget, if not nil, is charged once per local snapshot.
func (c *Context) compileTo(
	ctx context.Context,
	sb *strings.Builder,
	inherited Snapshot,
	x *Expander,
	b *budget,
) error {
	sb.WriteString("\n// Context '")
	sb.WriteString(c.Name)
	sb.WriteString("'\n")

	for snapshot := range c.Snapshots(inherited) {
		if err := b.charge(ctx); err != nil {
			return WrapError(err).With(slog.String("context", c.Name))
		}

		sb.WriteString("// Snapshot: ")
		sb.WriteString(snapshot.String())
		sb.WriteByte('\n')

		for _, line := range c.CodeLines {
			expanded, err := x.Expand(line, snapshot)
			if err != nil {
				return WrapError(err).
					With(
						slog.String("context", c.Name),
						slog.String("code", line),
					)
			}

			sb.WriteString(expanded)
			sb.WriteByte('\n')
		}
	}

	return nil
}
