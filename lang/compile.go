package lang

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// Compile parses source, folds it into a [Registry], and renders every
// variant of every context.
//
// For each global snapshot, each context is compiled in closing order and
// followed by a "// Next context" separator. The output opens with a banner
// line (see [WithBanner]).
//
// The output size is proportional to the number of global snapshots times the
// sum over contexts of their local snapshots. Both factors are products of
// value counts, so output grows combinatorially with the number of declared
// variables. Use [WithMaxSnapshots] or a context deadline to bound it.
//
// Any error aborts the compilation and no partial output is returned.
func Compile(ctx context.Context, source string, opts ...Option) (string, error) {
	directives, err := ParseString(ctx, source, opts...)
	if err != nil {
		return "", err
	}

	return compileDirectives(ctx, directives, opts...)
}

// CompileReader is like [Compile] but reads the source from r.
func CompileReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (string, error) {
	directives, err := ParseReader(ctx, r, opts...)
	if err != nil {
		return "", err
	}

	return compileDirectives(ctx, directives, opts...)
}

func compileDirectives(
	ctx context.Context,
	directives []Directive,
	opts ...Option,
) (string, error) {
	o := makeOptions(opts...)

	reg, err := Build(directives)
	if err != nil {
		return "", err
	}

	o.logger.DebugContext(ctx, "registry built",
		slog.Int("global_count", len(reg.Variables)),
		slog.Int("context_count", len(reg.Contexts)),
		slog.Uint64("global_snapshots", reg.Count()),
		slog.Uint64("blocks", reg.Blocks()))

	return reg.compile(ctx, &o)
}

// CompileRegistry renders a registry that has already been built.
func CompileRegistry(
	ctx context.Context,
	reg *Registry,
	opts ...Option,
) (string, error) {
	if err := reg.Finish(); err != nil {
		return "", err
	}

	o := makeOptions(opts...)

	return reg.compile(ctx, &o)
}

func (r *Registry) compile(ctx context.Context, o *options) (string, error) {
	var sb strings.Builder

	sb.WriteString(o.banner)
	sb.WriteString("\n\n")

	x := newExpander(o)
	b := &budget{limit: o.maxSnapshots}

	// Global snapshots only render through contexts.
	if len(r.Contexts) > 0 {
		if err := r.compileContexts(ctx, &sb, x, b); err != nil {
			return "", err
		}
	}

	o.logger.DebugContext(ctx, "compile complete",
		slog.Uint64("blocks", b.used),
		slog.Int("output_bytes", sb.Len()))

	return sb.String(), nil
}

// compileContexts renders every context for each global snapshot.
func (r *Registry) compileContexts(
	ctx context.Context,
	sb *strings.Builder,
	x *Expander,
	b *budget,
) error {
	for global := range r.Snapshots() {
		// Contexts with no local snapshots never charge the budget.
		if err := canceled(ctx); err != nil {
			return err
		}

		for _, c := range r.Contexts {
			if err := c.compileTo(ctx, sb, global, x, b); err != nil {
				return err
			}

			sb.WriteString("// Next context\n")
		}
	}

	return nil
}

// budget bounds the number of snapshot blocks emitted by one compilation and
// observes cancellation of its context.
type budget struct {
	limit uint64 // zero means unlimited
	used  uint64
}

// charge accounts for one more snapshot block. A nil budget only checks ctx.
func (b *budget) charge(ctx context.Context) error {
	if err := canceled(ctx); err != nil {
		return err
	}

	if b == nil {
		return nil
	}

	if b.limit > 0 && b.used >= b.limit {
		return ErrSnapshotLimit.With(slog.Uint64("limit", b.limit))
	}

	b.used++

	return nil
}

// canceled returns the cause of the cancellation of ctx, or nil.
func canceled(ctx context.Context) error {
	if ctx.Err() == nil {
		return nil
	}

	return WrapError(context.Cause(ctx))
}
