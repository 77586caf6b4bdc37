package lang

import (
	"iter"
	"log/slog"
)

// Registry owns the global variables and the completed contexts of a source,
// and enforces the structural rules while directives are folded into it:
//
//   - contexts do not nest;
//   - local variables and code lines appear only inside an open context;
//   - every opened context is closed before the end of input.
type Registry struct {
	Variables []*Variable // global variables in declaration order
	Contexts  []*Context  // completed contexts in closing order

	current *Context // open context, nil outside #CONTEXT ... #ENDCONTEXT
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Build folds directives into a new registry and verifies that no context
// is left open.
func Build(directives []Directive) (*Registry, error) {
	r := NewRegistry()

	for _, d := range directives {
		if err := r.Fold(d); err != nil {
			return nil, err
		}
	}

	if err := r.Finish(); err != nil {
		return nil, err
	}

	return r, nil
}

// Fold consumes one directive.
func (r *Registry) Fold(d Directive) error {
	switch d.Kind {
	case KindGlobalVar:
		r.Variables = append(r.Variables, variableFrom(d, ScopeGlobal))

		return nil

	case KindLocalVar:
		if r.current == nil {
			return ErrNoActiveContext.With(
				slog.Int("line", d.Line),
				slog.String("directive", d.Kind.String()),
				slog.String("name", d.Name),
			)
		}

		r.current.Variables = append(
			r.current.Variables, variableFrom(d, ScopeLocal),
		)

		return nil

	case KindCode:
		if r.current == nil {
			return ErrNoActiveContext.With(
				slog.Int("line", d.Line),
				slog.String("directive", d.Kind.String()),
				slog.String("code", d.Code),
			)
		}

		r.current.CodeLines = append(r.current.CodeLines, d.Code)

		return nil

	case KindOpenContext:
		if r.current != nil {
			return ErrContextAlreadyOpen.With(
				slog.Int("line", d.Line),
				slog.String("name", d.Name),
				slog.String("open", r.current.Name),
				slog.Int("open_line", r.current.Line),
			)
		}

		r.current = &Context{Name: d.Name, Line: d.Line}

		return nil

	case KindCloseContext:
		if r.current == nil {
			return ErrNoActiveContext.With(
				slog.Int("line", d.Line),
				slog.String("directive", d.Kind.String()),
			)
		}

		r.Contexts = append(r.Contexts, r.current)
		r.current = nil

		return nil

	default:
		return ErrInvalidDirective.With(
			slog.Int("line", d.Line),
			slog.String("kind", d.Kind.String()),
		)
	}
}

// Finish reports [ErrUnclosedContext] if a context is still open.
func (r *Registry) Finish() error {
	if r.current == nil {
		return nil
	}

	return ErrUnclosedContext.With(
		slog.String("name", r.current.Name),
		slog.Int("line", r.current.Line),
	)
}

// Current returns the open context, if any.
func (r *Registry) Current() (*Context, bool) {
	return r.current, r.current != nil
}

// Lookup resolves name as seen from within active: a local variable of
// active shadows a global variable of the same name. A nil active context
// searches only the globals.
func (r *Registry) Lookup(name string, active *Context) (*Variable, error) {
	if active != nil {
		if v, ok := active.Lookup(name); ok {
			return v, nil
		}
	}

	if v, ok := findVariable(r.Variables, name); ok {
		return v, nil
	}

	attrs := []slog.Attr{slog.String("name", name)}
	if active != nil {
		attrs = append(attrs, slog.String("context", active.Name))
	}

	return nil, ErrUnknownVariable.With(attrs...)
}

// Visible returns the names visible from within active, globals first in
// declaration order followed by locals that do not shadow a global.
func (r *Registry) Visible(active *Context) []string {
	names := make([]string, 0, len(r.Variables))
	seen := make(map[string]struct{})

	add := func(vars []*Variable) {
		for _, v := range vars {
			if _, ok := seen[v.Name]; ok {
				continue
			}

			seen[v.Name] = struct{}{}
			names = append(names, v.Name)
		}
	}

	add(r.Variables)

	if active != nil {
		add(active.Variables)
	}

	return names
}

// Snapshots returns the global snapshots of r.
func (r *Registry) Snapshots() iter.Seq[Snapshot] {
	return Enumerate(r.Variables, Snapshot{})
}

// Count returns the number of global snapshots of r.
func (r *Registry) Count() uint64 {
	return Count(r.Variables)
}

// Blocks returns the total number of local snapshot blocks a compilation of
// r emits, saturating at math.MaxUint64.
func (r *Registry) Blocks() uint64 {
	var perGlobal uint64

	for _, c := range r.Contexts {
		n := c.Count()

		perGlobal += n
		if perGlobal < n {
			return mulSaturating(^uint64(0), r.Count())
		}
	}

	return mulSaturating(perGlobal, r.Count())
}
