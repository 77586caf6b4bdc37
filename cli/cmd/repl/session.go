package repl

import (
	"context"
	"iter"
	"log/slog"

	"github.com/ardnew/tup/lang"
)

// session walks the snapshots of one context of a parsed source.
//
// Snapshots are the global snapshots of the registry, each layered with the
// local snapshots of the active context, in compilation order. They are
// enumerated lazily: moving forward pulls the next snapshot from the
// enumerator, moving back revisits snapshots already pulled.
type session struct {
	source   string
	reg      *lang.Registry
	active   *lang.Context // nil if the source has no contexts
	expander *lang.Expander
	opts     []lang.Option

	seen  []lang.Snapshot
	index int
	next  func() (lang.Snapshot, bool)
	stop  func()
	done  bool
}

// newSession parses source and selects the context named name, or the first
// context if name is empty.
func newSession(
	ctx context.Context,
	source, name string,
	opts ...lang.Option,
) (*session, error) {
	directives, err := lang.ParseString(ctx, source, opts...)
	if err != nil {
		return nil, err
	}

	reg, err := lang.Build(directives)
	if err != nil {
		return nil, err
	}

	s := &session{
		source:   source,
		reg:      reg,
		expander: lang.NewExpander(opts...),
		opts:     opts,
	}

	if err := s.use(name); err != nil {
		return nil, err
	}

	return s, nil
}

// use selects the context named name and restarts enumeration.
// An empty name selects the first context.
func (s *session) use(name string) error {
	var active *lang.Context

	for _, c := range s.reg.Contexts {
		if name == "" || c.Name == name {
			active = c

			break
		}
	}

	if active == nil && name != "" {
		return ErrNoContext.With(slog.String("context", name))
	}

	s.close()

	s.active = active
	s.seen = nil
	s.index = 0
	s.done = false
	s.next, s.stop = iter.Pull(s.snapshots())

	// Pull the first snapshot so Current is valid.
	s.pull()

	return nil
}

// snapshots yields every snapshot of the active context.
func (s *session) snapshots() iter.Seq[lang.Snapshot] {
	return func(yield func(lang.Snapshot) bool) {
		// No global snapshot can contribute to an empty local product.
		if s.active != nil && s.active.Count() == 0 {
			return
		}

		for global := range s.reg.Snapshots() {
			if s.active == nil {
				if !yield(global) {
					return
				}

				continue
			}

			for local := range s.active.Snapshots(global) {
				if !yield(local) {
					return
				}
			}
		}
	}
}

// pull fetches one more snapshot from the enumerator.
func (s *session) pull() bool {
	if s.done {
		return false
	}

	snapshot, ok := s.next()
	if !ok {
		s.done = true

		return false
	}

	s.seen = append(s.seen, snapshot)

	return true
}

// close releases the enumerator.
func (s *session) close() {
	if s.stop != nil {
		s.stop()
		s.stop = nil
	}
}

// Empty reports whether the active context has no snapshots at all.
func (s *session) Empty() bool { return len(s.seen) == 0 }

// Current returns the selected snapshot.
func (s *session) Current() lang.Snapshot {
	if s.Empty() {
		return lang.Snapshot{}
	}

	return s.seen[s.index]
}

// Next selects the following snapshot. It reports false at the last one.
func (s *session) Next() bool {
	if s.index+1 >= len(s.seen) && !s.pull() {
		return false
	}

	s.index++

	return true
}

// Prev selects the preceding snapshot. It reports false at the first one.
func (s *session) Prev() bool {
	if s.index == 0 {
		return false
	}

	s.index--

	return true
}

// Position returns the 1-based index of the selected snapshot and the total
// number of snapshots of the active context (saturating).
func (s *session) Position() (int, uint64) {
	if s.Empty() {
		return 0, 0
	}

	return s.index + 1, s.Total()
}

// Total returns the number of snapshots of the active context.
func (s *session) Total() uint64 {
	if s.active == nil {
		return s.reg.Count()
	}

	n, g := s.active.Count(), s.reg.Count()
	if n != 0 && g > ^uint64(0)/n {
		return ^uint64(0)
	}

	return n * g
}

// ContextName returns the name of the active context, or "" if none.
func (s *session) ContextName() string {
	if s.active == nil {
		return ""
	}

	return s.active.Name
}

// Names returns the variable names visible in the active context.
func (s *session) Names() []string {
	return s.reg.Visible(s.active)
}

// Contexts returns the completed contexts in closing order.
func (s *session) Contexts() []*lang.Context {
	return s.reg.Contexts
}

// Expand expands line against the selected snapshot.
func (s *session) Expand(line string) (string, error) {
	return s.expander.Expand(line, s.Current())
}

// Block expands every code line of the active context against the selected
// snapshot.
func (s *session) Block() ([]string, error) {
	if s.active == nil {
		return nil, nil
	}

	lines := make([]string, 0, len(s.active.CodeLines))

	for _, code := range s.active.CodeLines {
		line, err := s.Expand(code)
		if err != nil {
			return nil, err
		}

		lines = append(lines, line)
	}

	return lines, nil
}
