package lang

import (
	"iter"
	"maps"
	"math"
	"math/bits"
	"strings"
)

// Binding is a single name-to-value selection within a [Snapshot].
type Binding struct {
	Name  string
	Value string
}

// Snapshot is one concrete assignment of values to a set of variables.
//
// Bindings keep insertion order for rendering. Rebinding a name replaces its
// value in place, so a local that shadows a global keeps the global's
// position. The zero Snapshot is empty and ready to use.
type Snapshot struct {
	bindings []Binding
	index    map[string]int
}

// NewSnapshot creates a snapshot from the given bindings in order.
// A later binding of the same name replaces an earlier one.
func NewSnapshot(bindings ...Binding) Snapshot {
	var s Snapshot

	for _, b := range bindings {
		s = s.with(b.Name, b.Value)
	}

	return s
}

// Len returns the number of bound names.
func (s Snapshot) Len() int { return len(s.bindings) }

// Lookup returns the value bound to name.
func (s Snapshot) Lookup(name string) (string, bool) {
	i, ok := s.index[name]
	if !ok {
		return "", false
	}

	return s.bindings[i].Value, true
}

// All returns an iterator over the bindings in insertion order.
func (s Snapshot) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, b := range s.bindings {
			if !yield(b.Name, b.Value) {
				return
			}
		}
	}
}

// Bindings returns a copy of the bindings in insertion order.
func (s Snapshot) Bindings() []Binding {
	return append([]Binding(nil), s.bindings...)
}

// Map returns the bindings as a new map.
func (s Snapshot) Map() map[string]string {
	m := make(map[string]string, len(s.bindings))

	for _, b := range s.bindings {
		m[b.Name] = b.Value
	}

	return m
}

// String renders the snapshot as a dictionary literal, e.g.
// {'g': '1', 'x': 'a'}.
func (s Snapshot) String() string {
	var sb strings.Builder

	sb.WriteByte('{')

	for i, b := range s.bindings {
		if i > 0 {
			sb.WriteString(", ")
		}

		sb.WriteString(quote(b.Name))
		sb.WriteString(": ")
		sb.WriteString(quote(b.Value))
	}

	sb.WriteByte('}')

	return sb.String()
}

// with returns a copy of s with name bound to value.
func (s Snapshot) with(name, value string) Snapshot {
	c := s.clone(1)

	if i, ok := c.index[name]; ok {
		c.bindings[i].Value = value

		return c
	}

	c.index[name] = len(c.bindings)
	c.bindings = append(c.bindings, Binding{Name: name, Value: value})

	return c
}

// clone returns a deep copy of s with room for extra more bindings.
func (s Snapshot) clone(extra int) Snapshot {
	c := Snapshot{
		bindings: make([]Binding, len(s.bindings), len(s.bindings)+extra),
		index:    make(map[string]int, len(s.bindings)+extra),
	}

	copy(c.bindings, s.bindings)
	maps.Copy(c.index, s.index)

	return c
}

// extend returns a copy of s with each variable bound to the value selected
// by the corresponding entry of idx.
func (s Snapshot) extend(vars []*Variable, idx []int) Snapshot {
	c := s.clone(len(vars))

	for i, v := range vars {
		value := v.Values[idx[i]]

		if j, ok := c.index[v.Name]; ok {
			c.bindings[j].Value = value

			continue
		}

		c.index[v.Name] = len(c.bindings)
		c.bindings = append(c.bindings, Binding{Name: v.Name, Value: value})
	}

	return c
}

// Enumerate returns a lazy sequence over the cartesian product of the
// candidate values of vars, each layered on inherited.
//
// The order is mixed-radix counting: the last variable varies fastest and the
// first varies slowest. With no variables the sequence yields inherited once.
// If any variable has no values the sequence is empty. Every call returns an
// independent sequence, and each yielded Snapshot is a fresh copy.
func Enumerate(vars []*Variable, inherited Snapshot) iter.Seq[Snapshot] {
	return func(yield func(Snapshot) bool) {
		if len(vars) == 0 {
			yield(inherited)

			return
		}

		for _, v := range vars {
			if len(v.Values) == 0 {
				return
			}
		}

		idx := make([]int, len(vars))

		for {
			if !yield(inherited.extend(vars, idx)) {
				return
			}

			// Increment the last index and carry leftward on overflow.
			i := len(vars) - 1
			for ; i >= 0; i-- {
				idx[i]++
				if idx[i] < len(vars[i].Values) {
					break
				}

				idx[i] = 0
			}

			if i < 0 {
				return
			}
		}
	}
}

// Count returns the number of snapshots [Enumerate] yields for vars,
// saturating at math.MaxUint64.
func Count(vars []*Variable) uint64 {
	n := uint64(1)

	for _, v := range vars {
		n = mulSaturating(n, uint64(len(v.Values)))
	}

	return n
}

// mulSaturating multiplies a and b, saturating at math.MaxUint64.
func mulSaturating(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return math.MaxUint64
	}

	return lo
}

// quote renders s as a single-quoted literal, switching to double quotes
// when s contains a single quote but no double quote.
func quote(s string) string {
	q := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		q = '"'
	}

	var sb strings.Builder

	sb.WriteByte(q)

	for _, r := range s {
		switch {
		case r == '\\':
			sb.WriteString(`\\`)
		case r == rune(q):
			sb.WriteByte('\\')
			sb.WriteByte(q)
		case r == '\n':
			sb.WriteString(`\n`)
		case r == '\r':
			sb.WriteString(`\r`)
		case r == '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}

	sb.WriteByte(q)

	return sb.String()
}
