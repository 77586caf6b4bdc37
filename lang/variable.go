package lang

import "slices"

// Scope distinguishes where a variable attaches.
type Scope int

const (
	// ScopeGlobal variables are owned by the [Registry] and visible to every
	// context.
	ScopeGlobal Scope = iota

	// ScopeLocal variables are owned by one [Context] and shadow globals of
	// the same name within it.
	ScopeLocal
)

// String returns a string representation of the scope.
func (s Scope) String() string {
	switch s {
	case ScopeGlobal:
		return "global"

	case ScopeLocal:
		return "local"

	default:
		return "unknown"
	}
}

// Variable is a named variable with an ordered list of candidate values.
// Each value is a single character of the declaration payload.
type Variable struct {
	Name   string
	Values []string
	Scope  Scope
}

// NewVariable creates a variable whose candidate values are the characters
// of payload, in order.
func NewVariable(name, payload string, scope Scope) *Variable {
	return &Variable{
		Name:   name,
		Values: splitValues(payload),
		Scope:  scope,
	}
}

// variableFrom creates a variable from a declaration directive.
func variableFrom(d Directive, scope Scope) *Variable {
	return &Variable{
		Name:   d.Name,
		Values: slices.Clone(d.Values),
		Scope:  scope,
	}
}

// findVariable returns the first variable named name.
func findVariable(vars []*Variable, name string) (*Variable, bool) {
	for _, v := range vars {
		if v.Name == name {
			return v, true
		}
	}

	return nil, false
}
