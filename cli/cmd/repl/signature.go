package repl

import (
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ardnew/tup/lang"
)

// exprSignatures lists the parameters of commonly used expr-lang builtins.
// See https://expr-lang.org/docs/language-definition.
var exprSignatures = map[string][]string{
	"len":       {"v"},
	"int":       {"v"},
	"float":     {"v"},
	"string":    {"v"},
	"type":      {"v"},
	"abs":       {"n"},
	"ceil":      {"n"},
	"floor":     {"n"},
	"round":     {"n"},
	"upper":     {"string"},
	"lower":     {"string"},
	"trim":      {"string", "chars"},
	"trimLeft":  {"string", "chars"},
	"trimRight": {"string", "chars"},
	"split":     {"string", "separator"},
	"replace":   {"string", "old", "new"},
	"repeat":    {"string", "n"},
	"indexOf":   {"string", "substring"},
	"hasPrefix": {"string", "prefix"},
	"hasSuffix": {"string", "suffix"},
	"join":      {"array", "separator"},
	"filter":    {"array", "predicate"},
	"map":       {"array", "mapper"},
	"min":       {"...n"},
	"max":       {"...n"},
}

// functionCall is a call whose argument list encloses the cursor.
type functionCall struct {
	name     string // dotted function name, e.g. "mung.prefix"
	argIndex int    // 0-based index of the argument at the cursor
}

// detectFunctionCall finds the innermost call whose argument list encloses
// cursor. It reports false if the cursor is not inside a call.
func detectFunctionCall(input string, cursor int) (functionCall, bool) {
	if cursor > len(input) {
		cursor = len(input)
	}

	// Scan backward for the unmatched '(' nearest the cursor.
	open, depth := -1, 0

	for i := cursor; i > 0 && open < 0; {
		r, size := utf8.DecodeLastRuneInString(input[:i])
		i -= size

		switch r {
		case ')':
			depth++
		case '(':
			if depth == 0 {
				open = i
			}

			depth--
		case '{':
			// A marker opening ends the expression.
			if depth == 0 {
				return functionCall{}, false
			}
		}
	}

	if open < 0 {
		return functionCall{}, false
	}

	start := open
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if r != '.' && r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}

		start -= size
	}

	name := input[start:open]
	if name == "" {
		return functionCall{}, false
	}

	// Count commas at depth 0 between the '(' and the cursor.
	call := functionCall{name: name}
	depth = 0

	for _, r := range input[open+1 : cursor] {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				call.argIndex++
			}
		}
	}

	return call, true
}

// signature returns the parameter names of the builtin function name.
// Functions provided by tup are described by reflection on their type.
func signature(name string) ([]string, bool) {
	if fn, ok := lang.BuiltinFunc(name); ok {
		return reflectParams(reflect.TypeOf(fn))
	}

	params, ok := exprSignatures[name]

	return params, ok
}

// reflectParams names the parameters of a function type by their kinds.
func reflectParams(t reflect.Type) ([]string, bool) {
	if t == nil || t.Kind() != reflect.Func {
		return nil, false
	}

	params := make([]string, t.NumIn())

	for i := range params {
		in := t.In(i)

		if t.IsVariadic() && i == len(params)-1 {
			params[i] = "..." + typeName(in.Elem())
		} else {
			params[i] = typeName(in)
		}
	}

	return params, true
}

// typeName converts a reflect.Type to a readable parameter name.
func typeName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Func:
		return "func"
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "bool"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "int"
	case reflect.Float32, reflect.Float64:
		return "float"
	case reflect.Slice:
		return "[]" + typeName(t.Elem())
	case reflect.Map:
		return "map"
	default:
		if t.Name() != "" {
			return t.Name()
		}

		return "arg"
	}
}

// renderSignatureHint renders a call signature with the parameter at
// argIndex highlighted. A variadic parameter stays highlighted for every
// argument from its position on.
func renderSignatureHint(name string, params []string, argIndex int) string {
	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(name))
	b.WriteString(signatureStyle.Render("("))

	for i, param := range params {
		if i > 0 {
			b.WriteString(signatureStyle.Render(", "))
		}

		variadic := strings.HasPrefix(param, "...")
		if argIndex == i || (variadic && argIndex >= i) {
			b.WriteString(currentParamStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
