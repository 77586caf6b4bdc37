package lang

import (
	"log/slog"
	"regexp"
	"strings"
)

// Kind identifies one of the five directive forms a source line can take.
type Kind int

const (
	// KindGlobalVar declares a variable visible to every context:
	// #GLOBALVAR <name> <values>.
	KindGlobalVar Kind = iota

	// KindLocalVar declares a variable owned by the open context:
	// #VAR <name> <values>.
	KindLocalVar

	// KindOpenContext opens a named context: #CONTEXT <name>.
	KindOpenContext

	// KindCloseContext closes the open context: #ENDCONTEXT.
	KindCloseContext

	// KindCode is any other line, stored verbatim in the open context.
	KindCode
)

// String returns a string representation of the directive kind.
func (k Kind) String() string {
	switch k {
	case KindGlobalVar:
		return "GlobalVar"

	case KindLocalVar:
		return "LocalVar"

	case KindOpenContext:
		return "OpenContext"

	case KindCloseContext:
		return "CloseContext"

	case KindCode:
		return "Code"

	default:
		return "Unknown"
	}
}

// Directive is one parsed source line.
//
// Exactly the fields relevant to Kind are set:
//   - KindGlobalVar, KindLocalVar: Name and Values
//   - KindOpenContext: Name
//   - KindCode: Code
type Directive struct {
	Kind   Kind
	Name   string
	Values []string
	Code   string
	Line   int // 1-based line number in the source, 0 if unknown
}

const (
	directivePrefix = "#"
	commentPrefix   = "//"
)

var (
	globalVarPattern    = regexp.MustCompile(`^#GLOBALVAR ([a-zA-Z0-9_]+) (.*)$`)
	localVarPattern     = regexp.MustCompile(`^#VAR ([a-zA-Z0-9_]+) (.*)$`)
	openContextPattern  = regexp.MustCompile(`^#CONTEXT ([a-zA-Z0-9_]+)$`)
	closeContextPattern = regexp.MustCompile(`^#ENDCONTEXT$`)
)

// ParseLine classifies a single source line.
//
// It returns ok == false for lines that carry no directive: blank lines and
// lines beginning with "//". A line beginning with "#" that matches none of
// the known directive forms is rejected with [ErrUnknownDirective].
func ParseLine(line string) (d Directive, ok bool, err error) {
	if line == "" || strings.HasPrefix(line, commentPrefix) {
		return Directive{}, false, nil
	}

	if !strings.HasPrefix(line, directivePrefix) {
		return Directive{Kind: KindCode, Code: line}, true, nil
	}

	if m := globalVarPattern.FindStringSubmatch(line); m != nil {
		return Directive{
			Kind:   KindGlobalVar,
			Name:   m[1],
			Values: splitValues(m[2]),
		}, true, nil
	}

	if m := localVarPattern.FindStringSubmatch(line); m != nil {
		return Directive{
			Kind:   KindLocalVar,
			Name:   m[1],
			Values: splitValues(m[2]),
		}, true, nil
	}

	if m := openContextPattern.FindStringSubmatch(line); m != nil {
		return Directive{Kind: KindOpenContext, Name: m[1]}, true, nil
	}

	if closeContextPattern.MatchString(line) {
		return Directive{Kind: KindCloseContext}, true, nil
	}

	keyword, _, _ := strings.Cut(line, " ")

	return Directive{}, false, ErrUnknownDirective.
		With(slog.String("keyword", keyword))
}

// splitValues decomposes a declaration payload into its characters.
// Each character is one candidate value: "12" yields ["1", "2"].
func splitValues(payload string) []string {
	values := make([]string, 0, len(payload))

	for _, r := range payload {
		values = append(values, string(r))
	}

	return values
}
