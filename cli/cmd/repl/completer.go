package repl

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/expr-lang/expr/builtin"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/tup/lang"
)

// commandPrefix introduces a REPL command.
const commandPrefix = ":"

// commands are the available REPL commands without their prefix.
var commands = []string{
	"block", "clear", "edit", "help", "list", "next", "prev", "quit", "use",
}

// isWordBoundary reports whether r delimits a word for completion purposes.
// This includes whitespace, the member-access dot, marker delimiters, and
// expr-lang operator and punctuation characters.
func isWordBoundary(r rune) bool {
	switch r {
	case '.', ' ', '\t',
		'$', '{', '}',
		'(', ')', '[', ']',
		'+', '-', '*', '/', '%',
		'<', '>', '=', '!',
		'&', '|', ',', '?', ':', ';',
		'\'', '"', '`':
		return true
	}

	return false
}

// wordBounds returns the current word at the cursor position and its byte
// boundaries within input.
// Returns an empty word when the cursor sits on a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	if cursor > len(input) {
		cursor = len(input)
	}

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// markerStart returns the byte offset just past the "${" that opens the
// marker enclosing cursor, or -1 if cursor is not inside a marker.
func markerStart(input string, cursor int) int {
	if cursor > len(input) {
		cursor = len(input)
	}

	open := strings.LastIndex(input[:cursor], "${")
	if open < 0 {
		return -1
	}

	open += len("${")

	if strings.Contains(input[open:cursor], "}") {
		return -1
	}

	return open
}

// parentPath returns the member-access chain before the current word, for
// completion of built-in namespace members. For input "${mung.pre" with the
// word "pre", the parent path is "mung". Returns "" for top-level words.
func parentPath(input string, wordStart int) string {
	prefix := input[:wordStart]
	if !strings.HasSuffix(prefix, ".") {
		return ""
	}

	prefix = strings.TrimRight(prefix, ".")
	pos := len(prefix)

	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(prefix[:pos])
		if r != '.' && isWordBoundary(r) {
			break
		}

		pos -= size
	}

	return prefix[pos:]
}

// exprLangBuiltinNames returns the sorted names of expr-lang builtins.
func exprLangBuiltinNames() []string {
	names := make([]string, 0, len(builtin.Index))
	for name := range builtin.Index {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// candidates returns the completions available at the top level of an
// expression: visible variables first, then tup builtins, then expr-lang
// builtins.
func candidates(names []string) []string {
	out := slices.Clone(names)
	out = append(out, lang.BuiltinNames()...)

	return append(out, exprLangBuiltinNames()...)
}

// computeMatches calculates the fuzzy match results for the word at the
// cursor. Completion applies to command names on a command line and to
// identifiers inside a "${...}" marker. Elsewhere the line is free text and
// nothing is offered.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	wordStart, wordEnd int,
) {
	input := m.input.Value()
	cursor := m.cursorByte()

	word, wordStart, wordEnd := wordBounds(input, cursor)

	var list []string

	switch {
	case strings.HasPrefix(input, commandPrefix) && wordStart == len(commandPrefix):
		list = commands

	case markerStart(input, cursor) >= 0:
		if parent := parentPath(input, wordStart); parent != "" {
			list = lang.BuiltinMembers(parent)

			// Offer every member right after the dot.
			if word == "" {
				return allMatches(list), wordStart, wordEnd
			}
		} else {
			list = candidates(m.session.Names())
		}
	}

	if word == "" || len(list) == 0 {
		return nil, wordStart, wordEnd
	}

	return fuzzy.Find(word, list), wordStart, wordEnd
}

// allMatches returns every candidate as an unfiltered match.
func allMatches(list []string) fuzzy.Matches {
	if len(list) == 0 {
		return nil
	}

	matches := make(fuzzy.Matches, len(list))
	for i, c := range list {
		matches[i] = fuzzy.Match{Str: c, Index: i}
	}

	return matches
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within the given terminal width. Each candidate is rendered with its matched
// characters highlighted. The selected candidate (when tabbing) uses the
// selected style.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		if i > 0 && used+entryWidth+ellipsisWidth > width {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted. Functions are displayed with a "()" suffix.
func renderCandidate(match fuzzy.Match, selected bool) string {
	baseStyle, highlightStyle := suggestionStyle, matchStyle
	if selected {
		baseStyle, highlightStyle = selectedStyle, selectedMatchStyle
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(highlightStyle.Render(string(r)))
		} else {
			b.WriteString(baseStyle.Render(string(r)))
		}
	}

	if isFunction(match.Str) {
		b.WriteString(baseStyle.Render("()"))
	}

	return b.String()
}

// isFunction reports whether name is a callable builtin.
func isFunction(name string) bool {
	if _, ok := builtin.Index[name]; ok {
		return true
	}

	_, ok := lang.BuiltinFunc(name)

	return ok
}
