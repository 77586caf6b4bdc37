package repl

import (
	"io"
	"slices"
	"testing"

	"github.com/ardnew/tup/log"
)

func TestWordBounds(t *testing.T) {
	tests := []struct {
		input  string
		cursor int
		word   string
		start  int
		end    int
	}{
		{"${abc}", 4, "abc", 2, 5},
		{"${abc}", 2, "abc", 2, 5},
		{"${a+bc}", 5, "bc", 4, 6},
		{"${mung.pre}", 10, "pre", 7, 10},
		{"${mung.}", 7, "", 7, 7},
		{"${héllo}", 5, "héllo", 2, 8},
		{"abc", 10, "abc", 0, 3},
	}

	for _, tt := range tests {
		word, start, end := wordBounds(tt.input, tt.cursor)
		if word != tt.word || start != tt.start || end != tt.end {
			t.Errorf("wordBounds(%q, %d) = %q, %d, %d; want %q, %d, %d",
				tt.input, tt.cursor, word, start, end, tt.word, tt.start, tt.end)
		}
	}
}

func TestMarkerStart(t *testing.T) {
	tests := []struct {
		input  string
		cursor int
		want   int
	}{
		{"value=${x", 9, 8},
		{"value=${x}", 10, -1},
		{"value=${x}+${y", 14, 13},
		{"value=x", 7, -1},
		{"${", 2, 2},
		{"$", 1, -1},
	}

	for _, tt := range tests {
		if got := markerStart(tt.input, tt.cursor); got != tt.want {
			t.Errorf("markerStart(%q, %d) = %d, want %d",
				tt.input, tt.cursor, got, tt.want)
		}
	}
}

func TestParentPath(t *testing.T) {
	tests := []struct {
		input     string
		wordStart int
		want      string
	}{
		{"${mung.pre", 7, "mung"},
		{"${a+mung.", 9, "mung"},
		{"${a.b.c", 6, "a.b"},
		{"${pre", 2, ""},
	}

	for _, tt := range tests {
		if got := parentPath(tt.input, tt.wordStart); got != tt.want {
			t.Errorf("parentPath(%q, %d) = %q, want %q",
				tt.input, tt.wordStart, got, tt.want)
		}
	}
}

func TestComputeMatches(t *testing.T) {
	s := mustSession(t, source, "c")
	m := newModel(t.Context(), s, NewHistory(""), log.Make(io.Discard), nil)

	match := func(input string) []string {
		m.setValue(input, len(input))

		matches, _, _ := m.computeMatches()

		out := make([]string, len(matches))
		for i, match := range matches {
			out[i] = match.Str
		}

		return out
	}

	if got := match("${x"); !slices.Contains(got, "x") {
		t.Errorf("variable not offered: %v", got)
	}

	if got := match("${mun"); len(got) == 0 || got[0] != "mung" {
		t.Errorf("builtin namespace not offered first: %v", got)
	}

	if got := match("${mung."); !slices.Equal(got, []string{"prefix", "prefixif"}) {
		t.Errorf("namespace members = %v", got)
	}

	if got := match(":ne"); !slices.Equal(got, []string{"next"}) {
		t.Errorf("commands = %v", got)
	}

	// Free text outside a marker is not completed.
	if got := match("value=x"); len(got) != 0 {
		t.Errorf("free text completed: %v", got)
	}

	if got := match(":use c"); len(got) != 0 {
		t.Errorf("command argument completed: %v", got)
	}
}

func TestIsFunction(t *testing.T) {
	for name, want := range map[string]bool{
		"upper":       true,
		"env":         true,
		"mung.prefix": true,
		"mung":        false,
		"x":           false,
	} {
		if got := isFunction(name); got != want {
			t.Errorf("isFunction(%q) = %v, want %v", name, got, want)
		}
	}
}
