package pkg

import (
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestName(t *testing.T) {
	if Name != "tup" {
		t.Errorf("Expected Name to be %q, got %q", "tup", Name)
	}
}

func TestVersion(t *testing.T) {
	if strings.TrimSpace(Version) == "" {
		t.Error("Expected embedded Version to be non-empty")
	}

	if strings.ContainsAny(strings.TrimSpace(Version), " \n") {
		t.Errorf("Version %q spans more than one token", Version)
	}
}

func TestAuthor(t *testing.T) {
	if !slices.ContainsFunc(Author, func(a AuthorInfo) bool {
		return a.Name == "ardnew" && a.Email == "andrew@ardnew.com"
	}) {
		t.Errorf("Expected Author to contain ardnew, got %v", Author)
	}

	for i, author := range Author {
		if author.Name == "" && author.Email == "" {
			t.Errorf("Author[%d] must define at least Name or Email", i)
		}
	}
}

func TestUserDir(t *testing.T) {
	got := userDir(func() (string, error) { return "/etc/xdg", nil }, ".config")
	if want := filepath.Join("/etc/xdg", Prefix()); got != want {
		t.Errorf("userDir = %q, want %q", got, want)
	}

	t.Setenv("HOME", "/home/tup")

	got = userDir(func() (string, error) { return "", errors.New("unset") }, ".config")
	if want := filepath.Join("/home/tup", ".config", Prefix()); got != want {
		t.Errorf("userDir fallback = %q, want %q", got, want)
	}
}

func TestExePrefix(t *testing.T) {
	tests := map[string]string{
		"/usr/local/bin/tup":    "tup",
		"/tmp/__debug_bin12345": Name,
		"./.tup":                "tup",
		"./.tup.d/tup-dev":      "tup-dev",
	}

	for in, want := range tests {
		if got := exePrefix(filepath.FromSlash(in)); got != want {
			t.Errorf("exePrefix(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPrefix(t *testing.T) {
	if p := Prefix(); p == "" || strings.HasPrefix(p, ".") {
		t.Errorf("Prefix() = %q", p)
	}
}
