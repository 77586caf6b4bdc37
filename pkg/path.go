package pkg

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// Prefix returns the base name used for the configuration and cache
// directories and for environment variable names.
//
// Prefix is the base name of the executable file with these substitutions:
//   - "__debug_bin<N>" (default output of the dlv debugger): replaced with Name
//   - "^\.+" (dot-prefixed names): remove the dot prefix
//
//nolint:gochecknoglobals
var Prefix = sync.OnceValue(
	func() string {
		id := os.Args[0]
		if exe, err := os.Executable(); err == nil {
			id = exe
		}

		return exePrefix(id)
	},
)

var (
	debugBinPattern   = regexp.MustCompile(`^__debug_bin\d*$`)
	leadingDotPattern = regexp.MustCompile(`^\.+`)
)

// exePrefix derives the prefix from the path of an executable.
func exePrefix(id string) string {
	base := filepath.Base(id)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = debugBinPattern.ReplaceAllString(base, Name)
	base = leadingDotPattern.ReplaceAllString(base, "")

	if base == "" || base == "." {
		return Name
	}

	return base
}

// ConfigDir returns the configuration directory path.
//
//nolint:gochecknoglobals
var ConfigDir = sync.OnceValue(
	func() string {
		return userDir(os.UserConfigDir, ".config")
	},
)

// CacheDir returns the cache directory path used for transient files such
// as profiles.
//
//nolint:gochecknoglobals
var CacheDir = sync.OnceValue(
	func() string {
		return userDir(os.UserCacheDir, ".cache")
	},
)

// userDir joins Prefix to the directory reported by base, falling back to
// hidden under the home directory, then to the working directory.
func userDir(base func() (string, error), hidden string) string {
	dir, err := base()
	if err != nil {
		if home, herr := os.UserHomeDir(); herr == nil {
			dir = filepath.Join(home, hidden)
		} else if wd, werr := os.Getwd(); werr == nil {
			dir = wd
		} else {
			dir = "."
		}
	}

	return filepath.Join(dir, Prefix())
}
