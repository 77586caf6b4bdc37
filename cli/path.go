package cli

import (
	"os"
	"path/filepath"

	"github.com/ardnew/tup/pkg"
)

// baseConfig is the base name of the configuration files.
const baseConfig = "config"

// Extensions of the configuration files, in the order they are loaded.
// Values from a later file override values from an earlier one.
const (
	extJSON = ".json"
	extYAML = ".yaml"
)

// defaultDirMode is the permission mode of created runtime directories.
var defaultDirMode os.FileMode = 0o700

// configPath returns the path formed by joining the configuration directory
// with elem. With no elements it returns the directory itself.
func configPath(elem ...string) string {
	return filepath.Join(append([]string{pkg.ConfigDir()}, elem...)...)
}

// mkdirAllRequired creates the configuration and cache directories.
func mkdirAllRequired() error {
	for _, dir := range []string{pkg.ConfigDir(), pkg.CacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}
