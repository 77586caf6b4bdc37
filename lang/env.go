package lang

// This file defines the built-in names available to every expression in
// addition to the bindings of the current snapshot. Bindings shadow builtins
// of the same name.

import (
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/ardnew/mung"
)

// builtinEnv returns a fresh map of the built-in names.
func builtinEnv(processEnv map[string]string) map[string]any {
	return map[string]any{
		// Process environment lookup.
		"env": envFunc(processEnv),

		// PATH-like string manipulation via mung.
		"mung": map[string]any{
			"prefix":   mungPrefix,
			"prefixif": mungPrefixIf,
		},
	}
}

// BuiltinNames returns the sorted top-level built-in names.
func BuiltinNames() []string {
	return slices.Sorted(maps.Keys(builtinEnv(nil)))
}

// BuiltinMembers returns the sorted member names of the built-in namespace
// name, such as "mung". It returns nil if name is not a namespace.
func BuiltinMembers(name string) []string {
	ns, ok := builtinEnv(nil)[name].(map[string]any)
	if !ok {
		return nil
	}

	return slices.Sorted(maps.Keys(ns))
}

// BuiltinFunc returns the built-in function at the dotted path, such as "env"
// or "mung.prefix".
func BuiltinFunc(path string) (any, bool) {
	var current any = builtinEnv(nil)

	for seg := range strings.SplitSeq(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}

		if current, ok = m[seg]; !ok {
			return nil, false
		}
	}

	if _, ok := current.(map[string]any); ok {
		return nil, false
	}

	return current, true
}

// buildProcessEnvMap converts a "KEY=VALUE" string slice to a map.
// If envList is nil, os.Environ() is used.
func buildProcessEnvMap(envList []string) map[string]string {
	if envList == nil {
		envList = os.Environ()
	}

	result := make(map[string]string, len(envList))

	for _, entry := range envList {
		key, value, ok := strings.Cut(entry, "=")
		if ok {
			result[key] = value
		}
	}

	return result
}

// envFunc returns the built-in env() function that provides
// process environment access to expressions.
func envFunc(processEnv map[string]string) func(string) string {
	return func(key string) string {
		return processEnv[key]
	}
}

func mungPrefix(key string, prefix ...string) string {
	return mung.Make(
		mung.WithSubjectItems(key),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
	).String()
}

func mungPrefixIf(
	key string,
	predicate func(string) bool,
	prefix ...string,
) string {
	return mung.Make(
		mung.WithSubjectItems(key),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
		mung.WithFilter(predicate),
	).String()
}
