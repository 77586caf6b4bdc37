package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/tup/log"
)

// loadYAML is a [kong.ConfigurationLoader] for YAML configuration files.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(loadYAML, "/path/to/config.yaml")
//
// Keys are flag names. Nested mappings are flattened by joining keys with
// "-", so both of the following set --log-level:
//
//	log-level: debug
//
//	log:
//	  level: debug
//
// Underscores may be used in place of hyphens. Sequences are joined with ","
// for slice flags. Command-line flags override values from the file.
//
// A file that cannot be decoded is reported and otherwise ignored, so that a
// broken configuration never prevents `tup init --force` from replacing it.
func loadYAML(r io.Reader) (kong.Resolver, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var doc map[string]any

	if err := yaml.Unmarshal(data, &doc); err != nil {
		log.Warn("ignoring invalid configuration",
			slog.String("format", "yaml"),
			slog.Any("error", err),
		)

		return config{}, nil
	}

	cfg := make(config, len(doc))
	cfg.flatten("", doc)

	return cfg, nil
}

// config implements [kong.Resolver] over a flattened configuration document.
// Keys are stored with hyphens.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if value, ok := c[normalizeKey(flag.Name)]; ok {
		return value, nil
	}

	// Not found. Kong falls back to the flag default.
	return nil, nil
}

// flatten copies the scalars of m into c under prefix.
func (c config) flatten(prefix string, m map[string]any) {
	for key, value := range m {
		c.set(prefix+normalizeKey(key), value)
	}
}

func (c config) set(key string, value any) {
	switch v := value.(type) {
	case map[string]any:
		c.flatten(key+"-", v)

	case map[any]any:
		for k, vv := range v {
			c.set(key+"-"+normalizeKey(fmt.Sprint(k)), vv)
		}

	case []any:
		items := make([]string, len(v))
		for i, item := range v {
			items[i] = scalar(item)
		}

		c[key] = strings.Join(items, ",")

	case nil:
		// An explicit null leaves the flag at its default.

	default:
		c[key] = scalarValue(v)
	}
}

// scalarValue returns v in a form kong can decode: numbers are rendered as
// strings, booleans and strings are kept.
func scalarValue(v any) any {
	switch v.(type) {
	case bool, string:
		return v

	default:
		return scalar(v)
	}
}

// scalar renders v as text.
func scalar(v any) string {
	switch n := v.(type) {
	case string:
		return n

	case int:
		return strconv.Itoa(n)

	case int64:
		return strconv.FormatInt(n, 10)

	case uint64:
		return strconv.FormatUint(n, 10)

	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)

	default:
		return fmt.Sprint(v)
	}
}

func normalizeKey(key string) string {
	return strings.ReplaceAll(strings.TrimSpace(key), "_", "-")
}
