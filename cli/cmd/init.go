package cmd

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/tup/log"
	"github.com/ardnew/tup/profile"
)

// defaultConfigIndent is the number of spaces to use for indentation
// when generating the default configuration file.
const defaultConfigIndent = 2

// Init generates a default configuration file with current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)
	if ktx == nil {
		return ErrNoKongModel.With(slog.String("command", "init"))
	}

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		return ErrNoKongModel.With(slog.String("var", ConfigIdentifier))
	}

	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}

	data, err := yaml.MarshalWithOptions(
		configDocument(ktx),
		yaml.Indent(defaultConfigIndent),
	)
	if err != nil {
		return ErrYAMLMarshal.Wrap(err)
	}

	if err := writeOutput(confPath, nil, data); err != nil {
		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}

	log.DebugContext(ctx,
		"initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// configDocument collects the values of the application flags in
// declaration order, skipping help, version, and profiling flags and any
// flag without a value.
func configDocument(ktx *kong.Context) yaml.MapSlice {
	var doc yaml.MapSlice

	prefixIgnore := []string{"help", "version", profile.Tag}

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(prefixIgnore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		if v, ok := configValue(ktx.FlagValue(flag)); ok {
			doc = append(doc, yaml.MapItem{Key: flag.Name, Value: v})
		}
	}

	return doc
}

// configValue converts a flag value to a YAML scalar or sequence that the
// configuration loader reads back. Empty strings and empty slices are
// omitted.
func configValue(val any) (any, bool) {
	if val == nil {
		return nil, false
	}

	if d, ok := val.(time.Duration); ok {
		return d.String(), true
	}

	rv := reflect.ValueOf(val)

	switch rv.Kind() {
	case reflect.String:
		s := rv.String()

		return s, s != ""

	case reflect.Bool:
		return rv.Bool(), true

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint(), true

	case reflect.Float32, reflect.Float64:
		return rv.Float(), true

	case reflect.Slice:
		items := make([]any, 0, rv.Len())

		for i := range rv.Len() {
			if v, ok := configValue(rv.Index(i).Interface()); ok {
				items = append(items, v)
			}
		}

		return items, len(items) > 0

	default:
		return nil, false
	}
}
