// Package cli contains the command line interface for tup.
//
// # Usage
//
//	tup [flags] <input>            # same as: tup compile <input>
//	tup compile <input> -o out.c
//	tup plan <input> --format json
//	tup eval '${x}${y}' --bind x=1 --bind y=2
//	tup repl <input>
//	tup init
//
// # Configuration
//
// Flag defaults may be overridden by configuration files in the user
// configuration directory (for example ~/.config/tup):
//
//   - config.json, decoded by [kong.JSON]
//   - config.yaml, decoded with github.com/goccy/go-yaml
//
// Values from config.yaml take precedence over config.json. Flags given on
// the command line take precedence over both. `tup init` writes the
// effective flag values to config.yaml.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp layout (RFC3339, Kitchen, none, ...)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize text output on terminals
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o tup .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default ~/.cache/tup/pprof)
package cli
