// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// A [Logger] is immutable. Its level, format, time layout, and caller
// reporting are fixed when it is created with [Make] or derived with
// [Logger.Wrap], so a Logger may be shared freely between goroutines.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Warn("snapshot limit reached", slog.Uint64("limit", n))
//
// # Configuration
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithTimeLayout("Kitchen"),
//		log.WithCaller(true))
//
// The package-level functions ([Info], [Warn], [Error], ...) write through a
// default logger on [os.Stderr], reconfigured with [Config].
//
// # Levels
//
// Five levels are defined: [LevelTrace], [LevelDebug], [LevelInfo],
// [LevelWarn], and [LevelError]. The default is [LevelWarn], so a
// successful run prints nothing.
//
// # Output Formats
//
// [FormatText] (default) writes one line per record. When pretty output is
// enabled and the writer is a color terminal, keys, values, and levels are
// styled with lipgloss. [FormatJSON] writes one JSON object per line.
//
// Attributes whose values implement [slog.LogValuer] and resolve to a group
// are flattened with dotted keys in text output:
//
//	ERROR compile failed err.error=unknown variable err.name=y err.line=4
package log
