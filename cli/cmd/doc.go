// Package cmd implements the tup subcommands.
//
// Every command reads its source from a file or from standard input ("-"),
// renders its complete result in memory, and only then writes it, so a
// failed command never leaves partial output behind.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the YAML configuration file.
	ConfigIdentifier = "config"
)

// stdio is the file name that selects standard input or standard output.
const stdio = "-"
