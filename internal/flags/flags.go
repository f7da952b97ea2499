// Package flags defines canonical CLI flag names.
//
// These are flag *names* without leading dashes:
//
//	cmd.Flags().StringVar(&cfg.Source.Type, flags.FlagSource, "", "...")
package flags

const (
	// Source
	FlagSource    = "source"
	FlagProjectID = "project-id"
	FlagToken     = "token"
	FlagURL       = "url"
	FlagRef       = "ref"
	FlagDirectory = "directory"

	// Standards
	FlagInclude = "include"
	FlagExclude = "exclude"
	FlagSet     = "set"

	// Output
	FlagFormat = "format"
	FlagColor  = "color"

	// Runtime
	FlagTimeout = "timeout"
	FlagVerbose = "verbose"
)
