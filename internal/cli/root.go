package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/doclog/internal/query"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// IDGenerator overrides the query id source (for testing).
	// If nil, queries get UUIDv7 ids.
	IDGenerator query.IDGenerator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the doclog CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "doclog",
		Short: "doclog - query a document log",
		Long: `Query an append-only document log with MongoDB-style filters.

Every line of the log is a one-byte marker followed by a JSON document. Only
lines marked E are live; queries scan the whole log on every call.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error [%s]: invalid format %q\n", ErrCodeInvalidFlag, opts.Format)
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	// Add subcommands
	cmd.AddCommand(NewFindCommand(opts))
	cmd.AddCommand(NewCountCommand(opts))
	cmd.AddCommand(NewShellCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewExportsCommand(opts))
	cmd.AddCommand(NewSQLCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
