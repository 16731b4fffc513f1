package cli

import (
	"github.com/spf13/cobra"
)

// CountResult is the JSON payload of the count command.
type CountResult struct {
	Count int `json:"count"`
}

// NewCountCommand creates the count command.
func NewCountCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "count",
		Short: "Print the number of records matching a filter",
		Long: `Scan the document log and print how many live records match a filter.

Exit codes follow find.

Example:
  doclog count --log people.log --filter '{"$text":"gopher"}' --text-fields bio`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCount(opts, cmd)
		},
	}

	opts.addLogFlags(cmd)
	opts.addFilterFlags(cmd)

	return cmd
}

func runCount(opts *QueryOptions, cmd *cobra.Command) error {
	s, err := opts.openSession(cmd)
	if err != nil {
		return err
	}

	q, err := opts.parseQuery(cmd)
	if err != nil {
		return parseError(s.formatter, err)
	}

	n, err := s.engine.Count(cmd.Context(), q.filter)
	if err != nil {
		return queryError(s.formatter, err)
	}

	if s.formatter.Format == "json" {
		return s.formatter.Success(CountResult{Count: n})
	}
	return s.formatter.Success(n)
}
