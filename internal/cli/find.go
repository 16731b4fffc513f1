package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewFindCommand creates the find command.
func NewFindCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "find",
		Short: "Print the records matching a filter",
		Long: `Scan the document log and print every live record matching a filter.

Text output prints one canonical JSON document per line. JSON output wraps
the records in a response carrying the query id as trace_id.

Exit codes:
  0 - Query succeeded (including no matches)
  1 - Log unreadable or a record payload is malformed
  2 - Command error (bad flags, malformed filter, bad config)

Examples:
  doclog find --log people.log --filter '{"age":{"$lt":30}}'
  doclog find --log people.log --sort age:1,name:-1 --project name
  doclog find --config doclog.yaml --query-file young.yaml --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(opts, cmd)
		},
	}

	opts.addLogFlags(cmd)
	opts.addFilterFlags(cmd)
	opts.addShapingFlags(cmd)

	return cmd
}

func runFind(opts *QueryOptions, cmd *cobra.Command) error {
	s, err := opts.openSession(cmd)
	if err != nil {
		return err
	}

	q, err := opts.parseQuery(cmd)
	if err != nil {
		return parseError(s.formatter, err)
	}

	res, err := s.engine.Find(cmd.Context(), q.filter, q.findOptions()...)
	if err != nil {
		return queryError(s.formatter, err)
	}

	lines, err := recordLines(res)
	if err != nil {
		return commandError(s.formatter, ExitFailure, ErrCodeGeneric, err.Error(), nil)
	}
	s.formatter.VerboseLog("query %s: %d record(s)", res.QueryID, len(lines))

	if s.formatter.Format == "json" {
		data := make([]json.RawMessage, len(lines))
		for i, line := range lines {
			data[i] = line
		}
		return s.formatter.SuccessWithTrace(data, res.QueryID)
	}

	w := cmd.OutOrStdout()
	for _, line := range lines {
		fmt.Fprintf(w, "%s\n", line)
	}
	return nil
}
