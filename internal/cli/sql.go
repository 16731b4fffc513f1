package cli

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/doclog/internal/store"
)

// SQLOptions holds flags for the sql command.
type SQLOptions struct {
	*RootOptions
	Database string
}

// SQLResult is the JSON payload of the sql command.
type SQLResult struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// NewSQLCommand creates the sql command, which runs a query against
// exported tables.
func NewSQLCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SQLOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sql <query>",
		Short: "Run SQL against exported tables",
		Long: `Run one SQL statement against an export database and print the rows.

Export tables hold (seq, doc) with doc in canonical JSON, so SQLite's JSON
functions reach into records.

Example:
  doclog sql --db out.db \
    "SELECT json_extract(doc, '$.name') FROM young ORDER BY seq"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSQL(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runSQL(opts *SQLOptions, cmd *cobra.Command, query string) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return commandError(formatter, ExitCommandError, ErrCodeNotFound, err.Error(), nil)
	}
	defer st.Close()

	rows, err := st.Query(cmd.Context(), query)
	if err != nil {
		return commandError(formatter, ExitCommandError, ErrCodeInvalidQuery, err.Error(), nil)
	}
	defer rows.Close()

	res, err := scanRows(rows)
	if err != nil {
		return commandError(formatter, ExitFailure, ErrCodeReadFailed, err.Error(), nil)
	}

	if formatter.Format == "json" {
		return formatter.Success(res)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, strings.Join(res.Columns, "\t"))
	for _, row := range res.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			if v == nil {
				cells[i] = "NULL"
			} else {
				cells[i] = fmt.Sprint(v)
			}
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	return nil
}

// scanRows reads every row, turning text columns into strings.
func scanRows(rows *sql.Rows) (*SQLResult, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	res := &SQLResult{Columns: cols, Rows: [][]any{}}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		res.Rows = append(res.Rows, vals)
	}
	return res, rows.Err()
}
