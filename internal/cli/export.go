package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/doclog/internal/store"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	QueryOptions
	Database string
	Table    string
}

// ExportResult is the JSON payload of the export command.
type ExportResult struct {
	Table   string `json:"table"`
	Rows    int    `json:"rows"`
	QueryID string `json:"query_id"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{QueryOptions: QueryOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write query results into a SQLite table",
		Long: `Run a query and materialize its results into a SQLite table.

The table is replaced atomically: it holds one row per result, in result
order, as (seq INTEGER, doc TEXT) with doc in canonical JSON. The query id,
log path and filter are recorded in the exports table.

Example:
  doclog export --log people.log --db out.db --table young \
    --filter '{"age":{"$lt":30}}' --sort age:1`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}

	opts.addLogFlags(cmd)
	opts.addFilterFlags(cmd)
	opts.addShapingFlags(cmd)
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Table, "table", "", "destination table name (required)")
	_ = cmd.MarkFlagRequired("db")
	_ = cmd.MarkFlagRequired("table")

	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command) error {
	s, err := opts.openSession(cmd)
	if err != nil {
		return err
	}

	// Reject the name before scanning the log
	if err := store.ValidateTableName(opts.Table); err != nil {
		return commandError(s.formatter, ExitCommandError, ErrCodeInvalidFlag, err.Error(), nil)
	}

	q, err := opts.parseQuery(cmd)
	if err != nil {
		return parseError(s.formatter, err)
	}

	res, err := s.engine.Find(cmd.Context(), q.filter, q.findOptions()...)
	if err != nil {
		return queryError(s.formatter, err)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return commandError(s.formatter, ExitCommandError, ErrCodeWriteFailed, err.Error(), nil)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			s.logger.Error("error closing database", "error", closeErr)
		}
	}()

	err = st.WriteExport(cmd.Context(), store.Export{
		Table:   opts.Table,
		QueryID: res.QueryID,
		Source:  s.logPath,
		Filter:  q.filterText,
		Rows:    resultRows(res),
	})
	if err != nil {
		return commandError(s.formatter, ExitFailure, ErrCodeWriteFailed, err.Error(), nil)
	}
	s.logger.Info("export written", slog.String("table", opts.Table), slog.Int("rows", res.Len()), slog.String("query_id", res.QueryID))

	if s.formatter.Format == "json" {
		return s.formatter.SuccessWithTrace(ExportResult{Table: opts.Table, Rows: res.Len(), QueryID: res.QueryID}, res.QueryID)
	}
	return s.formatter.Success(fmt.Sprintf("Exported %d record(s) to %s", res.Len(), opts.Table))
}

// ExportsOptions holds flags for the exports command.
type ExportsOptions struct {
	*RootOptions
	Database string
}

// NewExportsCommand creates the exports command, which lists the export
// tables recorded in a database.
func NewExportsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "exports",
		Short: "List export tables and their provenance",
		Long: `List every table written by export, with the query id, log and filter
that produced it.

Example:
  doclog exports --db out.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExports(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

// ExportInfo is one entry of the exports listing.
type ExportInfo struct {
	Table    string `json:"table"`
	QueryID  string `json:"query_id"`
	Source   string `json:"source"`
	Filter   string `json:"filter"`
	RowCount int    `json:"row_count"`
}

func runExports(opts *ExportsOptions, cmd *cobra.Command) error {
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

	infos, err := st.ListExports(cmd.Context())
	if err != nil {
		return commandError(formatter, ExitFailure, ErrCodeGeneric, err.Error(), nil)
	}

	list := make([]ExportInfo, len(infos))
	for i, info := range infos {
		list[i] = ExportInfo(info)
	}

	if formatter.Format == "json" {
		return formatter.Success(list)
	}

	w := cmd.OutOrStdout()
	if len(list) == 0 {
		fmt.Fprintln(w, "No exports.")
		return nil
	}
	for _, info := range list {
		fmt.Fprintf(w, "%s\t%d row(s)\tquery %s\tfrom %s\tfilter %s\n",
			info.Table, info.RowCount, info.QueryID, info.Source, info.Filter)
	}
	return nil
}
