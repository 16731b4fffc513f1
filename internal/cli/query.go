package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/doclog/internal/config"
	"github.com/roach88/doclog/internal/filter"
	"github.com/roach88/doclog/internal/ir"
	"github.com/roach88/doclog/internal/logfile"
	"github.com/roach88/doclog/internal/metrics"
	"github.com/roach88/doclog/internal/query"
)

// QueryOptions holds the flags shared by commands that open a log.
type QueryOptions struct {
	*RootOptions
	LogPath    string
	ConfigPath string
	Filter     string
	QueryFile  string
	Sort       string
	Project    string
	TextFields []string
	Truthy     bool
}

// addLogFlags registers the flags that select and configure the log.
func (o *QueryOptions) addLogFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.LogPath, "log", "", "path to the document log (overrides log_path)")
	cmd.Flags().StringVar(&o.ConfigPath, "config", "", "path to a YAML config file")
	cmd.Flags().StringSliceVar(&o.TextFields, "text-fields", nil, "fields searched by $text (overrides text_fields)")
	cmd.Flags().BoolVar(&o.Truthy, "truthy-operands", false, "skip operators whose operand is falsy")
}

// addFilterFlags registers --filter and --query-file.
func (o *QueryOptions) addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Filter, "filter", "", `filter as JSON, e.g. '{"age":{"$lt":30}}'`)
	cmd.Flags().StringVar(&o.QueryFile, "query-file", "", "path to a YAML query file")
	cmd.MarkFlagsMutuallyExclusive("filter", "query-file")
}

// addShapingFlags registers --sort and --project.
func (o *QueryOptions) addShapingFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Sort, "sort", "", `sort keys, e.g. name:1,age:-1 or '{"name":1,"age":-1}'`)
	cmd.Flags().StringVar(&o.Project, "project", "", `fields to keep, e.g. name,age or '{"name":1,"age":1}'`)
}

// session is an opened log plus everything needed to report on it.
type session struct {
	engine    *query.Engine[ir.IRObject]
	registry  *prometheus.Registry
	logger    *slog.Logger
	formatter *OutputFormatter
	logPath   string
}

// openSession resolves configuration and builds the document engine.
// Precedence: flags over DOCLOG_* environment over the config file.
func (o *QueryOptions) openSession(cmd *cobra.Command) (*session, error) {
	formatter := &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Diagnostics go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}

	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, commandError(formatter, ExitCommandError, ErrCodeConfig, err.Error(), nil)
	}

	level, _ := config.ParseLevel(cfg.LogLevel)
	if o.Verbose {
		level = slog.LevelDebug
	}
	logger := newLogger(cmd.ErrOrStderr(), level)

	logPath := cfg.LogPath
	if o.LogPath != "" {
		logPath = o.LogPath
	}
	if logPath == "" {
		return nil, commandError(formatter, ExitCommandError, ErrCodeInvalidFlag, "no log given: pass --log or set log_path", nil)
	}

	if cmd.Flags().Changed("text-fields") {
		cfg.TextFields = o.TextFields
	}
	if o.Truthy {
		cfg.OperandMode = query.OperandTruthy.String()
	}

	registry := prometheus.NewRegistry()
	opts := append(cfg.EngineOptions(),
		query.WithLogger(logger),
		query.WithRecorder(metrics.New(registry)),
		query.WithIDGenerator(o.IDGenerator),
	)
	eng, err := query.NewDocumentEngine(logfile.NewFileSource(logPath), opts...)
	if err != nil {
		return nil, commandError(formatter, ExitCommandError, ErrCodeInvalidFlag, err.Error(), nil)
	}

	formatter.VerboseLog("log: %s (text fields %v, operands %s)", logPath, eng.TextFields(), eng.OperandMode())
	return &session{
		engine:    eng,
		registry:  registry,
		logger:    logger,
		formatter: formatter,
		logPath:   logPath,
	}, nil
}

// parsedQuery is a filter plus find options, with the filter text kept for
// provenance.
type parsedQuery struct {
	filter     filter.Filter
	filterText string
	sort       filter.SortSpec
	projection filter.Projection
	project    bool
}

func (q *parsedQuery) findOptions() []query.FindOption {
	var opts []query.FindOption
	if len(q.sort) > 0 {
		opts = append(opts, query.WithSort(q.sort))
	}
	if q.project {
		opts = append(opts, query.WithProjection(q.projection))
	}
	return opts
}

// parseQuery combines --query-file, --filter, --sort and --project. Flags
// override the query file's sort and projection.
func (o *QueryOptions) parseQuery(cmd *cobra.Command) (*parsedQuery, error) {
	q := &parsedQuery{filterText: "{}"}

	switch {
	case o.QueryFile != "":
		qf, err := LoadQueryFile(o.QueryFile)
		if err != nil {
			return nil, err
		}
		if q.filter, err = qf.Query(); err != nil {
			return nil, err
		}
		if qf.Filter != nil {
			text, err := ir.MarshalCanonical(qf.Filter)
			if err != nil {
				return nil, fmt.Errorf("filter: %w", err)
			}
			q.filterText = string(text)
		}
		if q.sort, err = qf.SortSpec(); err != nil {
			return nil, err
		}
		if q.projection, q.project, err = qf.Projection(); err != nil {
			return nil, err
		}
	case o.Filter != "":
		f, err := filter.ParseJSON([]byte(o.Filter))
		if err != nil {
			return nil, err
		}
		q.filter, q.filterText = f, o.Filter
	default:
		f, err := filter.Parse(map[string]any{})
		if err != nil {
			return nil, err
		}
		q.filter = f
	}

	if cmd.Flags().Changed("sort") {
		spec, err := parseSortArg(o.Sort)
		if err != nil {
			return nil, err
		}
		q.sort = spec
	}
	if cmd.Flags().Changed("project") {
		p, err := parseProjectFlag(o.Project)
		if err != nil {
			return nil, err
		}
		q.projection, q.project = p, true
	}
	return q, nil
}

// parseSortArg accepts "name:1,age:-1" or an ordered JSON mapping such as
// {"name":1,"age":-1}.
func parseSortArg(s string) (filter.SortSpec, error) {
	if !isJSONObject(s) {
		return filter.ParseSort(s)
	}
	entries, err := filter.EntriesFromJSON([]byte(s))
	if err != nil {
		return nil, err
	}
	return filter.SortFromEntries(entries)
}

// parseProjectArg accepts "name,age" or an ordered JSON mapping of flags
// such as {"name":1,"age":1}. An empty argument gives an empty projection.
func parseProjectArg(s string) (filter.Projection, error) {
	if !isJSONObject(s) {
		return filter.ParseProjection(s)
	}
	entries, err := filter.EntriesFromJSON([]byte(s))
	if err != nil {
		return nil, err
	}
	return filter.ProjectionFromEntries(entries), nil
}

// parseProjectFlag is parseProjectArg for --project, which must keep at
// least one field.
func parseProjectFlag(s string) (filter.Projection, error) {
	p, err := parseProjectArg(s)
	if err != nil {
		return nil, err
	}
	if len(p) == 0 {
		return nil, &filter.Error{Path: "projection", Message: "no fields selected; omit --project to return whole records"}
	}
	return p, nil
}

func isJSONObject(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), "{")
}

// newLogger returns a text slog logger writing to w at level.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// recordLines renders each result as one canonical JSON document.
func recordLines(res *query.Result[ir.IRObject]) ([][]byte, error) {
	rows := resultRows(res)
	lines := make([][]byte, len(rows))
	for i, row := range rows {
		b, err := ir.MarshalCanonical(row)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		lines[i] = b
	}
	return lines, nil
}

// resultRows returns the records as IR values, projected if requested.
func resultRows(res *query.Result[ir.IRObject]) []ir.IRValue {
	rows := make([]ir.IRValue, res.Len())
	for i := range res.Records {
		if res.Projected() {
			rows[i] = res.Partials[i]
		} else {
			rows[i] = res.Records[i]
		}
	}
	return rows
}

// parseError reports a query that could not be parsed from flags or a
// query file. Both are command errors.
func parseError(f *OutputFormatter, err error) error {
	var fe *filter.Error
	if errors.As(err, &fe) {
		return commandError(f, ExitCommandError, ErrCodeInvalidQuery, fe.Error(), nil)
	}
	return commandError(f, ExitCommandError, ErrCodeInvalidFlag, err.Error(), nil)
}
