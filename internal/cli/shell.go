package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/roach88/doclog/internal/filter"
	"github.com/roach88/doclog/internal/metrics"
	"github.com/roach88/doclog/internal/query"
)

const shellPrompt = "doclog> "

// LineReader reads shell input. *liner.State implements it.
type LineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
	Close() error
}

// ShellOptions holds flags for the shell command.
type ShellOptions struct {
	QueryOptions
	MetricsAddr string

	// NewReader overrides the input source (for testing).
	// If nil, the shell uses a liner prompt on the terminal.
	NewReader func() LineReader
}

// NewShellCommand creates the shell command.
func NewShellCommand(rootOpts *RootOptions) *cobra.Command {
	return newShellCommand(&ShellOptions{QueryOptions: QueryOptions{RootOptions: rootOpts}})
}

func newShellCommand(opts *ShellOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Query a log interactively",
		Long: `Open a prompt that runs one filter per line against the log.

Each line is a JSON filter; an empty object {} matches every record. The log
is re-read for every query, so records appended meanwhile are seen.

Meta-commands:
  .sort name:1,age:-1   sort subsequent results (.sort alone clears)
  .project name,age     project subsequent results (.project alone clears)

.sort and .project also take a JSON mapping such as {"name":1}.
  .count {filter}       print the match count only
  .reset                clear sort and projection
  .help                 show this help
  .quit                 leave the shell (also Ctrl-D)

Example:
  doclog shell --log people.log --metrics-addr localhost:9464`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(opts, cmd)
		},
	}

	opts.addLogFlags(cmd)
	opts.addShapingFlags(cmd)
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while the shell runs")

	return cmd
}

// shellState is the sort and projection applied to each query.
type shellState struct {
	sort       filter.SortSpec
	projection filter.Projection
	project    bool
}

func (st *shellState) findOptions() []query.FindOption {
	q := parsedQuery{sort: st.sort, projection: st.projection, project: st.project}
	return q.findOptions()
}

func runShell(opts *ShellOptions, cmd *cobra.Command) error {
	s, err := opts.openSession(cmd)
	if err != nil {
		return err
	}

	var st shellState
	if opts.Sort != "" {
		if st.sort, err = parseSortArg(opts.Sort); err != nil {
			return parseError(s.formatter, err)
		}
	}
	if cmd.Flags().Changed("project") {
		if st.projection, err = parseProjectFlag(opts.Project); err != nil {
			return parseError(s.formatter, err)
		}
		st.project = true
	}

	if opts.MetricsAddr != "" {
		srv := &http.Server{Addr: opts.MetricsAddr, Handler: metricsMux(s), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.logger.Error("metrics server failed", "addr", opts.MetricsAddr, "error", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
		s.logger.Info("serving metrics", "addr", opts.MetricsAddr)
	}

	newReader := opts.NewReader
	if newReader == nil {
		newReader = newLinerReader
	}
	reader := newReader()
	defer reader.Close()

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Querying %s. Type '.help' for commands.\n", s.logPath)

	for {
		line, err := reader.Prompt(shellPrompt)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				fmt.Fprintln(w)
				return nil
			}
			return commandError(s.formatter, ExitFailure, ErrCodeGeneric, fmt.Sprintf("reading input: %v", err), nil)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		reader.AppendHistory(line)

		if done := s.execLine(cmd.Context(), w, &st, line); done {
			return nil
		}
	}
}

// execLine runs one shell line and reports whether the shell should exit.
// Query errors are printed and the shell keeps going.
func (s *session) execLine(ctx context.Context, w io.Writer, st *shellState, line string) bool {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case ".quit", ".exit":
		return true
	case ".help":
		printShellHelp(w)
	case ".reset":
		*st = shellState{}
		fmt.Fprintln(w, "sort and projection cleared")
	case ".sort":
		spec, err := parseSortArg(arg)
		if err != nil {
			report(s.formatter, err)
			return false
		}
		st.sort = spec
		fmt.Fprintf(w, "sort: %s\n", orNone(spec.String()))
	case ".project":
		p, err := parseProjectArg(arg)
		if err != nil {
			report(s.formatter, err)
			return false
		}
		st.projection, st.project = p, len(p) > 0
		fmt.Fprintf(w, "project: %s\n", orNone(strings.Join(p, ",")))
	case ".count":
		f, err := filter.ParseJSON([]byte(orEmptyFilter(arg)))
		if err != nil {
			report(s.formatter, err)
			return false
		}
		n, err := s.engine.Count(ctx, f)
		if err != nil {
			report(s.formatter, err)
			return false
		}
		fmt.Fprintln(w, n)
	default:
		if strings.HasPrefix(name, ".") {
			_ = s.formatter.Error(ErrCodeInvalidFlag, fmt.Sprintf("unknown command: %s", name), nil)
			return false
		}
		s.find(ctx, w, st, line)
	}
	return false
}

func (s *session) find(ctx context.Context, w io.Writer, st *shellState, text string) {
	f, err := filter.ParseJSON([]byte(text))
	if err != nil {
		report(s.formatter, err)
		return
	}
	res, err := s.engine.Find(ctx, f, st.findOptions()...)
	if err != nil {
		report(s.formatter, err)
		return
	}
	lines, err := recordLines(res)
	if err != nil {
		report(s.formatter, err)
		return
	}
	for _, l := range lines {
		fmt.Fprintf(w, "%s\n", l)
	}
	fmt.Fprintf(w, "(%d record(s))\n", len(lines))
}

func printShellHelp(w io.Writer) {
	fmt.Fprintln(w, "Enter a JSON filter, e.g. {\"age\":{\"$lt\":30}}, or a command:")
	fmt.Fprintln(w, "  .sort name:1,age:-1   sort results (no argument clears)")
	fmt.Fprintln(w, "  .project name,age     project results (no argument clears)")
	fmt.Fprintln(w, "  .count {filter}       count matches")
	fmt.Fprintln(w, "  .reset                clear sort and projection")
	fmt.Fprintln(w, "  .quit                 leave the shell")
	fmt.Fprintln(w, "Sort and projection also accept JSON, e.g. .sort {\"age\":-1}")
}

func metricsMux(s *session) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(s.registry))
	return mux
}

func newLinerReader() LineReader {
	l := liner.NewLiner()
	l.SetCtrlCAborts(true)
	return l
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

func orEmptyFilter(s string) string {
	if s == "" {
		return "{}"
	}
	return s
}
