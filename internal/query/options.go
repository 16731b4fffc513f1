package query

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/roach88/doclog/internal/filter"
)

// OperandMode decides when an operator in a conditional filter applies.
type OperandMode int

const (
	// OperandPresent applies every operator that is present in the filter.
	OperandPresent OperandMode = iota

	// OperandTruthy skips operators whose operand is falsy: 0, "", false
	// and null. An $in list is never skipped.
	OperandTruthy
)

// String returns the configuration name of the mode.
func (m OperandMode) String() string {
	switch m {
	case OperandPresent:
		return "present"
	case OperandTruthy:
		return "truthy"
	default:
		return fmt.Sprintf("OperandMode(%d)", int(m))
	}
}

// ParseOperandMode parses "present" or "truthy". The empty string is
// OperandPresent.
func ParseOperandMode(s string) (OperandMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "present":
		return OperandPresent, nil
	case "truthy":
		return OperandTruthy, nil
	default:
		return 0, fmt.Errorf("unknown operand mode %q (want present or truthy)", s)
	}
}

// Recorder receives query outcomes. *metrics.Collectors implements it.
type Recorder interface {
	QueryCompleted(shape string, lines, visible, matched int, elapsed time.Duration)
	QueryFailed(shape, code string)
}

type nopRecorder struct{}

func (nopRecorder) QueryCompleted(string, int, int, int, time.Duration) {}
func (nopRecorder) QueryFailed(string, string)                          {}

type engineOptions struct {
	textFields []string
	mode       OperandMode
	logger     *slog.Logger
	recorder   Recorder
	ids        IDGenerator
}

func defaultOptions() engineOptions {
	return engineOptions{
		mode:     OperandPresent,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		recorder: nopRecorder{},
		ids:      UUIDv7Generator{},
	}
}

// Option configures an Engine at construction.
type Option func(*engineOptions)

// WithTextFields names the fields searched by text filters. Only string
// values of these fields are ever searched.
func WithTextFields(fields ...string) Option {
	return func(o *engineOptions) {
		o.textFields = append([]string(nil), fields...)
	}
}

// WithOperandMode sets when conditional operators apply.
//
// Default: OperandPresent.
func WithOperandMode(mode OperandMode) Option {
	return func(o *engineOptions) {
		o.mode = mode
	}
}

// WithLogger sets the logger. Query lifecycle events are logged at Debug,
// failures at Warn.
func WithLogger(logger *slog.Logger) Option {
	return func(o *engineOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRecorder reports query outcomes to r, typically Prometheus collectors.
func WithRecorder(r Recorder) Option {
	return func(o *engineOptions) {
		if r != nil {
			o.recorder = r
		}
	}
}

// WithIDGenerator sets the query id source. Tests use FixedGenerator.
func WithIDGenerator(g IDGenerator) Option {
	return func(o *engineOptions) {
		if g != nil {
			o.ids = g
		}
	}
}

type findOptions struct {
	sort       filter.SortSpec
	projection filter.Projection
	project    bool
}

// FindOption configures one Find call.
type FindOption func(*findOptions)

// WithSort orders the results. Keys later in spec only break ties between
// records equal on every earlier key. Records equal on all keys keep log
// order.
func WithSort(spec filter.SortSpec) FindOption {
	return func(o *findOptions) {
		o.sort = spec
	}
}

// WithProjection narrows each result to the listed fields, in list order.
// A nil projection leaves results unprojected; an empty one yields empty
// partial records.
func WithProjection(p filter.Projection) FindOption {
	return func(o *findOptions) {
		o.projection = p
		o.project = p != nil
	}
}
