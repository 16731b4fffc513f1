package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/doclog/internal/filter"
	"github.com/roach88/doclog/internal/ir"
	"github.com/roach88/doclog/internal/logfile"
	"github.com/roach88/doclog/internal/query"
	"github.com/roach88/doclog/internal/testutil"
)

// Harness is the test execution engine.
// It runs every query of a scenario against one document engine with a
// deterministic query id.
type Harness struct {
	engine *query.Engine[ir.IRObject]
	logger *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Query failures are outcomes, not errors: a step that expects
// DECODE_FAILURE passes when the engine reports it. Run returns an error
// only when the scenario itself cannot be set up.
//
// Execution flow:
// 1. Open the scenario log (inline or file)
// 2. Build a document engine with the scenario's settings
// 3. Run each query step in order
// 4. Check each step's expect clause
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	mode, err := query.ParseOperandMode(scenario.OperandMode)
	if err != nil {
		return nil, err
	}

	var src logfile.Source
	if scenario.LogFile != "" {
		src = logfile.NewFileSource(scenario.LogFile)
	} else {
		src = logfile.BytesSource{Label: scenario.Name, Data: []byte(scenario.Log)}
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	eng, err := query.NewDocumentEngine(src,
		query.WithTextFields(scenario.TextFields...),
		query.WithOperandMode(mode),
		query.WithIDGenerator(testutil.NewFixedIDGenerator(scenario.QueryID)),
		query.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	h := &Harness{engine: eng, logger: logger}
	result := NewResult()
	for i := range scenario.Queries {
		step := &scenario.Queries[i]
		outcome := h.runStep(ctx, step)
		result.Outcomes = append(result.Outcomes, outcome)
		if step.Expect != nil {
			for _, msg := range checkExpect(step.Expect, outcome) {
				result.AddError(fmt.Sprintf("%s: %s", step.Name, msg))
			}
		}
	}
	return result, nil
}

func (h *Harness) runStep(ctx context.Context, step *QueryStep) Outcome {
	outcome := Outcome{Name: step.Name}
	h.logger.Debug("running query step", "step", step.Name, "count", step.Count)

	f, opts, err := stepQuery(step)
	if err != nil {
		// Rejected while parsing; the engine would reject it the same way.
		outcome.ErrorCode = string(query.ErrCodeInvalidFilter)
		return outcome
	}

	if step.Count {
		n, err := h.engine.Count(ctx, f)
		if err != nil {
			return failed(outcome, err)
		}
		outcome.Count = n
		return outcome
	}

	res, err := h.engine.Find(ctx, f, opts...)
	if err != nil {
		return failed(outcome, err)
	}
	outcome.QueryID = res.QueryID
	outcome.Count = res.Len()
	outcome.Records = make([]ir.IRValue, res.Len())
	for i := range res.Records {
		if res.Projected() {
			outcome.Records[i] = res.Partials[i]
		} else {
			outcome.Records[i] = res.Records[i]
		}
	}
	return outcome
}

// stepQuery converts the YAML form of a step into a filter and find options.
func stepQuery(step *QueryStep) (filter.Filter, []query.FindOption, error) {
	raw := step.Filter
	if raw == nil {
		raw = map[string]any{}
	}
	f, err := filter.Parse(raw)
	if err != nil {
		return nil, nil, err
	}

	var opts []query.FindOption
	if !step.Sort.IsZero() {
		entries, err := filter.EntriesFromYAML(&step.Sort)
		if err != nil {
			return nil, nil, err
		}
		spec, err := filter.SortFromEntries(entries)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, query.WithSort(spec))
	}
	if !step.Project.IsZero() {
		entries, err := filter.EntriesFromYAML(&step.Project)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, query.WithProjection(filter.ProjectionFromEntries(entries)))
	}
	return f, opts, nil
}

func failed(outcome Outcome, err error) Outcome {
	outcome.ErrorCode = string(query.CodeOf(err))
	var qe *query.Error
	if errors.As(err, &qe) {
		outcome.QueryID = qe.QueryID
		outcome.ErrorLine = qe.Line
	}
	return outcome
}
