package harness

import "github.com/roach88/doclog/internal/ir"

// Outcome is what one query step produced.
type Outcome struct {
	// Name is the query step name.
	Name string

	// QueryID is the id the engine assigned to the query.
	QueryID string

	// Count is the number of results. For a failed query it is zero.
	Count int

	// Records are the results in order, as ir.IRObject or ir.Partial
	// values. Nil for Count steps and failed queries.
	Records []ir.IRValue

	// ErrorCode is the query.ErrorCode of a failed query.
	ErrorCode string

	// ErrorLine is the log line of a decode failure.
	ErrorLine int
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every expect clause matched.
	Pass bool

	// Outcomes holds one entry per query step, in scenario order.
	Outcomes []Outcome

	// Errors contains expectation mismatch messages.
	// Empty if Pass is true.
	Errors []string
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Outcomes: []Outcome{},
		Errors:   []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Outcome returns the outcome of the named step.
func (r *Result) Outcome(name string) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Name == name {
			return o, true
		}
	}
	return Outcome{}, false
}
