package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/doclog/internal/filter"
	"github.com/roach88/doclog/internal/ir"
	"github.com/roach88/doclog/internal/logfile"
)

// DecodeFunc turns one log payload into a record.
type DecodeFunc[T any] func([]byte) (T, error)

// JSONDecoder decodes payloads with encoding/json into T.
func JSONDecoder[T any]() DecodeFunc[T] {
	return func(b []byte) (T, error) {
		var rec T
		err := json.Unmarshal(b, &rec)
		return rec, err
	}
}

// DecodeDocument decodes a payload into a schemaless document. The payload
// must be a JSON object.
func DecodeDocument(b []byte) (ir.IRObject, error) {
	var doc ir.IRObject
	if err := doc.UnmarshalJSON(b); err != nil {
		return nil, err
	}
	return doc, nil
}

// Engine runs queries over one document log.
//
// Thread-safety: an Engine is immutable after construction and safe for
// concurrent use. Each Find or Count reads and scans its own snapshot.
type Engine[T any] struct {
	src         logfile.Source
	schema      *Schema[T]
	decode      DecodeFunc[T]
	textGetters []func(T) ir.IRValue
	opts        engineOptions
	logger      *slog.Logger
}

// New creates an Engine for records of type T. Text fields given with
// WithTextFields must be declared in schema.
func New[T any](src logfile.Source, schema *Schema[T], decode DecodeFunc[T], opts ...Option) (*Engine[T], error) {
	switch {
	case src == nil:
		return nil, fmt.Errorf("query: nil log source")
	case schema == nil:
		return nil, fmt.Errorf("query: nil schema")
	case decode == nil:
		return nil, fmt.Errorf("query: nil decoder")
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	e := &Engine[T]{
		src:    src,
		schema: schema,
		decode: decode,
		opts:   o,
		logger: o.logger.With("component", "query", "log", src.Name()),
	}
	for _, name := range o.textFields {
		get, err := schema.accessor(name)
		if err != nil {
			return nil, fmt.Errorf("query: text field: %w", err)
		}
		e.textGetters = append(e.textGetters, get)
	}
	return e, nil
}

// NewDocumentEngine creates an Engine over schemaless JSON documents.
func NewDocumentEngine(src logfile.Source, opts ...Option) (*Engine[ir.IRObject], error) {
	return New(src, DocumentSchema(), DecodeDocument, opts...)
}

// TextFields returns the configured full-text fields.
func (e *Engine[T]) TextFields() []string {
	return append([]string(nil), e.opts.textFields...)
}

// OperandMode returns the configured operand mode.
func (e *Engine[T]) OperandMode() OperandMode {
	return e.opts.mode
}

// Result is the outcome of a Find.
type Result[T any] struct {
	// QueryID identifies the query in logs.
	QueryID string

	// Records are the matching records, sorted if a sort was requested,
	// otherwise in log order.
	Records []T

	// Partials holds the projected records, parallel to Records. It is
	// nil unless a projection was requested.
	Partials []ir.Partial
}

// Projected reports whether the result carries partial records.
func (r *Result[T]) Projected() bool {
	return r.Partials != nil
}

// Len returns the number of results.
func (r *Result[T]) Len() int {
	return len(r.Records)
}

// plan is a query compiled before the read.
type plan[T any] struct {
	match   Matcher[T]
	sort    []sortKey[T]
	project Projector[T]
}

func (e *Engine[T]) compile(f filter.Filter, fo findOptions) (*plan[T], error) {
	match, err := e.Matcher(f)
	if err != nil {
		return nil, err
	}
	p := &plan[T]{match: match}
	if len(fo.sort) > 0 {
		if p.sort, err = e.compileSort(fo.sort); err != nil {
			return nil, err
		}
	}
	if fo.project {
		if p.project, err = e.Projector(fo.projection); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Find returns the records matching f.
//
// The filter, sort and projection are checked before the log is read; a
// problem with any of them fails with ErrCodeInvalidFilter. The log is then
// read once and decoded in full, so a malformed visible line fails the
// query with ErrCodeDecodeFailure and no partial result.
//
// ctx is consulted before the read only; once records are decoded the query
// runs to completion.
func (e *Engine[T]) Find(ctx context.Context, f filter.Filter, opts ...FindOption) (*Result[T], error) {
	var fo findOptions
	for _, opt := range opts {
		opt(&fo)
	}
	return e.run(ctx, f, fo)
}

// Count returns the number of records matching f.
func (e *Engine[T]) Count(ctx context.Context, f filter.Filter) (int, error) {
	res, err := e.run(ctx, f, findOptions{})
	if err != nil {
		return 0, err
	}
	return res.Len(), nil
}

func (e *Engine[T]) run(ctx context.Context, f filter.Filter, fo findOptions) (*Result[T], error) {
	start := time.Now()
	qid := e.opts.ids.Generate()
	shape := filter.Shape(f)
	logger := e.logger.With("query_id", qid, "shape", shape)

	p, err := e.compile(f, fo)
	if err != nil {
		return nil, e.fail(logger, shape, &Error{
			Code:    ErrCodeInvalidFilter,
			Message: "query rejected",
			QueryID: qid,
			Err:     err,
		})
	}

	logger.Debug("query started",
		"sort", fo.sort.String(),
		"projected", fo.project,
		"operand_mode", e.opts.mode.String())

	records, stats, err := e.scan(ctx, qid, p.match)
	if err != nil {
		return nil, e.fail(logger, shape, err)
	}

	sortRecords(records, p.sort)

	res := &Result[T]{QueryID: qid, Records: records}
	if p.project != nil {
		res.Partials = make([]ir.Partial, len(records))
		for i, rec := range records {
			res.Partials[i] = p.project(rec)
		}
	}

	elapsed := time.Since(start)
	logger.Debug("query finished",
		"lines", stats.Lines,
		"visible", stats.Visible,
		"matched", len(records),
		"elapsed", elapsed)
	e.opts.recorder.QueryCompleted(shape, stats.Lines, stats.Visible, len(records), elapsed)

	return res, nil
}

// scan reads the log, decodes every visible line and keeps the matches in
// log order.
func (e *Engine[T]) scan(ctx context.Context, qid string, match Matcher[T]) ([]T, logfile.Stats, error) {
	if err := ctx.Err(); err != nil {
		return nil, logfile.Stats{}, &Error{Code: ErrCodeIOFailure, Message: "query canceled before read", QueryID: qid, Err: err}
	}

	content, err := e.src.ReadAll(ctx)
	if err != nil {
		return nil, logfile.Stats{}, &Error{
			Code:    ErrCodeIOFailure,
			Message: fmt.Sprintf("cannot read log %s", e.src.Name()),
			QueryID: qid,
			Err:     err,
		}
	}

	records, stats, err := logfile.Decode(content, e.decode)
	if err != nil {
		qe := &Error{Code: ErrCodeDecodeFailure, Message: "malformed record payload", QueryID: qid, Err: err}
		var de *logfile.DecodeError
		if errors.As(err, &de) {
			qe.Line = de.Line
			qe.Err = de.Err
		}
		return nil, stats, qe
	}

	matched := make([]T, 0, len(records))
	for _, rec := range records {
		if match(rec) {
			matched = append(matched, rec)
		}
	}
	return matched, stats, nil
}

func (e *Engine[T]) fail(logger *slog.Logger, shape string, err error) error {
	code := CodeOf(err)
	logger.Warn("query failed", "code", string(code), "error", err)
	e.opts.recorder.QueryFailed(shape, string(code))
	return err
}
