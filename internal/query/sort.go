package query

import (
	"fmt"
	"slices"

	"github.com/roach88/doclog/internal/filter"
	"github.com/roach88/doclog/internal/ir"
)

type sortKey[T any] struct {
	get func(T) ir.IRValue
	dir int
}

func (e *Engine[T]) compileSort(spec filter.SortSpec) ([]sortKey[T], error) {
	keys := make([]sortKey[T], 0, len(spec))
	for i, k := range spec {
		path := fmt.Sprintf("sort[%d]", i)
		if k.Dir != filter.Ascending && k.Dir != filter.Descending {
			return nil, &filter.Error{Path: path, Message: fmt.Sprintf("direction must be 1 or -1, got %d", k.Dir)}
		}
		field, ok := e.schema.Lookup(k.Field)
		if !ok {
			return nil, &filter.Error{Path: path, Message: fmt.Sprintf("unknown field %q", k.Field)}
		}
		keys = append(keys, sortKey[T]{get: field.Get, dir: int(k.Dir)})
	}
	return keys, nil
}

// sortRecords stable-sorts recs in place. Keys are tried in order; the
// first key on which two records differ decides, scaled by its direction.
// Values of different kinds order by kind, and an absent field sorts before
// any present value. Key values are extracted once per record.
func sortRecords[T any](recs []T, keys []sortKey[T]) {
	if len(keys) == 0 || len(recs) < 2 {
		return
	}

	type row struct {
		rec  T
		vals []ir.IRValue
	}
	rows := make([]row, len(recs))
	for i, rec := range recs {
		vals := make([]ir.IRValue, len(keys))
		for j, k := range keys {
			vals[j] = k.get(rec)
		}
		rows[i] = row{rec: rec, vals: vals}
	}

	slices.SortStableFunc(rows, func(a, b row) int {
		for j, k := range keys {
			if c := ir.Compare(a.vals[j], b.vals[j]); c != 0 {
				return c * k.dir
			}
		}
		return 0
	})

	for i := range rows {
		recs[i] = rows[i].rec
	}
}
