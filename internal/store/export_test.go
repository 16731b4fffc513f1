package store

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/doclog/internal/ir"
)

func people() []ir.IRValue {
	return []ir.IRValue{
		ir.IRObject{"name": ir.IRString("Cid"), "age": ir.IRInt(25)},
		ir.Partial{ir.O("name", ir.IRString("Ann")), ir.O("age", ir.IRInt(30))},
	}
}

func TestWriteExport_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.WriteExport(ctx, Export{
		Table:   "people",
		QueryID: "q-1",
		Source:  "people.log",
		Filter:  `{"age":{"$lt":40}}`,
		Rows:    people(),
	})
	require.NoError(t, err)

	docs, err := s.ReadExport(ctx, "people")
	require.NoError(t, err)
	assert.Equal(t, []string{
		`{"age":25,"name":"Cid"}`,
		`{"name":"Ann","age":30}`,
	}, docs)

	infos, err := s.ListExports(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Info{{
		Table:    "people",
		QueryID:  "q-1",
		Source:   "people.log",
		Filter:   `{"age":{"$lt":40}}`,
		RowCount: 2,
	}}, infos)
}

func TestWriteExport_ReplacesTable(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteExport(ctx, Export{Table: "people", QueryID: "q-1", Rows: people()}))
	require.NoError(t, s.WriteExport(ctx, Export{Table: "people", QueryID: "q-2", Rows: people()[:1]}))

	docs, err := s.ReadExport(ctx, "people")
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	infos, err := s.ListExports(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "q-2", infos[0].QueryID)
	assert.Equal(t, 1, infos[0].RowCount)
}

func TestWriteExport_Empty(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteExport(ctx, Export{Table: "none", QueryID: "q-1"}))

	docs, err := s.ReadExport(ctx, "none")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestWriteExport_JSONQueryable(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.WriteExport(ctx, Export{Table: "people", QueryID: "q-1", Rows: people()}))

	rows, err := s.Query(ctx, "SELECT json_extract(doc, '$.name') FROM people WHERE json_extract(doc, '$.age') > 26 ORDER BY seq")
	require.NoError(t, err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"Ann"}, names)
}

func TestWriteExport_AtomicOnBadRow(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.WriteExport(ctx, Export{Table: "people", QueryID: "q-1", Rows: people()}))

	bad := append(people(), ir.IRFloat(nanValue()))
	err := s.WriteExport(ctx, Export{Table: "people", QueryID: "q-2", Rows: bad})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3")

	docs, err := s.ReadExport(ctx, "people")
	require.NoError(t, err)
	assert.Len(t, docs, 2, "previous export must survive")
}

func TestValidateTableName(t *testing.T) {
	valid := []string{"people", "_tmp", "T1", "results_2026"}
	for _, name := range valid {
		assert.NoError(t, ValidateTableName(name), name)
	}

	invalid := []string{"", "1abc", "drop table", "a-b", `a"b`, "exports", "EXPORTS", "sqlite_master"}
	for _, name := range invalid {
		assert.Error(t, ValidateTableName(name), name)
	}
}

func TestWriteExport_InvalidTable(t *testing.T) {
	s := openTestStore(t)

	err := s.WriteExport(context.Background(), Export{Table: "x; DROP TABLE exports"})
	assert.Error(t, err)

	_, err = s.ReadExport(context.Background(), "bad name")
	assert.Error(t, err)
}

func TestReadExport_MissingTable(t *testing.T) {
	s := openTestStore(t)

	_, err := s.ReadExport(context.Background(), "nothing")
	assert.Error(t, err)
}

func nanValue() float64 {
	return math.NaN()
}
