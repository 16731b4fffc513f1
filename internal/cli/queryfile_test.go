package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/doclog/internal/filter"
)

func TestLoadQueryFile_Shapes(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantSort    filter.SortSpec
		wantProject filter.Projection
		projected   bool
	}{
		{
			name:    "empty file",
			content: "{}\n",
		},
		{
			name:        "string forms",
			content:     "sort: \"age:-1,name\"\nproject: \"name,age\"\n",
			wantSort:    filter.SortSpec{{Field: "age", Dir: filter.Descending}, {Field: "name", Dir: filter.Ascending}},
			wantProject: filter.Projection{"name", "age"},
			projected:   true,
		},
		{
			name:        "mapping forms keep key order",
			content:     "sort: {name: 1, age: -1}\nproject: {age: 1, name: 1}\n",
			wantSort:    filter.SortSpec{{Field: "name", Dir: filter.Ascending}, {Field: "age", Dir: filter.Descending}},
			wantProject: filter.Projection{"age", "name"},
			projected:   true,
		},
		{
			name:        "list projection",
			content:     "project: [name]\n",
			wantProject: filter.Projection{"name"},
			projected:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qf, err := LoadQueryFile(writeFile(t, "q.yaml", tt.content))
			require.NoError(t, err)

			f, err := qf.Query()
			require.NoError(t, err)
			assert.NotNil(t, f)

			spec, err := qf.SortSpec()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSort, spec)

			p, projected, err := qf.Projection()
			require.NoError(t, err)
			assert.Equal(t, tt.projected, projected)
			assert.Equal(t, tt.wantProject, p)
		})
	}
}

func TestLoadQueryFile_Errors(t *testing.T) {
	_, err := LoadQueryFile(writeFile(t, "q.yaml", "filter: {}\nlimit: 3\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse query file")

	_, err = LoadQueryFile("/nonexistent/q.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read query file")
}

func TestQueryFile_InvalidParts(t *testing.T) {
	qf, err := LoadQueryFile(writeFile(t, "q.yaml", "filter: {age: {$ne: 1}}\nsort: {age: 0}\n"))
	require.NoError(t, err)

	_, err = qf.Query()
	var fe *filter.Error
	require.ErrorAs(t, err, &fe)

	_, err = qf.SortSpec()
	require.ErrorAs(t, err, &fe)
}
