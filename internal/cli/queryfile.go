package cli

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/doclog/internal/filter"
)

// QueryFile is a query stored as YAML:
//
//	filter:
//	  age: { $lt: 30 }
//	sort: { age: 1, name: -1 }   # or "age:1,name:-1"
//	project: [name, age]         # or { name: 1, age: 1 } or "name,age"
type QueryFile struct {
	Filter  map[string]any `yaml:"filter"`
	Sort    yaml.Node      `yaml:"sort"`
	Project yaml.Node      `yaml:"project"`
}

// LoadQueryFile reads and parses a query file. Unknown keys are rejected.
func LoadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read query file: %w", err)
	}

	var qf QueryFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&qf); err != nil {
		return nil, fmt.Errorf("failed to parse query file: %w", err)
	}
	return &qf, nil
}

// Query parses the filter. A file without a filter matches every record.
func (qf *QueryFile) Query() (filter.Filter, error) {
	if qf.Filter == nil {
		return filter.Parse(map[string]any{})
	}
	return filter.Parse(qf.Filter)
}

// SortSpec parses the sort, which may be an ordered mapping or a string.
func (qf *QueryFile) SortSpec() (filter.SortSpec, error) {
	switch qf.Sort.Kind {
	case 0:
		return nil, nil
	case yaml.ScalarNode:
		return filter.ParseSort(qf.Sort.Value)
	}
	entries, err := filter.EntriesFromYAML(&qf.Sort)
	if err != nil {
		return nil, err
	}
	return filter.SortFromEntries(entries)
}

// Projection parses the projection, which may be a list, an ordered
// mapping of flags or a string. The second result is false when the file
// has no projection.
func (qf *QueryFile) Projection() (filter.Projection, bool, error) {
	switch qf.Project.Kind {
	case 0:
		return nil, false, nil
	case yaml.ScalarNode:
		p, err := filter.ParseProjection(qf.Project.Value)
		return p, true, err
	case yaml.SequenceNode:
		var fields []string
		if err := qf.Project.Decode(&fields); err != nil {
			return nil, true, fmt.Errorf("project: line %d: %w", qf.Project.Line, err)
		}
		return filter.Projection(fields), true, nil
	}
	entries, err := filter.EntriesFromYAML(&qf.Project)
	if err != nil {
		return nil, true, err
	}
	return filter.ProjectionFromEntries(entries), true, nil
}
