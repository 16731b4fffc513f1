package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/doclog/internal/query"
)

// Scenario defines a query conformance scenario: a log, the engine settings
// to open it with, and a sequence of queries with their expected outcomes.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Log is the inline log content, one marker-prefixed record per line.
	Log string `yaml:"log,omitempty"`

	// LogFile is a path to a log file, relative to the scenario file.
	// Exactly one of Log and LogFile must be set.
	LogFile string `yaml:"log_file,omitempty"`

	// TextFields lists the fields searched by $text filters.
	TextFields []string `yaml:"text_fields,omitempty"`

	// OperandMode is "present" (default) or "truthy".
	OperandMode string `yaml:"operand_mode,omitempty"`

	// QueryID is a fixed query id for deterministic golden output.
	// If empty, defaults to "test-query-default".
	QueryID string `yaml:"query_id,omitempty"`

	// Queries run in order against the same log.
	Queries []QueryStep `yaml:"queries"`
}

// QueryStep is one query and its expectations.
type QueryStep struct {
	// Name identifies the step in results and error messages.
	Name string `yaml:"name"`

	// Filter is the filter mapping. An absent filter matches every record.
	Filter map[string]any `yaml:"filter,omitempty"`

	// Sort is an ordered field → direction mapping.
	Sort yaml.Node `yaml:"sort,omitempty"`

	// Project is an ordered field → flag mapping.
	Project yaml.Node `yaml:"project,omitempty"`

	// Count runs the step as a Count instead of a Find.
	Count bool `yaml:"count,omitempty"`

	// Expect specifies the expected outcome. If nil, the outcome is only
	// recorded for golden comparison.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a query.
type ExpectClause struct {
	// Records is the exact expected result list, in order. Nil means
	// records are not checked; an empty list expects no matches.
	Records []any `yaml:"records,omitempty"`

	// Count is the expected number of results.
	Count *int `yaml:"count,omitempty"`

	// Error is the expected error code, e.g. DECODE_FAILURE.
	Error string `yaml:"error,omitempty"`

	// Line is the expected decode failure line (used with Error).
	Line int `yaml:"line,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// A relative log_file is resolved against the scenario's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.LogFile != "" && !filepath.IsAbs(scenario.LogFile) {
		scenario.LogFile = filepath.Join(filepath.Dir(path), scenario.LogFile)
	}
	if scenario.LogFile != "" {
		if _, err := os.Stat(scenario.LogFile); err != nil {
			return nil, fmt.Errorf("invalid scenario: log file not found: %s", scenario.LogFile)
		}
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML without touching the filesystem.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict decoding catches typos like "querys:" vs "queries:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads every *.yaml scenario in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan scenarios: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenario files in %s", dir)
	}

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Log != "" && s.LogFile != "" {
		return fmt.Errorf("log and log_file are mutually exclusive")
	}

	if _, err := query.ParseOperandMode(s.OperandMode); err != nil {
		return fmt.Errorf("operand_mode: %w", err)
	}

	if len(s.Queries) == 0 {
		return fmt.Errorf("queries list is required and must be non-empty")
	}

	seen := make(map[string]bool, len(s.Queries))
	for i, q := range s.Queries {
		if q.Name == "" {
			return fmt.Errorf("queries[%d]: name is required", i)
		}
		if seen[q.Name] {
			return fmt.Errorf("queries[%d]: duplicate name %q", i, q.Name)
		}
		seen[q.Name] = true

		if q.Count && !q.Project.IsZero() {
			return fmt.Errorf("queries[%d]: count cannot be combined with project", i)
		}
		if q.Expect != nil {
			if err := validateExpect(i, q.Expect); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateExpect(index int, e *ExpectClause) error {
	if e.Error != "" {
		switch query.ErrorCode(e.Error) {
		case query.ErrCodeIOFailure, query.ErrCodeDecodeFailure, query.ErrCodeInvalidFilter:
		default:
			return fmt.Errorf("queries[%d].expect: unknown error code %q", index, e.Error)
		}
		if e.Records != nil || e.Count != nil {
			return fmt.Errorf("queries[%d].expect: error cannot be combined with records or count", index)
		}
	}
	if e.Line != 0 && e.Error == "" {
		return fmt.Errorf("queries[%d].expect: line requires error", index)
	}
	if e.Count != nil && *e.Count < 0 {
		return fmt.Errorf("queries[%d].expect: count must be non-negative", index)
	}
	return nil
}
