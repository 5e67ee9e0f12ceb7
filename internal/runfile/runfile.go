// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package runfile saves completed searches to YAML files and loads them
// back, so a run can be re-exported or inspected without hitting the
// sources again.
package runfile

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/roodylabs/paperscout/internal/aggregate"
	"github.com/roodylabs/paperscout/pkg/types"
)

// RunFile is the on-disk representation of one search run.
type RunFile struct {
	Query   string              `yaml:"query"`
	Sources []types.Source      `yaml:"sources"`
	Config  RunConfig           `yaml:"config"`
	Records []types.PaperRecord `yaml:"records"`
	Summary RunSummary          `yaml:"summary"`
}

// RunConfig stores the settings that produced the run.
type RunConfig struct {
	MaxResultsPerSource int  `yaml:"max_results_per_source"`
	Concurrent          bool `yaml:"concurrent"`
}

// RunSummary stores per-source counts, failures, and timing.
type RunSummary struct {
	Total     int                  `yaml:"total"`
	Counts    map[types.Source]int `yaml:"counts"`
	Failures  []RunFailure         `yaml:"failures,omitempty"`
	Timestamp time.Time            `yaml:"timestamp"`
	Duration  string               `yaml:"duration"`
}

// RunFailure records a source that contributed no results and why.
type RunFailure struct {
	Source types.Source `yaml:"source"`
	Error  string       `yaml:"error"`
}

// Write saves the result to a YAML file at path.
func Write(path string, res *aggregate.Result, cfg types.SearchConfig) error {
	rf := RunFile{
		Query:   res.Query,
		Sources: res.Sources(),
		Config: RunConfig{
			MaxResultsPerSource: cfg.MaxResultsPerSource,
			Concurrent:          cfg.Concurrent,
		},
		Records: res.Records,
		Summary: RunSummary{
			Total:     len(res.Records),
			Counts:    res.Counts,
			Timestamp: res.Started,
			Duration:  res.Duration.Round(time.Millisecond).String(),
		},
	}
	for _, f := range res.Failures {
		rf.Summary.Failures = append(rf.Summary.Failures, RunFailure{Source: f.Source, Error: f.Message})
	}

	data, err := yaml.Marshal(&rf)
	if err != nil {
		return fmt.Errorf("marshaling run file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Read loads a previously saved run file from disk.
func Read(path string) (*RunFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run file: %w", err)
	}
	var rf RunFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing run file: %w", err)
	}
	return &rf, nil
}

// ToResult converts a loaded run file back into an aggregate result so the
// export formats apply unchanged.
func (rf *RunFile) ToResult() *aggregate.Result {
	res := &aggregate.Result{
		Query:   rf.Query,
		Records: rf.Records,
		Counts:  rf.Summary.Counts,
		Started: rf.Summary.Timestamp,
	}
	if res.Counts == nil {
		res.Counts = make(map[types.Source]int)
		for _, rec := range rf.Records {
			res.Counts[rec.Source]++
		}
	}
	if d, err := time.ParseDuration(rf.Summary.Duration); err == nil {
		res.Duration = d
	}
	for _, f := range rf.Summary.Failures {
		res.Failures = append(res.Failures, aggregate.SourceFailure{
			Source:  f.Source,
			Err:     fmt.Errorf("%s", f.Error),
			Message: f.Error,
		})
	}
	return res
}
