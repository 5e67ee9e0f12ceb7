// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package aggregate fans a query out to source adapters and merges their
// results. Adapter failures are contained: a failing source contributes
// zero records and a recorded error, never an aborted run.
package aggregate

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/roodylabs/paperscout/internal/httpx"
	"github.com/roodylabs/paperscout/internal/source"
	"github.com/roodylabs/paperscout/pkg/types"
)

// SourceFailure records one adapter's error alongside the source it came
// from, so callers can report failures without losing the successes.
type SourceFailure struct {
	Source types.Source `json:"source" yaml:"source"`
	Err    error        `json:"-" yaml:"-"`
	// Message carries the error text for serialized runs.
	Message string `json:"error" yaml:"error"`
}

// Result is one completed multi-source search.
type Result struct {
	Query    string              `json:"query" yaml:"query"`
	Records  []types.PaperRecord `json:"records" yaml:"records"`
	Failures []SourceFailure     `json:"failures,omitempty" yaml:"failures,omitempty"`
	// Counts maps each queried source to the number of records it returned.
	Counts   map[types.Source]int `json:"counts" yaml:"counts"`
	Started  time.Time            `json:"started" yaml:"started"`
	Duration time.Duration        `json:"duration" yaml:"duration"`
}

// Sources returns the queried sources in the order they were searched.
func (r *Result) Sources() []types.Source {
	seen := make(map[types.Source]bool, len(r.Counts))
	var out []types.Source
	for _, rec := range r.Records {
		if !seen[rec.Source] {
			seen[rec.Source] = true
			out = append(out, rec.Source)
		}
	}
	for src := range r.Counts {
		if !seen[src] {
			seen[src] = true
			out = append(out, src)
		}
	}
	return out
}

type fetchOutcome struct {
	records []types.PaperRecord
	err     error
}

// Search runs the query against every adapter and returns the merged
// result. Records are grouped by source in the adapters' order, each
// source's block in its native ranking. With cfg.Concurrent the adapters
// run in parallel and the grouping is reassembled afterwards; otherwise
// they run one at a time with a jittered courtesy delay in between.
func Search(ctx context.Context, query string, adapters []source.Adapter, cfg types.SearchConfig, log *zap.Logger) (*Result, error) {
	if query == "" {
		return nil, fmt.Errorf("empty query")
	}
	if len(adapters) == 0 {
		return nil, fmt.Errorf("no sources selected")
	}
	if log == nil {
		log = zap.NewNop()
	}

	started := time.Now()
	outcomes := make([]fetchOutcome, len(adapters))

	if cfg.Concurrent {
		searchConcurrent(ctx, query, adapters, cfg, outcomes)
	} else {
		searchSequential(ctx, query, adapters, cfg, outcomes)
	}

	res := &Result{
		Query:   query,
		Records: make([]types.PaperRecord, 0),
		Counts:  make(map[types.Source]int, len(adapters)),
		Started: started,
	}
	for i, a := range adapters {
		out := outcomes[i]
		if out.err != nil {
			log.Warn("source failed",
				zap.String("source", string(a.Name())),
				zap.Error(out.err))
			res.Failures = append(res.Failures, SourceFailure{
				Source:  a.Name(),
				Err:     out.err,
				Message: out.err.Error(),
			})
		}
		log.Debug("source done",
			zap.String("source", string(a.Name())),
			zap.Int("records", len(out.records)))
		res.Counts[a.Name()] = len(out.records)
		res.Records = append(res.Records, out.records...)
	}
	res.Duration = time.Since(started)
	return res, nil
}

func searchSequential(ctx context.Context, query string, adapters []source.Adapter, cfg types.SearchConfig, outcomes []fetchOutcome) {
	for i, a := range adapters {
		if i > 0 && cfg.InterSourceDelay > 0 {
			if err := httpx.SleepJitter(ctx, cfg.InterSourceDelay/2, cfg.InterSourceDelay); err != nil {
				outcomes[i].err = err
				continue
			}
		}
		records, err := a.Fetch(ctx, query, cfg.MaxResultsPerSource, cfg)
		outcomes[i] = fetchOutcome{records: records, err: err}
	}
}

func searchConcurrent(ctx context.Context, query string, adapters []source.Adapter, cfg types.SearchConfig, outcomes []fetchOutcome) {
	done := make(chan struct{})
	for i, a := range adapters {
		go func(i int, a source.Adapter) {
			records, err := a.Fetch(ctx, query, cfg.MaxResultsPerSource, cfg)
			outcomes[i] = fetchOutcome{records: records, err: err}
			done <- struct{}{}
		}(i, a)
	}
	for range adapters {
		<-done
	}
}
