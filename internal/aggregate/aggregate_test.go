// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aggregate

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/roodylabs/paperscout/internal/source"
	"github.com/roodylabs/paperscout/pkg/types"
)

// fakeAdapter returns canned records, an error, or blocks until release.
type fakeAdapter struct {
	name    types.Source
	records []types.PaperRecord
	err     error
	delay   time.Duration
	calls   atomic.Int32
}

func (f *fakeAdapter) Name() types.Source { return f.name }

func (f *fakeAdapter) Fetch(ctx context.Context, query string, maxResults int, cfg types.SearchConfig) ([]types.PaperRecord, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	if len(f.records) > maxResults {
		return f.records[:maxResults], nil
	}
	return f.records, nil
}

func papers(src types.Source, n int) []types.PaperRecord {
	out := make([]types.PaperRecord, n)
	for i := range out {
		out[i] = types.PaperRecord{
			Title:           fmt.Sprintf("%s paper %d", src, i),
			Authors:         "A. Author",
			Abstract:        "An abstract.",
			CitationsOrMeta: "Cited by 1",
			Link:            fmt.Sprintf("https://example.org/%d", i),
			Source:          src,
		}
	}
	return out
}

func testCfg() types.SearchConfig {
	cfg := types.DefaultSearchConfig()
	cfg.InterSourceDelay = 0
	cfg.PageDelay = 0
	cfg.MaxResultsPerSource = 10
	return cfg
}

func TestSearchMergesInAdapterOrder(t *testing.T) {
	adapters := []source.Adapter{
		&fakeAdapter{name: types.SourceCORE, records: papers(types.SourceCORE, 2)},
		&fakeAdapter{name: types.SourceArxiv, records: papers(types.SourceArxiv, 3)},
	}

	res, err := Search(context.Background(), "graph neural networks", adapters, testCfg(), zap.NewNop())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res.Records) != 5 {
		t.Fatalf("got %d records, want 5", len(res.Records))
	}
	wantOrder := []types.Source{
		types.SourceCORE, types.SourceCORE,
		types.SourceArxiv, types.SourceArxiv, types.SourceArxiv,
	}
	for i, rec := range res.Records {
		if rec.Source != wantOrder[i] {
			t.Errorf("records[%d].Source = %q, want %q", i, rec.Source, wantOrder[i])
		}
	}
	if res.Counts[types.SourceCORE] != 2 || res.Counts[types.SourceArxiv] != 3 {
		t.Errorf("counts = %v", res.Counts)
	}
	if len(res.Failures) != 0 {
		t.Errorf("unexpected failures: %v", res.Failures)
	}
}

func TestSearchContainsFailures(t *testing.T) {
	blocked := errors.New("ResearchGate: access denied after 3 identities")
	adapters := []source.Adapter{
		&fakeAdapter{name: types.SourceArxiv, records: papers(types.SourceArxiv, 2)},
		&fakeAdapter{name: types.SourceResearchGate, err: blocked},
		&fakeAdapter{name: types.SourceCORE, records: papers(types.SourceCORE, 1)},
	}

	res, err := Search(context.Background(), "federated learning", adapters, testCfg(), zap.NewNop())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res.Records) != 3 {
		t.Fatalf("got %d records, want 3 from the surviving sources", len(res.Records))
	}
	if len(res.Failures) != 1 {
		t.Fatalf("got %d failures, want 1", len(res.Failures))
	}
	f := res.Failures[0]
	if f.Source != types.SourceResearchGate {
		t.Errorf("failure source = %q", f.Source)
	}
	if !errors.Is(f.Err, blocked) {
		t.Errorf("failure err = %v", f.Err)
	}
	if f.Message == "" {
		t.Error("failure message not set")
	}
	if res.Counts[types.SourceResearchGate] != 0 {
		t.Errorf("failed source count = %d, want 0", res.Counts[types.SourceResearchGate])
	}
}

func TestSearchAllSourcesFailing(t *testing.T) {
	adapters := []source.Adapter{
		&fakeAdapter{name: types.SourceArxiv, err: errors.New("boom")},
		&fakeAdapter{name: types.SourceCORE, err: errors.New("bust")},
	}

	res, err := Search(context.Background(), "anything", adapters, testCfg(), zap.NewNop())
	if err != nil {
		t.Fatalf("Search should contain failures, got: %v", err)
	}
	if len(res.Records) != 0 {
		t.Errorf("got %d records, want 0", len(res.Records))
	}
	if len(res.Failures) != 2 {
		t.Errorf("got %d failures, want 2", len(res.Failures))
	}
}

func TestSearchConcurrentKeepsOrder(t *testing.T) {
	// The slowest adapter comes first; its block must still lead the output.
	adapters := []source.Adapter{
		&fakeAdapter{name: types.SourceSpringerLink, records: papers(types.SourceSpringerLink, 2), delay: 30 * time.Millisecond},
		&fakeAdapter{name: types.SourceArxiv, records: papers(types.SourceArxiv, 2)},
	}
	cfg := testCfg()
	cfg.Concurrent = true

	res, err := Search(context.Background(), "quantum error correction", adapters, cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	wantOrder := []types.Source{
		types.SourceSpringerLink, types.SourceSpringerLink,
		types.SourceArxiv, types.SourceArxiv,
	}
	if len(res.Records) != len(wantOrder) {
		t.Fatalf("got %d records, want %d", len(res.Records), len(wantOrder))
	}
	for i, rec := range res.Records {
		if rec.Source != wantOrder[i] {
			t.Errorf("records[%d].Source = %q, want %q", i, rec.Source, wantOrder[i])
		}
	}
}

func TestSearchRespectsMaxResults(t *testing.T) {
	adapters := []source.Adapter{
		&fakeAdapter{name: types.SourceArxiv, records: papers(types.SourceArxiv, 30)},
	}
	cfg := testCfg()
	cfg.MaxResultsPerSource = 5

	res, err := Search(context.Background(), "transformers", adapters, cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res.Records) != 5 {
		t.Errorf("got %d records, want 5", len(res.Records))
	}
}

func TestSearchRejectsEmptyInput(t *testing.T) {
	adapters := []source.Adapter{
		&fakeAdapter{name: types.SourceArxiv},
	}
	if _, err := Search(context.Background(), "", adapters, testCfg(), zap.NewNop()); err == nil {
		t.Error("empty query should fail")
	}
	if _, err := Search(context.Background(), "q", nil, testCfg(), zap.NewNop()); err == nil {
		t.Error("no adapters should fail")
	}
}

func TestResultSources(t *testing.T) {
	adapters := []source.Adapter{
		&fakeAdapter{name: types.SourceCORE, records: papers(types.SourceCORE, 1)},
		&fakeAdapter{name: types.SourceArxiv, err: errors.New("down")},
	}
	res, err := Search(context.Background(), "robotics", adapters, testCfg(), zap.NewNop())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	srcs := res.Sources()
	if len(srcs) != 2 {
		t.Fatalf("Sources() = %v, want both queried sources", srcs)
	}
	if srcs[0] != types.SourceCORE {
		t.Errorf("srcs[0] = %q, want CORE first", srcs[0])
	}
}
