// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source implements one fetch-and-normalize adapter per academic
// database. Each adapter builds a site-specific request (REST query for
// API-backed sources, an HTML page fetch for scrape-backed ones), parses
// the response, and maps every item to a normalized types.PaperRecord with
// fallback strings substituted for missing fields. Adapters share no state;
// error containment is the aggregator's job.
package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/roodylabs/paperscout/pkg/types"
)

// Adapter fetches and parses one source's response into normalized paper
// records. Implementations return at most maxResults records in the
// source's native ordering, and classify failures as SourceError so the
// aggregator can log the kind.
type Adapter interface {
	Name() types.Source
	Fetch(ctx context.Context, query string, maxResults int, cfg types.SearchConfig) ([]types.PaperRecord, error)
}

// MaxResultsCeiling is the per-source result cap accepted by every adapter.
const MaxResultsCeiling = 100

// clampMaxResults bounds maxResults to [1, MaxResultsCeiling].
func clampMaxResults(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxResultsCeiling {
		return MaxResultsCeiling
	}
	return n
}

// New returns the adapter for a single source.
func New(src types.Source, client *http.Client, log *zap.Logger) (Adapter, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if log == nil {
		log = zap.NewNop()
	}
	switch src {
	case types.SourceArxiv:
		return &Arxiv{Client: client, Log: log}, nil
	case types.SourceSemanticScholar:
		return &SemanticScholar{Client: client, Log: log}, nil
	case types.SourceGoogleScholar:
		return &GoogleScholar{Client: client, Log: log}, nil
	case types.SourceResearchGate:
		return &ResearchGate{Client: client, Log: log}, nil
	case types.SourceCORE:
		return &Core{Client: client, Log: log}, nil
	case types.SourceSpringerLink:
		return &Springer{Client: client, Log: log}, nil
	case types.SourceScienceDirect:
		return &ScienceDirect{Client: client, Log: log}, nil
	default:
		return nil, fmt.Errorf("no adapter for source %q", src)
	}
}

// ForSources returns adapters for the selected sources in selection order.
// The aggregator's output is source-major in this same order.
func ForSources(selected []types.Source, client *http.Client, log *zap.Logger) ([]Adapter, error) {
	adapters := make([]Adapter, 0, len(selected))
	for _, src := range selected {
		a, err := New(src, client, log)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, a)
	}
	return adapters, nil
}

// absoluteURL resolves href against base when href is relative. Invalid
// hrefs come back unchanged; the link field tolerates junk better than a
// dropped record does.
func absoluteURL(base, href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(ref).String()
}

// collapseSpace trims and collapses runs of whitespace, undoing the
// newline-indented text arXiv and the HTML sources return.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
