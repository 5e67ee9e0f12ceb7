// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for paperscout: the
// normalized PaperRecord produced by every source adapter, the Source
// enumeration, and the configuration structs consumed by the CLI and server.
package types

import (
	"fmt"
	"strings"
)

// Source identifies one of the academic databases a record came from. The
// values match the display names used in exports and the web UI.
type Source string

const (
	SourceGoogleScholar   Source = "Google Scholar"
	SourceArxiv           Source = "arXiv"
	SourceResearchGate    Source = "ResearchGate"
	SourceSemanticScholar Source = "Semantic Scholar"
	SourceCORE            Source = "CORE"
	SourceSpringerLink    Source = "SpringerLink"
	SourceScienceDirect   Source = "ScienceDirect"
)

// AllSources lists every supported source in presentation order.
func AllSources() []Source {
	return []Source{
		SourceGoogleScholar,
		SourceArxiv,
		SourceResearchGate,
		SourceSemanticScholar,
		SourceCORE,
		SourceSpringerLink,
		SourceScienceDirect,
	}
}

// ParseSource resolves a user-supplied source name. Matching is
// case-insensitive and ignores spaces, hyphens, and underscores, so
// "semantic-scholar", "semantic_scholar", and "Semantic Scholar" are
// equivalent.
func ParseSource(s string) (Source, error) {
	key := canonicalSourceKey(s)
	for _, src := range AllSources() {
		if canonicalSourceKey(string(src)) == key {
			return src, nil
		}
	}
	return "", fmt.Errorf("unknown source %q (known: %s)", s, joinSources(AllSources()))
}

// ParseSources resolves a comma-separated list of source names, preserving
// the given order.
func ParseSources(list string) ([]Source, error) {
	var out []Source
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		src, err := ParseSource(part)
		if err != nil {
			return nil, err
		}
		out = append(out, src)
	}
	return out, nil
}

func canonicalSourceKey(s string) string {
	s = strings.ToLower(s)
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(s)
}

func joinSources(sources []Source) string {
	names := make([]string, len(sources))
	for i, s := range sources {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// Fallback strings substituted when a source omits a field. Every text
// field of a PaperRecord is always populated; adapters never leave one
// empty. Link is the exception and may legitimately be "".
const (
	NoTitle     = "No title available"
	NoAuthors   = "No author information"
	NoAbstract  = "No abstract available"
	NoCitations = "Citations not available"
)

// PaperRecord is the normalized representation of one search result,
// uniform across all sources. Records are immutable once produced: adapters
// create them during a fetch, the aggregator owns the combined list for the
// duration of one search, and a new search supersedes them.
type PaperRecord struct {
	// Title is the paper title, or NoTitle when the source omits one.
	Title string `json:"title" yaml:"title"`

	// Authors is a free-text author summary, comma-joined when the source
	// lists multiple names.
	Authors string `json:"authors" yaml:"authors"`

	// Abstract is the abstract or snippet text.
	Abstract string `json:"abstract" yaml:"abstract"`

	// CitationsOrMeta carries source-dependent metadata: a citation count
	// ("Cited by 42"), a publication date, or venue info. Serialized as
	// "citations" to keep exported files column-compatible.
	CitationsOrMeta string `json:"citations" yaml:"citations"`

	// Link is an absolute URL to the paper; empty string permitted.
	Link string `json:"link" yaml:"link"`

	// Source identifies the database that returned this record.
	Source Source `json:"source" yaml:"source"`
}

// Normalized returns a copy with fallback strings substituted for any empty
// text field. Link is left as-is.
func (r PaperRecord) Normalized() PaperRecord {
	if strings.TrimSpace(r.Title) == "" {
		r.Title = NoTitle
	}
	if strings.TrimSpace(r.Authors) == "" {
		r.Authors = NoAuthors
	}
	if strings.TrimSpace(r.Abstract) == "" {
		r.Abstract = NoAbstract
	}
	if strings.TrimSpace(r.CitationsOrMeta) == "" {
		r.CitationsOrMeta = NoCitations
	}
	return r
}

// JoinAuthors renders an author list as the free-text summary stored in
// PaperRecord.Authors.
func JoinAuthors(names []string) string {
	var kept []string
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			kept = append(kept, n)
		}
	}
	return strings.Join(kept, ", ")
}
