// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/roodylabs/paperscout/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// Arxiv queries the arXiv Atom API.
type Arxiv struct {
	Client *http.Client
	Log    *zap.Logger
}

// Name returns the source identifier.
func (a *Arxiv) Name() types.Source { return types.SourceArxiv }

// Fetch queries the arXiv API and returns up to maxResults records in the
// API's relevance order.
func (a *Arxiv) Fetch(ctx context.Context, query string, maxResults int, cfg types.SearchConfig) ([]types.PaperRecord, error) {
	if strings.TrimSpace(query) == "" {
		return nil, configErr(a.Name(), fmt.Errorf("empty query"))
	}
	maxResults = clampMaxResults(maxResults)

	terms := strings.Join(strings.Fields(query), "+")
	url := fmt.Sprintf("%s?search_query=all:%s&start=0&max_results=%d", arxivAPIBase, terms, maxResults)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, networkErr(a.Name(), fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := a.Client.Do(req)
	if err != nil {
		return nil, networkErr(a.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpErr(a.Name(), resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, parseErr(a.Name(), fmt.Errorf("decoding Atom feed: %w", err))
	}

	records := make([]types.PaperRecord, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		if len(records) >= maxResults {
			break
		}

		var names []string
		for _, au := range entry.Authors {
			names = append(names, collapseSpace(au.Name))
		}

		// Prefer the PDF link; fall back to the abstract page (the
		// entry id doubles as its URL).
		link := entry.ID
		for _, l := range entry.Links {
			if l.Title == "pdf" && l.Href != "" {
				link = l.Href
				break
			}
		}

		published := "Date unknown"
		if len(entry.Published) >= 10 {
			published = entry.Published[:10]
		}

		records = append(records, types.PaperRecord{
			Title:           collapseSpace(entry.Title),
			Authors:         types.JoinAuthors(names),
			Abstract:        collapseSpace(entry.Summary),
			CitationsOrMeta: "Published: " + published,
			Link:            link,
			Source:          a.Name(),
		}.Normalized())
	}
	return records, nil
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
	Links     []arxivLink   `xml:"link"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivLink struct {
	Href  string `xml:"href,attr"`
	Rel   string `xml:"rel,attr"`
	Title string `xml:"title,attr"`
}
