// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/roodylabs/paperscout/internal/httpx"
	"github.com/roodylabs/paperscout/pkg/types"
)

// springerBase is the SpringerLink search page. Declared as a var so tests
// can substitute an httptest server.
var springerBase = "https://link.springer.com/search"

// springerAbstractNote is what the search page shows instead of an abstract.
const springerAbstractNote = "Abstract not available on search page. Click the link to view full details."

// Springer scrapes SpringerLink's search page.
type Springer struct {
	Client *http.Client
	Log    *zap.Logger
}

// Name returns the source identifier.
func (s *Springer) Name() types.Source { return types.SourceSpringerLink }

// Fetch scrapes one search page and returns up to maxResults records.
func (s *Springer) Fetch(ctx context.Context, query string, maxResults int, cfg types.SearchConfig) ([]types.PaperRecord, error) {
	if strings.TrimSpace(query) == "" {
		return nil, configErr(s.Name(), fmt.Errorf("empty query"))
	}
	maxResults = clampMaxResults(maxResults)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, springerBase+"?query="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, networkErr(s.Name(), fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("User-Agent", httpx.BrowserIdentities[0])

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, networkErr(s.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpErr(s.Name(), resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, parseErr(s.Name(), fmt.Errorf("parsing search page: %w", err))
	}

	var records []types.PaperRecord
	doc.Find("li.has-cover").EachWithBreak(func(_ int, entry *goquery.Selection) bool {
		if len(records) >= maxResults {
			return false
		}

		titleEl := entry.Find("h2 a").First()
		title := strings.TrimSpace(titleEl.Text())
		link := ""
		if href, ok := titleEl.Attr("href"); ok {
			link = absoluteURL("https://link.springer.com", href)
		}

		var names []string
		entry.Find("span.authors__name").Each(func(_ int, au *goquery.Selection) {
			names = append(names, strings.TrimSpace(au.Text()))
		})

		// Content type and date make up the meta column
		// (e.g. "Article | 2021").
		contentType := strings.TrimSpace(entry.Find("span.content-type").First().Text())
		if contentType == "" {
			contentType = "Content type not specified"
		}
		date := strings.TrimSpace(entry.Find("p.meta").First().Text())
		if date == "" {
			date = "Date not available"
		}

		records = append(records, types.PaperRecord{
			Title:           title,
			Authors:         types.JoinAuthors(names),
			Abstract:        springerAbstractNote,
			CitationsOrMeta: contentType + " | " + date,
			Link:            link,
			Source:          s.Name(),
		}.Normalized())
		return true
	})
	return records, nil
}
