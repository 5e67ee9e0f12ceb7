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

// coreBase is the CORE search page. Declared as a var so tests can
// substitute an httptest server.
var coreBase = "https://core.ac.uk/search"

// Core scrapes the CORE aggregator's search page.
type Core struct {
	Client *http.Client
	Log    *zap.Logger
}

// Name returns the source identifier.
func (c *Core) Name() types.Source { return types.SourceCORE }

// Fetch scrapes one search page and returns up to maxResults records.
func (c *Core) Fetch(ctx context.Context, query string, maxResults int, cfg types.SearchConfig) ([]types.PaperRecord, error) {
	if strings.TrimSpace(query) == "" {
		return nil, configErr(c.Name(), fmt.Errorf("empty query"))
	}
	maxResults = clampMaxResults(maxResults)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, coreBase+"?q="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, networkErr(c.Name(), fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("User-Agent", httpx.BrowserIdentities[0])

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, networkErr(c.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpErr(c.Name(), resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, parseErr(c.Name(), fmt.Errorf("parsing search page: %w", err))
	}

	var records []types.PaperRecord
	doc.Find("article.search-result").EachWithBreak(func(_ int, entry *goquery.Selection) bool {
		if len(records) >= maxResults {
			return false
		}

		titleEl := entry.Find("h3.title a").First()
		title := strings.TrimSpace(titleEl.Text())
		link := ""
		if href, ok := titleEl.Attr("href"); ok {
			link = absoluteURL("https://core.ac.uk", href)
		}

		records = append(records, types.PaperRecord{
			Title:           title,
			Authors:         strings.TrimSpace(entry.Find("div.authors").First().Text()),
			Abstract:        strings.TrimSpace(entry.Find("div.description").First().Text()),
			CitationsOrMeta: strings.TrimSpace(entry.Find("div.publisher").First().Text()),
			Link:            link,
			Source:          c.Name(),
		}.Normalized())
		return true
	})
	return records, nil
}
