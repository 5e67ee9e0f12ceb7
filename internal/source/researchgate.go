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

// researchGateBase is the publication search page. Declared as a var so
// tests can substitute an httptest server.
var researchGateBase = "https://www.researchgate.net/search/publication"

// rgAbstractNote is what the search page shows instead of an abstract.
const rgAbstractNote = "Abstract not available in search results. Click the link to view full details."

// ResearchGate scrapes the publication search page. The site serves HTTP
// 403 to clients it does not recognize, so requests rotate through the
// browser identity pool with up to 3 attempts.
type ResearchGate struct {
	Client *http.Client
	Log    *zap.Logger
}

// Name returns the source identifier.
func (r *ResearchGate) Name() types.Source { return types.SourceResearchGate }

// Fetch scrapes one search page and returns up to maxResults records.
func (r *ResearchGate) Fetch(ctx context.Context, query string, maxResults int, cfg types.SearchConfig) ([]types.PaperRecord, error) {
	if strings.TrimSpace(query) == "" {
		return nil, configErr(r.Name(), fmt.Errorf("empty query"))
	}
	maxResults = clampMaxResults(maxResults)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, researchGateBase+"?q="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, networkErr(r.Name(), fmt.Errorf("creating request: %w", err))
	}
	setBrowserHeaders(req)
	req.Header.Set("Referer", "https://www.google.com/search?q=research+papers+researchgate")

	resp, err := httpx.DoWithIdentityRotation(ctx, r.Client, req, httpx.BrowserIdentities, 3)
	if err != nil {
		return nil, networkErr(r.Name(), err)
	}
	defer resp.Body.Close()

	if httpx.Denied(resp) {
		return nil, accessDeniedErr(r.Name(), 3)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, httpErr(r.Name(), resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, parseErr(r.Name(), fmt.Errorf("parsing search page: %w", err))
	}

	var records []types.PaperRecord
	doc.Find("div.search-result-item").EachWithBreak(func(_ int, entry *goquery.Selection) bool {
		if len(records) >= maxResults {
			return false
		}

		titleEl := entry.Find("a.search-result-title").First()
		title := strings.TrimSpace(titleEl.Text())
		link := ""
		if href, ok := titleEl.Attr("href"); ok {
			link = absoluteURL("https://www.researchgate.net", href)
		}

		var names []string
		entry.Find(`div.publication-author-list span[itemprop="name"]`).Each(func(_ int, au *goquery.Selection) {
			names = append(names, strings.TrimSpace(au.Text()))
		})

		// Date and metrics combined into the meta column.
		var meta []string
		if date := strings.TrimSpace(entry.Find("div.publication-meta-date").First().Text()); date != "" {
			meta = append(meta, date)
		}
		if stats := strings.TrimSpace(entry.Find("div.publication-meta-stats").First().Text()); stats != "" {
			meta = append(meta, stats)
		}

		records = append(records, types.PaperRecord{
			Title:           title,
			Authors:         types.JoinAuthors(names),
			Abstract:        rgAbstractNote,
			CitationsOrMeta: strings.Join(meta, " | "),
			Link:            link,
			Source:          r.Name(),
		}.Normalized())
		return true
	})
	return records, nil
}

// setBrowserHeaders applies the browser-fingerprint headers the scrape
// targets expect alongside the rotated User-Agent.
func setBrowserHeaders(req *http.Request) {
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-User", "?1")
	req.Header.Set("DNT", "1")
}
