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

// scienceDirectBase is the ScienceDirect search page. Declared as a var so
// tests can substitute an httptest server.
var scienceDirectBase = "https://www.sciencedirect.com/search"

// ScienceDirect scrapes the search page. The site redirects clients it
// dislikes to an "unsupported_browser" interstitial instead of returning an
// error status, so denial detection and identity rotation both key off the
// final request URL.
type ScienceDirect struct {
	Client *http.Client
	Log    *zap.Logger
}

// Name returns the source identifier.
func (s *ScienceDirect) Name() types.Source { return types.SourceScienceDirect }

// Fetch scrapes one search page and returns up to maxResults records.
func (s *ScienceDirect) Fetch(ctx context.Context, query string, maxResults int, cfg types.SearchConfig) ([]types.PaperRecord, error) {
	if strings.TrimSpace(query) == "" {
		return nil, configErr(s.Name(), fmt.Errorf("empty query"))
	}
	maxResults = clampMaxResults(maxResults)

	// Pause before hitting the site at all; it profiles request timing.
	if err := httpx.SleepJitter(ctx, cfg.PageDelay/2, cfg.PageDelay); err != nil {
		return nil, networkErr(s.Name(), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, scienceDirectBase+"?qs="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, networkErr(s.Name(), fmt.Errorf("creating request: %w", err))
	}
	setBrowserHeaders(req)
	req.Header.Set("Referer", "https://www.google.com/")

	resp, err := httpx.DoWithIdentityRotation(ctx, s.Client, req, httpx.BrowserIdentities, 3)
	if err != nil {
		return nil, networkErr(s.Name(), err)
	}
	defer resp.Body.Close()

	if httpx.Denied(resp) {
		return nil, accessDeniedErr(s.Name(), 3)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, httpErr(s.Name(), resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, parseErr(s.Name(), fmt.Errorf("parsing search page: %w", err))
	}

	var records []types.PaperRecord
	doc.Find("li.ResultItem").EachWithBreak(func(_ int, entry *goquery.Selection) bool {
		if len(records) >= maxResults {
			return false
		}

		titleEl := entry.Find("h2 a").First()
		title := strings.TrimSpace(titleEl.Text())
		link := ""
		if href, ok := titleEl.Attr("href"); ok {
			link = absoluteURL("https://www.sciencedirect.com", href)
		}

		var names []string
		entry.Find(".Authors li").Each(func(_ int, au *goquery.Selection) {
			names = append(names, strings.TrimSpace(au.Text()))
		})

		var meta []string
		if sub := strings.TrimSpace(entry.Find(".SubType").First().Text()); sub != "" {
			meta = append(meta, sub)
		}
		if date := strings.TrimSpace(entry.Find(".srctitle-date-fields").First().Text()); date != "" {
			meta = append(meta, date)
		}

		records = append(records, types.PaperRecord{
			Title:           title,
			Authors:         types.JoinAuthors(names),
			Abstract:        strings.TrimSpace(entry.Find(".ResultText").First().Text()),
			CitationsOrMeta: strings.Join(meta, " | "),
			Link:            link,
			Source:          s.Name(),
		}.Normalized())
		return true
	})
	return records, nil
}
