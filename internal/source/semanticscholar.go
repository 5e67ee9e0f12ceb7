// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/roodylabs/paperscout/internal/httpx"
	"github.com/roodylabs/paperscout/pkg/types"
)

// Endpoint bases, declared as vars so tests can substitute httptest servers.
var (
	semanticAPIBase    = "https://api.semanticscholar.org/graph/v1/paper/search"
	semanticScrapeBase = "https://www.semanticscholar.org/search"
)

const semanticFields = "title,authors,abstract,citationCount,url,year"

// SemanticScholar fetches results from Semantic Scholar. Two mutually
// exclusive strategies exist: the Graph API (default, optionally
// authenticated for higher rate limits) and a scrape of the HTML search
// page. cfg.SemanticScholarStrategy selects one.
type SemanticScholar struct {
	Client *http.Client
	Log    *zap.Logger
}

// Name returns the source identifier.
func (s *SemanticScholar) Name() types.Source { return types.SourceSemanticScholar }

// Fetch dispatches to the configured strategy.
func (s *SemanticScholar) Fetch(ctx context.Context, query string, maxResults int, cfg types.SearchConfig) ([]types.PaperRecord, error) {
	if strings.TrimSpace(query) == "" {
		return nil, configErr(s.Name(), fmt.Errorf("empty query"))
	}
	maxResults = clampMaxResults(maxResults)

	switch cfg.SemanticScholarStrategy {
	case types.StrategyScrape:
		return s.fetchScrape(ctx, query, maxResults)
	case types.StrategyAPI, "":
		return s.fetchAPI(ctx, query, maxResults, cfg)
	default:
		return nil, configErr(s.Name(), fmt.Errorf("unknown strategy %q", cfg.SemanticScholarStrategy))
	}
}

// fetchAPI queries the Graph API paper search endpoint. 429 responses are
// retried with exponential backoff.
func (s *SemanticScholar) fetchAPI(ctx context.Context, query string, maxResults int, cfg types.SearchConfig) ([]types.PaperRecord, error) {
	params := url.Values{
		"query":  {query},
		"limit":  {fmt.Sprintf("%d", maxResults)},
		"fields": {semanticFields},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, semanticAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, networkErr(s.Name(), fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	if cfg.SemanticScholarAPIKey != "" {
		req.Header.Set("x-api-key", cfg.SemanticScholarAPIKey)
	}

	resp, err := httpx.DoWithRetry(ctx, s.Client, req, 0)
	if err != nil {
		return nil, networkErr(s.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpErr(s.Name(), resp.StatusCode)
	}

	var sr semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, parseErr(s.Name(), fmt.Errorf("decoding paper search response: %w", err))
	}

	records := make([]types.PaperRecord, 0, len(sr.Data))
	for _, paper := range sr.Data {
		if len(records) >= maxResults {
			break
		}
		var names []string
		for _, au := range paper.Authors {
			names = append(names, au.Name)
		}
		records = append(records, types.PaperRecord{
			Title:           paper.Title,
			Authors:         types.JoinAuthors(names),
			Abstract:        paper.Abstract,
			CitationsOrMeta: fmt.Sprintf("Cited by %d", paper.CitationCount),
			Link:            paper.URL,
			Source:          s.Name(),
		}.Normalized())
	}
	return records, nil
}

// fetchScrape parses the HTML search page. The selectors track the site's
// rendered markup and are the fragile half of this adapter; the API
// strategy is the default for a reason.
func (s *SemanticScholar) fetchScrape(ctx context.Context, query string, maxResults int) ([]types.PaperRecord, error) {
	pageURL := semanticScrapeBase + "?q=" + url.QueryEscape(query) + "&sort=relevance"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, networkErr(s.Name(), fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("User-Agent", httpx.BrowserIdentities[0])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

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
	doc.Find("div.result-item").EachWithBreak(func(_ int, entry *goquery.Selection) bool {
		if len(records) >= maxResults {
			return false
		}

		titleEl := entry.Find("a.search-result-title").First()
		title := strings.TrimSpace(titleEl.Text())
		link := ""
		if href, ok := titleEl.Attr("href"); ok {
			link = absoluteURL("https://www.semanticscholar.org", href)
		}

		var names []string
		entry.Find("a.author-list__link").Each(func(_ int, au *goquery.Selection) {
			names = append(names, strings.TrimSpace(au.Text()))
		})

		abstract := strings.TrimSpace(entry.Find("div.search-result-abstract").First().Text())

		citations := ""
		if count := strings.TrimSpace(entry.Find("span.citation-stat__count").First().Text()); count != "" {
			citations = "Cited by " + count
		}

		records = append(records, types.PaperRecord{
			Title:           title,
			Authors:         types.JoinAuthors(names),
			Abstract:        abstract,
			CitationsOrMeta: citations,
			Link:            link,
			Source:          s.Name(),
		}.Normalized())
		return true
	})
	return records, nil
}

// Semantic Scholar Graph API JSON structures.
type semanticResponse struct {
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	Data   []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID       string           `json:"paperId"`
	Title         string           `json:"title"`
	Abstract      string           `json:"abstract"`
	CitationCount int              `json:"citationCount"`
	URL           string           `json:"url"`
	Year          int              `json:"year"`
	Authors       []semanticAuthor `json:"authors"`
}

type semanticAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}
