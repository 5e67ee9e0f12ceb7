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
	serpAPIBase       = "https://serpapi.com/search"
	scholarScrapeBase = "https://scholar.google.com/scholar"
)

// scholarPageSize is the per-page result count of both strategies; larger
// requests paginate with a randomized delay between pages.
const scholarPageSize = 10

// GoogleScholar fetches results from Google Scholar, either through SerpAPI
// (reliable, needs cfg.SerpAPIKey) or by scraping result pages directly.
// cfg.GoogleScholarStrategy selects one.
type GoogleScholar struct {
	Client *http.Client
	Log    *zap.Logger
}

// Name returns the source identifier.
func (g *GoogleScholar) Name() types.Source { return types.SourceGoogleScholar }

// Fetch dispatches to the configured strategy.
func (g *GoogleScholar) Fetch(ctx context.Context, query string, maxResults int, cfg types.SearchConfig) ([]types.PaperRecord, error) {
	if strings.TrimSpace(query) == "" {
		return nil, configErr(g.Name(), fmt.Errorf("empty query"))
	}
	maxResults = clampMaxResults(maxResults)

	switch cfg.GoogleScholarStrategy {
	case types.StrategySerpAPI:
		return g.fetchSerpAPI(ctx, query, maxResults, cfg)
	case types.StrategyScrape, "":
		return g.fetchScrape(ctx, query, maxResults, cfg)
	default:
		return nil, configErr(g.Name(), fmt.Errorf("unknown strategy %q", cfg.GoogleScholarStrategy))
	}
}

// fetchSerpAPI pages through SerpAPI's google_scholar engine, accumulating
// until maxResults is reached or a page comes back empty.
func (g *GoogleScholar) fetchSerpAPI(ctx context.Context, query string, maxResults int, cfg types.SearchConfig) ([]types.PaperRecord, error) {
	if cfg.SerpAPIKey == "" {
		return nil, configErr(g.Name(), fmt.Errorf("serpapi strategy requires an API key"))
	}

	pages := (maxResults + scholarPageSize - 1) / scholarPageSize
	var records []types.PaperRecord

	for page := 0; page < pages; page++ {
		if page > 0 {
			// Courtesy pause between page requests.
			if err := httpx.SleepJitter(ctx, cfg.PageDelay/2, cfg.PageDelay); err != nil {
				return records, networkErr(g.Name(), err)
			}
		}

		params := url.Values{
			"engine":  {"google_scholar"},
			"q":       {query},
			"api_key": {cfg.SerpAPIKey},
			"hl":      {"en"},
			"as_sdt":  {"0,5"},
			"start":   {fmt.Sprintf("%d", page*scholarPageSize)},
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, serpAPIBase+"?"+params.Encode(), nil)
		if err != nil {
			return nil, networkErr(g.Name(), fmt.Errorf("creating request: %w", err))
		}

		resp, err := g.Client.Do(req)
		if err != nil {
			return nil, networkErr(g.Name(), err)
		}

		if resp.StatusCode != http.StatusOK {
			status := resp.StatusCode
			resp.Body.Close()
			if status == http.StatusUnauthorized {
				return nil, configErr(g.Name(), fmt.Errorf("SerpAPI rejected the API key (HTTP 401)"))
			}
			return nil, httpErr(g.Name(), status)
		}

		var sr serpResponse
		err = json.NewDecoder(resp.Body).Decode(&sr)
		resp.Body.Close()
		if err != nil {
			return nil, parseErr(g.Name(), fmt.Errorf("decoding SerpAPI response: %w", err))
		}
		if sr.Error != "" {
			return nil, parseErr(g.Name(), fmt.Errorf("SerpAPI error: %s", sr.Error))
		}
		if len(sr.OrganicResults) == 0 {
			g.Log.Debug("serpapi page empty, stopping pagination",
				zap.Int("page", page+1), zap.Int("collected", len(records)))
			break
		}

		for _, res := range sr.OrganicResults {
			if len(records) >= maxResults {
				break
			}
			citations := ""
			if res.InlineLinks.CitedBy.Total > 0 {
				citations = fmt.Sprintf("Cited by %d", res.InlineLinks.CitedBy.Total)
			}
			records = append(records, types.PaperRecord{
				Title:           res.Title,
				Authors:         res.PublicationInfo.Summary,
				Abstract:        res.Snippet,
				CitationsOrMeta: citations,
				Link:            res.Link,
				Source:          g.Name(),
			}.Normalized())
		}
		if len(records) >= maxResults {
			break
		}
	}
	return records, nil
}

// fetchScrape pages through scholar.google.com result pages directly. The
// site blocks aggressively, so requests carry a browser identity and the
// adapter stops at the first denied page rather than hammering on.
func (g *GoogleScholar) fetchScrape(ctx context.Context, query string, maxResults int, cfg types.SearchConfig) ([]types.PaperRecord, error) {
	pages := (maxResults + scholarPageSize - 1) / scholarPageSize
	var records []types.PaperRecord

	for page := 0; page < pages; page++ {
		if page > 0 {
			if err := httpx.SleepJitter(ctx, cfg.PageDelay/2, cfg.PageDelay); err != nil {
				return records, networkErr(g.Name(), err)
			}
		}

		params := url.Values{
			"q":     {query},
			"hl":    {"en"},
			"start": {fmt.Sprintf("%d", page*scholarPageSize)},
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, scholarScrapeBase+"?"+params.Encode(), nil)
		if err != nil {
			return nil, networkErr(g.Name(), fmt.Errorf("creating request: %w", err))
		}
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")

		resp, err := httpx.DoWithIdentityRotation(ctx, g.Client, req, httpx.BrowserIdentities, 3)
		if err != nil {
			return nil, networkErr(g.Name(), err)
		}
		if httpx.Denied(resp) {
			resp.Body.Close()
			if len(records) > 0 {
				// Keep what earlier pages yielded.
				g.Log.Warn("google scholar blocked mid-pagination",
					zap.Int("page", page+1), zap.Int("collected", len(records)))
				return records, nil
			}
			return nil, accessDeniedErr(g.Name(), 3)
		}
		if resp.StatusCode != http.StatusOK {
			status := resp.StatusCode
			resp.Body.Close()
			return nil, httpErr(g.Name(), status)
		}

		doc, err := goquery.NewDocumentFromReader(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, parseErr(g.Name(), fmt.Errorf("parsing result page: %w", err))
		}

		entries := doc.Find("div.gs_r div.gs_ri")
		if entries.Length() == 0 {
			break
		}

		entries.EachWithBreak(func(_ int, entry *goquery.Selection) bool {
			if len(records) >= maxResults {
				return false
			}

			titleEl := entry.Find("h3.gs_rt a").First()
			title := strings.TrimSpace(titleEl.Text())
			link, _ := titleEl.Attr("href")

			authors := strings.TrimSpace(entry.Find("div.gs_a").First().Text())
			abstract := strings.TrimSpace(entry.Find("div.gs_rs").First().Text())

			citations := ""
			entry.Find("div.gs_fl a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
				if strings.HasPrefix(a.Text(), "Cited by") {
					citations = strings.TrimSpace(a.Text())
					return false
				}
				return true
			})

			records = append(records, types.PaperRecord{
				Title:           title,
				Authors:         authors,
				Abstract:        abstract,
				CitationsOrMeta: citations,
				Link:            absoluteURL("https://scholar.google.com", link),
				Source:          g.Name(),
			}.Normalized())
			return true
		})
		if len(records) >= maxResults {
			break
		}
	}
	return records, nil
}

// SerpAPI JSON structures.
type serpResponse struct {
	Error          string       `json:"error"`
	OrganicResults []serpResult `json:"organic_results"`
}

type serpResult struct {
	Title           string `json:"title"`
	Link            string `json:"link"`
	Snippet         string `json:"snippet"`
	PublicationInfo struct {
		Summary string `json:"summary"`
	} `json:"publication_info"`
	InlineLinks struct {
		CitedBy struct {
			Total int `json:"total"`
		} `json:"cited_by"`
	} `json:"inline_links"`
}
