// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Strategy selects between the API-backed and scrape-backed implementation
// of a source that has both.
type Strategy string

const (
	StrategyAPI     Strategy = "api"
	StrategySerpAPI Strategy = "serpapi"
	StrategyScrape  Strategy = "scrape"
)

// HTTPConfig holds shared HTTP settings used by every adapter.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with API requests. Scrape
	// adapters override it with a browser identity from the rotation pool.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for one aggregated search run.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResultsPerSource caps each adapter's contribution; clamped to
	// [1, 100] at the aggregator boundary.
	MaxResultsPerSource int `json:"max_results_per_source" yaml:"max_results_per_source"`

	// Concurrent fans adapters out in parallel instead of invoking them
	// in sequence with a courtesy delay.
	Concurrent bool `json:"concurrent" yaml:"concurrent"`

	// InterSourceDelay is the upper bound of the randomized pause between
	// sequential adapter invocations (default 2s; the actual pause falls
	// in [delay/2, delay]). Ignored in concurrent mode.
	InterSourceDelay time.Duration `json:"inter_source_delay" yaml:"inter_source_delay"`

	// PageDelay is the upper bound of the randomized pause between
	// successive page requests of a paginating adapter (default 2s).
	PageDelay time.Duration `json:"page_delay" yaml:"page_delay"`

	// GoogleScholarStrategy is "serpapi" (requires SerpAPIKey) or "scrape".
	GoogleScholarStrategy Strategy `json:"google_scholar_strategy" yaml:"google_scholar_strategy"`

	// SemanticScholarStrategy is "api" or "scrape".
	SemanticScholarStrategy Strategy `json:"semantic_scholar_strategy" yaml:"semantic_scholar_strategy"`

	// SerpAPIKey authenticates the Google Scholar SerpAPI strategy.
	SerpAPIKey string `json:"serpapi_key,omitempty" yaml:"serpapi_key,omitempty"`

	// SemanticScholarAPIKey is an optional key for higher rate limits.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty"`
}

// DefaultTimeout bounds each adapter request, within the 10-20s window the
// upstream sites tolerate before anti-scraping measures kick in.
const DefaultTimeout = 15 * time.Second

// DefaultSearchConfig returns the configuration used when nothing is set in
// the config file or flags.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		HTTPConfig: HTTPConfig{
			Timeout:   DefaultTimeout,
			UserAgent: "paperscout/0.1",
		},
		MaxResultsPerSource:     20,
		InterSourceDelay:        2 * time.Second,
		PageDelay:               2 * time.Second,
		GoogleScholarStrategy:   StrategyScrape,
		SemanticScholarStrategy: StrategyAPI,
	}
}

// ServeConfig holds settings for the web UI server.
type ServeConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr"`
}
