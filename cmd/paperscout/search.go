package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roodylabs/paperscout/internal/aggregate"
	"github.com/roodylabs/paperscout/internal/export"
	"github.com/roodylabs/paperscout/internal/runfile"
	"github.com/roodylabs/paperscout/internal/secrets"
	"github.com/roodylabs/paperscout/internal/source"
	"github.com/roodylabs/paperscout/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the academic databases for papers",
	Long: `Search runs one query against the selected sources and prints the merged
results. Sources run in sequence with a short randomized pause between them
unless --concurrent is set. A failing source is reported and skipped.

Saved runs (--save) can be reloaded with --load and re-exported in any
format without querying the sources again.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("sources", "", "comma-separated sources to query (default: all)")
	searchCmd.Flags().Int("max-results", 0, "maximum results per source, 1-100 (default from config, 20)")
	searchCmd.Flags().String("format", "table", "output format: table, json, csv, or xlsx")
	searchCmd.Flags().StringP("output", "o", "", "write output to file instead of stdout")
	searchCmd.Flags().String("save", "", "save the run to a YAML file")
	searchCmd.Flags().String("load", "", "load a previously saved run instead of searching")
	searchCmd.Flags().Bool("concurrent", false, "query all sources in parallel")
	searchCmd.Flags().String("scholar-strategy", "", "Google Scholar strategy: scrape or serpapi")
	searchCmd.Flags().String("serpapi-key", "", "SerpAPI key for the Google Scholar serpapi strategy")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	format, err := export.ParseFormat(mustString(cmd, "format"))
	if err != nil {
		return err
	}

	res, cfg, err := obtainResult(cmd, args)
	if err != nil {
		return err
	}

	if savePath := mustString(cmd, "save"); savePath != "" {
		if err := runfile.Write(savePath, res, cfg); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Run saved to %s\n", savePath)
	}

	out := os.Stdout
	if path := mustString(cmd, "output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	return export.Write(out, res, format)
}

// obtainResult either loads a saved run or performs a live search.
func obtainResult(cmd *cobra.Command, args []string) (*aggregate.Result, types.SearchConfig, error) {
	cfg := searchConfig(cmd)

	if loadPath := mustString(cmd, "load"); loadPath != "" {
		if len(args) > 0 {
			return nil, cfg, fmt.Errorf("--load and a query are mutually exclusive")
		}
		rf, err := runfile.Read(loadPath)
		if err != nil {
			return nil, cfg, err
		}
		return rf.ToResult(), cfg, nil
	}

	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return nil, cfg, fmt.Errorf("query required: paperscout search \"your topic\"")
	}

	selected := types.AllSources()
	if raw := mustString(cmd, "sources"); raw != "" {
		parsed, err := types.ParseSources(raw)
		if err != nil {
			return nil, cfg, err
		}
		selected = parsed
	}

	log, err := newLogger(cmd)
	if err != nil {
		return nil, cfg, err
	}
	defer log.Sync()

	client := &http.Client{Timeout: cfg.Timeout}
	adapters, err := source.ForSources(selected, client, log)
	if err != nil {
		return nil, cfg, err
	}

	res, err := aggregate.Search(cmd.Context(), query, adapters, cfg, log)
	if err != nil {
		return nil, cfg, err
	}
	for _, f := range res.Failures {
		fmt.Fprintf(os.Stderr, "warning: %s: %s\n", f.Source, f.Message)
	}
	return res, cfg, nil
}

// searchConfig layers defaults, the config file / environment, and flags.
func searchConfig(cmd *cobra.Command) types.SearchConfig {
	cfg := types.DefaultSearchConfig()

	if viper.IsSet("timeout") {
		cfg.Timeout = viper.GetDuration("timeout")
	}
	if viper.IsSet("user_agent") {
		cfg.UserAgent = viper.GetString("user_agent")
	}
	if viper.IsSet("max_results_per_source") {
		cfg.MaxResultsPerSource = viper.GetInt("max_results_per_source")
	}
	if viper.IsSet("inter_source_delay") {
		cfg.InterSourceDelay = viper.GetDuration("inter_source_delay")
	}
	if viper.IsSet("page_delay") {
		cfg.PageDelay = viper.GetDuration("page_delay")
	}
	if viper.IsSet("google_scholar_strategy") {
		cfg.GoogleScholarStrategy = types.Strategy(viper.GetString("google_scholar_strategy"))
	}
	if viper.IsSet("semantic_scholar_strategy") {
		cfg.SemanticScholarStrategy = types.Strategy(viper.GetString("semantic_scholar_strategy"))
	}
	cfg.SerpAPIKey = viper.GetString("serpapi_api_key")
	cfg.SemanticScholarAPIKey = viper.GetString("semantic_scholar_api_key")

	if n, _ := cmd.Flags().GetInt("max-results"); n > 0 {
		cfg.MaxResultsPerSource = n
	}
	if v, _ := cmd.Flags().GetBool("concurrent"); v {
		cfg.Concurrent = true
	}
	if s := mustString(cmd, "scholar-strategy"); s != "" {
		cfg.GoogleScholarStrategy = types.Strategy(s)
	}
	if k := mustString(cmd, "serpapi-key"); k != "" {
		cfg.SerpAPIKey = k
	}

	secrets.Apply(&cfg, loadedSecrets)
	return cfg
}

// mustString reads a string flag that is known to exist.
func mustString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}
