// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package webui serves a small browser frontend and a JSON API over the
// aggregator: a search endpoint and export downloads.
package webui

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/roodylabs/paperscout/internal/aggregate"
	"github.com/roodylabs/paperscout/internal/export"
	"github.com/roodylabs/paperscout/internal/source"
	"github.com/roodylabs/paperscout/pkg/types"
)

//go:embed index.html
var indexHTML []byte

// SearchFunc runs one multi-source search. The server takes it as a value
// so tests can substitute a stub for the live aggregator.
type SearchFunc func(ctx context.Context, query string, sources []types.Source, maxResults int) (*aggregate.Result, error)

// Server handles the web UI routes.
type Server struct {
	Search SearchFunc
	Log    *zap.Logger
}

// NewServer wires the live aggregator into a Server.
func NewServer(cfg types.SearchConfig, client *http.Client, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		Log: log,
		Search: func(ctx context.Context, query string, sources []types.Source, maxResults int) (*aggregate.Result, error) {
			adapters, err := source.ForSources(sources, client, log)
			if err != nil {
				return nil, err
			}
			runCfg := cfg
			if maxResults > 0 {
				runCfg.MaxResultsPerSource = maxResults
			}
			return aggregate.Search(ctx, query, adapters, runCfg, log)
		},
	}
}

// Handler returns the chi router for the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
	}))

	r.Get("/", s.handleIndex)
	r.Get("/api/sources", s.handleSources)
	r.Get("/api/search", s.handleSearch)
	r.Get("/api/export", s.handleExport)
	return r
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	names := make([]string, 0, len(types.AllSources()))
	for _, src := range types.AllSources() {
		names = append(names, string(src))
	}
	fmt.Fprintf(w, `{"sources":[%s]}`, `"`+strings.Join(names, `","`)+`"`)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	res, ok := s.runSearch(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := export.WriteJSON(w, res); err != nil {
		s.Log.Warn("write search response", zap.Error(err))
	}
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if format != export.FormatCSV && format != export.FormatXLSX {
		writeError(w, http.StatusBadRequest, "export format must be csv or xlsx")
		return
	}

	res, ok := s.runSearch(w, r)
	if !ok {
		return
	}

	filename := fmt.Sprintf("papers-%s.%s", time.Now().Format("20060102-150405"), export.FileExtension(format))
	switch format {
	case export.FormatCSV:
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	case export.FormatXLSX:
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := export.Write(w, res, format); err != nil {
		s.Log.Warn("write export", zap.Error(err))
	}
}

// runSearch parses the shared query parameters, runs the search, and
// writes the error response itself when something is wrong.
func (s *Server) runSearch(w http.ResponseWriter, r *http.Request) (*aggregate.Result, bool) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "q parameter is required")
		return nil, false
	}

	sources := types.AllSources()
	if raw := r.URL.Query().Get("sources"); raw != "" {
		parsed, err := types.ParseSources(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return nil, false
		}
		sources = parsed
	}

	maxResults := 0
	if raw := r.URL.Query().Get("max"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > source.MaxResultsCeiling {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("max must be an integer in [1, %d]", source.MaxResultsCeiling))
			return nil, false
		}
		maxResults = n
	}

	res, err := s.Search(r.Context(), query, sources, maxResults)
	if err != nil {
		s.Log.Warn("search failed", zap.String("query", query), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return res, true
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":%q}`, msg)
}
