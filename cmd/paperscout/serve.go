// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roodylabs/paperscout/internal/webui"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local web UI",
	Long: `Serve starts a local HTTP server with a browser frontend over the same
search aggregator the CLI uses: a search form, a result table, and CSV/XLSX
download links.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8080)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := mustString(cmd, "addr")
	if addr == "" {
		addr = viper.GetString("addr")
	}
	if addr == "" {
		addr = ":8080"
	}

	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg := searchConfig(cmd)
	client := &http.Client{Timeout: cfg.Timeout}
	server := webui.NewServer(cfg, client, log)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: server.Handler(),
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "Serving web UI on http://localhost%s\n", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
