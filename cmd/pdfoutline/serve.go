package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/pdfoutline/internal/api"
	"github.com/dgallion1/pdfoutline/internal/pipeline"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the outline HTTP API",
	Long: `Start the HTTP API.

Endpoints:
  GET  /health                  - liveness and version
  POST /api/outline             - extract one uploaded file (field "file")
  POST /api/outline/batch       - queue several files (field "files")
  GET  /api/jobs/{id}           - job status
  GET  /api/jobs/{id}/result    - rendered outline of a completed job
  GET  /api/stats               - queue and latency stats

Set api_key (or PDFOUTLINE_API_KEY) to require a bearer token on /api.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if servePort != "" {
			cfg.Port = servePort
		}

		orch := pipeline.NewOrchestrator(cfg, logger)
		orch.Start(ctx)

		httpServer := &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      api.NewServer(orch, logger, cfg),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 120 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("starting pdfoutline", "port", cfg.Port)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			orch.Stop()
			return err
		case <-ctx.Done():
		}

		logger.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := httpServer.Shutdown(shutdownCtx)
		orch.Stop()
		return err
	},
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port (default from config)")
}
