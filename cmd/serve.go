package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/citylens-project/citylens/internal/analysis"
	"github.com/citylens-project/citylens/internal/config"
	"github.com/citylens-project/citylens/internal/handlers"
	"github.com/citylens-project/citylens/internal/storage"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var port string
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start web server for the image analysis interface",
		Long: `Starts the CityLens web interface on the specified port.

The web interface allows you to upload JPEG photos and extract a title,
the buildings shown, and a description using vision-capable LLMs.`,
		Example: `  # Start server on default port 8888
  citylens serve

  # Start server on custom port with a config file
  citylens serve --port 3000 --config citylens.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			if port != "" {
				cfg.Port = port
			}

			// Missing credentials for the configured provider fail here,
			// before the server accepts any uploads.
			analyzer, err := analysis.NewServiceFromConfig(cfg)
			if err != nil {
				return err
			}

			handler := handlers.New(storage.New(), analyzer, cfg)

			// Set up routes
			mux := http.NewServeMux()
			mux.HandleFunc("/api/config", handler.HandleConfig)
			mux.HandleFunc("/api/batches", handler.HandleBatches)
			mux.HandleFunc("/api/batches/", handler.HandleBatchDetail)
			mux.HandleFunc("/", handler.HandleStatic)
			mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
				if _, err := w.Write([]byte("OK")); err != nil {
					slog.Error("Unable to write healthcheck", "err", err)
				}
			})

			addr := ":" + cfg.Port
			server := &http.Server{
				Addr:    addr,
				Handler: mux,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("CityLens interface available", "addr", addr, "url", "http://localhost"+addr, "provider", cfg.Provider, "model", cfg.Model)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides config)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML config file")

	return cmd
}
