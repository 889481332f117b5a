package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/tokenprinter/internal/config"
	"github.com/MeKo-Tech/tokenprinter/internal/server"
	"github.com/MeKo-Tech/tokenprinter/internal/version"
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for conversions",
	Long: `Start an HTTP server that runs conversions on folders visible to the server.

The server provides the following endpoints:
  POST /convert  - Convert a folder and wait for the result
  GET  /ws       - WebSocket conversions with progress messages
  GET  /settings - Show the remembered folders
  PUT  /settings - Change the remembered folders
  GET  /health   - Health check endpoint
  GET  /metrics  - Prometheus metrics

Examples:
  tokenprinter serve
  tokenprinter serve --port 8080
  tokenprinter serve --host 0.0.0.0 --port 3000`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		applyServeFlags(cmd, &cfg.Server)
		if err := cfg.Validate(); err != nil {
			return err
		}

		store, err := openSettingsStore(cfg)
		if err != nil {
			slog.Warn("Settings endpoint disabled", "error", err)
		}

		srv := server.NewServer(server.Config{
			Host:       cfg.Server.Host,
			Port:       cfg.Server.Port,
			CORSOrigin: cfg.Server.CORSOrigin,
			Version:    version.Version,
			Convert:    cfg.ToConvertOptions(),
			Settings:   store,
		})

		mux := http.NewServeMux()
		srv.SetupRoutes(mux)

		httpServer := &http.Server{
			Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
		defer stop()

		shutdownTimeout := time.Duration(cfg.Server.ShutdownTimeout) * time.Second
		return runHTTPServer(ctx, httpServer, shutdownTimeout)
	},
}

// applyServeFlags lets explicitly given flags win over the loaded configuration.
func applyServeFlags(cmd *cobra.Command, sc *config.ServerConfig) {
	flags := cmd.Flags()
	if flags.Changed("host") {
		sc.Host, _ = flags.GetString("host")
	}
	if flags.Changed("port") {
		sc.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("cors-origin") {
		sc.CORSOrigin, _ = flags.GetString("cors-origin")
	}
	if flags.Changed("shutdown-timeout") {
		sc.ShutdownTimeout, _ = flags.GetInt("shutdown-timeout")
	}
}

// runHTTPServer serves until ctx is done or the listener fails, then shuts
// down gracefully within timeout. Conversions already running are allowed to
// finish inside that window.
func runHTTPServer(ctx context.Context, httpServer *http.Server, timeout time.Duration) error {
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("Starting tokenprinter server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		slog.Info("Shutdown requested", "cause", context.Cause(ctx))
	}

	slog.Info("Starting graceful shutdown", "timeout", timeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	slog.Info("Graceful shutdown completed")
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("host", "H", "localhost", "server host")
	serveCmd.Flags().IntP("port", "p", 8080, "server port")
	serveCmd.Flags().String("cors-origin", "", "allowed cross-origin caller (\"*\" for any; default same-origin only)")
	serveCmd.Flags().Int("shutdown-timeout", 10, "shutdown timeout in seconds")
}
