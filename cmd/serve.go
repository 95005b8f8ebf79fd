package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/killallgit/resume-api/api"
	"github.com/killallgit/resume-api/api/types"
	apiversion "github.com/killallgit/resume-api/api/version"
	"github.com/killallgit/resume-api/internal/services/progress"
	"github.com/killallgit/resume-api/internal/services/videos"
	"github.com/spf13/cobra"
)

var (
	serverHost string
	serverPort int
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Start the Resume API server with the configured settings.

The server answers GET /video with the resume state of a user and video,
and POST /progressionSync with newly watched segments.

Example:
  resume-api serve
  resume-api serve --port 9090
  resume-api serve --host 0.0.0.0 --port 8080`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	// Server flags
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host (overrides config)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (overrides config)")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	// Use config values if flags not provided
	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}
	if Version != "dev" {
		apiversion.Version = Version
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opened, err := openStore(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := opened.close(); err != nil {
			log.Warnw("closing database", "error", err)
		}
	}()

	registry := videos.NewRegistry(cfg.Videos)
	service := progress.NewService(opened.store, registry,
		progress.WithGapTolerance(cfg.Progress.GapTolerance),
		progress.WithDefaultUser(cfg.Progress.DefaultUser),
		progress.WithLogger(log.Named("progress")),
	)

	server := api.NewServer(cfg, &types.Dependencies{
		DB:              opened.health,
		ProgressService: service,
		Config:          cfg,
		Logger:          log.Named("http"),
	})
	if err := server.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	// Channel to receive server errors
	serverErr := make(chan error, 1)

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("server error: %w", err)
		}
	}()

	log.Infow("server is ready to handle requests",
		"addr", server.Addr(),
		"videos", registry.Names(),
		"driver", cfg.Database.Driver,
	)

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutting down server")
	case runErr = <-serverErr:
		log.Errorw("server stopped", "error", runErr)
	}

	timeout := cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
		return err
	}

	log.Info("server gracefully stopped")
	return runErr
}
