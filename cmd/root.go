package cmd

import (
	"fmt"
	"os"

	"github.com/killallgit/resume-api/pkg/config"
	"github.com/killallgit/resume-api/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "resume-api",
	Short: "Video resume and watched progress API",
	Long: `Resume API - remembers where each user stopped a video and which parts they watched

The server keeps one record per user and video holding the cursor position
and the merged list of watched intervals. Clients sync closed segments as the
viewer jumps around and read them back to resume playback.

Features:
  • Resume position per user and video
  • Watched intervals merged with a gap tolerance
  • Watched percentage of the video duration
  • SQLite or PostgreSQL storage
  • Headless replay client for scripted playback`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// NewRootCmd creates a new root command (exported for testing)
func NewRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().String("config", config.DefaultConfigFile, "settings file")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "enable JSON formatted logs")
}

// loadConfig loads the configuration when a command needs it.
// version and help never call it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		config.SetConfigFile(path)
	}

	if err := config.Init(); err != nil {
		return nil, fmt.Errorf("error initializing config: %w", err)
	}
	return config.GetConfig()
}

// newLogger builds the process logger. Flags win over the settings file
// when they are set explicitly.
func newLogger(cmd *cobra.Command, cfg *config.Config) (*zap.SugaredLogger, error) {
	level := cfg.Logging.Level
	jsonLogs := cfg.Logging.Format == "json"

	flags := cmd.Flags()
	if flags.Changed("log-level") || level == "" {
		level, _ = flags.GetString("log-level")
	}
	if flags.Changed("json-logs") {
		jsonLogs, _ = flags.GetBool("json-logs")
	}

	return logger.New(level, jsonLogs)
}
