package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sajal133/truerate-api/internal/config"
	"github.com/Sajal133/truerate-api/pkg/logger"
)

var (
	configPath string
	logLevel   string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "truerate",
	Short: "TrueRate - review credibility and rating correction",
	Long: `TrueRate scores how trustworthy a product review is, detects sarcasm,
and corrects the star rating for sentiment mismatch. Agree/disagree feedback
adjusts the credibility model online.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (overrides TRUERATE_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

// setup loads configuration and initializes logging. Logs go to stderr so
// command output on stdout stays machine readable.
func setup(cmd *cobra.Command, _ []string) error {
	if configPath != "" {
		if err := os.Setenv("TRUERATE_CONFIG", configPath); err != nil {
			return err
		}
	}
	var err error
	cfg, err = config.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithOutput(os.Stderr)); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(cmd.Context(), "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return nil
}
