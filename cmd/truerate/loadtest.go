package main

import (
	"context"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sajal133/truerate-api/internal/loadtest"
)

const (
	defaultLoadReviews = 1000
	defaultLoadTimeout = 10 * time.Second
	defaultRunTimeout  = 10 * time.Minute
)

var loadCfg loadtest.Config

var loadtestCmd = &cobra.Command{
	Use:   "loadtest",
	Short: "Drive a running server with generated reviews and feedback",
	Long: `Generate bot-like, low-effort and detailed reviews, analyze them concurrently
against a running server, vote on the results, and check that the learner
picked the votes up. Run the server with feedback_rate_per_min=0 to avoid
rate limiting.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), defaultRunTimeout)
		defer cancel()
		_, err := loadtest.Run(ctx, &loadCfg)
		return err
	},
}

func init() {
	rootCmd.AddCommand(loadtestCmd)
	f := loadtestCmd.Flags()
	f.StringVar(&loadCfg.BaseURL, "url", "http://localhost:8000", "Base URL of the service")
	f.IntVarP(&loadCfg.NumReviews, "reviews", "n", defaultLoadReviews, "Number of reviews to generate")
	f.IntVarP(&loadCfg.Workers, "workers", "w", runtime.NumCPU()*2, "Number of concurrent workers")
	f.DurationVar(&loadCfg.Timeout, "timeout", defaultLoadTimeout, "HTTP request timeout")
	f.Float64Var(&loadCfg.FeedbackRatio, "feedback", 0.5, "Share of analyzed reviews that get a vote")
	f.Float64Var(&loadCfg.DuplicateRatio, "duplicates", 0.1, "Share of votes sent twice")
	f.StringVarP(&loadCfg.OutputFile, "output", "o", "", "Write generated reviews as JSONL")
	f.BoolVarP(&loadCfg.Verbose, "verbose", "v", false, "Log every failed request")
}
