package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	service "github.com/Sajal133/truerate-api/internal/app"
	"github.com/Sajal133/truerate-api/pkg/logger"
)

var (
	analyzeStars     int
	analyzeSentiment float64
	useLearned       bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze TEXT",
	Short: "Analyze one review and print the result as JSON",
	Long: `Analyze one review. Use "-" as TEXT to read the review from stdin.
With --learned the configured store or snapshot supplies learned weights.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().IntVarP(&analyzeStars, "stars", "s", 0, "Star rating 1-5")
	analyzeCmd.Flags().Float64Var(&analyzeSentiment, "sentiment", 0, "Use this sentiment score in [-1,1] instead of the analyzer")
	analyzeCmd.Flags().BoolVar(&useLearned, "learned", false, "Load learned weights from the configured store")
	_ = analyzeCmd.MarkFlagRequired("stars")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if analyzeStars < 1 || analyzeStars > 5 {
		return fmt.Errorf("--stars must be between 1 and 5, got %d", analyzeStars)
	}
	text := args[0]
	if text == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = strings.TrimSpace(string(b))
	}

	review := service.Review{Text: text, Stars: analyzeStars}
	if cmd.Flags().Changed("sentiment") {
		s := analyzeSentiment
		review.Sentiment = &s
	}

	ctx := cmd.Context()
	svc, err := startCLIService(cmd)
	if err != nil {
		return err
	}
	defer svc.Stop()

	res, err := svc.Analyze(ctx, review)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), res)
}

// startCLIService builds and starts a service for one-shot commands.
func startCLIService(cmd *cobra.Command) (*service.Service, error) {
	c := cfg
	if !useLearned {
		c = offlineConfig(cfg)
	}
	svc, err := buildService(cmd.Context(), c, logger.Get().Named("cli"))
	if err != nil {
		return nil, err
	}
	if err := svc.Start(cmd.Context()); err != nil {
		return nil, err
	}
	return svc, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
