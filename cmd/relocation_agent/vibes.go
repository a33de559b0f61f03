package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/relocation-matcher/internal/observability"
	"github.com/jonathan/relocation-matcher/internal/vibes"
)

var vibesCmd = &cobra.Command{
	Use:   "vibes",
	Short: "Neighborhood vibe tools",
}

var vibesAdjustCmd = &cobra.Command{
	Use:   "adjust",
	Short: "Derive time-of-day vibe scores from base scores",
	Long:  "Reads a JSON object of category to base score (0-100) and writes the adjusted scores for one period, or for all four periods when --period is omitted.",
	RunE:  runVibesAdjust,
}

var vibesCalculateCmd = &cobra.Command{
	Use:   "calculate",
	Short: "Ask the configured LLM for an area's vibe scores",
	RunE:  runVibesCalculate,
}

var (
	vibesBase    string
	vibesPeriod  string
	vibesOutput  string
	vibesArea    string
	vibesVerbose bool
)

func init() {
	vibesAdjustCmd.Flags().StringVarP(&vibesBase, "base", "b", "", "Path to base scores JSON file (required)")
	vibesAdjustCmd.Flags().StringVarP(&vibesPeriod, "period", "p", "", "Period: morning, daytime, evening or night (default all)")
	vibesAdjustCmd.Flags().StringVarP(&vibesOutput, "out", "o", "", "Path to output JSON file (defaults to stdout)")
	if err := vibesAdjustCmd.MarkFlagRequired("base"); err != nil {
		panic(fmt.Sprintf("failed to mark base flag as required: %v", err))
	}

	vibesCalculateCmd.Flags().StringVar(&vibesArea, "area", "", "Area name (required)")
	vibesCalculateCmd.Flags().StringVarP(&vibesOutput, "out", "o", "", "Path to output JSON file (defaults to stdout)")
	vibesCalculateCmd.Flags().BoolVarP(&vibesVerbose, "verbose", "v", false, "Print a score table to stderr")
	if err := vibesCalculateCmd.MarkFlagRequired("area"); err != nil {
		panic(fmt.Sprintf("failed to mark area flag as required: %v", err))
	}

	vibesCmd.AddCommand(vibesAdjustCmd, vibesCalculateCmd)
	rootCmd.AddCommand(vibesCmd)
}

func runVibesAdjust(cmd *cobra.Command, _ []string) error {
	result, err := adjustFile(vibesBase, vibesPeriod)
	if err != nil {
		return err
	}
	return writeJSONOutput(cmd, vibesOutput, result)
}

// adjustFile returns map[category]int for a single period, or
// map[period]map[category]int when period is empty.
func adjustFile(path, period string) (any, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read base scores file %s: %w", path, err)
	}

	var base map[string]float64
	if err := json.Unmarshal(content, &base); err != nil {
		return nil, fmt.Errorf("base scores must be a JSON object of numbers: %w", err)
	}

	if period == "" {
		return vibes.AdjustAll(base), nil
	}
	p, err := vibes.ParsePeriod(period)
	if err != nil {
		return nil, err
	}
	adjusted, err := vibes.Adjust(base, p)
	if err != nil {
		return nil, err
	}
	return adjusted, nil
}

func runVibesCalculate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	log := zap.NewNop()

	source, closeLLM, err := buildVibeSource(ctx, log)
	if err != nil {
		return err
	}
	defer closeLLM()
	if source == nil {
		return fmt.Errorf("no LLM API key configured (set GEMINI_API_KEY or OPENAI_API_KEY)")
	}

	assessment, err := source.Assess(ctx, vibesArea)
	if err != nil {
		return err
	}
	if vibesVerbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintVibes(assessment)
	}
	return writeJSONOutput(cmd, vibesOutput, assessment)
}
