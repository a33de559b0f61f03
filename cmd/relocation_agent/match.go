package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/relocation-matcher/internal/matching"
	"github.com/jonathan/relocation-matcher/internal/observability"
	"github.com/jonathan/relocation-matcher/internal/regions"
	"github.com/jonathan/relocation-matcher/internal/schemas"
	"github.com/jonathan/relocation-matcher/internal/types"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Rank a catalog file against an answers file",
	Long:  "Scores every property in a catalog JSON file against diagnostic answers and writes the ranked, explained matches as JSON. Nothing is persisted.",
	RunE:  runMatch,
}

var (
	matchAnswers string
	matchCatalog string
	matchRegions string
	matchOutput  string
	matchLimit   int
	matchVerbose bool
)

func init() {
	matchCmd.Flags().StringVarP(&matchAnswers, "answers", "a", "", "Path to answers JSON file (required)")
	matchCmd.Flags().StringVarP(&matchCatalog, "catalog", "c", "", "Path to catalog JSON file (required)")
	matchCmd.Flags().StringVar(&matchRegions, "regions", "", "Path to a region table YAML file (defaults to the built-in table)")
	matchCmd.Flags().StringVarP(&matchOutput, "out", "o", "", "Path to output JSON file (defaults to stdout)")
	matchCmd.Flags().IntVar(&matchLimit, "limit", matching.DisplayLimit, "Maximum number of matches to output (at most 10)")
	matchCmd.Flags().BoolVarP(&matchVerbose, "verbose", "v", false, "Print a summary of the top matches to stderr")

	if err := matchCmd.MarkFlagRequired("answers"); err != nil {
		panic(fmt.Sprintf("failed to mark answers flag as required: %v", err))
	}
	if err := matchCmd.MarkFlagRequired("catalog"); err != nil {
		panic(fmt.Sprintf("failed to mark catalog flag as required: %v", err))
	}

	rootCmd.AddCommand(matchCmd)
}

// staticCatalog serves a catalog loaded from disk.
type staticCatalog []types.Property

func (c staticCatalog) ListProperties(context.Context) ([]types.Property, error) {
	return c, nil
}

func runMatch(cmd *cobra.Command, _ []string) error {
	table, err := regions.LoadOrDefault(matchRegions)
	if err != nil {
		return fmt.Errorf("failed to load region table: %w", err)
	}

	results, err := matchFiles(cmd.Context(), matchAnswers, matchCatalog, table, matchLimit)
	if err != nil {
		return err
	}
	if matchVerbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintMatches(results)
	}
	return writeJSONOutput(cmd, matchOutput, types.MatchResponse{Success: true, Properties: results})
}

// matchFiles loads and validates both inputs, then ranks the catalog.
func matchFiles(ctx context.Context, answersPath, catalogPath string, table *regions.Table, limit int) ([]types.ScoredProperty, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	answersContent, err := os.ReadFile(answersPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read answers file %s: %w", answersPath, err)
	}
	if err := schemas.Validate(schemas.AnswerSet, answersContent); err != nil {
		return nil, fmt.Errorf("invalid answers file %s: %w", answersPath, err)
	}
	var answers types.AnswerSet
	if err := json.Unmarshal(answersContent, &answers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal answers JSON: %w", err)
	}

	catalogContent, err := os.ReadFile(catalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", catalogPath, err)
	}
	if err := schemas.Validate(schemas.Catalog, catalogContent); err != nil {
		return nil, fmt.Errorf("invalid catalog file %s: %w", catalogPath, err)
	}
	var catalog []types.Property
	if err := json.Unmarshal(catalogContent, &catalog); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog JSON: %w", err)
	}

	// No sink: offline runs never persist.
	engine := matching.NewEngine(staticCatalog(catalog), nil, table, nil)
	ranked, err := engine.Match(ctx, uuid.Nil, answers)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// writeJSONOutput writes v as indented JSON to path, or to stdout when path is empty.
func writeJSONOutput(cmd *cobra.Command, path string, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output JSON: %w", err)
	}
	out = append(out, '\n')

	if path == "" {
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", path, err)
	}
	return nil
}
