package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	genPrompt   string
	genType     string
	genCategory string
	genJSON     bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate UI code grounded on stored patterns",
	Long: `Generate a component, stylesheet, or layout. Relevant patterns are
retrieved, packed into the prompt context, and the generative model is asked
to follow them.

Examples:
  delm generate -p "a pricing card with three tiers" --type component
  delm generate -p "dark mode color tokens" --type styles --category styles --json`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVarP(&genPrompt, "prompt", "p", "", "generation prompt (required)")
	generateCmd.Flags().StringVarP(&genType, "type", "t", "component", "generation type: component, styles, or layout")
	generateCmd.Flags().StringVar(&genCategory, "category", "", "restrict retrieval to a category")
	generateCmd.Flags().BoolVar(&genJSON, "json", false, "output as JSON")
	generateCmd.MarkFlagRequired("prompt")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	pipeline, cleanup, err := buildPipeline(GetConfig(), GetRootDir())
	if err != nil {
		return err
	}
	defer cleanup()

	outcome, err := pipeline.Generate(genPrompt, genType, genCategory)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	if genJSON {
		output, _ := json.MarshalIndent(outcome, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Println(outcome.Output)
	if outcome.PatternsUsed > 0 {
		fmt.Printf("\n// grounded on %d patterns: %s\n", outcome.PatternsUsed, strings.Join(outcome.PatternIDs, ", "))
	}
	return nil
}
