package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	addID       string
	addName     string
	addCategory string
	addTags     []string
	addContent  string
	addFile     string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a design pattern to the store",
	Long: `Add (or overwrite) a single design pattern. Content comes from --content
or from a file via --file. Re-adding an existing id replaces the record.

Examples:
  delm add --id btn-1 --category components --name "Primary Button" --file button.tsx
  delm add --id token-grid --category styles --name "Spacing Scale" --content ":root { --space-1: 4px; }"`,
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVar(&addID, "id", "", "pattern id (required)")
	addCmd.Flags().StringVar(&addName, "name", "", "human-readable pattern name (required)")
	addCmd.Flags().StringVar(&addCategory, "category", "", "pattern category (required)")
	addCmd.Flags().StringSliceVar(&addTags, "tags", nil, "comma-separated tags")
	addCmd.Flags().StringVar(&addContent, "content", "", "pattern content")
	addCmd.Flags().StringVar(&addFile, "file", "", "read pattern content from file")
	addCmd.MarkFlagRequired("id")
	addCmd.MarkFlagRequired("name")
	addCmd.MarkFlagRequired("category")
}

func runAdd(cmd *cobra.Command, args []string) error {
	if addContent == "" && addFile == "" {
		return fmt.Errorf("must specify either --content or --file")
	}
	if addContent != "" && addFile != "" {
		return fmt.Errorf("cannot specify both --content and --file")
	}

	content := addContent
	if addFile != "" {
		data, err := os.ReadFile(addFile)
		if err != nil {
			return fmt.Errorf("failed to read content file: %w", err)
		}
		content = string(data)
	}

	pipeline, cleanup, err := buildPipeline(GetConfig(), GetRootDir())
	if err != nil {
		return err
	}
	defer cleanup()

	if err := pipeline.AddPattern(addID, content, addCategory, addName, addTags); err != nil {
		return fmt.Errorf("failed to add pattern: %w", err)
	}

	fmt.Printf("Pattern %s added.\n", addID)
	return nil
}
