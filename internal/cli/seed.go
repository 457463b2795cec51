package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	seedDir  string
	seedGlob string
)

// seedFile is the on-disk format for curated pattern bundles.
type seedFile struct {
	Patterns []seedPattern `yaml:"patterns"`
}

type seedPattern struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Category string   `yaml:"category"`
	Tags     []string `yaml:"tags"`
	Content  string   `yaml:"content"`
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Bulk-load pattern files into the store",
	Long: `Load curated pattern bundles from YAML files. Each file holds a list of
patterns; existing ids are overwritten.

Examples:
  delm seed --patterns ./patterns
  delm seed --patterns ./catalog --glob "components/**/*.yaml"`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().StringVar(&seedDir, "patterns", "", "directory with pattern YAML files (required)")
	seedCmd.Flags().StringVar(&seedGlob, "glob", "**/*.{yaml,yml}", "glob for pattern files within the directory")
	seedCmd.MarkFlagRequired("patterns")
}

func runSeed(cmd *cobra.Command, args []string) error {
	info, err := os.Stat(seedDir)
	if err != nil {
		return fmt.Errorf("patterns directory does not exist: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", seedDir)
	}

	matches, err := doublestar.Glob(os.DirFS(seedDir), seedGlob)
	if err != nil {
		return fmt.Errorf("invalid glob: %w", err)
	}
	if len(matches) == 0 {
		fmt.Println("No pattern files found.")
		return nil
	}

	patterns, err := loadSeedFiles(os.DirFS(seedDir), matches)
	if err != nil {
		return err
	}
	if len(patterns) == 0 {
		fmt.Println("Pattern files contained no patterns.")
		return nil
	}

	pipeline, cleanup, err := buildPipeline(GetConfig(), GetRootDir())
	if err != nil {
		return err
	}
	defer cleanup()

	bar := progressbar.Default(int64(len(patterns)), "seeding")

	added := 0
	var failures []string
	for _, p := range patterns {
		if err := pipeline.AddPattern(p.ID, p.Content, p.Category, p.Name, p.Tags); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", p.ID, err))
		} else {
			added++
		}
		bar.Add(1)
	}

	fmt.Printf("\nSeeded %d/%d patterns.\n", added, len(patterns))
	for _, f := range failures {
		fmt.Printf("  failed %s\n", f)
	}
	if len(failures) > 0 {
		return fmt.Errorf("%d patterns failed to seed", len(failures))
	}
	return nil
}

func loadSeedFiles(fsys fs.FS, paths []string) ([]seedPattern, error) {
	var patterns []seedPattern
	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		var file seedFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
		patterns = append(patterns, file.Patterns...)
	}
	return patterns, nil
}
