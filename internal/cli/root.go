package cli

import (
	"fmt"
	"os"

	"delm/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
)

var rootCmd = &cobra.Command{
	Use:   "delm",
	Short: "DELM - retrieval-augmented UI code generation",
	Long: `delm maintains a store of curated UI design patterns and uses them to
ground a generative model: prompts are answered with components, styles, or
layouts written in the style of the closest stored patterns.

Example usage:
  delm seed --patterns ./patterns     # Bulk-load curated patterns
  delm add --id btn-1 --category components --name Button --file button.tsx
  delm search -q "primary button"     # Find relevant patterns
  delm generate -p "a pricing card" --type component`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./delm.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}
