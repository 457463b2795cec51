package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Show the number of stored patterns",
	RunE: func(cmd *cobra.Command, args []string) error {
		pipeline, cleanup, err := buildPipeline(GetConfig(), GetRootDir())
		if err != nil {
			return err
		}
		defer cleanup()

		count, err := pipeline.Count()
		if err != nil {
			return err
		}
		fmt.Println(count)
		return nil
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List configured pattern categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, c := range GetConfig().CategorySet().Names() {
			fmt.Println(c)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(countCmd)
	rootCmd.AddCommand(categoriesCmd)
}
