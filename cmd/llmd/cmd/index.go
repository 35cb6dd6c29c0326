package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/llmd-format/llmd/pkg/catalog"
)

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index <dir>",
	Short: "Index the LLMD files under a directory into the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.Open(cfg.CatalogDir)
		if err != nil {
			return err
		}
		defer cat.Close()

		indexed, skipped, err := cat.IndexDir(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Indexed %d file(s)\n", indexed)
		for _, s := range skipped {
			fmt.Printf("Skipped %s\n", s)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
