package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/llmd-format/llmd/pkg/llmd"
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <file>",
	Short: "Verify an LLMD file with the strictest checks",
	Long: `Verify parses the file with checksum verification and hard
timestamp ordering enabled and reports the first problem found.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		if err := llmd.Verify(data); err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		fmt.Printf("%s: ok\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
