package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/llmd-format/llmd/pkg/llmd"
)

var catTimestamps bool

// catCmd represents the cat command
var catCmd = &cobra.Command{
	Use:   "cat <file>",
	Short: "Print the messages of an LLMD file in dialogue order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parser := llmd.NewParser(llmd.ParserConfig{AcceptRole: cfg.RoleFunc()})
		conv, err := parser.ParseFile(args[0])
		if err != nil {
			return err
		}

		for _, msg := range conv.Messages() {
			if catTimestamps {
				fmt.Printf("[%s] ", msg.Timestamp.Format("2006-01-02 15:04:05"))
			}
			fmt.Printf("%s: %s\n", msg.Role, msg.Content)
			for _, attID := range msg.Attachments {
				fmt.Printf("  (attachment %s)\n", attID)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catCmd)
	catCmd.Flags().BoolVar(&catTimestamps, "timestamps", false, "Prefix each message with its timestamp")
}
