package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/llmd-format/llmd/pkg/llmd"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Show metadata and structure of an LLMD file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parser := llmd.NewParser(llmd.ParserConfig{
			StrictTimestamps: cfg.StrictTimestamps,
			VerifyChecksums:  cfg.VerifyChecksums,
			AcceptRole:       cfg.RoleFunc(),
		})
		conv, err := parser.ParseFile(args[0])
		if err != nil {
			return err
		}

		meta := conv.Metadata()
		fmt.Printf("File:         %s\n", args[0])
		fmt.Printf("Version:      %s\n", meta.Version)
		fmt.Printf("Created:      %s\n", meta.CreatedAt.Format(time.RFC3339))
		fmt.Printf("Participants: %s\n", strings.Join(meta.Participants, ", "))
		if meta.Title != "" {
			fmt.Printf("Title:        %s\n", meta.Title)
		}
		if meta.Language != "" {
			fmt.Printf("Language:     %s\n", meta.Language)
		}
		if len(meta.Tags) > 0 {
			fmt.Printf("Tags:         %s\n", strings.Join(meta.Tags, ", "))
		}
		fmt.Printf("Messages:     %d\n", len(conv.Messages()))
		fmt.Printf("Attachments:  %d\n", len(conv.Attachments()))

		for _, w := range parser.Warnings() {
			fmt.Printf("Warning: %s\n", w)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
