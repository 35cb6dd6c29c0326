package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/llmd-format/llmd/pkg/llmd"
	"github.com/llmd-format/llmd/pkg/model"
)

var (
	createTitle        string
	createParticipants []string
)

// createCmd represents the create command
var createCmd = &cobra.Command{
	Use:   "create <file>",
	Short: "Create a sample LLMD file",
	Long: `Create an LLMD file containing a small sample conversation.

Example:
  llmd create demo.llmd --title "Demo" --participants user,assistant`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		now := time.Now().UTC().Truncate(time.Second)
		conv := model.New(model.Metadata{
			Version:      "0.1",
			CreatedAt:    now,
			Participants: createParticipants,
			Title:        createTitle,
			Language:     "en",
			Tags:         []string{"demo"},
		})
		conv.AppendMessage(model.Message{
			Role:      model.RoleUser,
			Content:   "Hello! Can you explain the LLMD format?",
			Timestamp: now,
		})
		msgID := conv.AppendMessage(model.Message{
			Role:      model.RoleAssistant,
			Content:   "LLMD is a container format for dialogue records: a binary header, YAML metadata, and an embedded SQLite store for the messages.",
			Timestamp: now.Add(5 * time.Second),
		})
		if _, err := conv.AddAttachment(msgID, model.Attachment{
			Filename:  "notes.txt",
			MediaType: "text/plain",
			Data:      []byte("See the format documentation for details."),
		}); err != nil {
			return err
		}

		writer := llmd.NewWriter(llmd.WriterConfig{AcceptRole: cfg.RoleFunc()})
		if err := writer.WriteFile(conv, args[0]); err != nil {
			return err
		}
		fmt.Printf("Wrote %s (%d messages, %d attachments)\n",
			args[0], len(conv.Messages()), len(conv.Attachments()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createCmd)
	createCmd.Flags().StringVar(&createTitle, "title", "Sample Conversation", "Conversation title")
	createCmd.Flags().StringSliceVar(&createParticipants, "participants", []string{"user", "assistant"}, "Participant identifiers")
}
