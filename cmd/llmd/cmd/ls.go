package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/llmd-format/llmd/pkg/catalog"
)

// lsCmd represents the ls command
var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List the conversations in the catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.Open(cfg.CatalogDir)
		if err != nil {
			return err
		}
		defer cat.Close()

		entries, err := cat.List()
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("Catalog is empty; run 'llmd index <dir>' first.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PATH\tTITLE\tPARTICIPANTS\tMSGS\tCREATED")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
				e.Path, e.Title, strings.Join(e.Participants, ","),
				e.Messages, e.CreatedAt.Format("2006-01-02"))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(lsCmd)
}
