package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/llmd-format/llmd/pkg/config"
)

var (
	cfgPath string
	cfg     *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "llmd",
	Short: "llmd - tooling for LLMD conversation files",
	Long: `llmd creates, inspects and verifies LLMD files, the hybrid
container format for multi-turn dialogue records (binary header +
YAML metadata + embedded SQLite message store).`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgPath != "" {
			loaded, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			cfg = loaded
			return nil
		}
		if path := config.GetDefaultConfigPath(); config.ConfigExists(path) {
			loaded, err := config.LoadConfig(path)
			if err != nil {
				return err
			}
			cfg = loaded
			return nil
		}
		cfg = config.DefaultConfig()
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to a llmd config file")
}
