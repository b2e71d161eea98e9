package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// version can be overridden at build time via:
	// go build -ldflags "-X github.com/wawagot/convlog/internal/cli.version=1.2.3"
	version = "1.0.0"
	logo    = "\n" +
		"                       _             \n" +
		"   ___ ___  _ ____   _| | ___   __ _ \n" +
		"  / __/ _ \\| '_ \\ \\ / / |/ _ \\ / _` |\n" +
		" | (_| (_) | | | \\ V /| | (_) | (_| |\n" +
		"  \\___\\___/|_| |_|\\_/ |_|\\___/ \\__, |\n" +
		"                               |___/ \n"
)

var rootCmd = &cobra.Command{
	Use:   "convlog",
	Short: "convlog - Conversation knowledge and integration event system",
	Long:  color.CyanString(logo) + "\nRecords conversations, classifies them by topic, and coordinates integration events.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(backupCmd)
}
