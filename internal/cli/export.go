package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export <session-id>",
	Short: "Export a session transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		path, err := a.sessions.Export(args[0], exportFormat)
		if err != nil {
			return err
		}
		fmt.Printf("Exported %s to %s\n", args[0], path)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "export format (json or text)")
}
