package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	recordSession  string
	recordClassify bool
)

var recordCmd = &cobra.Command{
	Use:   "record <user-text> <response-text>",
	Short: "Record one interaction",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		id, err := a.recorder.Record(recordSession, args[0], args[1], nil, nil)
		if err != nil {
			return err
		}
		fmt.Printf("Recorded interaction %d in session %s\n", id, recordSession)

		if recordClassify {
			results, err := a.classifier.Classify(id)
			if err != nil {
				return err
			}
			for _, r := range results {
				fmt.Printf("  %d: confidence %.2f sentiment %+.2f priority %s\n",
					r.CategoryID, r.Confidence, r.Sentiment, r.Priority)
			}
		}
		return nil
	},
}

func init() {
	recordCmd.Flags().StringVarP(&recordSession, "session", "s", "default", "session ID")
	recordCmd.Flags().BoolVar(&recordClassify, "classify", false, "classify immediately instead of waiting for the coordinator")
}
