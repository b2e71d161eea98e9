package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	searchSession string
	searchLimit   int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search recorded conversations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		var scope *string
		if searchSession != "" {
			scope = &searchSession
		}
		matches, err := a.sessions.Search(args[0], scope, searchLimit)
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			fmt.Println("No matches.")
			return nil
		}
		for _, m := range matches {
			fmt.Printf("[%s] session=%s relevance=%d\n  U: %s\n  A: %s\n",
				m.Timestamp.Format("2006-01-02 15:04"), m.SessionID, m.Relevance,
				truncate(m.UserText, 120), truncate(m.ResponseText, 120))
		}
		return nil
	},
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

func init() {
	searchCmd.Flags().StringVarP(&searchSession, "session", "s", "", "restrict to one session")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 20, "maximum results")
}
