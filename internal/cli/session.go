package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage conversation sessions",
}

var sessionListStatus string

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		sessions, err := a.sessions.List(sessionListStatus, 100)
		if err != nil {
			return err
		}
		for _, s := range sessions {
			tagText := ""
			if len(s.Tags) > 0 {
				tagText = "  [" + strings.Join(s.Tags, ", ") + "]"
			}
			fmt.Printf("%-24s %-8s %s%s\n", s.SessionID, s.Status, s.Title, tagText)
		}
		fmt.Printf("%d session(s)\n", len(sessions))
		return nil
	},
}

var (
	sessionCreateTitle string
	sessionCreateDesc  string
)

var sessionCreateCmd = &cobra.Command{
	Use:   "create <session-id>",
	Short: "Create a session (no-op if it already exists)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.sessions.Create(args[0], sessionCreateTitle, sessionCreateDesc); err != nil {
			return err
		}
		fmt.Printf("Session %s ready\n", args[0])
		return nil
	},
}

var sessionTagCmd = &cobra.Command{
	Use:   "tag <session-id> <tag>",
	Short: "Attach a tag to a session",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.sessions.Tag(args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Tagged %s with %q\n", args[0], args[1])
		return nil
	},
}

var sessionArchiveCmd = &cobra.Command{
	Use:   "archive <session-id>",
	Short: "Archive a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.sessions.Archive(args[0]); err != nil {
			return err
		}
		fmt.Printf("Archived %s\n", args[0])
		return nil
	},
}

func init() {
	sessionListCmd.Flags().StringVar(&sessionListStatus, "status", "", "filter by status (active, archived)")
	sessionCreateCmd.Flags().StringVar(&sessionCreateTitle, "title", "", "session title")
	sessionCreateCmd.Flags().StringVar(&sessionCreateDesc, "description", "", "session description")
	sessionCmd.AddCommand(sessionListCmd)
	sessionCmd.AddCommand(sessionCreateCmd)
	sessionCmd.AddCommand(sessionTagCmd)
	sessionCmd.AddCommand(sessionArchiveCmd)
}
