package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage backups",
}

var backupNowCmd = &cobra.Command{
	Use:   "now",
	Short: "Create a backup immediately",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		id, err := a.backups.Create()
		if err != nil {
			return err
		}
		fmt.Printf("Backup %s created\n", id)
		return nil
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backup history",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		records, err := a.store.ListBackups(20)
		if err != nil {
			return err
		}
		for _, b := range records {
			fmt.Printf("%-24s %-10s %8d bytes  %4d files  %s\n",
				b.BackupID, b.Status, b.SizeBytes, b.FileCount, b.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		fmt.Printf("%d backup(s)\n", len(records))
		return nil
	},
}

func init() {
	backupCmd.AddCommand(backupNowCmd)
	backupCmd.AddCommand(backupListCmd)
}
