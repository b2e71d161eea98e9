package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/wawagot/convlog/internal/config"
	"github.com/wawagot/convlog/internal/stats"
	"github.com/wawagot/convlog/internal/store"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("🏷️ convlog Version")
		fmt.Printf("Version: %s\n", version)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		printHeader("📊 convlog Status")
		fmt.Printf("Version: %s\n", version)

		configPath, err := config.ConfigPath()
		if err == nil {
			if _, err := os.Stat(configPath); err == nil {
				fmt.Println("Config:  ✓ Found (" + configPath + ")")
			} else {
				fmt.Println("Config:  ✗ Not found (defaults in use)")
			}
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()
		fmt.Println("Store:   ✓ " + a.cfg.Paths.DBPath)

		snap, err := stats.Collect(a.store)
		if err != nil {
			return err
		}

		fmt.Printf("Interactions: %d\n", snap.Interactions)
		fmt.Println("Sessions:")
		for status, n := range snap.Sessions {
			fmt.Printf("  %-10s %d\n", status, n)
		}
		fmt.Println("Event queue:")
		for status, n := range snap.QueueDepth {
			fmt.Printf("  %-10s %d\n", status, n)
		}
		if len(snap.Categories) > 0 {
			fmt.Println("Categories:")
			for _, c := range snap.Categories {
				fmt.Printf("  %-16s %4d matches  avg confidence %.2f\n", c.Category, c.MatchCount, c.AvgConfidence)
			}
		}
		if len(snap.Health) > 0 {
			fmt.Println("Components:")
			for _, h := range snap.Health {
				mark := "✓"
				if h.Status != store.HealthConnected {
					mark = "✗"
				}
				fmt.Printf("  %s %-16s attempts=%d errors=%d\n", mark, h.Component, h.ConnectionAttempts, h.ErrorCount)
			}
		}
		if len(snap.Backups) > 0 {
			fmt.Println("Recent backups:")
			for _, b := range snap.Backups {
				fmt.Printf("  %s  %s  %d files  %d bytes\n", b.BackupID, b.Status, b.FileCount, b.SizeBytes)
			}
		}
		return nil
	},
}
