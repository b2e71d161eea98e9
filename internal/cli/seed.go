package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Install the default category taxonomy",
	RunE: func(cmd *cobra.Command, args []string) error {
		printHeader("🌱 convlog Seed")
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.classifier.SeedDefaults(); err != nil {
			return err
		}
		cats, err := a.store.ListCategories()
		if err != nil {
			return err
		}
		fmt.Printf("Taxonomy ready: %d categories\n", len(cats))
		for _, c := range cats {
			fmt.Printf("  %-16s %s\n", c.Name, c.Description)
		}
		return nil
	},
}
