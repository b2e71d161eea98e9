// Package main is the entry point for the convlog CLI.
package main

import (
	"os"

	"github.com/wawagot/convlog/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
