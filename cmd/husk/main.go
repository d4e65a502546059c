package main

import (
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "husk",
		Short: "Parser and completion tooling for the husk language",
	}

	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newCompleteCmd())
	rootCmd.AddCommand(newLSPCmd())
	rootCmd.AddCommand(newWatchCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
