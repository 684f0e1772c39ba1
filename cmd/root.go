package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	dataDirFlag string
	configFlag  string
)

var rootCmd = &cobra.Command{
	Use:   "daymark",
	Short: "daymark – a personal day ledger",
	Long: `daymark records what you finished during the day and when, flags the
important parts and reports how much of the day went to them.
All data is stored in ~/.daymark/ (records.json or daymark.db).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "Data directory (default ~/.daymark)")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Config file (default <data dir>/config.json)")

	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(outlookCmd)
}
