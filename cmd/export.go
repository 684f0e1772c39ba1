package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/daymark/internal/session"
	"github.com/Tiliavir/daymark/internal/storage"
)

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write all days to a backup file",
	Long: `Write the whole store to a backup file. Without a file name the backup is
written to timetracker-backup-YYYY-MM-DD.json in the current directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace all days with the contents of a backup file",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	addDateFlag(exportCmd)
	addDateFlag(importCmd)
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "Output format: json, yaml (default from file extension)")
}

func runExport(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	format := storage.FormatFromPath(path)
	if exportFormat != "" {
		f, err := storage.ParseFormat(exportFormat)
		if err != nil {
			return err
		}
		format = f
	}

	return withSession(cmd, func(_ context.Context, _ *env, sess *session.Session) error {
		written, err := sess.Export(path, format)
		if err != nil {
			fail(cmd, err)
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", written)
		return nil
	})
}

func runImport(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(_ context.Context, _ *env, sess *session.Session) error {
		if err := sess.Import(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d days from %s\n", len(sess.Store()), args[0])
		return nil
	})
}
