package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/daymark/internal/ledger"
	"github.com/Tiliavir/daymark/internal/session"
)

var startCmd = &cobra.Command{
	Use:   "start [HH:MM]",
	Short: "Show or set the start time of the day",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStart,
}

func init() {
	addDateFlag(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(_ context.Context, _ *env, sess *session.Session) error {
		out := cmd.OutOrStdout()
		if len(args) == 0 {
			fmt.Fprintf(out, "%s starts at %s\n", sess.Date(), sess.Day().StartTime)
			return nil
		}
		if err := sess.SetStartTime(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s now starts at %s\n", sess.Date(), args[0])
		if day := sess.Day(); !ledger.ValidateOrder(&day) {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", ledger.ErrOutOfOrder)
		}
		return nil
	})
}
