package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/daymark/internal/ledger"
	"github.com/Tiliavir/daymark/internal/model"
	"github.com/Tiliavir/daymark/internal/msgraph"
	"github.com/Tiliavir/daymark/internal/session"
)

var (
	outlookSyncDryRun bool
	outlookSyncTZ     string
)

var outlookCmd = &cobra.Command{
	Use:   "outlook",
	Short: "Outlook calendar integration",
}

var outlookSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Import the day's Outlook meetings as events",
	Long: `Import busy, non-private meetings of one day from the Outlook calendar.
Each meeting becomes an event completed at its end time; high-importance
meetings are marked important. Meetings imported earlier are updated, not
duplicated.`,
	Args: cobra.NoArgs,
	RunE: runOutlookSync,
}

func init() {
	addDateFlag(outlookSyncCmd)
	outlookSyncCmd.Flags().BoolVar(&outlookSyncDryRun, "dry-run", false, "Print planned operations without writing")
	outlookSyncCmd.Flags().StringVar(&outlookSyncTZ, "timezone", "", "IANA timezone for event times (default from config)")
	outlookCmd.AddCommand(outlookSyncCmd)
}

func runOutlookSync(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, e *env, sess *session.Session) error {
		out := cmd.OutOrStdout()
		timezone := outlookSyncTZ
		if timezone == "" {
			timezone = e.cfg.Outlook.Timezone
		}
		from, to, err := msgraph.DayRange(sess.Date(), timezone)
		if err != nil {
			return err
		}

		dryTag := ""
		if outlookSyncDryRun {
			dryTag = " [dry-run]"
		}
		fmt.Fprintf(out, "Syncing Outlook events for %s%s...\n\n", sess.Date(), dryTag)

		auth := &msgraph.Auth{
			TenantID:  e.cfg.Outlook.TenantID,
			ClientID:  e.cfg.Outlook.ClientID,
			TokenPath: msgraph.TokenPath(e.dataDir),
			Out:       out,
			Logger:    e.logger,
		}
		client, err := auth.Client(ctx)
		if err != nil {
			return fmt.Errorf("authentication failed: %w", err)
		}
		events, err := client.GetCalendarView(ctx, from, to, timezone)
		if err != nil {
			return fmt.Errorf("failed to fetch calendar events: %w", err)
		}

		opts := msgraph.SyncOptions{
			Date:     sess.Date(),
			Timezone: timezone,
			DryRun:   outlookSyncDryRun,
			Out:      out,
		}
		var result msgraph.SyncResult
		sess.Mutate(func(day *model.DayRecord, ids *ledger.IDSource) bool {
			result = msgraph.SyncEvents(day, events, opts, ids)
			return !opts.DryRun && result.Changed()
		})

		fmt.Fprintln(out)
		fmt.Fprintln(out, "Summary:")
		fmt.Fprintf(out, "  %d imported\n", result.Imported)
		fmt.Fprintf(out, "  %d skipped\n", result.Skipped)
		fmt.Fprintf(out, "  %d updated\n", result.Updated)
		if result.Errors > 0 {
			return fmt.Errorf("%d calendar events could not be imported", result.Errors)
		}
		return nil
	})
}
