package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/daymark/internal/ledger"
	"github.com/Tiliavir/daymark/internal/session"
	"github.com/Tiliavir/daymark/internal/timecalc"
)

var (
	addTime      string
	addImportant bool
)

var addCmd = &cobra.Command{
	Use:   "add [description]",
	Short: "Append an event to the day",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAdd,
}

var setCmd = &cobra.Command{
	Use:   "set <id> <description|time|important> <value>",
	Short: "Change one field of an event",
	Args:  cobra.ExactArgs(3),
	RunE:  runSet,
}

var toggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Flip the important flag of an event",
	Args:  cobra.ExactArgs(1),
	RunE:  runToggle,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove an event",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	for _, c := range []*cobra.Command{addCmd, setCmd, toggleCmd, deleteCmd} {
		addDateFlag(c)
	}
	addCmd.Flags().StringVar(&addTime, "time", "", "Completion time (HH:MM)")
	addCmd.Flags().BoolVar(&addImportant, "important", false, "Mark the event as important")
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid event id %q", s)
	}
	return id, nil
}

// warnOrder prints the order warning; the edit itself is kept.
func warnOrder(cmd *cobra.Command, err error) error {
	if errors.Is(err, ledger.ErrOutOfOrder) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
		return nil
	}
	return err
}

func runAdd(cmd *cobra.Command, args []string) error {
	if addTime != "" && !timecalc.ValidClock(addTime) {
		return fmt.Errorf("%w: %q", timecalc.ErrInvalidClock, addTime)
	}
	return withSession(cmd, func(_ context.Context, _ *env, sess *session.Session) error {
		ev := sess.AddEvent()
		if len(args) == 1 {
			if _, err := sess.UpdateEvent(ev.ID, ledger.FieldDescription, args[0]); err != nil {
				return err
			}
		}
		if addImportant {
			sess.ToggleImportant(ev.ID)
		}
		if addTime != "" {
			if _, err := sess.UpdateEvent(ev.ID, ledger.FieldTime, addTime); err != nil {
				if err := warnOrder(cmd, err); err != nil {
					return err
				}
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added event %d on %s\n", ev.ID, sess.Date())
		return nil
	})
}

func runSet(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	field, err := ledger.ParseField(args[1])
	if err != nil {
		return err
	}
	return withSession(cmd, func(_ context.Context, _ *env, sess *session.Session) error {
		changed, err := sess.UpdateEvent(id, field, args[2])
		if err := warnOrder(cmd, err); err != nil {
			return err
		}
		if !changed {
			return fmt.Errorf("no event %d on %s", id, sess.Date())
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s of event %d\n", field, id)
		return nil
	})
}

func runToggle(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	return withSession(cmd, func(_ context.Context, _ *env, sess *session.Session) error {
		if !sess.ToggleImportant(id) {
			return fmt.Errorf("no event %d on %s", id, sess.Date())
		}
		state := "not important"
		for _, ev := range sess.Day().Events {
			if ev.ID == id && ev.Important {
				state = "important"
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Event %d is now %s\n", id, state)
		return nil
	})
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	return withSession(cmd, func(_ context.Context, _ *env, sess *session.Session) error {
		if !sess.DeleteEvent(id) {
			return fmt.Errorf("no event %d on %s", id, sess.Date())
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted event %d\n", id)
		return nil
	})
}
