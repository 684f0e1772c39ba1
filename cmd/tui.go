package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/daymark/internal/logging"
	"github.com/Tiliavir/daymark/internal/session"
	"github.com/Tiliavir/daymark/internal/storage"
	"github.com/Tiliavir/daymark/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive day table",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

func init() {
	addDateFlag(tuiCmd)
}

// openTUILog opens the log file the UI writes to instead of the screen. An
// unknown level falls back to info, as it does for the other commands.
func openTUILog(e *env) (*log.Logger, *os.File, error) {
	logger, f, err := logging.OpenFile(e.cfg.LogPath(e.dataDir), e.cfg.Log.Level)
	if f == nil {
		return nil, nil, err
	}
	if err != nil {
		logger.Warn("falling back to info level", "err", err)
	}
	return logger, f, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		fail(cmd, err)
		return err
	}

	logger, logFile, err := openTUILog(e)
	if err != nil {
		return err
	}
	defer logFile.Close()

	gw, closer, err := storage.Open(e.cfg.Storage.Backend, e.dataDir)
	if err != nil {
		fail(cmd, err)
		return err
	}
	defer closer.Close()

	notices := make(chan session.Notice, 16)
	sess := session.New(gw,
		session.WithLogger(logger),
		session.WithNotify(func(n session.Notice) {
			select {
			case notices <- n:
			default:
				logger.Warn("notice dropped", "message", n.Message)
			}
		}),
	)

	ctx := commandContext(cmd)
	// Load failures degrade to an empty day and arrive as a notice.
	if dateFlag != "" {
		if err := sess.SetDate(ctx, dateFlag); err != nil {
			logger.Error("opening day", "date", dateFlag, "err", err)
		}
	} else {
		_ = sess.Load(ctx)
	}

	runErr := tui.Run(ctx, sess, notices)
	if err := sess.Close(); err != nil {
		fail(cmd, fmt.Errorf("saving: %w", err))
		return err
	}
	return runErr
}
