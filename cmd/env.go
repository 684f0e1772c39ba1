package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/daymark/internal/config"
	"github.com/Tiliavir/daymark/internal/logging"
	"github.com/Tiliavir/daymark/internal/session"
	"github.com/Tiliavir/daymark/internal/storage"
	"github.com/Tiliavir/daymark/internal/timecalc"
)

// osExit is replaced in tests.
var osExit = os.Exit

// dateFlag is shared by every command that works on a single day.
var dateFlag string

func addDateFlag(c *cobra.Command) {
	c.Flags().StringVar(&dateFlag, "date", "", "Day to work on (YYYY-MM-DD, default today)")
}

// env is the resolved configuration for one command run.
type env struct {
	cfg     config.Config
	dataDir string
	logger  *log.Logger
}

// loadEnv resolves the data directory and config. --data-dir wins over the
// config's storage.dir, which wins over ~/.daymark.
func loadEnv(cmd *cobra.Command) (*env, error) {
	base := dataDirFlag
	if base == "" {
		dir, err := storage.BaseDir()
		if err != nil {
			return nil, err
		}
		base = dir
	}

	cfgPath := configFlag
	if cfgPath == "" {
		cfgPath = config.FilePath(base)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
	}

	dataDir := base
	if dataDirFlag == "" && cfg.Storage.Dir != "" {
		dataDir = cfg.Storage.Dir
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level)
	if err != nil {
		logger.Warn("falling back to info level", "err", err)
	}
	return &env{cfg: cfg, dataDir: dataDir, logger: logger}, nil
}

// fail reports a storage error and exits with status 2.
func fail(cmd *cobra.Command, err error) {
	fmt.Fprintln(cmd.ErrOrStderr(), err)
	osExit(2)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// withSession opens the configured store, loads the --date day and runs fn.
// Pending saves are flushed before returning. Storage failures exit with
// status 2; errors returned by fn are usage errors.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, e *env, sess *session.Session) error) error {
	if dateFlag != "" {
		if _, err := timecalc.ParseDate(dateFlag); err != nil {
			return err
		}
	}

	e, err := loadEnv(cmd)
	if err != nil {
		fail(cmd, err)
		return err
	}
	gw, closer, err := storage.Open(e.cfg.Storage.Backend, e.dataDir)
	if err != nil {
		fail(cmd, err)
		return err
	}
	defer closer.Close()

	ctx := commandContext(cmd)
	sess := session.New(gw, session.WithLogger(e.logger))
	if dateFlag != "" {
		err = sess.SetDate(ctx, dateFlag)
	} else {
		err = sess.Load(ctx)
	}
	if err != nil {
		_ = sess.Close()
		fail(cmd, err)
		return err
	}

	runErr := fn(ctx, e, sess)
	if err := sess.Close(); err != nil {
		err = fmt.Errorf("saving: %w", err)
		fail(cmd, err)
		return err
	}
	return runErr
}
