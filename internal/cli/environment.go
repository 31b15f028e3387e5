package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pacific-emis/emisctl/internal/config"
	"github.com/pacific-emis/emisctl/internal/db"
	"github.com/pacific-emis/emisctl/internal/logging"
	"github.com/pacific-emis/emisctl/internal/tui"
	"github.com/pacific-emis/emisctl/internal/ui"
	"github.com/pacific-emis/emisctl/pkg/emis"
)

// environment is what every command needs after startup.
type environment struct {
	cfg    *config.Config
	logger emis.Logger
	out    io.Writer
	close  func()
}

// newEnvironment loads .env, builds the logger, then loads the configuration
// file and checks required keys.
func newEnvironment(cmd *cobra.Command, required ...string) (*environment, error) {
	_ = godotenv.Load()

	logger, closeLogger, err := newLogger(rootFlags.logFormat, rootFlags.verbose)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(rootFlags.configPath)
	if err != nil {
		closeLogger()
		return nil, fmt.Errorf("%w: %w", emis.ErrInvalidConfig, err)
	}
	if err := cfg.Require(required...); err != nil {
		closeLogger()
		return nil, err
	}
	logger.Verbose("Loaded configuration from %s", rootFlags.configPath)
	return &environment{cfg: cfg, logger: logger, out: cmd.OutOrStdout(), close: closeLogger}, nil
}

func newLogger(format string, verbose bool) (emis.Logger, func(), error) {
	switch format {
	case logFormatText, "":
		return logging.NewConsoleLogger(verbose), func() {}, nil
	case logFormatJSON:
		zl, err := logging.NewZapLogger(verbose)
		if err != nil {
			return nil, nil, fmt.Errorf("create json logger: %w", err)
		}
		return zl, zl.Sync, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown --log-format %q (want text or json)", emis.ErrUsage, format)
	}
}

// commandContext is cancelled on SIGINT/SIGTERM and after --timeout.
// A --timeout of zero or less disables the deadline.
func commandContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	sigCtx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if rootFlags.timeout > 0 {
		ctx, cancel = context.WithTimeout(sigCtx, rootFlags.timeout)
	} else {
		ctx, cancel = context.WithCancel(sigCtx)
	}
	return ctx, func() {
		cancel()
		stop()
	}
}

// openStore connects to the configured database.
func (e *environment) openStore(ctx context.Context) (*db.Store, *emis.ConnectionConfig, func(), error) {
	if err := e.cfg.Require(e.cfg.RequiredDatabaseKeys()...); err != nil {
		return nil, nil, nil, err
	}
	conn, err := e.cfg.Connection()
	if err != nil {
		return nil, nil, nil, err
	}
	connector, err := db.NewConnector(conn, e.logger)
	if err != nil {
		return nil, nil, nil, err
	}
	handle, err := connector.Connect(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	return db.NewStore(handle, conn.Dialect), conn, closer(handle, connector), nil
}

func closer(handle *sqlx.DB, connector emis.Connector) func() {
	return func() {
		handle.Close()
		if c, ok := connector.(io.Closer); ok {
			c.Close()
		}
	}
}

// approve asks before writing into target. --yes or a non-interactive
// session without --yes decide without prompting.
func approve(ctx context.Context, yes bool, target, action string) error {
	var approver emis.Approver
	switch {
	case yes:
		approver = ui.NewAutoApprover()
	case tui.IsInteractive():
		approver = ui.NewInteractiveApprover()
	default:
		return fmt.Errorf("%w: refusing to %s on %s without --yes in a non-interactive session", emis.ErrApprovalDenied, action, target)
	}

	ok, err := approver.RequestApproval(ctx, target, action)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s on %s", emis.ErrApprovalDenied, action, target)
	}
	return nil
}

// bulkError reports a bulk run with failed items. wrap classifies the exit code.
func bulkError(failed, total int, noun string, wrap error) error {
	if failed == 0 {
		return nil
	}
	if wrap != nil {
		return fmt.Errorf("%w: %d of %d %s failed", wrap, failed, total, noun)
	}
	return fmt.Errorf("%d of %d %s failed", failed, total, noun)
}
