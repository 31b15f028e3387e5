package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/microsoft/go-mssqldb"

	"github.com/pacific-emis/emisctl/internal/logging"
	"github.com/pacific-emis/emisctl/internal/retry"
	"github.com/pacific-emis/emisctl/pkg/emis"
)

// Handle limits. emisctl issues one statement at a time, so the pool stays small.
const (
	DefaultMaxOpenConns    = 5
	DefaultMaxIdleConns    = 1
	DefaultConnMaxIdleTime = 30 * time.Minute
)

func configureDB(db *sqlx.DB) {
	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxIdleTime(DefaultConnMaxIdleTime)
}

func newRetryExecutor(logger emis.Logger, target string) *retry.Executor {
	classifier := retry.NewSQLErrorClassifier()
	strategy := retry.NewExponentialBackoff(emis.DefaultRetryMaxAttempts,
		retry.WithInitialDelay(emis.DefaultRetryInitialDelay),
		retry.WithMaxDelay(emis.DefaultRetryMaxDelay),
	)
	return retry.NewExecutor(classifier, strategy).WithOnRetry(func(attempt int, err error, delay time.Duration) {
		logger.Verbose("connect to %s failed (attempt %d), retrying in %v: %v", target, attempt+1, delay, err)
	})
}

// StandardConnector connects with username and password, retrying transient failures.
type StandardConnector struct {
	config        *emis.ConnectionConfig
	retryExecutor *retry.Executor
}

// NewStandardConnector creates a StandardConnector. A nil logger discards retry notices.
func NewStandardConnector(config *emis.ConnectionConfig, logger emis.Logger) *StandardConnector {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &StandardConnector{
		config:        config,
		retryExecutor: newRetryExecutor(logger, describe(config)),
	}
}

// Connect opens and pings a handle for the configured dialect.
func (c *StandardConnector) Connect(ctx context.Context) (*sqlx.DB, error) {
	var db *sqlx.DB
	dsn := BuildDSN(c.config)

	err := c.retryExecutor.Execute(ctx, func(ctx context.Context) error {
		conn, err := sqlx.ConnectContext(ctx, driverName(c.config.Dialect), dsn)
		if err != nil {
			return wrapConnectionError(err, c.config)
		}
		configureDB(conn)
		db = conn
		return nil
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// NewConnector creates the Connector matching config.AuthMethod.
func NewConnector(config *emis.ConnectionConfig, logger emis.Logger) (emis.Connector, error) {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	switch config.AuthMethod {
	case emis.AuthMethodStandard:
		return NewStandardConnector(config, logger), nil
	case emis.AuthMethodAzureEntraID:
		return newAzureConnector(config, logger)
	case emis.AuthMethodAWSIAM:
		return newAWSConnector(config, logger)
	case emis.AuthMethodGoogleIAM:
		return newGoogleConnector(config)
	default:
		return nil, fmt.Errorf("unsupported auth method %v: %w", config.AuthMethod, emis.ErrUnsupportedAuthMethod)
	}
}

// wrapConnectionError adds guidance to common driver failures and marks them as connection errors.
func wrapConnectionError(err error, cfg *emis.ConnectionConfig) error {
	msg := strings.ToLower(err.Error())
	addr := hostPort(cfg)

	switch {
	case strings.Contains(msg, "connection refused") || strings.Contains(msg, "actively refused"):
		return fmt.Errorf(`connection refused to %s

Possible causes:
  - The database server is not running
  - Wrong sqlserver_ip or sqlserver_port
  - Firewall blocking the connection

%w: %w`, addr, emis.ErrConnectionFailed, err)

	case strings.Contains(msg, "no such host"):
		return fmt.Errorf(`cannot resolve host %q

Possible causes:
  - sqlserver_ip is misspelled
  - DNS is not configured or reachable

%w: %w`, cfg.Host, emis.ErrConnectionFailed, err)

	case strings.Contains(msg, "login failed") || strings.Contains(msg, "password authentication failed"):
		return fmt.Errorf(`login failed for user %q on database %q

Possible causes:
  - Wrong sqlserver_user or sqlserver_pwd
  - The login has no access to the database

%w: %w`, cfg.Username, cfg.Database, emis.ErrConnectionFailed, err)

	case strings.Contains(msg, "cannot open database") || strings.Contains(msg, "does not exist"):
		return fmt.Errorf(`database %q is not available on %s

Check sqlserver_db in the configuration file.

%w: %w`, cfg.Database, addr, emis.ErrConnectionFailed, err)

	case strings.Contains(msg, "timeout") || strings.Contains(msg, "timed out"):
		return fmt.Errorf(`connection timed out to %s

Possible causes:
  - Server is overloaded or unresponsive
  - Firewall silently dropping packets
  - Wrong host/port (server not listening)

%w: %w`, addr, emis.ErrConnectionFailed, err)

	case strings.Contains(msg, "tls") || strings.Contains(msg, "ssl") || strings.Contains(msg, "certificate"):
		return fmt.Errorf(`TLS handshake with %s failed

Possible causes:
  - Server requires encryption but db_encrypt disables it
  - Certificate is not trusted

%w: %w`, addr, emis.ErrConnectionFailed, err)

	default:
		return fmt.Errorf("%w: %w", emis.ErrConnectionFailed, err)
	}
}
