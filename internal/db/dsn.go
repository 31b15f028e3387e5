package db

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/pacific-emis/emisctl/pkg/emis"
)

// Driver names registered by the imported database/sql drivers.
const (
	driverSQLServer = "sqlserver"
	driverPostgres  = "pgx"
)

func driverName(d emis.Dialect) string {
	if d == emis.DialectPostgres {
		return driverPostgres
	}
	return driverSQLServer
}

// BuildDSN renders the connection URL for the configured dialect.
// Credentials are omitted when Username is empty (token authentication).
func BuildDSN(cfg *emis.ConnectionConfig) string {
	if cfg.Dialect == emis.DialectPostgres {
		return buildPostgresDSN(cfg)
	}
	return buildSQLServerDSN(cfg)
}

func buildSQLServerDSN(cfg *emis.ConnectionConfig) string {
	q := url.Values{}
	q.Set("database", cfg.Database)
	if cfg.Encrypt != "" {
		q.Set("encrypt", cfg.Encrypt)
	}
	if cfg.TrustServerCertificate {
		q.Set("TrustServerCertificate", "true")
	}
	if cfg.AppName != "" {
		q.Set("app name", cfg.AppName)
	}
	if cfg.ConnectTimeout > 0 {
		q.Set("connection timeout", strconv.Itoa(int(cfg.ConnectTimeout.Seconds())))
	}

	u := &url.URL{
		Scheme:   "sqlserver",
		Host:     hostPort(cfg),
		RawQuery: q.Encode(),
	}
	if cfg.Username != "" {
		u.User = url.UserPassword(cfg.Username, cfg.Password)
	}
	return u.String()
}

func buildPostgresDSN(cfg *emis.ConnectionConfig) string {
	q := url.Values{}
	q.Set("sslmode", postgresSSLMode(cfg.Encrypt))
	if cfg.AppName != "" {
		q.Set("application_name", cfg.AppName)
	}
	if cfg.ConnectTimeout > 0 {
		q.Set("connect_timeout", strconv.Itoa(int(cfg.ConnectTimeout.Seconds())))
	}

	u := &url.URL{
		Scheme:   "postgres",
		Host:     hostPort(cfg),
		Path:     "/" + cfg.Database,
		RawQuery: q.Encode(),
	}
	if cfg.Username != "" {
		if cfg.Password != "" {
			u.User = url.UserPassword(cfg.Username, cfg.Password)
		} else {
			u.User = url.User(cfg.Username)
		}
	}
	return u.String()
}

// postgresSSLMode maps the SQL Server style encrypt setting onto an sslmode.
func postgresSSLMode(encrypt string) string {
	switch strings.ToLower(encrypt) {
	case "":
		return "prefer"
	case "true", "strict", "mandatory":
		return "require"
	case "false", "disable", "optional":
		return "disable"
	default:
		return encrypt
	}
}

func hostPort(cfg *emis.ConnectionConfig) string {
	return net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
}

// RedactDSN hides the password of a URL-form DSN for logging.
func RedactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "<unparseable dsn>"
	}
	return u.Redacted()
}

// describe returns a short "host:port/database" label used in messages.
func describe(cfg *emis.ConnectionConfig) string {
	if cfg.GoogleInstance != "" && cfg.Host == "" {
		return fmt.Sprintf("%s/%s", cfg.GoogleInstance, cfg.Database)
	}
	return fmt.Sprintf("%s/%s", hostPort(cfg), cfg.Database)
}
