package db

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pacific-emis/emisctl/pkg/emis"
)

func TestBuildDSN_SQLServer(t *testing.T) {
	cfg := &emis.ConnectionConfig{
		Dialect:                emis.DialectSQLServer,
		Host:                   "10.0.0.5",
		Port:                   1433,
		Database:               "MIEMIS",
		Username:               "sa",
		Password:               "p@ss:word",
		Encrypt:                "disable",
		TrustServerCertificate: true,
		AppName:                "emisctl",
		ConnectTimeout:         30 * time.Second,
	}

	u, err := url.Parse(BuildDSN(cfg))
	require.NoError(t, err)

	assert.Equal(t, "sqlserver", u.Scheme)
	assert.Equal(t, "10.0.0.5:1433", u.Host)
	assert.Equal(t, "sa", u.User.Username())
	pwd, _ := u.User.Password()
	assert.Equal(t, "p@ss:word", pwd)

	q := u.Query()
	assert.Equal(t, "MIEMIS", q.Get("database"))
	assert.Equal(t, "disable", q.Get("encrypt"))
	assert.Equal(t, "true", q.Get("TrustServerCertificate"))
	assert.Equal(t, "emisctl", q.Get("app name"))
	assert.Equal(t, "30", q.Get("connection timeout"))
}

func TestBuildDSN_SQLServerWithoutCredentials(t *testing.T) {
	cfg := &emis.ConnectionConfig{Host: "db.example", Port: 1433, Database: "emis"}
	u, err := url.Parse(BuildDSN(cfg))
	require.NoError(t, err)
	assert.Nil(t, u.User)
}

func TestBuildDSN_Postgres(t *testing.T) {
	cfg := &emis.ConnectionConfig{
		Dialect:  emis.DialectPostgres,
		Host:     "localhost",
		Port:     5432,
		Database: "emis",
		Username: "postgres",
		Password: "secret",
		AppName:  "emisctl",
	}

	u, err := url.Parse(BuildDSN(cfg))
	require.NoError(t, err)
	assert.Equal(t, "postgres", u.Scheme)
	assert.Equal(t, "/emis", u.Path)
	assert.Equal(t, "prefer", u.Query().Get("sslmode"))
	assert.Equal(t, "emisctl", u.Query().Get("application_name"))
}

func TestPostgresSSLMode(t *testing.T) {
	tests := map[string]string{
		"":            "prefer",
		"true":        "require",
		"Mandatory":   "require",
		"false":       "disable",
		"disable":     "disable",
		"verify-full": "verify-full",
	}
	for in, want := range tests {
		assert.Equal(t, want, postgresSSLMode(in), "encrypt=%q", in)
	}
}

func TestRedactDSN(t *testing.T) {
	cfg := &emis.ConnectionConfig{Host: "h", Port: 1433, Database: "d", Username: "u", Password: "hunter2"}
	redacted := RedactDSN(BuildDSN(cfg))
	assert.NotContains(t, redacted, "hunter2")
	assert.Contains(t, redacted, "u:xxxxx@")
}

func TestDriverName(t *testing.T) {
	assert.Equal(t, "sqlserver", driverName(emis.DialectSQLServer))
	assert.Equal(t, "pgx", driverName(emis.DialectPostgres))
}
