package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pacific-emis/emisctl/pkg/emis"
)

const fullJSON = `{
  "sqlserver_name": "SQL01",
  "sqlserver_db": "emis",
  "sqlserver_ip": "10.0.0.5",
  "sqlserver_port": 1433,
  "sqlserver_user": "loader",
  "sqlserver_pwd": "secret",
  "base_url": "https://emis.example.org",
  "username": "me@example.org",
  "password": "pw",
  "output_directory": "out",
  "cpd_directory": "cpd",
  "un_pop_division_api_token": "tok"
}`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func noEnv(string) (string, bool) { return "", false }

func TestLoad_AllFields(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.json", fullJSON))
	require.NoError(t, err)

	assert.Equal(t, "SQL01", cfg.SQLServerName)
	assert.Equal(t, "emis", cfg.SQLServerDB)
	assert.Equal(t, "10.0.0.5", cfg.SQLServerIP)
	assert.Equal(t, Scalar("1433"), cfg.SQLServerPort)
	assert.Equal(t, "loader", cfg.SQLServerUser)
	assert.Equal(t, "secret", cfg.SQLServerPwd)
	assert.Equal(t, "https://emis.example.org", cfg.BaseURL)
	assert.Equal(t, "out", cfg.OutputDirectory)
	assert.Equal(t, "cpd", cfg.CPDDirectory)
	assert.Equal(t, "tok", cfg.UNPopDivisionAPIToken)
	assert.NoError(t, cfg.Require(DatabaseKeys...))
	assert.NoError(t, cfg.Require(APIKeys...))
}

func TestLoad_PortAsString(t *testing.T) {
	cfg, err := Parse([]byte(`{"sqlserver_port": "14330"}`), ".json")
	require.NoError(t, err)
	assert.Equal(t, Scalar("14330"), cfg.SQLServerPort)
}

func TestLoad_YAML(t *testing.T) {
	content := `sqlserver_db: emis
sqlserver_ip: localhost
sqlserver_port: 5432
db_dialect: postgres
base_url: http://localhost:8080
`
	cfg, err := Load(writeConfig(t, "config.yaml", content))
	require.NoError(t, err)
	assert.Equal(t, "emis", cfg.SQLServerDB)
	assert.Equal(t, Scalar("5432"), cfg.SQLServerPort)
	assert.Equal(t, "postgres", cfg.DBDialect)
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.json"))
	assert.True(t, errors.Is(err, ErrConfigNotFound), "expected ErrConfigNotFound, got: %v", err)
	assert.Nil(t, cfg)
}

func TestLoad_InvalidJSON(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.json", "{{invalid"))
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestParse_EmptyFile(t *testing.T) {
	cfg, err := Parse(nil, ".json")
	require.NoError(t, err)
	assert.Equal(t, Config{}, *cfg)
}

func TestRequire_ListsEveryMissingKey(t *testing.T) {
	cfg := &Config{BaseURL: "https://emis"}
	err := cfg.Require(APIKeys...)
	require.Error(t, err)
	assert.ErrorIs(t, err, emis.ErrMissingConfigKey)
	assert.Contains(t, err.Error(), "password")
	assert.Contains(t, err.Error(), "username")
	assert.NotContains(t, err.Error(), "base_url")
	assert.Equal(t, emis.ExitConfigError, emis.ExitCodeForError(err))
}

func TestRequire_UnknownKeyIsMissing(t *testing.T) {
	cfg := &Config{}
	assert.ErrorIs(t, cfg.Require("no_such_key"), emis.ErrMissingConfigKey)
}

func TestApplyEnv_OverridesFileValues(t *testing.T) {
	cfg, err := Parse([]byte(fullJSON), ".json")
	require.NoError(t, err)

	env := map[string]string{
		"EMIS_SQLSERVER_PWD":    "from-env",
		"EMIS_API_INSECURE_TLS": "true",
	}
	require.NoError(t, cfg.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}))
	assert.Equal(t, "from-env", cfg.SQLServerPwd)
	assert.True(t, cfg.APIInsecureTLS)
	assert.Equal(t, "loader", cfg.SQLServerUser)
}

func TestApplyEnv_BadBool(t *testing.T) {
	cfg := &Config{}
	err := cfg.ApplyEnv(func(k string) (string, bool) {
		if k == "EMIS_API_INSECURE_TLS" {
			return "maybe", true
		}
		return "", false
	})
	assert.ErrorIs(t, err, emis.ErrInvalidConfig)
}

func TestConnection_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(fullJSON), ".json")
	require.NoError(t, err)
	require.NoError(t, cfg.ApplyEnv(noEnv))

	conn, err := cfg.Connection()
	require.NoError(t, err)
	assert.Equal(t, emis.DialectSQLServer, conn.Dialect)
	assert.Equal(t, emis.AuthMethodStandard, conn.AuthMethod)
	assert.Equal(t, 1433, conn.Port)
	assert.Equal(t, "10.0.0.5", conn.Host)
	assert.True(t, conn.TrustServerCertificate)
}

func TestConnection_PostgresDefaultPort(t *testing.T) {
	cfg := &Config{SQLServerDB: "emis", SQLServerIP: "db", SQLServerUser: "u", DBDialect: "postgres"}
	conn, err := cfg.Connection()
	require.NoError(t, err)
	assert.Equal(t, 5432, conn.Port)
}

func TestConnection_BadPort(t *testing.T) {
	cfg := &Config{SQLServerDB: "emis", SQLServerIP: "db", SQLServerUser: "u", SQLServerPort: "abc"}
	_, err := cfg.Connection()
	assert.ErrorIs(t, err, emis.ErrInvalidConfig)
}

func TestConnection_AWSRequiresPostgres(t *testing.T) {
	cfg := &Config{SQLServerDB: "emis", SQLServerIP: "db", SQLServerUser: "u", DBAuthMethod: "aws"}
	_, err := cfg.Connection()
	assert.ErrorIs(t, err, emis.ErrUnsupportedAuthMethod)
}

func TestDefaults(t *testing.T) {
	cfg := &Config{Username: "api-user", OutputDirectory: "out"}
	assert.Equal(t, emis.DefaultCacheDirectory, cfg.CacheDir())
	assert.Equal(t, "out", cfg.PopulationDir())
	assert.Equal(t, "api-user", cfg.UploadUser())

	cfg.CPDUser = "loader@example.org"
	assert.Equal(t, "loader@example.org", cfg.UploadUser())
}

func TestRequiredDatabaseKeys(t *testing.T) {
	assert.Equal(t, DatabaseKeys, (&Config{}).RequiredDatabaseKeys())
	assert.Equal(t, DatabaseKeys, (&Config{DBAuthMethod: "bogus"}).RequiredDatabaseKeys())
	assert.Equal(t, []string{"sqlserver_db", "sqlserver_ip"}, (&Config{DBAuthMethod: "azure"}).RequiredDatabaseKeys())
	assert.Equal(t, []string{"sqlserver_db", "sqlserver_user", "google_instance"}, (&Config{DBAuthMethod: "google"}).RequiredDatabaseKeys())
}

func TestRequireUploadUser(t *testing.T) {
	err := (&Config{}).RequireUploadUser()
	assert.ErrorIs(t, err, emis.ErrMissingConfigKey)
	assert.ErrorContains(t, err, "cpd_user")

	assert.NoError(t, (&Config{Username: "api"}).RequireUploadUser())
	assert.NoError(t, (&Config{CPDUser: "loader"}).RequireUploadUser())
}
