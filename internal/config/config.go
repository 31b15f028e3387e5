// Package config loads the emisctl configuration file.
//
// The file is JSON by default (config.json) and YAML when its extension is
// .yaml or .yml. Every key may be overridden by an EMIS_<KEY> environment
// variable, e.g. EMIS_SQLSERVER_PWD overrides sqlserver_pwd. Commands declare
// the keys they need with Require; a missing key is fatal before any work starts.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/pacific-emis/emisctl/pkg/emis"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// EnvPrefix prefixes environment overrides.
const EnvPrefix = "EMIS_"

// Config mirrors the keys of config.json.
type Config struct {
	SQLServerName string `json:"sqlserver_name" yaml:"sqlserver_name"`
	SQLServerDB   string `json:"sqlserver_db" yaml:"sqlserver_db"`
	SQLServerIP   string `json:"sqlserver_ip" yaml:"sqlserver_ip"`
	SQLServerPort Scalar `json:"sqlserver_port" yaml:"sqlserver_port"`
	SQLServerUser string `json:"sqlserver_user" yaml:"sqlserver_user"`
	SQLServerPwd  string `json:"sqlserver_pwd" yaml:"sqlserver_pwd"`

	DBDialect    string `json:"db_dialect,omitempty" yaml:"db_dialect,omitempty"`
	DBAuthMethod string `json:"db_auth_method,omitempty" yaml:"db_auth_method,omitempty"`
	DBEncrypt    string `json:"db_encrypt,omitempty" yaml:"db_encrypt,omitempty"`

	AzureTenantID  string `json:"azure_tenant_id,omitempty" yaml:"azure_tenant_id,omitempty"`
	AzureClientID  string `json:"azure_client_id,omitempty" yaml:"azure_client_id,omitempty"`
	AWSRegion      string `json:"aws_region,omitempty" yaml:"aws_region,omitempty"`
	GoogleInstance string `json:"google_instance,omitempty" yaml:"google_instance,omitempty"`

	BaseURL        string `json:"base_url" yaml:"base_url"`
	Username       string `json:"username" yaml:"username"`
	Password       string `json:"password" yaml:"password"`
	APIInsecureTLS bool   `json:"api_insecure_tls,omitempty" yaml:"api_insecure_tls,omitempty"`

	OutputDirectory     string `json:"output_directory" yaml:"output_directory"`
	CPDDirectory        string `json:"cpd_directory" yaml:"cpd_directory"`
	CacheDirectory      string `json:"cache_directory,omitempty" yaml:"cache_directory,omitempty"`
	PopulationDirectory string `json:"population_directory,omitempty" yaml:"population_directory,omitempty"`
	CPDUser             string `json:"cpd_user,omitempty" yaml:"cpd_user,omitempty"`

	UNPopDivisionAPIToken string `json:"un_pop_division_api_token" yaml:"un_pop_division_api_token"`
}

// Scalar is a string field that also accepts a bare JSON number, so
// "sqlserver_port": 1433 and "sqlserver_port": "1433" both decode.
type Scalar string

// UnmarshalJSON implements json.Unmarshaler.
func (s *Scalar) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = Scalar(str)
		return nil
	}
	if string(data) == "null" {
		*s = ""
		return nil
	}
	*s = Scalar(data)
	return nil
}

// Key sets required by each command.
var (
	DatabaseKeys   = []string{"sqlserver_db", "sqlserver_ip", "sqlserver_port", "sqlserver_user", "sqlserver_pwd"}
	APIKeys        = []string{"base_url", "username", "password"}
	PopulationKeys = []string{"un_pop_division_api_token"}
)

// Load reads the configuration file at path and applies environment overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrConfigNotFound)
		}
		return nil, err
	}

	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes configuration content. ext selects the format (".yaml", ".yml" or JSON otherwise).
func Parse(data []byte, ext string) (*Config, error) {
	var cfg Config
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	default:
		if len(strings.TrimSpace(string(data))) == 0 {
			return &cfg, nil
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// ApplyEnv overrides fields from EMIS_<KEY> variables using lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	v := reflect.ValueOf(c).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		key := jsonKey(t.Field(i))
		raw, ok := lookup(EnvPrefix + strings.ToUpper(key))
		if !ok {
			continue
		}
		f := v.Field(i)
		switch f.Kind() {
		case reflect.String:
			f.SetString(raw)
		case reflect.Bool:
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return fmt.Errorf("%s%s: %v: %w", EnvPrefix, strings.ToUpper(key), err, emis.ErrInvalidConfig)
			}
			f.SetBool(b)
		}
	}
	return nil
}

// Require returns an error naming every key in keys that has an empty value.
func (c *Config) Require(keys ...string) error {
	values := c.values()
	var missing []string
	for _, k := range keys {
		val, known := values[k]
		if !known || val == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("%s: %w", strings.Join(missing, ", "), emis.ErrMissingConfigKey)
}

// values returns the string form of every field keyed by its JSON name.
func (c *Config) values() map[string]string {
	out := make(map[string]string)
	v := reflect.ValueOf(c).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := v.Field(i)
		key := jsonKey(t.Field(i))
		switch f.Kind() {
		case reflect.String:
			out[key] = f.String()
		case reflect.Bool:
			if f.Bool() {
				out[key] = "true"
			} else {
				out[key] = ""
			}
		}
	}
	return out
}

func jsonKey(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	name, _, _ := strings.Cut(tag, ",")
	return name
}

// Connection builds the database connection parameters.
func (c *Config) Connection() (*emis.ConnectionConfig, error) {
	dialect, err := emis.ParseDialect(c.DBDialect)
	if err != nil {
		return nil, err
	}
	auth, err := emis.ParseAuthMethod(c.DBAuthMethod)
	if err != nil {
		return nil, err
	}

	port := 0
	if c.SQLServerPort != "" {
		port, err = strconv.Atoi(strings.TrimSpace(string(c.SQLServerPort)))
		if err != nil {
			return nil, fmt.Errorf("sqlserver_port %q is not a number: %w", c.SQLServerPort, emis.ErrInvalidConfig)
		}
	}
	if port == 0 {
		port = defaultPort(dialect)
	}

	conn := &emis.ConnectionConfig{
		Dialect:                dialect,
		Server:                 c.SQLServerName,
		Host:                   c.SQLServerIP,
		Port:                   port,
		Database:               c.SQLServerDB,
		Username:               c.SQLServerUser,
		Password:               c.SQLServerPwd,
		Encrypt:                c.DBEncrypt,
		TrustServerCertificate: true,
		AuthMethod:             auth,
		AppName:                "emisctl",
		AzureTenantID:          c.AzureTenantID,
		AzureClientID:          c.AzureClientID,
		AzureClientSecret:      os.Getenv("AZURE_CLIENT_SECRET"),
		AWSRegion:              c.AWSRegion,
		GoogleInstance:         c.GoogleInstance,
	}
	if err := conn.Validate(); err != nil {
		return nil, err
	}
	return conn, nil
}

func defaultPort(d emis.Dialect) int {
	if d == emis.DialectPostgres {
		return 5432
	}
	return 1433
}

// CacheDir returns the cache directory, defaulting to emis.DefaultCacheDirectory.
func (c *Config) CacheDir() string {
	if c.CacheDirectory != "" {
		return c.CacheDirectory
	}
	return emis.DefaultCacheDirectory
}

// PopulationDir returns where population artifacts are written, defaulting to the output directory.
func (c *Config) PopulationDir() string {
	if c.PopulationDirectory != "" {
		return c.PopulationDirectory
	}
	return c.OutputDirectory
}

// UploadUser returns the user recorded against CPD uploads, defaulting to the API username.
func (c *Config) UploadUser() string {
	if c.CPDUser != "" {
		return c.CPDUser
	}
	return c.Username
}

// RequireUploadUser fails when neither cpd_user nor username is set.
func (c *Config) RequireUploadUser() error {
	if c.UploadUser() == "" {
		return fmt.Errorf("cpd_user (or username): %w", emis.ErrMissingConfigKey)
	}
	return nil
}

// RequiredDatabaseKeys returns the keys the configured auth method needs.
// Token-based methods take no password; Cloud SQL is addressed by instance.
func (c *Config) RequiredDatabaseKeys() []string {
	auth, err := emis.ParseAuthMethod(c.DBAuthMethod)
	if err != nil {
		return DatabaseKeys
	}
	switch auth {
	case emis.AuthMethodGoogleIAM:
		return []string{"sqlserver_db", "sqlserver_user", "google_instance"}
	case emis.AuthMethodAzureEntraID, emis.AuthMethodAWSIAM:
		return []string{"sqlserver_db", "sqlserver_ip"}
	default:
		return DatabaseKeys
	}
}
