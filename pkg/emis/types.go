package emis

import (
	"errors"
	"fmt"
	"time"
)

// Dialect selects the SQL engine the EMIS database runs on.
type Dialect string

const (
	DialectSQLServer Dialect = "sqlserver"
	DialectPostgres  Dialect = "postgres"
)

// ParseDialect maps a configuration value to a Dialect. Empty means SQL Server.
func ParseDialect(s string) (Dialect, error) {
	switch s {
	case "", "sqlserver", "mssql":
		return DialectSQLServer, nil
	case "postgres", "postgresql", "pgx":
		return DialectPostgres, nil
	default:
		return "", fmt.Errorf("unknown database dialect %q: %w", s, ErrInvalidConfig)
	}
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard     AuthMethod = iota // Username/Password
	AuthMethodAzureEntraID                   // Azure Active Directory (Entra ID)
	AuthMethodAWSIAM                         // AWS IAM Database Authentication
	AuthMethodGoogleIAM                      // Google Cloud SQL IAM
)

// ParseAuthMethod maps a configuration value to an AuthMethod. Empty means standard.
func ParseAuthMethod(s string) (AuthMethod, error) {
	switch s {
	case "", "standard", "password":
		return AuthMethodStandard, nil
	case "azure", "entra":
		return AuthMethodAzureEntraID, nil
	case "aws", "aws-iam":
		return AuthMethodAWSIAM, nil
	case "google", "google-iam":
		return AuthMethodGoogleIAM, nil
	default:
		return 0, fmt.Errorf("unknown auth method %q: %w", s, ErrUnsupportedAuthMethod)
	}
}

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// ConnectionConfig represents resolved database connection parameters.
type ConnectionConfig struct {
	Dialect  Dialect
	Server   string // informational server name, e.g. "SQL01\\EMIS"
	Host     string
	Port     int
	Database string
	Username string
	Password string

	// Encrypt is passed to SQL Server as the encrypt option ("true", "false", "disable").
	// For Postgres it is used as sslmode.
	Encrypt                string
	TrustServerCertificate bool

	AuthMethod     AuthMethod
	AppName        string
	ConnectTimeout time.Duration

	// Azure Entra ID parameters. If tenant, client and secret are all set,
	// Service Principal authentication is used, otherwise DefaultAzureCredential.
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string

	AWSRegion      string
	GoogleInstance string
}

// Validate checks that the connection can be attempted.
// It returns a multi-error if multiple validation failures occur.
func (c *ConnectionConfig) Validate() error {
	var errs []error

	if c.Host == "" && c.AuthMethod != AuthMethodGoogleIAM {
		errs = append(errs, fmt.Errorf("database host is required: %w", ErrInvalidConfig))
	}
	if c.Database == "" {
		errs = append(errs, fmt.Errorf("database name is required: %w", ErrInvalidConfig))
	}
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range: %w", c.Port, ErrInvalidConfig))
	}
	if c.AuthMethod == AuthMethodStandard && c.Username == "" {
		errs = append(errs, fmt.Errorf("database user is required: %w", ErrInvalidConfig))
	}
	if c.AuthMethod == AuthMethodAWSIAM && c.Dialect != DialectPostgres {
		errs = append(errs, fmt.Errorf("AWS IAM authentication requires the postgres dialect: %w", ErrUnsupportedAuthMethod))
	}
	if c.AuthMethod == AuthMethodGoogleIAM && c.Dialect != DialectPostgres {
		errs = append(errs, fmt.Errorf("Google IAM authentication requires the postgres dialect: %w", ErrUnsupportedAuthMethod))
	}

	return errors.Join(errs...)
}

// CPDLoad is one workbook ready to be handed to the CPD stored procedure.
type CPDLoad struct {
	// Source is the workbook path, used for logging only.
	Source string

	// XML is the serialized ListObject document.
	XML string

	// FileReference uniquely identifies this upload.
	FileReference string

	User    string
	CPDCode string
	CPDYear int

	// Checksum is the hex SHA-256 of the workbook file.
	Checksum string
}

// PopulationRecord is one row of the EMIS Population table.
type PopulationRecord struct {
	ModelCode string `json:"popmodCode" db:"popmodCode"`
	Year      int    `json:"popYear" db:"popYear"`
	Age       int    `json:"popAge" db:"popAge"`
	Male      int    `json:"popM" db:"popM"`
	Female    int    `json:"popF" db:"popF"`
}

// PopulationModel is one row of the EMIS PopulationModel table.
type PopulationModel struct {
	Code        string `json:"popmodCode" db:"popmodCode"`
	Name        string `json:"popmodName" db:"popmodName"`
	Description string `json:"popmodDesc" db:"popmodDesc"`
}
