package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	mssql "github.com/microsoft/go-mssqldb"

	"github.com/pacific-emis/emisctl/internal/logging"
	"github.com/pacific-emis/emisctl/internal/retry"
	"github.com/pacific-emis/emisctl/pkg/emis"
)

// TokenBasedConnector authenticates with tokens from a TokenProvider.
// SQL Server asks the provider for a token on every physical connection
// (Azure credentials cache them). PostgreSQL receives the token as the password.
type TokenBasedConnector struct {
	config        *emis.ConnectionConfig
	tokenProvider TokenProvider
	retryExecutor *retry.Executor
	providerName  string
	logger        emis.Logger
}

// NewTokenBasedConnector creates a connector using tokenProvider.
// providerName appears in messages, e.g. "Azure" or "AWS IAM".
func NewTokenBasedConnector(config *emis.ConnectionConfig, tokenProvider TokenProvider, providerName string, logger emis.Logger) *TokenBasedConnector {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &TokenBasedConnector{
		config:        config,
		tokenProvider: tokenProvider,
		retryExecutor: newRetryExecutor(logger, describe(config)),
		providerName:  providerName,
		logger:        logger,
	}
}

func (c *TokenBasedConnector) Connect(ctx context.Context) (*sqlx.DB, error) {
	var db *sqlx.DB

	err := c.retryExecutor.Execute(ctx, func(ctx context.Context) error {
		token, expiresOn, err := c.tokenProvider.GetToken(ctx)
		if err != nil {
			return fmt.Errorf("failed to acquire %s token: %w: %w", c.providerName, emis.ErrAuthenticationFailed, err)
		}
		if left := time.Until(expiresOn); left < 5*time.Minute {
			c.logger.Info("Warning: %s token expires in %v", c.providerName, left.Round(time.Second))
		}

		conn, err := c.open(ctx, token)
		if err != nil {
			return wrapConnectionError(err, c.config)
		}
		if err := conn.PingContext(ctx); err != nil {
			conn.Close()
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

func (c *TokenBasedConnector) open(ctx context.Context, token string) (*sqlx.DB, error) {
	if c.config.Dialect == emis.DialectPostgres {
		withToken := *c.config
		withToken.Password = token
		return sqlx.Open(driverPostgres, BuildDSN(&withToken))
	}

	withoutCreds := *c.config
	withoutCreds.Username = ""
	withoutCreds.Password = ""
	connector, err := mssql.NewAccessTokenConnector(BuildDSN(&withoutCreds), func() (string, error) {
		t, _, err := c.tokenProvider.GetToken(ctx)
		return t, err
	})
	if err != nil {
		return nil, err
	}
	return sqlx.NewDb(sql.OpenDB(connector), driverSQLServer), nil
}

// newAzureConnector uses Service Principal credentials when tenant, client and
// secret are all configured, and DefaultAzureCredential otherwise.
func newAzureConnector(config *emis.ConnectionConfig, logger emis.Logger) (emis.Connector, error) {
	scope := AzureSQLScope
	if config.Dialect == emis.DialectPostgres {
		scope = AzurePostgreSQLScope
	}

	var tokenProvider TokenProvider
	var err error
	if config.AzureTenantID != "" && config.AzureClientID != "" && config.AzureClientSecret != "" {
		tokenProvider, err = NewAzureServicePrincipalProvider(config.AzureTenantID, config.AzureClientID, config.AzureClientSecret, scope)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure Service Principal provider: %w", err)
		}
	} else {
		tokenProvider, err = NewAzureDefaultCredentialProvider(scope)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure Default Credential provider: %w", err)
		}
	}
	logger.Verbose("Using %s", tokenProvider)
	return NewTokenBasedConnector(config, tokenProvider, "Azure", logger), nil
}

func newAWSConnector(config *emis.ConnectionConfig, logger emis.Logger) (emis.Connector, error) {
	tokenProvider, err := NewAWSIAMTokenProvider(hostPort(config), config.AWSRegion, config.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS IAM token provider: %w", err)
	}
	logger.Verbose("Using %s", tokenProvider)
	return NewTokenBasedConnector(config, tokenProvider, "AWS IAM", logger), nil
}
