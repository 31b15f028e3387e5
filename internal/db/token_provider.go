package db

import (
	"context"
	"time"
)

// TokenProvider acquires short-lived database access tokens from a cloud identity service.
type TokenProvider interface {
	// GetToken returns the token and its expiry.
	GetToken(ctx context.Context) (token string, expiresOn time.Time, err error)

	// String describes the provider for logs. Must not include secrets.
	String() string
}

// OAuth scopes for Azure hosted databases.
const (
	AzureSQLScope        = "https://database.windows.net/.default"
	AzurePostgreSQLScope = "https://ossrdbms-aad.database.windows.net/.default"
)
