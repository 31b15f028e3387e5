package emis

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Connector is a unified interface for establishing database connections.
// Different implementations handle the supported dialects and authentication
// methods (standard credentials, Azure Entra ID, AWS IAM, Cloud SQL IAM).
type Connector interface {
	// Connect opens and pings a database handle.
	// The returned handle should be closed by the caller when done.
	Connect(ctx context.Context) (*sqlx.DB, error)
}
