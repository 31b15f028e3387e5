package retry

import (
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
	mssql "github.com/microsoft/go-mssqldb"
)

// SQL Server error numbers worth another attempt.
// See: https://learn.microsoft.com/sql/relational-databases/errors-events/database-engine-events-and-errors
var transientSQLServerErrors = map[int32]bool{
	233:   true, // connection terminated by server
	1205:  true, // deadlock victim
	4060:  true, // cannot open database (often during failover)
	10053: true, // transport-level error
	10054: true, // connection reset
	10060: true, // network timeout
	10928: true, // Azure SQL resource limit
	10929: true, // Azure SQL resource limit
	40197: true, // Azure SQL service error
	40501: true, // Azure SQL service busy
	40613: true, // Azure SQL database unavailable
	49918: true, // not enough resources
	49919: true, // too many create/update operations
	49920: true, // service busy
}

// SQLErrorClassifier recognizes transient SQL Server, PostgreSQL and network errors.
type SQLErrorClassifier struct{}

func NewSQLErrorClassifier() *SQLErrorClassifier {
	return &SQLErrorClassifier{}
}

// IsTransient reports whether err is worth retrying.
func (c *SQLErrorClassifier) IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var msErr mssql.Error
	if errors.As(err, &msErr) {
		return transientSQLServerErrors[msErr.Number]
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return isTransientPgCode(pgErr.Code)
	}

	return isNetworkError(err) || hasTransientMessage(err)
}

// isTransientPgCode covers classes 08 (connection), 53 (resources), 57 (operator
// intervention) plus serialization failures, deadlocks and lock timeouts.
func isTransientPgCode(code string) bool {
	for _, class := range []string{"08", "53", "57"} {
		if strings.HasPrefix(code, class) {
			return true
		}
	}
	switch code {
	case "40001", "40P01", "55P03":
		return true
	}
	return false
}

func isNetworkError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.Temporary() || dnsErr.Timeout()
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() {
			return true
		}
		for _, errno := range []syscall.Errno{syscall.ECONNREFUSED, syscall.ECONNRESET, syscall.ENETUNREACH, syscall.EHOSTUNREACH} {
			if errors.Is(opErr.Err, errno) {
				return true
			}
		}
	}
	return false
}

var transientPatterns = []string{
	"connection refused",
	"connection reset",
	"connection timeout",
	"no such host",
	"network is unreachable",
	"i/o timeout",
	"broken pipe",
	"too many connections",
	"server closed the connection",
	"unexpected eof",
}

func hasTransientMessage(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, pattern := range transientPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
