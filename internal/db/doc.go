// Package db opens EMIS database handles and runs the few statements emisctl needs.
//
// Two dialects are supported: SQL Server (the EMIS default, via go-mssqldb) and
// PostgreSQL (via pgx's database/sql driver). Both are exposed as *sqlx.DB so the
// Store code is shared. Connectors cover plain credentials and the cloud identity
// providers; every connector retries transient failures while connecting, but
// nothing issued through a Store is retried.
package db
