package emis

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	summary, err := loader.LoadAll(ctx, files)
//	if errors.Is(err, emis.ErrApprovalDenied) {
//	    // Handle user declining the write
//	}
var (
	// ErrUsage indicates the command line was malformed (missing or extra arguments).
	ErrUsage = errors.New("usage error")

	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrMissingConfigKey indicates a configuration key required by the command is absent.
	ErrMissingConfigKey = errors.New("missing configuration key")

	// ErrApprovalDenied indicates the user denied approval for the operation.
	ErrApprovalDenied = errors.New("approval denied")

	// ErrExecutionFailed indicates SQL execution failed.
	ErrExecutionFailed = errors.New("execution failed")

	// ErrUnsupportedAuthMethod indicates the requested authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")

	// ErrConnectionFailed indicates database connection failed.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrAuthenticationFailed indicates the EMIS API rejected the credentials.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrSheetNotFound indicates a workbook lacks the expected sheet.
	ErrSheetNotFound = errors.New("sheet not found")

	// ErrNoDataRows indicates a workbook has a header row but no data.
	ErrNoDataRows = errors.New("no data rows")

	// ErrMissingMetadata indicates the first data row lacks CPD Name or Year.
	ErrMissingMetadata = errors.New("missing CPD name or year")

	// ErrIncompleteReference indicates the reference population series lacks a grid cell.
	ErrIncompleteReference = errors.New("incomplete reference series")
)

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrUsage):
		return ExitUsageError
	case errors.Is(err, ErrInvalidConfig), errors.Is(err, ErrMissingConfigKey):
		return ExitConfigError
	case errors.Is(err, ErrApprovalDenied):
		return ExitApprovalDenied
	case errors.Is(err, ErrExecutionFailed):
		return ExitExecutionFailed
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrAuthenticationFailed):
		return ExitAuthFailed
	case errors.Is(err, ErrUnsupportedAuthMethod):
		return ExitConfigError
	}

	// Check for common connection error patterns
	errStr := err.Error()
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}
