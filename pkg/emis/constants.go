package emis

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess          = 0  // Command completed successfully
	ExitGeneralError     = 1  // Unknown or unclassified error
	ExitUsageError       = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic            = 3  // Internal panic (unexpected crash)
	ExitConfigError      = 10 // Invalid or incomplete configuration
	ExitConnectionError  = 11 // Failed to connect to database
	ExitApprovalDenied   = 12 // User declined the write
	ExitExecutionFailed  = 13 // SQL execution failed
	ExitAuthFailed       = 14 // API authentication failed
)

const (
	// DefaultRetryInitialDelay is the default initial delay before the first retry attempt.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between retry attempts.
	DefaultRetryMaxDelay = 1 * time.Minute

	// DefaultRetryMaxAttempts is the default maximum number of connection retry attempts.
	DefaultRetryMaxAttempts = 3

	// DefaultTimeout bounds a whole command run.
	DefaultTimeout = 30 * time.Minute

	// DefaultPageSize is the page size requested from paginated EMIS endpoints.
	DefaultPageSize = 50

	// DefaultConfigFile is looked up in the working directory when --config is not set.
	DefaultConfigFile = "config.json"

	// DefaultCacheDirectory holds the teacher cache and other reusable downloads.
	DefaultCacheDirectory = "cached-data"

	// TeacherCacheFile is the teacher cache file name inside the cache directory.
	TeacherCacheFile = "all_teachers.json"
)

// CPD workbook conventions.
const (
	// CPDSheetName is the data sheet of every CPD workbook.
	CPDSheetName = "CPD data"

	// ListsSheetName holds the dropdown validation lists of the template.
	ListsSheetName = "Lists"

	// CPDTemplatePrefix marks the template workbook, which is never loaded.
	CPDTemplatePrefix = "CPD-source-data-workbook"

	// CPDTemplateFile is the blank template used by the sample generator.
	CPDTemplateFile = "CPD-source-data-workbook.xlsx"

	// CPDProcedure is the stored procedure that ingests one CPD workbook.
	CPDProcedure = "pTeacherWrite.LoadTeacherCpd"
)

// Population conventions.
const (
	// DefaultModelPrefix numbers UN projection variants.
	DefaultModelPrefix = "UNPD24V"

	// DefaultReferenceModel is the complete series used to fill the others.
	// It is the Median variant, always numbered 1.
	DefaultReferenceModel = DefaultModelPrefix + "1"

	// DefaultPopulationIndicator is "Population by 1-year age groups and sex".
	DefaultPopulationIndicator = 47

	// UNDataPortalURL is the base of the UN Population Division data portal API.
	UNDataPortalURL = "https://population.un.org/dataportalapi/api/v1"
)
