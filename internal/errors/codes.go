// Package errors provides structured error handling for ftmodel.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (file, disk)
//   - 3XX: Backend and network errors
//   - 4XX: Validation errors (queries, schemas, models)
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file and disk I/O errors.
	CategoryIO Category = "IO"
	// CategoryBackend indicates failures talking to the search backend.
	CategoryBackend Category = "BACKEND"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
	// SeverityInfo indicates informational only.
	SeverityInfo Severity = "INFO"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound   = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid    = "ERR_102_CONFIG_INVALID"
	ErrCodeConfigPermission = "ERR_103_CONFIG_PERMISSION"

	// IO errors (200-299)
	ErrCodeFileNotFound   = "ERR_201_FILE_NOT_FOUND"
	ErrCodeFilePermission = "ERR_202_FILE_PERMISSION"
	ErrCodeLockFailed     = "ERR_207_LOCK_FAILED"

	// Backend errors (300-399)
	ErrCodeNetworkTimeout     = "ERR_301_NETWORK_TIMEOUT"
	ErrCodeNetworkUnavailable = "ERR_302_NETWORK_UNAVAILABLE"
	ErrCodeBackendCommand     = "ERR_304_BACKEND_COMMAND"
	ErrCodeIndexNotFound      = "ERR_305_INDEX_NOT_FOUND"
	ErrCodeCircuitOpen        = "ERR_306_CIRCUIT_OPEN"

	// Validation errors (400-499)
	ErrCodeInvalidInput     = "ERR_401_INVALID_INPUT"
	ErrCodeInvalidQuery     = "ERR_403_INVALID_QUERY"
	ErrCodeInvalidSchema    = "ERR_406_INVALID_SCHEMA"
	ErrCodeFieldNotFound    = "ERR_407_FIELD_NOT_FOUND"
	ErrCodeMultiSort        = "ERR_408_MULTI_SORT_UNSUPPORTED"
	ErrCodeInvalidSort      = "ERR_409_INVALID_SORT"
	ErrCodeUnknownModel     = "ERR_410_UNKNOWN_MODEL"
	ErrCodeInvalidPageRange = "ERR_411_INVALID_PAGE"
	ErrCodeRateLimited      = "ERR_412_RATE_LIMITED"
	ErrCodeNotFound         = "ERR_413_NOT_FOUND"

	// Internal errors (500-599)
	ErrCodeInternal     = "ERR_501_INTERNAL"
	ErrCodeIndexFailed  = "ERR_505_INDEX_FAILED"
	ErrCodeDecodeFailed = "ERR_506_DECODE_FAILED"
	ErrCodeEncodeFailed = "ERR_507_ENCODE_FAILED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Extract numeric portion (e.g., "407" from "ERR_407_FIELD_NOT_FOUND")
	numStr := code[4:7]

	switch numStr[0] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '3':
		return CategoryBackend
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeIndexFailed:
		return SeverityFatal
	}

	// Retryable transport errors get warning severity
	if isRetryableCode(code) {
		return SeverityWarning
	}

	return SeverityError
}

// isRetryableCode checks if an error code represents a retryable error.
// Only transport failures qualify; an error reply from the backend is final.
func isRetryableCode(code string) bool {
	switch code {
	case ErrCodeNetworkTimeout, ErrCodeNetworkUnavailable:
		return true
	default:
		return false
	}
}
