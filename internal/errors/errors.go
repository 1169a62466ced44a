package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// DistributionMissing indicates a distribution root does not exist
	DistributionMissing ErrorCode = "DISTRIBUTION_MISSING"
	// LayoutInvalid indicates a distribution lacks a required library directory
	LayoutInvalid ErrorCode = "LAYOUT_INVALID"
	// ArchiveUnreadable indicates a jar could not be opened or read
	ArchiveUnreadable ErrorCode = "ARCHIVE_UNREADABLE"
	// ClassMalformed indicates class file bytes could not be decoded
	ClassMalformed ErrorCode = "CLASS_MALFORMED"
	// InheritanceCycle indicates a class is its own ancestor
	InheritanceCycle ErrorCode = "INHERITANCE_CYCLE"
	// InvalidInput indicates a precondition on diff input was violated
	InvalidInput ErrorCode = "INVALID_INPUT"
	// ConfigInvalid indicates configuration failed validation
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// CheckPath suggests inspecting a path on disk
	CheckPath FixActionType = "check-path"
	// EditConfig suggests changing configuration
	EditConfig FixActionType = "edit-config"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Safe        bool          `json:"safe,omitempty"`
	Description string        `json:"description,omitempty"`
}

// ApiError carries a stable code, a message and suggested fixes.
type ApiError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error
}

// New creates an ApiError populated with the default fixes for code.
func New(code ErrorCode, message string, cause error) *ApiError {
	return &ApiError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// Newf is New with a formatted message and no cause.
func Newf(code ErrorCode, format string, args ...interface{}) *ApiError {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// Error implements the error interface
func (e *ApiError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *ApiError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *ApiError) WithDetails(details interface{}) *ApiError {
	e.Details = details
	return e
}

// CodeOf returns the code of the first ApiError in err's chain, or
// InternalError when there is none.
func CodeOf(err error) ErrorCode {
	var apiErr *ApiError
	if stderrors.As(err, &apiErr) {
		return apiErr.Code
	}
	return InternalError
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	DistributionMissing: {
		{
			Type:        CheckPath,
			Description: "Point apicheck at an unpacked distribution directory",
		},
	},
	LayoutInvalid: {
		{
			Type:        EditConfig,
			Description: "Adjust layout.libDirs in .apicheck/config.json to match the distribution",
		},
	},
	ArchiveUnreadable: {
		{
			Type:        RunCommand,
			Command:     "unzip -t ${archive}",
			Safe:        true,
			Description: "Verify the archive is a valid zip file",
		},
	},
	ConfigInvalid: {
		{
			Type:        RunCommand,
			Command:     "apicheck config show",
			Safe:        true,
			Description: "Inspect the effective configuration",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
