package core

// error_messages.go maps technical errors to messages an operator can act on.
//
// Codes are grouped by category and quoted back to support:
//
//	DB001-DB099      database writes and connectivity
//	FILE001-FILE099  the uploaded file itself
//	UPL001-UPL099    the import request lifecycle
//	IMP001-IMP099    lead content and import defaults
//	RATE001          request throttling
//	ERR000           fallback
//
// Patterns are matched case-insensitively with strings.Contains. The first
// match wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Database (DB)
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A lead with this identifier already exists",
			Action:  "Remove the duplicated lines and import again",
			Code:    "DB001",
		},
	},
	{
		pattern: "violates not-null",
		msg: UserMessage{
			Message: "A lead is missing a value the database requires",
			Action:  "Check the required columns and import again",
			Code:    "DB002",
		},
	},
	{
		pattern: "violates foreign key",
		msg: UserMessage{
			Message: "The assigned user or organization does not exist",
			Action:  "Pick another assignee or contact an administrator",
			Code:    "DB003",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},

	// File (FILE)
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum import size",
			Action:  "Split the file into smaller exports",
			Code:    "FILE001",
		},
	},
	{
		pattern: "read upload",
		msg: UserMessage{
			Message: "The file could not be read",
			Action:  "Upload the file again",
			Code:    "FILE002",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV file to import",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Please upload a CSV export with a header and data rows",
			Code:    "FILE005",
		},
	},

	// Import request (UPL)
	{
		pattern: "too many concurrent imports",
		msg: UserMessage{
			Message: "Too many imports in progress",
			Action:  "Please wait a moment and try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try importing a smaller file or check your connection",
			Code:    "UPL005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try importing a smaller file or try again later",
			Code:    "DB006",
		},
	},

	// Lead content (IMP)
	{
		pattern: "no header",
		msg: UserMessage{
			Message: "The first line of the file is not a header row",
			Action:  "Export the file again with column names on the first line",
			Code:    "IMP001",
		},
	},
	{
		pattern: "unknown status",
		msg: UserMessage{
			Message: "The default status is not a known lead status",
			Action:  "Choose one of the statuses offered in the import dialog",
			Code:    "IMP002",
		},
	},
	{
		pattern: "invalid id",
		msg: UserMessage{
			Message: "The assignee or organization is not a valid identifier",
			Action:  "Pick the assignee from the list and import again",
			Code:    "IMP003",
		},
	},

	// Rate limiting
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. Unknown
// errors map to ERR000.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError returns "Message (Code: XXX). Action", or "" for nil.
func FormatUserError(err error) string {
	if err == nil {
		return ""
	}
	return NewUserError(err).Error()
}

// IsUserFacing reports whether err matches a known pattern.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message. Its
// Error text is the FormatUserError rendering, for callers such as the CLI
// that print errors straight to an operator.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return fmt.Sprintf("%s (Code: %s). %s", e.User.Message, e.User.Code, e.User.Action)
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err. It returns nil for a nil error.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
