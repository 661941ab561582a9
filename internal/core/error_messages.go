package core

// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support
// reference. When users encounter errors, they can quote the error code to
// support staff for faster diagnosis.
//
// # File Errors (FILE001-FILE099)
//
// Ingestion failures are typed (*IngestError) and map by kind, not by text:
//
//	FILE001 - FileTooLarge: File exceeds the maximum size limit
//	          Action: Split the file or remove unused columns
//
//	FILE002 - ParseFailure: The file could not be read
//	          Action: Check that the file is a valid CSV or Excel workbook
//
//	FILE003 - unused; invalid UTF-8 is replaced with U+FFFD, never rejected
//
//	FILE004 - No file: No file was selected
//	          Action: Please select a CSV, XLSX, or XLS file
//	          Patterns: "no file provided"
//
//	FILE005 - EmptyFile: File is empty or has no data rows
//	          Action: Add at least one data row below the header
//
//	FILE006 - UnsupportedFormat: Extension is not csv, xlsx or xls
//	          Action: Please use CSV, XLSX, or XLS files
//
//	FILE007 - InvalidHeaders: Header row missing or has empty cells
//	          Action: Give every column a name in the first row
//
//	FILE008 - NoValidRows: Every data row was blank or had the wrong width
//	          Action: Make sure rows have one value per header column
//
// # Dataset Errors (DS001-DS099)
//
//	DS001 - Dataset not found: The dataset expired or was cleared
//	        Action: Upload the file again
//	        Patterns: "dataset not found"
//
//	DS002 - System busy: Too many files are being processed
//	        Action: Please wait a moment and try again
//	        Patterns: "too many concurrent ingestions"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Request cancelled: Request was cancelled
//	         Patterns: "context canceled"
//
//	REQ002 - Request timeout: Request timed out
//	         Patterns: "context deadline exceeded"
//
//	REQ003 - Invalid filter: Unknown filter kind
//	         Patterns: "unknown filter kind"
//
//	REQ004 - Unknown column: Sort or filter names a missing column
//	         Patterns: "unknown column"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no specific kind or pattern matches.
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns should be
// defined before general ones.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// kindMessages maps ingestion failure kinds to user messages.
var kindMessages = map[ErrorKind]UserMessage{
	KindFileTooLarge: {
		Message: "File exceeds the maximum upload size",
		Action:  "Split the file or remove unused columns",
		Code:    "FILE001",
	},
	KindParseFailure: {
		Message: "The file could not be read",
		Action:  "Check that the file is a valid CSV or Excel workbook",
		Code:    "FILE002",
	},
	KindEmptyFile: {
		Message: "File is empty or has no data rows",
		Action:  "Add at least one data row below the header",
		Code:    "FILE005",
	},
	KindUnsupportedFormat: {
		Message: "Unsupported file format",
		Action:  "Please use CSV, XLSX, or XLS files",
		Code:    "FILE006",
	},
	KindInvalidHeaders: {
		Message: "Invalid or empty column headers detected",
		Action:  "Give every column a name in the first row",
		Code:    "FILE007",
	},
	KindNoValidRows: {
		Message: "No valid data rows found",
		Action:  "Make sure rows have one value per header column",
		Code:    "FILE008",
	},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user
// messages for errors that are not typed ingestion failures.
var errorPatterns = []errorPattern{
	{
		pattern: "no file provided",
		msg:     noFileMessage,
	},
	{
		pattern: "dataset not found",
		msg: UserMessage{
			Message: "Dataset not found",
			Action:  "The dataset may have expired. Please upload the file again",
			Code:    "DS001",
		},
	},
	{
		pattern: "too many concurrent ingestions",
		msg: UserMessage{
			Message: "System is busy processing other files",
			Action:  "Please wait a moment and try again",
			Code:    "DS002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "REQ002",
		},
	},
	{
		pattern: "unknown filter kind",
		msg: UserMessage{
			Message: "Unknown filter type",
			Action:  "Use contains, equals, startsWith, endsWith, greaterThan or lessThan",
			Code:    "REQ003",
		},
	},
	{
		pattern: "unknown column",
		msg: UserMessage{
			Message: "Column not found",
			Action:  "Use one of the dataset's header names",
			Code:    "REQ004",
		},
	},
	{
		pattern: "invalid filter",
		msg: UserMessage{
			Message: "Filter could not be read",
			Action:  "Write filters as kind:operand, for example contains:smith",
			Code:    "REQ005",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// noFileMessage is shared by ErrNoFile and its textual pattern.
var noFileMessage = UserMessage{
	Message: "No file selected",
	Action:  "Please select a CSV, XLSX, or XLS file",
	Code:    "FILE004",
}

// defaultMessage is returned when no kind or pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Typed ingestion failures map by kind; everything else is matched against
// the known patterns, falling back to ERR000.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	if errors.Is(err, ErrNoFile) {
		return noFileMessage
	}

	if kind := KindOf(err); kind != "" {
		if msg, ok := kindMessages[kind]; ok {
			return msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-friendly message.
// The original error is preserved for logging.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
