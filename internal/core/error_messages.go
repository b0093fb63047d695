package core

// error_messages.go is the catalogue of operator-facing error messages. Each
// carries a code for support reference; when an import fails, the CLI prints
// the code so the operator can look it up here.
//
// Error codes are grouped by category:
//
// # Format Errors (FMT001-FMT099)
//
// The input document does not have the table/record shape:
//
//	FMT001 - Invalid JSON: the snapshot is not a JSON document
//	         Action: Check the file was exported completely
//	         Match: ErrInvalidJSON
//
//	FMT002 - Wrong shape: a table or record is not an array or object
//	         Action: Export the snapshot as {table: [record, ...]}
//	         Match: *FormatError
//
//	FMT003 - Too large: the snapshot exceeds IMPORT_MAX_INPUT_SIZE
//	         Action: Raise the limit or import a smaller snapshot
//	         Match: ErrInputTooLarge
//
// # Integrity Errors (INT001-INT099)
//
// Well-formed input whose records do not link up:
//
//	INT001 - Duplicate key: two records in a table share a primary key
//	INT002 - Unresolved reference: a foreign key names a missing record
//	INT003 - Dangling reference: a deferred reference never found its target
//	INT004 - Missing table: a required table is absent from the snapshot
//
// # Coercion Errors (COE001-COE099)
//
// A field cannot be converted to its destination type:
//
//	COE001 - Missing field: a required field is absent or null
//	COE002 - Bad timestamp: a date string matches neither supported layout
//	COE003 - Wrong type: the field holds a value of another JSON type
//
// # Schema Errors (SCH001-SCH099)
//
//	SCH001 - Schema mismatch: the schema file does not describe the models
//	         Patterns: "schema mismatch", "unknown entity"
//
// # Database Errors (DB001-DB099)
//
// Errors raised by the output store while committing. These are matched on
// the driver's message text:
//
//	DB001 - Duplicate key          Patterns: "duplicate key", "unique constraint"
//	DB002 - Foreign key            Patterns: "foreign key constraint", "violates foreign key"
//	DB003 - Connection refused     Patterns: "connection refused"
//	DB004 - Database locked        Patterns: "database is locked", "sqlite_busy"
//	DB005 - Timeout                Patterns: "timeout"
//	DB006 - Read-only location     Patterns: "read-only", "permission denied"
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Check the log for the technical error.
//
// # Matching
//
// Typed errors are matched first with errors.As/errors.Is. Anything else
// falls through to the pattern table, matched case-insensitively with
// strings.Contains. The first matching pattern wins, so more specific
// patterns are defined before general ones.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides operator-facing error information with actionable guidance.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var (
	msgInvalidJSON = UserMessage{
		Message: "The snapshot is not valid JSON",
		Action:  "Check the file was exported completely",
		Code:    "FMT001",
	}
	msgWrongShape = UserMessage{
		Message: "The snapshot does not have the expected table/record shape",
		Action:  "Export the snapshot as an object mapping table names to arrays of records",
		Code:    "FMT002",
	}
	msgTooLarge = UserMessage{
		Message: "The snapshot exceeds the maximum input size",
		Action:  "Raise IMPORT_MAX_INPUT_SIZE or import a smaller snapshot",
		Code:    "FMT003",
	}
	msgDuplicateKey = UserMessage{
		Message: "Two records in a table share a primary key",
		Action:  "Remove the duplicate record from the snapshot",
		Code:    "INT001",
	}
	msgUnresolved = UserMessage{
		Message: "A record references a row that does not exist",
		Action:  "Check the referenced table contains the key named in the error",
		Code:    "INT002",
	}
	msgDangling = UserMessage{
		Message: "A deferred reference never found its target",
		Action:  "Check every staff store_id names a store in the snapshot",
		Code:    "INT003",
	}
	msgMissingTable = UserMessage{
		Message: "A table needed by the import is missing",
		Action:  "Include every Sakila table in the snapshot",
		Code:    "INT004",
	}
	msgMissingField = UserMessage{
		Message: "A required field is missing",
		Action:  "Fill in the field named in the error",
		Code:    "COE001",
	}
	msgBadTimestamp = UserMessage{
		Message: "A date could not be parsed",
		Action:  "Use YYYY-MM-DDTHH:MM:SS with optional fractional seconds",
		Code:    "COE002",
	}
	msgWrongType = UserMessage{
		Message: "A field holds a value of the wrong type",
		Action:  "Check the field named in the error against the Sakila schema",
		Code:    "COE003",
	}
)

// errorPatterns maps driver error text (case-insensitive) to user messages.
// The first matching pattern wins, so order matters.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Schema Errors (SCH001)
	// =========================================================================
	{
		pattern: "schema mismatch",
		msg: UserMessage{
			Message: "The schema file does not describe the imported entities",
			Action:  "Compare the schema file with the bundled sakila.toml",
			Code:    "SCH001",
		},
	},
	{
		pattern: "unknown entity",
		msg: UserMessage{
			Message: "The schema file does not describe the imported entities",
			Action:  "Compare the schema file with the bundled sakila.toml",
			Code:    "SCH001",
		},
	},

	// =========================================================================
	// Constraint Errors (DB001-DB002)
	// =========================================================================
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "The output already contains a row with this ID",
			Action:  "Write to a new output file or an empty database schema",
			Code:    "DB001",
		},
	},
	{
		pattern: "unique constraint",
		msg: UserMessage{
			Message: "The output already contains a row with this ID",
			Action:  "Write to a new output file or an empty database schema",
			Code:    "DB001",
		},
	},
	{
		pattern: "foreign key constraint",
		msg: UserMessage{
			Message: "A committed row references a row that was not written",
			Action:  "Check the schema file declares every referenced entity",
			Code:    "DB002",
		},
	},
	{
		pattern: "violates foreign key",
		msg: UserMessage{
			Message: "A committed row references a row that was not written",
			Action:  "Check the schema file declares every referenced entity",
			Code:    "DB002",
		},
	},

	// =========================================================================
	// Connection Errors (DB003-DB006)
	// =========================================================================
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Check the output URL and that the server is running",
			Code:    "DB003",
		},
	},
	{
		pattern: "database is locked",
		msg: UserMessage{
			Message: "The output database is locked by another process",
			Action:  "Close other programs using the file and try again",
			Code:    "DB004",
		},
	},
	{
		pattern: "sqlite_busy",
		msg: UserMessage{
			Message: "The output database is locked by another process",
			Action:  "Close other programs using the file and try again",
			Code:    "DB004",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Raise DB_CONNECT_TIMEOUT or try again later",
			Code:    "DB005",
		},
	},
	{
		pattern: "read-only",
		msg: UserMessage{
			Message: "The output location is not writable",
			Action:  "Choose an output path in a writable directory",
			Code:    "DB006",
		},
	},
	{
		pattern: "permission denied",
		msg: UserMessage{
			Message: "The output location is not writable",
			Action:  "Choose an output path in a writable directory",
			Code:    "DB006",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Check the log for details",
	Code:    "ERR000",
}

// MapError converts a technical error to an operator-facing message.
// Typed import errors map by kind; other errors are matched against the
// pattern table. If nothing matches, ERR000 is returned.
//
// Example:
//
//	err := &IntegrityError{Kind: UnresolvedReference, Table: "address", Field: "city_id", Key: 99, Target: "city"}
//	msg := MapError(err)
//	// msg.Code == "INT002"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	if msg, ok := mapTyped(err); ok {
		return msg
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

func mapTyped(err error) (UserMessage, bool) {
	var ie *IntegrityError
	if errors.As(err, &ie) {
		switch ie.Kind {
		case DuplicateKey:
			return msgDuplicateKey, true
		case UnresolvedReference:
			return msgUnresolved, true
		case DanglingReference:
			return msgDangling, true
		case UnloadedTable:
			return msgMissingTable, true
		}
	}

	var ce *CoercionError
	if errors.As(err, &ce) {
		switch {
		case ce.Value == nil:
			return msgMissingField, true
		case ce.Err != nil && strings.Contains(ce.Reason, "date"):
			return msgBadTimestamp, true
		default:
			return msgWrongType, true
		}
	}

	switch {
	case errors.Is(err, ErrInputTooLarge):
		return msgTooLarge, true
	case errors.Is(err, ErrInvalidJSON):
		return msgInvalidJSON, true
	case errors.Is(err, ErrFormat):
		return msgWrongShape, true
	}
	return UserMessage{}, false
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
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
