package core

// error_messages.go maps technical errors to user-facing messages with a
// support code.
//
// # Error Codes Reference
//
// File check errors (FILE001-FILE099) carry the localized message and action
// produced by the activation code checker; the code identifies which check
// failed:
//
//	FILE001 - File too large          (codes.KindTooLarge)
//	FILE002 - Empty or unreadable     (codes.KindUnreadable)
//	FILE003 - No activation code      (codes.KindNoCodes)
//	FILE004 - Forbidden character     (codes.KindForbiddenCharacter)
//	FILE005 - Duplicate codes         (codes.KindDuplicates)
//	FILE006 - No file provided        Patterns: "no file provided"
//
// Activation code errors (CODE001-CODE099):
//
//	CODE001 - Codes already in stock  Patterns: "activation codes already exist", "unique_code_in_stock"
//	CODE002 - File already imported   Patterns: "file already imported"
//	CODE003 - No code left            Patterns: "no activation code available"
//	CODE004 - Expiration too early    Patterns: "expiration too early"
//
// Offer and stock errors (STOCK001-STOCK099):
//
//	STOCK001 - Offer not found        Patterns: "offer not found"
//	STOCK002 - Stock not found        Patterns: "stock not found"
//	STOCK003 - Offer not digital      Patterns: "require a digital offer"
//	STOCK004 - Event offer            Patterns: "not allowed on event offers"
//	STOCK005 - Price above maximum    Patterns: "price above maximum"
//	STOCK006 - Invalid price          Patterns: "invalid price"
//	STOCK007 - Invalid quantity       Patterns: "invalid quantity"
//	STOCK008 - Missing offer name     Patterns: "offer name required"
//	STOCK009 - Bookings closed        Patterns: "booking limit passed"
//	STOCK010 - Quantity below booked  Patterns: "below booked quantity"
//
// Database errors (DB001-DB099):
//
//	DB001 - Unique constraint         Patterns: "duplicate key", "violates unique"
//	DB002 - Foreign key               Patterns: "violates foreign key"
//	DB003 - Connection refused        Patterns: "connection refused"
//	DB004 - Connection reset          Patterns: "connection reset"
//	DB005 - Deadlock                  Patterns: "deadlock"
//	DB006 - Timeout                   Patterns: "timeout"
//
// Upload errors (UPL001-UPL099):
//
//	UPL001 - System busy              Patterns: "too many concurrent uploads"
//	UPL002 - Request cancelled        Patterns: "context canceled"
//	UPL003 - Request timeout          Patterns: "context deadline exceeded"
//
// Request errors (REQ001):
//
//	REQ001 - Malformed request        Patterns: "invalid request"
//
// Rate limiting (RATE001):
//
//	RATE001 - Too many requests       Patterns: "rate limit"
//
// ERR000 is the fallback when nothing matches; the technical error is in the
// application logs.
//
// Patterns are matched case-insensitively with strings.Contains and the first
// match wins, so specific patterns come before general ones.

import (
	"errors"
	"strings"

	"github.com/JonMunkholm/codeimport/internal/codes"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// checkCodes holds the support code per failed file check. Message and
// action come from the checker, already localized.
var checkCodes = map[codes.Kind]string{
	codes.KindTooLarge:           "FILE001",
	codes.KindUnreadable:         "FILE002",
	codes.KindNoCodes:            "FILE003",
	codes.KindForbiddenCharacter: "FILE004",
	codes.KindDuplicates:         "FILE005",
}

var errorPatterns = []errorPattern{
	// =========================================================================
	// Request Errors (REQ001)
	// =========================================================================
	{
		pattern: "invalid request",
		msg: UserMessage{
			Message: "The request is malformed",
			Action:  "Check the identifiers and fields sent",
			Code:    "REQ001",
		},
	},

	// =========================================================================
	// File Errors
	// =========================================================================
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select an activation code file to upload",
			Code:    "FILE006",
		},
	},

	// =========================================================================
	// Activation Code Errors (CODE001-CODE004)
	// unique_code_in_stock is the constraint behind a concurrent import race,
	// so it must match before the generic database patterns.
	// =========================================================================
	{
		pattern: "activation codes already exist",
		msg: UserMessage{
			Message: "Some activation codes are already attached to this stock",
			Action:  "Remove the codes already imported and upload again",
			Code:    "CODE001",
		},
	},
	{
		pattern: "unique_code_in_stock",
		msg: UserMessage{
			Message: "Some activation codes are already attached to this stock",
			Action:  "Remove the codes already imported and upload again",
			Code:    "CODE001",
		},
	},
	{
		pattern: "file already imported",
		msg: UserMessage{
			Message: "This file was already imported into this stock",
			Action:  "Check the import history before uploading again",
			Code:    "CODE002",
		},
	},
	{
		pattern: "no activation code available",
		msg: UserMessage{
			Message: "This stock has no activation code left",
			Action:  "Import more activation codes into the stock",
			Code:    "CODE003",
		},
	},
	{
		pattern: "expiration too early",
		msg: UserMessage{
			Message: "The activation codes expire too soon after the booking limit",
			Action:  "Move the booking limit earlier or the expiration date later",
			Code:    "CODE004",
		},
	},

	// =========================================================================
	// Offer and Stock Errors (STOCK001-STOCK010)
	// =========================================================================
	{
		pattern: "offer not found",
		msg: UserMessage{
			Message: "Offer not found",
			Action:  "Verify the offer identifier",
			Code:    "STOCK001",
		},
	},
	{
		pattern: "stock not found",
		msg: UserMessage{
			Message: "Stock not found",
			Action:  "Verify the stock identifier",
			Code:    "STOCK002",
		},
	},
	{
		pattern: "require a digital offer",
		msg: UserMessage{
			Message: "Activation codes can only be added to digital offers",
			Action:  "Create the stock without activation codes",
			Code:    "STOCK003",
		},
	},
	{
		pattern: "not allowed on event offers",
		msg: UserMessage{
			Message: "Activation codes cannot be added to event offers",
			Action:  "Create the stock without activation codes",
			Code:    "STOCK004",
		},
	},
	{
		pattern: "price above maximum",
		msg: UserMessage{
			Message: "The price is above the maximum allowed",
			Action:  "Use a price of 300 € or less",
			Code:    "STOCK005",
		},
	},
	{
		pattern: "invalid price",
		msg: UserMessage{
			Message: "Invalid price",
			Action:  "Use a positive decimal number, for example 12.50",
			Code:    "STOCK006",
		},
	},
	{
		pattern: "invalid quantity",
		msg: UserMessage{
			Message: "Invalid quantity",
			Action:  "Use a positive number or leave the quantity empty",
			Code:    "STOCK007",
		},
	},
	{
		pattern: "offer name required",
		msg: UserMessage{
			Message: "The offer needs a name",
			Action:  "Provide a non-empty name",
			Code:    "STOCK008",
		},
	},
	{
		pattern: "booking limit passed",
		msg: UserMessage{
			Message: "Bookings are closed for this stock",
			Action:  "Choose another stock of the offer",
			Code:    "STOCK009",
		},
	},
	{
		pattern: "below booked quantity",
		msg: UserMessage{
			Message: "The quantity is below the number of bookings",
			Action:  "Set a quantity at least equal to the booked quantity",
			Code:    "STOCK010",
		},
	},

	// =========================================================================
	// Upload Errors (UPL001-UPL003)
	// Context errors come before the generic "timeout" database pattern.
	// =========================================================================
	{
		pattern: "too many concurrent uploads",
		msg: UserMessage{
			Message: "System is busy processing other uploads",
			Action:  "Please wait a moment and try again",
			Code:    "UPL001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "UPL003",
		},
	},

	// =========================================================================
	// Database Errors (DB001-DB006)
	// =========================================================================
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A record with this value already exists",
			Action:  "Please try again",
			Code:    "DB001",
		},
	},
	{
		pattern: "violates unique",
		msg: UserMessage{
			Message: "A record with this value already exists",
			Action:  "Please try again",
			Code:    "DB001",
		},
	},
	{
		pattern: "violates foreign key",
		msg: UserMessage{
			Message: "Referenced record does not exist",
			Action:  "Verify the offer and stock identifiers",
			Code:    "DB002",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB003",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB004",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again later",
			Code:    "DB006",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// A *codes.CheckError keeps its localized message. Anything else is matched
// against the known patterns (case-insensitive), falling back to ERR000.
//
// Example:
//
//	msg := MapError(ErrStockNotFound)
//	// msg.Code == "STOCK002"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var checkErr *codes.CheckError
	if errors.As(err, &checkErr) {
		code, ok := checkCodes[checkErr.Kind]
		if !ok {
			code = defaultMessage.Code
		}
		return UserMessage{
			Message: checkErr.Message,
			Action:  checkErr.Action,
			Code:    code,
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

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
