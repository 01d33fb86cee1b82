package store

import (
	"fmt"
)

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is the error type of every fundb operation. It wraps a return code
// (of type RetCode), a message and the underlying cause, if any.
//
// Callers match by code with errors.Is:
//
//	if errors.Is(err, store.ErrCorruption) { ... }
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
	Err  error   // The cause (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fundb error (code %s): %s: %v", e.Code, e.Msg, e.Err)
	}
	return fmt.Sprintf("fundb error (code %s): %s", e.Code, e.Msg)
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// NewError creates a new Error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// wrapError creates a new Error with the given code and cause.
func wrapError(code RetCode, err error, format string, args ...interface{}) *Error {
	return &Error{
		Code: code,
		Msg:  fmt.Sprintf(format, args...),
		Err:  err,
	}
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess          RetCode = iota // 0: Command executed successfully.
	RetCInternalError                   // 1: Command failed due to an internal error.
	RetCInvalidOperation                // 2: Invalid operation (closed collection, bad descriptor, encode failure).
	RetCOpenError                       // 3: The store could not be created or opened.
	RetCWriteError                      // 4: A write to the store or the length header failed.
	RetCReadError                       // 5: A read from the store failed.
	RetCCorruption                      // 6: The length header or the elements are inconsistent.
	RetCDecodeError                     // 7: Stored bytes could not be decoded.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInternalError:
		return "InternalError"
	case RetCInvalidOperation:
		return "InvalidOperation"
	case RetCOpenError:
		return "OpenError"
	case RetCWriteError:
		return "WriteError"
	case RetCReadError:
		return "ReadError"
	case RetCCorruption:
		return "Corruption"
	case RetCDecodeError:
		return "DecodeError"
	default:
		return "Unknown"
	}
}

// Sentinels for errors.Is.
var (
	ErrInvalidOperation = NewError(RetCInvalidOperation, "invalid operation")
	ErrOpen             = NewError(RetCOpenError, "open failed")
	ErrWrite            = NewError(RetCWriteError, "write failed")
	ErrRead             = NewError(RetCReadError, "read failed")
	ErrCorruption       = NewError(RetCCorruption, "corrupted")
	ErrDecode           = NewError(RetCDecodeError, "decode failed")
)
