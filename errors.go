package cdp

import (
	"fmt"
)

// ErrorCode is the integer error code carried by protocol error objects.
// Six codes have well-known meanings inherited from JSON-RPC; every other
// integer passes through unchanged.
type ErrorCode int32

const (
	CodeParseError     ErrorCode = -32700
	CodeInvalidRequest ErrorCode = -32600
	CodeMethodNotFound ErrorCode = -32601
	CodeInvalidParams  ErrorCode = -32602
	CodeInternalError  ErrorCode = -32603
	CodeServerError    ErrorCode = -32000
)

// String names the six well-known codes and formats anything else as
// "code N".
func (c ErrorCode) String() string {
	switch c {
	case CodeParseError:
		return "parse error"
	case CodeInvalidRequest:
		return "invalid request"
	case CodeMethodNotFound:
		return "method not found"
	case CodeInvalidParams:
		return "invalid parameters"
	case CodeInternalError:
		return "internal error"
	case CodeServerError:
		return "server error"
	default:
		return fmt.Sprintf("code %d", int32(c))
	}
}

// Error is the protocol error object: {code, message, data?}.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Data    any       `json:"data,omitempty"`
}

func (e *Error) Error() string {
	if e.Data == nil {
		return fmt.Sprintf("cdp error (code %d): %s", int32(e.Code), e.Message)
	}
	return fmt.Sprintf("cdp error (code %d): %s; %v", int32(e.Code), e.Message, e.Data)
}

// NewError creates a new protocol error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Errorf creates a new protocol error with a formatted message.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// The canonical constructors below reproduce the wording of the V8 inspector
// dispatcher verbatim, misspelled "porperty" included, so that payloads are
// byte-compatible with what browsers emit.

// ErrInvalidMessage reports a payload that is not syntactically valid JSON.
func ErrInvalidMessage() *Error {
	return NewError(CodeParseError, "Message must be a valid JSON")
}

// ErrMustBeObject reports a payload whose top-level value is not an object.
func ErrMustBeObject() *Error {
	return NewError(CodeInvalidRequest, "Message must be an object")
}

// ErrMustHaveID reports a message with a missing or non-integer id.
func ErrMustHaveID() *Error {
	return NewError(CodeInvalidRequest, "Message must have integer 'id' porperty")
}

// ErrMustHaveMethod reports a message with a missing or non-string method.
func ErrMustHaveMethod() *Error {
	return NewError(CodeInvalidRequest, "Message must have string 'method' porperty")
}

// ErrMethodNotFound reports a method name no dispatcher recognized.
func ErrMethodNotFound(method string) *Error {
	return Errorf(CodeMethodNotFound, "'%s' wasn't found", method)
}

// ErrInvalidParams reports malformed command parameters. The detail goes in
// the data member; the message stays fixed.
func ErrInvalidParams(detail string) *Error {
	return &Error{
		Code:    CodeInvalidParams,
		Message: "Invalid parameters",
		Data:    detail,
	}
}

// ErrServerError reports a command that failed in the handler.
func ErrServerError(message string) *Error {
	return NewError(CodeServerError, message)
}

// ErrInternalError reports a failure inside the dispatch machinery itself.
func ErrInternalError(detail string) *Error {
	return &Error{
		Code:    CodeInternalError,
		Message: "Internal error",
		Data:    detail,
	}
}
