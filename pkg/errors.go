package chain

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	BadRequest     ErrorCode = "bad-request"
	NotFound       ErrorCode = "not-found"
	NoParent       ErrorCode = "no-parent"       // second genesis
	UnknownParent  ErrorCode = "unknown-parent"  // parent never seen or pruned
	ParentTooOld   ErrorCode = "parent-too-old"  // parent at or below the cut-off line
	InvalidTxn     ErrorCode = "invalid-txn"     // a block transaction did not validate
	DuplicateBlock ErrorCode = "duplicate-block" // block already retained
	UnknownError   ErrorCode = "unknown-error"
)

type ErrorInfo struct {
	Code    ErrorCode // machine-readble ErrorCode enumeration
	Message string    // human-readable debug message
}

func (e *ErrorInfo) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewErr(code ErrorCode, format string, args ...any) error {
	return &ErrorInfo{Code: code, Message: fmt.Sprintf(format, args...)}
}

func IsNotFoundError(err error) bool {
	return IsError(err, NotFound)
}

func IsError(err error, ofType ErrorCode) bool {
	var e *ErrorInfo
	if errors.As(err, &e) {
		return e.Code == ofType
	}
	return false
}

// ErrorCodeOf returns the code of an ErrorInfo anywhere in err's chain.
func ErrorCodeOf(err error) ErrorCode {
	var e *ErrorInfo
	if errors.As(err, &e) {
		return e.Code
	}
	return UnknownError
}
