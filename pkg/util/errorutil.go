package util

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError standardizes application errors. UserReply carries the
// localized text the bot shows the actor; HTTPStatus maps the error onto
// the ops surface.
type DomainError struct {
	Code       string
	Message    string
	UserReply  string
	HTTPStatus int
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status}
}

// Error codes used by the relay core.
const (
	CodeNoActiveTicket    = "NO_ACTIVE_TICKET"
	CodeUnknownThread     = "UNKNOWN_THREAD"
	CodeAccessDenied      = "ACCESS_DENIED"
	CodeDeliveryFailed    = "DELIVERY_FAILED"
	CodeStoreFailure      = "STORE_FAILURE"
	CodeThreadUnavailable = "THREAD_UNAVAILABLE"
	CodeInternal          = "INTERNAL_ERROR"
)

func NewNoActiveTicket() error {
	return &DomainError{
		Code:       CodeNoActiveTicket,
		Message:    "no active ticket for user",
		UserReply:  "⏳ Warten Sie auf den Administrator.",
		HTTPStatus: http.StatusNotFound,
	}
}

func NewUnknownThread(threadID int64) error {
	return &DomainError{
		Code:       CodeUnknownThread,
		Message:    fmt.Sprintf("thread %d not associated with any ticket", threadID),
		HTTPStatus: http.StatusNotFound,
	}
}

func NewAccessDenied() error {
	return &DomainError{
		Code:       CodeAccessDenied,
		Message:    "sender is not an administrator",
		UserReply:  "❌ Kein Zugang",
		HTTPStatus: http.StatusForbidden,
	}
}

// NewDeliveryFailure marks a failed transport send. userReply may be empty
// when the actor is not informed (admin-side sends).
func NewDeliveryFailure(err error, userReply string) error {
	return &DomainError{
		Code:       CodeDeliveryFailed,
		Message:    "transport delivery failed",
		UserReply:  userReply,
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

func NewStoreFailure(err error) error {
	return &DomainError{
		Code:       CodeStoreFailure,
		Message:    "store operation failed",
		UserReply:  "❌ Fehler bei der Bearbeitung der Anfrage. Versuchen Sie es später noch einmal.",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

func NewThreadUnavailable(err error) error {
	return &DomainError{
		Code:       CodeThreadUnavailable,
		Message:    "administrator thread creation unavailable",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// HasCode reports whether err carries the given domain error code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// UserReply extracts the localized user-facing text for err, if any.
func UserReply(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.UserReply
	}
	return ""
}
