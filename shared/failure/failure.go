// Package failure carries the HTTP status an error should surface with.
// Anything that is not a *Failure is treated as a 500 by the transport.
package failure

import (
	"errors"
	"net/http"

	"github.com/lib/pq"
)

const (
	pqUniqueViolation      = "23505"
	pqForeignKeyViolation  = "23503"
	pqCheckViolation       = "23514"
	pqExclusionViolation   = "23P01"
	pqInvalidText          = "22P02"
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
)

type Failure struct {
	Code    int    `json:"code"`
	Message string `json:"message"`

	cause error
}

var ForbiddenError = &Failure{Code: http.StatusForbidden, Message: "You don't have the required permissions"}

func (e *Failure) Error() string {
	return e.Message
}

// Unwrap exposes the storage error a Failure was translated from, if any.
func (e *Failure) Unwrap() error {
	return e.cause
}

func New(code int, msg string) error {
	return &Failure{Code: code, Message: msg}
}

// BadRequest surfaces err's message as a 400. A nil err stays nil.
func BadRequest(err error) error {
	if err == nil {
		return nil
	}

	return &Failure{Code: http.StatusBadRequest, Message: err.Error(), cause: err}
}

func BadRequestFromString(msg string) error {
	return New(http.StatusBadRequest, msg)
}

func Unauthorized(msg string) error {
	return New(http.StatusUnauthorized, msg)
}

func Forbidden(msg string) error {
	return New(http.StatusForbidden, msg)
}

// NotFound uses msg verbatim, e.g. "Booking not found".
func NotFound(msg string) error {
	return New(http.StatusNotFound, msg)
}

func Conflict(msg string) error {
	return New(http.StatusConflict, msg)
}

// FromDatabase translates a PostgreSQL constraint error into the nearest Failure.
// It returns nil when err carries no code it knows about.
func FromDatabase(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}

	var fail *Failure

	switch string(pqErr.Code) {
	case pqUniqueViolation:
		fail = &Failure{Code: http.StatusConflict, Message: "record already exists"}
	case pqExclusionViolation:
		fail = &Failure{Code: http.StatusConflict, Message: "record overlaps an existing one"}
	case pqForeignKeyViolation:
		fail = &Failure{Code: http.StatusBadRequest, Message: "referenced record does not exist"}
	case pqCheckViolation:
		fail = &Failure{Code: http.StatusBadRequest, Message: "value violates constraint " + pqErr.Constraint}
	case pqInvalidText:
		fail = &Failure{Code: http.StatusBadRequest, Message: "malformed identifier or value"}
	case pqSerializationFailure, pqDeadlockDetected:
		fail = &Failure{Code: http.StatusConflict, Message: "concurrent update, please retry"}
	default:
		return nil
	}

	fail.cause = err

	return fail
}

// IsUniqueViolation reports whether err stems from a 23505 unique violation.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error

	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

// IsRetryable reports whether err is a serialization failure or deadlock that a new transaction may resolve.
func IsRetryable(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}

	return pqErr.Code == pqSerializationFailure || pqErr.Code == pqDeadlockDetected
}

func IsConflict(err error) bool {
	return GetCode(err) == http.StatusConflict
}

// GetCode finds the first Failure in err's chain; anything else is a 500.
func GetCode(err error) int {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Code
	}

	return http.StatusInternalServerError
}
