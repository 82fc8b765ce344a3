package service

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Kind classifies a service error for callers and the HTTP layer
type Kind string

const (
	KindValidation Kind = "validation_error"
	KindConflict   Kind = "conflict_error"
	KindNotFound   Kind = "not_found_error"
	KindState      Kind = "state_error"
	KindTransient  Kind = "transient_error"
)

// Error is a classified business-rule or infrastructure failure
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Validationf reports a malformed or missing input
func Validationf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Conflictf reports a duplicate identifier or a repeated terminal action
func Conflictf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf reports an unknown identifier
func NotFoundf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Statef reports an operation attempted from an invalid lifecycle state
func Statef(format string, args ...interface{}) *Error {
	return &Error{Kind: KindState, Message: fmt.Sprintf(format, args...)}
}

// Transientf reports a retryable infrastructure failure
func Transientf(cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: KindTransient, Message: fmt.Sprintf(format, args...), cause: cause}
}

// KindOf returns the kind of a service error, or KindTransient for anything
// unclassified (storage failures are retryable by policy).
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindTransient
}

// HTTPStatus maps an error kind to its response status
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindState:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusServiceUnavailable
	}
}

// wrapDBErr classifies a gorm error. Duplicate keys become conflicts, missing
// rows become not-found, everything else is treated as transient storage failure.
func wrapDBErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return Conflictf("%s already exists", what)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFoundf("%s not found", what)
	default:
		return Transientf(err, "storage unavailable while accessing %s", what)
	}
}

const (
	retryAttempts = 3
	retryBaseWait = 50 * time.Millisecond
)

// retryTransient runs op, retrying with backoff while it fails with a
// transient error. Only used on read paths; mutations surface immediately.
func retryTransient(log *zap.Logger, op func() error) error {
	var err error
	for attempt := 1; attempt <= retryAttempts; attempt++ {
		err = op()
		if err == nil || KindOf(err) != KindTransient {
			return err
		}
		if attempt < retryAttempts {
			wait := retryBaseWait * time.Duration(1<<(attempt-1))
			log.Warn("Transient storage error, retrying",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", wait),
				zap.Error(err))
			time.Sleep(wait)
		}
	}
	return err
}
