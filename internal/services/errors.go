package services

import (
	"errors"
	"time"

	"github.com/unisoruyor/apiserver/internal/validation"
)

// ErrorKind classifies a service failure for the transport layer.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindTooLarge
	KindRateLimited
	KindUnavailable
)

// Error is a user-facing failure with a Turkish message.
type Error struct {
	Kind       ErrorKind
	Message    string
	Fields     map[string]string
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func ErrValidation(message string) *Error   { return newError(KindValidation, message) }
func ErrUnauthorized(message string) *Error { return newError(KindUnauthorized, message) }
func ErrForbidden(message string) *Error    { return newError(KindForbidden, message) }
func ErrNotFound(message string) *Error     { return newError(KindNotFound, message) }
func ErrConflict(message string) *Error     { return newError(KindConflict, message) }
func ErrTooLarge(message string) *Error     { return newError(KindTooLarge, message) }
func ErrUnavailable(message string) *Error  { return newError(KindUnavailable, message) }

// ErrRateLimited reports a cooldown or attempt limit with the wait time.
func ErrRateLimited(message string, retryAfter time.Duration) *Error {
	return &Error{Kind: KindRateLimited, Message: message, RetryAfter: retryAfter}
}

// IsKind reports whether err is a service Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var serr *Error
	return errors.As(err, &serr) && serr.Kind == kind
}

// validate runs struct validation and converts failures to a validation Error.
func validate(v any) error {
	err := validation.Struct(v)
	if err == nil {
		return nil
	}
	var verrs *validation.Errors
	if errors.As(err, &verrs) {
		return &Error{Kind: KindValidation, Message: verrs.Error(), Fields: verrs.Fields}
	}
	return err
}

const (
	msgUserNotFound     = "Kullanıcı bulunamadı"
	msgQuestionNotFound = "Soru bulunamadı"
	msgAnswerNotFound   = "Cevap bulunamadı"
	msgFileNotFound     = "Dosya bulunamadı"
	msgInternal         = "Sunucu hatası"
)
