package errors

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies an error for propagation policy: infrastructure and
// not-found failures are eligible for data-source fallback, auth failures
// always escape to the re-authentication path, validation and slot-conflict
// failures are surfaced to the caller as actionable messages.
type Kind int

const (
	KindUnknown Kind = iota
	KindInfrastructure
	KindNotFound
	KindAuth
	KindValidation
	KindSlotConflict
)

func (k Kind) String() string {
	switch k {
	case KindInfrastructure:
		return "infrastructure"
	case KindNotFound:
		return "not_found"
	case KindAuth:
		return "auth"
	case KindValidation:
		return "validation"
	case KindSlotConflict:
		return "slot_conflict"
	default:
		return "unknown"
	}
}

// AppError is the application error carried across layers.
type AppError struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func Infrastructure(message string, err error) *AppError {
	return &AppError{Kind: KindInfrastructure, Message: message, Err: err}
}

func NotFound(resource string, err error) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf("%s not found", resource), Err: err}
}

func Auth(message string, err error) *AppError {
	return &AppError{Kind: KindAuth, Message: message, Err: err}
}

func Validation(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

func Validationf(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// SlotConflict signals that the requested interval was taken between slot
// listing and submission. Recoverable: the caller re-fetches slots.
func SlotConflict(message string) *AppError {
	return &AppError{Kind: KindSlotConflict, Message: message}
}

// KindOf extracts the classification of err, unwrapping as needed.
// Context deadline expiry counts as infrastructure so that slow upstreams
// degrade instead of stalling the workflow; explicit cancellation does not.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindInfrastructure
	}
	return KindUnknown
}

func IsInfrastructure(err error) bool { return KindOf(err) == KindInfrastructure }
func IsNotFound(err error) bool       { return KindOf(err) == KindNotFound }
func IsAuth(err error) bool           { return KindOf(err) == KindAuth }
func IsValidation(err error) bool     { return KindOf(err) == KindValidation }
func IsSlotConflict(err error) bool   { return KindOf(err) == KindSlotConflict }

// Fallbackable reports whether a data-source failure may be absorbed by a
// degraded tier. Auth failures never are; neither is a caller that went
// away. Unclassified errors are treated as infrastructure: serving coarse
// data beats stalling the booking flow.
func Fallbackable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	switch KindOf(err) {
	case KindAuth, KindValidation, KindSlotConflict:
		return false
	default:
		return true
	}
}
