package core

import (
	"errors"
	"fmt"

	"store-admin/internal/store"
)

// ErrorKind classifies service errors for callers and transport adapters.
type ErrorKind int

const (
	// KindValidation is bad input; reported to the caller, never retried.
	KindValidation ErrorKind = iota + 1
	// KindPrecondition is a state conflict such as confirming a confirmed order.
	KindPrecondition
	// KindNotFound is a missing document.
	KindNotFound
	// KindStore is a backend failure surfaced verbatim for a manual retry.
	KindStore
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindPrecondition:
		return "precondition_failed"
	case KindNotFound:
		return "not_found"
	case KindStore:
		return "store"
	default:
		return "unknown"
	}
}

// ErrAlreadyConfirmed is matched with errors.Is when confirming an order that is already confirmed.
var ErrAlreadyConfirmed = errors.New("order already confirmed")

// Error is the error type returned by every core service.
type Error struct {
	Kind    ErrorKind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": " + e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Validationf builds a KindValidation error.
func Validationf(op, format string, args ...any) error {
	return &Error{Kind: KindValidation, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Preconditionf builds a KindPrecondition error.
func Preconditionf(op, format string, args ...any) error {
	return &Error{Kind: KindPrecondition, Op: op, Message: fmt.Sprintf(format, args...)}
}

// storeErr wraps a store failure. Missing documents become KindNotFound;
// errors that are already *Error pass through unchanged.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		return err
	}
	if errors.Is(err, store.ErrNotFound) {
		return &Error{Kind: KindNotFound, Op: op, Err: err}
	}
	return &Error{Kind: KindStore, Op: op, Err: err}
}

// KindOf returns the kind of err, or 0 when err is not a core error.
func KindOf(err error) ErrorKind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return 0
}

func IsValidation(err error) bool   { return KindOf(err) == KindValidation }
func IsPrecondition(err error) bool { return KindOf(err) == KindPrecondition }
func IsNotFound(err error) bool     { return KindOf(err) == KindNotFound }
func IsStore(err error) bool        { return KindOf(err) == KindStore }

// AlreadyConfirmedError reports a confirmation that found the order already confirmed.
// Existing is the ConfirmedPayment on record, or nil when none exists (a true conflict).
type AlreadyConfirmedError struct {
	OrderID  string
	Existing *ConfirmedPayment
}

func (e *AlreadyConfirmedError) Error() string {
	if e.Existing != nil {
		return fmt.Sprintf("order %s already confirmed as payment %s", e.OrderID, e.Existing.ID)
	}
	return fmt.Sprintf("order %s already confirmed but no confirmed payment exists", e.OrderID)
}

func (e *AlreadyConfirmedError) Unwrap() error { return ErrAlreadyConfirmed }

func alreadyConfirmed(orderID string, existing *ConfirmedPayment) error {
	return &Error{
		Kind: KindPrecondition,
		Op:   "confirm order",
		Err:  &AlreadyConfirmedError{OrderID: orderID, Existing: existing},
	}
}
