package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures surfaced to callers.
type ErrorKind string

const (
	KindInvalidRequest ErrorKind = "invalid_request"
	KindNotFound       ErrorKind = "not_found"
	KindRejectedState  ErrorKind = "rejected_state"
	KindRemoteFailure  ErrorKind = "remote_failure"
)

// Sentinels for errors.Is checks against an *Error of the same kind.
var (
	ErrInvalidRequest = &Error{Kind: KindInvalidRequest}
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrRejectedState  = &Error{Kind: KindRejectedState}
	ErrRemoteFailure  = &Error{Kind: KindRemoteFailure}
)

// Error is a classified failure. Status is set for KindRejectedState.
type Error struct {
	Kind    ErrorKind
	Message string
	Status  IntentStatus
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func InvalidRequest(msg string) error {
	return &Error{Kind: KindInvalidRequest, Message: msg}
}

func NotFound(msg string, err error) error {
	return &Error{Kind: KindNotFound, Message: msg, Err: err}
}

func RemoteFailure(msg string, err error) error {
	return &Error{Kind: KindRemoteFailure, Message: msg, Err: err}
}

func RejectedState(status IntentStatus) error {
	return &Error{
		Kind:    KindRejectedState,
		Message: fmt.Sprintf("Payment cannot be refunded or canceled in its current state: %s", status),
		Status:  status,
	}
}

// KindOf returns the kind of err, or "" when err is not classified.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
