package service

import (
	"errors"
)

// ErrorKind classifies service failures so the transport layer can pick a
// status code without inspecting messages
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindDuplicate  ErrorKind = "duplicate"
	KindNotFound   ErrorKind = "not_found"
	KindConflict   ErrorKind = "conflict"
	KindUpload     ErrorKind = "upload"
	KindInternal   ErrorKind = "internal"
)

// Error is returned by every service operation
type Error struct {
	Kind    ErrorKind
	Message string
	// Count is the number of referencing products for KindConflict
	Count int
	Err   error
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

// KindOf reports the kind of err; unclassified errors are internal
func KindOf(err error) ErrorKind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindInternal
}

func validationError(message string, err error) *Error {
	return &Error{Kind: KindValidation, Message: message, Err: err}
}

func duplicateError(message string) *Error {
	return &Error{Kind: KindDuplicate, Message: message}
}

func notFoundError(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func conflictError(message string, count int) *Error {
	return &Error{Kind: KindConflict, Message: message, Count: count}
}

func uploadError(err error) *Error {
	return &Error{Kind: KindUpload, Message: "Error uploading image", Err: err}
}

func internalError(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}
