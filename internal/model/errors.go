package model

import (
	"errors"
	"strings"
)

// ErrorKind classifies a TaskError.
type ErrorKind string

const (
	KindValidation ErrorKind = "VALIDATION_ERROR"
	KindNotFound   ErrorKind = "NOT_FOUND"
	KindDependency ErrorKind = "DEPENDENCY_ERROR"
	KindStorage    ErrorKind = "STORAGE_ERROR"
)

// TaskError represents a domain error for tasks.
// Callers branch on Kind (or errors.Is against the sentinels below), never on Message.
type TaskError struct {
	Kind    ErrorKind
	Message string
	// BlockedBy names the tasks responsible for a dependency conflict.
	BlockedBy []string
	Cause     error
}

func (e *TaskError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *TaskError) Unwrap() error {
	return e.Cause
}

// Is matches any TaskError of the same kind.
func (e *TaskError) Is(target error) bool {
	var t *TaskError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrValidation = &TaskError{Kind: KindValidation, Message: "validation failed"}
	ErrNotFound   = &TaskError{Kind: KindNotFound, Message: "task not found"}
	ErrDependency = &TaskError{Kind: KindDependency, Message: "dependency conflict"}
	ErrStorage    = &TaskError{Kind: KindStorage, Message: "storage operation failed"}
)

// NewValidationError returns a VALIDATION_ERROR with the given message.
func NewValidationError(msg string) *TaskError {
	return &TaskError{Kind: KindValidation, Message: msg}
}

// NewNotFoundError returns a NOT_FOUND error naming the missing id.
func NewNotFoundError(id string) *TaskError {
	return &TaskError{Kind: KindNotFound, Message: "task not found: " + id}
}

// NewDependencyError returns a DEPENDENCY_ERROR listing the blocking tasks.
func NewDependencyError(msg string, blockedBy []string) *TaskError {
	if len(blockedBy) > 0 {
		msg = msg + ": " + strings.Join(blockedBy, ", ")
	}
	return &TaskError{Kind: KindDependency, Message: msg, BlockedBy: blockedBy}
}

// WrapStorage wraps an adapter failure as STORAGE_ERROR.
// Errors that already carry a kind are returned unchanged.
func WrapStorage(err error) error {
	if err == nil {
		return nil
	}
	var te *TaskError
	if errors.As(err, &te) {
		return err
	}
	return &TaskError{Kind: KindStorage, Message: ErrStorage.Message, Cause: err}
}

// KindOf returns the kind carried by err, or "" when err is not a TaskError.
func KindOf(err error) ErrorKind {
	var te *TaskError
	if errors.As(err, &te) {
		return te.Kind
	}
	return ""
}
