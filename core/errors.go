package core

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

// FieldMap returns the field errors keyed by field name.
func (err ValidationError) FieldMap() map[string]string {
	m := make(map[string]string, len(err.Fields))
	for _, f := range err.Fields {
		m[f.Field] = f.Error
	}
	return m
}

// DomainError is a business rule violation, its message is meant for the end user.
type DomainError struct {
	Message string
}

func NewDomainError(msg string) error {
	return &DomainError{Message: msg}
}

func (err DomainError) Error() string {
	return err.Message
}

// NetworkError is a transport failure: the request never got a response.
type NetworkError struct {
	Op  string
	Err error
}

func (err NetworkError) Error() string {
	return err.Op + ": " + err.Err.Error()
}

func (err NetworkError) Unwrap() error {
	return err.Err
}

// StatusError is a non-success response status.
type StatusError struct {
	Code    int
	Message string
}

func (err StatusError) Error() string {
	if err.Message == "" {
		return fmt.Sprintf("%d %s", err.Code, http.StatusText(err.Code))
	}
	return fmt.Sprintf("%d %s: %s", err.Code, http.StatusText(err.Code), err.Message)
}

// AuthorizationError means there is no session, or the entity is not owned by the session's user.
type AuthorizationError struct {
	Reason string
}

func NewAuthorizationError(reason string) error {
	return &AuthorizationError{Reason: reason}
}

func (err AuthorizationError) Error() string {
	return "not authorized: " + err.Reason
}

func IsDomainError(err error) bool {
	var derr *DomainError
	return errors.As(err, &derr)
}

func IsAuthorizationError(err error) bool {
	var aerr *AuthorizationError
	return errors.As(err, &aerr)
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
