package store

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies store failures so callers can branch on them.
type ErrorKind string

const (
	KindConstraint ErrorKind = "constraint"
	KindNotFound   ErrorKind = "not_found"
	KindIO         ErrorKind = "io"
)

// StoreError wraps a failed store operation. Callers must not assume
// partial writes occurred when one is returned.
type StoreError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("store: %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a not-found store error.
func IsNotFound(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Kind == KindNotFound
}

// IsConstraint reports whether err is a constraint-violation store error.
func IsConstraint(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Kind == KindConstraint
}

// wrapErr builds a StoreError, inferring the kind from the sqlite
// error text for constraint violations.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	kind := KindIO
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint") ||
		strings.Contains(msg, "FOREIGN KEY constraint") ||
		strings.Contains(msg, "CHECK constraint") {
		kind = KindConstraint
	}
	return &StoreError{Kind: kind, Op: op, Err: err}
}

func notFound(op string, what string) error {
	return &StoreError{Kind: KindNotFound, Op: op, Err: fmt.Errorf("%s not found", what)}
}
