package domain

import (
	"fmt"
	"strings"
)

// NotFoundError is returned when no record of the class has the identifier.
type NotFoundError struct {
	Class Class
	ID    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Class, e.ID)
}

// ConflictError is returned when a uniqueness constraint other than the
// identifier is violated, e.g. a duplicate abbreviation.
type ConflictError struct {
	Class  Class
	Fields []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s with the same %s already exists", e.Class, strings.Join(e.Fields, ", "))
}

// ReferenceError is returned when a record points at a record that does not
// exist. Class and ID are zero when storage cannot tell which reference failed.
type ReferenceError struct {
	Class Class // class of the missing record
	ID    string
}

func (e *ReferenceError) Error() string {
	switch {
	case e.Class.Name == "":
		return "referenced record does not exist"
	case e.ID == "":
		return fmt.Sprintf("referenced %s does not exist", e.Class)
	}
	return fmt.Sprintf("referenced %s %q does not exist", e.Class, e.ID)
}

// InUseError is returned when deleting a record other records still reference.
type InUseError struct {
	Class Class
	ID    string
}

func (e *InUseError) Error() string {
	return fmt.Sprintf("%s %q is still referenced", e.Class, e.ID)
}

// ValidationError is returned for input rejected before reaching storage.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// TransitionError is returned when a state transition is not allowed.
type TransitionError struct {
	Event   Event
	Current Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("event %q is not valid from state %q", e.Event, e.Current)
}

// MalformedIdentifierError means a stored identifier is not PREFIX_digits.
// It points at corrupt data and must not be retried.
type MalformedIdentifierError struct {
	Class Class
	Value string
}

func (e *MalformedIdentifierError) Error() string {
	return fmt.Sprintf("malformed %s identifier %q", e.Class, e.Value)
}

// PrefixMismatchError means a stored identifier carries another class's
// prefix. It points at inconsistent data and must not be retried.
type PrefixMismatchError struct {
	Class  Class
	Value  string
	Prefix string
}

func (e *PrefixMismatchError) Error() string {
	return fmt.Sprintf("%s identifier %q has prefix %q, want %q", e.Class, e.Value, e.Prefix, e.Class.Prefix)
}

// DuplicateIdentifierError is returned when an insert collides with an
// existing identifier. Creation retries minting a bounded number of times.
type DuplicateIdentifierError struct {
	Class Class
	ID    string
}

func (e *DuplicateIdentifierError) Error() string {
	return fmt.Sprintf("%s identifier %q is already taken", e.Class, e.ID)
}

// StoreUnavailableError wraps transient storage failures. Callers may retry.
type StoreUnavailableError struct {
	Op  string
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("store unavailable during %s: %v", e.Op, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error { return e.Err }
