package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for errors.Is() checking.
var (
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("validation error")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)

// Validation messages shared by entity and request validation.
const (
	MsgRequired       = "is required"
	MsgMustNotBeBlank = "must not be blank"
	MsgMustBePositive = "must be greater than 0"
)

// Request locations a validation failure can originate from.
const (
	LocationBody  = "body"
	LocationQuery = "query"
	LocationPath  = "path"
)

// ViolationKind classifies a single field-level validation failure so that
// clients can branch on it without parsing messages.
type ViolationKind string

const (
	// KindMissing marks a required field that was absent or null.
	KindMissing ViolationKind = "missing"
	// KindOutOfRange marks a numeric field outside its permitted bounds.
	KindOutOfRange ViolationKind = "out_of_range"
	// KindInvalid marks a malformed or unrecognized value.
	KindInvalid ViolationKind = "invalid"
)

// Violation is one field-level failure within a ValidationError. Location
// is the request part the field belongs to; empty means the owning
// ValidationError's Location.
type Violation struct {
	Kind     ViolationKind
	Message  string
	Location string
}

// ValidationError provides programmatic access to field-level validation failures.
// Use errors.Is(err, ErrValidation) for simple checks, or errors.As(err, &verr) to
// access verr.Fields for per-field error details.
//
// Every violation found is recorded; validation never stops at the first
// failing field.
type ValidationError struct {
	// Location is the request part the fields belong to (body, query, path).
	// Empty means body.
	Location string
	Fields   map[string]Violation
}

// NewValidationError returns an empty ValidationError for the given location.
func NewValidationError(location string) *ValidationError {
	return &ValidationError{Location: location, Fields: make(map[string]Violation)}
}

// Missing records a required field that was absent.
func (e *ValidationError) Missing(field string) {
	e.add(field, KindMissing, MsgRequired)
}

// OutOfRange records a numeric bound violation.
func (e *ValidationError) OutOfRange(field, msg string) {
	e.add(field, KindOutOfRange, msg)
}

// Invalid records a malformed value.
func (e *ValidationError) Invalid(field, msg string) {
	e.add(field, KindInvalid, msg)
}

// Has reports whether a violation was recorded for field.
func (e *ValidationError) Has(field string) bool {
	_, ok := e.Fields[field]
	return ok
}

// Err returns e as an error when it holds at least one violation, nil otherwise.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) add(field string, kind ViolationKind, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]Violation)
	}
	// First violation per field wins; later checks on the same field are
	// usually consequences of the first one.
	if _, exists := e.Fields[field]; exists {
		return
	}
	e.Fields[field] = Violation{Kind: kind, Message: msg, Location: e.Location}
}

// LocationOf returns the request part the violation on field belongs to.
func (e *ValidationError) LocationOf(field string) string {
	if v, ok := e.Fields[field]; ok && v.Location != "" {
		return v.Location
	}
	return e.Location
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		names = append(names, field)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, field := range names {
		parts = append(parts, field+": "+e.Fields[field].Message)
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NotFoundError reports that no record of Resource matched Key=Value.
type NotFoundError struct {
	Resource string
	Key      string
	Value    any
}

// NotFound builds a NotFoundError for a lookup by id.
func NotFound(resource string, id int64) *NotFoundError {
	return &NotFoundError{Resource: resource, Key: "id", Value: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with %s %v not found", e.Resource, e.Key, e.Value)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// ConflictError reports a uniqueness violation on Resource.Field.
type ConflictError struct {
	Resource string
	Field    string
	Value    any
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s with %s %v already exists", e.Resource, e.Field, e.Value)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// MergeValidation folds several validation results into a single
// *ValidationError so that callers report every violation at once. Each
// violation keeps the location it was recorded under. Nil entries are
// skipped. A non-validation error is returned unchanged.
func MergeValidation(errs ...error) error {
	var merged *ValidationError
	for _, err := range errs {
		if err == nil {
			continue
		}
		var verr *ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		if merged == nil {
			merged = NewValidationError(verr.Location)
		}
		for field := range verr.Fields {
			if merged.Has(field) {
				continue
			}
			v := verr.Fields[field]
			v.Location = verr.LocationOf(field)
			merged.Fields[field] = v
		}
	}
	if merged == nil {
		return nil
	}
	return merged.Err()
}
