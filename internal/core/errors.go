package core

import (
	"errors"
	"fmt"
	"strings"
)

// Error categories. Every import failure matches exactly one of these with
// errors.Is.
var (
	ErrFormat    = errors.New("format error")
	ErrIntegrity = errors.New("integrity error")
	ErrCoercion  = errors.New("coercion error")
	ErrCommit    = errors.New("commit failed")

	// ErrInvalidJSON is returned for input that is not JSON at all.
	ErrInvalidJSON = errors.New("invalid json")
	// ErrInputTooLarge is returned when the snapshot exceeds the size limit.
	ErrInputTooLarge = errors.New("input too large")
)

// FormatError reports input that does not have the table/record shape.
type FormatError struct {
	Table  string // empty for document-level problems
	Index  int    // record index, -1 when not record specific
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	var b strings.Builder
	b.WriteString("format error")
	if e.Table != "" {
		fmt.Fprintf(&b, ": table %s", e.Table)
		if e.Index >= 0 {
			fmt.Fprintf(&b, " record %d", e.Index)
		}
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *FormatError) Is(target error) bool { return target == ErrFormat }
func (e *FormatError) Unwrap() error        { return e.Err }

// IntegrityKind classifies an IntegrityError.
type IntegrityKind int

const (
	DuplicateKey IntegrityKind = iota + 1
	UnresolvedReference
	DanglingReference
	UnloadedTable
)

func (k IntegrityKind) String() string {
	switch k {
	case DuplicateKey:
		return "duplicate primary key"
	case UnresolvedReference:
		return "unresolved reference"
	case DanglingReference:
		return "dangling deferred reference"
	case UnloadedTable:
		return "table not loaded"
	default:
		return "integrity violation"
	}
}

// IntegrityError reports a structural problem in otherwise well-formed input.
type IntegrityError struct {
	Kind   IntegrityKind
	Table  string // table being loaded
	Field  string // offending field, if any
	Key    int    // offending key value
	Target string // referenced table, if any
	Keys   []int  // unresolved keys for DanglingReference
}

func (e *IntegrityError) Error() string {
	switch e.Kind {
	case DuplicateKey:
		return fmt.Sprintf("integrity error: table %s: %s %s=%d", e.Table, e.Kind, e.Field, e.Key)
	case UnresolvedReference:
		return fmt.Sprintf("integrity error: table %s: %s %s=%d: no such %s", e.Table, e.Kind, e.Field, e.Key, e.Target)
	case DanglingReference:
		return fmt.Sprintf("integrity error: table %s: %s to %s keys %v", e.Table, e.Kind, e.Target, e.Keys)
	default:
		if e.Table == "" {
			return fmt.Sprintf("integrity error: %s: %s", e.Kind, e.Target)
		}
		return fmt.Sprintf("integrity error: table %s: %s: %s", e.Table, e.Kind, e.Target)
	}
}

func (e *IntegrityError) Is(target error) bool { return target == ErrIntegrity }

// CoercionError reports a field that cannot be converted to its destination type.
type CoercionError struct {
	Table  string
	Key    string // primary key of the record, when known
	Field  string
	Value  any
	Reason string
	Err    error
}

func (e *CoercionError) Error() string {
	var b strings.Builder
	b.WriteString("coercion error: ")
	if e.Table != "" {
		fmt.Fprintf(&b, "table %s ", e.Table)
		if e.Key != "" {
			fmt.Fprintf(&b, "record %s ", e.Key)
		}
	}
	fmt.Fprintf(&b, "field %s: %s", e.Field, e.Reason)
	if e.Value != nil {
		fmt.Fprintf(&b, " (value %#v)", e.Value)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *CoercionError) Is(target error) bool { return target == ErrCoercion }
func (e *CoercionError) Unwrap() error        { return e.Err }

// CommitError wraps a failure of the persistence collaborator's commit.
type CommitError struct {
	Err error
}

func (e *CommitError) Error() string        { return fmt.Sprintf("commit failed: %v", e.Err) }
func (e *CommitError) Is(target error) bool { return target == ErrCommit }
func (e *CommitError) Unwrap() error        { return e.Err }
