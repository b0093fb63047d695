package cli

import (
	"context"
	"errors"

	"github.com/JonMunkholm/sakilaimport/internal/core"
	"github.com/JonMunkholm/sakilaimport/internal/schema"
)

// Exit codes. Each failure class has its own status so scripts can tell
// them apart.
const (
	ExitOK          = 0
	ExitConfig      = 41 // invalid environment configuration
	ExitUsage       = 42 // wrong arguments or flags
	ExitSchema      = 43 // schema file unreadable, invalid, or not matching the models
	ExitStore       = 44 // output store could not be created
	ExitRead        = 45 // snapshot could not be read
	ExitParse       = 46 // snapshot is not JSON
	ExitFormat      = 47 // snapshot does not have the table/record shape
	ExitIntegrity   = 48 // integrity or coercion failure while loading
	ExitCommit      = 50 // the single commit failed
	ExitInterrupted = 130
)

// exitError carries the exit status for a failed step.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

// exitCode returns the status for err. Errors without an explicit code are
// classified by type.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if errors.Is(err, context.Canceled) {
		return ExitInterrupted
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return classifyImportError(err)
}

// classifyImportError maps an error returned by the importer.
func classifyImportError(err error) int {
	var mismatch *schema.MismatchError
	switch {
	case errors.As(err, &mismatch), errors.Is(err, schema.ErrUnknownEntity):
		return ExitSchema
	case errors.Is(err, core.ErrCommit):
		return ExitCommit
	case errors.Is(err, core.ErrIntegrity), errors.Is(err, core.ErrCoercion):
		return ExitIntegrity
	case errors.Is(err, core.ErrFormat):
		return ExitFormat
	default:
		return ExitIntegrity
	}
}

// classifyReadError maps an error returned while reading the snapshot.
func classifyReadError(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidJSON):
		return ExitParse
	case errors.Is(err, core.ErrFormat):
		return ExitFormat
	default:
		return ExitRead
	}
}
