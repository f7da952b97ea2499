// Package inspecterr defines the error kinds shared by every inspection layer.
//
// Kinds are sentinel values; callers wrap them with fmt.Errorf("%w") and match
// them with errors.Is. Configuration, authentication and access errors are
// fatal and abort a run before any standard executes. NotFound is recovered
// locally by standards and treated as "file absent".
package inspecterr

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration  = errors.New("configuration error")
	ErrAuthentication = errors.New("authentication error")
	ErrAccess         = errors.New("access error")
	ErrNotFound       = errors.New("not found")
)

// Exit codes returned by the CLI.
const (
	ExitOK              = 0
	ExitCriticalFailure = 1
	ExitPartialFailure  = 2
	ExitFatal           = 3
)

func Configuration(format string, args ...any) error {
	return wrap(ErrConfiguration, format, args...)
}

func Authentication(format string, args ...any) error {
	return wrap(ErrAuthentication, format, args...)
}

func Access(format string, args ...any) error {
	return wrap(ErrAccess, format, args...)
}

func NotFound(format string, args ...any) error {
	return wrap(ErrNotFound, format, args...)
}

func wrap(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

// IsFatal reports whether err must abort an inspection run.
func IsFatal(err error) bool {
	return errors.Is(err, ErrConfiguration) ||
		errors.Is(err, ErrAuthentication) ||
		errors.Is(err, ErrAccess)
}
