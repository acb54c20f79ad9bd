package store

import (
	"errors"
	"fmt"
)

var (
	// ErrCannotDeleteDefault is returned when deleting the default configuration.
	ErrCannotDeleteDefault = errors.New("cannot delete the default configuration")
	// ErrConfigNotFound is returned for unknown configuration ids.
	ErrConfigNotFound = errors.New("configuration not found")
	// ErrInvalidID is returned for empty ids or ids a backend cannot store.
	ErrInvalidID = errors.New("invalid configuration id")

	// ErrImportMalformed marks import input that cannot be parsed.
	ErrImportMalformed = errors.New("malformed configuration")
	// ErrImportMissingFields marks import input without id or name.
	ErrImportMissingFields = errors.New("missing required fields")
)

// ImportError describes why Import rejected its input. Kind is
// ErrImportMalformed or ErrImportMissingFields; both it and the underlying
// cause match with errors.Is.
type ImportError struct {
	Kind error
	Err  error
}

func (e *ImportError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("import: %v", e.Kind)
	}
	return fmt.Sprintf("import: %v: %v", e.Kind, e.Err)
}

func (e *ImportError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
