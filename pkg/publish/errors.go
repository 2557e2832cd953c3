package publish

import (
	"fmt"
)

// Sentinels matched by the error types below through errors.Is.
var (
	ErrNotFound               = fmt.Errorf("source artifact not found")
	ErrInvalidName            = fmt.Errorf("invalid logical name")
	ErrDestinationUnavailable = fmt.Errorf("destination directory unavailable")
	ErrCopy                   = fmt.Errorf("copy failed")
)

// Error types for specific error conditions.
type (
	// NotFoundError is returned when the source artifact is missing or is not a regular file.
	NotFoundError struct {
		Path string
		Err  error
	}

	// InvalidNameError is returned when a logical name cannot be turned into a file name.
	InvalidNameError struct {
		Name   string
		Reason string
	}

	// DestinationUnavailableError is returned when the plugin directory cannot be used.
	DestinationUnavailableError struct {
		Dir string
		Err error
	}

	// CopyError is returned for I/O failures while copying the artifact.
	CopyError struct {
		Source      string
		Destination string
		Err         error
	}
)

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("source artifact %s not found: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error for NotFoundError.
func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(path string, err error) error {
	return &NotFoundError{Path: path, Err: err}
}

// Error implements the error interface for InvalidNameError.
func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid logical name %q: %s", e.Name, e.Reason)
}

// Is reports whether target is ErrInvalidName.
func (e *InvalidNameError) Is(target error) bool {
	return target == ErrInvalidName
}

// NewInvalidNameError creates a new InvalidNameError.
func NewInvalidNameError(name, reason string) error {
	return &InvalidNameError{Name: name, Reason: reason}
}

// Error implements the error interface for DestinationUnavailableError.
func (e *DestinationUnavailableError) Error() string {
	return fmt.Sprintf("destination directory %s unavailable: %v", e.Dir, e.Err)
}

// Unwrap returns the underlying error for DestinationUnavailableError.
func (e *DestinationUnavailableError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrDestinationUnavailable.
func (e *DestinationUnavailableError) Is(target error) bool {
	return target == ErrDestinationUnavailable
}

// NewDestinationUnavailableError creates a new DestinationUnavailableError.
func NewDestinationUnavailableError(dir string, err error) error {
	return &DestinationUnavailableError{Dir: dir, Err: err}
}

// Error implements the error interface for CopyError.
func (e *CopyError) Error() string {
	return fmt.Sprintf("failed to copy %s to %s: %v", e.Source, e.Destination, e.Err)
}

// Unwrap returns the underlying error for CopyError.
func (e *CopyError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrCopy.
func (e *CopyError) Is(target error) bool {
	return target == ErrCopy
}

// NewCopyError creates a new CopyError.
func NewCopyError(source, destination string, err error) error {
	return &CopyError{Source: source, Destination: destination, Err: err}
}
