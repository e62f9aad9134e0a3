package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/tickcal/internal/logger"
)

// Sentinel errors for the failure categories the store and storage layers
// report. Wrap them with %w and match with Is.
var (
	// ErrValidation indicates invalid caller input, e.g. an empty habit name
	ErrValidation = stderrors.New("validation failed")

	// ErrNotFound indicates an unknown habit id was referenced
	ErrNotFound = stderrors.New("not found")

	// ErrPersistence indicates a durable-storage read or write failure
	ErrPersistence = stderrors.New("persistence failure")

	// ErrDataIntegrity indicates a malformed persisted blob. Restore treats
	// this as fail-closed: discard everything, never merge partially.
	ErrDataIntegrity = stderrors.New("data integrity violation")
)

// Validationf wraps ErrValidation with a formatted message
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundf wraps ErrNotFound with a formatted message
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Persistencef wraps ErrPersistence with a formatted message
func Persistencef(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrPersistence, fmt.Sprintf(format, args...))
}

// DataIntegrityf wraps ErrDataIntegrity with a formatted message
func DataIntegrityf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrDataIntegrity, fmt.Sprintf(format, args...))
}

// Is reports whether any error in err's chain matches target.
// Re-exported so callers don't need to import both this package and the
// standard library errors package.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}
