package harness

import (
	"errors"
	"fmt"
)

// RunError is a run-aborting error. Per-unit failures are never
// RunErrors; they are verdicts in the Report.
type RunError struct {
	// Code identifies the error category.
	Code RunErrorCode

	// Module is the module identifier the run was started with.
	Module string

	// Unit names the unit being processed, for defects.
	Unit string

	// Err is the underlying cause.
	Err error
}

// RunErrorCode categorizes run errors.
type RunErrorCode string

const (
	// ErrCodeModuleNotFound indicates the module identifier could not be resolved.
	ErrCodeModuleNotFound RunErrorCode = "MODULE_NOT_FOUND"

	// ErrCodeHarnessDefect indicates the harness machinery itself failed.
	ErrCodeHarnessDefect RunErrorCode = "HARNESS_DEFECT"

	// ErrCodeDiscovery indicates any other enumeration failure.
	ErrCodeDiscovery RunErrorCode = "DISCOVERY_FAILED"
)

// Error implements the error interface.
func (e *RunError) Error() string {
	if e.Unit != "" {
		return fmt.Sprintf("%s: module %q, unit %q: %v", e.Code, e.Module, e.Unit, e.Err)
	}
	return fmt.Sprintf("%s: module %q: %v", e.Code, e.Module, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// IsModuleNotFound returns true if err is a MODULE_NOT_FOUND run error.
// Uses errors.As to handle wrapped errors.
func IsModuleNotFound(err error) bool {
	var re *RunError
	if errors.As(err, &re) {
		return re.Code == ErrCodeModuleNotFound
	}
	return false
}

// IsHarnessDefect returns true if err is a HARNESS_DEFECT run error.
func IsHarnessDefect(err error) bool {
	var re *RunError
	if errors.As(err, &re) {
		return re.Code == ErrCodeHarnessDefect
	}
	return false
}
