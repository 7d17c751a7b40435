// Package exitcodes defines the numeric exit statuses reported by caldpctl.
// Batch and CI wrappers key retry/triage decisions off these values, so they
// are part of the tool's contract and must stay stable.
package exitcodes

import (
	"errors"
	"fmt"
)

const (
	// Success indicates the command completed without error.
	Success = 0
	// GenericError covers failures with no more specific classification.
	GenericError = 1
	// CmdlineError indicates the command line invocation was incorrect.
	CmdlineError = 2
	// CheckError indicates one or more source checks reported findings.
	CheckError = 21
	// RegistryLoginError indicates the container registry login flow failed.
	RegistryLoginError = 22
	// BootstrapError indicates the calibration environment bootstrap failed.
	BootstrapError = 23
)

var explanations = map[int]string{
	Success:            "The command completed successfully.",
	GenericError:       "An unclassified error occurred.",
	CmdlineError:       "The program command line invocation was incorrect.",
	CheckError:         "A style, lint, or security check reported findings.",
	RegistryLoginError: "Logging the container client into the image registry failed.",
	BootstrapError:     "Creating the calibration software environment failed.",
}

// Explain returns a one-line explanation for a known exit code.
func Explain(code int) string {
	if msg, ok := explanations[code]; ok {
		return msg
	}
	return "Unknown exit code."
}

// CodeError associates an error with the exit status the process should report.
type CodeError struct {
	Code int
	Err  error
}

// Error implements the error interface.
func (e *CodeError) Error() string {
	return fmt.Sprintf("%s (exit %d)", e.Err, e.Code)
}

// Unwrap exposes the wrapped error for errors.Is/As.
func (e *CodeError) Unwrap() error {
	return e.Err
}

// WithCode wraps err with an exit code; a nil err passes through unchanged.
func WithCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &CodeError{Code: code, Err: err}
}

// FromError extracts the exit code for an error, defaulting to GenericError.
func FromError(err error) int {
	if err == nil {
		return Success
	}
	var ce *CodeError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return GenericError
}
