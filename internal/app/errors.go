package service

import "errors"

// Sentinel kinds for run failures. These allow errors.Is from callers.
var (
	// ErrInputMissing means a required input file was absent at start.
	// Nothing was processed.
	ErrInputMissing = errors.New("input missing")

	// ErrFatalRun means a failure outside the per-record boundary aborted
	// the run, e.g. the renderer session could not be acquired.
	ErrFatalRun = errors.New("fatal run failure")
)
