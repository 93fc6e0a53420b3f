package render

import "errors"

// Sentinel kinds for renderer errors.
var (
	ErrSessionClosed = errors.New("renderer session closed")
	ErrTemplate      = errors.New("template unavailable")
	ErrExport        = errors.New("export failed")
	ErrOutputDir     = errors.New("output directory unavailable")
)
