package tui

import "errors"

// ErrMissingStatusReporter is returned when the status service is not provided.
var ErrMissingStatusReporter = errors.New("tui: status service is required")
