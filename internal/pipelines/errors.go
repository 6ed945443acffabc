package pipelines

import "errors"

// ErrNotFailed is returned when analysis is requested for a run that has not
// failed.
var ErrNotFailed = errors.New("pipeline run has not failed")

// ErrInvalidStatus is returned when a run carries an unknown status.
var ErrInvalidStatus = errors.New("invalid pipeline status")
