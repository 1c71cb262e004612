package store

import "errors"

var (
	ErrNotFound           = errors.New("inquiry not found")
	ErrAlreadyProcessed   = errors.New("inquiry already processed")
	ErrNotProcessing      = errors.New("inquiry is not processing")
	ErrInvalidQuestion    = errors.New("invalid question number")
	ErrSnapshotInProgress = errors.New("snapshot generation in progress")
	ErrNoSnapshot         = errors.New("no snapshot available")
)
