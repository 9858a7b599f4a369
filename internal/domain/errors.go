package domain

import "errors"

var (
	// ErrEngineStart is fatal for a whole run.
	ErrEngineStart = errors.New("browser engine failed to start")
	// ErrInvalidParams is returned before any navigation happens.
	ErrInvalidParams = errors.New("invalid search parameters")
	ErrNavigation    = errors.New("navigation failed")
	// ErrSubmitFailed means no submit control could be clicked. It is
	// never retried.
	ErrSubmitFailed = errors.New("search form submit failed")
	// ErrNoAttachment is an expected outcome: many notices have no PDF.
	ErrNoAttachment = errors.New("no attachment found")
	ErrNotFound     = errors.New("record not found")
)
