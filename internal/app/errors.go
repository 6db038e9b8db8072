package service

import "errors"

var (
	// ErrBatchTooLarge is returned when a batch exceeds the configured limit.
	ErrBatchTooLarge = errors.New("batch too large")
	// ErrInvalidFeedback is returned for malformed feedback.
	ErrInvalidFeedback = errors.New("invalid feedback")
	// ErrFeedbackNotSaved is returned when the feedback log rejects a vote.
	ErrFeedbackNotSaved = errors.New("feedback not saved")
	// ErrStopped is returned by Start after Stop; the persist queue is closed for good.
	ErrStopped = errors.New("service stopped")
)
