package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrClosed        = errors.New("store closed")
	ErrEmptyKey      = errors.New("empty weight key")
	ErrOpenStore     = errors.New("open store failed")
	ErrSnapshotWrite = errors.New("write snapshot failed")
	ErrSnapshotRead  = errors.New("read snapshot failed")
)
