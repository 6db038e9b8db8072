package repository

import "time"

type storeOptions struct {
	hashKey     string
	busyTimeout time.Duration
	now         func() time.Time
}

func defaultStoreOptions() storeOptions {
	return storeOptions{
		hashKey:     "truerate:weights",
		busyTimeout: 5 * time.Second,
		now:         time.Now,
	}
}

// Option applies a configuration option to a store.
type Option func(*storeOptions)

// WithHashKey sets the Redis hash holding the weights.
func WithHashKey(key string) Option {
	return func(o *storeOptions) {
		if key != "" {
			o.hashKey = key
		}
	}
}

// WithBusyTimeout sets how long SQLite waits on a locked database.
func WithBusyTimeout(d time.Duration) Option {
	return func(o *storeOptions) {
		if d > 0 {
			o.busyTimeout = d
		}
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *storeOptions) {
		if now != nil {
			o.now = now
		}
	}
}
