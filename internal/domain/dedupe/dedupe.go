// Package dedupe tracks client feedback ids so a retried submission is
// applied to the learner once.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/Sajal133/truerate-api/pkg/metrics"
)

const defaultMaxSize = 50000

// Deduper records seen ids.
type Deduper interface {
	// SeenAndRecord reports whether id was already seen and records it if not.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets id so a failed submission can be retried.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// inMemoryDeduper keeps a bounded FIFO window of ids in a ring buffer.
// seen maps an id to the sequence number of the slot that holds it; a slot
// whose sequence no longer matches was unrecorded and is skipped on eviction.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]uint64
	ring    []string
	seqs    []uint64
	next    uint64
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]uint64)
	if d.maxSize > 0 {
		d.ring = make([]string, d.maxSize)
		d.seqs = make([]uint64, d.maxSize)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}

	seq := d.next
	d.next++
	if d.maxSize > 0 {
		slot := int(seq % uint64(d.maxSize))
		if seq >= uint64(d.maxSize) {
			old := d.ring[slot]
			if s, ok := d.seen[old]; ok && s == d.seqs[slot] {
				delete(d.seen, old)
				d.size.Add(-1)
			}
		}
		d.ring[slot] = id
		d.seqs[slot] = seq
	}
	d.seen[id] = seq
	metrics.UpdateDedupeSize(d.size.Add(1))
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		delete(d.seen, id)
		metrics.UpdateDedupeSize(d.size.Add(-1))
	}
}

// Size returns the current number of remembered ids.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
