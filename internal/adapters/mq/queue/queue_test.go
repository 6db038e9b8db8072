package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Sajal133/truerate-api/internal/domain/model"
)

func write(key string, v float64) model.WeightWrite {
	return model.WeightWrite{Key: key, Value: v, At: time.Now()}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
	if !q.Enqueue(ctx, write("bot:short", -0.05)) {
		t.Error("expected enqueue to succeed")
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	it := <-q.Dequeue(ctx)
	if it.Key != "bot:short" || it.Value != -0.05 {
		t.Errorf("unexpected item %+v", it)
	}
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if !q.Persist(write("a", 1)) || !q.Persist(write("b", 2)) {
		t.Fatal("expected persist to succeed")
	}
	if q.Persist(write("c", 3)) {
		t.Error("expected persist to fail when full")
	}
	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
	if q.Capacity() != 2 {
		t.Errorf("expected capacity 2, got %d", q.Capacity())
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(100))
	ctx := context.Background()
	const producers, perProducer = 10, 100

	var consumed sync.WaitGroup
	consumed.Add(producers * perProducer)
	for range producers {
		go func() {
			for range q.Dequeue(ctx) {
				consumed.Done()
			}
		}()
	}

	var produced sync.WaitGroup
	for i := range producers {
		produced.Add(1)
		go func() {
			defer produced.Done()
			for j := range perProducer {
				w := write(fmt.Sprintf("human:f%d_%d", i, j), float64(j))
				for !q.Enqueue(ctx, w) {
					time.Sleep(time.Millisecond)
				}
			}
		}()
	}
	produced.Wait()
	consumed.Wait()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected final length 0, got %d", l)
	}
	_ = q.Close()
}

func TestInMemoryQueue_CloseDrains(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	q.Enqueue(ctx, write("a", 1))
	q.Enqueue(ctx, write("b", 2))
	if q.IsClosed() {
		t.Error("expected queue to be open initially")
	}
	if err := q.Close(); err != nil {
		t.Errorf("close: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed after Close()")
	}
	if q.Enqueue(ctx, write("c", 3)) {
		t.Error("expected enqueue to fail after closing")
	}

	var got []string
	timeout := time.After(time.Second)
	ch := q.Dequeue(ctx)
	for {
		select {
		case it, ok := <-ch:
			if !ok {
				if len(got) != 2 {
					t.Errorf("expected 2 drained items, got %v", got)
				}
				if err := q.Close(); err != nil {
					t.Errorf("second close: %v", err)
				}
				return
			}
			got = append(got, it.Key)
		case <-timeout:
			t.Fatal("expected dequeue channel to close")
		}
	}
}

func TestInMemoryQueue_DequeueStopsWithContext(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx, cancel := context.WithCancel(context.Background())

	out := q.Dequeue(ctx)
	if !q.Persist(write("human:long", -0.05)) {
		t.Fatal("expected persist to succeed")
	}
	// Nobody reads out, so the forwarder holds the item until ctx ends.
	time.Sleep(20 * time.Millisecond)
	cancel()
	time.Sleep(20 * time.Millisecond)

	select {
	case _, ok := <-out:
		if ok {
			t.Fatal("expected the dequeue channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("forwarder still running after cancel")
	}
	if q.IsClosed() {
		t.Error("cancelling a consumer must not close the queue")
	}
}
