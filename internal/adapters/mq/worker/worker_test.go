package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	queue "github.com/Sajal133/truerate-api/internal/adapters/mq/queue"
	worker "github.com/Sajal133/truerate-api/internal/adapters/mq/worker"
	model "github.com/Sajal133/truerate-api/internal/domain/model"
	logging "github.com/Sajal133/truerate-api/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockQueue struct {
	ch chan queue.Item
}

func newMockQueue() *mockQueue {
	return &mockQueue{ch: make(chan queue.Item, 10)}
}

func (mq *mockQueue) Dequeue(context.Context) <-chan queue.Item { return mq.ch }

func (mq *mockQueue) Close() error {
	close(mq.ch)
	return nil
}

// ctxQueue records the context the worker dequeues with.
type ctxQueue struct {
	*mockQueue
	mu  sync.Mutex
	ctx context.Context
}

func (cq *ctxQueue) Dequeue(ctx context.Context) <-chan queue.Item {
	cq.mu.Lock()
	cq.ctx = ctx
	cq.mu.Unlock()
	return cq.ch
}

func (cq *ctxQueue) dequeueCtx() context.Context {
	cq.mu.Lock()
	defer cq.mu.Unlock()
	return cq.ctx
}

type mockWriter struct {
	mu     sync.Mutex
	values map[string]float64
	errs   map[string]error
	delay  time.Duration
}

func newMockWriter() *mockWriter {
	return &mockWriter{values: map[string]float64{}, errs: map[string]error{}}
}

func (m *mockWriter) Put(ctx context.Context, key string, value float64) error {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.errs[key]; ok {
		return err
	}
	m.values[key] = value
	return nil
}

func (m *mockWriter) get(key string) (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *mockWriter) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.values)
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a new InMemoryWorker", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		writer := newMockWriter()

		convey.Convey("When creating a worker with options", func() {
			w := worker.NewInMemoryWorker(q, writer,
				worker.WithName("test-worker"),
				worker.WithWriteTimeout(time.Second),
				worker.WithLogger(logging.Nop()),
			)
			convey.So(w, convey.ShouldNotBeNil)
		})

		convey.Convey("When running a worker", func() {
			w := worker.NewInMemoryWorker(q, writer)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go w.Run(ctx)

			convey.Convey("Then queued weights are written", func() {
				q.ch <- model.WeightWrite{Key: "bot:short", Value: -0.05, At: time.Now()}
				convey.So(eventually(func() bool { _, ok := writer.get("bot:short"); return ok }), convey.ShouldBeTrue)
				v, _ := writer.get("bot:short")
				convey.So(v, convey.ShouldEqual, -0.05)
			})

			convey.Convey("Then a failing write does not stop the worker", func() {
				writer.mu.Lock()
				writer.errs["bot:long"] = errors.New("store down")
				writer.mu.Unlock()

				q.ch <- model.WeightWrite{Key: "bot:long", Value: 0.1}
				q.ch <- model.WeightWrite{Key: "bot:medium", Value: 0.2}
				convey.So(eventually(func() bool { _, ok := writer.get("bot:medium"); return ok }), convey.ShouldBeTrue)
				_, ok := writer.get("bot:long")
				convey.So(ok, convey.ShouldBeFalse)
			})

			convey.Convey("Then shutdown stops it", func() {
				sctx, scancel := context.WithTimeout(context.Background(), time.Second)
				defer scancel()
				convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
				convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
			})
		})

		convey.Convey("When a write exceeds the timeout", func() {
			writer.delay = time.Second
			w := worker.NewInMemoryWorker(q, writer, worker.WithWriteTimeout(20*time.Millisecond))
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go w.Run(ctx)

			q.ch <- model.WeightWrite{Key: "human:long", Value: 0.3}
			_ = q.Close()

			convey.Convey("Then the worker gives up and exits when the queue closes", func() {
				select {
				case <-w.Done():
				case <-time.After(time.Second):
					t.Fatal("worker did not exit")
				}
				convey.So(writer.count(), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When a worker is shut down", func() {
			cq := &ctxQueue{mockQueue: q}
			w := worker.NewInMemoryWorker(cq, writer)
			go w.Run(context.Background())
			convey.So(eventually(func() bool { return cq.dequeueCtx() != nil }), convey.ShouldBeTrue)

			sctx, scancel := context.WithTimeout(context.Background(), time.Second)
			defer scancel()
			convey.So(w.Shutdown(sctx), convey.ShouldBeNil)

			convey.Convey("Then the dequeue context is released", func() {
				convey.So(cq.dequeueCtx().Err(), convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When the context is cancelled", func() {
			w := worker.NewInMemoryWorker(q, writer)
			ctx, cancel := context.WithCancel(context.Background())
			go w.Run(ctx)
			cancel()

			convey.Convey("Then the worker stops", func() {
				select {
				case <-w.Done():
				case <-time.After(time.Second):
					t.Fatal("worker did not stop")
				}
			})
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a pool over a real queue", t, func() {
		_ = logging.Init()

		q := queue.NewInMemoryQueue(queue.WithCapacity(256))
		writer := newMockWriter()
		pool := worker.NewPool(3, q, writer)
		convey.So(pool.Size(), convey.ShouldEqual, 3)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)

		convey.Convey("When weights are enqueued and the pool shuts down", func() {
			for i := range 100 {
				convey.So(q.Persist(model.WeightWrite{Key: fmt.Sprintf("human:k%d", i), Value: float64(i) / 1000}), convey.ShouldBeTrue)
			}
			err := pool.Shutdown(context.Background())

			convey.Convey("Then every queued weight is drained to the store", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(writer.count(), convey.ShouldEqual, 100)
				written, failed := pool.Stats()
				convey.So(written, convey.ShouldEqual, 100)
				convey.So(failed, convey.ShouldEqual, 0)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("A pool never has fewer than one worker", t, func() {
		_ = logging.Init()
		pool := worker.NewPool(0, newMockQueue(), newMockWriter())
		convey.So(pool.Size(), convey.ShouldEqual, 1)
	})
}
