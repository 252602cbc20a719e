package worker_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/hackbite/internal/adapters/mq/queue"
	"github.com/okian/hackbite/internal/adapters/mq/worker"
	"github.com/okian/hackbite/internal/domain/model"
	"github.com/okian/hackbite/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() { //nolint:gochecknoinits // silence logs in tests
	_ = logger.Init(logger.WithOutput(io.Discard))
}

type recorder struct {
	mu   sync.Mutex
	seen []string
	fail map[string]error
	hit  chan string
}

func newRecorder() *recorder {
	return &recorder{fail: map[string]error{}, hit: make(chan string, 64)}
}

func (r *recorder) Process(_ context.Context, j worker.Job) error { //nolint:gocritic // hugeParam: jobs travel by value
	r.mu.Lock()
	r.seen = append(r.seen, j.ID)
	err := r.fail[j.ID]
	r.mu.Unlock()
	r.hit <- j.ID
	if j.ID == "panic" {
		panic("boom")
	}
	return err
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}

func waitFor(t *testing.T, ch <-chan string, n int) []string {
	t.Helper()
	var out []string
	deadline := time.After(2 * time.Second)
	for len(out) < n {
		select {
		case id := <-ch:
			out = append(out, id)
		case <-deadline:
			t.Fatalf("timed out after %d of %d jobs", len(out), n)
		}
	}
	return out
}

func TestWorker(t *testing.T) {
	Convey("Given a worker reading a queue", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(10))
		rec := newRecorder()
		w := worker.NewInMemoryWorker(q, rec, worker.WithName("test"))
		go w.Run(ctx)

		Convey("it processes every enqueued job", func() {
			for _, id := range []string{"a", "b", "c"} {
				So(q.Enqueue(ctx, model.RatingJob{ID: id}), ShouldBeTrue)
			}
			ids := waitFor(t, rec.hit, 3)
			So(ids, ShouldResemble, []string{"a", "b", "c"})
		})

		Convey("a failing or panicking job does not stop it", func() {
			rec.mu.Lock()
			rec.fail["bad"] = errors.New("nope")
			rec.mu.Unlock()
			So(q.Enqueue(ctx, model.RatingJob{ID: "bad"}), ShouldBeTrue)
			So(q.Enqueue(ctx, model.RatingJob{ID: "panic"}), ShouldBeTrue)
			So(q.Enqueue(ctx, model.RatingJob{ID: "ok"}), ShouldBeTrue)
			ids := waitFor(t, rec.hit, 3)
			So(ids[2], ShouldEqual, "ok")
		})

		Convey("shutdown returns once the loop exits", func() {
			sctx, scancel := context.WithTimeout(context.Background(), time.Second)
			defer scancel()
			So(w.Shutdown(sctx), ShouldBeNil)
			So(w.Shutdown(sctx), ShouldBeNil)
		})
	})
}

func TestProcessorFunc(t *testing.T) {
	Convey("ProcessorFunc forwards to the function", t, func() {
		var got string
		p := worker.ProcessorFunc(func(_ context.Context, j worker.Job) error {
			got = j.ID
			return nil
		})
		So(p.Process(context.Background(), model.RatingJob{ID: "x"}), ShouldBeNil)
		So(got, ShouldEqual, "x")
	})
}

func TestPool(t *testing.T) {
	Convey("Given a pool of three workers", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(100))
		var processed atomic.Int64
		p := worker.NewPool(3, q, worker.ProcessorFunc(func(context.Context, worker.Job) error {
			processed.Add(1)
			return nil
		}))
		So(p.Size(), ShouldEqual, 3)
		p.Start(ctx)

		Convey("shutdown drains queued jobs and closes the queue", func() {
			for i := 0; i < 20; i++ {
				So(q.Enqueue(ctx, model.RatingJob{ID: string(rune('a' + i))}), ShouldBeTrue)
			}
			sctx, scancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer scancel()
			So(p.Shutdown(sctx), ShouldBeNil)
			So(processed.Load(), ShouldEqual, 20)
			So(q.IsClosed(), ShouldBeTrue)
			So(q.Enqueue(ctx, model.RatingJob{ID: "late"}), ShouldBeFalse)
		})
	})

	Convey("A non-positive count falls back to the default", t, func() {
		q := queue.NewInMemoryQueue()
		p := worker.NewPool(0, q, newRecorder())
		So(p.Size(), ShouldBeGreaterThan, 0)
	})
}
