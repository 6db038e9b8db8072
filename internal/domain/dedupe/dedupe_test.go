package dedupe_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	dedupe "github.com/Sajal133/truerate-api/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new InMemoryDeduper", t, func() {
		d := dedupe.NewInMemoryDeduper()
		So(d.Size(), ShouldEqual, 0)

		Convey("When a feedback id is new", func() {
			seen := d.SeenAndRecord(ctx, "fb-1")

			Convey("Then it is recorded", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When the same id is submitted again", func() {
			d.SeenAndRecord(ctx, "fb-1")
			seen := d.SeenAndRecord(ctx, "fb-1")

			Convey("Then it is reported as seen", func() {
				So(seen, ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When an id is unrecorded", func() {
			d.SeenAndRecord(ctx, "fb-1")
			d.SeenAndRecord(ctx, "fb-2")
			d.Unrecord(ctx, "fb-1")
			d.Unrecord(ctx, "missing")

			Convey("Then it can be recorded again", func() {
				So(d.Size(), ShouldEqual, 1)
				So(d.SeenAndRecord(ctx, "fb-1"), ShouldBeFalse)
				So(d.SeenAndRecord(ctx, "fb-2"), ShouldBeTrue)
			})
		})
	})

	Convey("Given a bounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
		for _, id := range []string{"a", "b", "c"} {
			So(d.SeenAndRecord(ctx, id), ShouldBeFalse)
		}

		Convey("When it overflows", func() {
			So(d.SeenAndRecord(ctx, "d"), ShouldBeFalse)

			Convey("Then the oldest id is forgotten", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "b"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "c"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "d"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "a"), ShouldBeFalse)
			})
		})

		Convey("When an unrecorded id is re-added before its slot is reused", func() {
			d.Unrecord(ctx, "a")
			So(d.SeenAndRecord(ctx, "a"), ShouldBeFalse)

			Convey("Then evicting the stale slot keeps the new record", func() {
				// "a" now lives in slot 0 with a newer sequence; the stale
				// slot for the original "a" was overwritten by the re-add.
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "a"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "c"), ShouldBeTrue)
			})
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
		for i := range 1000 {
			d.SeenAndRecord(ctx, fmt.Sprintf("fb-%d", i))
		}
		So(d.Size(), ShouldEqual, 1000)
		So(d.SeenAndRecord(ctx, "fb-0"), ShouldBeTrue)
	})
}

func TestDedupeConcurrency(t *testing.T) {
	ctx := context.Background()

	Convey("Given concurrent submissions of overlapping ids", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(10000))
		var (
			wg    sync.WaitGroup
			mu    sync.Mutex
			fresh int
		)
		for g := range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range 500 {
					// each id is submitted by two goroutines
					if !d.SeenAndRecord(ctx, fmt.Sprintf("fb-%d-%d", g/2, i)) {
						mu.Lock()
						fresh++
						mu.Unlock()
					}
				}
			}()
		}
		wg.Wait()

		So(fresh, ShouldEqual, 4*500)
		So(d.Size(), ShouldEqual, 4*500)
	})
}

func TestDedupeEdgeCases(t *testing.T) {
	ctx := context.Background()

	Convey("Empty and very long ids are handled", t, func() {
		d := dedupe.NewInMemoryDeduper()
		long := strings.Repeat("x", 10000)
		So(d.SeenAndRecord(ctx, ""), ShouldBeFalse)
		So(d.SeenAndRecord(ctx, ""), ShouldBeTrue)
		So(d.SeenAndRecord(ctx, long), ShouldBeFalse)
		So(d.SeenAndRecord(ctx, long), ShouldBeTrue)
	})
}
