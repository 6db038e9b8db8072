package learner

import (
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestIndex(t *testing.T) {
	Convey("Given an index", t, func() {
		ix := newIndex()

		Convey("top and bottom walk the weights in rank order", func() {
			ix.set("a", 0.1)
			ix.set("b", -0.3)
			ix.set("c", 0.4)
			ix.set("d", 0.1)
			ix.set("e", -0.05)

			So(ix.top(3), ShouldResemble, []Entry{{"c", 0.4}, {"a", 0.1}, {"d", 0.1}})
			So(ix.bottom(2), ShouldResemble, []Entry{{"b", -0.3}, {"e", -0.05}})
			So(ix.top(10), ShouldHaveLength, 5)
		})

		Convey("set overwrites and keeps the size stable", func() {
			ix.set("a", 0.1)
			ix.set("a", -0.2)
			ix.set("a", -0.2)
			So(ix.len(), ShouldEqual, 1)
			w, ok := ix.get("a")
			So(ok, ShouldBeTrue)
			So(w, ShouldEqual, -0.2)
			So(ix.top(1), ShouldResemble, []Entry{{"a", -0.2}})
		})

		Convey("reset replaces the contents", func() {
			for i := range 100 {
				ix.set(fmt.Sprintf("k%03d", i), float64(i)/100)
			}
			So(ix.len(), ShouldEqual, 100)
			So(ix.top(1)[0].Key, ShouldEqual, "k099")
			So(ix.bottom(1)[0].Key, ShouldEqual, "k000")

			ix.reset(map[string]float64{"x": 0.5})
			So(ix.len(), ShouldEqual, 1)
			So(ix.snapshot(), ShouldResemble, map[string]float64{"x": 0.5})
		})
	})
}
