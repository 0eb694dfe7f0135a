package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/okian/wicket/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestKey(t *testing.T) {
	Convey("Key joins match and revision", t, func() {
		So(dedupe.Key("ind-aus-1", 3), ShouldEqual, "ind-aus-1:3")
		So(dedupe.Key("m", 1), ShouldNotEqual, dedupe.Key("m", 2))
	})
}

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new deduper", t, func() {
		d := dedupe.NewInMemoryDeduper()
		So(d.Size(), ShouldEqual, 0)

		Convey("When a publication is recorded", func() {
			seen := d.SeenAndRecord(ctx, dedupe.Key("m1", 1))

			Convey("Then it is new", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And the same revision again is a duplicate", func() {
				So(d.SeenAndRecord(ctx, dedupe.Key("m1", 1)), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And a new revision is accepted", func() {
				So(d.SeenAndRecord(ctx, dedupe.Key("m1", 2)), ShouldBeFalse)
			})

			Convey("And after Unrecord it can be recorded again", func() {
				d.Unrecord(ctx, dedupe.Key("m1", 1))
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, dedupe.Key("m1", 1)), ShouldBeFalse)
			})

			Convey("And unrecording an unknown key is a no-op", func() {
				d.Unrecord(ctx, "nope")
				So(d.Size(), ShouldEqual, 1)
			})
		})
	})

	Convey("Given a bounded deduper of size 3", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
		for i := 1; i <= 4; i++ {
			d.SeenAndRecord(ctx, fmt.Sprint(i))
		}

		Convey("Then the oldest key was evicted", func() {
			So(d.Size(), ShouldEqual, 3)
			So(d.SeenAndRecord(ctx, "4"), ShouldBeTrue)
			So(d.SeenAndRecord(ctx, "2"), ShouldBeTrue)
			So(d.SeenAndRecord(ctx, "1"), ShouldBeFalse)
		})

		Convey("Then unrecording frees room without evicting", func() {
			d.Unrecord(ctx, "3")
			d.SeenAndRecord(ctx, "5")
			So(d.SeenAndRecord(ctx, "2"), ShouldBeTrue)
			So(d.Size(), ShouldEqual, 3)
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
		for i := 0; i < 1000; i++ {
			d.SeenAndRecord(ctx, fmt.Sprint(i))
		}
		So(d.Size(), ShouldEqual, 1000)
		So(d.SeenAndRecord(ctx, "0"), ShouldBeTrue)
	})

	Convey("Given concurrent publishers of the same revision", t, func() {
		d := dedupe.NewInMemoryDeduper()
		var wg sync.WaitGroup
		var mu sync.Mutex
		accepted := 0
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if !d.SeenAndRecord(ctx, dedupe.Key("m1", 7)) {
					mu.Lock()
					accepted++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		Convey("Then exactly one is accepted", func() {
			So(accepted, ShouldEqual, 1)
		})
	})
}
