package dataset_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/rake/internal/adapters/dataset"
	"github.com/okian/rake/internal/domain/table"
	. "github.com/smartystreets/goconvey/convey"
)

// countingStore records how many times each table was loaded from source.
type countingStore struct {
	loads map[string]int
	err   error
}

func newCountingStore() *countingStore {
	return &countingStore{loads: map[string]int{}}
}

func (s *countingStore) Load(_ context.Context, name string) (*table.Table, error) {
	s.loads[name]++
	if s.err != nil {
		return nil, s.err
	}
	b := table.NewBuilder(name, []string{"player_id"})
	b.AppendRow([]string{"A"})
	return b.Build()
}

func (s *countingStore) Files(_ context.Context) ([]string, error) {
	return []string{"a.csv", "b.csv"}, nil
}

// fakeClock is a manually advanced time source.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestCache_Load(t *testing.T) {
	Convey("Given a cache with a controllable clock", t, func() {
		ctx := context.Background()
		inner := newCountingStore()
		clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
		cache := dataset.NewCache(inner,
			dataset.WithTTL(time.Minute),
			dataset.WithClock(clock.Now),
		)

		Convey("When the same table is loaded twice within the TTL", func() {
			first, err := cache.Load(ctx, "bets.csv")
			So(err, ShouldBeNil)
			clock.Advance(30 * time.Second)
			second, err := cache.Load(ctx, "bets.csv")
			So(err, ShouldBeNil)

			Convey("Then the second load is served from the snapshot", func() {
				So(inner.loads["bets.csv"], ShouldEqual, 1)
				So(second, ShouldEqual, first)
			})
		})

		Convey("When the TTL elapses", func() {
			_, err := cache.Load(ctx, "bets.csv")
			So(err, ShouldBeNil)
			clock.Advance(time.Minute)
			_, err = cache.Load(ctx, "bets.csv")
			So(err, ShouldBeNil)

			Convey("Then the table is reloaded from source", func() {
				So(inner.loads["bets.csv"], ShouldEqual, 2)
			})
		})

		Convey("When the inner store fails", func() {
			inner.err = errors.New("disk on fire")
			_, err := cache.Load(ctx, "bets.csv")
			So(err, ShouldNotBeNil)

			inner.err = nil
			_, err = cache.Load(ctx, "bets.csv")

			Convey("Then the failure was not cached", func() {
				So(err, ShouldBeNil)
				So(inner.loads["bets.csv"], ShouldEqual, 2)
				So(cache.Len(), ShouldEqual, 1)
			})
		})

		Convey("When listing files", func() {
			files, err := cache.Files(ctx)

			Convey("Then the call passes straight through", func() {
				So(err, ShouldBeNil)
				So(files, ShouldResemble, []string{"a.csv", "b.csv"})
			})
		})
	})
}

func TestCache_Eviction(t *testing.T) {
	Convey("Given a cache bounded to two entries", t, func() {
		ctx := context.Background()
		inner := newCountingStore()
		clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
		cache := dataset.NewCache(inner,
			dataset.WithTTL(time.Hour),
			dataset.WithMaxEntries(2),
			dataset.WithClock(clock.Now),
		)

		Convey("When a third table is loaded", func() {
			_, _ = cache.Load(ctx, "one.csv")
			clock.Advance(time.Second)
			_, _ = cache.Load(ctx, "two.csv")
			clock.Advance(time.Second)
			_, _ = cache.Load(ctx, "three.csv")

			Convey("Then the oldest snapshot is evicted", func() {
				So(cache.Len(), ShouldEqual, 2)

				_, _ = cache.Load(ctx, "two.csv")
				_, _ = cache.Load(ctx, "three.csv")
				So(inner.loads["two.csv"], ShouldEqual, 1)
				So(inner.loads["three.csv"], ShouldEqual, 1)

				_, _ = cache.Load(ctx, "one.csv")
				So(inner.loads["one.csv"], ShouldEqual, 2)
			})
		})

		Convey("When expired entries exist at load time", func() {
			_, _ = cache.Load(ctx, "one.csv")
			clock.Advance(2 * time.Hour)
			_, _ = cache.Load(ctx, "two.csv")

			Convey("Then they are swept before anything else is considered", func() {
				So(cache.Len(), ShouldEqual, 1)
			})
		})
	})
}

func TestCache_Invalidation(t *testing.T) {
	Convey("Given a cache with loaded snapshots", t, func() {
		ctx := context.Background()
		inner := newCountingStore()
		cache := dataset.NewCache(inner, dataset.WithTTL(time.Hour))
		_, _ = cache.Load(ctx, "one.csv")
		_, _ = cache.Load(ctx, "two.csv")
		So(cache.Len(), ShouldEqual, 2)

		Convey("When invalidating one name", func() {
			cache.Invalidate("one.csv")

			So(cache.Len(), ShouldEqual, 1)

			_, _ = cache.Load(ctx, "one.csv")
			So(inner.loads["one.csv"], ShouldEqual, 2)
		})

		Convey("When invalidating an unknown name", func() {
			cache.Invalidate("ghost.csv")

			So(cache.Len(), ShouldEqual, 2)
		})

		Convey("When purging", func() {
			cache.Purge()

			So(cache.Len(), ShouldEqual, 0)
		})
	})
}
