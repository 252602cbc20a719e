package cli_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/okian/hackbite/internal/adapters/repository"
	"github.com/okian/hackbite/internal/cli"
	"github.com/okian/hackbite/internal/domain/matching"
	"github.com/okian/hackbite/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() { //nolint:gochecknoinits // silence logs in tests
	_ = logger.Init(logger.WithOutput(io.Discard))
}

func openMemStore(t *testing.T) *repository.Store {
	t.Helper()
	store, err := repository.Open(context.Background(), ":memory:",
		repository.WithMetricsUpdateInterval(time.Hour))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSeed(t *testing.T) {
	Convey("Given an empty database", t, func() {
		ctx := context.Background()
		store := openMemStore(t)
		opts := cli.SeedOptions{Users: 12, Seed: 7, Center: 500, Spread: 80, Hackathons: true}

		Convey("When it is seeded", func() {
			sum, err := cli.Seed(ctx, store, opts)
			So(err, ShouldBeNil)

			Convey("Then every user is created and rated inside the spread", func() {
				So(sum.UserIDs, ShouldHaveLength, 12)
				So(sum.Skipped, ShouldEqual, 0)
				So(sum.Hackathons, ShouldEqual, 3)

				recs, err := store.CandidatesInRange(ctx, matching.MinScore, matching.MaxScore, 0)
				So(err, ShouldBeNil)
				So(recs, ShouldHaveLength, 12)
				for _, r := range recs {
					So(*r.OverallScore, ShouldBeBetweenOrEqual, 420, 580)
					So(len(r.Skills), ShouldBeBetweenOrEqual, 1, 4)
				}
			})

			Convey("Then the counters include the ratings and hackathons", func() {
				c, err := store.Counts(ctx)
				So(err, ShouldBeNil)
				So(c.Ratings, ShouldEqual, 12)
				So(c.Hackathons, ShouldEqual, 3)
			})

			Convey("Then seeding again with the same seed adds nothing", func() {
				again, err := cli.Seed(ctx, store, opts)
				So(err, ShouldBeNil)
				So(again.UserIDs, ShouldBeEmpty)
				So(again.Skipped, ShouldEqual, 12)
				So(again.Hackathons, ShouldEqual, 0)
			})
		})

		Convey("When the options are negative", func() {
			_, err := cli.Seed(ctx, store, cli.SeedOptions{Users: -1})

			Convey("Then it is rejected", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})

	Convey("Given two databases seeded with the same seed", t, func() {
		ctx := context.Background()
		a, b := openMemStore(t), openMemStore(t)
		opts := cli.SeedOptions{Users: 8, Seed: 42, Center: 650, Spread: 150}
		_, err := cli.Seed(ctx, a, opts)
		So(err, ShouldBeNil)
		_, err = cli.Seed(ctx, b, opts)
		So(err, ShouldBeNil)

		Convey("Then the populations are identical", func() {
			ra, err := a.CandidatesInRange(ctx, matching.MinScore, matching.MaxScore, 0)
			So(err, ShouldBeNil)
			rb, err := b.CandidatesInRange(ctx, matching.MinScore, matching.MaxScore, 0)
			So(err, ShouldBeNil)
			So(ra, ShouldHaveLength, len(rb))
			for i := range ra {
				So(ra[i].Name, ShouldEqual, rb[i].Name)
				So(ra[i].Skills, ShouldResemble, rb[i].Skills)
				So(*ra[i].OverallScore, ShouldEqual, *rb[i].OverallScore)
				So(*ra[i].GithubScore, ShouldEqual, *rb[i].GithubScore)
			}
		})
	})
}
