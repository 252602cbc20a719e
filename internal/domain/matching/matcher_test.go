package matching_test

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/okian/hackbite/internal/domain/matching"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeSource struct {
	leaders map[int64]matching.Leader
	users   []matching.Record
	err     error
	calls   int
}

func (f *fakeSource) Leader(_ context.Context, id int64) (matching.Leader, error) {
	if f.err != nil {
		return matching.Leader{}, f.err
	}
	l, ok := f.leaders[id]
	if !ok {
		return matching.Leader{}, matching.ErrNotFound
	}
	return l, nil
}

func (f *fakeSource) CandidatesInRange(_ context.Context, lo, hi int, exclude int64) ([]matching.Record, error) {
	f.calls++
	var out []matching.Record
	for _, u := range f.users {
		if u.UserID == exclude || u.OverallScore == nil {
			continue
		}
		if *u.OverallScore >= lo && *u.OverallScore <= hi {
			out = append(out, u)
		}
	}
	return out, nil
}

func score(v int) *int { return &v }

func user(id int64, overall int, skills ...string) matching.Record {
	return matching.Record{
		UserID:       id,
		Name:         "user",
		Email:        "u@example.com",
		OverallScore: score(overall),
		GithubScore:  score(overall - 10),
		ResumeScore:  score(1000 - overall),
		Skills:       skills,
	}
}

func TestMatchScenarios(t *testing.T) {
	ctx := context.Background()

	Convey("Given a leader who knows React", t, func() {
		src := &fakeSource{
			leaders: map[int64]matching.Leader{1: {UserID: 1, OverallScore: score(600), Skills: []string{"React"}}},
			users:   []matching.Record{user(2, 620, "Node.js")},
		}
		res, err := matching.New(src).Match(ctx, matching.Query{LeaderID: 1})

		Convey("Then a Node.js candidate is complementary and scores at least 3", func() {
			So(err, ShouldBeNil)
			So(res.Candidates, ShouldHaveLength, 1)
			c := res.Candidates[0]
			So(c.SkillMatchDetails["Node.js"], ShouldEqual, matching.CategoryComplementary)
			So(c.ComplementarySkills, ShouldResemble, []string{"Node.js"})
			So(c.ComplementaryScore, ShouldBeGreaterThanOrEqualTo, 3)
		})
	})

	Convey("Given a candidate whose skills duplicate the leader's", t, func() {
		src := &fakeSource{
			leaders: map[int64]matching.Leader{1: {UserID: 1, OverallScore: score(500), Skills: []string{"React", "Node.js"}}},
			users:   []matching.Record{user(2, 500, "React", "Node.js")},
		}
		res, err := matching.New(src).Match(ctx, matching.Query{LeaderID: 1})

		Convey("Then the overlap penalty makes the score negative", func() {
			So(err, ShouldBeNil)
			// Nothing is needed or new, overlap 2 > 1.4.
			So(res.Candidates[0].ComplementaryScore, ShouldEqual, -1.0)
			So(res.Candidates[0].SkillMatchDetails["React"], ShouldEqual, matching.CategoryMatching)
		})
	})

	Convey("Given a leader with no skills", t, func() {
		src := &fakeSource{
			leaders: map[int64]matching.Leader{1: {UserID: 1, OverallScore: score(500)}},
			users: []matching.Record{
				user(2, 450, "Go", "DevOps"),
				user(3, 550, "React"),
				user(4, 500),
			},
		}
		res, err := matching.New(src).Match(ctx, matching.Query{LeaderID: 1})

		Convey("Then every complementary score is zero", func() {
			So(err, ShouldBeNil)
			So(res.Candidates, ShouldHaveLength, 3)
			for _, c := range res.Candidates {
				So(c.ComplementaryScore, ShouldEqual, 0)
			}
			So(res.LeaderSkills, ShouldBeEmpty)
			So(res.RecommendedSkills, ShouldBeEmpty)
		})

		Convey("Then ties are broken by user id", func() {
			So(res.Candidates[0].UserID, ShouldEqual, 2)
			So(res.Candidates[1].UserID, ShouldEqual, 3)
			So(res.Candidates[2].UserID, ShouldEqual, 4)
		})
	})

	Convey("Given an unknown leader", t, func() {
		src := &fakeSource{leaders: map[int64]matching.Leader{}}
		_, err := matching.New(src).Match(ctx, matching.Query{LeaderID: 42})

		Convey("Then the match fails with not found and no candidates are fetched", func() {
			So(errors.Is(err, matching.ErrNotFound), ShouldBeTrue)
			So(src.calls, ShouldEqual, 0)
		})
	})

	Convey("Given candidates ranked by overall score", t, func() {
		src := &fakeSource{
			leaders: map[int64]matching.Leader{1: {UserID: 1, OverallScore: score(700), Skills: []string{"Python"}}},
			users: []matching.Record{
				user(2, 610, "React"),
				user(3, 790, "DevOps"),
				user(4, 700, "Go"),
				user(5, 650),
			},
		}
		res, err := matching.New(src).Match(ctx, matching.Query{LeaderID: 1, SortBy: matching.SortOverall})

		Convey("Then the sequence is non-increasing in overall score", func() {
			So(err, ShouldBeNil)
			So(res.Candidates, ShouldHaveLength, 4)
			So(sort.SliceIsSorted(res.Candidates, func(i, j int) bool {
				return res.Candidates[i].OverallScore > res.Candidates[j].OverallScore
			}), ShouldBeTrue)
			So(res.Candidates[0].UserID, ShouldEqual, 3)
		})
	})

	Convey("Given a sort key padded with whitespace", t, func() {
		src := &fakeSource{
			leaders: map[int64]matching.Leader{1: {UserID: 1, OverallScore: score(500), Skills: []string{"Python"}}},
			users: []matching.Record{
				user(2, 450, "React", "DevOps"),
				user(3, 590, "Python"),
			},
		}
		res, err := matching.New(src).Match(ctx, matching.Query{LeaderID: 1, SortBy: " overall "})

		Convey("Then the candidates are ranked by the trimmed key", func() {
			So(err, ShouldBeNil)
			So(res.Candidates, ShouldHaveLength, 2)
			So(res.Candidates[0].ComplementaryScore, ShouldBeLessThan, res.Candidates[1].ComplementaryScore)
			So(res.Candidates[0].UserID, ShouldEqual, 3)
			So(res.Candidates[1].UserID, ShouldEqual, 2)
		})
	})
}

func TestMatchProperties(t *testing.T) {
	ctx := context.Background()

	Convey("Given a pool spread across the score range", t, func() {
		src := &fakeSource{
			leaders: map[int64]matching.Leader{
				1:  {UserID: 1, OverallScore: score(950), Skills: []string{"React", "DevOps"}},
				10: {UserID: 10, OverallScore: score(40), Skills: []string{"Python"}},
				20: {UserID: 20, Skills: []string{"AI/ML"}},
			},
			users: []matching.Record{
				user(1, 950, "React"),
				user(2, 1000, "Node.js", "TypeScript"),
				user(3, 860, "Backend Development", "Go"),
				user(4, 849, "Cloud Computing"),
				user(5, 0, "Frontend Development"),
				user(6, 140, "JavaScript"),
				user(7, 450, "Python"),
				user(8, 600, "Data Engineering"),
				user(10, 40, "Python"),
			},
		}
		m := matching.New(src)

		Convey("When the leader is near the top", func() {
			res, err := m.Match(ctx, matching.Query{LeaderID: 1})
			So(err, ShouldBeNil)

			Convey("Then the window is clamped at 1000", func() {
				So(res.RatingRange, ShouldResemble, matching.Range{Min: 850, Max: 1000})
			})

			Convey("Then every candidate is inside the window and not the leader", func() {
				for _, c := range res.Candidates {
					So(c.UserID, ShouldNotEqual, 1)
					So(res.RatingRange.Contains(c.OverallScore), ShouldBeTrue)
				}
				So(res.TotalCount, ShouldEqual, len(res.Candidates))
				So(res.TotalCount, ShouldEqual, 2)
			})

			Convey("Then skills partition into exactly one category each", func() {
				for _, c := range res.Candidates {
					So(len(c.SkillMatchDetails), ShouldEqual, len(c.Skills))
					for _, s := range c.Skills {
						So(c.SkillMatchDetails[s], ShouldBeIn, []matching.Category{
							matching.CategoryMatching, matching.CategoryComplementary, matching.CategoryUnique,
						})
					}
				}
			})

			Convey("Then recommendations exclude the leader's own skills", func() {
				So(res.RecommendedSkills, ShouldNotContain, "React")
				So(res.RecommendedSkills, ShouldNotContain, "DevOps")
				So(res.RecommendedSkills[:5], ShouldResemble, []string{
					"Node.js", "Backend Development", "UI/UX Design", "TypeScript", "Frontend Development",
				})
			})

			Convey("Then a repeated call returns the same result", func() {
				again, err := m.Match(ctx, matching.Query{LeaderID: 1})
				So(err, ShouldBeNil)
				So(again, ShouldResemble, res)
			})
		})

		Convey("When the leader is near the bottom", func() {
			res, err := m.Match(ctx, matching.Query{LeaderID: 10})
			So(err, ShouldBeNil)

			Convey("Then the window is clamped at 0", func() {
				So(res.RatingRange, ShouldResemble, matching.Range{Min: 0, Max: 140})
				So(res.TotalCount, ShouldEqual, 2)
			})
		})

		Convey("When the leader has no overall score", func() {
			res, err := m.Match(ctx, matching.Query{LeaderID: 20})
			So(err, ShouldBeNil)

			Convey("Then the window is centred on 500", func() {
				So(res.RatingRange, ShouldResemble, matching.Range{Min: 400, Max: 600})
			})
		})

		Convey("When a limit is given", func() {
			res, err := m.Match(ctx, matching.Query{LeaderID: 20, Limit: 1})
			So(err, ShouldBeNil)

			Convey("Then the result is truncated and counted after truncation", func() {
				So(res.Candidates, ShouldHaveLength, 1)
				So(res.TotalCount, ShouldEqual, 1)
			})
		})
	})
}

func TestMatchErrors(t *testing.T) {
	ctx := context.Background()

	Convey("Given a matcher", t, func() {
		src := &fakeSource{leaders: map[int64]matching.Leader{1: {UserID: 1}}}
		m := matching.New(src)

		Convey("When the leader id is missing", func() {
			_, err := m.Match(ctx, matching.Query{})
			So(errors.Is(err, matching.ErrMissingInput), ShouldBeTrue)
		})

		Convey("When the sort key is unknown", func() {
			_, err := m.Match(ctx, matching.Query{LeaderID: 1, SortBy: "random"})
			So(errors.Is(err, matching.ErrInvalidSortKey), ShouldBeTrue)
		})

		Convey("When the source fails", func() {
			boom := errors.New("disk on fire")
			src.err = boom
			_, err := m.Match(ctx, matching.Query{LeaderID: 1})
			So(errors.Is(err, matching.ErrDataAccess), ShouldBeTrue)
			So(errors.Is(err, boom), ShouldBeTrue)
		})
	})
}

func TestComplementaryScore(t *testing.T) {
	g := matching.DefaultGraph()

	Convey("Given the default graph", t, func() {
		Convey("When the candidate has no skills", func() {
			So(matching.ComplementaryScore(g, []string{"React"}, nil), ShouldEqual, 0)
		})

		Convey("When skills are identical and complement nothing", func() {
			// overlap 2 > 1.4, no needs met, no unique skills.
			So(matching.ComplementaryScore(g, []string{"Go", "Rust"}, []string{"Go", "Rust"}), ShouldEqual, -1.0)
		})

		Convey("When a candidate covers several needs", func() {
			// React needs Node.js and TypeScript (+6), both are new to the leader (+2).
			So(matching.ComplementaryScore(g, []string{"React"}, []string{"Node.js", "TypeScript"}), ShouldEqual, 8.0)
		})

		Convey("When overlap stays under the threshold", func() {
			// overlap 1 <= 0.7*2, Go is unique (+1).
			So(matching.ComplementaryScore(g, []string{"Rust", "Elixir"}, []string{"Rust", "Go"}), ShouldEqual, 1.0)
		})
	})
}

func TestParseSortKey(t *testing.T) {
	Convey("Given sort key strings", t, func() {
		k, err := matching.ParseSortKey("")
		So(err, ShouldBeNil)
		So(k, ShouldEqual, matching.SortComplementary)

		k, err = matching.ParseSortKey("resume")
		So(err, ShouldBeNil)
		So(k, ShouldEqual, matching.SortResume)

		_, err = matching.ParseSortKey("Overall")
		So(errors.Is(err, matching.ErrInvalidSortKey), ShouldBeTrue)
	})
}

func TestDefaultGraphIsACopy(t *testing.T) {
	Convey("Given a copy of the default graph", t, func() {
		g := matching.DefaultGraph()
		So(g, ShouldHaveLength, 26)
		g["React"][0] = "COBOL"
		delete(g, "Python")

		Convey("Then the shared graph is unchanged", func() {
			fresh := matching.DefaultGraph()
			So(fresh["React"][0], ShouldEqual, "Node.js")
			So(fresh, ShouldContainKey, "Python")
		})
	})
}
