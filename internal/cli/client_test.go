package cli_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/okian/hackbite/internal/adapters/http/api"
	"github.com/okian/hackbite/internal/app"
	"github.com/okian/hackbite/internal/cli"
	"github.com/okian/hackbite/internal/config"
	"github.com/okian/hackbite/internal/domain/matching"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClient(t *testing.T) {
	Convey("Given a server that answers with canned bodies", t, func() {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.Header().Set("Content-Type", "application/json")
			switch {
			case r.Header.Get(api.RequestIDHeader) == "":
				w.WriteHeader(http.StatusBadRequest)
			case r.URL.Path == "/api/get-ratings":
				_, _ = w.Write([]byte(`{"ratings":{"git_score":600,"resume_score":700,"overall_score":650}}`))
			case r.URL.Query().Get("leader_id") == "404":
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"code":"not_found","message":"leader not found"}`))
			case r.URL.Query().Get("sort_by") != "overall" || r.URL.Query().Get("limit") != "5":
				w.WriteHeader(http.StatusBadRequest)
			default:
				_, _ = w.Write([]byte(`{"candidates":[{"id":"user_2","user_id":2,"overallScore":640,
					"skills":["Go"],"complementary_skills":[],"skill_match_details":{"Go":"unique"}}],
					"leader_skills":["React"],"rating_range":{"min":550,"max":750},"total_count":1}`))
			}
		}))
		defer srv.Close()
		client := cli.NewClient(srv.URL+"/", nil)
		ctx := context.Background()

		Convey("Then the ranking is decoded", func() {
			res, err := client.Candidates(ctx, 1, matching.SortOverall, 5)
			So(err, ShouldBeNil)
			So(res.RatingRange, ShouldResemble, matching.Range{Min: 550, Max: 750})
			So(res.Candidates, ShouldHaveLength, 1)
			So(res.Candidates[0].SkillMatchDetails["Go"], ShouldEqual, matching.CategoryUnique)
			So(res.LeaderSkills, ShouldResemble, []string{"React"})
		})

		Convey("Then the leader score is read from the ratings endpoint", func() {
			score, err := client.OverallScore(ctx, 1)
			So(err, ShouldBeNil)
			So(score, ShouldEqual, 650)
		})

		Convey("Then a client error is returned without retrying", func() {
			_, err := client.Candidates(ctx, 404, "", 0)
			var apiErr *cli.APIError
			So(errors.As(err, &apiErr), ShouldBeTrue)
			So(apiErr.Status, ShouldEqual, http.StatusNotFound)
			So(apiErr.Code, ShouldEqual, "not_found")
			So(calls.Load(), ShouldEqual, 1)
		})
	})
}

func TestCandidatesAgainstSeededServer(t *testing.T) {
	Convey("Given a running service seeded with a population", t, func() {
		ctx := context.Background()
		cfg := config.New()
		cfg.DatabasePath = filepath.Join(t.TempDir(), "cli.db")
		svc := app.New(cfg)
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		sum, err := cli.Seed(ctx, svc.Store(), cli.SeedOptions{Users: 40, Seed: 3, Center: 600, Spread: 120})
		So(err, ShouldBeNil)
		So(sum.UserIDs, ShouldHaveLength, 40)

		deps, err := svc.Dependencies()
		So(err, ShouldBeNil)
		apiServer := api.NewServer(deps)
		mux := http.NewServeMux()
		apiServer.Register(ctx, mux)
		srv := httptest.NewServer(apiServer.Handler(mux))
		defer srv.Close()
		client := cli.NewClient(srv.URL, nil)
		leader := sum.UserIDs[0]

		for _, key := range []matching.SortKey{matching.SortComplementary, matching.SortOverall, matching.SortGit, matching.SortResume} {
			Convey("Then the "+string(key)+" ranking satisfies every guarantee", func() {
				res, err := client.Candidates(ctx, leader, key, 10)
				So(err, ShouldBeNil)
				score, err := client.OverallScore(ctx, leader)
				So(err, ShouldBeNil)
				violations := cli.Verify(res, cli.Expectation{
					LeaderID: leader, LeaderScore: &score, Window: cfg.RatingWindow, SortBy: key, Limit: 10,
				})
				So(violations, ShouldBeEmpty)
			})
		}

		Convey("Then the candidates command reports success", func() {
			var out, errOut bytes.Buffer
			cmd := cli.NewRootCommand()
			cmd.SetOut(&out)
			cmd.SetErr(&errOut)
			cmd.SetArgs([]string{"candidates", "--base-url", srv.URL,
				"--leader", strconv.FormatInt(leader, 10), "--sort-by", "overall", "--quiet"})
			So(cmd.ExecuteContext(ctx), ShouldBeNil)
			So(out.String(), ShouldStartWith, "ok: ")
			So(errOut.String(), ShouldNotContainSubstring, "violation")
		})

		Convey("Then an invalid sort key fails before any request", func() {
			cmd := cli.NewRootCommand()
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs([]string{"candidates", "--base-url", srv.URL, "--leader", "1", "--sort-by", "stars"})
			err := cmd.ExecuteContext(ctx)
			So(errors.Is(err, matching.ErrInvalidSortKey), ShouldBeTrue)
		})
	})
}
