package rating_test

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/okian/hackbite/internal/domain/model"
	"github.com/okian/hackbite/internal/domain/rating"
	"github.com/okian/hackbite/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() { //nolint:gochecknoinits // services log through the global logger
	_ = logger.Init(logger.WithOutput(io.Discard))
}

const reply = "```json\n" + `{
  "git_rating": {"score": 612.4, "reasoning": ["steady activity"]},
  "resume_rating": {"score": 700, "reasoning": ["solid experience"]},
  "overall_rating": {"score": 655.5, "reasoning": ["balanced"]}
}` + "\n```"

type memStore struct {
	mu      sync.Mutex
	users   map[int64]bool
	anon    int64
	jobs    map[string]model.RatingJob
	ratings map[int64]model.Rating
	last    int64
}

func newMemStore() *memStore {
	return &memStore{
		users:   map[int64]bool{1: true},
		anon:    99,
		jobs:    map[string]model.RatingJob{},
		ratings: map[int64]model.Rating{},
	}
}

func (m *memStore) AnonymousUserID(context.Context) (int64, error) { return m.anon, nil }

func (m *memStore) UserExists(_ context.Context, id int64) (bool, error) {
	return m.users[id], nil
}

func (m *memStore) CreateJob(_ context.Context, job model.RatingJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job.Resume = nil
	m.jobs[job.ID] = job
	return nil
}

func (m *memStore) UpdateJob(ctx context.Context, job model.RatingJob) error {
	return m.CreateJob(ctx, job)
}

func (m *memStore) GetJob(_ context.Context, id string) (model.RatingJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return model.RatingJob{}, model.ErrNotFound
	}
	return job, nil
}

func (m *memStore) SaveRating(_ context.Context, r model.Rating) (model.Rating, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = int64(len(m.ratings) + 1)
	m.ratings[r.UserID] = r
	m.last = r.UserID
	return r, nil
}

func (m *memStore) LatestRating(_ context.Context, userID int64) (model.Rating, error) {
	r, ok := m.ratings[userID]
	if !ok {
		return model.Rating{}, model.ErrNotFound
	}
	return r, nil
}

func (m *memStore) LatestOverallRating(ctx context.Context) (model.Rating, error) {
	if m.last == 0 {
		return model.Rating{}, model.ErrNotFound
	}
	return m.LatestRating(ctx, m.last)
}

type fakeQueue struct {
	jobs []model.RatingJob
	full bool
}

func (q *fakeQueue) Enqueue(_ context.Context, job model.RatingJob) bool {
	if q.full {
		return false
	}
	q.jobs = append(q.jobs, job)
	return true
}

type fakeExtractor struct{ err error }

func (f fakeExtractor) Extract(_ context.Context, pdf []byte) (string, error) {
	return "  Senior   engineer\n\nGo  " + string(pdf), f.err
}

type fakeScraper struct {
	profile rating.GitHubProfile
	err     error
	asked   string
}

func (f *fakeScraper) Scrape(_ context.Context, username string) (rating.GitHubProfile, error) {
	f.asked = username
	return f.profile, f.err
}

type fakeGenerator struct {
	reply  string
	err    error
	prompt string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.reply, f.err
}

func encoded(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func TestUsernameFromLink(t *testing.T) {
	Convey("Given GitHub links in several shapes", t, func() {
		cases := map[string]string{
			"https://github.com/octocat/":   "octocat",
			"http://github.com/octocat":     "octocat",
			"github.com/octocat":            "octocat",
			"@octocat":                      "octocat",
			"octocat":                       "octocat",
			" https://www.github.com/oct/x ": "oct",
		}
		for in, want := range cases {
			So(rating.UsernameFromLink(in), ShouldEqual, want)
		}
	})
}

func TestHighlights(t *testing.T) {
	Convey("Given a scraped profile", t, func() {
		n := 1234
		p := rating.GitHubProfile{
			Username:      "octocat",
			FullName:      "The Octocat",
			Contributions: &n,
			Repositories: []rating.Repository{
				{Name: "hello-world", Language: "Go", Stars: 1500, HasReadme: true, HasLicense: true},
				{Name: "leetcode-solutions", Stars: 3},
			},
		}

		Convey("Then the report carries the scoring data points", func() {
			out := rating.Highlights(p)
			So(out, ShouldContainSubstring, "GITHUB PROFILE HIGHLIGHTS for The Octocat")
			So(out, ShouldContainSubstring, "1234 (Total Contributions)")
			So(out, ShouldContainSubstring, "Total Stars on Pinned Repos: 1503")
			So(out, ShouldContainSubstring, "Non-trivial projects identified: hello-world (Go)")
			So(out, ShouldNotContainSubstring, "leetcode-solutions (")
			So(out, ShouldContainSubstring, "README files exist for 1 out of 2 pinned repositories.")
		})

		Convey("When nothing could be read", func() {
			out := rating.Highlights(rating.GitHubProfile{Username: "ghost", ContributionDays: true})
			So(out, ShouldContainSubstring, "for ghost")
			So(out, ShouldContainSubstring, "Could not load.")
			So(out, ShouldContainSubstring, "No pinned repositories found.")
			So(out, ShouldContainSubstring, "primarily foundational or solution-based")
		})

		Convey("When contributions count active days", func() {
			p.ContributionDays = true
			So(rating.Highlights(p), ShouldContainSubstring, "1234 (Active Days)")
		})
	})
}

func TestParseResponse(t *testing.T) {
	Convey("Given a fenced reply", t, func() {
		r, err := rating.ParseResponse(reply)

		Convey("Then the scores are rounded", func() {
			So(err, ShouldBeNil)
			So(r.Scores(), ShouldResemble, model.Scores{Git: 612, Resume: 700, Overall: 656})
			So(r.Git.Reasoning, ShouldResemble, []string{"steady activity"})
		})
	})

	Convey("Given a reply wrapped in prose", t, func() {
		_, err := rating.ParseResponse("Here you go: " + strings.Trim(reply, "`json\n") + " thanks")
		So(err, ShouldBeNil)
	})

	Convey("Given a reply missing a dimension", t, func() {
		_, err := rating.ParseResponse(`{"git_rating":{"score":1,"reasoning":[]},"resume_rating":{"score":1,"reasoning":[]}}`)
		So(errors.Is(err, rating.ErrBadResponse), ShouldBeTrue)
		So(err.Error(), ShouldContainSubstring, "overall_rating")
	})

	Convey("Given a score out of range", t, func() {
		_, err := rating.ParseResponse(`{"git_rating":{"score":1200,"reasoning":[]},` +
			`"resume_rating":{"score":1,"reasoning":[]},"overall_rating":{"score":1,"reasoning":[]}}`)
		So(errors.Is(err, rating.ErrBadResponse), ShouldBeTrue)
	})

	Convey("Given a dimension without reasoning", t, func() {
		_, err := rating.ParseResponse(`{"git_rating":{"score":1},` +
			`"resume_rating":{"score":1,"reasoning":[]},"overall_rating":{"score":1,"reasoning":[]}}`)
		So(errors.Is(err, rating.ErrBadResponse), ShouldBeTrue)
	})

	Convey("Given something that is not JSON", t, func() {
		_, err := rating.ParseResponse("no idea")
		So(errors.Is(err, rating.ErrBadResponse), ShouldBeTrue)
	})
}

func TestBuildPrompt(t *testing.T) {
	Convey("Given highlights and resume text", t, func() {
		p := rating.BuildPrompt("HIGHLIGHTS", "RESUME")

		Convey("Then the data block follows the instructions", func() {
			So(p, ShouldContainSubstring, "git_rating")
			data := p[strings.Index(p, "=== DATA TO ANALYZE ==="):]
			So(data, ShouldStartWith, "=== DATA TO ANALYZE ===\n\nHIGHLIGHTS\n\nResume Content:\nRESUME\n\n=== END DATA ===")
			So(p, ShouldEndWith, "respond with the JSON rating structure only.\n")
		})
	})
}

func TestDecodeResume(t *testing.T) {
	Convey("Given encoded documents", t, func() {
		b, err := rating.DecodeResume("data:application/pdf;base64," + encoded("%PDF"))
		So(err, ShouldBeNil)
		So(string(b), ShouldEqual, "%PDF")

		_, err = rating.DecodeResume("***")
		So(errors.Is(err, rating.ErrInvalidResume), ShouldBeTrue)
	})
}

func TestRater(t *testing.T) {
	ctx := context.Background()

	Convey("Given a rater with working collaborators", t, func() {
		scraper := &fakeScraper{profile: rating.GitHubProfile{Username: "octocat"}}
		gen := &fakeGenerator{reply: reply}
		r := rating.NewRater(scraper, fakeExtractor{}, gen)

		Convey("When a profile is rated", func() {
			out, err := r.Rate(ctx, "https://github.com/octocat/", []byte("pdf"))

			Convey("Then every step contributes to the outcome", func() {
				So(err, ShouldBeNil)
				So(scraper.asked, ShouldEqual, "octocat")
				So(out.Username, ShouldEqual, "octocat")
				So(out.ResumeText, ShouldEqual, "Senior engineer Go pdf")
				So(gen.prompt, ShouldContainSubstring, "GITHUB PROFILE HIGHLIGHTS for octocat")
				So(gen.prompt, ShouldContainSubstring, "Senior engineer Go pdf")
				So(out.Raw, ShouldContainSubstring, `"overall_rating"`)
			})
		})

		Convey("When the scrape fails", func() {
			scraper.err = errors.New("blocked")
			out, err := r.Rate(ctx, "octocat", []byte("pdf"))

			Convey("Then the pipeline continues with the fallback text", func() {
				So(err, ShouldBeNil)
				So(out.Highlights, ShouldEqual, rating.FallbackHighlights)
				So(gen.prompt, ShouldContainSubstring, rating.FallbackHighlights)
			})
		})

		Convey("When the generator fails", func() {
			gen.err = errors.New("quota")
			_, err := r.Rate(ctx, "octocat", []byte("pdf"))
			So(errors.Is(err, rating.ErrGenerate), ShouldBeTrue)
		})
	})

	Convey("Given a rater whose extractor fails", t, func() {
		r := rating.NewRater(nil, fakeExtractor{err: errors.New("bad pdf")}, &fakeGenerator{reply: reply})
		_, err := r.Rate(ctx, "octocat", []byte("pdf"))
		So(errors.Is(err, rating.ErrExtract), ShouldBeTrue)
	})

	Convey("Given a rater without a generator", t, func() {
		r := rating.NewRater(nil, fakeExtractor{}, nil)
		So(r.Enabled(), ShouldBeFalse)
		_, err := r.Rate(ctx, "octocat", []byte("pdf"))
		So(errors.Is(err, rating.ErrUnavailable), ShouldBeTrue)
	})
}

func TestService(t *testing.T) {
	ctx := context.Background()

	Convey("Given a rating service", t, func() {
		store := newMemStore()
		queue := &fakeQueue{}
		gen := &fakeGenerator{reply: reply}
		svc := rating.New(store, rating.NewRater(&fakeScraper{}, fakeExtractor{}, gen), queue)
		user := int64(1)
		sub := rating.Submission{UserID: &user, GitHub: "octocat", Resume: encoded("%PDF-1")}

		Convey("When a submission is accepted", func() {
			job, dup, err := svc.Submit(ctx, sub)
			So(err, ShouldBeNil)
			So(dup, ShouldBeFalse)
			So(job.Status, ShouldEqual, model.JobQueued)
			So(queue.jobs, ShouldHaveLength, 1)

			Convey("Then an identical submission returns the same job", func() {
				again, dup, err := svc.Submit(ctx, sub)
				So(err, ShouldBeNil)
				So(dup, ShouldBeTrue)
				So(again.ID, ShouldEqual, job.ID)
				So(queue.jobs, ShouldHaveLength, 1)
			})

			Convey("And when the worker processes it", func() {
				So(svc.Process(ctx, queue.jobs[0]), ShouldBeNil)

				Convey("Then the job completes and the rating is stored", func() {
					done, err := svc.Job(ctx, job.ID)
					So(err, ShouldBeNil)
					So(done.Status, ShouldEqual, model.JobCompleted)
					So(done.Scores, ShouldNotBeNil)
					So(done.Scores.Overall, ShouldEqual, 656)

					r, err := svc.UserRating(ctx, 1)
					So(err, ShouldBeNil)
					So(r.GithubLink, ShouldEqual, "octocat")

					scores, err := svc.Ratings(ctx, nil)
					So(err, ShouldBeNil)
					So(scores.Git, ShouldEqual, 612)
				})

				Convey("Then the same submission can be queued again", func() {
					again, dup, err := svc.Submit(ctx, sub)
					So(err, ShouldBeNil)
					So(dup, ShouldBeFalse)
					So(again.ID, ShouldNotEqual, job.ID)
				})
			})
		})

		Convey("When the pipeline fails", func() {
			gen.err = errors.New("quota")
			job, _, err := svc.Submit(ctx, sub)
			So(err, ShouldBeNil)
			So(svc.Process(ctx, queue.jobs[0]), ShouldNotBeNil)

			Convey("Then the job fails and no rating is written", func() {
				failed, err := svc.Job(ctx, job.ID)
				So(err, ShouldBeNil)
				So(failed.Status, ShouldEqual, model.JobFailed)
				So(failed.Error, ShouldContainSubstring, "quota")
				_, err = svc.UserRating(ctx, 1)
				So(errors.Is(err, rating.ErrRatingNotFound), ShouldBeTrue)
			})
		})

		Convey("When no user id is given", func() {
			job, _, err := svc.Submit(ctx, rating.Submission{GitHub: "octocat", Resume: encoded("x")})
			So(err, ShouldBeNil)
			So(job.UserID, ShouldEqual, 99)
		})

		Convey("When the user does not exist", func() {
			ghost := int64(7)
			_, _, err := svc.Submit(ctx, rating.Submission{UserID: &ghost, GitHub: "octocat", Resume: encoded("x")})
			So(errors.Is(err, rating.ErrUserNotFound), ShouldBeTrue)
		})

		Convey("When fields are missing", func() {
			_, _, err := svc.Submit(ctx, rating.Submission{GitHub: "octocat"})
			So(errors.Is(err, rating.ErrMissingInput), ShouldBeTrue)
		})

		Convey("When the resume is not base64", func() {
			_, _, err := svc.Submit(ctx, rating.Submission{GitHub: "octocat", Resume: "!!!"})
			So(errors.Is(err, rating.ErrInvalidResume), ShouldBeTrue)
		})

		Convey("When the queue is full", func() {
			queue.full = true
			_, _, err := svc.Submit(ctx, sub)
			So(errors.Is(err, rating.ErrBackpressure), ShouldBeTrue)

			Convey("Then the claim is released for a retry", func() {
				queue.full = false
				_, dup, err := svc.Submit(ctx, sub)
				So(err, ShouldBeNil)
				So(dup, ShouldBeFalse)
			})
		})

		Convey("When the job does not exist", func() {
			_, err := svc.Job(ctx, "nope")
			So(errors.Is(err, rating.ErrJobNotFound), ShouldBeTrue)
		})

		Convey("When nothing has been rated yet", func() {
			_, err := svc.Ratings(ctx, nil)
			So(errors.Is(err, rating.ErrRatingNotFound), ShouldBeTrue)
		})

		Convey("When rating synchronously", func() {
			r, err := svc.RateNow(ctx, 0, "github.com/octocat", []byte("pdf"))
			So(err, ShouldBeNil)
			So(r.UserID, ShouldEqual, 99)
			So(r.Scores.Resume, ShouldEqual, 700)
		})
	})

	Convey("Given a service without a generator", t, func() {
		svc := rating.New(newMemStore(), rating.NewRater(nil, fakeExtractor{}, nil), &fakeQueue{})
		_, _, err := svc.Submit(ctx, rating.Submission{GitHub: "octocat", Resume: encoded("x")})
		So(errors.Is(err, rating.ErrUnavailable), ShouldBeTrue)
	})
}
