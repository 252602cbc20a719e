package matching

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// Matcher defaults.
const (
	DefaultWindow = 100
	DefaultLimit  = 50
)

// Option applies a configuration option to the Matcher.
type Option func(*Matcher)

// WithGraph replaces the complementarity graph. The graph is copied.
func WithGraph(g Graph) Option {
	return func(m *Matcher) {
		if g != nil {
			m.graph = g.Clone()
		}
	}
}

// WithWindow sets the score radius around the leader's overall score.
func WithWindow(radius int) Option {
	return func(m *Matcher) {
		if radius > 0 {
			m.window = radius
		}
	}
}

// WithDefaultLimit sets the cap used when a query carries no limit.
func WithDefaultLimit(limit int) Option {
	return func(m *Matcher) {
		if limit > 0 {
			m.defaultLimit = limit
		}
	}
}

// Matcher ranks candidates for a leader. It holds no mutable state and is
// safe for concurrent use.
type Matcher struct {
	source       Source
	graph        Graph
	window       int
	defaultLimit int
}

// New creates a Matcher reading from source.
func New(source Source, opts ...Option) *Matcher {
	m := &Matcher{
		source:       source,
		graph:        defaultGraph,
		window:       DefaultWindow,
		defaultLimit: DefaultLimit,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Graph returns a copy of the graph the matcher scores with.
func (m *Matcher) Graph() Graph {
	return m.graph.Clone()
}

// Match runs one query against a fresh snapshot from the Source.
func (m *Matcher) Match(ctx context.Context, q Query) (Result, error) {
	const op = "matching.match"

	if q.LeaderID <= 0 {
		return Result{}, fmt.Errorf("%s: %w", op, ErrMissingInput)
	}
	sortBy, err := ParseSortKey(string(q.SortBy))
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = m.defaultLimit
	}

	leader, err := m.source.Leader(ctx, q.LeaderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Result{}, fmt.Errorf("%s: %w", op, err)
		}
		return Result{}, fmt.Errorf("%s: %w: %w", op, ErrDataAccess, err)
	}

	window := Window(scoreOrDefault(leader.OverallScore), m.window)
	leaderSkills := leader.Skills
	if leaderSkills == nil {
		leaderSkills = []string{}
	}

	records, err := m.source.CandidatesInRange(ctx, window.Min, window.Max, q.LeaderID)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w: %w", op, ErrDataAccess, err)
	}

	candidates := make([]Candidate, 0, len(records))
	for _, r := range records {
		if r.UserID == q.LeaderID {
			continue
		}
		c := m.annotate(leaderSkills, r)
		if !window.Contains(c.OverallScore) {
			continue
		}
		candidates = append(candidates, c)
	}

	rank(candidates, sortBy)
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	return Result{
		Candidates:        candidates,
		LeaderSkills:      leaderSkills,
		RecommendedSkills: Recommend(m.graph, leaderSkills),
		RatingRange:       window,
		TotalCount:        len(candidates),
	}, nil
}

func (m *Matcher) annotate(leaderSkills []string, r Record) Candidate {
	skills := r.Skills
	if skills == nil {
		skills = []string{}
	}
	details, complementary := Classify(m.graph, leaderSkills, skills)
	return Candidate{
		UserID:              r.UserID,
		Name:                r.Name,
		Email:               r.Email,
		Bio:                 r.Bio,
		Location:            r.Location,
		Experience:          r.Experience,
		OverallScore:        scoreOrDefault(r.OverallScore),
		GithubScore:         scoreOrDefault(r.GithubScore),
		ResumeScore:         scoreOrDefault(r.ResumeScore),
		ComplementaryScore:  ComplementaryScore(m.graph, leaderSkills, skills),
		GithubLink:          r.GithubLink,
		ResumeExcerpt:       r.ResumeExcerpt,
		Skills:              skills,
		ComplementarySkills: complementary,
		SkillMatchDetails:   details,
	}
}

func scoreOrDefault(s *int) int {
	if s == nil {
		return DefaultScore
	}
	return *s
}

// rank sorts descending by the key, then by user id ascending.
func rank(cs []Candidate, key SortKey) {
	value := func(c Candidate) float64 {
		switch key {
		case SortOverall:
			return float64(c.OverallScore)
		case SortGit:
			return float64(c.GithubScore)
		case SortResume:
			return float64(c.ResumeScore)
		default:
			return c.ComplementaryScore
		}
	}
	sort.SliceStable(cs, func(i, j int) bool {
		vi, vj := value(cs[i]), value(cs[j])
		if vi != vj {
			return vi > vj
		}
		return cs[i].UserID < cs[j].UserID
	})
}
