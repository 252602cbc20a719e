// Package matching ranks teammate candidates for a team leader by score
// proximity and skill complementarity.
package matching

import (
	"context"
	"fmt"
	"strings"
)

// Score bounds and the prior used when a score is missing.
const (
	MinScore     = 0
	MaxScore     = 1000
	DefaultScore = 500
)

// SortKey names the field candidates are ranked by.
type SortKey string

// Supported sort keys.
const (
	SortComplementary SortKey = "complementary"
	SortOverall       SortKey = "overall"
	SortGit           SortKey = "git"
	SortResume        SortKey = "resume"
)

// ParseSortKey maps a query value to a SortKey. An empty value selects
// SortComplementary.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.TrimSpace(s)); k {
	case "":
		return SortComplementary, nil
	case SortComplementary, SortOverall, SortGit, SortResume:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSortKey, s)
	}
}

// Category classifies a candidate skill relative to the leader.
type Category string

// Skill categories. Every candidate skill falls into exactly one.
const (
	CategoryMatching      Category = "matching"
	CategoryComplementary Category = "complementary"
	CategoryUnique        Category = "unique"
)

// Leader is the rating snapshot of the requesting team leader.
type Leader struct {
	UserID       int64
	OverallScore *int
	Skills       []string
}

// Record is one eligible user as returned by a Source.
type Record struct {
	UserID        int64
	Name          string
	Email         string
	Bio           string
	Location      string
	Experience    string
	OverallScore  *int
	GithubScore   *int
	ResumeScore   *int
	GithubLink    string
	ResumeExcerpt string
	Skills        []string
}

// Source provides the data a match needs.
type Source interface {
	// Leader returns the leader's rating snapshot, or ErrNotFound when the
	// user has no rating.
	Leader(ctx context.Context, userID int64) (Leader, error)
	// CandidatesInRange returns active rated users other than excludeID whose
	// overall score lies in [minScore, maxScore].
	CandidatesInRange(ctx context.Context, minScore, maxScore int, excludeID int64) ([]Record, error)
}

// Query is a single match request.
type Query struct {
	LeaderID int64
	SortBy   SortKey
	Limit    int
}

// Candidate is a ranked, annotated teammate suggestion.
type Candidate struct {
	UserID              int64
	Name                string
	Email               string
	Bio                 string
	Location            string
	Experience          string
	OverallScore        int
	GithubScore         int
	ResumeScore         int
	ComplementaryScore  float64
	GithubLink          string
	ResumeExcerpt       string
	Skills              []string
	ComplementarySkills []string
	SkillMatchDetails   map[string]Category
}

// Range is the inclusive overall-score window used for eligibility.
type Range struct {
	Min int
	Max int
}

// Contains reports whether score lies inside the window.
func (r Range) Contains(score int) bool {
	return score >= r.Min && score <= r.Max
}

// Result is the output of a match.
type Result struct {
	Candidates        []Candidate
	LeaderSkills      []string
	RecommendedSkills []string
	RatingRange       Range
	TotalCount        int
}
