package cli

import (
	"fmt"
	"slices"

	"github.com/okian/hackbite/internal/domain/matching"
)

// Expectation describes the request a CandidateResult answered.
type Expectation struct {
	LeaderID int64
	// LeaderScore is the leader's overall score; nil skips the window check.
	LeaderScore *int
	Window      int
	SortBy      matching.SortKey
	// Limit of zero skips the size check.
	Limit int
}

// Verify checks a ranking against the matcher's guarantees and returns one
// message per violation.
func Verify(res CandidateResult, exp Expectation) []string {
	var out []string
	fail := func(format string, args ...any) {
		out = append(out, fmt.Sprintf(format, args...))
	}

	rng := res.RatingRange
	if exp.LeaderScore != nil {
		want := matching.Window(*exp.LeaderScore, exp.Window)
		if rng != want {
			fail("rating_range is [%d, %d], want [%d, %d]", rng.Min, rng.Max, want.Min, want.Max)
		}
	}
	if res.TotalCount != len(res.Candidates) {
		fail("total_count is %d but %d candidates were returned", res.TotalCount, len(res.Candidates))
	}
	if exp.Limit > 0 && len(res.Candidates) > exp.Limit {
		fail("%d candidates exceed the limit of %d", len(res.Candidates), exp.Limit)
	}

	for i, c := range res.Candidates {
		if c.UserID == exp.LeaderID {
			fail("candidate %d is the leader", i)
		}
		if !rng.Contains(c.OverallScore) {
			fail("candidate %d (user %d) scores %d outside [%d, %d]", i, c.UserID, c.OverallScore, rng.Min, rng.Max)
		}
		for _, msg := range partitionViolations(c) {
			fail("candidate %d (user %d): %s", i, c.UserID, msg)
		}
		if i == 0 {
			continue
		}
		prev := res.Candidates[i-1]
		a, b := sortValue(prev, exp.SortBy), sortValue(c, exp.SortBy)
		if a < b || (a == b && prev.UserID > c.UserID) {
			fail("candidates %d and %d are out of %s order", i-1, i, sortName(exp.SortBy))
		}
	}
	return out
}

// partitionViolations checks that the matching, complementary and unique
// labels cover every skill of c exactly once.
func partitionViolations(c Candidate) []string {
	var out []string
	if len(c.SkillMatchDetails) != len(uniq(c.Skills)) {
		out = append(out, fmt.Sprintf("%d skills but %d classified", len(uniq(c.Skills)), len(c.SkillMatchDetails)))
	}
	var complementary []string
	for _, s := range c.Skills {
		cat, ok := c.SkillMatchDetails[s]
		if !ok {
			out = append(out, fmt.Sprintf("skill %q is unclassified", s))
			continue
		}
		switch cat {
		case matching.CategoryMatching, matching.CategoryUnique:
		case matching.CategoryComplementary:
			complementary = append(complementary, s)
		default:
			out = append(out, fmt.Sprintf("skill %q has unknown category %q", s, cat))
		}
	}
	if !slices.Equal(uniq(complementary), uniq(c.ComplementarySkills)) {
		out = append(out, fmt.Sprintf("complementary_skills %v disagree with the classification %v",
			c.ComplementarySkills, complementary))
	}
	return out
}

func sortValue(c Candidate, key matching.SortKey) float64 {
	switch key {
	case matching.SortOverall:
		return float64(c.OverallScore)
	case matching.SortGit:
		return float64(c.GithubScore)
	case matching.SortResume:
		return float64(c.ResumeScore)
	default:
		return c.ComplementaryScore
	}
}

func sortName(key matching.SortKey) string {
	if key == "" {
		return string(matching.SortComplementary)
	}
	return string(key)
}

// uniq returns the sorted distinct values of s.
func uniq(s []string) []string {
	out := slices.Clone(s)
	slices.Sort(out)
	return slices.Compact(out)
}
