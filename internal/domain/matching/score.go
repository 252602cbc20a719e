package matching

// Complementary scoring weights.
const (
	complementaryWeight = 3.0
	uniqueWeight        = 1.0
	overlapThreshold    = 0.7
	overlapPenalty      = 0.5
)

// Window returns the clamped [score-radius, score+radius] range.
func Window(score, radius int) Range {
	return Range{
		Min: clamp(score-radius, MinScore, MaxScore),
		Max: clamp(score+radius, MinScore, MaxScore),
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func toSet(skills []string) map[string]struct{} {
	set := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		set[s] = struct{}{}
	}
	return set
}

// ComplementaryScore rates how well candidate skills complement the leader's.
// A skill from a leader skill's graph entry that the candidate has and the
// leader lacks adds 3 per entry it appears in. Every candidate skill the
// leader lacks adds 1. When the overlap exceeds 70% of the leader's skill
// count, half a point per shared skill is taken off. The result is 0 when
// either side has no skills and may be negative.
func ComplementaryScore(g Graph, leaderSkills, candidateSkills []string) float64 {
	if len(leaderSkills) == 0 || len(candidateSkills) == 0 {
		return 0
	}
	candidate := toSet(candidateSkills)
	leader := toSet(leaderSkills)

	var score float64
	for _, ls := range leaderSkills {
		for _, needed := range g[ls] {
			if _, held := leader[needed]; held {
				continue
			}
			if _, ok := candidate[needed]; ok {
				score += complementaryWeight
			}
		}
	}

	overlap := 0
	for s := range candidate {
		if _, ok := leader[s]; ok {
			overlap++
		} else {
			score += uniqueWeight
		}
	}

	if float64(overlap) > overlapThreshold*float64(len(leaderSkills)) {
		score -= overlapPenalty * float64(overlap)
	}
	return score
}

// Classify assigns each candidate skill a Category and returns the
// complementary skills in candidate order.
func Classify(g Graph, leaderSkills, candidateSkills []string) (map[string]Category, []string) {
	leader := toSet(leaderSkills)
	details := make(map[string]Category, len(candidateSkills))
	complementary := []string{}

	for _, skill := range candidateSkills {
		if _, seen := details[skill]; seen {
			continue
		}
		if _, ok := leader[skill]; ok {
			details[skill] = CategoryMatching
			continue
		}
		details[skill] = CategoryUnique
		for _, ls := range leaderSkills {
			if g.Complements(ls, skill) {
				details[skill] = CategoryComplementary
				complementary = append(complementary, skill)
				break
			}
		}
	}
	return details, complementary
}

// Recommend returns the skills the leader's graph entries call for that the
// leader does not already have, in first-seen order.
func Recommend(g Graph, leaderSkills []string) []string {
	leader := toSet(leaderSkills)
	seen := make(map[string]struct{})
	out := []string{}
	for _, ls := range leaderSkills {
		for _, s := range g[ls] {
			if _, ok := leader[s]; ok {
				continue
			}
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
