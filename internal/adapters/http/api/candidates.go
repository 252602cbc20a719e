package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/okian/hackbite/internal/domain/matching"
	"github.com/okian/hackbite/pkg/metrics"
)

// defaultBio fills in candidates who never wrote one.
const defaultBio = "Passionate developer looking to collaborate on innovative projects."

type candidateJSON struct {
	ID                  string                       `json:"id"`
	UserID              int64                        `json:"user_id"`
	Name                string                       `json:"name"`
	Email               string                       `json:"email"`
	Bio                 string                       `json:"bio"`
	Location            string                       `json:"location"`
	Experience          string                       `json:"experience"`
	Available           bool                         `json:"available"`
	OverallScore        int                          `json:"overallScore"`
	GithubScore         int                          `json:"githubScore"`
	ResumeScore         int                          `json:"resumeScore"`
	ComplementaryScore  float64                      `json:"complementaryScore"`
	GithubLink          string                       `json:"github_link"`
	ResumeData          string                       `json:"resume_data"`
	Skills              []string                     `json:"skills"`
	ComplementarySkills []string                     `json:"complementary_skills"`
	SkillMatchDetails   map[string]matching.Category `json:"skill_match_details"`
}

type ratingRangeJSON struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type candidatesResponse struct {
	Candidates             []candidateJSON `json:"candidates"`
	LeaderSkills           []string        `json:"leader_skills"`
	RecommendedSkills      []string        `json:"recommended_skills"`
	RatingRange            ratingRangeJSON `json:"rating_range"`
	TotalCount             int             `json:"total_count"`
	ComplementarySkillsMap matching.Graph  `json:"complementary_skills_map"`
}

// handleTeamCandidates serves GET /api/team-candidates?leader_id=&sort_by=&limit=.
func (s *Server) handleTeamCandidates(w http.ResponseWriter, r *http.Request) {
	const op = "api.team_candidates"
	start := time.Now()

	leaderID, err := queryInt(r, op, "leader_id")
	if err != nil {
		metrics.RecordMatchError("bad_request")
		s.writeError(w, r, err)
		return
	}
	if leaderID == nil || *leaderID <= 0 {
		metrics.RecordMatchError("missing_input")
		s.writeError(w, r, NewKind(op, matching.ErrMissingInput))
		return
	}
	sortBy, err := matching.ParseSortKey(r.URL.Query().Get("sort_by"))
	if err != nil {
		metrics.RecordMatchError("invalid_sort")
		s.writeError(w, r, Wrap(op, err))
		return
	}
	limit, err := queryInt(r, op, "limit")
	if err != nil {
		metrics.RecordMatchError("bad_request")
		s.writeError(w, r, err)
		return
	}

	res, err := s.deps.Matcher.Match(r.Context(), matching.Query{
		LeaderID: *leaderID,
		SortBy:   sortBy,
		Limit:    int(deref(limit)),
	})
	if err != nil {
		_, code, _ := statusFor(err)
		metrics.RecordMatchError(code)
		s.writeError(w, r, Wrap(op, err))
		return
	}
	metrics.RecordMatch(string(sortBy), len(res.Candidates), float64(time.Since(start).Milliseconds()))
	writeJSON(w, http.StatusOK, toCandidatesResponse(res, s.deps.Matcher.Graph()))
}

func toCandidatesResponse(res matching.Result, g matching.Graph) candidatesResponse {
	out := candidatesResponse{
		Candidates:             make([]candidateJSON, 0, len(res.Candidates)),
		LeaderSkills:           nonNil(res.LeaderSkills),
		RecommendedSkills:      nonNil(res.RecommendedSkills),
		RatingRange:            ratingRangeJSON{Min: res.RatingRange.Min, Max: res.RatingRange.Max},
		TotalCount:             res.TotalCount,
		ComplementarySkillsMap: g,
	}
	for _, c := range res.Candidates {
		bio := c.Bio
		if bio == "" {
			bio = defaultBio
		}
		details := c.SkillMatchDetails
		if details == nil {
			details = map[string]matching.Category{}
		}
		out.Candidates = append(out.Candidates, candidateJSON{
			ID:                  "user_" + strconv.FormatInt(c.UserID, 10),
			UserID:              c.UserID,
			Name:                c.Name,
			Email:               c.Email,
			Bio:                 bio,
			Location:            c.Location,
			Experience:          c.Experience,
			Available:           true,
			OverallScore:        c.OverallScore,
			GithubScore:         c.GithubScore,
			ResumeScore:         c.ResumeScore,
			ComplementaryScore:  c.ComplementaryScore,
			GithubLink:          c.GithubLink,
			ResumeData:          c.ResumeExcerpt,
			Skills:              nonNil(c.Skills),
			ComplementarySkills: nonNil(c.ComplementarySkills),
			SkillMatchDetails:   details,
		})
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
