package rating

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/okian/hackbite/internal/domain/model"
)

// Dimension is one scored aspect of a rating.
type Dimension struct {
	Score     float64  `json:"score"`
	Reasoning []string `json:"reasoning"`
}

// Ratings is the structured reply of the generator.
type Ratings struct {
	Git     *Dimension `json:"git_rating"`
	Resume  *Dimension `json:"resume_rating"`
	Overall *Dimension `json:"overall_rating"`
}

// Scores rounds the three dimensions to integers.
func (r Ratings) Scores() model.Scores {
	return model.Scores{
		Git:     int(math.Round(r.Git.Score)),
		Resume:  int(math.Round(r.Resume.Score)),
		Overall: int(math.Round(r.Overall.Score)),
	}
}

// ParseResponse decodes a generator reply, tolerating markdown code fences.
func ParseResponse(raw string) (Ratings, error) {
	const op = "rating.parse_response"

	body := stripFences(raw)
	var r Ratings
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return Ratings{}, fmt.Errorf("%s: %w: %w", op, ErrBadResponse, err)
	}
	for _, f := range []struct {
		name string
		d    *Dimension
	}{{"git_rating", r.Git}, {"resume_rating", r.Resume}, {"overall_rating", r.Overall}} {
		name, d := f.name, f.d
		if d == nil {
			return Ratings{}, fmt.Errorf("%s: %w: missing %s", op, ErrBadResponse, name)
		}
		if d.Reasoning == nil {
			return Ratings{}, fmt.Errorf("%s: %w: %s has no reasoning", op, ErrBadResponse, name)
		}
		if math.IsNaN(d.Score) || d.Score < 0 || d.Score > 1000 {
			return Ratings{}, fmt.Errorf("%s: %w: %s score %v out of range", op, ErrBadResponse, name, d.Score)
		}
	}
	return r, nil
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```JSON")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	s = strings.TrimSpace(s)
	// Some replies wrap the object in prose.
	if !strings.HasPrefix(s, "{") {
		start, end := strings.Index(s, "{"), strings.LastIndex(s, "}")
		if start >= 0 && end > start {
			s = s[start : end+1]
		}
	}
	return s
}
