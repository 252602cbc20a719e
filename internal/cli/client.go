package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/hackbite/internal/adapters/http/api"
	"github.com/okian/hackbite/internal/domain/matching"
	"github.com/okian/hackbite/pkg/retry"
)

const (
	defaultClientTimeout = 10 * time.Second
	maxErrorBody         = 512
)

// Candidate is one ranked teammate as served by the API.
type Candidate struct {
	ID                  string                       `json:"id"`
	UserID              int64                        `json:"user_id"`
	Name                string                       `json:"name"`
	OverallScore        int                          `json:"overallScore"`
	GithubScore         int                          `json:"githubScore"`
	ResumeScore         int                          `json:"resumeScore"`
	ComplementaryScore  float64                      `json:"complementaryScore"`
	Skills              []string                     `json:"skills"`
	ComplementarySkills []string                     `json:"complementary_skills"`
	SkillMatchDetails   map[string]matching.Category `json:"skill_match_details"`
}

// CandidateResult is the team-candidates response body.
type CandidateResult struct {
	Candidates        []Candidate    `json:"candidates"`
	LeaderSkills      []string       `json:"leader_skills"`
	RecommendedSkills []string       `json:"recommended_skills"`
	RatingRange       matching.Range `json:"rating_range"`
	TotalCount        int            `json:"total_count"`
}

// Client talks to a running HackBite server.
type Client struct {
	baseURL string
	http    *http.Client
	retry   retry.Config
}

// NewClient returns a client for the server at baseURL.
func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: defaultClientTimeout}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc, retry: retry.Default}
}

// Candidates fetches the ranked teammates of leaderID. A zero limit leaves
// the server default in place.
func (c *Client) Candidates(ctx context.Context, leaderID int64, sortBy matching.SortKey, limit int) (CandidateResult, error) {
	q := url.Values{}
	q.Set("leader_id", strconv.FormatInt(leaderID, 10))
	if sortBy != "" {
		q.Set("sort_by", string(sortBy))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out CandidateResult
	if err := c.get(ctx, "/api/team-candidates?"+q.Encode(), &out); err != nil {
		return CandidateResult{}, fmt.Errorf("cli.candidates: %w", err)
	}
	return out, nil
}

// OverallScore returns the stored overall score of userID.
func (c *Client) OverallScore(ctx context.Context, userID int64) (int, error) {
	var out struct {
		Ratings struct {
			Overall int `json:"overall_score"`
		} `json:"ratings"`
	}
	if err := c.get(ctx, "/api/get-ratings?user_id="+strconv.FormatInt(userID, 10), &out); err != nil {
		return 0, fmt.Errorf("cli.overall_score: %w", err)
	}
	return out.Ratings.Overall, nil
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("server answered %d", e.Status)
	}
	return fmt.Sprintf("server answered %d %s: %s", e.Status, e.Code, e.Message)
}

func (c *Client) get(ctx context.Context, path string, v any) error {
	body, err := retry.Do(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return nil, retry.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set(api.RequestIDHeader, uuid.NewString())
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if retry.RetryableStatus(resp.StatusCode) {
			return nil, &retry.StatusError{StatusCode: resp.StatusCode}
		}
		if resp.StatusCode/100 != 2 {
			apiErr := &APIError{Status: resp.StatusCode}
			raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			_ = json.Unmarshal(raw, apiErr)
			return nil, retry.Permanent(apiErr)
		}
		return io.ReadAll(resp.Body)
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
