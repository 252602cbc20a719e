// Package api exposes the HackBite HTTP surface: accounts, teams,
// hackathons, profile ratings and teammate matching.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/hackbite/internal/domain/matching"
	"github.com/okian/hackbite/internal/domain/model"
	"github.com/okian/hackbite/internal/domain/rating"
	"github.com/okian/hackbite/internal/domain/team"
	"github.com/okian/hackbite/pkg/logger"
)

const maxBodyBytes = 16 << 20

// Accounts manages users.
type Accounts interface {
	Register(ctx context.Context, reg model.Registration) (model.User, error)
	Login(ctx context.Context, email, password, ip, userAgent string) (model.User, error)
	ListUsers(ctx context.Context, includeProfiles bool) ([]model.User, error)
	GetUser(ctx context.Context, id int64, includeSkills bool) (model.User, error)
	UpdateProfileLogo(ctx context.Context, id int64, logo string) error
	Statistics(ctx context.Context) (model.Statistics, error)
	Resume(ctx context.Context, userID int64) (model.Resume, error)
}

// Teams manages teams and team requests.
type Teams interface {
	Create(ctx context.Context, nt model.NewTeam) (model.Team, error)
	CheckExisting(ctx context.Context, hackathonID, leaderID int64) (model.ExistingTeam, error)
	List(ctx context.Context, status model.TeamStatus, includeMembers bool) ([]model.Team, error)
	Get(ctx context.Context, id int64, includeMembers bool) (model.Team, error)
	Join(ctx context.Context, teamID, userID int64) (model.Team, error)
	Leave(ctx context.Context, teamID, userID int64) (model.Team, error)
	Update(ctx context.Context, teamID, leaderID int64, upd model.TeamUpdate) (model.Team, error)
	Search(ctx context.Context, q model.TeamSearch) ([]model.Team, error)
	CreateRequest(ctx context.Context, hackathonID int64, email, message string) (model.TeamRequest, error)
	CheckRequest(ctx context.Context, hackathonID int64, email string) (team.RequestCheck, error)
	ListRequests(ctx context.Context, f model.TeamRequestFilter) ([]model.TeamRequest, error)
}

// Catalog serves hackathons, skill categories and settings.
type Catalog interface {
	Hackathons(ctx context.Context, status string) ([]model.Hackathon, error)
	Hackathon(ctx context.Context, id int64) (model.Hackathon, error)
	SkillCategories(ctx context.Context) ([]model.SkillCategory, error)
	SkillsByCategory(ctx context.Context, categoryID int64) ([]model.SkillCount, error)
	Setting(ctx context.Context, key string) (model.Setting, error)
	PutSetting(ctx context.Context, key string, value any, typ string) (model.Setting, error)
}

// Ratings submits and reads profile ratings.
type Ratings interface {
	Submit(ctx context.Context, sub rating.Submission) (model.RatingJob, bool, error)
	Job(ctx context.Context, id string) (model.RatingJob, error)
	UserRating(ctx context.Context, userID int64) (model.Rating, error)
	Ratings(ctx context.Context, userID *int64) (model.Scores, error)
}

// Matcher ranks teammate candidates.
type Matcher interface {
	Match(ctx context.Context, q matching.Query) (matching.Result, error)
	Graph() matching.Graph
}

// Dependencies required by HTTP handlers.
type Dependencies struct {
	Accounts Accounts
	Teams    Teams
	Catalog  Catalog
	Ratings  Ratings
	Matcher  Matcher
	Stats    StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps   Dependencies
	logger logger.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{deps: deps, logger: logger.Get().Named("api")}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	routes := []struct {
		pattern  string
		endpoint string
		handler  http.HandlerFunc
	}{
		{"GET /health", "health", s.handleHealth},
		{"GET /stats", "stats", s.handleStats},

		{"POST /api/register", "register", s.handleRegister},
		{"POST /api/login", "login", s.handleLogin},
		{"GET /api/users", "users", s.handleListUsers},
		{"GET /api/users/{id}", "user", s.handleGetUser},
		{"PUT /api/users/{id}/profile-logo", "profile_logo", s.handleUpdateProfileLogo},
		{"GET /api/users/{id}/resume", "user_resume", s.handleUserResume},
		{"GET /api/profile-logos", "profile_logos", s.handleProfileLogos},
		{"GET /api/statistics", "statistics", s.handleStatistics},

		{"GET /api/skill-categories", "skill_categories", s.handleSkillCategories},
		{"GET /api/skill-categories/{id}/skills", "category_skills", s.handleCategorySkills},
		{"GET /api/settings/{key}", "setting", s.handleGetSetting},
		{"PUT /api/settings/{key}", "setting", s.handlePutSetting},
		{"GET /api/hackathons", "hackathons", s.handleListHackathons},
		{"GET /api/hackathons/{id}", "hackathon", s.handleGetHackathon},

		{"POST /api/teams", "teams", s.handleCreateTeam},
		{"GET /api/teams", "teams", s.handleListTeams},
		{"GET /api/teams/check-existing", "teams_check_existing", s.handleCheckExistingTeam},
		{"GET /api/teams/search", "teams_search", s.handleSearchTeams},
		{"GET /api/teams/{id}", "team", s.handleGetTeam},
		{"PUT /api/teams/{id}", "team", s.handleUpdateTeam},
		{"POST /api/teams/{id}/join", "team_join", s.handleJoinTeam},
		{"POST /api/teams/{id}/leave", "team_leave", s.handleLeaveTeam},
		{"POST /api/team-requests", "team_requests", s.handleCreateTeamRequest},
		{"GET /api/team-requests", "team_requests", s.handleListTeamRequests},
		{"GET /api/team-requests/check", "team_requests_check", s.handleCheckTeamRequest},

		{"POST /api/rate-profile", "rate_profile", s.handleRateProfile},
		{"GET /api/rating-jobs/{id}", "rating_job", s.handleRatingJob},
		{"GET /api/user-ratings/{id}", "user_rating", s.handleUserRating},
		{"GET /api/get-ratings", "get_ratings", s.handleGetRatings},
		{"GET /api/team-candidates", "team_candidates", s.handleTeamCandidates},
	}
	for _, rt := range routes {
		mux.HandleFunc(rt.pattern, MetricsMiddleware(rt.handler, rt.endpoint))
	}
	mux.Handle("GET /metrics", metricsHandler())
}

// Handler returns mux wrapped in the request-id and recover middlewares.
func (s *Server) Handler(mux http.Handler) http.Handler {
	return RequestID(Recover(s.logger)(mux))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status and writes it. Server errors are logged.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed",
			logger.String("path", r.URL.Path),
			logger.String("method", r.Method),
			logger.Error(err),
		)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// pathID parses the {id} path segment.
func pathID(r *http.Request, op string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest(op, "invalid id")
	}
	return id, nil
}

// queryInt parses an optional integer query parameter. Absent yields nil.
func queryInt(r *http.Request, op, name string) (*int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil //nolint:nilnil // absent parameter
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, badRequest(op, "invalid "+name)
	}
	return &n, nil
}

// queryBool parses an optional boolean parameter, returning def when absent.
func queryBool(r *http.Request, name string, def bool) bool {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return b
}

func deref(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}
