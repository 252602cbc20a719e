// Package team manages team creation, membership and hackathon team
// requests.
package team

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/okian/hackbite/internal/domain/model"
	"github.com/okian/hackbite/pkg/logger"
)

// Store persists teams and team requests. Mutating membership methods load
// the team with its members, call decide and apply the outcome atomically.
type Store interface {
	UserExists(ctx context.Context, id int64) (bool, error)
	HackathonExists(ctx context.Context, id int64) (bool, error)
	TeamByLeader(ctx context.Context, hackathonID, leaderID int64) (model.Team, error)
	CreateTeam(ctx context.Context, nt model.NewTeam) (model.Team, error)
	ListTeams(ctx context.Context, status model.TeamStatus, includeMembers bool) ([]model.Team, error)
	GetTeam(ctx context.Context, id int64, includeMembers bool) (model.Team, error)
	SearchTeams(ctx context.Context, q model.TeamSearch) ([]model.Team, error)
	JoinTeam(ctx context.Context, teamID, userID int64, decide func(model.Team) (model.TeamStatus, error)) (model.Team, error)
	LeaveTeam(ctx context.Context, teamID, userID int64, decide func(model.Team) (model.TeamStatus, error)) (model.Team, error)
	UpdateTeam(ctx context.Context, teamID int64, apply func(model.Team) (model.Team, error)) (model.Team, error)

	CreateTeamRequest(ctx context.Context, r model.TeamRequest) (model.TeamRequest, error)
	TeamRequestFor(ctx context.Context, hackathonID int64, email string) (model.TeamRequest, error)
	ListTeamRequests(ctx context.Context, f model.TeamRequestFilter) ([]model.TeamRequest, error)
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// Service implements team operations.
type Service struct {
	store  Store
	logger logger.Logger
}

// New creates a team service.
func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: logger.Get().Named("team")}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates nt and creates the team with its leader as first member.
func (s *Service) Create(ctx context.Context, nt model.NewTeam) (model.Team, error) {
	const op = "team.create"

	nt.Name = strings.TrimSpace(nt.Name)
	nt.Description = strings.TrimSpace(nt.Description)
	nt.ProjectIdea = strings.TrimSpace(nt.ProjectIdea)
	nt.ApplicationDeadline = strings.TrimSpace(nt.ApplicationDeadline)
	nt.TechStack = cleanList(nt.TechStack)

	if nt.Name == "" || nt.Description == "" || nt.LeaderID <= 0 {
		return model.Team{}, fmt.Errorf("%s: %w", op, ErrMissingFields)
	}
	if nt.MaxMembers == 0 {
		nt.MaxMembers = model.DefaultMaxMembers
	}
	if err := validateSize(nt.MaxMembers); err != nil {
		return model.Team{}, fmt.Errorf("%s: %w", op, err)
	}

	ok, err := s.store.UserExists(ctx, nt.LeaderID)
	if err != nil {
		return model.Team{}, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return model.Team{}, fmt.Errorf("%s: leader: %w", op, ErrUserNotFound)
	}

	if nt.HackathonID != nil {
		ok, err := s.store.HackathonExists(ctx, *nt.HackathonID)
		if err != nil {
			return model.Team{}, fmt.Errorf("%s: %w", op, err)
		}
		if !ok {
			return model.Team{}, fmt.Errorf("%s: %w", op, ErrHackathonNotFound)
		}
		existing, err := s.store.TeamByLeader(ctx, *nt.HackathonID, nt.LeaderID)
		switch {
		case err == nil:
			return model.Team{}, fmt.Errorf("%s: %w", op, &ExistingTeamError{TeamID: existing.ID, TeamName: existing.Name})
		case !errors.Is(err, model.ErrNotFound):
			return model.Team{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	t, err := s.store.CreateTeam(ctx, nt)
	if err != nil {
		return model.Team{}, fmt.Errorf("%s: %w", op, err)
	}
	s.logger.Info(ctx, "team created",
		logger.Int64("team_id", t.ID),
		logger.Int64("leader_id", t.LeaderID),
	)
	return t, nil
}

// CheckExisting reports whether leaderID already leads a team for hackathonID.
func (s *Service) CheckExisting(ctx context.Context, hackathonID, leaderID int64) (model.ExistingTeam, error) {
	const op = "team.check_existing"

	if hackathonID <= 0 || leaderID <= 0 {
		return model.ExistingTeam{}, fmt.Errorf("%s: %w", op, ErrMissingCheckFields)
	}
	t, err := s.store.TeamByLeader(ctx, hackathonID, leaderID)
	if errors.Is(err, model.ErrNotFound) {
		return model.ExistingTeam{Exists: false}, nil
	}
	if err != nil {
		return model.ExistingTeam{}, fmt.Errorf("%s: %w", op, err)
	}
	return model.ExistingTeam{Exists: true, Team: &t}, nil
}

// List returns teams in the given status, newest first. An empty status
// means forming.
func (s *Service) List(ctx context.Context, status model.TeamStatus, includeMembers bool) ([]model.Team, error) {
	const op = "team.list"

	if status == "" {
		status = model.TeamForming
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%s: %w: %q", op, ErrInvalidStatus, status)
	}
	teams, err := s.store.ListTeams(ctx, status, includeMembers)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return teams, nil
}

// Get returns a team by id.
func (s *Service) Get(ctx context.Context, id int64, includeMembers bool) (model.Team, error) {
	t, err := s.store.GetTeam(ctx, id, includeMembers)
	if err != nil {
		return model.Team{}, mapNotFound("team.get", err, ErrTeamNotFound)
	}
	return t, nil
}

// Join adds userID to the team.
func (s *Service) Join(ctx context.Context, teamID, userID int64) (model.Team, error) {
	const op = "team.join"

	if userID <= 0 {
		return model.Team{}, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	ok, err := s.store.UserExists(ctx, userID)
	if err != nil {
		return model.Team{}, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return model.Team{}, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}

	t, err := s.store.JoinTeam(ctx, teamID, userID, func(t model.Team) (model.TeamStatus, error) {
		return DecideJoin(t, userID)
	})
	if err != nil {
		return model.Team{}, mapNotFound(op, err, ErrTeamNotFound)
	}
	s.logger.Info(ctx, "user joined team",
		logger.Int64("team_id", teamID),
		logger.Int64("user_id", userID),
		logger.String("status", string(t.Status)),
	)
	return t, nil
}

// Leave removes userID from the team.
func (s *Service) Leave(ctx context.Context, teamID, userID int64) (model.Team, error) {
	const op = "team.leave"

	t, err := s.store.LeaveTeam(ctx, teamID, userID, func(t model.Team) (model.TeamStatus, error) {
		return DecideLeave(t, userID)
	})
	if err != nil {
		return model.Team{}, mapNotFound(op, err, ErrTeamNotFound)
	}
	return t, nil
}

// Update applies upd on behalf of leaderID.
func (s *Service) Update(ctx context.Context, teamID, leaderID int64, upd model.TeamUpdate) (model.Team, error) {
	const op = "team.update"

	if leaderID <= 0 {
		return model.Team{}, fmt.Errorf("%s: %w", op, ErrNotLeader)
	}
	t, err := s.store.UpdateTeam(ctx, teamID, func(t model.Team) (model.Team, error) {
		return ApplyUpdate(t, leaderID, upd)
	})
	if err != nil {
		return model.Team{}, mapNotFound(op, err, ErrTeamNotFound)
	}
	return t, nil
}

// Search filters teams by text, tech and size.
func (s *Service) Search(ctx context.Context, q model.TeamSearch) ([]model.Team, error) {
	const op = "team.search"

	if q.Status == "" {
		q.Status = model.TeamForming
	}
	if !q.Status.Valid() {
		return nil, fmt.Errorf("%s: %w: %q", op, ErrInvalidStatus, q.Status)
	}
	q.Query = strings.TrimSpace(q.Query)
	q.Tech = cleanList(q.Tech)
	if q.MinMembers == nil || q.MaxMembers == nil {
		q.MinMembers, q.MaxMembers = nil, nil
	}
	teams, err := s.store.SearchTeams(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return teams, nil
}

// CreateRequest records a user's wish to be placed in a team.
func (s *Service) CreateRequest(ctx context.Context, hackathonID int64, email, message string) (model.TeamRequest, error) {
	const op = "team.create_request"

	email = strings.ToLower(strings.TrimSpace(email))
	message = strings.TrimSpace(message)
	if hackathonID <= 0 || email == "" || message == "" {
		return model.TeamRequest{}, fmt.Errorf("%s: %w", op, ErrMissingRequest)
	}
	ok, err := s.store.HackathonExists(ctx, hackathonID)
	if err != nil {
		return model.TeamRequest{}, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return model.TeamRequest{}, fmt.Errorf("%s: %w", op, ErrHackathonNotFound)
	}

	r, err := s.store.CreateTeamRequest(ctx, model.TeamRequest{
		HackathonID: hackathonID,
		UserEmail:   email,
		Message:     message,
		Status:      model.RequestPending,
	})
	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			return model.TeamRequest{}, fmt.Errorf("%s: %w", op, ErrRequestExists)
		}
		return model.TeamRequest{}, fmt.Errorf("%s: %w", op, err)
	}
	return r, nil
}

// RequestCheck is the outcome of CheckRequest.
type RequestCheck struct {
	Exists  bool               `json:"exists"`
	Request *model.TeamRequest `json:"request,omitempty"`
}

// CheckRequest reports whether email already asked for a team in hackathonID.
func (s *Service) CheckRequest(ctx context.Context, hackathonID int64, email string) (RequestCheck, error) {
	const op = "team.check_request"

	email = strings.ToLower(strings.TrimSpace(email))
	if hackathonID <= 0 || email == "" {
		return RequestCheck{}, fmt.Errorf("%s: %w", op, ErrMissingRequest)
	}
	r, err := s.store.TeamRequestFor(ctx, hackathonID, email)
	if errors.Is(err, model.ErrNotFound) {
		return RequestCheck{}, nil
	}
	if err != nil {
		return RequestCheck{}, fmt.Errorf("%s: %w", op, err)
	}
	return RequestCheck{Exists: true, Request: &r}, nil
}

// ListRequests returns team requests, newest first.
func (s *Service) ListRequests(ctx context.Context, f model.TeamRequestFilter) ([]model.TeamRequest, error) {
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))
	out, err := s.store.ListTeamRequests(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("team.list_requests: %w", err)
	}
	return out, nil
}

func mapNotFound(op string, err, kind error) error {
	if errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, kind)
	}
	return fmt.Errorf("%s: %w", op, err)
}
