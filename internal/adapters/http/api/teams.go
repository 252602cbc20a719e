package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/hackbite/internal/domain/model"
)

type teamResponse struct {
	Team model.Team `json:"team"`
}

type teamsResponse struct {
	Teams []model.Team `json:"teams"`
	Count int          `json:"count"`
}

func (s *Server) handleCreateTeam(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_team"
	var nt model.NewTeam
	if err := decodeJSON(r, &nt); err != nil {
		s.writeError(w, r, badRequest(op, "invalid JSON body"))
		return
	}
	t, err := s.deps.Teams.Create(r.Context(), nt)
	if err != nil {
		s.writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, teamResponse{Team: t})
}

func (s *Server) handleCheckExistingTeam(w http.ResponseWriter, r *http.Request) {
	const op = "api.check_existing_team"
	hackathonID, err := queryInt(r, op, "hackathon_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	leaderID, err := queryInt(r, op, "leader_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.deps.Teams.CheckExisting(r.Context(), deref(hackathonID), deref(leaderID))
	if err != nil {
		s.writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleListTeams(w http.ResponseWriter, r *http.Request) {
	status := model.TeamStatus(strings.TrimSpace(r.URL.Query().Get("status")))
	teams, err := s.deps.Teams.List(r.Context(), status, queryBool(r, "include_members", false))
	if err != nil {
		s.writeError(w, r, Wrap("api.list_teams", err))
		return
	}
	writeJSON(w, http.StatusOK, teamsResponse{Teams: teams, Count: len(teams)})
}

func (s *Server) handleSearchTeams(w http.ResponseWriter, r *http.Request) {
	const op = "api.search_teams"
	q := r.URL.Query()
	minMembers, err := queryInt(r, op, "min_members")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	maxMembers, err := queryInt(r, op, "max_members")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var tech []string
	for _, v := range q["tech"] {
		tech = append(tech, strings.Split(v, ",")...)
	}
	teams, err := s.deps.Teams.Search(r.Context(), model.TeamSearch{
		Query:      q.Get("q"),
		Tech:       tech,
		MinMembers: toInt(minMembers),
		MaxMembers: toInt(maxMembers),
		Status:     model.TeamStatus(strings.TrimSpace(q.Get("status"))),
	})
	if err != nil {
		s.writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, teamsResponse{Teams: teams, Count: len(teams)})
}

func (s *Server) handleGetTeam(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_team"
	id, err := pathID(r, op)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	t, err := s.deps.Teams.Get(r.Context(), id, queryBool(r, "include_members", true))
	if err != nil {
		s.writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, teamResponse{Team: t})
}

type updateTeamRequest struct {
	LeaderID int64 `json:"leader_id"`
	model.TeamUpdate
}

func (s *Server) handleUpdateTeam(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_team"
	id, err := pathID(r, op)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req updateTeamRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, badRequest(op, "invalid JSON body"))
		return
	}
	if req.LeaderID <= 0 {
		s.writeError(w, r, badRequest(op, "leader id is required"))
		return
	}
	t, err := s.deps.Teams.Update(r.Context(), id, req.LeaderID, req.TeamUpdate)
	if err != nil {
		s.writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, teamResponse{Team: t})
}

type membershipRequest struct {
	UserID int64 `json:"user_id"`
}

func (s *Server) handleJoinTeam(w http.ResponseWriter, r *http.Request) {
	s.membership(w, r, "api.join_team", s.deps.Teams.Join)
}

func (s *Server) handleLeaveTeam(w http.ResponseWriter, r *http.Request) {
	s.membership(w, r, "api.leave_team", s.deps.Teams.Leave)
}

func (s *Server) membership(w http.ResponseWriter, r *http.Request, op string,
	change func(ctx context.Context, teamID, userID int64) (model.Team, error),
) {
	id, err := pathID(r, op)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req membershipRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, badRequest(op, "invalid JSON body"))
		return
	}
	if req.UserID <= 0 {
		s.writeError(w, r, badRequest(op, "user id is required"))
		return
	}
	t, err := change(r.Context(), id, req.UserID)
	if err != nil {
		s.writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, teamResponse{Team: t})
}

type teamRequestBody struct {
	HackathonID int64  `json:"hackathon_id"`
	UserEmail   string `json:"user_email"`
	Message     string `json:"message"`
}

type teamRequestResponse struct {
	Request model.TeamRequest `json:"request"`
}

type teamRequestsResponse struct {
	Requests []model.TeamRequest `json:"requests"`
	Count    int                 `json:"count"`
}

func (s *Server) handleCreateTeamRequest(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_team_request"
	var req teamRequestBody
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, badRequest(op, "invalid JSON body"))
		return
	}
	tr, err := s.deps.Teams.CreateRequest(r.Context(), req.HackathonID, req.UserEmail, req.Message)
	if err != nil {
		s.writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, teamRequestResponse{Request: tr})
}

func (s *Server) handleCheckTeamRequest(w http.ResponseWriter, r *http.Request) {
	const op = "api.check_team_request"
	hackathonID, err := queryInt(r, op, "hackathon_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.deps.Teams.CheckRequest(r.Context(), deref(hackathonID), r.URL.Query().Get("email"))
	if err != nil {
		s.writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleListTeamRequests(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_team_requests"
	hackathonID, err := queryInt(r, op, "hackathon_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	reqs, err := s.deps.Teams.ListRequests(r.Context(), model.TeamRequestFilter{
		HackathonID: deref(hackathonID),
		Status:      strings.TrimSpace(q.Get("status")),
		Email:       q.Get("email"),
	})
	if err != nil {
		s.writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, teamRequestsResponse{Requests: reqs, Count: len(reqs)})
}

func toInt(p *int64) *int {
	if p == nil {
		return nil
	}
	n := int(*p)
	return &n
}
