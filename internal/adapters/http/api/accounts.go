package api

import (
	"net"
	"net/http"
	"strings"

	"github.com/okian/hackbite/internal/domain/account"
	"github.com/okian/hackbite/internal/domain/model"
)

type userResponse struct {
	User model.User `json:"user"`
}

type usersResponse struct {
	Users []model.User `json:"users"`
	Count int          `json:"count"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	const op = "api.register"
	var reg model.Registration
	if err := decodeJSON(r, &reg); err != nil {
		s.writeError(w, r, badRequest(op, "invalid JSON body"))
		return
	}
	u, err := s.deps.Accounts.Register(r.Context(), reg)
	if err != nil {
		s.writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, userResponse{User: u})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	const op = "api.login"
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, badRequest(op, "invalid JSON body"))
		return
	}
	u, err := s.deps.Accounts.Login(r.Context(), req.Email, req.Password, clientIP(r), r.UserAgent())
	if err != nil {
		s.writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, userResponse{User: u})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.deps.Accounts.ListUsers(r.Context(), queryBool(r, "include_profiles", false))
	if err != nil {
		s.writeError(w, r, Wrap("api.list_users", err))
		return
	}
	writeJSON(w, http.StatusOK, usersResponse{Users: users, Count: len(users)})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_user"
	id, err := pathID(r, op)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	u, err := s.deps.Accounts.GetUser(r.Context(), id, queryBool(r, "include_skills", true))
	if err != nil {
		s.writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, userResponse{User: u})
}

type logoRequest struct {
	ProfileLogo string `json:"profile_logo"`
}

func (s *Server) handleUpdateProfileLogo(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_profile_logo"
	id, err := pathID(r, op)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req logoRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, badRequest(op, "invalid JSON body"))
		return
	}
	if strings.TrimSpace(req.ProfileLogo) == "" {
		s.writeError(w, r, badRequest(op, "profile logo is required"))
		return
	}
	if err := s.deps.Accounts.UpdateProfileLogo(r.Context(), id, req.ProfileLogo); err != nil {
		s.writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Profile logo updated successfully"})
}

type resumeResponse struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Resume string `json:"resume_data"`
}

func (s *Server) handleUserResume(w http.ResponseWriter, r *http.Request) {
	const op = "api.user_resume"
	id, err := pathID(r, op)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.deps.Accounts.Resume(r.Context(), id)
	if err != nil {
		s.writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, resumeResponse{UserID: res.UserID, Name: res.Name, Resume: res.Text})
}

type logosResponse struct {
	Logos     map[string]string `json:"logos"`
	Available []string          `json:"available"`
}

func (s *Server) handleProfileLogos(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, logosResponse{Logos: account.Logos(), Available: account.LogoNames()})
}

type statisticsResponse struct {
	Statistics model.Statistics `json:"statistics"`
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	st, err := s.deps.Accounts.Statistics(r.Context())
	if err != nil {
		s.writeError(w, r, Wrap("api.statistics", err))
		return
	}
	writeJSON(w, http.StatusOK, statisticsResponse{Statistics: st})
}

// clientIP prefers the first X-Forwarded-For hop over the socket address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
