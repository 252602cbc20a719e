package api

import (
	"net/http"

	"github.com/okian/hackbite/internal/domain/model"
)

type hackathonsResponse struct {
	Hackathons []model.Hackathon `json:"hackathons"`
	Count      int               `json:"count"`
}

type hackathonResponse struct {
	Hackathon model.Hackathon `json:"hackathon"`
}

func (s *Server) handleListHackathons(w http.ResponseWriter, r *http.Request) {
	hs, err := s.deps.Catalog.Hackathons(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		s.writeError(w, r, Wrap("api.list_hackathons", err))
		return
	}
	writeJSON(w, http.StatusOK, hackathonsResponse{Hackathons: hs, Count: len(hs)})
}

func (s *Server) handleGetHackathon(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_hackathon"
	id, err := pathID(r, op)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	h, err := s.deps.Catalog.Hackathon(r.Context(), id)
	if err != nil {
		s.writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, hackathonResponse{Hackathon: h})
}

type categoriesResponse struct {
	Categories []model.SkillCategory `json:"categories"`
}

func (s *Server) handleSkillCategories(w http.ResponseWriter, r *http.Request) {
	cs, err := s.deps.Catalog.SkillCategories(r.Context())
	if err != nil {
		s.writeError(w, r, Wrap("api.skill_categories", err))
		return
	}
	writeJSON(w, http.StatusOK, categoriesResponse{Categories: cs})
}

type categorySkillsResponse struct {
	CategoryID int64              `json:"category_id"`
	Skills     []model.SkillCount `json:"skills"`
}

func (s *Server) handleCategorySkills(w http.ResponseWriter, r *http.Request) {
	const op = "api.category_skills"
	id, err := pathID(r, op)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	skills, err := s.deps.Catalog.SkillsByCategory(r.Context(), id)
	if err != nil {
		s.writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, categorySkillsResponse{CategoryID: id, Skills: skills})
}

func (s *Server) handleGetSetting(w http.ResponseWriter, r *http.Request) {
	st, err := s.deps.Catalog.Setting(r.Context(), r.PathValue("key"))
	if err != nil {
		s.writeError(w, r, Wrap("api.get_setting", err))
		return
	}
	writeJSON(w, http.StatusOK, st)
}

type settingRequest struct {
	Value any    `json:"value"`
	Type  string `json:"type"`
}

func (s *Server) handlePutSetting(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_setting"
	var req settingRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, badRequest(op, "invalid JSON body"))
		return
	}
	st, err := s.deps.Catalog.PutSetting(r.Context(), r.PathValue("key"), req.Value, req.Type)
	if err != nil {
		s.writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, st)
}
