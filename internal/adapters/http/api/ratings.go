package api

import (
	"net/http"

	"github.com/okian/hackbite/internal/domain/model"
	"github.com/okian/hackbite/internal/domain/rating"
)

type rateProfileRequest struct {
	UserID *int64 `json:"user_id"`
	GitHub string `json:"githubUsername"`
	Resume string `json:"resumeBase64"`
}

type rateProfileResponse struct {
	JobID     string          `json:"job_id"`
	Status    model.JobStatus `json:"status"`
	Duplicate bool            `json:"duplicate"`
}

// handleRateProfile queues a rating job and answers 202 with its id.
func (s *Server) handleRateProfile(w http.ResponseWriter, r *http.Request) {
	const op = "api.rate_profile"
	var req rateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, badRequest(op, "invalid JSON body"))
		return
	}
	job, dup, err := s.deps.Ratings.Submit(r.Context(), rating.Submission{
		UserID: req.UserID,
		GitHub: req.GitHub,
		Resume: req.Resume,
	})
	if err != nil {
		s.writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusAccepted, rateProfileResponse{JobID: job.ID, Status: job.Status, Duplicate: dup})
}

type ratingJobResponse struct {
	Job model.RatingJob `json:"job"`
}

func (s *Server) handleRatingJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.deps.Ratings.Job(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, Wrap("api.rating_job", err))
		return
	}
	writeJSON(w, http.StatusOK, ratingJobResponse{Job: job})
}

type userRatingResponse struct {
	Rating model.Rating `json:"rating"`
}

func (s *Server) handleUserRating(w http.ResponseWriter, r *http.Request) {
	const op = "api.user_rating"
	id, err := pathID(r, op)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rt, err := s.deps.Ratings.UserRating(r.Context(), id)
	if err != nil {
		s.writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, userRatingResponse{Rating: rt})
}

type scoresResponse struct {
	Ratings model.Scores `json:"ratings"`
}

func (s *Server) handleGetRatings(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_ratings"
	userID, err := queryInt(r, op, "user_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sc, err := s.deps.Ratings.Ratings(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, scoresResponse{Ratings: sc})
}
