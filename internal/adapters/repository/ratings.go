package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/okian/hackbite/internal/domain/matching"
	"github.com/okian/hackbite/internal/domain/model"
)

const (
	resumeExcerptRunes = 300
	skillLookupBatch   = 500
)

// SaveRating upserts the rating row of r.UserID.
func (s *Store) SaveRating(ctx context.Context, r model.Rating) (model.Rating, error) {
	const op = "repository.save_rating"
	defer observe("save_rating")()

	now := s.stamp()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_ratings (user_id, github_link, resume_data, github_analysis, ai_ratings_json,
			git_score, resume_score, overall_score, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			github_link = excluded.github_link,
			resume_data = excluded.resume_data,
			github_analysis = excluded.github_analysis,
			ai_ratings_json = excluded.ai_ratings_json,
			git_score = excluded.git_score,
			resume_score = excluded.resume_score,
			overall_score = excluded.overall_score,
			updated_at = excluded.updated_at`,
		r.UserID, r.GithubLink, r.ResumeText, r.GithubAnalysis, r.AIRatingsJSON,
		r.Scores.Git, r.Scores.Resume, r.Scores.Overall, now, now)
	if err != nil {
		return model.Rating{}, fmt.Errorf("%s: %w", op, err)
	}
	return s.LatestRating(ctx, r.UserID)
}

// LatestRating returns the rating of a user.
func (s *Store) LatestRating(ctx context.Context, userID int64) (model.Rating, error) {
	defer observe("latest_rating")()
	r, err := scanRating(s.db.QueryRowContext(ctx, ratingSelect+` WHERE user_id = ?`, userID))
	if isNoRows(err) {
		return model.Rating{}, fmt.Errorf("repository.latest_rating: %w", model.ErrNotFound)
	}
	if err != nil {
		return model.Rating{}, fmt.Errorf("repository.latest_rating: %w", err)
	}
	return r, nil
}

// LatestOverallRating returns the most recently written rating of any user.
func (s *Store) LatestOverallRating(ctx context.Context) (model.Rating, error) {
	defer observe("latest_overall_rating")()
	r, err := scanRating(s.db.QueryRowContext(ctx, ratingSelect+` ORDER BY updated_at DESC, uid DESC LIMIT 1`))
	if isNoRows(err) {
		return model.Rating{}, fmt.Errorf("repository.latest_overall_rating: %w", model.ErrNotFound)
	}
	if err != nil {
		return model.Rating{}, fmt.Errorf("repository.latest_overall_rating: %w", err)
	}
	return r, nil
}

// CreateJob inserts a rating job.
func (s *Store) CreateJob(ctx context.Context, job model.RatingJob) error {
	defer observe("create_job")()
	git, resume, overall := jobScores(job.Scores)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rating_jobs (job_id, user_id, github, status, error, git_score, resume_score, overall_score,
			created_at, updated_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.UserID, job.GithubLink, job.Status, job.Error, git, resume, overall,
		job.CreatedAt.UTC().Format(timeLayout), job.UpdatedAt.UTC().Format(timeLayout), completedAt(job))
	if isUniqueViolation(err) {
		return fmt.Errorf("repository.create_job: %w", model.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("repository.create_job: %w", err)
	}
	return nil
}

// UpdateJob stores the state of an existing job.
func (s *Store) UpdateJob(ctx context.Context, job model.RatingJob) error {
	defer observe("update_job")()
	git, resume, overall := jobScores(job.Scores)
	res, err := s.db.ExecContext(ctx, `
		UPDATE rating_jobs SET status = ?, error = ?, git_score = ?, resume_score = ?, overall_score = ?,
			updated_at = ?, completed_at = ?
		WHERE job_id = ?`,
		job.Status, job.Error, git, resume, overall,
		job.UpdatedAt.UTC().Format(timeLayout), completedAt(job), job.ID)
	if err != nil {
		return fmt.Errorf("repository.update_job: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("repository.update_job: %w", model.ErrNotFound)
	}
	return nil
}

// GetJob returns a rating job.
func (s *Store) GetJob(ctx context.Context, id string) (model.RatingJob, error) {
	const op = "repository.get_job"
	defer observe("get_job")()

	var (
		job                  model.RatingJob
		status               string
		git, resume, overall sql.NullInt64
		created, updated     string
		completed            sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT job_id, user_id, github, status, error, git_score, resume_score, overall_score,
			created_at, updated_at, completed_at
		FROM rating_jobs WHERE job_id = ?`, id).
		Scan(&job.ID, &job.UserID, &job.GithubLink, &status, &job.Error, &git, &resume, &overall,
			&created, &updated, &completed)
	if isNoRows(err) {
		return model.RatingJob{}, fmt.Errorf("%s: %w", op, model.ErrNotFound)
	}
	if err != nil {
		return model.RatingJob{}, fmt.Errorf("%s: %w", op, err)
	}
	job.Status = model.JobStatus(status)
	if git.Valid && resume.Valid && overall.Valid {
		job.Scores = &model.Scores{Git: int(git.Int64), Resume: int(resume.Int64), Overall: int(overall.Int64)}
	}
	job.CreatedAt, job.UpdatedAt = parseTime(created), parseTime(updated)
	if completed.Valid {
		t := parseTime(completed.String)
		job.CompletedAt = &t
	}
	return job, nil
}

// Leader returns the rating snapshot the matcher centres its window on.
func (s *Store) Leader(ctx context.Context, userID int64) (matching.Leader, error) {
	defer observe("leader")()

	var overall sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT overall_score FROM user_ratings WHERE user_id = ?`, userID).Scan(&overall)
	if isNoRows(err) {
		return matching.Leader{}, fmt.Errorf("repository.leader: %w", matching.ErrNotFound)
	}
	if err != nil {
		return matching.Leader{}, fmt.Errorf("repository.leader: %w", err)
	}
	l := matching.Leader{UserID: userID}
	if overall.Valid {
		v := int(overall.Int64)
		l.OverallScore = &v
	}
	skills, err := s.skillNames(ctx, []int64{userID})
	if err != nil {
		return matching.Leader{}, fmt.Errorf("repository.leader: %w", err)
	}
	l.Skills = skills[userID]
	return l, nil
}

// CandidatesInRange returns active rated users other than excludeID whose
// overall score lies in [minScore, maxScore].
func (s *Store) CandidatesInRange(ctx context.Context, minScore, maxScore int, excludeID int64) ([]matching.Record, error) {
	const op = "repository.candidates_in_range"
	defer observe("candidates_in_range")()

	rows, err := s.db.QueryContext(ctx, `
		SELECT u.user_id, u.name, u.email, u.bio, u.location, u.experience,
			r.overall_score, r.git_score, r.resume_score, r.github_link, r.resume_data
		FROM users u JOIN user_ratings r ON r.user_id = u.user_id
		WHERE u.is_active = 1 AND u.user_id != ? AND r.overall_score BETWEEN ? AND ?
		ORDER BY u.user_id`, excludeID, minScore, maxScore)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var (
		out []matching.Record
		ids []int64
	)
	for rows.Next() {
		var (
			rec                  matching.Record
			overall, git, resume sql.NullInt64
			resumeText           string
		)
		if err := rows.Scan(&rec.UserID, &rec.Name, &rec.Email, &rec.Bio, &rec.Location, &rec.Experience,
			&overall, &git, &resume, &rec.GithubLink, &resumeText); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		rec.OverallScore, rec.GithubScore, rec.ResumeScore = intPtr(overall), intPtr(git), intPtr(resume)
		rec.ResumeExcerpt = excerpt(resumeText, resumeExcerptRunes)
		out = append(out, rec)
		ids = append(ids, rec.UserID)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	_ = rows.Close()

	skills, err := s.skillNames(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for i := range out {
		out[i].Skills = skills[out[i].UserID]
	}
	return out, nil
}

// skillNames returns the declared skills of each user in insertion order.
// Ids are looked up in batches to stay under SQLite's bound-variable limit.
func (s *Store) skillNames(ctx context.Context, ids []int64) (map[int64][]string, error) {
	out := make(map[int64][]string, len(ids))
	for start := 0; start < len(ids); start += skillLookupBatch {
		batch := ids[start:min(start+skillLookupBatch, len(ids))]
		if err := s.collectSkills(ctx, batch, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) collectSkills(ctx context.Context, ids []int64, out map[int64][]string) error {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, skill_name FROM user_skills
		WHERE user_id IN (`+placeholders(len(ids))+`)
		ORDER BY user_id, rowid`, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return err
		}
		out[id] = append(out[id], name)
	}
	return rows.Err()
}

const ratingSelect = `
	SELECT uid, user_id, github_link, resume_data, github_analysis, ai_ratings_json,
		git_score, resume_score, overall_score, created_at, updated_at
	FROM user_ratings`

func scanRating(row scanner) (model.Rating, error) {
	var (
		r                model.Rating
		created, updated string
	)
	err := row.Scan(&r.ID, &r.UserID, &r.GithubLink, &r.ResumeText, &r.GithubAnalysis, &r.AIRatingsJSON,
		&r.Scores.Git, &r.Scores.Resume, &r.Scores.Overall, &created, &updated)
	if err != nil {
		return model.Rating{}, err
	}
	r.CreatedAt, r.UpdatedAt = parseTime(created), parseTime(updated)
	return r, nil
}

func jobScores(sc *model.Scores) (git, resume, overall any) {
	if sc == nil {
		return nil, nil, nil
	}
	return sc.Git, sc.Resume, sc.Overall
}

func completedAt(job model.RatingJob) any {
	if job.CompletedAt == nil {
		return nil
	}
	return job.CompletedAt.UTC().Format(timeLayout)
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func excerpt(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
