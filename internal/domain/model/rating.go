package model

import "time"

// AnonymousEmail identifies the shared account used for ratings submitted
// without a user id.
const AnonymousEmail = "anonymous@temp.com"

// Scores are the three rating dimensions, each in [0, 1000].
type Scores struct {
	Git     int `json:"git_score"`
	Resume  int `json:"resume_score"`
	Overall int `json:"overall_score"`
}

// Rating is the stored rating of a user.
type Rating struct {
	ID             int64     `json:"uid"`
	UserID         int64     `json:"user_id"`
	GithubLink     string    `json:"github_link"`
	ResumeText     string    `json:"-"`
	GithubAnalysis string    `json:"-"`
	AIRatingsJSON  string    `json:"-"`
	Scores         Scores    `json:"scores"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// JobStatus is the state of an asynchronous rating job.
type JobStatus string

// Rating job states.
const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Terminal reports whether the job will not change state again.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// RatingJob is a queued profile rating request.
type RatingJob struct {
	ID          string     `json:"job_id"`
	UserID      int64      `json:"user_id"`
	GithubLink  string     `json:"github"`
	Status      JobStatus  `json:"status"`
	Error       string     `json:"error,omitempty"`
	Scores      *Scores    `json:"scores,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Resume holds the raw PDF while the job is in flight.
	Resume []byte `json:"-"`
	// Digest identifies the submission for duplicate suppression.
	Digest string `json:"-"`
}
