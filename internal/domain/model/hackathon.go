package model

import "time"

// Hackathon is an event teams can form for.
type Hackathon struct {
	ID                   int64     `json:"hackathon_id"`
	Name                 string    `json:"name"`
	Description          string    `json:"description"`
	Theme                string    `json:"theme"`
	Status               string    `json:"status"`
	Location             string    `json:"location,omitempty"`
	StartDate            string    `json:"start_date"`
	EndDate              string    `json:"end_date"`
	RegistrationDeadline string    `json:"registration_deadline"`
	MaxTeamSize          int       `json:"max_team_size"`
	Prizes               []Prize   `json:"prizes"`
	CreatedAt            time.Time `json:"created_at"`
}

// Prize is one award of a hackathon.
type Prize struct {
	Place  string `json:"place"`
	Reward string `json:"reward"`
}

// Hackathon states used by listings.
const (
	HackathonUpcoming  = "upcoming"
	HackathonActive    = "active"
	HackathonCompleted = "completed"
)

// Team request states.
const (
	RequestPending = "pending"
)

// TeamRequest is a user's request to be matched into a team for a hackathon.
type TeamRequest struct {
	ID            int64     `json:"request_id"`
	HackathonID   int64     `json:"hackathon_id"`
	HackathonName string    `json:"hackathon_name,omitempty"`
	UserEmail     string    `json:"user_email"`
	Message       string    `json:"message"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TeamRequestFilter narrows a request listing. Zero values do not filter.
type TeamRequestFilter struct {
	HackathonID int64
	Status      string
	Email       string
}
