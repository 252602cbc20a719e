package model

import "time"

// TeamStatus is the lifecycle state of a team.
type TeamStatus string

// Team states.
const (
	TeamForming TeamStatus = "forming"
	TeamFull    TeamStatus = "full"
	TeamActive  TeamStatus = "active"
	TeamClosed  TeamStatus = "closed"
)

// Valid reports whether s is a known state.
func (s TeamStatus) Valid() bool {
	switch s {
	case TeamForming, TeamFull, TeamActive, TeamClosed:
		return true
	}
	return false
}

// Team member roles.
const (
	RoleLeader = "leader"
	RoleMember = "member"
)

// Team size bounds.
const (
	DefaultMaxMembers = 4
	MinTeamSize       = 2
	MaxTeamSize       = 10
)

// Team is a group formed around a project, optionally for a hackathon.
type Team struct {
	ID                  int64        `json:"team_id"`
	Name                string       `json:"team_name"`
	Description         string       `json:"description"`
	LeaderID            int64        `json:"leader_id"`
	LeaderName          string       `json:"leader_name,omitempty"`
	HackathonID         *int64       `json:"hackathon_id,omitempty"`
	HackathonName       string       `json:"hackathon_name,omitempty"`
	MaxMembers          int          `json:"max_members"`
	CurrentMembers      int          `json:"current_members"`
	Status              TeamStatus   `json:"status"`
	TechStack           []string     `json:"tech_stack"`
	ProjectIdea         string       `json:"project_idea,omitempty"`
	ApplicationDeadline string       `json:"application_deadline,omitempty"`
	CreatedAt           time.Time    `json:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at"`
	Members             []TeamMember `json:"members,omitempty"`
}

// TeamMember is a user's membership in a team.
type TeamMember struct {
	UserID   int64     `json:"user_id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// NewTeam is the input for creating a team.
type NewTeam struct {
	Name                string   `json:"team_name"`
	Description         string   `json:"description"`
	LeaderID            int64    `json:"leader_id"`
	MaxMembers          int      `json:"max_members"`
	TechStack           []string `json:"tech_stack"`
	ProjectIdea         string   `json:"project_idea"`
	ApplicationDeadline string   `json:"application_deadline"`
	HackathonID         *int64   `json:"hackathon_id"`
}

// TeamUpdate lists the fields a leader may change. Nil fields are left as is.
type TeamUpdate struct {
	Name                *string     `json:"team_name"`
	Description         *string     `json:"description"`
	MaxMembers          *int        `json:"max_members"`
	TechStack           *[]string   `json:"tech_stack"`
	ProjectIdea         *string     `json:"project_idea"`
	ApplicationDeadline *string     `json:"application_deadline"`
	Status              *TeamStatus `json:"status"`
}

// Empty reports whether the update changes nothing.
func (u TeamUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil && u.MaxMembers == nil && u.TechStack == nil &&
		u.ProjectIdea == nil && u.ApplicationDeadline == nil && u.Status == nil
}

// TeamSearch filters teams. Zero values do not filter.
type TeamSearch struct {
	Query      string
	Tech       []string
	MinMembers *int
	MaxMembers *int
	Status     TeamStatus
}

// ExistingTeam is the team a leader already leads for a hackathon.
type ExistingTeam struct {
	Exists bool  `json:"exists"`
	Team   *Team `json:"team,omitempty"`
}
