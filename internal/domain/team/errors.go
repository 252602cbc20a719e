package team

import (
	"errors"
	"fmt"
)

var (
	ErrMissingFields      = errors.New("team name, description and leader id are required")
	ErrInvalidSize        = errors.New("max members out of range")
	ErrTeamNotFound       = errors.New("team not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrHackathonNotFound  = errors.New("hackathon not found")
	ErrTeamExists         = errors.New("leader already has a team for this hackathon")
	ErrNotForming         = errors.New("team is not accepting members")
	ErrAlreadyMember      = errors.New("user is already a member of this team")
	ErrTeamFull           = errors.New("team is full")
	ErrLeaderCannotLeave  = errors.New("team leader cannot leave the team")
	ErrNotMember          = errors.New("user is not a member of this team")
	ErrNotLeader          = errors.New("only the team leader can update the team")
	ErrInvalidStatus      = errors.New("invalid team status")
	ErrBelowMembers       = errors.New("max members cannot be below current member count")
	ErrNoChanges          = errors.New("no fields to update")
	ErrMissingRequest     = errors.New("hackathon id, user email and message are required")
	ErrRequestExists      = errors.New("team request already exists for this hackathon")
	ErrMissingCheckFields = errors.New("hackathon id and leader id are required")
)

// ExistingTeamError reports the team a leader already leads for a hackathon.
type ExistingTeamError struct {
	TeamID   int64
	TeamName string
}

func (e *ExistingTeamError) Error() string {
	return fmt.Sprintf("already created team %q (id %d) for this hackathon", e.TeamName, e.TeamID)
}

// Unwrap lets errors.Is match ErrTeamExists.
func (e *ExistingTeamError) Unwrap() error { return ErrTeamExists }
