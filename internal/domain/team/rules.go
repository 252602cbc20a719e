package team

import (
	"fmt"
	"strings"

	"github.com/okian/hackbite/internal/domain/model"
)

// Membership rules. Each returns the status the team moves to or the reason
// the change is refused. Stores call them inside the transaction that applies
// the change.

// DecideJoin admits userID into t.
func DecideJoin(t model.Team, userID int64) (model.TeamStatus, error) {
	if t.Status != model.TeamForming {
		return "", ErrNotForming
	}
	if isMember(t, userID) {
		return "", ErrAlreadyMember
	}
	if t.CurrentMembers >= t.MaxMembers {
		return "", ErrTeamFull
	}
	if t.CurrentMembers+1 >= t.MaxMembers {
		return model.TeamFull, nil
	}
	return model.TeamForming, nil
}

// DecideLeave removes userID from t.
func DecideLeave(t model.Team, userID int64) (model.TeamStatus, error) {
	if userID == t.LeaderID {
		return "", ErrLeaderCannotLeave
	}
	if !isMember(t, userID) {
		return "", ErrNotMember
	}
	if t.Status == model.TeamFull {
		return model.TeamForming, nil
	}
	return t.Status, nil
}

// ApplyUpdate returns t with upd applied when leaderID leads the team.
func ApplyUpdate(t model.Team, leaderID int64, upd model.TeamUpdate) (model.Team, error) {
	if t.LeaderID != leaderID {
		return model.Team{}, ErrNotLeader
	}
	if upd.Empty() {
		return model.Team{}, ErrNoChanges
	}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return model.Team{}, fmt.Errorf("%w: team name", ErrMissingFields)
		}
		t.Name = name
	}
	if upd.Description != nil {
		t.Description = strings.TrimSpace(*upd.Description)
	}
	if upd.MaxMembers != nil {
		if err := validateSize(*upd.MaxMembers); err != nil {
			return model.Team{}, err
		}
		if *upd.MaxMembers < t.CurrentMembers {
			return model.Team{}, ErrBelowMembers
		}
		t.MaxMembers = *upd.MaxMembers
	}
	if upd.TechStack != nil {
		t.TechStack = cleanList(*upd.TechStack)
	}
	if upd.ProjectIdea != nil {
		t.ProjectIdea = strings.TrimSpace(*upd.ProjectIdea)
	}
	if upd.ApplicationDeadline != nil {
		t.ApplicationDeadline = strings.TrimSpace(*upd.ApplicationDeadline)
	}
	if upd.Status != nil {
		if !upd.Status.Valid() {
			return model.Team{}, fmt.Errorf("%w: %q", ErrInvalidStatus, *upd.Status)
		}
		t.Status = *upd.Status
	}
	return t, nil
}

func isMember(t model.Team, userID int64) bool {
	for _, m := range t.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

func validateSize(n int) error {
	if n < model.MinTeamSize || n > model.MaxTeamSize {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidSize, n, model.MinTeamSize, model.MaxTeamSize)
	}
	return nil
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
