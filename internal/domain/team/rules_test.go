package team_test

import (
	"errors"
	"testing"

	"github.com/okian/hackbite/internal/domain/model"
	"github.com/okian/hackbite/internal/domain/team"
	. "github.com/smartystreets/goconvey/convey"
)

func forming(maxMembers int, members ...int64) model.Team {
	t := model.Team{ID: 1, LeaderID: members[0], MaxMembers: maxMembers, Status: model.TeamForming}
	for i, id := range members {
		role := model.RoleMember
		if i == 0 {
			role = model.RoleLeader
		}
		t.Members = append(t.Members, model.TeamMember{UserID: id, Role: role})
	}
	t.CurrentMembers = len(members)
	return t
}

func TestDecideJoin(t *testing.T) {
	Convey("Given a forming team with room for two more", t, func() {
		tm := forming(4, 10, 11)

		Convey("When a new user joins", func() {
			status, err := team.DecideJoin(tm, 12)
			So(err, ShouldBeNil)
			So(status, ShouldEqual, model.TeamForming)
		})

		Convey("When an existing member joins again", func() {
			_, err := team.DecideJoin(tm, 11)
			So(errors.Is(err, team.ErrAlreadyMember), ShouldBeTrue)
		})
	})

	Convey("Given a team one seat short of capacity", t, func() {
		tm := forming(3, 10, 11)

		Convey("Then the last join fills it", func() {
			status, err := team.DecideJoin(tm, 12)
			So(err, ShouldBeNil)
			So(status, ShouldEqual, model.TeamFull)
		})
	})

	Convey("Given a team at capacity that is still forming", t, func() {
		tm := forming(2, 10, 11)

		Convey("Then joining is refused", func() {
			_, err := team.DecideJoin(tm, 12)
			So(errors.Is(err, team.ErrTeamFull), ShouldBeTrue)
		})
	})

	Convey("Given a closed team", t, func() {
		tm := forming(4, 10)
		tm.Status = model.TeamClosed

		Convey("Then joining is refused", func() {
			_, err := team.DecideJoin(tm, 12)
			So(errors.Is(err, team.ErrNotForming), ShouldBeTrue)
		})
	})
}

func TestDecideLeave(t *testing.T) {
	Convey("Given a full team", t, func() {
		tm := forming(2, 10, 11)
		tm.Status = model.TeamFull

		Convey("When a member leaves", func() {
			status, err := team.DecideLeave(tm, 11)

			Convey("Then the team is forming again", func() {
				So(err, ShouldBeNil)
				So(status, ShouldEqual, model.TeamForming)
			})
		})

		Convey("When the leader leaves", func() {
			_, err := team.DecideLeave(tm, 10)
			So(errors.Is(err, team.ErrLeaderCannotLeave), ShouldBeTrue)
		})

		Convey("When a stranger leaves", func() {
			_, err := team.DecideLeave(tm, 99)
			So(errors.Is(err, team.ErrNotMember), ShouldBeTrue)
		})
	})

	Convey("Given an active team", t, func() {
		tm := forming(4, 10, 11)
		tm.Status = model.TeamActive

		Convey("Then leaving keeps the status", func() {
			status, err := team.DecideLeave(tm, 11)
			So(err, ShouldBeNil)
			So(status, ShouldEqual, model.TeamActive)
		})
	})
}

func TestApplyUpdate(t *testing.T) {
	str := func(s string) *string { return &s }
	num := func(n int) *int { return &n }

	Convey("Given a team of three", t, func() {
		tm := forming(4, 10, 11, 12)

		Convey("When the leader renames it and trims the stack", func() {
			stack := []string{" Go ", "Go", "", "React"}
			out, err := team.ApplyUpdate(tm, 10, model.TeamUpdate{Name: str(" New "), TechStack: &stack})
			So(err, ShouldBeNil)
			So(out.Name, ShouldEqual, "New")
			So(out.TechStack, ShouldResemble, []string{"Go", "React"})
		})

		Convey("When someone else updates it", func() {
			_, err := team.ApplyUpdate(tm, 11, model.TeamUpdate{Name: str("x")})
			So(errors.Is(err, team.ErrNotLeader), ShouldBeTrue)
		})

		Convey("When max members drops below the member count", func() {
			_, err := team.ApplyUpdate(tm, 10, model.TeamUpdate{MaxMembers: num(2)})
			So(errors.Is(err, team.ErrBelowMembers), ShouldBeTrue)
		})

		Convey("When max members is out of range", func() {
			_, err := team.ApplyUpdate(tm, 10, model.TeamUpdate{MaxMembers: num(11)})
			So(errors.Is(err, team.ErrInvalidSize), ShouldBeTrue)
		})

		Convey("When the status is unknown", func() {
			bad := model.TeamStatus("archived")
			_, err := team.ApplyUpdate(tm, 10, model.TeamUpdate{Status: &bad})
			So(errors.Is(err, team.ErrInvalidStatus), ShouldBeTrue)
		})

		Convey("When nothing changes", func() {
			_, err := team.ApplyUpdate(tm, 10, model.TeamUpdate{})
			So(errors.Is(err, team.ErrNoChanges), ShouldBeTrue)
		})
	})
}

func TestExistingTeamError(t *testing.T) {
	Convey("Given an existing team error", t, func() {
		err := error(&team.ExistingTeamError{TeamID: 7, TeamName: "Rockets"})

		Convey("Then it matches ErrTeamExists and exposes the id", func() {
			So(errors.Is(err, team.ErrTeamExists), ShouldBeTrue)
			var ete *team.ExistingTeamError
			So(errors.As(err, &ete), ShouldBeTrue)
			So(ete.TeamID, ShouldEqual, 7)
		})
	})
}
