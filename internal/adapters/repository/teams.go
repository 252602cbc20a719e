package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/okian/hackbite/internal/domain/model"
)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const teamSelect = `
	SELECT t.team_id, t.team_name, t.description, t.leader_id, COALESCE(u.name, ''),
		t.hackathon_id, COALESCE(h.name, ''), t.max_members, t.current_members, t.status,
		t.project_idea, t.application_deadline, t.created_at, t.updated_at
	FROM teams t
	LEFT JOIN users u ON u.user_id = t.leader_id
	LEFT JOIN hackathons h ON h.hackathon_id = t.hackathon_id`

// HackathonExists reports whether a hackathon has id.
func (s *Store) HackathonExists(ctx context.Context, id int64) (bool, error) {
	defer observe("hackathon_exists")()
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM hackathons WHERE hackathon_id = ?`, id).Scan(&n); err != nil {
		return false, fmt.Errorf("repository.hackathon_exists: %w", err)
	}
	return n > 0, nil
}

// TeamByLeader returns the newest team leaderID leads for hackathonID.
func (s *Store) TeamByLeader(ctx context.Context, hackathonID, leaderID int64) (model.Team, error) {
	const op = "repository.team_by_leader"
	defer observe("team_by_leader")()

	row := s.db.QueryRowContext(ctx, teamSelect+`
		WHERE t.hackathon_id = ? AND t.leader_id = ?
		ORDER BY t.created_at DESC, t.team_id DESC LIMIT 1`, hackathonID, leaderID)
	t, err := scanTeam(row)
	if isNoRows(err) {
		return model.Team{}, fmt.Errorf("%s: %w", op, model.ErrNotFound)
	}
	if err != nil {
		return model.Team{}, fmt.Errorf("%s: %w", op, err)
	}
	if t.TechStack, err = techStack(ctx, s.db, t.ID); err != nil {
		return model.Team{}, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

// CreateTeam inserts a forming team with its leader as the first member.
func (s *Store) CreateTeam(ctx context.Context, nt model.NewTeam) (model.Team, error) {
	const op = "repository.create_team"
	defer observe("create_team")()

	now := s.stamp()
	var id int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var hackathon any
		if nt.HackathonID != nil {
			hackathon = *nt.HackathonID
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO teams (team_name, description, leader_id, hackathon_id, max_members, current_members,
				status, project_idea, application_deadline, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, 1, ?, ?, ?, ?, ?)`,
			nt.Name, nt.Description, nt.LeaderID, hackathon, nt.MaxMembers, model.TeamForming,
			nt.ProjectIdea, nt.ApplicationDeadline, now, now)
		if err != nil {
			return err
		}
		if id, err = res.LastInsertId(); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO team_members (team_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)`,
			id, nt.LeaderID, model.RoleLeader, now); err != nil {
			return err
		}
		return replaceTechStack(ctx, tx, id, nt.TechStack)
	})
	if err != nil {
		return model.Team{}, fmt.Errorf("%s: %w", op, err)
	}
	return s.GetTeam(ctx, id, true)
}

// ListTeams returns teams in status, newest first.
func (s *Store) ListTeams(ctx context.Context, status model.TeamStatus, includeMembers bool) ([]model.Team, error) {
	defer observe("list_teams")()
	teams, err := s.queryTeams(ctx, teamSelect+`
		WHERE t.status = ? ORDER BY t.created_at DESC, t.team_id DESC`, []any{status}, includeMembers)
	if err != nil {
		return nil, fmt.Errorf("repository.list_teams: %w", err)
	}
	return teams, nil
}

// GetTeam returns one team.
func (s *Store) GetTeam(ctx context.Context, id int64, includeMembers bool) (model.Team, error) {
	defer observe("get_team")()
	t, err := loadTeam(ctx, s.db, id, includeMembers)
	if err != nil {
		return model.Team{}, fmt.Errorf("repository.get_team: %w", err)
	}
	return t, nil
}

// SearchTeams filters teams by text, tech stack and size.
func (s *Store) SearchTeams(ctx context.Context, q model.TeamSearch) ([]model.Team, error) {
	defer observe("search_teams")()

	where := []string{"t.status = ?"}
	args := []any{q.Status}
	if q.Query != "" {
		like := "%" + strings.ToLower(q.Query) + "%"
		where = append(where, "(LOWER(t.team_name) LIKE ? OR LOWER(t.description) LIKE ?)")
		args = append(args, like, like)
	}
	if len(q.Tech) > 0 {
		where = append(where, `EXISTS (SELECT 1 FROM team_tech_stack ts
			WHERE ts.team_id = t.team_id AND LOWER(ts.tech) IN (`+placeholders(len(q.Tech))+`))`)
		for _, tech := range q.Tech {
			args = append(args, strings.ToLower(tech))
		}
	}
	if q.MinMembers != nil && q.MaxMembers != nil {
		where = append(where, "t.max_members BETWEEN ? AND ?")
		args = append(args, *q.MinMembers, *q.MaxMembers)
	}

	teams, err := s.queryTeams(ctx, teamSelect+" WHERE "+strings.Join(where, " AND ")+
		" ORDER BY t.created_at DESC, t.team_id DESC", args, false)
	if err != nil {
		return nil, fmt.Errorf("repository.search_teams: %w", err)
	}
	return teams, nil
}

// JoinTeam adds userID as a member once decide accepts the join.
func (s *Store) JoinTeam(ctx context.Context, teamID, userID int64, decide func(model.Team) (model.TeamStatus, error)) (model.Team, error) {
	const op = "repository.join_team"
	defer observe("join_team")()

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		t, err := loadTeam(ctx, tx, teamID, true)
		if err != nil {
			return err
		}
		status, err := decide(t)
		if err != nil {
			return err
		}
		now := s.stamp()
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO team_members (team_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)`,
			teamID, userID, model.RoleMember, now); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE teams SET current_members = current_members + 1, status = ?, updated_at = ?
			WHERE team_id = ?`, status, now, teamID)
		return err
	})
	if err != nil {
		return model.Team{}, fmt.Errorf("%s: %w", op, err)
	}
	return s.GetTeam(ctx, teamID, true)
}

// LeaveTeam removes userID once decide accepts the departure.
func (s *Store) LeaveTeam(ctx context.Context, teamID, userID int64, decide func(model.Team) (model.TeamStatus, error)) (model.Team, error) {
	const op = "repository.leave_team"
	defer observe("leave_team")()

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		t, err := loadTeam(ctx, tx, teamID, true)
		if err != nil {
			return err
		}
		status, err := decide(t)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM team_members WHERE team_id = ? AND user_id = ?`,
			teamID, userID); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE teams SET current_members = MAX(current_members - 1, 0), status = ?, updated_at = ?
			WHERE team_id = ?`, status, s.stamp(), teamID)
		return err
	})
	if err != nil {
		return model.Team{}, fmt.Errorf("%s: %w", op, err)
	}
	return s.GetTeam(ctx, teamID, true)
}

// UpdateTeam stores the team returned by apply.
func (s *Store) UpdateTeam(ctx context.Context, teamID int64, apply func(model.Team) (model.Team, error)) (model.Team, error) {
	const op = "repository.update_team"
	defer observe("update_team")()

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		t, err := loadTeam(ctx, tx, teamID, true)
		if err != nil {
			return err
		}
		next, err := apply(t)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE teams SET team_name = ?, description = ?, max_members = ?, project_idea = ?,
				application_deadline = ?, status = ?, updated_at = ?
			WHERE team_id = ?`,
			next.Name, next.Description, next.MaxMembers, next.ProjectIdea,
			next.ApplicationDeadline, next.Status, s.stamp(), teamID); err != nil {
			return err
		}
		return replaceTechStack(ctx, tx, teamID, next.TechStack)
	})
	if err != nil {
		return model.Team{}, fmt.Errorf("%s: %w", op, err)
	}
	return s.GetTeam(ctx, teamID, true)
}

// CreateTeamRequest inserts a pending request; a second request for the same
// hackathon and email is a conflict.
func (s *Store) CreateTeamRequest(ctx context.Context, r model.TeamRequest) (model.TeamRequest, error) {
	const op = "repository.create_team_request"
	defer observe("create_team_request")()

	now := s.stamp()
	if r.Status == "" {
		r.Status = model.RequestPending
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO team_requests (hackathon_id, user_email, message, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`, r.HackathonID, r.UserEmail, r.Message, r.Status, now, now)
	if isUniqueViolation(err) {
		return model.TeamRequest{}, fmt.Errorf("%s: %w", op, model.ErrConflict)
	}
	if err != nil {
		return model.TeamRequest{}, fmt.Errorf("%s: %w", op, err)
	}
	return s.TeamRequestFor(ctx, r.HackathonID, r.UserEmail)
}

// TeamRequestFor returns the request email made for hackathonID.
func (s *Store) TeamRequestFor(ctx context.Context, hackathonID int64, email string) (model.TeamRequest, error) {
	const op = "repository.team_request_for"
	defer observe("team_request_for")()

	out, err := s.queryRequests(ctx, model.TeamRequestFilter{HackathonID: hackathonID, Email: email})
	if err != nil {
		return model.TeamRequest{}, fmt.Errorf("%s: %w", op, err)
	}
	if len(out) == 0 {
		return model.TeamRequest{}, fmt.Errorf("%s: %w", op, model.ErrNotFound)
	}
	return out[0], nil
}

// ListTeamRequests returns requests matching f, newest first.
func (s *Store) ListTeamRequests(ctx context.Context, f model.TeamRequestFilter) ([]model.TeamRequest, error) {
	defer observe("list_team_requests")()
	out, err := s.queryRequests(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("repository.list_team_requests: %w", err)
	}
	return out, nil
}

func (s *Store) queryRequests(ctx context.Context, f model.TeamRequestFilter) ([]model.TeamRequest, error) {
	query := `
		SELECT r.request_id, r.hackathon_id, COALESCE(h.name, ''), r.user_email, r.message, r.status,
			r.created_at, r.updated_at
		FROM team_requests r LEFT JOIN hackathons h ON h.hackathon_id = r.hackathon_id
		WHERE 1 = 1`
	var args []any
	if f.HackathonID > 0 {
		query += " AND r.hackathon_id = ?"
		args = append(args, f.HackathonID)
	}
	if f.Status != "" {
		query += " AND r.status = ?"
		args = append(args, f.Status)
	}
	if f.Email != "" {
		query += " AND r.user_email = ?"
		args = append(args, f.Email)
	}
	query += " ORDER BY r.created_at DESC, r.request_id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.TeamRequest{}
	for rows.Next() {
		var (
			r                model.TeamRequest
			created, updated string
		)
		if err := rows.Scan(&r.ID, &r.HackathonID, &r.HackathonName, &r.UserEmail, &r.Message, &r.Status,
			&created, &updated); err != nil {
			return nil, err
		}
		r.CreatedAt, r.UpdatedAt = parseTime(created), parseTime(updated)
		out = append(out, r)
	}
	return out, rows.Err()
}

// queryTeams runs a teamSelect query and fills tech stacks and, optionally, members.
func (s *Store) queryTeams(ctx context.Context, query string, args []any, includeMembers bool) ([]model.Team, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	teams := []model.Team{}
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	for i := range teams {
		if teams[i].TechStack, err = techStack(ctx, s.db, teams[i].ID); err != nil {
			return nil, err
		}
		if includeMembers {
			if teams[i].Members, err = members(ctx, s.db, teams[i].ID); err != nil {
				return nil, err
			}
		}
	}
	return teams, nil
}

func loadTeam(ctx context.Context, q querier, id int64, includeMembers bool) (model.Team, error) {
	t, err := scanTeam(q.QueryRowContext(ctx, teamSelect+` WHERE t.team_id = ?`, id))
	if isNoRows(err) {
		return model.Team{}, model.ErrNotFound
	}
	if err != nil {
		return model.Team{}, err
	}
	if t.TechStack, err = techStack(ctx, q, id); err != nil {
		return model.Team{}, err
	}
	if includeMembers {
		if t.Members, err = members(ctx, q, id); err != nil {
			return model.Team{}, err
		}
	}
	return t, nil
}

func scanTeam(row scanner) (model.Team, error) {
	var (
		t                model.Team
		hackathon        sql.NullInt64
		status           string
		created, updated string
	)
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.LeaderID, &t.LeaderName, &hackathon, &t.HackathonName,
		&t.MaxMembers, &t.CurrentMembers, &status, &t.ProjectIdea, &t.ApplicationDeadline, &created, &updated)
	if err != nil {
		return model.Team{}, err
	}
	if hackathon.Valid {
		id := hackathon.Int64
		t.HackathonID = &id
	}
	t.Status = model.TeamStatus(status)
	t.CreatedAt, t.UpdatedAt = parseTime(created), parseTime(updated)
	return t, nil
}

func techStack(ctx context.Context, q querier, teamID int64) ([]string, error) {
	rows, err := q.QueryContext(ctx, `SELECT tech FROM team_tech_stack WHERE team_id = ? ORDER BY position`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var tech string
		if err := rows.Scan(&tech); err != nil {
			return nil, err
		}
		out = append(out, tech)
	}
	return out, rows.Err()
}

func members(ctx context.Context, q querier, teamID int64) ([]model.TeamMember, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT m.user_id, COALESCE(u.name, ''), COALESCE(u.email, ''), m.role, m.joined_at
		FROM team_members m LEFT JOIN users u ON u.user_id = m.user_id
		WHERE m.team_id = ?
		ORDER BY CASE m.role WHEN 'leader' THEN 0 ELSE 1 END, m.joined_at, m.user_id`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.TeamMember{}
	for rows.Next() {
		var (
			m      model.TeamMember
			joined string
		)
		if err := rows.Scan(&m.UserID, &m.Name, &m.Email, &m.Role, &joined); err != nil {
			return nil, err
		}
		m.JoinedAt = parseTime(joined)
		out = append(out, m)
	}
	return out, rows.Err()
}

func replaceTechStack(ctx context.Context, tx *sql.Tx, teamID int64, stack []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM team_tech_stack WHERE team_id = ?`, teamID); err != nil {
		return err
	}
	for i, tech := range stack {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO team_tech_stack (team_id, position, tech) VALUES (?, ?, ?)`, teamID, i, tech); err != nil {
			return err
		}
	}
	return nil
}
