package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/okian/hackbite/internal/domain/model"
	"github.com/okian/hackbite/pkg/logger"
)

const anonymousName = "Anonymous User"

// EmailExists reports whether an account uses email.
func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	defer observe("email_exists")()
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE email = ?`, email).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("repository.email_exists: %w", err)
	}
	return n > 0, nil
}

// UserExists reports whether an active user has id.
func (s *Store) UserExists(ctx context.Context, id int64) (bool, error) {
	defer observe("user_exists")()
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE user_id = ? AND is_active = 1`, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("repository.user_exists: %w", err)
	}
	return n > 0, nil
}

// CreateUser inserts a user with profile and skills.
func (s *Store) CreateUser(ctx context.Context, reg model.Registration, passwordHash, proficiency string) (model.User, error) {
	const op = "repository.create_user"
	defer observe("create_user")()

	now := s.stamp()
	var id int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO users (name, email, password_hash, profile_logo, location, experience, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			reg.Name, reg.Email, passwordHash, reg.ProfileLogo, reg.Location, reg.Experience, now, now)
		if err != nil {
			return err
		}
		if id, err = res.LastInsertId(); err != nil {
			return err
		}

		p := reg.Profile
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO user_profiles (user_id, github_username, linkedin_profile, portfolio_url, timezone,
				availability, communication_preference, team_role_preference, hackathon_experience,
				achievements, interests)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, p.GithubUsername, p.LinkedinProfile, p.PortfolioURL, p.Timezone,
			encodeList(p.Availability), p.CommunicationPreference, p.TeamRolePreference,
			p.HackathonExperience, encodeList(p.Achievements), encodeList(p.Interests)); err != nil {
			return err
		}

		for _, skill := range reg.Skills {
			if _, err := tx.ExecContext(ctx, `
				INSERT OR IGNORE INTO user_skills (user_id, skill_name, proficiency_level) VALUES (?, ?, ?)`,
				id, skill, proficiency); err != nil {
				return err
			}
		}
		return nil
	})
	if isUniqueViolation(err) {
		return model.User{}, fmt.Errorf("%s: %w", op, model.ErrConflict)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return s.GetUser(ctx, id, true)
}

// Credentials returns the user owning email and its password hash.
func (s *Store) Credentials(ctx context.Context, email string) (model.User, string, error) {
	const op = "repository.credentials"
	defer observe("credentials")()

	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, name, email, profile_logo, location, experience, bio, is_active,
			created_at, updated_at, password_hash
		FROM users WHERE email = ?`, email)
	var (
		u    model.User
		hash string
	)
	if err := scanUser(row, &u, &hash); err != nil {
		if isNoRows(err) {
			return model.User{}, "", fmt.Errorf("%s: %w", op, model.ErrNotFound)
		}
		return model.User{}, "", fmt.Errorf("%s: %w", op, err)
	}
	return u, hash, nil
}

// ListUsers returns active users, newest first.
func (s *Store) ListUsers(ctx context.Context, includeProfiles bool) ([]model.User, error) {
	const op = "repository.list_users"
	defer observe("list_users")()

	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, name, email, profile_logo, location, experience, bio, is_active, created_at, updated_at
		FROM users WHERE is_active = 1
		ORDER BY created_at DESC, user_id DESC`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := scanUser(rows, &u, nil); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if includeProfiles {
		for i := range users {
			p, err := s.profile(ctx, users[i].ID)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
			users[i].Profile = p
		}
	}
	return users, nil
}

// GetUser returns an active user with its profile and, optionally, skills.
func (s *Store) GetUser(ctx context.Context, id int64, includeSkills bool) (model.User, error) {
	const op = "repository.get_user"
	defer observe("get_user")()

	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, name, email, profile_logo, location, experience, bio, is_active, created_at, updated_at
		FROM users WHERE user_id = ? AND is_active = 1`, id)
	var u model.User
	if err := scanUser(row, &u, nil); err != nil {
		if isNoRows(err) {
			return model.User{}, fmt.Errorf("%s: %w", op, model.ErrNotFound)
		}
		return model.User{}, fmt.Errorf("%s: %w", op, err)
	}
	p, err := s.profile(ctx, id)
	if err != nil {
		return model.User{}, fmt.Errorf("%s: %w", op, err)
	}
	u.Profile = p
	if includeSkills {
		if u.Skills, err = s.userSkills(ctx, id); err != nil {
			return model.User{}, fmt.Errorf("%s: %w", op, err)
		}
	}
	return u, nil
}

// UpdateProfileLogo sets the avatar of an active user.
func (s *Store) UpdateProfileLogo(ctx context.Context, id int64, logo string) error {
	const op = "repository.update_profile_logo"
	defer observe("update_profile_logo")()

	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET profile_logo = ?, updated_at = ? WHERE user_id = ? AND is_active = 1`,
		logo, s.stamp(), id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, model.ErrNotFound)
	}
	return nil
}

// Statistics summarises registrations, skills and avatars.
func (s *Store) Statistics(ctx context.Context) (model.Statistics, error) {
	const op = "repository.statistics"
	defer observe("statistics")()

	now := s.now().UTC()
	week := now.Add(-7 * 24 * time.Hour).Format(timeLayout)
	month := now.Add(-30 * 24 * time.Hour).Format(timeLayout)

	st := model.Statistics{PopularSkills: []model.SkillCount{}, AvatarDistribution: []model.LogoCount{}}
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN created_at >= ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN created_at >= ? THEN 1 ELSE 0 END), 0)
		FROM users WHERE is_active = 1`, week, month).
		Scan(&st.TotalUsers, &st.WeeklyRegistrations, &st.MonthlyRegistrations)
	if err != nil {
		return model.Statistics{}, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT us.skill_name, COUNT(*) AS n
		FROM user_skills us JOIN users u ON u.user_id = us.user_id
		WHERE u.is_active = 1
		GROUP BY us.skill_name
		ORDER BY n DESC, us.skill_name
		LIMIT 10`)
	if err != nil {
		return model.Statistics{}, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	for rows.Next() {
		var c model.SkillCount
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return model.Statistics{}, fmt.Errorf("%s: %w", op, err)
		}
		st.PopularSkills = append(st.PopularSkills, c)
	}
	if err := rows.Err(); err != nil {
		return model.Statistics{}, fmt.Errorf("%s: %w", op, err)
	}

	logos, err := s.db.QueryContext(ctx, `
		SELECT profile_logo, COUNT(*) AS n FROM users WHERE is_active = 1
		GROUP BY profile_logo ORDER BY n DESC, profile_logo`)
	if err != nil {
		return model.Statistics{}, fmt.Errorf("%s: %w", op, err)
	}
	defer logos.Close()
	for logos.Next() {
		var c model.LogoCount
		if err := logos.Scan(&c.Logo, &c.Count); err != nil {
			return model.Statistics{}, fmt.Errorf("%s: %w", op, err)
		}
		st.AvatarDistribution = append(st.AvatarDistribution, c)
	}
	if err := logos.Err(); err != nil {
		return model.Statistics{}, fmt.Errorf("%s: %w", op, err)
	}
	return st, nil
}

// Resume returns the resume text stored with the user's rating.
func (s *Store) Resume(ctx context.Context, userID int64) (model.Resume, error) {
	const op = "repository.resume"
	defer observe("resume")()

	r := model.Resume{UserID: userID}
	err := s.db.QueryRowContext(ctx, `
		SELECT u.name, ur.resume_data
		FROM user_ratings ur JOIN users u ON u.user_id = ur.user_id
		WHERE ur.user_id = ? AND ur.resume_data != ''`, userID).Scan(&r.Name, &r.Text)
	if isNoRows(err) {
		return model.Resume{}, fmt.Errorf("%s: %w", op, model.ErrNotFound)
	}
	if err != nil {
		return model.Resume{}, fmt.Errorf("%s: %w", op, err)
	}
	return r, nil
}

// LogActivity appends an audit entry.
func (s *Store) LogActivity(ctx context.Context, a model.Activity) error {
	defer observe("log_activity")()

	var data any
	if len(a.Data) > 0 {
		b, err := json.Marshal(a.Data)
		if err != nil {
			return fmt.Errorf("repository.log_activity: %w", err)
		}
		data = string(b)
	}
	var userID any
	if a.UserID != nil {
		userID = *a.UserID
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO activity_logs (user_id, activity_type, activity_data, ip_address, user_agent, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		userID, a.Type, data, a.IPAddress, a.UserAgent, s.stamp()); err != nil {
		return fmt.Errorf("repository.log_activity: %w", err)
	}
	return nil
}

// AnonymousUserID returns the shared account for ratings without a user,
// creating it on first use. The account is inactive so it never logs in,
// is never listed and is never offered as a candidate.
func (s *Store) AnonymousUserID(ctx context.Context) (int64, error) {
	const op = "repository.anonymous_user"
	defer observe("anonymous_user")()

	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT user_id FROM users WHERE email = ?`, model.AnonymousEmail).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !isNoRows(err) {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	now := s.stamp()
	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO users (name, email, password_hash, is_active, created_at, updated_at)
		VALUES (?, ?, '', 0, ?, ?)`, anonymousName, model.AnonymousEmail, now, now)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 1 {
		s.logger.Info(ctx, "created anonymous user")
	}
	if err := s.db.QueryRowContext(ctx, `SELECT user_id FROM users WHERE email = ?`, model.AnonymousEmail).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

func (s *Store) profile(ctx context.Context, userID int64) (*model.Profile, error) {
	var p model.Profile
	var availability, achievements, interests string
	err := s.db.QueryRowContext(ctx, `
		SELECT github_username, linkedin_profile, portfolio_url, timezone, availability,
			communication_preference, team_role_preference, hackathon_experience, achievements, interests
		FROM user_profiles WHERE user_id = ?`, userID).
		Scan(&p.GithubUsername, &p.LinkedinProfile, &p.PortfolioURL, &p.Timezone, &availability,
			&p.CommunicationPreference, &p.TeamRolePreference, &p.HackathonExperience, &achievements, &interests)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.Availability = s.decodeList(ctx, availability)
	p.Achievements = s.decodeList(ctx, achievements)
	p.Interests = s.decodeList(ctx, interests)
	return &p, nil
}

func (s *Store) userSkills(ctx context.Context, userID int64) ([]model.UserSkill, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT skill_name, proficiency_level, years_experience, is_primary_skill
		FROM user_skills WHERE user_id = ? ORDER BY rowid`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	skills := []model.UserSkill{}
	for rows.Next() {
		var sk model.UserSkill
		if err := rows.Scan(&sk.Name, &sk.Proficiency, &sk.YearsExperience, &sk.IsPrimary); err != nil {
			return nil, err
		}
		skills = append(skills, sk)
	}
	return skills, rows.Err()
}

func (s *Store) decodeList(ctx context.Context, raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		s.logger.Warn(ctx, "stored list is not json", logger.Error(err))
		return nil
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func encodeList(v []string) string {
	if len(v) == 0 {
		return "[]"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}

type scanner interface {
	Scan(dest ...any) error
}

// scanUser reads the common user columns; hash, when non-nil, receives a
// trailing password_hash column.
func scanUser(row scanner, u *model.User, hash *string) error {
	var created, updated string
	dest := []any{&u.ID, &u.Name, &u.Email, &u.ProfileLogo, &u.Location, &u.Experience, &u.Bio,
		&u.IsActive, &created, &updated}
	if hash != nil {
		dest = append(dest, hash)
	}
	if err := row.Scan(dest...); err != nil {
		return err
	}
	u.CreatedAt = parseTime(created)
	u.UpdatedAt = parseTime(updated)
	return nil
}
