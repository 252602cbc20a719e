package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/okian/hackbite/internal/domain/model"
)

// ListHackathons returns hackathons newest first, optionally in one status.
func (s *Store) ListHackathons(ctx context.Context, status string) ([]model.Hackathon, error) {
	const op = "repository.list_hackathons"
	defer observe("list_hackathons")()

	query := `
		SELECT hackathon_id, name, description, theme, status, location, start_date, end_date,
			registration_deadline, max_team_size, created_at
		FROM hackathons`
	var args []any
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY start_date DESC, hackathon_id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out := []model.Hackathon{}
	for rows.Next() {
		h, err := scanHackathon(rows)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	_ = rows.Close()

	for i := range out {
		if out[i].Prizes, err = s.prizes(ctx, out[i].ID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	return out, nil
}

// GetHackathon returns one hackathon with its prizes.
func (s *Store) GetHackathon(ctx context.Context, id int64) (model.Hackathon, error) {
	const op = "repository.get_hackathon"
	defer observe("get_hackathon")()

	h, err := scanHackathon(s.db.QueryRowContext(ctx, `
		SELECT hackathon_id, name, description, theme, status, location, start_date, end_date,
			registration_deadline, max_team_size, created_at
		FROM hackathons WHERE hackathon_id = ?`, id))
	if isNoRows(err) {
		return model.Hackathon{}, fmt.Errorf("%s: %w", op, model.ErrNotFound)
	}
	if err != nil {
		return model.Hackathon{}, fmt.Errorf("%s: %w", op, err)
	}
	if h.Prizes, err = s.prizes(ctx, id); err != nil {
		return model.Hackathon{}, fmt.Errorf("%s: %w", op, err)
	}
	return h, nil
}

// CreateHackathon inserts a hackathon with its prizes.
func (s *Store) CreateHackathon(ctx context.Context, h model.Hackathon) (model.Hackathon, error) {
	const op = "repository.create_hackathon"
	defer observe("create_hackathon")()

	if h.Status == "" {
		h.Status = model.HackathonUpcoming
	}
	if h.MaxTeamSize == 0 {
		h.MaxTeamSize = model.DefaultMaxMembers
	}
	var id int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO hackathons (name, description, theme, status, location, start_date, end_date,
				registration_deadline, max_team_size, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			h.Name, h.Description, h.Theme, h.Status, h.Location, h.StartDate, h.EndDate,
			h.RegistrationDeadline, h.MaxTeamSize, s.stamp())
		if err != nil {
			return err
		}
		if id, err = res.LastInsertId(); err != nil {
			return err
		}
		for i, p := range h.Prizes {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO hackathon_prizes (hackathon_id, position, place, reward) VALUES (?, ?, ?, ?)`,
				id, i, p.Place, p.Reward); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return model.Hackathon{}, fmt.Errorf("%s: %w", op, err)
	}
	return s.GetHackathon(ctx, id)
}

// SkillCategories returns active categories ordered by name.
func (s *Store) SkillCategories(ctx context.Context) ([]model.SkillCategory, error) {
	const op = "repository.skill_categories"
	defer observe("skill_categories")()

	rows, err := s.db.QueryContext(ctx, `
		SELECT category_id, category_name, description, is_active
		FROM skill_categories WHERE is_active = 1 ORDER BY category_name`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	out := []model.SkillCategory{}
	for rows.Next() {
		var c model.SkillCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.IsActive); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// SkillsByCategory returns the declared skills mapped to a category with
// their user counts, most used first.
func (s *Store) SkillsByCategory(ctx context.Context, categoryID int64) ([]model.SkillCount, error) {
	const op = "repository.skills_by_category"
	defer observe("skills_by_category")()

	rows, err := s.db.QueryContext(ctx, `
		SELECT us.skill_name, COUNT(*) AS n
		FROM user_skills us
		JOIN skill_category_mapping m ON m.skill_name = us.skill_name
		WHERE m.category_id = ?
		GROUP BY us.skill_name
		ORDER BY n DESC, us.skill_name`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	out := []model.SkillCount{}
	for rows.Next() {
		var c model.SkillCount
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// Setting returns the stored text and type of a setting.
func (s *Store) Setting(ctx context.Context, key string) (string, model.SettingType, error) {
	const op = "repository.setting"
	defer observe("setting")()

	var raw, typ string
	err := s.db.QueryRowContext(ctx, `
		SELECT setting_value, setting_type FROM system_settings WHERE setting_key = ?`, key).Scan(&raw, &typ)
	if isNoRows(err) {
		return "", "", fmt.Errorf("%s: %w", op, model.ErrNotFound)
	}
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	return raw, model.SettingType(typ), nil
}

// PutSetting upserts a setting.
func (s *Store) PutSetting(ctx context.Context, key, value string, t model.SettingType) error {
	defer observe("put_setting")()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO system_settings (setting_key, setting_value, setting_type, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(setting_key) DO UPDATE SET
			setting_value = excluded.setting_value,
			setting_type = excluded.setting_type,
			updated_at = excluded.updated_at`, key, value, t, s.stamp())
	if err != nil {
		return fmt.Errorf("repository.put_setting: %w", err)
	}
	return nil
}

func (s *Store) prizes(ctx context.Context, hackathonID int64) ([]model.Prize, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT place, reward FROM hackathon_prizes WHERE hackathon_id = ? ORDER BY position`, hackathonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Prize{}
	for rows.Next() {
		var p model.Prize
		if err := rows.Scan(&p.Place, &p.Reward); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanHackathon(row scanner) (model.Hackathon, error) {
	var (
		h       model.Hackathon
		created string
	)
	err := row.Scan(&h.ID, &h.Name, &h.Description, &h.Theme, &h.Status, &h.Location, &h.StartDate,
		&h.EndDate, &h.RegistrationDeadline, &h.MaxTeamSize, &created)
	if err != nil {
		return model.Hackathon{}, err
	}
	h.CreatedAt = parseTime(created)
	return h, nil
}
