// Package catalog serves the read-mostly reference data: hackathons, skill
// categories and typed system settings.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/okian/hackbite/internal/domain/model"
)

var (
	ErrHackathonNotFound = errors.New("hackathon not found")
	ErrSettingNotFound   = errors.New("setting not found")
	ErrMissingValue      = errors.New("value is required")
	ErrMissingKey        = errors.New("setting key is required")
)

// Store reads and writes catalogue data.
type Store interface {
	ListHackathons(ctx context.Context, status string) ([]model.Hackathon, error)
	GetHackathon(ctx context.Context, id int64) (model.Hackathon, error)
	SkillCategories(ctx context.Context) ([]model.SkillCategory, error)
	SkillsByCategory(ctx context.Context, categoryID int64) ([]model.SkillCount, error)
	// Setting returns the raw stored value and its type.
	Setting(ctx context.Context, key string) (string, model.SettingType, error)
	PutSetting(ctx context.Context, key, value string, t model.SettingType) error
}

// Service implements catalogue operations.
type Service struct {
	store Store
}

// New creates a catalogue service.
func New(store Store) *Service {
	return &Service{store: store}
}

// Hackathons lists hackathons, newest first, optionally by status.
func (s *Service) Hackathons(ctx context.Context, status string) ([]model.Hackathon, error) {
	out, err := s.store.ListHackathons(ctx, strings.TrimSpace(status))
	if err != nil {
		return nil, fmt.Errorf("catalog.hackathons: %w", err)
	}
	return out, nil
}

// Hackathon returns one hackathon.
func (s *Service) Hackathon(ctx context.Context, id int64) (model.Hackathon, error) {
	h, err := s.store.GetHackathon(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return model.Hackathon{}, fmt.Errorf("catalog.hackathon: %w", ErrHackathonNotFound)
	}
	if err != nil {
		return model.Hackathon{}, fmt.Errorf("catalog.hackathon: %w", err)
	}
	return h, nil
}

// SkillCategories lists active categories ordered by name.
func (s *Service) SkillCategories(ctx context.Context) ([]model.SkillCategory, error) {
	out, err := s.store.SkillCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog.skill_categories: %w", err)
	}
	return out, nil
}

// SkillsByCategory lists the skills users declared in a category, most used first.
func (s *Service) SkillsByCategory(ctx context.Context, categoryID int64) ([]model.SkillCount, error) {
	out, err := s.store.SkillsByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("catalog.skills_by_category: %w", err)
	}
	return out, nil
}

// Setting returns a decoded setting.
func (s *Service) Setting(ctx context.Context, key string) (model.Setting, error) {
	const op = "catalog.setting"

	raw, t, err := s.store.Setting(ctx, key)
	if errors.Is(err, model.ErrNotFound) {
		return model.Setting{}, fmt.Errorf("%s: %w", op, ErrSettingNotFound)
	}
	if err != nil {
		return model.Setting{}, fmt.Errorf("%s: %w", op, err)
	}
	v, err := model.DecodeSetting(raw, t)
	if err != nil {
		return model.Setting{}, fmt.Errorf("%s: %s: %w", op, key, err)
	}
	return model.Setting{Key: key, Value: v, Type: t}, nil
}

// PutSetting validates and upserts a setting. An empty type means string.
func (s *Service) PutSetting(ctx context.Context, key string, value any, typ string) (model.Setting, error) {
	const op = "catalog.put_setting"

	key = strings.TrimSpace(key)
	if key == "" {
		return model.Setting{}, fmt.Errorf("%s: %w", op, ErrMissingKey)
	}
	if value == nil {
		return model.Setting{}, fmt.Errorf("%s: %w", op, ErrMissingValue)
	}
	t, err := model.ParseSettingType(typ)
	if err != nil {
		return model.Setting{}, fmt.Errorf("%s: %w", op, err)
	}
	raw, err := model.EncodeSetting(value, t)
	if err != nil {
		return model.Setting{}, fmt.Errorf("%s: %w: %w", op, model.ErrInvalidSettingType, err)
	}
	if err := s.store.PutSetting(ctx, key, raw, t); err != nil {
		return model.Setting{}, fmt.Errorf("%s: %w", op, err)
	}
	v, err := model.DecodeSetting(raw, t)
	if err != nil {
		return model.Setting{}, fmt.Errorf("%s: %w", op, err)
	}
	return model.Setting{Key: key, Value: v, Type: t}, nil
}
