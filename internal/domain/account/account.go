// Package account registers and authenticates users and serves their
// profile data.
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/okian/hackbite/internal/domain/model"
	"github.com/okian/hackbite/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

// Password limits. bcrypt ignores input past 72 bytes.
const (
	minPasswordLen = 6
	maxPasswordLen = 72

	defaultProficiency          = "intermediate"
	defaultCommunicationChannel = "email"
)

// Store persists accounts.
type Store interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	// CreateUser inserts the user, its profile and skills in one transaction
	// and returns model.ErrConflict when the email is taken.
	CreateUser(ctx context.Context, reg model.Registration, passwordHash string, proficiency string) (model.User, error)
	// Credentials returns the user and password hash for an email.
	Credentials(ctx context.Context, email string) (model.User, string, error)
	ListUsers(ctx context.Context, includeProfiles bool) ([]model.User, error)
	GetUser(ctx context.Context, id int64, includeSkills bool) (model.User, error)
	UpdateProfileLogo(ctx context.Context, id int64, logo string) error
	Statistics(ctx context.Context) (model.Statistics, error)
	Resume(ctx context.Context, userID int64) (model.Resume, error)
	LogActivity(ctx context.Context, a model.Activity) error
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithCost sets the bcrypt cost.
func WithCost(cost int) Option {
	return func(s *Service) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.cost = cost
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// Service implements account operations on top of a Store.
type Service struct {
	store  Store
	cost   int
	logger logger.Logger
}

// New creates an account service.
func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		cost:   bcrypt.DefaultCost,
		logger: logger.Get().Named("account"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register validates and stores a new account.
func (s *Service) Register(ctx context.Context, reg model.Registration) (model.User, error) {
	const op = "account.register"

	reg.Name = strings.TrimSpace(reg.Name)
	reg.Email = NormalizeEmail(reg.Email)
	reg.Password = strings.TrimSpace(reg.Password)
	reg.Location = strings.TrimSpace(reg.Location)
	reg.Experience = strings.TrimSpace(reg.Experience)

	if reg.Name == "" || reg.Email == "" || reg.Password == "" {
		return model.User{}, fmt.Errorf("%s: %w", op, ErrMissingFields)
	}
	if !strings.Contains(reg.Email, "@") {
		return model.User{}, fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}
	if len(reg.Password) < minPasswordLen || len(reg.Password) > maxPasswordLen {
		return model.User{}, fmt.Errorf("%s: %w", op, ErrWeakPassword)
	}
	if !ValidLogo(reg.ProfileLogo) {
		reg.ProfileLogo = DefaultLogo
	}
	if reg.Profile.CommunicationPreference == "" {
		reg.Profile.CommunicationPreference = defaultCommunicationChannel
	}
	reg.Skills = cleanSkills(reg.Skills)

	exists, err := s.store.EmailExists(ctx, reg.Email)
	if err != nil {
		return model.User{}, fmt.Errorf("%s: %w", op, err)
	}
	if exists {
		s.logActivity(ctx, model.Activity{
			Type: model.ActivityRegistrationFailed,
			Data: map[string]any{"reason": "email_exists", "email": reg.Email},
		})
		return model.User{}, fmt.Errorf("%s: %w", op, ErrEmailExists)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.cost)
	if err != nil {
		return model.User{}, fmt.Errorf("%s: hash password: %w", op, err)
	}

	user, err := s.store.CreateUser(ctx, reg, string(hash), defaultProficiency)
	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			return model.User{}, fmt.Errorf("%s: %w", op, ErrEmailExists)
		}
		s.logActivity(ctx, model.Activity{
			Type: model.ActivityRegistrationFailed,
			Data: map[string]any{"reason": "database_error", "error": err.Error()},
		})
		return model.User{}, fmt.Errorf("%s: %w", op, err)
	}

	s.logActivity(ctx, model.Activity{
		UserID: &user.ID,
		Type:   model.ActivityRegistered,
		Data: map[string]any{
			"email":        user.Email,
			"profile_logo": user.ProfileLogo,
			"has_skills":   len(reg.Skills) > 0,
		},
	})
	s.logger.Info(ctx, "user registered", logger.Int64("user_id", user.ID))
	return user, nil
}

// Login checks credentials and returns the active user they belong to.
func (s *Service) Login(ctx context.Context, email, password, ip, userAgent string) (model.User, error) {
	const op = "account.login"

	email = NormalizeEmail(email)
	password = strings.TrimSpace(password)
	if email == "" || password == "" {
		return model.User{}, fmt.Errorf("%s: %w", op, ErrMissingCredentials)
	}

	failed := func(reason string) {
		s.logActivity(ctx, model.Activity{
			Type:      model.ActivityLoginFailed,
			Data:      map[string]any{"email": email, "reason": reason},
			IPAddress: ip,
			UserAgent: userAgent,
		})
	}

	user, hash, err := s.store.Credentials(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			failed("invalid_credentials")
			return model.User{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		failed("database_error")
		return model.User{}, fmt.Errorf("%s: %w", op, err)
	}
	if !user.IsActive || bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		failed("invalid_credentials")
		return model.User{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	s.logActivity(ctx, model.Activity{
		UserID:    &user.ID,
		Type:      model.ActivityLogin,
		Data:      map[string]any{"email": email},
		IPAddress: ip,
		UserAgent: userAgent,
	})
	return user, nil
}

// ListUsers returns active users, newest first.
func (s *Service) ListUsers(ctx context.Context, includeProfiles bool) ([]model.User, error) {
	users, err := s.store.ListUsers(ctx, includeProfiles)
	if err != nil {
		return nil, fmt.Errorf("account.list_users: %w", err)
	}
	return users, nil
}

// GetUser returns an active user by id.
func (s *Service) GetUser(ctx context.Context, id int64, includeSkills bool) (model.User, error) {
	u, err := s.store.GetUser(ctx, id, includeSkills)
	if err != nil {
		return model.User{}, notFound("account.get_user", err, ErrUserNotFound)
	}
	return u, nil
}

// UpdateProfileLogo changes a user's logo.
func (s *Service) UpdateProfileLogo(ctx context.Context, id int64, logo string) error {
	const op = "account.update_profile_logo"

	logo = strings.TrimSpace(logo)
	if !ValidLogo(logo) {
		return fmt.Errorf("%s: %w: %q", op, ErrInvalidLogo, logo)
	}
	if err := s.store.UpdateProfileLogo(ctx, id, logo); err != nil {
		return notFound(op, err, ErrUserNotFound)
	}
	s.logActivity(ctx, model.Activity{
		UserID: &id,
		Type:   model.ActivityProfileUpdated,
		Data:   map[string]any{"field": "profile_logo", "new_value": logo},
	})
	return nil
}

// Statistics summarises registrations, skills and avatars.
func (s *Service) Statistics(ctx context.Context) (model.Statistics, error) {
	st, err := s.store.Statistics(ctx)
	if err != nil {
		return model.Statistics{}, fmt.Errorf("account.statistics: %w", err)
	}
	return st, nil
}

// Resume returns the stored resume text of a user.
func (s *Service) Resume(ctx context.Context, userID int64) (model.Resume, error) {
	r, err := s.store.Resume(ctx, userID)
	if err != nil {
		return model.Resume{}, notFound("account.resume", err, ErrResumeNotFound)
	}
	return r, nil
}

// logActivity records an audit entry. Failures are logged, never returned.
func (s *Service) logActivity(ctx context.Context, a model.Activity) {
	if err := s.store.LogActivity(ctx, a); err != nil {
		s.logger.Warn(ctx, "failed to log activity", logger.String("type", a.Type), logger.Error(err))
	}
}

func notFound(op string, err, kind error) error {
	if errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, kind)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func cleanSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
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
