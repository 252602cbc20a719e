// Package model contains domain models passed between layers.
package model

import "time"

// User is a registered account.
type User struct {
	ID          int64       `json:"user_id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	ProfileLogo string      `json:"profile_logo"`
	Location    string      `json:"location,omitempty"`
	Experience  string      `json:"experience,omitempty"`
	Bio         string      `json:"bio,omitempty"`
	IsActive    bool        `json:"is_active"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	Profile     *Profile    `json:"profile,omitempty"`
	Skills      []UserSkill `json:"skills,omitempty"`
}

// Profile holds the optional extended profile fields.
type Profile struct {
	GithubUsername          string   `json:"github_username,omitempty"`
	LinkedinProfile         string   `json:"linkedin_profile,omitempty"`
	PortfolioURL            string   `json:"portfolio_url,omitempty"`
	Timezone                string   `json:"timezone,omitempty"`
	CommunicationPreference string   `json:"communication_preference,omitempty"`
	TeamRolePreference      string   `json:"team_role_preference,omitempty"`
	HackathonExperience     int      `json:"hackathon_experience"`
	Achievements            []string `json:"achievements,omitempty"`
	Interests               []string `json:"interests,omitempty"`
	Availability            []string `json:"availability,omitempty"`
}

// UserSkill is one declared skill of a user.
type UserSkill struct {
	Name            string `json:"skill_name"`
	Proficiency     string `json:"proficiency_level"`
	YearsExperience int    `json:"years_experience"`
	IsPrimary       bool   `json:"is_primary_skill"`
}

// Registration is the input for creating an account.
type Registration struct {
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Password    string   `json:"password"`
	ProfileLogo string   `json:"profile_logo"`
	Location    string   `json:"location"`
	Experience  string   `json:"experience"`
	Skills      []string `json:"skills"`
	Profile     Profile  `json:"profile"`
}

// Activity is an audit log entry.
type Activity struct {
	UserID    *int64
	Type      string
	Data      map[string]any
	IPAddress string
	UserAgent string
}

// Activity types written by the account service.
const (
	ActivityRegistered         = "user_registered"
	ActivityRegistrationFailed = "registration_failed"
	ActivityLogin              = "user_login"
	ActivityLoginFailed        = "login_failed"
	ActivityProfileUpdated     = "profile_updated"
)

// SkillCategory groups related skills.
type SkillCategory struct {
	ID          int64  `json:"category_id"`
	Name        string `json:"category_name"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"is_active"`
}

// SkillCount is a skill with the number of users declaring it.
type SkillCount struct {
	Name  string `json:"skill_name"`
	Count int    `json:"count"`
}

// LogoCount is a profile logo with the number of users using it.
type LogoCount struct {
	Logo  string `json:"profile_logo"`
	Count int    `json:"count"`
}

// Statistics summarises the user base.
type Statistics struct {
	TotalUsers           int          `json:"total_users"`
	WeeklyRegistrations  int          `json:"weekly_registrations"`
	MonthlyRegistrations int          `json:"monthly_registrations"`
	PopularSkills        []SkillCount `json:"popular_skills"`
	AvatarDistribution   []LogoCount  `json:"avatar_distribution"`
}

// Resume is the stored resume text of a user.
type Resume struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Text   string `json:"resume_data"`
}
