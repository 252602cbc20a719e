package account

import "errors"

var (
	ErrMissingFields      = errors.New("name, email and password are required")
	ErrMissingCredentials = errors.New("email and password are required")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password must be between 6 and 72 bytes")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidLogo        = errors.New("invalid profile logo")
	ErrUserNotFound       = errors.New("user not found")
	ErrResumeNotFound     = errors.New("no resume found for this user")
)
