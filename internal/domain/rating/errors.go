package rating

import "errors"

var (
	ErrMissingInput   = errors.New("github username and resume are required")
	ErrInvalidResume  = errors.New("resume is not valid base64")
	ErrUnavailable    = errors.New("rating service is not configured")
	ErrBackpressure   = errors.New("rating queue is full")
	ErrUserNotFound   = errors.New("user not found")
	ErrJobNotFound    = errors.New("rating job not found")
	ErrRatingNotFound = errors.New("no rating found")
	ErrBadResponse    = errors.New("malformed rating response")
	ErrExtract        = errors.New("resume text extraction failed")
	ErrGenerate       = errors.New("rating generation failed")
)
