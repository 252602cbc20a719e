package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/hackbite/internal/domain/account"
	"github.com/okian/hackbite/internal/domain/catalog"
	"github.com/okian/hackbite/internal/domain/matching"
	"github.com/okian/hackbite/internal/domain/model"
	"github.com/okian/hackbite/internal/domain/rating"
	"github.com/okian/hackbite/internal/domain/team"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrNotFound     = errors.New("not found")
	ErrBackpressure = errors.New("backpressure")
	ErrInternal     = errors.New("internal server error")
)

// Wrap prefixes err with the operation name.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// NewKind reports a failure of kind in op.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}

// WrapKind reports a failure of kind in op caused by err.
func WrapKind(op string, kind, err error) error {
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}

type errorClass struct {
	status int
	code   string
	kinds  []error
}

// errorClasses is scanned in order; the first class holding a matching kind wins.
var errorClasses = []errorClass{ //nolint:gochecknoglobals // static lookup table
	{http.StatusBadRequest, "invalid_sort", []error{matching.ErrInvalidSortKey}},
	{http.StatusBadRequest, "bad_request", []error{
		ErrBadRequest,
		account.ErrMissingFields, account.ErrMissingCredentials, account.ErrInvalidEmail,
		account.ErrWeakPassword, account.ErrInvalidLogo,
		team.ErrMissingFields, team.ErrInvalidSize, team.ErrNotForming, team.ErrTeamFull,
		team.ErrLeaderCannotLeave, team.ErrInvalidStatus, team.ErrBelowMembers, team.ErrNoChanges,
		team.ErrMissingRequest, team.ErrMissingCheckFields,
		catalog.ErrMissingValue, catalog.ErrMissingKey, model.ErrInvalidSettingType,
		rating.ErrMissingInput, rating.ErrInvalidResume,
		matching.ErrMissingInput,
	}},
	{http.StatusUnauthorized, "unauthorized", []error{account.ErrInvalidCredentials}},
	{http.StatusForbidden, "forbidden", []error{team.ErrNotLeader}},
	{http.StatusNotFound, "not_found", []error{
		ErrNotFound,
		account.ErrUserNotFound, account.ErrResumeNotFound,
		team.ErrTeamNotFound, team.ErrUserNotFound, team.ErrHackathonNotFound, team.ErrNotMember,
		catalog.ErrHackathonNotFound, catalog.ErrSettingNotFound,
		rating.ErrJobNotFound, rating.ErrRatingNotFound, rating.ErrUserNotFound,
		matching.ErrNotFound, model.ErrNotFound,
	}},
	{http.StatusConflict, "conflict", []error{
		account.ErrEmailExists,
		team.ErrTeamExists, team.ErrAlreadyMember, team.ErrRequestExists,
		model.ErrConflict,
	}},
	{http.StatusTooManyRequests, "backpressure", []error{ErrBackpressure, rating.ErrBackpressure}},
	{http.StatusServiceUnavailable, "unavailable", []error{rating.ErrUnavailable}},
}

// statusFor translates an error to its HTTP status, error code and the
// message shown to clients.
func statusFor(err error) (status int, code, message string) {
	for _, c := range errorClasses {
		for _, kind := range c.kinds {
			if errors.Is(err, kind) {
				return c.status, c.code, clientMessage(err, kind)
			}
		}
	}
	return http.StatusInternalServerError, "internal_error", ErrInternal.Error()
}

// clientMessage prefers the richest error that still describes kind.
func clientMessage(err, kind error) string {
	var (
		existing *team.ExistingTeamError
		invalid  *requestError
	)
	switch {
	case errors.As(err, &existing):
		return existing.Error()
	case errors.As(err, &invalid):
		return invalid.msg
	}
	return kind.Error()
}

// requestError describes a malformed request. It matches ErrBadRequest.
type requestError struct{ msg string }

func (e *requestError) Error() string { return e.msg }
func (e *requestError) Unwrap() error { return ErrBadRequest }

func badRequest(op, msg string) error {
	return NewKind(op, &requestError{msg: msg})
}
