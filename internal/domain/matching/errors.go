package matching

import "errors"

var (
	// ErrMissingInput is returned when the leader id is absent.
	ErrMissingInput = errors.New("leader id is required")
	// ErrNotFound is returned when the leader has no rating record.
	ErrNotFound = errors.New("leader rating not found")
	// ErrDataAccess wraps failures of the underlying Source.
	ErrDataAccess = errors.New("candidate data access failed")
	// ErrInvalidSortKey is returned for a sort key outside the supported set.
	ErrInvalidSortKey = errors.New("invalid sort key")
)
