package model

import "errors"

// Storage outcomes shared by every repository implementation.
var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)
