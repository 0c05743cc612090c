// Package persistence provides database adapters implementing outbound ports.
package persistence

import (
	"database/sql"
	"errors"
)

// Common persistence errors
var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicate    = errors.New("duplicate entry")
	ErrInvalidInput = errors.New("invalid input")
)

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
