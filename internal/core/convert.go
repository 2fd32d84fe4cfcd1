package core

// convert.go maps lead values to and from pgtype values.
// Empty input yields Valid=false so the column is stored as NULL.

import (
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// ToPgText converts a string to pgtype.Text.
// Returns invalid if the string is empty or only whitespace.
func ToPgText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// ToPgFloat8 converts an optional number to pgtype.Float8.
func ToPgFloat8(f *float64) pgtype.Float8 {
	if f == nil || math.IsNaN(*f) || math.IsInf(*f, 0) {
		return pgtype.Float8{Valid: false}
	}
	return pgtype.Float8{Float64: *f, Valid: true}
}

// ToPgUUID converts a uuid to pgtype.UUID. uuid.Nil is stored as NULL.
func ToPgUUID(id uuid.UUID) pgtype.UUID {
	if id == uuid.Nil {
		return pgtype.UUID{Valid: false}
	}
	return pgtype.UUID{Bytes: id, Valid: true}
}

// FromPgUUID converts a scanned pgtype.UUID back to uuid.UUID. NULL
// becomes uuid.Nil.
func FromPgUUID(u pgtype.UUID) uuid.UUID {
	if !u.Valid {
		return uuid.Nil
	}
	return u.Bytes
}
