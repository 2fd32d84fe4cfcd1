package core

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JonMunkholm/leadboard/internal/leadimport"
)

// DBTX is the subset of pgx used by the store.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// ImportRequest is one file submitted for import.
type ImportRequest struct {
	FileName string
	Reader   io.Reader

	// AssignedTo and OrganizationID are stamped on every lead. Either may be
	// uuid.Nil.
	AssignedTo     uuid.UUID
	OrganizationID uuid.UUID

	// DefaultProduct fills product_name on rows that have none.
	DefaultProduct string

	// DefaultStatus overrides the service default for rows without a status.
	DefaultStatus leadimport.Status
}

// Lead is a normalized row ready for storage.
type Lead struct {
	ID             uuid.UUID
	ImportID       uuid.UUID
	AssignedTo     uuid.UUID
	OrganizationID uuid.UUID
	CreatedAt      time.Time

	leadimport.CanonicalLeadRow
}

// ImportRecord describes one import batch. It is stored alongside the leads
// it produced.
type ImportRecord struct {
	ID             uuid.UUID `json:"id"`
	FileName       string    `json:"file_name"`
	AssignedTo     uuid.UUID `json:"assigned_to"`
	OrganizationID uuid.UUID `json:"organization_id"`
	RowsInserted   int       `json:"rows_inserted"`
	RowsSkipped    int       `json:"rows_skipped"`
	CreatedAt      time.Time `json:"created_at"`
}

// ImportResult is what an import reports back to its caller.
type ImportResult struct {
	ImportID   string                 `json:"import_id"`
	FileName   string                 `json:"file_name"`
	Inserted   int                    `json:"inserted"`
	Skipped    int                    `json:"skipped"`
	FailedRows []leadimport.FailedRow `json:"failed_rows,omitempty"`
	Duration   time.Duration          `json:"duration"`
}

// Summary is the one-line message shown after an import, e.g.
// "Imported 12 leads, 3 rows skipped".
func (r ImportResult) Summary() string {
	msg := fmt.Sprintf("Imported %d %s", r.Inserted, plural(r.Inserted, "lead", "leads"))
	if r.Skipped > 0 {
		msg += fmt.Sprintf(", %d %s skipped", r.Skipped, plural(r.Skipped, "row", "rows"))
	}
	return msg
}

// Preview is the dry-run counterpart of ImportResult.
type Preview struct {
	FileName   string                        `json:"file_name"`
	Rows       []leadimport.CanonicalLeadRow `json:"rows"`
	Skipped    int                           `json:"skipped"`
	FailedRows []leadimport.FailedRow        `json:"failed_rows,omitempty"`
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
