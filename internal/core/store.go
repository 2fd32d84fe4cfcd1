package core

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// LeadStore persists import batches. InsertLeads writes the import record
// and every lead in one call; either all of them are stored or none.
type LeadStore interface {
	InsertLeads(ctx context.Context, rec ImportRecord, leads []Lead) (int64, error)
	RecentImports(ctx context.Context, limit int) ([]ImportRecord, error)
}

// leadColumns is the COPY column order; leadCopyRow must match it.
var leadColumns = []string{
	"id", "import_id",
	"full_name", "email", "phone_raw", "city", "postal_code",
	"company", "product_name", "surface_m2", "utm_source", "status",
	"commentaire", "date_rdv", "heure_rdv",
	"assigned_to", "organization_id", "created_at",
}

func leadCopyRow(l Lead) []any {
	return []any{
		ToPgUUID(l.ID),
		ToPgUUID(l.ImportID),
		l.FullName,
		l.Email,
		l.PhoneRaw,
		l.City,
		l.PostalCode,
		ToPgText(l.Company),
		ToPgText(l.ProductName),
		ToPgFloat8(l.SurfaceM2),
		ToPgText(l.UTMSource),
		ToPgText(string(l.Status)),
		ToPgText(l.Commentaire),
		ToPgText(l.DateRdv),
		ToPgText(l.HeureRdv),
		ToPgUUID(l.AssignedTo),
		ToPgUUID(l.OrganizationID),
		pgtype.Timestamptz{Time: l.CreatedAt, Valid: !l.CreatedAt.IsZero()},
	}
}

// PgLeadStore is the PostgreSQL LeadStore. Leads go through the COPY
// protocol inside the same transaction as their import record.
type PgLeadStore struct {
	pool *pgxpool.Pool
}

// NewPgLeadStore returns a store backed by pool.
func NewPgLeadStore(pool *pgxpool.Pool) *PgLeadStore {
	return &PgLeadStore{pool: pool}
}

// EnsureSchema creates the lead tables if they do not exist.
func (s *PgLeadStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *PgLeadStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// InsertLeads stores rec and leads atomically and returns the number of
// leads copied.
func (s *PgLeadStore) InsertLeads(ctx context.Context, rec ImportRecord, leads []Lead) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := insertImportRecord(ctx, tx, rec); err != nil {
		return 0, err
	}

	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{"leads"},
		leadColumns,
		pgx.CopyFromSlice(len(leads), func(i int) ([]any, error) {
			return leadCopyRow(leads[i]), nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("copy leads: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

func insertImportRecord(ctx context.Context, db DBTX, rec ImportRecord) error {
	_, err := db.Exec(ctx, `
		INSERT INTO lead_imports (id, file_name, assigned_to, organization_id, rows_inserted, rows_skipped, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		ToPgUUID(rec.ID),
		rec.FileName,
		ToPgUUID(rec.AssignedTo),
		ToPgUUID(rec.OrganizationID),
		rec.RowsInserted,
		rec.RowsSkipped,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert import record: %w", err)
	}
	return nil
}

// RecentImports returns the latest import records, newest first.
func (s *PgLeadStore) RecentImports(ctx context.Context, limit int) ([]ImportRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, file_name, assigned_to, organization_id, rows_inserted, rows_skipped, created_at
		FROM lead_imports
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query imports: %w", err)
	}
	defer rows.Close()

	var out []ImportRecord
	for rows.Next() {
		var (
			id, assignee, org pgtype.UUID
			rec               ImportRecord
			createdAt         time.Time
		)
		if err := rows.Scan(&id, &rec.FileName, &assignee, &org, &rec.RowsInserted, &rec.RowsSkipped, &createdAt); err != nil {
			return nil, fmt.Errorf("scan import: %w", err)
		}
		rec.ID = FromPgUUID(id)
		rec.AssignedTo = FromPgUUID(assignee)
		rec.OrganizationID = FromPgUUID(org)
		rec.CreatedAt = createdAt
		out = append(out, rec)
	}
	return out, rows.Err()
}
