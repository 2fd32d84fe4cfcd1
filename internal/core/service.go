package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/leadboard/internal/config"
	"github.com/JonMunkholm/leadboard/internal/leadimport"
	"github.com/JonMunkholm/leadboard/internal/logging"
)

var (
	// ErrNoHeader is returned when the first line of a file names no column
	// the parser can use.
	ErrNoHeader = errors.New("no header row found")

	// ErrNoFile is returned when a request carries no file.
	ErrNoFile = errors.New("no file provided")

	// ErrInvalidID is returned when an assignee or organization identifier
	// is not a UUID.
	ErrInvalidID = errors.New("invalid id")
)

// Service runs lead imports: it reads the upload, normalizes it with the
// lead parser, applies the caller's defaults and stores the result in one
// batch.
type Service struct {
	store   LeadStore
	parser  *leadimport.Parser
	limiter *ImportLimiter

	maxFileSize   int64
	timeout       time.Duration
	defaultStatus leadimport.Status

	now func() time.Time
}

// NewService creates a Service. A nil parser selects leadimport.NewParser().
func NewService(store LeadStore, parser *leadimport.Parser, cfg config.ImportConfig) (*Service, error) {
	status, ok := leadimport.ParseStatus(cfg.DefaultStatus)
	if !ok {
		return nil, fmt.Errorf("default status %q: unknown status", cfg.DefaultStatus)
	}
	if parser == nil {
		parser = leadimport.NewParser()
	}

	return &Service{
		store:         store,
		parser:        parser,
		limiter:       NewImportLimiter(cfg.MaxConcurrent, cfg.MaxWaitTime),
		maxFileSize:   cfg.MaxFileSize,
		timeout:       cfg.Timeout,
		defaultStatus: status,
		now:           time.Now,
	}, nil
}

// ImportLeads parses req.Reader and stores every accepted row. Rows missing
// a required field are reported in the result, never as an error. An error
// means nothing was stored.
func (s *Service) ImportLeads(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	start := s.now()
	importID := uuid.New()
	log := logging.WithFields(ctx,
		"import_id", importID.String(),
		"file", req.FileName,
		"client_ip", ClientIPFromContext(ctx),
		"user_agent", UserAgentFromContext(ctx),
	)

	parsed, err := s.read(req.FileName, req.Reader)
	if err != nil {
		log.Warn("import rejected", "error", err)
		return nil, err
	}

	result := &ImportResult{
		ImportID:   importID.String(),
		FileName:   req.FileName,
		Skipped:    parsed.Skipped,
		FailedRows: parsed.Failed,
	}

	if len(parsed.Rows) == 0 {
		result.Duration = s.now().Sub(start)
		log.Info("import finished without valid leads", "skipped", result.Skipped)
		return result, nil
	}

	leads := s.buildLeads(importID, req, parsed.Rows, start)
	rec := ImportRecord{
		ID:             importID,
		FileName:       req.FileName,
		AssignedTo:     req.AssignedTo,
		OrganizationID: req.OrganizationID,
		RowsInserted:   len(leads),
		RowsSkipped:    parsed.Skipped,
		CreatedAt:      start,
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	n, err := s.store.InsertLeads(ctx, rec, leads)
	if err != nil {
		log.Error("import failed", "error", err, "rows", len(leads))
		return nil, fmt.Errorf("import %s: %w", req.FileName, err)
	}

	result.Inserted = int(n)
	result.Duration = s.now().Sub(start)

	log.Info("import completed",
		"inserted", result.Inserted,
		"skipped", result.Skipped,
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

// PreviewLeads runs the read and parse steps of ImportLeads without storing
// anything.
func (s *Service) PreviewLeads(ctx context.Context, fileName string, r io.Reader) (*Preview, error) {
	parsed, err := s.read(fileName, r)
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Debug("import preview",
		"file", fileName,
		"rows", len(parsed.Rows),
		"skipped", parsed.Skipped,
	)

	return &Preview{
		FileName:   fileName,
		Rows:       parsed.Rows,
		Skipped:    parsed.Skipped,
		FailedRows: parsed.Failed,
	}, nil
}

// Columns reports how the header of the upload would be read.
func (s *Service) Columns(r io.Reader) ([]leadimport.Column, error) {
	content, err := ReadUpload(r, s.maxFileSize)
	if err != nil {
		return nil, err
	}
	return s.parser.Columns(content), nil
}

// RecentImports lists the latest import batches.
func (s *Service) RecentImports(ctx context.Context, limit int) ([]ImportRecord, error) {
	return s.store.RecentImports(ctx, limit)
}

// LimiterStatus returns the current import slot usage.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForImports blocks until in-flight imports finish or ctx is done.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

func (s *Service) read(fileName string, r io.Reader) (leadimport.Result, error) {
	if r == nil {
		return leadimport.Result{}, ErrNoFile
	}

	content, err := ReadUpload(r, s.maxFileSize)
	if err != nil {
		return leadimport.Result{}, fmt.Errorf("%s: %w", fileName, err)
	}
	if !s.parser.HasHeader(content) {
		return leadimport.Result{}, fmt.Errorf("%s: %w", fileName, ErrNoHeader)
	}

	return s.parser.Parse(content), nil
}

// buildLeads stamps the request defaults on each accepted row. The default
// product only fills rows without one; the default status only fills rows
// whose status was missing or unrecognized.
func (s *Service) buildLeads(importID uuid.UUID, req ImportRequest, rows []leadimport.CanonicalLeadRow, at time.Time) []Lead {
	status := s.defaultStatus
	if req.DefaultStatus != "" {
		status = req.DefaultStatus
	}

	leads := make([]Lead, len(rows))
	for i, row := range rows {
		if row.ProductName == "" {
			row.ProductName = req.DefaultProduct
		}
		if row.Status == "" {
			row.Status = status
		}
		leads[i] = Lead{
			ID:               uuid.New(),
			ImportID:         importID,
			AssignedTo:       req.AssignedTo,
			OrganizationID:   req.OrganizationID,
			CreatedAt:        at,
			CanonicalLeadRow: row,
		}
	}
	return leads
}
