package web

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/google/uuid"

	"github.com/JonMunkholm/leadboard/internal/core"
	"github.com/JonMunkholm/leadboard/internal/leadimport"
	"github.com/JonMunkholm/leadboard/internal/web/templates"
)

const (
	// multipartMemory is how much of a form is kept in memory before
	// spilling to disk.
	multipartMemory = 8 << 20

	// formOverhead leaves room for the boundary and text fields on top of
	// the file itself.
	formOverhead = 64 << 10

	defaultRecentImports = 20
	maxRecentImports     = 100
)

var errUnknownStatus = errors.New("unknown status")

// importResponse is the JSON body returned by a successful import.
type importResponse struct {
	*core.ImportResult
	Summary string `json:"summary"`
}

// columnsResponse reports how the header of an upload would be read.
type columnsResponse struct {
	Columns   []leadimport.Column `json:"columns"`
	HasHeader bool                `json:"has_header"`
}

// statusResponse is returned by the import status endpoint.
type statusResponse struct {
	Limiter  core.LimiterStatus  `json:"limiter"`
	Statuses []leadimport.Status `json:"statuses"`
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// handleImport parses an uploaded export and stores its leads.
//
// Form fields:
//   - file: the CSV or Facebook Lead-Ads export (required)
//   - assigned_to, organization_id: UUIDs stamped on every lead
//   - default_product: product for rows without one
//   - default_status: status label for rows without one
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	file, header, err := s.uploadedFile(w, r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	defer file.Close()

	req, err := importRequestFromForm(r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	req.FileName = header.Filename
	req.Reader = file

	result, err := s.service.ImportLeads(WithRequestMetadata(r.Context(), r), req)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	if isHTMX(r) {
		s.render(w, r, templates.ImportSummary(*result))
		return
	}
	writeJSON(w, importResponse{ImportResult: result, Summary: result.Summary()})
}

// handlePreview parses an upload without storing anything.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	file, header, err := s.uploadedFile(w, r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	defer file.Close()

	preview, err := s.service.PreviewLeads(WithRequestMetadata(r.Context(), r), header.Filename, file)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	if isHTMX(r) {
		s.render(w, r, templates.PreviewTable(*preview))
		return
	}
	writeJSON(w, preview)
}

// handleColumns shows which field each header column maps to.
func (s *Server) handleColumns(w http.ResponseWriter, r *http.Request) {
	file, _, err := s.uploadedFile(w, r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	defer file.Close()

	cols, err := s.service.Columns(file)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	resp := columnsResponse{Columns: cols}
	for _, c := range cols {
		if c.Target != "" {
			resp.HasHeader = true
			break
		}
	}
	writeJSON(w, resp)
}

// handleRecentImports lists the latest import batches. ?limit= caps the
// count.
func (s *Server) handleRecentImports(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecentImports
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil && n > 0 {
			limit = min(n, maxRecentImports)
		}
	}

	records, err := s.service.RecentImports(r.Context(), limit)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	if records == nil {
		records = []core.ImportRecord{}
	}
	writeJSON(w, records)
}

// handleImportStatus reports import slot usage and the status vocabulary
// accepted by default_status.
func (s *Server) handleImportStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, statusResponse{
		Limiter:  s.service.LimiterStatus(),
		Statuses: leadimport.Statuses,
	})
}

// uploadedFile bounds the request body and returns the "file" form part.
// The caller closes the file.
func (s *Server) uploadedFile(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+formOverhead)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytes *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytes):
			return nil, nil, fmt.Errorf("%w: limit is %d bytes", core.ErrFileTooLarge, maxSize)
		case errors.Is(err, http.ErrNotMultipart), errors.Is(err, io.EOF):
			return nil, nil, core.ErrNoFile
		default:
			return nil, nil, fmt.Errorf("read upload: %w", err)
		}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, core.ErrNoFile
		}
		return nil, nil, fmt.Errorf("read upload: %w", err)
	}
	return file, header, nil
}

// importRequestFromForm reads the optional import defaults. Empty fields
// leave the service defaults in place.
func importRequestFromForm(r *http.Request) (core.ImportRequest, error) {
	var req core.ImportRequest
	var err error

	if req.AssignedTo, err = formUUID(r, "assigned_to"); err != nil {
		return req, err
	}
	if req.OrganizationID, err = formUUID(r, "organization_id"); err != nil {
		return req, err
	}

	req.DefaultProduct = strings.TrimSpace(r.FormValue("default_product"))

	if v := strings.TrimSpace(r.FormValue("default_status")); v != "" {
		status, ok := leadimport.ParseStatus(v)
		if !ok {
			return req, fmt.Errorf("default_status %q: %w", v, errUnknownStatus)
		}
		req.DefaultStatus = status
	}
	return req, nil
}

func formUUID(r *http.Request, field string) (uuid.UUID, error) {
	v := strings.TrimSpace(r.FormValue(field))
	if v == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s %q: %w", field, v, core.ErrInvalidID)
	}
	return id, nil
}

// render writes an HTMX fragment.
func (s *Server) render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		slog.Error("render fragment", "path", r.URL.Path, "error", err)
	}
}
