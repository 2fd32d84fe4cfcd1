package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/leadboard/internal/config"
	"github.com/JonMunkholm/leadboard/internal/core"
	"github.com/JonMunkholm/leadboard/internal/leadimport"
)

const sampleCSV = "full_name;email;phone_raw;city;postal_code;produit;statut\n" +
	"Jean Dupont;jean@example.fr;0601020304;Paris;75001;;\n" +
	"Marie Curie;marie@example.fr;0602030405;Lyon;;;\n" +
	"Paul Martin;paul@example.fr;0603040506;Nice;06000;Isolation;Phoning\n"

type memStore struct {
	mu      sync.Mutex
	records []core.ImportRecord
	leads   []core.Lead
	err     error
}

func (m *memStore) InsertLeads(_ context.Context, rec core.ImportRecord, leads []core.Lead) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	m.records = append(m.records, rec)
	m.leads = append(m.leads, leads...)
	return int64(len(leads)), nil
}

func (m *memStore) RecentImports(_ context.Context, limit int) ([]core.ImportRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return append([]core.ImportRecord(nil), m.records[:min(limit, len(m.records))]...), nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{RequestTimeout: 5 * time.Second},
		Import: config.ImportConfig{
			MaxFileSize:   1 << 20,
			MaxConcurrent: 2,
			MaxWaitTime:   50 * time.Millisecond,
			Timeout:       time.Second,
			DefaultStatus: string(leadimport.StatusARappeler),
		},
		Security: config.SecurityConfig{EnableCSP: true},
	}
}

func newTestServer(t *testing.T, store core.LeadStore, cfg *config.Config) *Server {
	t.Helper()
	svc, err := core.NewService(store, nil, cfg.Import)
	require.NoError(t, err)
	s := NewServer(svc, cfg)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

// uploadRequest builds a multipart POST with the file under "file".
func uploadRequest(t *testing.T, path, fileName, content string, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		fw, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, &memStore{}, testConfig())

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestImport_JSON(t *testing.T) {
	store := &memStore{}
	s := newTestServer(t, store, testConfig())
	assignee := uuid.New()

	rec := serve(s, uploadRequest(t, "/api/leads/import", "leads.csv", sampleCSV, map[string]string{
		"assigned_to":     assignee.String(),
		"default_product": "Pompe à chaleur",
		"default_status":  "Phoning",
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		ImportID   string                 `json:"import_id"`
		FileName   string                 `json:"file_name"`
		Inserted   int                    `json:"inserted"`
		Skipped    int                    `json:"skipped"`
		FailedRows []leadimport.FailedRow `json:"failed_rows"`
		Summary    string                 `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "leads.csv", resp.FileName)
	assert.Equal(t, 2, resp.Inserted)
	assert.Equal(t, 1, resp.Skipped)
	assert.Equal(t, "Imported 2 leads, 1 row skipped", resp.Summary)
	require.Len(t, resp.FailedRows, 1)
	assert.Equal(t, 3, resp.FailedRows[0].LineNumber)

	require.Len(t, store.leads, 2)
	for _, l := range store.leads {
		assert.Equal(t, assignee, l.AssignedTo)
		assert.Equal(t, uuid.Nil, l.OrganizationID)
	}
	assert.Equal(t, "Pompe à chaleur", store.leads[0].ProductName)
	assert.Equal(t, leadimport.StatusPhoning, store.leads[0].Status)
	assert.Equal(t, "Isolation", store.leads[1].ProductName)
}

func TestImport_HTMXFragment(t *testing.T) {
	s := newTestServer(t, &memStore{}, testConfig())

	req := uploadRequest(t, "/api/leads/import", "leads.csv", sampleCSV, nil)
	req.Header.Set("HX-Request", "true")
	rec := serve(s, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	body := rec.Body.String()
	assert.Contains(t, body, "Imported 2 leads, 1 row skipped")
	assert.Contains(t, body, "Line 3: missing required field: postal_code")
}

func TestImport_Errors(t *testing.T) {
	tests := []struct {
		name       string
		fileName   string
		content    string
		fields     map[string]string
		maxSize    int64
		storeErr   error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "no file",
			wantStatus: http.StatusBadRequest,
			wantCode:   "FILE004",
		},
		{
			name:       "empty file",
			fileName:   "leads.csv",
			content:    " \n\n",
			wantStatus: http.StatusBadRequest,
			wantCode:   "FILE005",
		},
		{
			name:       "no header",
			fileName:   "leads.csv",
			content:    "alpha;beta\n1;2\n",
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "IMP001",
		},
		{
			name:       "file too large",
			fileName:   "leads.csv",
			content:    sampleCSV,
			maxSize:    64,
			wantStatus: http.StatusRequestEntityTooLarge,
			wantCode:   "FILE001",
		},
		{
			name:       "bad assignee",
			fileName:   "leads.csv",
			content:    sampleCSV,
			fields:     map[string]string{"assigned_to": "bob"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "IMP003",
		},
		{
			name:       "unknown default status",
			fileName:   "leads.csv",
			content:    sampleCSV,
			fields:     map[string]string{"default_status": "Hot"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "IMP002",
		},
		{
			name:       "store failure",
			fileName:   "leads.csv",
			content:    sampleCSV,
			storeErr:   errors.New("dial tcp: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "DB004",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			if tt.maxSize > 0 {
				cfg.Import.MaxFileSize = tt.maxSize
			}
			store := &memStore{err: tt.storeErr}
			s := newTestServer(t, store, cfg)

			rec := serve(s, uploadRequest(t, "/api/leads/import", tt.fileName, tt.content, tt.fields))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.NotEmpty(t, resp.Action)
			assert.Empty(t, store.leads)
		})
	}
}

func TestImport_ErrorAsHTMX(t *testing.T) {
	s := newTestServer(t, &memStore{}, testConfig())

	req := uploadRequest(t, "/api/leads/import", "", "", nil)
	req.Header.Set("HX-Request", "true")
	rec := serve(s, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `role="alert"`)
	assert.Contains(t, rec.Body.String(), "FILE004")
}

func TestPreview(t *testing.T) {
	store := &memStore{}
	s := newTestServer(t, store, testConfig())

	rec := serve(s, uploadRequest(t, "/api/leads/preview", "leads.csv", sampleCSV, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var preview core.Preview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &preview))
	assert.Len(t, preview.Rows, 2)
	assert.Equal(t, 1, preview.Skipped)
	assert.Empty(t, store.records, "preview never stores")
}

func TestPreview_HTMXEscapesValues(t *testing.T) {
	s := newTestServer(t, &memStore{}, testConfig())

	content := "full_name;email;phone_raw;city;postal_code\n" +
		"<b>Jean</b>;jean@example.fr;0601020304;Paris;75001\n"
	req := uploadRequest(t, "/api/leads/preview", "leads.csv", content, nil)
	req.Header.Set("HX-Request", "true")
	rec := serve(s, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "&lt;b&gt;Jean&lt;/b&gt;")
	assert.NotContains(t, rec.Body.String(), "<b>Jean</b>")
}

func TestColumns(t *testing.T) {
	s := newTestServer(t, &memStore{}, testConfig())

	rec := serve(s, uploadRequest(t, "/api/leads/columns", "leads.csv", "Nom;Adresse e-mail;alpha\n", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp columnsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.HasHeader)
	require.Len(t, resp.Columns, 3)
	assert.Equal(t, "alpha", resp.Columns[2].Header)
	assert.Empty(t, resp.Columns[2].Target)
}

func TestRecentImportsAndStatus(t *testing.T) {
	store := &memStore{}
	s := newTestServer(t, store, testConfig())

	for i := 0; i < 3; i++ {
		rec := serve(s, uploadRequest(t, "/api/leads/import", fmt.Sprintf("batch-%d.csv", i), sampleCSV, nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/imports?limit=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var records []core.ImportRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	assert.Len(t, records, 2)

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/imports/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var status statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, 2, status.Limiter.MaxConcurrent)
	assert.Equal(t, 0, status.Limiter.Active)
	assert.Equal(t, leadimport.Statuses, status.Statuses)
}

func TestAPIKeyRequired(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RequireAPIKey = true
	cfg.Security.APIKeys = []string{"secret"}
	s := newTestServer(t, &memStore{}, cfg)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/imports/status", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/imports/status", nil)
	req.Header.Set("X-API-Key", "secret")
	rec = serve(s, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// health stays open
	rec = serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 2, ImportLimit: 1}
	s := newTestServer(t, &memStore{}, cfg)

	for i := 0; i < 2; i++ {
		rec := serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "RATE001")
}

func TestRateLimiterWindow(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     2,
		window:   time.Minute,
		now:      func() time.Time { return now },
	}

	assert.True(t, rl.allow("a"))
	assert.True(t, rl.allow("a"))
	assert.False(t, rl.allow("a"))
	assert.True(t, rl.allow("b"), "limits are per client")

	now = now.Add(time.Minute + time.Second)
	assert.True(t, rl.allow("a"))
}

func TestRateLimiterEvictsStaleVisitors(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     2,
		window:   time.Minute,
		now:      func() time.Time { return now },
	}

	rl.allow("old")
	now = now.Add(90 * time.Second)
	rl.allow("recent")
	now = now.Add(60 * time.Second)

	rl.evictStale()
	assert.NotContains(t, rl.visitors, "old")
	assert.Contains(t, rl.visitors, "recent")
}

func TestShutdownStopsRateLimiters(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 10, ImportLimit: 2}
	svc, err := core.NewService(&memStore{}, nil, cfg.Import)
	require.NoError(t, err)
	s := NewServer(svc, cfg)
	require.Len(t, s.limiters, 2)

	require.NoError(t, s.Shutdown(context.Background()))
	for _, rl := range s.limiters {
		select {
		case <-rl.done:
		case <-time.After(time.Second):
			t.Fatal("limiter cleanup still running after Shutdown")
		}
	}

	// A second Shutdown must not panic on the closed channels
	require.NoError(t, s.Shutdown(context.Background()))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{core.ErrTooManyImports, http.StatusTooManyRequests},
		{fmt.Errorf("x.csv: %w", core.ErrFileTooLarge), http.StatusRequestEntityTooLarge},
		{&http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge},
		{fmt.Errorf("x.csv: %w", core.ErrNoHeader), http.StatusUnprocessableEntity},
		{core.ErrNoFile, http.StatusBadRequest},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestWantsJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/page", nil)
	assert.False(t, wantsJSON(req))

	req.Header.Set("Accept", "application/json")
	assert.True(t, wantsJSON(req))

	assert.True(t, wantsJSON(httptest.NewRequest(http.MethodGet, "/api/imports", nil)))
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	assert.Equal(t, "192.0.2.1", clientIP(req))

	req.RemoteAddr = "198.51.100.7"
	assert.Equal(t, "198.51.100.7", clientIP(req))

	ctx := WithRequestMetadata(context.Background(), req)
	assert.Equal(t, "198.51.100.7", core.ClientIPFromContext(ctx))
	assert.Equal(t, req.UserAgent(), core.UserAgentFromContext(ctx))
}
