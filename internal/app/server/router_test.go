package server_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartraise/internal/app/server"
	"smartraise/internal/domain/auth"
	"smartraise/internal/platform/config"
)

const (
	testSecret   = "router-test-secret"
	testEmail    = "admin@example.com"
	testPassword = "s3cret-pass"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
	RequestID string `json:"requestId"`
}

type testServer struct {
	t      *testing.T
	router http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := config.Default()
	cfg.StorageDriver = config.StorageMemory
	cfg.JWTSecret = testSecret
	cfg.SeedAdminEmail = testEmail
	cfg.SeedAdminPassword = testPassword
	cfg.UploadDir = t.TempDir()

	app, err := server.Build(t.Context(), cfg)
	require.NoError(t, err)
	t.Cleanup(app.Close)
	return &testServer{t: t, router: app.Router}
}

func (s *testServer) do(method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	s.t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) json(method, path, token string, payload any) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(s.t, err)
		body = bytes.NewReader(raw)
	}
	rec := s.do(method, path, token, body, "application/json")
	var env envelope
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func (s *testServer) adminToken() string {
	s.t.Helper()
	rec, env := s.json(http.MethodPost, "/api/auth/login", "", map[string]string{"email": testEmail, "password": testPassword})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	var session struct {
		Token string `json:"token"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &session))
	require.NotEmpty(s.t, session.Token)
	return session.Token
}

func viewerToken(t *testing.T) string {
	t.Helper()
	token, err := auth.GenerateToken(testSecret, auth.Claims{UserID: uuid.NewString(), Email: "viewer@example.com", Role: auth.RoleViewer}, time.Hour)
	require.NoError(t, err)
	return token
}

func (s *testServer) createEmployee(token, name, department string, salary float64) string {
	s.t.Helper()
	rec, env := s.json(http.MethodPost, "/api/employees", token, map[string]any{
		"name": name, "department": department, "role": "Engineer", "salary": salary,
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	var emp struct {
		ID string `json:"id"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &emp))
	return emp.ID
}

func TestProbes(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/health", "/healthz", "/readyz"} {
		rec := srv.do(http.MethodGet, path, "", nil, "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	srv := newTestServer(t)

	rec, env := srv.json(http.MethodGet, "/api/nope", "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "not_found", env.Error.Code)
	assert.NotEmpty(t, env.RequestID)
}

func TestAPIRequiresToken(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{name: "employees", method: http.MethodGet, path: "/api/employees"},
		{name: "performance", method: http.MethodGet, path: "/api/performance"},
		{name: "predict", method: http.MethodPost, path: "/api/performance/predict"},
		{name: "me", method: http.MethodGet, path: "/api/auth/me"},
		{name: "import", method: http.MethodPost, path: "/api/import"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := srv.json(tt.method, tt.path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			require.NotNil(t, env.Error)
			assert.Equal(t, "please authenticate", env.Error.Message)
		})
	}
}

func TestLoginAndMe(t *testing.T) {
	srv := newTestServer(t)
	token := srv.adminToken()

	rec, env := srv.json(http.MethodGet, "/api/auth/me", token, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var me auth.User
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, testEmail, me.Email)
	assert.Equal(t, auth.RoleAdmin, me.Role)
	assert.NotContains(t, rec.Body.String(), "password")

	rec, _ = srv.json(http.MethodPost, "/api/auth/login", "", map[string]string{"email": testEmail, "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestViewerCannotMutate(t *testing.T) {
	srv := newTestServer(t)
	admin := srv.adminToken()
	viewer := viewerToken(t)
	id := srv.createEmployee(admin, "Ada", "Engineering", 90000)

	rec, _ := srv.json(http.MethodGet, "/api/employees", viewer, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env := srv.json(http.MethodPost, "/api/employees", viewer, map[string]any{"name": "X", "department": "Y", "role": "Z", "salary": 1})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "forbidden", env.Error.Code)

	rec, _ = srv.json(http.MethodDelete, "/api/employees/"+id, viewer, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestEmployeeLifecycle(t *testing.T) {
	srv := newTestServer(t)
	token := srv.adminToken()
	id := srv.createEmployee(token, "Ada", "Engineering", 90000)

	rec, env := srv.json(http.MethodPatch, "/api/employees/"+id, token, map[string]any{"salary": 0})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var emp struct {
		Name   string  `json:"name"`
		Salary float64 `json:"salary"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &emp))
	assert.Equal(t, "Ada", emp.Name)
	assert.Zero(t, emp.Salary)

	rec, env = srv.json(http.MethodPost, "/api/employees", token, map[string]any{"name": " ", "department": "Ops", "role": "SRE"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "validation_error", env.Error.Code)
	assert.Contains(t, string(env.Error.Details), "fields")

	rec, _ = srv.json(http.MethodDelete, "/api/employees/"+id, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = srv.json(http.MethodGet, "/api/employees/"+id, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMalformedJSON(t *testing.T) {
	srv := newTestServer(t)
	token := srv.adminToken()

	rec := srv.do(http.MethodPost, "/api/employees", token, strings.NewReader(`{"name":`), "application/json")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPerformanceFlow(t *testing.T) {
	srv := newTestServer(t)
	token := srv.adminToken()
	id := srv.createEmployee(token, "Ada", "Engineering", 60000)

	rec, env := srv.json(http.MethodPost, "/api/performance", token, map[string]any{
		"employeeId": id, "kpiScore": 80, "attendance": 90, "peerReview": 70, "date": "2024-03-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		ID       string `json:"id"`
		Employee struct {
			Name string `json:"name"`
		} `json:"employee"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "Ada", created.Employee.Name)

	rec, _ = srv.json(http.MethodPost, "/api/performance", token, map[string]any{
		"employeeId": id, "kpiScore": 150, "attendance": 90, "peerReview": 70,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = srv.json(http.MethodPatch, "/api/performance/"+created.ID, token, map[string]any{"notes": "calibrated"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated struct {
		KPIScore float64 `json:"kpiScore"`
		Notes    string  `json:"notes"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, 80.0, updated.KPIScore)
	assert.Equal(t, "calibrated", updated.Notes)

	rec, env = srv.json(http.MethodGet, "/api/performance/employee/"+id, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var records []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &records))
	assert.Len(t, records, 1)

	rec, env = srv.json(http.MethodGet, "/api/performance/department/Engineering", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary struct {
		AvgKPIScore float64 `json:"avgKpiScore"`
		Count       int     `json:"count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, 1, summary.Count)
	assert.Equal(t, 80.0, summary.AvgKPIScore)

	rec, _ = srv.json(http.MethodGet, "/api/performance/department/Marketing", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(http.MethodGet, "/api/performance/department/Engineering/report", token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "engineering-performance.pdf")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))

	rec, _ = srv.json(http.MethodDelete, "/api/performance/"+created.ID, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = srv.json(http.MethodGet, "/api/performance/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPredictForViewer(t *testing.T) {
	srv := newTestServer(t)

	rec, env := srv.json(http.MethodPost, "/api/performance/predict", viewerToken(t), map[string]any{
		"kpiScore": 80, "attendance": 90, "peerReview": 70, "currentSalary": 60000,
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var prediction struct {
		PerformanceScore float64 `json:"performanceScore"`
		SuggestedRaise   float64 `json:"suggestedRaise"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &prediction))
	assert.InDelta(t, 0.81, prediction.PerformanceScore, 1e-9)
	assert.Equal(t, 4860.0, prediction.SuggestedRaise)
}

func multipartUpload(t *testing.T, filename, content string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestImportCSV(t *testing.T) {
	srv := newTestServer(t)
	token := srv.adminToken()
	csv := "name,department,role,salary,kpiScore,attendance,peerReview\n" +
		"Ada,Engineering,Engineer,90000,88,95,90\n" +
		"Grace,Engineering,Manager,110000,,,\n"

	body, contentType := multipartUpload(t, "staff.csv", csv)
	rec := srv.do(http.MethodPost, "/api/import", token, body, contentType)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	var result struct {
		Message          string `json:"message"`
		RowsImported     int    `json:"rowsImported"`
		EmployeesCreated int    `json:"employeesCreated"`
		RecordsCreated   int    `json:"recordsCreated"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, "File processed successfully", result.Message)
	assert.Equal(t, 2, result.RowsImported)
	assert.Equal(t, 2, result.EmployeesCreated)
	assert.Equal(t, 1, result.RecordsCreated)

	_, listEnv := srv.json(http.MethodGet, "/api/employees", token, nil)
	var employees []json.RawMessage
	require.NoError(t, json.Unmarshal(listEnv.Data, &employees))
	assert.Len(t, employees, 2)
}

func TestImportRejects(t *testing.T) {
	srv := newTestServer(t)
	token := srv.adminToken()

	body, contentType := multipartUpload(t, "notes.txt", "hello")
	rec := srv.do(http.MethodPost, "/api/import", token, body, contentType)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("other", "x"))
	require.NoError(t, mw.Close())
	rec = srv.do(http.MethodPost, "/api/import", token, &buf, mw.FormDataContentType())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "No file uploaded")

	body, contentType = multipartUpload(t, "staff.csv", "name\nAda\n")
	rec = srv.do(http.MethodPost, "/api/import", viewerToken(t), body, contentType)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestImportSample(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodGet, "/api/import/sample/csv", "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "employee_template.csv")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "name,department,role,salary"))

	rec = srv.do(http.MethodGet, "/api/import/sample/excel", "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "employee_template.xlsx")

	rec = srv.do(http.MethodGet, "/api/import/sample/pdf", "", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsExposeRoutePatterns(t *testing.T) {
	srv := newTestServer(t)
	token := srv.adminToken()
	id := srv.createEmployee(token, "Ada", "Engineering", 1)
	srv.json(http.MethodGet, "/api/employees/"+id, token, nil)

	rec := srv.do(http.MethodGet, "/metrics", "", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/api/employees/{employeeID}"`)
	assert.NotContains(t, rec.Body.String(), id)
}
