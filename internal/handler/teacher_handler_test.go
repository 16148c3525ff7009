package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dms-admin-api/internal/models"
	"github.com/noah-isme/dms-admin-api/internal/service"
	appErrors "github.com/noah-isme/dms-admin-api/pkg/errors"
)

type teacherServiceMock struct {
	filter    models.TeacherFilter
	created   service.TeacherRequest
	createErr error
	push      models.PushResult
	getErr    error
	deleted   string
}

func (m *teacherServiceMock) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, *models.Pagination, error) {
	m.filter = filter
	return []models.Teacher{{ID: "t1", FirstName: "Ana"}}, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: 1}, nil
}

func (m *teacherServiceMock) Get(ctx context.Context, id string) (*models.Teacher, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return &models.Teacher{ID: id, FirstName: "Ana"}, nil
}

func (m *teacherServiceMock) Create(ctx context.Context, req service.TeacherRequest) (*models.Teacher, models.PushResult, error) {
	m.created = req
	if m.createErr != nil {
		return nil, models.PushResult{}, m.createErr
	}
	return &models.Teacher{ID: "t1", FirstName: req.FirstName, Email: req.Email}, m.push, nil
}

func (m *teacherServiceMock) Update(ctx context.Context, id string, req service.TeacherRequest) (*models.Teacher, models.PushResult, error) {
	return &models.Teacher{ID: id, FirstName: req.FirstName}, m.push, nil
}

func (m *teacherServiceMock) Delete(ctx context.Context, id string) error {
	m.deleted = id
	return nil
}

type exporterMock struct {
	roster service.Roster
	format service.ExportFormat
}

func (m *exporterMock) Render(ctx context.Context, roster service.Roster, format service.ExportFormat) (*service.ExportFile, error) {
	m.roster, m.format = roster, format
	if format != service.ExportFormatCSV && format != service.ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
	return &service.ExportFile{Filename: string(roster) + ".csv", ContentType: "text/csv", Body: []byte("a,b\n")}, nil
}

type envelope struct {
	Data       json.RawMessage            `json:"data"`
	Error      *appErrors.Error           `json:"error"`
	Pagination *models.Pagination         `json:"pagination"`
	Meta       map[string]json.RawMessage `json:"meta"`
}

func newTestRouter(h Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h.Register(r.Group("/api/v1"))
	return r
}

func perform(t *testing.T, r http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "text/csv" {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func TestTeacherHandlerCreateReportsSheetSync(t *testing.T) {
	svc := &teacherServiceMock{push: models.PushResult{Status: models.PushStatusFailed, Action: "addTeacher", Reason: "timeout"}}
	r := newTestRouter(Handlers{Teachers: NewTeacherHandler(svc, &exporterMock{})})

	w, env := perform(t, r, http.MethodPost, "/api/v1/teachers", map[string]string{"firstName": "Ana", "email": "ana@example.com"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Ana", svc.created.FirstName)

	var push models.PushResult
	require.NoError(t, json.Unmarshal(env.Meta["sheetSync"], &push))
	assert.Equal(t, models.PushStatusFailed, push.Status)
	assert.Equal(t, "timeout", push.Reason)
}

func TestTeacherHandlerCreateErrors(t *testing.T) {
	svc := &teacherServiceMock{createErr: appErrors.Clone(appErrors.ErrDuplicateEmail, "email already used")}
	r := newTestRouter(Handlers{Teachers: NewTeacherHandler(svc, &exporterMock{})})

	w, env := perform(t, r, http.MethodPost, "/api/v1/teachers", `{"firstName":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, appErrors.ErrValidation.Code, env.Error.Code)

	w, env = perform(t, r, http.MethodPost, "/api/v1/teachers", map[string]string{"firstName": "Ana", "email": "ana@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "DUPLICATE_EMAIL", env.Error.Code)
}

func TestTeacherHandlerListPassesFilter(t *testing.T) {
	svc := &teacherServiceMock{}
	r := newTestRouter(Handlers{Teachers: NewTeacherHandler(svc, &exporterMock{})})

	w, env := perform(t, r, http.MethodGet, "/api/v1/teachers?search=%20piano%20&page=2&limit=5&sort=email&order=asc", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "piano", svc.filter.Search)
	assert.Equal(t, 2, svc.filter.Page)
	assert.Equal(t, 5, svc.filter.PageSize)
	assert.Equal(t, "email", svc.filter.SortBy)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 1, env.Pagination.TotalCount)
}

func TestTeacherHandlerGetNotFound(t *testing.T) {
	svc := &teacherServiceMock{getErr: appErrors.Clone(appErrors.ErrNotFound, "teacher not found")}
	r := newTestRouter(Handlers{Teachers: NewTeacherHandler(svc, &exporterMock{})})

	w, env := perform(t, r, http.MethodGet, "/api/v1/teachers/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "teacher not found", env.Error.Message)
}

func TestTeacherHandlerDeleteAndExport(t *testing.T) {
	svc := &teacherServiceMock{}
	exports := &exporterMock{}
	r := newTestRouter(Handlers{Teachers: NewTeacherHandler(svc, exports)})

	w, _ := perform(t, r, http.MethodDelete, "/api/v1/teachers/t9", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "t9", svc.deleted)

	w, _ = perform(t, r, http.MethodGet, "/api/v1/teachers/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.RosterTeachers, exports.roster)
	assert.Equal(t, service.ExportFormatCSV, exports.format)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "teachers.csv")
	assert.Equal(t, "a,b\n", w.Body.String())

	w, _ = perform(t, r, http.MethodGet, "/api/v1/teachers/export?format=xlsx", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
