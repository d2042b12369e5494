package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-planner-api/internal/dto"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
)

type exporterMock struct {
	captured dto.ExportRequest
	err      error
}

func (m *exporterMock) Export(ctx context.Context, req dto.ExportRequest) (*dto.ExportResult, error) {
	m.captured = req
	if m.err != nil {
		return nil, m.err
	}
	return &dto.ExportResult{Filename: "timetable-20250101-000000.csv", ContentType: "text/csv", Body: []byte("course,section\nCS201,A1\n")}, nil
}

func newExportRouter(mock *exporterMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := &ExportHandler{service: mock}
	r := gin.New()
	r.POST("/schedule/export", handler.Export)
	return r
}

func TestExportAttachment(t *testing.T) {
	mock := &exporterMock{}
	r := newExportRouter(mock)

	w := postJSON(r, "/schedule/export", `{"format":"csv","sections":[{"code":"CS201","section":"A1"}]}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="timetable-20250101-000000.csv"`, w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Body.String(), "CS201,A1")
	require.Len(t, mock.captured.Sections, 1)
	assert.Equal(t, "A1", mock.captured.Sections[0].Section)
}

func TestExportMalformedBody(t *testing.T) {
	r := newExportRouter(&exporterMock{})

	w := postJSON(r, "/schedule/export", `[`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportServiceErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", appErrors.Clone(appErrors.ErrNotFound, "section CS201/Z9 not found"), http.StatusNotFound},
		{"validation", appErrors.Clone(appErrors.ErrValidation, "invalid export payload"), http.StatusBadRequest},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newExportRouter(&exporterMock{err: tc.err})
			w := postJSON(r, "/schedule/export", `{"format":"pdf","sections":[{"code":"CS201","section":"Z9"}]}`)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}
