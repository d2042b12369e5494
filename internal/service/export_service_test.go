package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-planner-api/internal/dto"
	"github.com/noah-isme/course-planner-api/internal/models"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
	"github.com/noah-isme/course-planner-api/pkg/export"
)

type failingRenderer struct{}

func (failingRenderer) Render(export.Timetable) ([]byte, error) { return nil, errors.New("boom") }
func (failingRenderer) ContentType() string                      { return "application/pdf" }
func (failingRenderer) Extension() string                        { return "pdf" }

func newExportServiceForTest(pdf timetableRenderer) *ExportService {
	catalog := staticCatalog{catalog: models.NewCatalog(fixtureCourses(), "v1")}
	svc := NewExportService(catalog, nil, nil, nil, pdf)
	svc.now = func() time.Time { return time.Date(2025, 9, 22, 8, 0, 0, 0, time.UTC) }
	return svc
}

func TestExportServiceCSV(t *testing.T) {
	svc := newExportServiceForTest(nil)

	result, err := svc.Export(context.Background(), dto.ExportRequest{
		Format: "CSV",
		Sections: []models.SectionRef{
			{Code: "MATH101", Section: "02"},
			{Code: "CS201", Section: "A1"},
			{Code: "HIST191", Section: "0"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Equal(t, "timetable-20250922-080000.csv", result.Filename)

	records, err := csv.NewReader(bytes.NewReader(result.Body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"Monday", "08:40-09:30", "CS201", "A1", "10001", "", ""}, records[1])
	assert.Equal(t, "Wednesday", records[2][0])
	assert.Equal(t, []string{"TBA", "TBA", "HIST191", "0", "30001", "Online", ""}, records[3])
}

func TestExportServicePDF(t *testing.T) {
	svc := newExportServiceForTest(nil)

	result, err := svc.Export(context.Background(), dto.ExportRequest{
		Format:   dto.ExportFormatPDF,
		Title:    "My week",
		Sections: []models.SectionRef{{Code: "CS201", Section: "A2"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, bytes.HasPrefix(result.Body, []byte("%PDF-")))
}

func TestExportServiceResolvesByCRN(t *testing.T) {
	svc := newExportServiceForTest(nil)

	result, err := svc.Export(context.Background(), dto.ExportRequest{
		Format:   "csv",
		Sections: []models.SectionRef{{Code: "CS201", CRN: "10002", Section: "A1"}},
	})
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(result.Body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "A2", records[1][3])
	assert.Equal(t, "10002", records[1][4])

	_, err = svc.Export(context.Background(), dto.ExportRequest{
		Format:   "csv",
		Sections: []models.SectionRef{{Code: "CS201", CRN: "20001"}},
	})
	require.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Contains(t, err.Error(), "CS201/crn:20001")

	_, err = svc.Export(context.Background(), dto.ExportRequest{
		Format:   "csv",
		Sections: []models.SectionRef{{Code: "CS201"}},
	})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestExportServiceErrors(t *testing.T) {
	svc := newExportServiceForTest(failingRenderer{})

	_, err := svc.Export(context.Background(), dto.ExportRequest{Format: "xlsx", Sections: []models.SectionRef{{Code: "CS201", Section: "A1"}}})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Export(context.Background(), dto.ExportRequest{Format: "csv"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Export(context.Background(), dto.ExportRequest{Format: "csv", Sections: []models.SectionRef{{Code: "CS201", Section: "Z9"}}})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = svc.Export(context.Background(), dto.ExportRequest{Format: "pdf", Sections: []models.SectionRef{{Code: "CS201", Section: "A1"}}})
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}
