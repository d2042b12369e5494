package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-planner-api/internal/dto"
	"github.com/noah-isme/course-planner-api/internal/models"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
	"github.com/noah-isme/course-planner-api/pkg/export"
)

type timetableRenderer interface {
	Render(t export.Timetable) ([]byte, error)
	ContentType() string
	Extension() string
}

// ExportService renders a chosen schedule as a downloadable timetable.
type ExportService struct {
	catalog   CatalogProvider
	renderers map[string]timetableRenderer
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to the
// package defaults.
func NewExportService(catalog CatalogProvider, validate *validator.Validate, logger *zap.Logger, csv, pdf timetableRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		catalog: catalog,
		renderers: map[string]timetableRenderer{
			dto.ExportFormatCSV: csv,
			dto.ExportFormatPDF: pdf,
		},
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Export resolves the referenced sections and renders them.
func (s *ExportService) Export(ctx context.Context, req dto.ExportRequest) (*dto.ExportResult, error) {
	req.Format = strings.ToLower(strings.TrimSpace(req.Format))
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export payload")
	}

	catalog, err := s.catalog.Snapshot()
	if err != nil {
		return nil, err
	}

	timetable := export.Timetable{Title: req.Title}
	for _, ref := range req.Sections {
		section, ok := catalog.FindSection(ref)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("section %s not found", ref))
		}
		timetable.Entries = append(timetable.Entries, entriesOf(section)...)
	}

	renderer := s.renderers[req.Format]
	body, err := renderer.Render(timetable)
	if err != nil {
		s.logger.Error("timetable render failed", zap.String("format", req.Format), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable")
	}

	filename := fmt.Sprintf("timetable-%s.%s", s.now().UTC().Format("20060102-150405"), renderer.Extension())
	return &dto.ExportResult{Filename: filename, ContentType: renderer.ContentType(), Body: body}, nil
}

func entriesOf(section *models.Section) []export.Entry {
	entries := make([]export.Entry, 0, len(section.Schedule))
	for _, m := range section.Schedule {
		entry := export.Entry{
			Course:     section.Code,
			Section:    section.Label,
			CRN:        section.CRN,
			Day:        m.DayIndex,
			StartMin:   -1,
			EndMin:     -1,
			Where:      m.Where,
			Instructor: m.Instructor,
		}
		if m.HasFixedTime() {
			entry.StartMin = *m.StartMin
			entry.EndMin = *m.EndMin
		} else {
			entry.Day = models.NoMeetingDay
		}
		entries = append(entries, entry)
	}
	if len(entries) == 0 {
		entries = append(entries, export.Entry{
			Course:   section.Code,
			Section:  section.Label,
			CRN:      section.CRN,
			Day:      models.NoMeetingDay,
			StartMin: -1,
			EndMin:   -1,
		})
	}
	return entries
}
