package dto

import (
	"time"

	"github.com/noah-isme/course-planner-api/internal/models"
)

// ScheduleConstraints carries the personal time-off rules of a request.
type ScheduleConstraints struct {
	No840   bool  `json:"no840"`
	DayOffs []int `json:"day_offs"`
}

// ScheduleRequest asks for every conflict-free section combination of the listed courses.
type ScheduleRequest struct {
	Items       []string            `json:"items" validate:"required"`
	Constraints ScheduleConstraints `json:"constraints"`
}

// ScheduleResponse keeps the legacy response shape: one section per requested course, per schedule.
type ScheduleResponse struct {
	Schedules [][]models.Section `json:"schedules"`
}

// PlanMeta summarises how a response was produced.
type PlanMeta struct {
	Found          int      `json:"found"`
	Returned       int      `json:"returned"`
	Capped         bool     `json:"capped"`
	Groups         int      `json:"groups,omitempty"`
	Skipped        []string `json:"skipped,omitempty"`
	Infeasible     string   `json:"infeasible,omitempty"`
	CatalogVersion string   `json:"catalog_version"`
	CacheHit       bool     `json:"cache_hit"`
}

// CachedPlan is the payload stored in the response cache.
type CachedPlan struct {
	Response ScheduleResponse `json:"response"`
	Meta     PlanMeta         `json:"meta"`
}

// SubmitRequest is the body of the legacy submit endpoint.
type SubmitRequest struct {
	Items []string `json:"items"`
}

// SubmitResponse echoes the submitted course list.
type SubmitResponse struct {
	Received []string `json:"received"`
}

// CourseListResponse returns the whole catalog keyed by course code.
type CourseListResponse struct {
	Courses map[string]*models.Course `json:"courses"`
}

// Export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

// ExportRequest renders one chosen schedule as a downloadable timetable.
type ExportRequest struct {
	Format   string              `json:"format" validate:"required,oneof=csv pdf"`
	Title    string              `json:"title" validate:"omitempty,max=120"`
	Sections []models.SectionRef `json:"sections" validate:"required,min=1,dive"`
}

// ExportResult is the rendered file.
type ExportResult struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ReloadResponse acknowledges an enqueued catalog reload.
type ReloadResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// CatalogStatus describes the active catalog snapshot.
type CatalogStatus struct {
	Ready    bool      `json:"ready"`
	Version  string    `json:"version,omitempty"`
	Courses  int       `json:"courses"`
	LoadedAt time.Time `json:"loaded_at,omitempty"`
	Source   string    `json:"source"`
}
