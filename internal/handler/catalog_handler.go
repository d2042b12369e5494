package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-planner-api/internal/dto"
	internalmiddleware "github.com/noah-isme/course-planner-api/internal/middleware"
	"github.com/noah-isme/course-planner-api/internal/models"
	"github.com/noah-isme/course-planner-api/internal/service"
	"github.com/noah-isme/course-planner-api/pkg/jobs"
	"github.com/noah-isme/course-planner-api/pkg/response"
)

type catalogReader interface {
	List() (*dto.CourseListResponse, error)
	Get(code string) (*models.Course, error)
	ScheduleReload(requestedBy string) (string, error)
	ReloadStatus(id string) (jobs.State, error)
}

// CatalogHandler exposes the course catalog and its administration.
type CatalogHandler struct {
	service catalogReader
}

// NewCatalogHandler constructs the handler.
func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: svc}
}

// Courses godoc
// @Summary List every course in the active catalog
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /courses [get]
func (h *CatalogHandler) Courses(c *gin.Context) {
	result, err := h.service.List()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Course godoc
// @Summary Get a single course
// @Tags Catalog
// @Produce json
// @Param code path string true "Course code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{code} [get]
func (h *CatalogHandler) Course(c *gin.Context) {
	course, err := h.service.Get(strings.ToUpper(strings.TrimSpace(c.Param("code"))))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// Reload godoc
// @Summary Reload the catalog from its source
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 202 {object} response.Envelope
// @Router /admin/catalog/reload [post]
func (h *CatalogHandler) Reload(c *gin.Context) {
	requestedBy := ""
	if claims, ok := internalmiddleware.CurrentClaims(c); ok {
		requestedBy = claims.Subject
	}
	id, err := h.service.ScheduleReload(requestedBy)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, dto.ReloadResponse{JobID: id, Status: string(jobs.StatusQueued)})
}

// ReloadStatus godoc
// @Summary Get the state of a catalog reload
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /admin/catalog/reload/{id} [get]
func (h *CatalogHandler) ReloadStatus(c *gin.Context) {
	state, err := h.service.ReloadStatus(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state)
}
