package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-planner-api/internal/dto"
	internalmiddleware "github.com/noah-isme/course-planner-api/internal/middleware"
	"github.com/noah-isme/course-planner-api/internal/service"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
	"github.com/noah-isme/course-planner-api/pkg/response"
)

type planner interface {
	Generate(ctx context.Context, req dto.ScheduleRequest) (*dto.ScheduleResponse, *dto.PlanMeta, error)
	Solve(ctx context.Context, req dto.ScheduleRequest) (*dto.ScheduleResponse, *dto.PlanMeta, error)
}

// PlannerHandler exposes the schedule planning endpoints.
type PlannerHandler struct {
	service planner
}

// NewPlannerHandler constructs the handler.
func NewPlannerHandler(svc *service.PlannerService) *PlannerHandler {
	return &PlannerHandler{service: svc}
}

// Schedule godoc
// @Summary Generate diversified conflict-free schedules
// @Description Enumerates section combinations, one per requested course, and interleaves distinct weekly time patterns.
// @Tags Planner
// @Accept json
// @Produce json
// @Param payload body dto.ScheduleRequest true "Courses and constraints"
// @Success 200 {object} response.Envelope
// @Router /schedule [post]
func (h *PlannerHandler) Schedule(c *gin.Context) {
	h.handle(c, h.service.Generate)
}

// Raw godoc
// @Summary Generate schedules in search order
// @Description Direct search without diversification, capped lower than the interactive endpoint.
// @Tags Planner
// @Accept json
// @Produce json
// @Param payload body dto.ScheduleRequest true "Courses and constraints"
// @Success 200 {object} response.Envelope
// @Router /schedule/raw [post]
func (h *PlannerHandler) Raw(c *gin.Context) {
	h.handle(c, h.service.Solve)
}

// Submit godoc
// @Summary Echo a submitted course list
// @Tags Planner
// @Accept json
// @Produce json
// @Param payload body dto.SubmitRequest true "Course list"
// @Success 200 {object} response.Envelope
// @Router /submit [post]
func (h *PlannerHandler) Submit(c *gin.Context) {
	var req dto.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid submit payload"))
		return
	}
	if req.Items == nil {
		req.Items = []string{}
	}
	response.JSON(c, http.StatusOK, dto.SubmitResponse{Received: req.Items})
}

type planFunc func(ctx context.Context, req dto.ScheduleRequest) (*dto.ScheduleResponse, *dto.PlanMeta, error)

func (h *PlannerHandler) handle(c *gin.Context, run planFunc) {
	var req dto.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid schedule payload"))
		return
	}

	result, meta, err := run(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	internalmiddleware.SetCacheHit(c, meta.CacheHit)
	internalmiddleware.SetMeta(c, "found", meta.Found)
	internalmiddleware.SetMeta(c, "returned", meta.Returned)
	internalmiddleware.SetMeta(c, "capped", meta.Capped)
	internalmiddleware.SetMeta(c, "catalog_version", meta.CatalogVersion)
	if meta.Groups > 0 {
		internalmiddleware.SetMeta(c, "groups", meta.Groups)
	}
	if len(meta.Skipped) > 0 {
		internalmiddleware.SetMeta(c, "skipped", meta.Skipped)
	}
	if meta.Infeasible != "" {
		internalmiddleware.SetMeta(c, "infeasible", meta.Infeasible)
	}
	response.JSON(c, http.StatusOK, result, internalmiddleware.ExtractMeta(c))
}
