package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-planner-api/internal/dto"
	"github.com/noah-isme/course-planner-api/internal/models"
	"github.com/noah-isme/course-planner-api/internal/scheduler"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
	"github.com/noah-isme/course-planner-api/pkg/middleware/requestid"
)

// PlanCachePrefix namespaces planner responses in the cache.
const PlanCachePrefix = "plan:"

// CatalogProvider hands out the active catalog snapshot.
type CatalogProvider interface {
	Snapshot() (*models.Catalog, error)
}

// PlannerConfig bounds the schedule search.
type PlannerConfig struct {
	SearchCap   int
	ResponseCap int
	DirectCap   int
	MaxItems    int
	CacheTTL    time.Duration
}

// PlannerService turns schedule requests into conflict-free section combinations.
type PlannerService struct {
	catalog   CatalogProvider
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       PlannerConfig
}

// NewPlannerService constructs a PlannerService.
func NewPlannerService(catalog CatalogProvider, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg PlannerConfig) *PlannerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.SearchCap <= 0 {
		cfg.SearchCap = scheduler.DefaultSearchCap
	}
	if cfg.ResponseCap <= 0 {
		cfg.ResponseCap = scheduler.DefaultResponseCap
	}
	if cfg.DirectCap <= 0 {
		cfg.DirectCap = scheduler.DefaultDirectCap
	}
	return &PlannerService{catalog: catalog, cache: cache, metrics: metrics, validator: validate, logger: logger, cfg: cfg}
}

// Generate runs the interactive path: a wide search diversified down to the response cap.
func (s *PlannerService) Generate(ctx context.Context, req dto.ScheduleRequest) (*dto.ScheduleResponse, *dto.PlanMeta, error) {
	return s.run(ctx, req, PlanModeDiversified)
}

// Solve runs the direct path: search order, capped, no diversification.
func (s *PlannerService) Solve(ctx context.Context, req dto.ScheduleRequest) (*dto.ScheduleResponse, *dto.PlanMeta, error) {
	return s.run(ctx, req, PlanModeDirect)
}

func (s *PlannerService) run(ctx context.Context, req dto.ScheduleRequest, mode string) (*dto.ScheduleResponse, *dto.PlanMeta, error) {
	if err := s.validate(req); err != nil {
		return nil, nil, err
	}
	req.Items = normalizeCodes(req.Items)

	catalog, err := s.catalog.Snapshot()
	if err != nil {
		return nil, nil, err
	}

	log := s.logger.With(zap.String("mode", mode))
	if reqID := requestid.FromContext(ctx); reqID != "" {
		log = log.With(zap.String("request_id", reqID))
	}

	key := planCacheKey(catalog.Version(), mode, req)
	var cached dto.CachedPlan
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		cached.Meta.CacheHit = true
		log.Debug("plan served from cache", zap.String("key", key))
		return &cached.Response, &cached.Meta, nil
	}

	schedReq := toSchedulerRequest(req)
	start := time.Now()
	var result scheduler.Result
	if mode == PlanModeDirect {
		result = scheduler.Solve(catalog, schedReq, s.cfg.DirectCap)
	} else {
		result = scheduler.Plan(catalog, schedReq, scheduler.Options{SearchCap: s.cfg.SearchCap, ResponseCap: s.cfg.ResponseCap})
	}
	elapsed := time.Since(start)

	if len(result.Skipped) > 0 {
		log.Warn("course codes not found in catalog", zap.Strings("codes", result.Skipped))
	}
	if result.Infeasible != "" {
		log.Info("no eligible sections under constraints", zap.String("course", result.Infeasible))
	}

	resp := toScheduleResponse(result)
	meta := &dto.PlanMeta{
		Found:          result.Found,
		Returned:       len(resp.Schedules),
		Capped:         result.Capped,
		Groups:         result.Groups,
		Skipped:        result.Skipped,
		Infeasible:     result.Infeasible,
		CatalogVersion: catalog.Version(),
	}

	log.Info("schedule generation completed",
		zap.Int("courses", len(req.Items)),
		zap.Int("found", meta.Found),
		zap.Int("returned", meta.Returned),
		zap.Bool("capped", meta.Capped),
		zap.Duration("elapsed", elapsed),
	)
	s.metrics.ObservePlan(PlanObservation{
		Mode:       mode,
		Duration:   elapsed,
		Found:      meta.Found,
		Returned:   meta.Returned,
		Capped:     meta.Capped,
		Unknown:    len(result.Skipped),
		Infeasible: result.Infeasible != "",
	})

	_ = s.cache.Set(ctx, key, dto.CachedPlan{Response: *resp, Meta: *meta}, s.cfg.CacheTTL)

	return resp, meta, nil
}

func (s *PlannerService) validate(req dto.ScheduleRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "items is required")
	}
	if s.cfg.MaxItems > 0 && len(req.Items) > s.cfg.MaxItems {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("at most %d course codes per request", s.cfg.MaxItems))
	}
	return nil
}

// normalizeCodes matches the catalog's upper-case course codes.
func normalizeCodes(items []string) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = strings.ToUpper(strings.TrimSpace(item))
	}
	return out
}

func toSchedulerRequest(req dto.ScheduleRequest) scheduler.Request {
	return scheduler.Request{
		Items: req.Items,
		Constraints: scheduler.Constraints{
			Block840930: req.Constraints.No840,
			FreeDays:    req.Constraints.DayOffs,
		},
	}
}

func toScheduleResponse(result scheduler.Result) *dto.ScheduleResponse {
	resp := &dto.ScheduleResponse{Schedules: make([][]models.Section, 0, len(result.Schedules))}
	for _, schedule := range result.Schedules {
		sections := make([]models.Section, len(schedule))
		for i, section := range schedule {
			sections[i] = *section
		}
		resp.Schedules = append(resp.Schedules, sections)
	}
	return resp
}

// planCacheKey is stable for requests that yield the same result against the
// same catalog. Course order matters to the output; free days do not.
func planCacheKey(version, mode string, req dto.ScheduleRequest) string {
	days := uniqueSorted(req.Constraints.DayOffs)
	payload, _ := json.Marshal(struct {
		Items   []string `json:"i"`
		No840   bool     `json:"n"`
		DayOffs []int    `json:"d"`
	}{req.Items, req.Constraints.No840, days})
	sum := sha256.Sum256(payload)
	return PlanCachePrefix + version + ":" + mode + ":" + hex.EncodeToString(sum[:16])
}

func uniqueSorted(values []int) []int {
	if len(values) == 0 {
		return nil
	}
	out := append([]int(nil), values...)
	sort.Ints(out)
	n := 1
	for i := 1; i < len(out); i++ {
		if out[i] != out[n-1] {
			out[n] = out[i]
			n++
		}
	}
	return out[:n]
}
