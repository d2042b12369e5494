package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/course-planner-api/internal/dto"
	"github.com/noah-isme/course-planner-api/internal/models"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
	"github.com/noah-isme/course-planner-api/pkg/middleware/requestid"
)

func newPlannerForTest(cache *CacheService, logger *zap.Logger, cfg PlannerConfig) *PlannerService {
	catalog := staticCatalog{catalog: models.NewCatalog(fixtureCourses(), "v1")}
	return NewPlannerService(catalog, cache, NewMetricsService(), nil, logger, cfg)
}

func sectionLabels(schedule []models.Section) []string {
	out := make([]string, len(schedule))
	for i, s := range schedule {
		out[i] = s.Code + "/" + s.Label
	}
	return out
}

func TestPlannerGenerateFindsConflictFreeCombinations(t *testing.T) {
	svc := newPlannerForTest(nil, nil, PlannerConfig{})

	resp, meta, err := svc.Generate(context.Background(), dto.ScheduleRequest{Items: []string{"CS201", "MATH101"}})
	require.NoError(t, err)

	require.Len(t, resp.Schedules, 3)
	for _, schedule := range resp.Schedules {
		require.Len(t, schedule, 2)
		assert.NotEqual(t, "X", schedule[0].Label)
	}
	assert.Equal(t, 3, meta.Found)
	assert.Equal(t, 3, meta.Returned)
	assert.False(t, meta.Capped)
	assert.Equal(t, "v1", meta.CatalogVersion)
	assert.False(t, meta.CacheHit)
}

func TestPlannerSolveKeepsSearchOrder(t *testing.T) {
	svc := newPlannerForTest(nil, nil, PlannerConfig{})

	resp, meta, err := svc.Solve(context.Background(), dto.ScheduleRequest{Items: []string{"CS201", "MATH101"}})
	require.NoError(t, err)

	require.Len(t, resp.Schedules, 3)
	assert.Equal(t, []string{"CS201/A1", "MATH101/02"}, sectionLabels(resp.Schedules[0]))
	assert.Equal(t, []string{"CS201/A2", "MATH101/01"}, sectionLabels(resp.Schedules[1]))
	assert.Equal(t, []string{"CS201/A2", "MATH101/02"}, sectionLabels(resp.Schedules[2]))
	assert.Zero(t, meta.Groups)
}

func TestPlannerAppliesConstraints(t *testing.T) {
	svc := newPlannerForTest(nil, nil, PlannerConfig{})

	resp, _, err := svc.Solve(context.Background(), dto.ScheduleRequest{
		Items:       []string{"CS201", "MATH101"},
		Constraints: dto.ScheduleConstraints{No840: true},
	})
	require.NoError(t, err)
	require.Len(t, resp.Schedules, 1)
	assert.Equal(t, []string{"CS201/A2", "MATH101/02"}, sectionLabels(resp.Schedules[0]))

	resp, meta, err := svc.Solve(context.Background(), dto.ScheduleRequest{
		Items:       []string{"CS201", "MATH101"},
		Constraints: dto.ScheduleConstraints{DayOffs: []int{0, 2}},
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Schedules)
	assert.NotNil(t, resp.Schedules)
	assert.Equal(t, "MATH101", meta.Infeasible)
}

func TestPlannerReportsUnknownCodes(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	svc := newPlannerForTest(nil, zap.New(core), PlannerConfig{})
	ctx := requestid.WithValue(context.Background(), "req-42")

	resp, meta, err := svc.Generate(ctx, dto.ScheduleRequest{Items: []string{"CS201", "NOPE101"}})
	require.NoError(t, err)

	assert.Len(t, resp.Schedules, 2)
	assert.Equal(t, []string{"NOPE101"}, meta.Skipped)

	entries := logs.FilterMessage("course codes not found in catalog").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "req-42", entries[0].ContextMap()["request_id"])
}

func TestPlannerEmptyItems(t *testing.T) {
	svc := newPlannerForTest(nil, nil, PlannerConfig{})

	resp, meta, err := svc.Generate(context.Background(), dto.ScheduleRequest{Items: []string{}})
	require.NoError(t, err)
	assert.Empty(t, resp.Schedules)
	assert.Zero(t, meta.Found)
}

func TestPlannerValidation(t *testing.T) {
	svc := newPlannerForTest(nil, nil, PlannerConfig{MaxItems: 2})

	_, _, err := svc.Generate(context.Background(), dto.ScheduleRequest{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, _, err = svc.Generate(context.Background(), dto.ScheduleRequest{Items: []string{"A", "B", "C"}})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestPlannerCatalogUnavailable(t *testing.T) {
	svc := NewPlannerService(staticCatalog{}, nil, nil, nil, nil, PlannerConfig{})

	_, _, err := svc.Generate(context.Background(), dto.ScheduleRequest{Items: []string{"CS201"}})
	assert.ErrorIs(t, err, appErrors.ErrUnavailable)
}

func TestPlannerCapsDirectSearch(t *testing.T) {
	svc := newPlannerForTest(nil, nil, PlannerConfig{DirectCap: 2})

	resp, meta, err := svc.Solve(context.Background(), dto.ScheduleRequest{Items: []string{"CS201", "MATH101"}})
	require.NoError(t, err)
	assert.Len(t, resp.Schedules, 2)
	assert.True(t, meta.Capped)
}

func TestPlannerServesRepeatRequestsFromCache(t *testing.T) {
	mem := newMemoryCache()
	cache := NewCacheService(mem, nil, time.Minute, nil, true)
	svc := newPlannerForTest(cache, nil, PlannerConfig{})
	req := dto.ScheduleRequest{Items: []string{"CS201", "MATH101"}, Constraints: dto.ScheduleConstraints{DayOffs: []int{5, 6}}}

	first, meta, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, meta.CacheHit)
	assert.Equal(t, 1, mem.setCalls)

	req.Constraints.DayOffs = []int{6, 5, 6}
	second, meta, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, meta.CacheHit)
	assert.Equal(t, 1, mem.setCalls)
	assert.Equal(t, first, second)

	_, meta, err = svc.Solve(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, meta.CacheHit, "modes are cached separately")
}

func TestPlannerNormalizesCourseCodes(t *testing.T) {
	mem := newMemoryCache()
	cache := NewCacheService(mem, nil, time.Minute, nil, true)
	svc := newPlannerForTest(cache, nil, PlannerConfig{})

	canonical, meta, err := svc.Solve(context.Background(), dto.ScheduleRequest{Items: []string{"CS201", "MATH101"}})
	require.NoError(t, err)
	require.NotEmpty(t, canonical.Schedules)
	assert.False(t, meta.CacheHit)

	loose, meta, err := svc.Solve(context.Background(), dto.ScheduleRequest{Items: []string{" cs201 ", "Math101"}})
	require.NoError(t, err)
	assert.True(t, meta.CacheHit)
	assert.Empty(t, meta.Skipped)
	assert.Equal(t, canonical, loose)

	uncached := newPlannerForTest(nil, nil, PlannerConfig{})
	direct, meta, err := uncached.Solve(context.Background(), dto.ScheduleRequest{Items: []string{"cs201", "math101 "}})
	require.NoError(t, err)
	assert.Empty(t, meta.Skipped)
	assert.Equal(t, canonical, direct)
}

func TestPlannerIgnoresCacheFailures(t *testing.T) {
	mem := newMemoryCache()
	mem.getErr = errSourceDown
	cache := NewCacheService(mem, nil, time.Minute, nil, true)
	svc := newPlannerForTest(cache, nil, PlannerConfig{})

	resp, meta, err := svc.Generate(context.Background(), dto.ScheduleRequest{Items: []string{"CS201"}})
	require.NoError(t, err)
	assert.Len(t, resp.Schedules, 2)
	assert.False(t, meta.CacheHit)
}

func TestPlanCacheKey(t *testing.T) {
	base := dto.ScheduleRequest{Items: []string{"CS201", "MATH101"}, Constraints: dto.ScheduleConstraints{DayOffs: []int{4, 0}}}
	same := dto.ScheduleRequest{Items: []string{"CS201", "MATH101"}, Constraints: dto.ScheduleConstraints{DayOffs: []int{0, 4, 4}}}
	reordered := dto.ScheduleRequest{Items: []string{"MATH101", "CS201"}, Constraints: base.Constraints}

	assert.Equal(t, planCacheKey("v1", PlanModeDirect, base), planCacheKey("v1", PlanModeDirect, same))
	assert.NotEqual(t, planCacheKey("v1", PlanModeDirect, base), planCacheKey("v1", PlanModeDirect, reordered))
	assert.NotEqual(t, planCacheKey("v1", PlanModeDirect, base), planCacheKey("v2", PlanModeDirect, base))
	assert.Contains(t, planCacheKey("v1", PlanModeDirect, base), PlanCachePrefix+"v1:direct:")
}
