package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/course-planner-api/internal/dto"
	"github.com/noah-isme/course-planner-api/internal/models"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
	"github.com/noah-isme/course-planner-api/pkg/jobs"
)

// JobTypeCatalogReload tags catalog reload jobs on the queue.
const JobTypeCatalogReload = "catalog_reload"

// CatalogSource loads the raw catalog and a version identifying its content.
type CatalogSource interface {
	Name() string
	Load(ctx context.Context) (map[string]models.Course, string, error)
}

// CatalogService owns the active catalog snapshot. Readers always get a
// complete snapshot; a reload swaps it atomically, so in-flight requests keep
// the one they started with.
type CatalogService struct {
	source  CatalogSource
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger

	current atomic.Pointer[models.Catalog]
	loadMu  sync.Mutex

	queueMu sync.Mutex
	queue   *jobs.Queue
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(source CatalogSource, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{source: source, cache: cache, metrics: metrics, logger: logger}
}

// Load reads the source and installs the result as the active snapshot.
func (s *CatalogService) Load(ctx context.Context) (*models.Catalog, error) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	start := time.Now()
	courses, version, err := s.source.Load(ctx)
	s.metrics.ObserveDBQuery("catalog_load", time.Since(start))
	if err != nil {
		s.metrics.RecordCatalogReload(false)
		s.logger.Error("catalog load failed", zap.String("source", s.source.Name()), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "failed to load catalog")
	}

	snapshot := models.NewCatalog(courses, version)
	previous := s.current.Swap(snapshot)
	s.metrics.RecordCatalogReload(true)
	s.metrics.SetCatalogSize(snapshot.Len())

	if previous != nil && previous.Version() != version {
		if err := s.cache.Invalidate(ctx, PlanCachePrefix+previous.Version()+":*"); err != nil {
			s.logger.Warn("stale plan cache not cleared", zap.String("version", previous.Version()), zap.Error(err))
		}
	}

	s.logger.Info("catalog loaded",
		zap.String("source", s.source.Name()),
		zap.String("version", version),
		zap.Int("courses", snapshot.Len()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return snapshot, nil
}

// Snapshot returns the active catalog.
func (s *CatalogService) Snapshot() (*models.Catalog, error) {
	snapshot := s.current.Load()
	if snapshot == nil {
		return nil, appErrors.Clone(appErrors.ErrUnavailable, "catalog not loaded")
	}
	return snapshot, nil
}

// Status describes the active snapshot for readiness checks.
func (s *CatalogService) Status() dto.CatalogStatus {
	status := dto.CatalogStatus{Source: s.source.Name()}
	snapshot := s.current.Load()
	if snapshot == nil {
		return status
	}
	status.Ready = true
	status.Version = snapshot.Version()
	status.Courses = snapshot.Len()
	status.LoadedAt = snapshot.LoadedAt()
	return status
}

// List returns every course keyed by code.
func (s *CatalogService) List() (*dto.CourseListResponse, error) {
	snapshot, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	courses := make(map[string]*models.Course, snapshot.Len())
	for _, code := range snapshot.Codes() {
		course, _ := snapshot.Lookup(code)
		courses[code] = course
	}
	return &dto.CourseListResponse{Courses: courses}, nil
}

// Get returns a single course.
func (s *CatalogService) Get(code string) (*models.Course, error) {
	snapshot, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	course, ok := snapshot.Lookup(code)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}
	return course, nil
}

// StartReloader starts the background queue serving ScheduleReload.
func (s *CatalogService) StartReloader(ctx context.Context, cfg jobs.QueueConfig) {
	s.queueMu.Lock()
	defer s.queueMu.Unlock()
	if s.queue != nil {
		return
	}
	if cfg.Logger == nil {
		cfg.Logger = s.logger
	}
	s.queue = jobs.NewQueue("catalog-reload", s.handleReload, cfg)
	s.queue.Start(ctx)
}

// StopReloader stops the reload queue and waits for running jobs.
func (s *CatalogService) StopReloader() {
	s.queueMu.Lock()
	queue := s.queue
	s.queueMu.Unlock()
	if queue != nil {
		queue.Stop()
	}
}

// ScheduleReload enqueues a reload and returns its job id.
func (s *CatalogService) ScheduleReload(requestedBy string) (string, error) {
	s.queueMu.Lock()
	queue := s.queue
	s.queueMu.Unlock()
	if queue == nil {
		return "", appErrors.Clone(appErrors.ErrUnavailable, "catalog reloader not running")
	}

	id := uuid.NewString()
	if err := queue.Enqueue(jobs.Job{ID: id, Type: JobTypeCatalogReload, Payload: requestedBy}); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "failed to enqueue catalog reload")
	}
	s.logger.Info("catalog reload scheduled", zap.String("job_id", id), zap.String("requested_by", requestedBy))
	return id, nil
}

// ReloadStatus reports the state of a reload job.
func (s *CatalogService) ReloadStatus(id string) (jobs.State, error) {
	s.queueMu.Lock()
	queue := s.queue
	s.queueMu.Unlock()
	if queue == nil {
		return jobs.State{}, appErrors.Clone(appErrors.ErrUnavailable, "catalog reloader not running")
	}
	state, ok := queue.Status(id)
	if !ok {
		return jobs.State{}, appErrors.Clone(appErrors.ErrNotFound, "reload job not found")
	}
	return state, nil
}

func (s *CatalogService) handleReload(ctx context.Context, job jobs.Job) error {
	if job.Type != JobTypeCatalogReload {
		return errors.New("unexpected job type " + job.Type)
	}
	_, err := s.Load(ctx)
	return err
}
