package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/course-planner-api/internal/models"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
)

func minutesPtr(v int) *int { return &v }

func slot(day, start, end int) models.MeetingSlot {
	return models.MeetingSlot{DayIndex: day, StartMin: minutesPtr(start), EndMin: minutesPtr(end)}
}

func fixtureCourses() map[string]models.Course {
	return map[string]models.Course{
		"CS201": {Name: "Intro to Computing", Credits: 3, Sections: []models.Section{
			{CRN: "10001", Label: "A1", Schedule: []models.MeetingSlot{slot(0, 520, 570)}},
			{CRN: "10002", Label: "A2", Schedule: []models.MeetingSlot{slot(1, 600, 650)}},
			{CRN: "10003", Label: "X"},
		}},
		"MATH101": {Name: "Calculus", Credits: 3, Sections: []models.Section{
			{CRN: "20001", Label: "01", Schedule: []models.MeetingSlot{slot(0, 520, 570)}},
			{CRN: "20002", Label: "02", Schedule: []models.MeetingSlot{slot(2, 600, 650)}},
		}},
		"HIST191": {Name: "History", Credits: 2, Sections: []models.Section{
			{CRN: "30001", Label: "0", Schedule: []models.MeetingSlot{{DayIndex: models.NoMeetingDay, Where: "Online"}}},
		}},
	}
}

type stubSource struct {
	mu      sync.Mutex
	courses map[string]models.Course
	version string
	err     error
	calls   int
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) Load(ctx context.Context) (map[string]models.Course, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, "", s.err
	}
	return s.courses, s.version, nil
}

func (s *stubSource) set(version string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.version = version
	s.err = err
}

type staticCatalog struct {
	catalog *models.Catalog
}

func (s staticCatalog) Snapshot() (*models.Catalog, error) {
	if s.catalog == nil {
		return nil, appErrors.Clone(appErrors.ErrUnavailable, "catalog not loaded")
	}
	return s.catalog, nil
}

type memoryCache struct {
	mu       sync.Mutex
	entries  map[string][]byte
	deleted  []string
	getErr   error
	setCalls int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return m.getErr
	}
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalls++
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	m.deleted = append(m.deleted, pattern)
	return nil
}

func (m *memoryCache) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.entries))
	for k := range m.entries {
		out = append(out, k)
	}
	return out
}

var errSourceDown = errors.New("source down")
