package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/noah-isme/course-planner-api/internal/models"
)

// Stats counts what a build produced.
type Stats struct {
	Courses  int
	Sections int
	Meetings int
	// Untimed counts meetings left without a fixed weekly time.
	Untimed int
}

// Group collects a flat section listing into courses keyed by code. Name and
// credits come from the first section seen for each code; section order is kept.
func Group(sections []RawSection) map[string]models.Course {
	grouped := make(map[string]models.Course)
	for _, raw := range sections {
		if raw.Code == "" {
			continue
		}
		course, ok := grouped[raw.Code]
		if !ok {
			course = models.Course{Name: raw.Name, Credits: raw.Credits, Sections: []models.Section{}}
		}
		course.Sections = append(course.Sections, NormalizeSection(raw.Code, raw))
		grouped[raw.Code] = course
	}
	return grouped
}

// Normalize converts a keyed scraped catalog.
func Normalize(raw map[string]RawCourse) map[string]models.Course {
	out := make(map[string]models.Course, len(raw))
	for code, rc := range raw {
		course := models.Course{
			Name:         rc.Name,
			Credits:      rc.Credits,
			Corequisites: rc.Corequisites,
			Sections:     make([]models.Section, 0, len(rc.Sections)),
		}
		for _, rs := range rc.Sections {
			course.Sections = append(course.Sections, NormalizeSection(code, rs))
		}
		out[code] = course
	}
	return out
}

// Build reads either scraped format: a JSON array of sections or a JSON
// object of courses keyed by code.
func Build(r io.Reader) (map[string]models.Course, Stats, error) {
	payload, err := io.ReadAll(r)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("read listing: %w", err)
	}
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return nil, Stats{}, fmt.Errorf("empty listing")
	}

	var courses map[string]models.Course
	switch trimmed[0] {
	case '[':
		var flat []RawSection
		if err := json.Unmarshal(trimmed, &flat); err != nil {
			return nil, Stats{}, fmt.Errorf("decode section listing: %w", err)
		}
		courses = Group(flat)
	case '{':
		var keyed map[string]RawCourse
		if err := json.Unmarshal(trimmed, &keyed); err != nil {
			return nil, Stats{}, fmt.Errorf("decode course listing: %w", err)
		}
		courses = Normalize(keyed)
	default:
		return nil, Stats{}, fmt.Errorf("unsupported listing: expected JSON array or object")
	}

	return courses, statsOf(courses), nil
}

func statsOf(courses map[string]models.Course) Stats {
	stats := Stats{Courses: len(courses)}
	for _, c := range courses {
		stats.Sections += len(c.Sections)
		for _, s := range c.Sections {
			stats.Meetings += len(s.Schedule)
			for _, m := range s.Schedule {
				if !m.HasFixedTime() {
					stats.Untimed++
				}
			}
		}
	}
	return stats
}
