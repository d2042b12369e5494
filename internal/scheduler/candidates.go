package scheduler

import (
	"sort"

	"github.com/noah-isme/course-planner-api/internal/models"
)

// CatalogReader resolves course codes against a read-only catalog snapshot.
type CatalogReader interface {
	Lookup(code string) (*models.Course, bool)
}

// Candidate is an eligible section with its precomputed occupancy.
type Candidate struct {
	Section *models.Section
	Mask    TimeMask
}

// CourseCandidates holds the eligible sections of one requested course, in catalog order.
type CourseCandidates struct {
	Code     string
	Sections []Candidate
}

// FilterOutcome is the result of resolving and filtering the requested courses.
type FilterOutcome struct {
	Courses []CourseCandidates
	// Skipped lists requested codes missing from the catalog.
	Skipped []string
	// Infeasible names the first course left without any eligible section.
	// When set, Courses is empty and the whole request has no solution.
	Infeasible string
}

// FilterCandidates resolves codes in request order and keeps, per course, the sections that are
// not placeholders and do not touch the forbidden buckets. Repeated codes are considered once.
func FilterCandidates(catalog CatalogReader, codes []string, forbidden TimeMask) FilterOutcome {
	var out FilterOutcome
	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}

		course, ok := catalog.Lookup(code)
		if !ok {
			out.Skipped = append(out.Skipped, code)
			continue
		}

		eligible := make([]Candidate, 0, len(course.Sections))
		for i := range course.Sections {
			section := &course.Sections[i]
			if section.IsPlaceholder() {
				continue
			}
			mask := EncodeSlots(section.Schedule)
			if mask.Intersects(forbidden) {
				continue
			}
			eligible = append(eligible, Candidate{Section: section, Mask: mask})
		}
		if len(eligible) == 0 {
			out.Courses = nil
			out.Infeasible = code
			return out
		}
		out.Courses = append(out.Courses, CourseCandidates{Code: code, Sections: eligible})
	}
	return out
}

// OrderBySearchCost places courses with fewer eligible sections first so dead ends are pruned early.
// Equal counts keep request order.
func OrderBySearchCost(courses []CourseCandidates) {
	sort.SliceStable(courses, func(i, j int) bool {
		return len(courses[i].Sections) < len(courses[j].Sections)
	})
}
