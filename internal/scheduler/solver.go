package scheduler

import "github.com/noah-isme/course-planner-api/internal/models"

// Schedule is one conflict-free combination holding a section per resolved course, in search order.
type Schedule []*models.Section

// Search enumerates conflict-free combinations depth-first, trying sections in catalog order.
// It stops as soon as limit combinations are found and reports whether that happened.
// The traversal keeps its own stack so depth is bounded by the number of courses, not the call stack.
func Search(courses []CourseCandidates, forbidden TimeMask, limit int) ([]Schedule, bool) {
	if limit <= 0 {
		limit = DefaultDirectCap
	}
	depth := len(courses)
	if depth == 0 {
		return nil, false
	}
	for _, c := range courses {
		if len(c.Sections) == 0 {
			return nil, false
		}
	}

	var (
		results []Schedule
		chosen  = make([]int, depth)
		next    = make([]int, depth)
		masks   = make([]TimeMask, depth+1)
		level   = 0
	)
	masks[0] = forbidden

	for level >= 0 {
		if level == depth {
			combo := make(Schedule, depth)
			for i, idx := range chosen {
				combo[i] = courses[i].Sections[idx].Section
			}
			results = append(results, combo)
			if len(results) >= limit {
				return results, true
			}
			level--
			continue
		}

		candidates := courses[level].Sections
		advanced := false
		for next[level] < len(candidates) {
			idx := next[level]
			next[level]++
			if candidates[idx].Mask.Intersects(masks[level]) {
				continue
			}
			chosen[level] = idx
			masks[level+1] = masks[level].Union(candidates[idx].Mask)
			level++
			if level < depth {
				next[level] = 0
			}
			advanced = true
			break
		}
		if !advanced {
			level--
		}
	}
	return results, false
}
