package scheduler

const (
	// DefaultDirectCap bounds a direct solve.
	DefaultDirectCap = 150
	// DefaultSearchCap bounds the search behind an interactive plan, before diversification.
	DefaultSearchCap = 5000
	// DefaultResponseCap bounds the diversified response.
	DefaultResponseCap = 100
)

// Request asks for one section per course code under the given constraints.
type Request struct {
	Items       []string
	Constraints Constraints
}

// Options tunes the interactive planning path.
type Options struct {
	SearchCap   int
	ResponseCap int
}

// Result is the outcome of a single planning call.
type Result struct {
	Schedules []Schedule
	// Found is the number of combinations the search produced before any truncation.
	Found int
	// Capped is set when the search stopped at its cap.
	Capped bool
	// Groups counts distinct time signatures (interactive path only).
	Groups     int
	Skipped    []string
	Infeasible string
}

// Solve runs the search and returns combinations in search order, at most limit of them.
func Solve(catalog CatalogReader, req Request, limit int) Result {
	res, _ := search(catalog, req, limit)
	return res
}

// Plan runs the search with opts.SearchCap and diversifies the outcome down to opts.ResponseCap.
func Plan(catalog CatalogReader, req Request, opts Options) Result {
	if opts.SearchCap <= 0 {
		opts.SearchCap = DefaultSearchCap
	}
	res, ok := search(catalog, req, opts.SearchCap)
	if !ok {
		return res
	}
	res.Schedules, res.Groups = Diversify(res.Schedules, opts.ResponseCap)
	return res
}

func search(catalog CatalogReader, req Request, limit int) (Result, bool) {
	forbidden := CompileConstraints(req.Constraints)
	filtered := FilterCandidates(catalog, req.Items, forbidden)
	res := Result{Skipped: filtered.Skipped, Infeasible: filtered.Infeasible}
	if filtered.Infeasible != "" || len(filtered.Courses) == 0 {
		return res, false
	}
	OrderBySearchCost(filtered.Courses)
	res.Schedules, res.Capped = Search(filtered.Courses, forbidden, limit)
	res.Found = len(res.Schedules)
	return res, true
}
