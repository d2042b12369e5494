package scheduler

const (
	earlyBlockStart = 8*60 + 40
	earlyBlockEnd   = 9*60 + 30
	weekdays        = 5
)

// Constraints are the personal time-off rules of a single request.
type Constraints struct {
	// Block840930 keeps 08:40-09:30 free on weekdays.
	Block840930 bool
	// FreeDays lists day indices (0 = Monday) that must stay empty.
	FreeDays []int
}

// CompileConstraints builds the mask of buckets the user refuses to occupy.
func CompileConstraints(c Constraints) TimeMask {
	var mask TimeMask
	if c.Block840930 {
		for day := 0; day < weekdays; day++ {
			mask.SetRange(day, earlyBlockStart, earlyBlockEnd)
		}
	}
	for _, day := range c.FreeDays {
		if day < 0 || day >= DaysPerWeek {
			continue
		}
		mask.SetRange(day, 0, SlotsPerDay*BucketMinutes)
	}
	return mask
}
