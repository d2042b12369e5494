package scheduler

import (
	"sort"
	"strconv"
	"strings"
)

// MeetingTime is a concrete weekly meeting used to compare schedules visually.
type MeetingTime struct {
	Day   int
	Start int
	End   int
}

// TimeSignature lists the real meetings of a schedule in canonical order.
type TimeSignature []MeetingTime

// SignatureOf collects every fixed meeting of the schedule, sorted by day, start and end.
func SignatureOf(schedule Schedule) TimeSignature {
	var sig TimeSignature
	for _, section := range schedule {
		for _, slot := range section.Schedule {
			if !slot.HasFixedTime() {
				continue
			}
			sig = append(sig, MeetingTime{Day: slot.DayIndex, Start: *slot.StartMin, End: *slot.EndMin})
		}
	}
	sort.Slice(sig, func(i, j int) bool {
		if sig[i].Day != sig[j].Day {
			return sig[i].Day < sig[j].Day
		}
		if sig[i].Start != sig[j].Start {
			return sig[i].Start < sig[j].Start
		}
		return sig[i].End < sig[j].End
	})
	return sig
}

// Key renders the signature as a comparable string.
func (s TimeSignature) Key() string {
	var b strings.Builder
	for i, m := range s {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(strconv.Itoa(m.Day))
		b.WriteByte('-')
		b.WriteString(strconv.Itoa(m.Start))
		b.WriteByte('-')
		b.WriteString(strconv.Itoa(m.End))
	}
	return b.String()
}

// Diversify groups schedules sharing a time signature and interleaves the groups round-robin
// in first-seen order, so visually different timetables come before instructor-only variants.
// The result holds at most limit schedules and the number of distinct groups is returned.
func Diversify(schedules []Schedule, limit int) ([]Schedule, int) {
	if limit <= 0 {
		limit = DefaultResponseCap
	}
	if len(schedules) == 0 {
		return nil, 0
	}

	index := make(map[string]int)
	var groups [][]Schedule
	longest := 0
	for _, sched := range schedules {
		key := SignatureOf(sched).Key()
		gi, ok := index[key]
		if !ok {
			gi = len(groups)
			index[key] = gi
			groups = append(groups, nil)
		}
		groups[gi] = append(groups[gi], sched)
		if len(groups[gi]) > longest {
			longest = len(groups[gi])
		}
	}

	size := len(schedules)
	if size > limit {
		size = limit
	}
	out := make([]Schedule, 0, size)
	for round := 0; round < longest; round++ {
		for _, group := range groups {
			if round >= len(group) {
				continue
			}
			out = append(out, group[round])
			if len(out) == limit {
				return out, len(groups)
			}
		}
	}
	return out, len(groups)
}
