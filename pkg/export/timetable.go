package export

import (
	"fmt"
	"sort"
)

var dayNames = [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Timetable columns.
const (
	ColCourse     = "Course"
	ColSection    = "Section"
	ColCRN        = "CRN"
	ColDay        = "Day"
	ColTime       = "Time"
	ColWhere      = "Where"
	ColInstructor = "Instructor"
)

// Entry is one weekly meeting of a chosen section.
type Entry struct {
	Course     string
	Section    string
	CRN        string
	Day        int
	StartMin   int
	EndMin     int
	Where      string
	Instructor string
}

// Timetable is a chosen schedule flattened to its meetings.
type Timetable struct {
	Title   string
	Entries []Entry
}

// DayName returns the English weekday for a day index, or "TBA".
func DayName(day int) string {
	if day < 0 || day >= len(dayNames) {
		return "TBA"
	}
	return dayNames[day]
}

// ClockRange renders minutes since midnight as "HH:MM-HH:MM".
func ClockRange(start, end int) string {
	if start < 0 || end < 0 {
		return "TBA"
	}
	return fmt.Sprintf("%02d:%02d-%02d:%02d", start/60, start%60, end/60, end%60)
}

// Dataset orders the entries by day and start time and flattens them into rows.
// Meetings without a fixed day sort last.
func (t Timetable) Dataset() Dataset {
	entries := append([]Entry(nil), t.Entries...)
	sort.SliceStable(entries, func(i, j int) bool {
		di, dj := sortDay(entries[i].Day), sortDay(entries[j].Day)
		if di != dj {
			return di < dj
		}
		if entries[i].StartMin != entries[j].StartMin {
			return entries[i].StartMin < entries[j].StartMin
		}
		return entries[i].Course < entries[j].Course
	})

	data := Dataset{
		Headers: []string{ColDay, ColTime, ColCourse, ColSection, ColCRN, ColWhere, ColInstructor},
		Widths:  []float64{28, 30, 30, 20, 22, 72, 75},
	}
	for _, e := range entries {
		data.Rows = append(data.Rows, map[string]string{
			ColDay:        DayName(e.Day),
			ColTime:       ClockRange(e.StartMin, e.EndMin),
			ColCourse:     e.Course,
			ColSection:    e.Section,
			ColCRN:        e.CRN,
			ColWhere:      e.Where,
			ColInstructor: e.Instructor,
		})
	}
	return data
}

func sortDay(day int) int {
	if day < 0 {
		return len(dayNames)
	}
	return day
}
