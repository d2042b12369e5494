// Package ingest turns scraped course listings into the catalog format the
// planner loads.
package ingest

import (
	"strconv"
	"strings"

	"github.com/noah-isme/course-planner-api/internal/models"
)

var dayLetters = map[string]int{"M": 0, "T": 1, "W": 2, "R": 3, "F": 4}

// RawMeeting is a meeting row as scraped. DateRange, Type and ScheduleType
// are read but never written back.
type RawMeeting struct {
	Time         string `json:"time"`
	Days         string `json:"days"`
	Where        string `json:"where"`
	Instructor   string `json:"instructor"`
	DateRange    string `json:"date_range,omitempty"`
	Type         string `json:"type,omitempty"`
	ScheduleType string `json:"schedule_type,omitempty"`
}

// RawSection is a scraped section. Name and Credits are only present in the
// flat listing format.
type RawSection struct {
	Code     string         `json:"code"`
	Name     string         `json:"name,omitempty"`
	Credits  models.Credits `json:"credits,omitempty"`
	CRN      string         `json:"crn"`
	Section  string         `json:"section"`
	Schedule []RawMeeting   `json:"schedule"`
}

// RawCourse is a scraped course in the keyed format.
type RawCourse struct {
	Name         string         `json:"name"`
	Credits      models.Credits `json:"credits"`
	Corequisites []string       `json:"corequisites,omitempty"`
	Sections     []RawSection   `json:"sections"`
}

// ParseClock converts "HH:MM am|pm" to minutes since midnight.
func ParseClock(raw string) (int, bool) {
	parts := strings.Fields(raw)
	if len(parts) != 2 {
		return 0, false
	}
	hm := strings.Split(parts[0], ":")
	if len(hm) != 2 {
		return 0, false
	}
	hour, err := strconv.Atoi(hm[0])
	if err != nil {
		return 0, false
	}
	minute, err := strconv.Atoi(hm[1])
	if err != nil {
		return 0, false
	}

	switch strings.ToLower(parts[1]) {
	case "pm":
		if hour != 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}
	return hour*60 + minute, true
}

// ParseTimeRange splits "08:40 am - 09:30 am" into start and end minutes.
// Either bound is nil when it cannot be parsed.
func ParseTimeRange(raw string) (start, end *int) {
	if !strings.Contains(raw, " - ") {
		return nil, nil
	}
	bounds := strings.Split(raw, " - ")
	if len(bounds) != 2 {
		return nil, nil
	}
	if v, ok := ParseClock(bounds[0]); ok {
		start = &v
	}
	if v, ok := ParseClock(bounds[1]); ok {
		end = &v
	}
	return start, end
}

// DayIndex maps a single weekday letter (M T W R F) to 0..4. Anything else,
// including multi-letter strings, has no fixed day.
func DayIndex(days string) int {
	if idx, ok := dayLetters[days]; ok {
		return idx
	}
	return models.NoMeetingDay
}

// NormalizeMeeting derives the numeric fields of a scraped meeting.
func NormalizeMeeting(raw RawMeeting) models.MeetingSlot {
	start, end := ParseTimeRange(raw.Time)
	return models.MeetingSlot{
		DayIndex:   DayIndex(raw.Days),
		StartMin:   start,
		EndMin:     end,
		Time:       raw.Time,
		Days:       raw.Days,
		Where:      raw.Where,
		Instructor: raw.Instructor,
	}
}

// NormalizeSection converts a scraped section, filling code when missing.
func NormalizeSection(code string, raw RawSection) models.Section {
	sec := models.Section{
		Code:  raw.Code,
		CRN:   raw.CRN,
		Label: raw.Section,
	}
	if sec.Code == "" {
		sec.Code = code
	}
	for _, m := range raw.Schedule {
		sec.Schedule = append(sec.Schedule, NormalizeMeeting(m))
	}
	return sec
}
