package models

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// NoMeetingDay marks a meeting slot without a fixed weekly day.
const NoMeetingDay = -1

// PlaceholderSectionLabel identifies arranged sections that never take part in conflict search.
const PlaceholderSectionLabel = "X"

// MeetingSlot is a single weekly meeting of a section.
type MeetingSlot struct {
	DayIndex   int    `json:"day_index"`
	StartMin   *int   `json:"start_min"`
	EndMin     *int   `json:"end_min"`
	Time       string `json:"time,omitempty"`
	Days       string `json:"days,omitempty"`
	Where      string `json:"where,omitempty"`
	Instructor string `json:"instructor,omitempty"`
}

// UnmarshalJSON defaults a missing day_index to NoMeetingDay. Time fields that
// are not whole numbers ("TBA", "") leave the slot without a fixed time.
func (m *MeetingSlot) UnmarshalJSON(data []byte) error {
	type plain MeetingSlot
	var decoded struct {
		plain
		DayIndex json.RawMessage `json:"day_index"`
		StartMin json.RawMessage `json:"start_min"`
		EndMin   json.RawMessage `json:"end_min"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*m = MeetingSlot(decoded.plain)
	m.DayIndex = NoMeetingDay
	if day, ok := wholeNumber(decoded.DayIndex); ok {
		m.DayIndex = day
	}
	m.StartMin, m.EndMin = nil, nil
	if start, ok := wholeNumber(decoded.StartMin); ok {
		m.StartMin = &start
	}
	if end, ok := wholeNumber(decoded.EndMin); ok {
		m.EndMin = &end
	}
	return nil
}

func wholeNumber(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil || n == "" {
		return 0, false
	}
	if i, err := n.Int64(); err == nil {
		return int(i), true
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// HasFixedTime reports whether the slot occupies a concrete weekly time range.
func (m MeetingSlot) HasFixedTime() bool {
	return m.DayIndex != NoMeetingDay && m.StartMin != nil && m.EndMin != nil
}

// Section is a schedulable offering of a course.
type Section struct {
	Code     string        `json:"code"`
	CRN      string        `json:"crn"`
	Label    string        `json:"section"`
	Schedule []MeetingSlot `json:"schedule"`
}

// IsPlaceholder reports whether the section is an administrative placeholder.
func (s Section) IsPlaceholder() bool {
	return s.Label == PlaceholderSectionLabel
}

// Credits accepts both numeric and string encodings ("3.000").
type Credits float64

// UnmarshalJSON implements json.Unmarshaler.
func (c *Credits) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == `""` {
		*c = 0
		return nil
	}
	raw = strings.Trim(raw, `"`)
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid credits %q: %w", raw, err)
	}
	*c = Credits(value)
	return nil
}

// Course groups the sections offered under one course code.
type Course struct {
	Name         string    `json:"name"`
	Credits      Credits   `json:"credits"`
	Corequisites []string  `json:"corequisites,omitempty"`
	Sections     []Section `json:"sections"`
}

// Catalog is an immutable snapshot of every course offered in a term.
// It is shared by reference between concurrent requests and never mutated after construction.
type Catalog struct {
	courses  map[string]*Course
	codes    []string
	version  string
	loadedAt time.Time
}

// NewCatalog copies courses into a read-only snapshot.
func NewCatalog(courses map[string]Course, version string) *Catalog {
	snapshot := &Catalog{
		courses:  make(map[string]*Course, len(courses)),
		codes:    make([]string, 0, len(courses)),
		version:  version,
		loadedAt: time.Now().UTC(),
	}
	for code, course := range courses {
		c := course
		c.Sections = append([]Section(nil), course.Sections...)
		for i := range c.Sections {
			if c.Sections[i].Code == "" {
				c.Sections[i].Code = code
			}
		}
		snapshot.courses[code] = &c
		snapshot.codes = append(snapshot.codes, code)
	}
	sort.Strings(snapshot.codes)
	return snapshot
}

// Lookup returns the course registered under code.
func (c *Catalog) Lookup(code string) (*Course, bool) {
	if c == nil {
		return nil, false
	}
	course, ok := c.courses[code]
	return course, ok
}

// Codes returns course codes in ascending order.
func (c *Catalog) Codes() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.codes...)
}

// Len returns the number of courses in the snapshot.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.codes)
}

// Version identifies the source data the snapshot was built from.
func (c *Catalog) Version() string {
	if c == nil {
		return ""
	}
	return c.version
}

// LoadedAt returns when the snapshot was built.
func (c *Catalog) LoadedAt() time.Time {
	if c == nil {
		return time.Time{}
	}
	return c.loadedAt
}

// SectionRef addresses one section of a course. CRN wins over the label when both are set.
type SectionRef struct {
	Code    string `json:"code" validate:"required"`
	CRN     string `json:"crn,omitempty"`
	Section string `json:"section,omitempty" validate:"required_without=CRN"`
}

// String renders the reference for error messages.
func (r SectionRef) String() string {
	if r.CRN != "" {
		return r.Code + "/crn:" + r.CRN
	}
	return r.Code + "/" + r.Section
}

// FindSection resolves a section reference against the snapshot.
func (c *Catalog) FindSection(ref SectionRef) (*Section, bool) {
	course, ok := c.Lookup(ref.Code)
	if !ok {
		return nil, false
	}
	for i := range course.Sections {
		sec := &course.Sections[i]
		if ref.CRN != "" {
			if sec.CRN == ref.CRN {
				return sec, true
			}
			continue
		}
		if sec.Label == ref.Section {
			return sec, true
		}
	}
	return nil, false
}
