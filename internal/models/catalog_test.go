package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeetingSlotToleratesMalformedTimes(t *testing.T) {
	var slots []MeetingSlot
	raw := `[
		{"day_index": 0, "start_min": 540, "end_min": 590, "where": "HALL 1"},
		{"day_index": 1, "start_min": "TBA", "end_min": "", "where": "HALL 2"},
		{"day_index": "M", "start_min": 600, "end_min": 650},
		{"start_min": 600.0, "end_min": 650.5}
	]`
	require.NoError(t, json.Unmarshal([]byte(raw), &slots))
	require.Len(t, slots, 4)

	assert.True(t, slots[0].HasFixedTime())
	assert.Equal(t, 540, *slots[0].StartMin)
	assert.Equal(t, "HALL 1", slots[0].Where)

	assert.False(t, slots[1].HasFixedTime())
	assert.Equal(t, 1, slots[1].DayIndex)
	assert.Nil(t, slots[1].StartMin)
	assert.Nil(t, slots[1].EndMin)
	assert.Equal(t, "HALL 2", slots[1].Where)

	assert.Equal(t, NoMeetingDay, slots[2].DayIndex)
	assert.False(t, slots[2].HasFixedTime())

	assert.Equal(t, NoMeetingDay, slots[3].DayIndex)
	require.NotNil(t, slots[3].StartMin)
	assert.Equal(t, 600, *slots[3].StartMin)
	assert.Nil(t, slots[3].EndMin)
}

func TestMeetingSlotRejectsNonObject(t *testing.T) {
	var slot MeetingSlot
	assert.Error(t, json.Unmarshal([]byte(`"MWF 9:00"`), &slot))
}

func TestFindSectionPrefersCRN(t *testing.T) {
	catalog := NewCatalog(map[string]Course{
		"CS201": {Name: "Data Structures", Sections: []Section{
			{CRN: "10001", Label: "A1"},
			{CRN: "10002", Label: "A1"},
			{CRN: "10003", Label: "B1"},
		}},
	}, "v1")

	sec, ok := catalog.FindSection(SectionRef{Code: "CS201", Section: "A1"})
	require.True(t, ok)
	assert.Equal(t, "10001", sec.CRN)

	sec, ok = catalog.FindSection(SectionRef{Code: "CS201", CRN: "10002"})
	require.True(t, ok)
	assert.Equal(t, "10002", sec.CRN)
	assert.Equal(t, "CS201", sec.Code)

	sec, ok = catalog.FindSection(SectionRef{Code: "CS201", CRN: "10002", Section: "B1"})
	require.True(t, ok)
	assert.Equal(t, "A1", sec.Label)

	_, ok = catalog.FindSection(SectionRef{Code: "CS201", CRN: "99999", Section: "A1"})
	assert.False(t, ok)

	_, ok = catalog.FindSection(SectionRef{Code: "MATH101", Section: "A1"})
	assert.False(t, ok)
}

func TestSectionRefString(t *testing.T) {
	assert.Equal(t, "CS201/A1", SectionRef{Code: "CS201", Section: "A1"}.String())
	assert.Equal(t, "CS201/crn:10002", SectionRef{Code: "CS201", CRN: "10002", Section: "A1"}.String())
}
