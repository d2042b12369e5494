package scheduler

import (
	"math/bits"

	"github.com/noah-isme/course-planner-api/internal/models"
)

const (
	// BucketMinutes is the width of one grid cell.
	BucketMinutes = 10
	// DaysPerWeek covers Monday (0) through Sunday (6).
	DaysPerWeek = 7
	// SlotsPerDay is the number of buckets in a 24h day.
	SlotsPerDay = 24 * 60 / BucketMinutes
	// MaskBits is the number of buckets in a week.
	MaskBits = DaysPerWeek * SlotsPerDay

	maskWords = (MaskBits + 63) / 64
)

// TimeMask is a weekly occupancy bitmap; bit day*SlotsPerDay+bucket is set when that bucket is taken.
type TimeMask [maskWords]uint64

// Intersects reports whether both masks occupy a common bucket.
func (m TimeMask) Intersects(other TimeMask) bool {
	for i := range m {
		if m[i]&other[i] != 0 {
			return true
		}
	}
	return false
}

// Union returns the buckets occupied by either mask.
func (m TimeMask) Union(other TimeMask) TimeMask {
	var out TimeMask
	for i := range m {
		out[i] = m[i] | other[i]
	}
	return out
}

// IsZero reports whether no bucket is set.
func (m TimeMask) IsZero() bool {
	for _, w := range m {
		if w != 0 {
			return false
		}
	}
	return true
}

// Count returns the number of occupied buckets.
func (m TimeMask) Count() int {
	n := 0
	for _, w := range m {
		n += bits.OnesCount64(w)
	}
	return n
}

// Has reports whether the bucket of day at the given minute is set.
func (m TimeMask) Has(day, minute int) bool {
	if day < 0 || day >= DaysPerWeek || minute < 0 || minute >= 24*60 {
		return false
	}
	pos := day*SlotsPerDay + minute/BucketMinutes
	return m[pos/64]&(1<<(uint(pos)%64)) != 0
}

// SetRange marks buckets [startMin/BucketMinutes, endMin/BucketMinutes) of day.
// Ranges are clipped to the day; invalid days and empty ranges are ignored.
func (m *TimeMask) SetRange(day, startMin, endMin int) {
	if day < 0 || day >= DaysPerWeek {
		return
	}
	first := startMin / BucketMinutes
	last := endMin / BucketMinutes
	if first < 0 {
		first = 0
	}
	if last > SlotsPerDay {
		last = SlotsPerDay
	}
	offset := day * SlotsPerDay
	for b := first; b < last; b++ {
		pos := offset + b
		m[pos/64] |= 1 << (uint(pos) % 64)
	}
}

// EncodeSlots converts meeting slots into the buckets they occupy.
// Slots without a fixed day or time have no conflict surface and add nothing.
func EncodeSlots(slots []models.MeetingSlot) TimeMask {
	var mask TimeMask
	for _, slot := range slots {
		if !slot.HasFixedTime() {
			continue
		}
		mask.SetRange(slot.DayIndex, *slot.StartMin, *slot.EndMin)
	}
	return mask
}
