// Package timeslot converts booking times of day into comparable minute
// offsets and decides whether two half-open intervals overlap.
package timeslot

import (
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerDay bounds a valid clock value: [0, 1439].
const MinutesPerDay = 24 * 60

// ParseClock converts an "HH:MM" time of day into minutes since midnight.
func ParseClock(value string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("timeslot: invalid clock value %q", value)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("timeslot: invalid clock value %q", value)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("timeslot: invalid clock value %q", value)
	}

	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("timeslot: clock value %q out of range", value)
	}

	return hours*60 + minutes, nil
}

// Overlaps reports whether the half-open intervals [startA, endA) and
// [startB, endB) intersect. Back-to-back intervals (endA == startB) do not
// overlap. Bounds are minute offsets as returned by ParseClock; callers are
// responsible for start < end.
func Overlaps(startA, endA, startB, endB int) bool {
	return startA < endB && endA > startB
}

// ClockOverlaps is the "HH:MM" convenience form of Overlaps. Any malformed
// bound yields an error rather than a silent false.
func ClockOverlaps(startA, endA, startB, endB string) (bool, error) {
	sa, err := ParseClock(startA)
	if err != nil {
		return false, err
	}
	ea, err := ParseClock(endA)
	if err != nil {
		return false, err
	}
	sb, err := ParseClock(startB)
	if err != nil {
		return false, err
	}
	eb, err := ParseClock(endB)
	if err != nil {
		return false, err
	}
	return Overlaps(sa, ea, sb, eb), nil
}
