package dates

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Day identifies a calendar day by year, month and day with no time-of-day
// or timezone component. The zero value is not a valid day.
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

// FromTime returns the calendar day the given instant falls on, in that
// instant's location.
func FromTime(t time.Time) Day {
	y, m, d := t.Date()
	return Day{Year: y, Month: m, Day: d}
}

// Parse parses a day string in Y-M-D form. Both unpadded ("2024-1-9") and
// zero-padded ("2024-01-09") components are accepted and normalize to the
// same Day, so distinct text representations of one day can never produce
// distinct keys. Days that don't exist on the calendar are rejected.
func Parse(s string) (Day, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return Day{}, fmt.Errorf("invalid day %q: expected Y-M-D", s)
	}

	nums := make([]int, 3)
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return Day{}, fmt.Errorf("invalid day %q: %w", s, err)
		}
		nums[i] = n
	}

	d := Day{Year: nums[0], Month: time.Month(nums[1]), Day: nums[2]}
	if !d.Valid() {
		return Day{}, fmt.Errorf("invalid day %q: no such calendar day", s)
	}
	return d, nil
}

// Valid reports whether the day exists on the calendar. time.Date normalizes
// out-of-range components (Feb 31 becomes Mar 2), so a round-trip mismatch
// means the components were not a real day.
func (d Day) Valid() bool {
	y, m, dd := d.Time().Date()
	return y == d.Year && m == d.Month && dd == d.Day
}

// String returns the canonical storage form: unpadded Y-M-D (e.g. "2024-1-9").
func (d Day) String() string {
	return fmt.Sprintf("%d-%d-%d", d.Year, int(d.Month), d.Day)
}

// Time returns the day anchored at UTC midnight. Anchoring in UTC keeps
// day arithmetic immune to DST transitions in the local zone.
func (d Day) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the day n calendar days after d (n may be negative).
func (d Day) AddDays(n int) Day {
	return FromTime(d.Time().AddDate(0, 0, n))
}

// Sub returns the whole number of calendar days from o to d. Positive when
// d is after o.
func (d Day) Sub(o Day) int {
	return int(d.Time().Sub(o.Time()).Hours() / 24)
}

// Before reports whether d is chronologically before o.
func (d Day) Before(o Day) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// IsZero reports whether d is the zero value.
func (d Day) IsZero() bool {
	return d == Day{}
}

// Sort sorts days in ascending chronological order in place.
func Sort(days []Day) {
	sort.Slice(days, func(i, j int) bool {
		return days[i].Before(days[j])
	})
}
