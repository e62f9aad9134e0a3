// Package streak scores a set of completion days. It is a pure computation
// over calendar days with no reference to habits or storage, so the same
// scoring can be reused for any date set.
package streak

import (
	"github.com/julianstephens/tickcal/internal/dates"
)

// Stats holds the derived statistics for one set of completion days.
type Stats struct {
	TotalCount    int
	CurrentStreak int
	LongestStreak int
}

// Compute derives totals and streaks from an unordered set of completion
// days, evaluated as of the given day. A streak is a maximal run of
// consecutive calendar days; the final run only counts as current when its
// most recent day is today or yesterday relative to the evaluation day.
//
// Duplicate days are deduplicated here rather than double counted, so a
// caller handing over a list that slipped past set semantics still gets
// correct results.
func Compute(days []dates.Day, today dates.Day) Stats {
	if len(days) == 0 {
		return Stats{}
	}

	seen := make(map[dates.Day]struct{}, len(days))
	sorted := make([]dates.Day, 0, len(days))
	for _, d := range days {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		sorted = append(sorted, d)
	}
	dates.Sort(sorted)

	longest := 0
	run := 1
	for i := 1; i < len(sorted); i++ {
		gap := sorted[i].Sub(sorted[i-1])
		if gap == 1 {
			run++
			continue
		}
		// Gap of more than one day closes the run. A gap of zero cannot
		// occur after deduplication above.
		if run > longest {
			longest = run
		}
		run = 1
	}
	if run > longest {
		longest = run
	}

	// The final run is only a live streak if it reaches today or stopped
	// yesterday; anything older has lapsed.
	current := 0
	mostRecent := sorted[len(sorted)-1]
	if age := today.Sub(mostRecent); age == 0 || age == 1 {
		current = run
	}

	return Stats{
		TotalCount:    len(sorted),
		CurrentStreak: current,
		LongestStreak: longest,
	}
}
