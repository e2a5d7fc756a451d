// Package rank orders classified mail records and filters them by
// tier.
package rank

import (
	"sort"

	"prioritymail/internal/mail"
)

// Direction selects how priority tiers order relative to each other.
type Direction string

const (
	// DirectionHighToLow puts the most urgent tier first. This is the
	// default when no direction is requested.
	DirectionHighToLow Direction = "high-to-low"
	DirectionLowToHigh Direction = "low-to-high"
)

// Sort orders records by priority tier then recency. The direction
// multiplies only tier-vs-tier comparisons: records without a tier
// always sort last regardless of direction. Within a tier the most
// recent message comes first; a record whose date cannot be parsed
// compares as the zero time and therefore sorts after any record with
// a parseable date.
func Sort(records []mail.Record, dir Direction) {
	mul := 1
	if dir == DirectionLowToHigh {
		mul = -1
	}

	sort.SliceStable(records, func(i, j int) bool {
		oi, oj := records[i].Priority.Ordinal(), records[j].Priority.Ordinal()

		if oi != oj {
			unsetOrd := mail.Priority("").Ordinal()
			if oi == unsetOrd || oj == unsetOrd {
				return oi < oj
			}
			return mul*(oi-oj) < 0
		}

		ti, _ := mail.ParseDate(records[i].Date)
		tj, _ := mail.ParseDate(records[j].Date)
		return ti.After(tj)
	})
}

// Filter retains only records at the requested tier, preserving their
// relative order. An empty or non-concrete tier (such as "all")
// performs no filtering.
func Filter(records []mail.Record, tier mail.Priority) []mail.Record {
	if !tier.Valid() {
		return records
	}

	filtered := make([]mail.Record, 0, len(records))
	for _, r := range records {
		if r.Priority == tier {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
