package models

import "sort"

// ThresholdSet holds the flood return-period thresholds published for a
// station. Flows maps return-period years (2, 5, 10, 25, 50, 100) to the
// discharge at which that recurrence interval is reached. Sets with missing
// years are usable; an empty set never matches anything.
type ThresholdSet struct {
	StationID string          `json:"station_id"`
	Unit      FlowUnit        `json:"unit"`
	Flows     map[int]float64 `json:"flows"`
}

// ThresholdEntry is one return-period threshold from a set.
type ThresholdEntry struct {
	ReturnYears int
	Flow        float64
}

// Entries returns the set's thresholds ordered by flow descending, with the
// longer return period first among equal flows. Evaluation walks this order
// so the most severe crossed threshold wins.
func (s *ThresholdSet) Entries() []ThresholdEntry {
	if s == nil || len(s.Flows) == 0 {
		return nil
	}

	entries := make([]ThresholdEntry, 0, len(s.Flows))
	for years, flow := range s.Flows {
		entries = append(entries, ThresholdEntry{ReturnYears: years, Flow: flow})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Flow != entries[j].Flow {
			return entries[i].Flow > entries[j].Flow
		}
		return entries[i].ReturnYears > entries[j].ReturnYears
	})
	return entries
}
