package sim

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// ConflictType classifies an observed capacity violation.
type ConflictType string

const (
	ConflictTrackOveroccupancy ConflictType = "track_overoccupancy"
	ConflictPlatform           ConflictType = "platform_conflict"
)

// ConflictSeverity grades a conflict for the report layer.
type ConflictSeverity string

const (
	SeverityHigh   ConflictSeverity = "high"
	SeverityMedium ConflictSeverity = "medium"
)

// Conflict is an observed violation of a capacity invariant. Conflicts are
// output, never errors: nothing is resolved or prevented here.
type Conflict struct {
	ID         string           `json:"conflict_id"`
	Type       ConflictType     `json:"conflict_type"`
	Severity   ConflictSeverity `json:"severity"`
	ResourceID string           `json:"resource_id"`
	TrainIDs   []string         `json:"train_ids"`
	Capacity   int              `json:"capacity"`
	Occupancy  int              `json:"occupancy"`
	Timestamp  time.Time        `json:"timestamp"`
}

// DetectConflicts inspects current track and station occupancy and returns
// one record per offending resource. It is a pure read over the given
// state; records are not deduplicated across ticks.
func DetectConflicts(now time.Time, tracks map[string]*Track, stations map[string]*Station, trains map[string]*Train) []Conflict {
	var conflicts []Conflict

	segIDs := make([]string, 0, len(tracks))
	for id := range tracks {
		segIDs = append(segIDs, id)
	}
	sort.Strings(segIDs)
	for _, id := range segIDs {
		tr := tracks[id]
		occ := tr.Occupants()
		if len(occ) > tr.Capacity {
			conflicts = append(conflicts, Conflict{
				ID:         uuid.NewString(),
				Type:       ConflictTrackOveroccupancy,
				Severity:   SeverityHigh,
				ResourceID: tr.SegmentID,
				TrainIDs:   occ,
				Capacity:   tr.Capacity,
				Occupancy:  len(occ),
				Timestamp:  now,
			})
		}
	}

	codes := make([]string, 0, len(stations))
	for code := range stations {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		st := stations[code]
		var stopped []string
		for _, id := range st.Occupants() {
			if t, ok := trains[id]; ok && t.Status == StatusStopped && t.CurrentStation == code {
				stopped = append(stopped, id)
			}
		}
		if len(stopped) > st.Platforms {
			conflicts = append(conflicts, Conflict{
				ID:         uuid.NewString(),
				Type:       ConflictPlatform,
				Severity:   SeverityMedium,
				ResourceID: code,
				TrainIDs:   stopped,
				Capacity:   st.Platforms,
				Occupancy:  len(stopped),
				Timestamp:  now,
			})
		}
	}

	return conflicts
}
