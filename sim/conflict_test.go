package sim

import (
	"testing"
	"time"
)

// TestDetectConflicts_TrackOveroccupancy tests the high-severity track case
func TestDetectConflicts_TrackOveroccupancy(t *testing.T) {
	now := testBase
	tr := NewTrack("OSL", "DRM", 40, 120, 1)
	tr.Occupy("T1")
	tr.occupants["T2"] = true // best-effort entry went unregistered elsewhere

	got := DetectConflicts(now, map[string]*Track{tr.SegmentID: tr}, nil, nil)
	if len(got) != 1 {
		t.Fatalf("conflicts = %d, want 1", len(got))
	}
	c := got[0]
	if c.Type != ConflictTrackOveroccupancy {
		t.Errorf("type = %q, want track_overoccupancy", c.Type)
	}
	if c.Severity != SeverityHigh {
		t.Errorf("severity = %q, want high", c.Severity)
	}
	if c.ResourceID != "DRM-OSL" {
		t.Errorf("resource = %q, want DRM-OSL", c.ResourceID)
	}
	if c.Capacity != 1 || c.Occupancy != 2 {
		t.Errorf("capacity/occupancy = %d/%d, want 1/2", c.Capacity, c.Occupancy)
	}
	if len(c.TrainIDs) != 2 || c.TrainIDs[0] != "T1" || c.TrainIDs[1] != "T2" {
		t.Errorf("train ids = %v, want [T1 T2]", c.TrainIDs)
	}
	if c.ID == "" {
		t.Error("conflict id missing")
	}
	if !c.Timestamp.Equal(now) {
		t.Errorf("timestamp = %v, want %v", c.Timestamp, now)
	}
}

// TestDetectConflicts_Platform tests the medium-severity station case. Only
// stopped trains compete for platforms; a scheduled train waiting at its
// origin does not.
func TestDetectConflicts_Platform(t *testing.T) {
	st := NewStation("DRM", 1)
	st.Arrive("T1")
	st.Arrive("T2")
	st.Arrive("T3")

	mk := func(id string, status TrainStatus) *Train {
		tr := mustTrain(t, testEntry(id, "OSL", "DRM", "BGO"))
		tr.Status = status
		tr.RouteIndex = 1
		tr.CurrentStation = "DRM"
		return tr
	}
	trains := map[string]*Train{
		"T1": mk("T1", StatusStopped),
		"T2": mk("T2", StatusStopped),
		"T3": mk("T3", StatusScheduled),
	}

	got := DetectConflicts(testBase, nil, map[string]*Station{"DRM": st}, trains)
	if len(got) != 1 {
		t.Fatalf("conflicts = %d, want 1", len(got))
	}
	c := got[0]
	if c.Type != ConflictPlatform || c.Severity != SeverityMedium {
		t.Errorf("type/severity = %q/%q, want platform_conflict/medium", c.Type, c.Severity)
	}
	if len(c.TrainIDs) != 2 {
		t.Errorf("train ids = %v, want the two stopped trains only", c.TrainIDs)
	}
}

// TestDetectConflicts_Clean tests that occupancy at capacity is not a conflict
func TestDetectConflicts_Clean(t *testing.T) {
	tr := NewTrack("OSL", "DRM", 40, 120, 2)
	tr.Occupy("T1")
	tr.Occupy("T2")
	st := NewStation("OSL", 2)
	st.Arrive("T3")

	got := DetectConflicts(testBase, map[string]*Track{tr.SegmentID: tr}, map[string]*Station{"OSL": st}, nil)
	if len(got) != 0 {
		t.Errorf("conflicts = %v, want none at exact capacity", got)
	}
}

// TestDetectConflicts_StableOrder tests deterministic resource ordering
func TestDetectConflicts_StableOrder(t *testing.T) {
	tracks := map[string]*Track{}
	for _, pair := range [][2]string{{"C", "D"}, {"A", "B"}} {
		tr := NewTrack(pair[0], pair[1], 10, 120, 1)
		tr.occupants["T1"] = true
		tr.occupants["T2"] = true
		tracks[tr.SegmentID] = tr
	}
	for i := 0; i < 5; i++ {
		got := DetectConflicts(time.Now(), tracks, nil, nil)
		if len(got) != 2 {
			t.Fatalf("conflicts = %d, want 2", len(got))
		}
		if got[0].ResourceID != "A-B" || got[1].ResourceID != "C-D" {
			t.Fatalf("order = %q, %q; want A-B then C-D", got[0].ResourceID, got[1].ResourceID)
		}
	}
}
