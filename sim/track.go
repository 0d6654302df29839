package sim

import (
	"math"
	"sort"
)

// SignalStatus is the aspect shown at the entry of a track segment.
type SignalStatus string

const (
	SignalGreen SignalStatus = "green"
	SignalRed   SignalStatus = "red"
)

// SegmentID derives the canonical id for the segment between two stations.
// The pair is order-insensitive: both directions share one segment.
func SegmentID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "-" + b
}

// SpeedRestriction caps the speed over a segment, e.g. for a work zone.
type SpeedRestriction struct {
	MaxSpeedKMH float64 `json:"max_speed_kmh"`
	Reason      string  `json:"reason,omitempty"`
}

// Track is a shared-capacity segment between two stations. Occupancy above
// capacity is representable on purpose: the conflict detector observes the
// violation, Occupy merely guards the common path.
type Track struct {
	SegmentID    string
	From, To     string
	DistanceKM   float64
	MaxSpeedKMH  float64
	Capacity     int
	Electrified  bool
	Type         string // single, double, multiple
	Signal       SignalStatus
	restrictions []SpeedRestriction
	occupants    map[string]bool
}

// NewTrack creates a segment between two stations.
func NewTrack(from, to string, distanceKM, maxSpeedKMH float64, capacity int) *Track {
	if capacity < 1 {
		capacity = 1
	}
	return &Track{
		SegmentID:   SegmentID(from, to),
		From:        from,
		To:          to,
		DistanceKM:  distanceKM,
		MaxSpeedKMH: maxSpeedKMH,
		Capacity:    capacity,
		Electrified: true,
		Type:        "double",
		Signal:      SignalGreen,
		occupants:   map[string]bool{},
	}
}

// CanAccept reports whether the segment can take another train: below
// capacity and showing green. Pure predicate, no side effects.
func (t *Track) CanAccept(trainID string) bool {
	return len(t.occupants) < t.Capacity && t.Signal == SignalGreen
}

// Occupy registers a train on the segment if CanAccept holds and reports
// whether it did.
func (t *Track) Occupy(trainID string) bool {
	if !t.CanAccept(trainID) {
		return false
	}
	t.occupants[trainID] = true
	return true
}

// Release removes a train from the segment. Idempotent.
func (t *Track) Release(trainID string) {
	delete(t.occupants, trainID)
}

// Occupants returns the occupying train ids in stable order.
func (t *Track) Occupants() []string {
	ids := make([]string, 0, len(t.occupants))
	for id := range t.occupants {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// AddRestriction appends a speed restriction to the segment.
func (t *Track) AddRestriction(r SpeedRestriction) {
	t.restrictions = append(t.restrictions, r)
}

// CurrentMaxSpeed is the base maximum capped by every active restriction.
func (t *Track) CurrentMaxSpeed() float64 {
	max := t.MaxSpeedKMH
	for _, r := range t.restrictions {
		if r.MaxSpeedKMH < max {
			max = r.MaxSpeedKMH
		}
	}
	return max
}

// OccupancyRate is occupant count over capacity. Values above 1.0 are never
// clamped: exceeding 1.0 is exactly the signal the conflict detector keys on.
func (t *Track) OccupancyRate() float64 {
	if t.Capacity == 0 {
		return 0
	}
	return float64(len(t.occupants)) / float64(t.Capacity)
}

// Station is a named stop with a fixed number of platforms.
type Station struct {
	Code      string
	Name      string
	Platforms int
	Latitude  float64
	Longitude float64
	occupants map[string]bool
}

// NewStation creates a station with the given platform count.
func NewStation(code string, platforms int) *Station {
	if platforms < 1 {
		platforms = 1
	}
	return &Station{Code: code, Name: code, Platforms: platforms, occupants: map[string]bool{}}
}

// Arrive asserts that a train holds a platform.
func (s *Station) Arrive(trainID string) { s.occupants[trainID] = true }

// Depart releases a train's platform. Idempotent.
func (s *Station) Depart(trainID string) { delete(s.occupants, trainID) }

// Occupants returns the platform-holding train ids in stable order.
func (s *Station) Occupants() []string {
	ids := make([]string, 0, len(s.occupants))
	for id := range s.occupants {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// haversineKM is the great-circle distance between two coordinates in
// kilometres.
func haversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKM = 6371
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := rad(lat2 - lat1)
	dLon := rad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
