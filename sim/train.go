package sim

import (
	"fmt"
	"time"

	"github.com/20230802363-ux/rail-optima-sim/timetable"
)

// TrainStatus is the operational state of a train.
type TrainStatus string

const (
	StatusScheduled TrainStatus = "scheduled"
	StatusRunning   TrainStatus = "running"
	StatusStopped   TrainStatus = "stopped"
	StatusCompleted TrainStatus = "completed"
)

// TrainType determines a train's operating characteristics.
type TrainType string

const (
	TrainExpress   TrainType = "express"
	TrainPassenger TrainType = "passenger"
	TrainFreight   TrainType = "freight"
	TrainSuburban  TrainType = "suburban"
)

// trainProfile is the per-type operating envelope.
type trainProfile struct {
	MaxSpeedKMH  float64
	FuelPerKM    float64
	StopDuration time.Duration
	Passengers   int
}

func (t TrainType) profile() trainProfile {
	switch t {
	case TrainExpress:
		return trainProfile{MaxSpeedKMH: 160, FuelPerKM: 3.2, StopDuration: 2 * time.Minute, Passengers: 350}
	case TrainPassenger:
		return trainProfile{MaxSpeedKMH: 120, FuelPerKM: 2.4, StopDuration: 3 * time.Minute, Passengers: 450}
	case TrainFreight:
		return trainProfile{MaxSpeedKMH: 80, FuelPerKM: 5.8, StopDuration: 5 * time.Minute, Passengers: 0}
	case TrainSuburban:
		return trainProfile{MaxSpeedKMH: 100, FuelPerKM: 2.0, StopDuration: 90 * time.Second, Passengers: 250}
	}
	panic(fmt.Sprintf("sim: unknown train type %q", string(t)))
}

// ParseTrainType maps an input string to a TrainType. Empty input defaults
// to passenger.
func ParseTrainType(s string) (TrainType, error) {
	switch s {
	case "":
		return TrainPassenger, nil
	case string(TrainExpress), string(TrainPassenger), string(TrainFreight), string(TrainSuburban):
		return TrainType(s), nil
	}
	return "", fmt.Errorf("unknown train type %q", s)
}

// defaultPriority is the middle of the 1 (highest) to 5 (lowest) scale.
const defaultPriority = 3

// departureSpeedFactor is the fraction of the type maximum a train runs at
// when it enters or resumes service.
const departureSpeedFactor = 0.8

// Train is the per-train kinematic and operational state machine. All
// mutation happens inside the engine's tick; Train methods touch only the
// train's own fields.
type Train struct {
	ID             string
	Type           TrainType
	Priority       int
	Route          []string
	RouteIndex     int
	CurrentStation string
	Status         TrainStatus

	SpeedKMH     float64
	Position     float64 // fractional position along the current segment, [0,1)
	DelayMinutes float64
	DistanceKM   float64
	FuelLiters   float64
	Passengers   int

	ScheduledDeparture time.Time
	ScheduledArrival   time.Time
	ActualDeparture    time.Time
	ActualArrival      time.Time

	prof      trainProfile
	incidents []*Incident
	resumeAt  time.Time // scheduled wake from a platform dwell; zero when none
}

// NewTrain builds a Train from a timetable entry, failing fast on malformed
// input.
func NewTrain(e timetable.Entry) (*Train, error) {
	if e.TrainID == "" {
		return nil, fmt.Errorf("timetable entry missing train_id")
	}
	tt, err := ParseTrainType(e.TrainType)
	if err != nil {
		return nil, fmt.Errorf("train %q: %w", e.TrainID, err)
	}
	route := e.EffectiveRoute()
	if len(route) < 2 {
		return nil, fmt.Errorf("train %q: route must contain at least 2 stations", e.TrainID)
	}
	if e.ScheduledDeparture.IsZero() || e.ScheduledArrival.IsZero() {
		return nil, fmt.Errorf("train %q: missing scheduled departure or arrival", e.TrainID)
	}
	prio := e.Priority
	if prio == 0 {
		prio = defaultPriority
	}
	prof := tt.profile()
	return &Train{
		ID:                 e.TrainID,
		Type:               tt,
		Priority:           prio,
		Route:              append([]string(nil), route...),
		CurrentStation:     route[0],
		Status:             StatusScheduled,
		Passengers:         prof.Passengers,
		ScheduledDeparture: e.ScheduledDeparture,
		ScheduledArrival:   e.ScheduledArrival,
		prof:               prof,
	}, nil
}

// MaxSpeedKMH is the type's maximum speed.
func (t *Train) MaxSpeedKMH() float64 { return t.prof.MaxSpeedKMH }

// CurrentSegmentID is the canonical id of the segment the train is on, or
// empty once the route is exhausted.
func (t *Train) CurrentSegmentID() string {
	if t.RouteIndex >= len(t.Route)-1 {
		return ""
	}
	return SegmentID(t.Route[t.RouteIndex], t.Route[t.RouteIndex+1])
}

// Advance moves the train along its current segment for one timestep.
// It is a no-op unless the train is running. Returns true when the train
// reached the end of the segment and the arrival transition fired.
func (t *Train) Advance(now time.Time, stepSeconds float64, segmentKM float64) bool {
	if t.Status != StatusRunning {
		return false
	}
	dist := t.SpeedKMH * stepSeconds / 3600
	t.DistanceKM += dist
	t.FuelLiters += dist * t.prof.FuelPerKM
	if segmentKM > 0 {
		t.Position += dist / segmentKM
	}
	if t.Position < 1.0 {
		return false
	}
	t.arrive(now)
	return true
}

// arrive is the station-arrival transition: advance the route index, and
// either complete the journey or schedule a platform dwell.
func (t *Train) arrive(now time.Time) {
	t.Position = 0
	t.RouteIndex++
	t.CurrentStation = t.Route[t.RouteIndex]
	t.SpeedKMH = 0
	if t.RouteIndex >= len(t.Route)-1 {
		t.Status = StatusCompleted
		t.ActualArrival = now
		if late := now.Sub(t.ScheduledArrival).Minutes(); late > t.DelayMinutes {
			t.DelayMinutes = late
		}
		t.resumeAt = time.Time{}
		return
	}
	t.Status = StatusStopped
	t.resumeAt = now.Add(t.prof.StopDuration)
}

// depart fires the scheduled-to-running transition.
func (t *Train) depart(now time.Time) {
	t.Status = StatusRunning
	t.SpeedKMH = departureSpeedFactor * t.prof.MaxSpeedKMH
	t.ActualDeparture = now
	t.applySpeedCaps()
}

// resume wakes the train from a platform dwell.
func (t *Train) resume() {
	t.Status = StatusRunning
	t.SpeedKMH = departureSpeedFactor * t.prof.MaxSpeedKMH
	t.resumeAt = time.Time{}
	t.applySpeedCaps()
}

// ApplyIncident attaches an incident and applies its type-specific effect.
// Effects are not idempotent: applying the same weather incident twice
// compounds the slowdown, and stop delays accrue per application.
func (t *Train) ApplyIncident(inc *Incident) {
	if t.Status == StatusCompleted {
		return
	}
	t.incidents = append(t.incidents, inc)
	switch inc.Type {
	case IncidentSignalFailure:
		if t.SpeedKMH > signalFailureSpeedCapKMH {
			t.SpeedKMH = signalFailureSpeedCapKMH
		}
	case IncidentTrackMaintenance, IncidentEquipmentFailure, IncidentPassengerEmergency:
		if t.Status == StatusRunning {
			t.Status = StatusStopped
		}
		t.SpeedKMH = 0
		t.DelayMinutes += inc.EffectiveDelayMinutes()
	case IncidentWeather:
		t.SpeedKMH *= weatherSpeedFactor
	}
}

// RemoveIncident detaches an incident by identity; removing one that is not
// attached is a silent no-op. When the last incident clears, speed is
// restored to the type maximum and a stopped train resumes running.
// A train dwelling at a platform is resumed here as well: the restoration
// does not distinguish an incident stop from a scheduled dwell.
func (t *Train) RemoveIncident(inc *Incident) {
	for i, a := range t.incidents {
		if a == inc {
			t.incidents = append(t.incidents[:i], t.incidents[i+1:]...)
			break
		}
	}
	if len(t.incidents) > 0 {
		return
	}
	switch t.Status {
	case StatusScheduled, StatusCompleted:
		return
	case StatusStopped:
		t.Status = StatusRunning
		fallthrough
	case StatusRunning:
		t.SpeedKMH = t.prof.MaxSpeedKMH
	}
}

// hasStoppingIncident reports whether any attached incident forces a stop.
func (t *Train) hasStoppingIncident() bool {
	for _, inc := range t.incidents {
		if inc.Type.stopsTrains() {
			return true
		}
	}
	return false
}

// applySpeedCaps re-applies the signal-failure cap after a speed reset.
func (t *Train) applySpeedCaps() {
	for _, inc := range t.incidents {
		if inc.Type == IncidentSignalFailure && t.SpeedKMH > signalFailureSpeedCapKMH {
			t.SpeedKMH = signalFailureSpeedCapKMH
		}
	}
}

// TrainSnapshot is a read-only projection of a train's state for external
// reporting.
type TrainSnapshot struct {
	ID                 string      `json:"train_id"`
	Type               TrainType   `json:"train_type"`
	Status             TrainStatus `json:"status"`
	Priority           int         `json:"priority"`
	CurrentStation     string      `json:"current_station"`
	RouteIndex         int         `json:"route_index"`
	Position           float64     `json:"position"`
	SpeedKMH           float64     `json:"speed_kmh"`
	DelayMinutes       float64     `json:"delay_minutes"`
	DistanceKM         float64     `json:"distance_km"`
	FuelLiters         float64     `json:"fuel_liters"`
	Passengers         int         `json:"passengers"`
	ScheduledDeparture time.Time   `json:"scheduled_departure"`
	ScheduledArrival   time.Time   `json:"scheduled_arrival"`
	ActualDeparture    time.Time   `json:"actual_departure,omitzero"`
	ActualArrival      time.Time   `json:"actual_arrival,omitzero"`
	ActiveIncidents    []string    `json:"active_incidents,omitempty"`
}

// Snapshot copies the train's current state.
func (t *Train) Snapshot() TrainSnapshot {
	s := TrainSnapshot{
		ID:                 t.ID,
		Type:               t.Type,
		Status:             t.Status,
		Priority:           t.Priority,
		CurrentStation:     t.CurrentStation,
		RouteIndex:         t.RouteIndex,
		Position:           t.Position,
		SpeedKMH:           t.SpeedKMH,
		DelayMinutes:       t.DelayMinutes,
		DistanceKM:         t.DistanceKM,
		FuelLiters:         t.FuelLiters,
		Passengers:         t.Passengers,
		ScheduledDeparture: t.ScheduledDeparture,
		ScheduledArrival:   t.ScheduledArrival,
		ActualDeparture:    t.ActualDeparture,
		ActualArrival:      t.ActualArrival,
	}
	for _, inc := range t.incidents {
		s.ActiveIncidents = append(s.ActiveIncidents, inc.ID)
	}
	return s
}
