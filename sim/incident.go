package sim

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/20230802363-ux/rail-optima-sim/timetable"
)

// IncidentType classifies a disruption. Each type has exactly one effect
// handler in Train.ApplyIncident.
type IncidentType string

const (
	IncidentSignalFailure      IncidentType = "signal_failure"
	IncidentTrackMaintenance   IncidentType = "track_maintenance"
	IncidentWeather            IncidentType = "weather"
	IncidentEquipmentFailure   IncidentType = "equipment_failure"
	IncidentPassengerEmergency IncidentType = "passenger_emergency"
)

const (
	signalFailureSpeedCapKMH = 20
	weatherSpeedFactor       = 0.7
)

// ParseIncidentType maps an input string to an IncidentType.
func ParseIncidentType(s string) (IncidentType, error) {
	switch IncidentType(s) {
	case IncidentSignalFailure, IncidentTrackMaintenance, IncidentWeather,
		IncidentEquipmentFailure, IncidentPassengerEmergency:
		return IncidentType(s), nil
	}
	return "", fmt.Errorf("unknown incident type %q", s)
}

// stopsTrains reports whether this incident type forces affected trains to
// a stop (as opposed to only restricting speed).
func (t IncidentType) stopsTrains() bool {
	switch t {
	case IncidentTrackMaintenance, IncidentEquipmentFailure, IncidentPassengerEmergency:
		return true
	case IncidentSignalFailure, IncidentWeather:
		return false
	}
	panic(fmt.Sprintf("sim: unknown incident type %q", string(t)))
}

// defaultDelayMinutes is the delay charged when the input does not specify
// one.
func (t IncidentType) defaultDelayMinutes() float64 {
	switch t {
	case IncidentTrackMaintenance:
		return 30
	case IncidentEquipmentFailure:
		return 20
	case IncidentPassengerEmergency:
		return 15
	case IncidentSignalFailure, IncidentWeather:
		return 0
	}
	panic(fmt.Sprintf("sim: unknown incident type %q", string(t)))
}

// Incident is the internal, time-normalized form of a disruption. Start and
// End are simulation seconds relative to the run's clock base; an open-ended
// incident has End = +Inf and never deactivates within the run.
type Incident struct {
	ID           string
	Type         IncidentType
	Location     string
	Start        float64
	End          float64
	Severity     int
	DelayMinutes float64
	Active       bool
	Affected     []string

	resolved bool // a window activates and deactivates at most once
}

// newIncident normalizes an input incident against the run's clock base,
// failing fast on malformed fields.
func newIncident(in timetable.Incident, base time.Time) (*Incident, error) {
	if in.ID == "" {
		return nil, fmt.Errorf("incident missing id")
	}
	it, err := ParseIncidentType(in.Type)
	if err != nil {
		return nil, fmt.Errorf("incident %q: %w", in.ID, err)
	}
	if in.Location == "" {
		return nil, fmt.Errorf("incident %q: missing location", in.ID)
	}
	if in.StartTime.IsZero() {
		return nil, fmt.Errorf("incident %q: missing start_time", in.ID)
	}
	end := math.Inf(1)
	if in.EndTime != nil {
		end = in.EndTime.Sub(base).Seconds()
		if end <= in.StartTime.Sub(base).Seconds() {
			return nil, fmt.Errorf("incident %q: end_time is not after start_time", in.ID)
		}
	}
	severity := in.Severity
	if severity == 0 {
		severity = 3
	}
	return &Incident{
		ID:           in.ID,
		Type:         it,
		Location:     in.Location,
		Start:        in.StartTime.Sub(base).Seconds(),
		End:          end,
		Severity:     severity,
		DelayMinutes: in.DelayMinutes,
	}, nil
}

// EffectiveDelayMinutes is the incident-specified delay, or the type's
// fixed default when none was given.
func (i *Incident) EffectiveDelayMinutes() float64 {
	if i.DelayMinutes > 0 {
		return i.DelayMinutes
	}
	return i.Type.defaultDelayMinutes()
}

// affects reports whether a train is in the incident's affected area: at
// the incident's station, on a segment whose id contains the location, or
// routed through the location.
func (i *Incident) affects(t *Train) bool {
	if t.CurrentStation == i.Location {
		return true
	}
	if seg := t.CurrentSegmentID(); seg != "" && strings.Contains(seg, i.Location) {
		return true
	}
	return slices.Contains(t.Route, i.Location)
}
