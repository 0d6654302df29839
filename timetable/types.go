package timetable

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Entry is one scheduled train journey.
type Entry struct {
	TrainID            string    `json:"train_id" validate:"required"`
	TrainType          string    `json:"train_type,omitempty" validate:"omitempty,oneof=express passenger freight suburban"`
	OriginStation      string    `json:"origin_station" validate:"required"`
	DestinationStation string    `json:"destination_station" validate:"required"`
	ScheduledDeparture time.Time `json:"scheduled_departure" validate:"required"`
	ScheduledArrival   time.Time `json:"scheduled_arrival" validate:"required"`
	Route              []string  `json:"route,omitempty"`
	Priority           int       `json:"priority,omitempty" validate:"gte=0,lte=5"`
}

// EffectiveRoute returns the entry's route, defaulting to the direct
// origin-destination pair when no explicit route is given.
func (e Entry) EffectiveRoute() []string {
	if len(e.Route) >= 2 {
		return e.Route
	}
	return []string{e.OriginStation, e.DestinationStation}
}

// Incident is a time-windowed disruption. EndTime nil means open-ended:
// the incident never deactivates within the run.
type Incident struct {
	ID           string     `json:"id" validate:"required"`
	Type         string     `json:"type" validate:"required,oneof=signal_failure track_maintenance weather equipment_failure passenger_emergency"`
	Location     string     `json:"location" validate:"required"`
	StartTime    time.Time  `json:"start_time" validate:"required"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	Severity     int        `json:"severity,omitempty" validate:"gte=0,lte=5"`
	DelayMinutes float64    `json:"delay_minutes,omitempty" validate:"gte=0"`
}

// StationInfo is optional per-station metadata. When both endpoints of a
// segment carry coordinates, the segment distance is derived from them
// instead of being randomly generated.
type StationInfo struct {
	Code      string  `json:"code" validate:"required"`
	Name      string  `json:"name,omitempty"`
	Latitude  float64 `json:"latitude,omitempty" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude,omitempty" validate:"gte=-180,lte=180"`
	Platforms int     `json:"platforms,omitempty" validate:"gte=0"`
}

// Timetable bundles everything a single simulation run consumes.
type Timetable struct {
	Entries   []Entry       `json:"timetable" validate:"required,min=1,dive"`
	Incidents []Incident    `json:"incidents,omitempty" validate:"dive"`
	Stations  []StationInfo `json:"stations,omitempty" validate:"dive"`
}

// Validate checks structural validity and schedule consistency. It returns
// the first structural error, or an aggregate of all consistency findings.
func (t *Timetable) Validate() error {
	if err := validate.Struct(t); err != nil {
		return err
	}
	if errs := t.ConsistencyErrors(); len(errs) > 0 {
		return fmt.Errorf("timetable inconsistent: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ConsistencyErrors reports schedule-level problems that field validation
// cannot see: duplicate train ids, arrivals at or before departures, and
// explicit routes that do not start/end at the declared origin/destination.
func (t *Timetable) ConsistencyErrors() []string {
	var errs []string
	seen := make(map[string]bool, len(t.Entries))
	for _, e := range t.Entries {
		if seen[e.TrainID] {
			errs = append(errs, fmt.Sprintf("train %s: duplicate train_id", e.TrainID))
		}
		seen[e.TrainID] = true
		if !e.ScheduledArrival.After(e.ScheduledDeparture) {
			errs = append(errs, fmt.Sprintf("train %s: scheduled arrival is not after departure", e.TrainID))
		}
		if len(e.Route) > 0 {
			if len(e.Route) < 2 {
				errs = append(errs, fmt.Sprintf("train %s: route must list at least 2 stations", e.TrainID))
				continue
			}
			if e.Route[0] != e.OriginStation {
				errs = append(errs, fmt.Sprintf("train %s: route starts at %s, origin is %s", e.TrainID, e.Route[0], e.OriginStation))
			}
			if e.Route[len(e.Route)-1] != e.DestinationStation {
				errs = append(errs, fmt.Sprintf("train %s: route ends at %s, destination is %s", e.TrainID, e.Route[len(e.Route)-1], e.DestinationStation))
			}
		}
	}
	return errs
}
