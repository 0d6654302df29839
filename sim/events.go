package sim

import "time"

// EventKind identifies a train lifecycle event.
type EventKind string

const (
	EventDeparture        EventKind = "departure"
	EventArrival          EventKind = "arrival"
	EventJourneyCompleted EventKind = "journey_completed"
	EventIncidentApplied  EventKind = "incident_applied"
	EventIncidentResolved EventKind = "incident_resolved"
)

// Event is one entry in the run's ordered event log.
type Event struct {
	Kind          EventKind `json:"event"`
	TrainID       string    `json:"train_id"`
	Location      string    `json:"location,omitempty"`
	IncidentID    string    `json:"incident_id,omitempty"`
	ScheduledTime time.Time `json:"scheduled_time,omitzero"`
	ActualTime    time.Time `json:"actual_time,omitzero"`
	DelayMinutes  float64   `json:"delay_minutes,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}
