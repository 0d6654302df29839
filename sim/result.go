package sim

import "time"

// UtilizationSnapshot records per-segment occupancy rates at one tick.
type UtilizationSnapshot struct {
	Tick        int                `json:"tick"`
	Timestamp   time.Time          `json:"timestamp"`
	Utilization map[string]float64 `json:"utilization"`
}

// Summary aggregates a finished (or cancelled) run.
type Summary struct {
	TotalTrains         int     `json:"total_trains"`
	CompletedTrains     int     `json:"completed_trains"`
	DelayedTrains       int     `json:"delayed_trains"`
	OnTimePerformance   float64 `json:"on_time_performance"`
	TotalDelayMinutes   float64 `json:"total_delay_minutes"`
	AverageDelayMinutes float64 `json:"average_delay_minutes"`
	TotalDistanceKM     float64 `json:"total_distance_km"`
	TotalFuelLiters     float64 `json:"total_fuel_liters"`
	TotalPassengers     int     `json:"total_passengers"`
	ConflictCount       int     `json:"conflict_count"`
}

// Statistics counts what happened during the run.
type Statistics struct {
	TicksExecuted     int `json:"ticks_executed"`
	TotalEvents       int `json:"total_events"`
	Departures        int `json:"departures"`
	Arrivals          int `json:"arrivals"`
	IncidentsApplied  int `json:"incidents_applied"`
	IncidentsResolved int `json:"incidents_resolved"`
	ConflictsDetected int `json:"conflicts_detected"`
}

// Result is the complete output of one simulation run. It is built
// incrementally by the engine and immutable once Run returns it.
type Result struct {
	RunID             string                `json:"run_id"`
	Scenario          string                `json:"scenario"`
	StartTime         time.Time             `json:"start_time"`
	EndTime           time.Time             `json:"end_time"`
	TrainEvents       []Event               `json:"train_events"`
	Conflicts         []Conflict            `json:"conflicts"`
	TrackUtilization  []UtilizationSnapshot `json:"track_utilization"`
	CompletedJourneys []string              `json:"completed_journeys"`
	Summary           Summary               `json:"summary"`
	Statistics        Statistics            `json:"statistics"`
}
