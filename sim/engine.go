package sim

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/20230802363-ux/rail-optima-sim/timetable"
)

// utilizationInterval: a track-utilization snapshot is taken every this many
// ticks.
const utilizationInterval = 10

// Params configures one simulation run.
//
// Seed 0 derives a seed from the wall clock, so unseeded runs legitimately
// produce different generated track attributes run-to-run; pass a non-zero
// seed for reproducible runs. StepSeconds should evenly divide
// DurationMinutes*60 for a clean final tick; a remainder is floored away.
type Params struct {
	Scenario        string    `json:"scenario"`
	DurationMinutes int       `json:"duration_minutes" validate:"gt=0"`
	StepSeconds     int       `json:"step_seconds" validate:"gt=0"`
	Seed            int64     `json:"seed,omitempty"`
	StartTime       time.Time `json:"start_time,omitzero"`
}

func (p Params) validate() error {
	if p.DurationMinutes <= 0 {
		return fmt.Errorf("duration must be positive, got %d", p.DurationMinutes)
	}
	if p.StepSeconds <= 0 {
		return fmt.Errorf("time step must be positive, got %d", p.StepSeconds)
	}
	return nil
}

// TrackSpec is the set of generated attributes for one track segment.
type TrackSpec struct {
	DistanceKM     float64
	MaxSpeedKMH    float64
	Capacity       int
	Electrified    bool
	Type           string
	RestrictionKMH float64 // 0 means no restriction
}

// TrackGenerator supplies attributes for a newly created segment. The
// default generator draws them from the run's seeded source; tests override
// it for fixed geometry.
type TrackGenerator func(from, to string) TrackSpec

// Option customizes an Engine at construction.
type Option func(*Engine)

// WithObserver registers a run observer.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observers = append(e.observers, o) }
}

// WithTrackGenerator overrides generated track attributes.
func WithTrackGenerator(g TrackGenerator) Option {
	return func(e *Engine) { e.trackGen = g }
}

// Engine owns all Train/Track/Station/Incident state for one run and drives
// it end to end. An Engine is single-use: construct, Run once, read the
// result. Accessors are safe to call from other goroutines while Run is in
// flight; they observe whole-tick state only.
type Engine struct {
	mu sync.RWMutex

	params     Params
	clockBase  time.Time
	simSeconds float64
	totalSteps int

	trains     map[string]*Train
	trainOrder []string
	tracks     map[string]*Track
	stations   map[string]*Station
	incidents  []*Incident

	observers []Observer
	trackGen  TrackGenerator
	rng       *rand.Rand

	running       bool
	stopRequested bool
	result        *Result
}

// New builds an Engine from run parameters and fully loaded input. All
// input malformation is rejected here, before the loop starts.
func New(params Params, input timetable.Timetable, opts ...Option) (*Engine, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	seed := params.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	e := &Engine{
		params:     params,
		totalSteps: params.DurationMinutes * 60 / params.StepSeconds,
		trains:     map[string]*Train{},
		tracks:     map[string]*Track{},
		stations:   map[string]*Station{},
		rng:        rand.New(rand.NewSource(seed)),
		result: &Result{
			RunID:             uuid.NewString(),
			Scenario:          params.Scenario,
			TrainEvents:       []Event{},
			Conflicts:         []Conflict{},
			TrackUtilization:  []UtilizationSnapshot{},
			CompletedJourneys: []string{},
		},
	}
	for _, opt := range opts {
		opt(e)
	}

	for i, entry := range input.Entries {
		t, err := NewTrain(entry)
		if err != nil {
			return nil, fmt.Errorf("timetable entry %d: %w", i, err)
		}
		if _, dup := e.trains[t.ID]; dup {
			return nil, fmt.Errorf("timetable entry %d: duplicate train %q", i, t.ID)
		}
		e.trains[t.ID] = t
		e.trainOrder = append(e.trainOrder, t.ID)
	}

	e.clockBase = params.StartTime
	if e.clockBase.IsZero() {
		for _, id := range e.trainOrder {
			dep := e.trains[id].ScheduledDeparture
			if e.clockBase.IsZero() || dep.Before(e.clockBase) {
				e.clockBase = dep
			}
		}
	}
	if e.clockBase.IsZero() {
		e.clockBase = time.Now()
	}

	info := map[string]timetable.StationInfo{}
	for _, st := range input.Stations {
		info[st.Code] = st
	}
	for _, id := range e.trainOrder {
		t := e.trains[id]
		for _, code := range t.Route {
			e.ensureStation(code, info)
		}
		for i := 0; i < len(t.Route)-1; i++ {
			e.ensureTrack(t.Route[i], t.Route[i+1], info)
		}
		e.stations[t.Route[0]].Arrive(t.ID)
	}

	for i, in := range input.Incidents {
		inc, err := newIncident(in, e.clockBase)
		if err != nil {
			return nil, fmt.Errorf("incident %d: %w", i, err)
		}
		e.incidents = append(e.incidents, inc)
	}

	return e, nil
}

func (e *Engine) ensureStation(code string, info map[string]timetable.StationInfo) {
	if _, ok := e.stations[code]; ok {
		return
	}
	platforms := 0
	if in, ok := info[code]; ok {
		platforms = in.Platforms
	}
	if platforms == 0 {
		platforms = 1 + e.rng.Intn(3)
	}
	st := NewStation(code, platforms)
	if in, ok := info[code]; ok {
		if in.Name != "" {
			st.Name = in.Name
		}
		st.Latitude = in.Latitude
		st.Longitude = in.Longitude
	}
	e.stations[code] = st
}

func (e *Engine) ensureTrack(from, to string, info map[string]timetable.StationInfo) {
	seg := SegmentID(from, to)
	if _, ok := e.tracks[seg]; ok {
		return
	}
	var spec TrackSpec
	if e.trackGen != nil {
		spec = e.trackGen(from, to)
	} else {
		spec = e.generateTrackSpec()
	}
	// Known coordinates beat the generated distance.
	a, okA := info[from]
	b, okB := info[to]
	if okA && okB && (a.Latitude != 0 || a.Longitude != 0) && (b.Latitude != 0 || b.Longitude != 0) {
		if d := haversineKM(a.Latitude, a.Longitude, b.Latitude, b.Longitude); d > 0 {
			spec.DistanceKM = d
		}
	}
	tr := NewTrack(from, to, spec.DistanceKM, spec.MaxSpeedKMH, spec.Capacity)
	tr.Electrified = spec.Electrified
	if spec.Type != "" {
		tr.Type = spec.Type
	}
	if spec.RestrictionKMH > 0 {
		tr.AddRestriction(SpeedRestriction{MaxSpeedKMH: spec.RestrictionKMH, Reason: "work zone"})
	}
	e.tracks[seg] = tr
}

func (e *Engine) generateTrackSpec() TrackSpec {
	speeds := []float64{100, 120, 140, 160}
	spec := TrackSpec{
		DistanceKM:  20 + e.rng.Float64()*80,
		MaxSpeedKMH: speeds[e.rng.Intn(len(speeds))],
		Capacity:    1 + e.rng.Intn(2),
		Electrified: e.rng.Float64() < 0.8,
	}
	if spec.Capacity == 1 {
		spec.Type = "single"
	} else {
		spec.Type = "double"
	}
	if e.rng.Float64() < 0.1 {
		spec.RestrictionKMH = 60
	}
	return spec
}

// Run drives the simulation to completion or cancellation and returns the
// result. Cancellation (ctx or Stop) is checked at tick granularity and
// yields a normally shaped partial result, not an error.
func (e *Engine) Run(ctx context.Context) *Result {
	e.mu.Lock()
	e.running = true
	e.result.StartTime = e.clockBase
	total := e.totalSteps
	scenario := e.params.Scenario
	e.mu.Unlock()

	e.notifyStarted(scenario, total)

	progressEvery := total / 20
	if progressEvery < 1 {
		progressEvery = 1
	}

	step := 0
	for step < total {
		if ctx != nil && ctx.Err() != nil {
			break
		}
		e.mu.Lock()
		if e.stopRequested {
			e.mu.Unlock()
			break
		}
		step++
		e.simSeconds += float64(e.params.StepSeconds)
		now := e.clockBase.Add(time.Duration(e.simSeconds * float64(time.Second)))

		// Mutation phase: trains first, then incident windows.
		for _, id := range e.trainOrder {
			e.updateTrain(now, e.trains[id])
		}
		e.processIncidents(now)

		// Observation phase: conflicts and snapshots read settled state.
		conflicts := DetectConflicts(now, e.tracks, e.stations, e.trains)
		e.result.Conflicts = append(e.result.Conflicts, conflicts...)
		e.result.Statistics.ConflictsDetected += len(conflicts)
		if step%utilizationInterval == 0 {
			e.result.TrackUtilization = append(e.result.TrackUtilization, e.utilizationSnapshot(step, now))
		}
		e.result.Statistics.TicksExecuted = step
		e.mu.Unlock()

		if step%progressEvery == 0 {
			e.notifyProgress(step, total, now)
		}
	}

	e.mu.Lock()
	e.result.EndTime = e.clockBase.Add(time.Duration(e.simSeconds * float64(time.Second)))
	e.result.Summary = computeSummary(e.trains, len(e.result.Conflicts))
	e.result.Statistics.TotalEvents = len(e.result.TrainEvents)
	res := e.result
	e.running = false
	e.mu.Unlock()

	e.notifyCompleted(res)
	return res
}

// Stop requests cooperative cancellation. The in-flight tick completes
// before the loop exits.
func (e *Engine) Stop() {
	e.mu.Lock()
	e.stopRequested = true
	e.mu.Unlock()
}

func (e *Engine) updateTrain(now time.Time, t *Train) {
	switch t.Status {
	case StatusScheduled:
		if !now.Before(t.ScheduledDeparture) {
			e.departTrain(now, t)
		}
	case StatusStopped:
		if !t.resumeAt.IsZero() && !now.Before(t.resumeAt) && !t.hasStoppingIncident() {
			e.resumeTrain(t)
		}
	case StatusRunning:
		seg := t.CurrentSegmentID()
		track := e.tracks[seg]
		segKM := 0.0
		if track != nil {
			segKM = track.DistanceKM
		}
		if !t.Advance(now, float64(e.params.StepSeconds), segKM) {
			return
		}
		if track != nil {
			track.Release(t.ID)
		}
		if st := e.stations[t.CurrentStation]; st != nil {
			st.Arrive(t.ID)
		}
		e.recordEvent(Event{
			Kind:         EventArrival,
			TrainID:      t.ID,
			Location:     t.CurrentStation,
			ActualTime:   now,
			DelayMinutes: round1(t.DelayMinutes),
			Timestamp:    now,
		})
		e.result.Statistics.Arrivals++
		if t.Status == StatusCompleted {
			e.recordEvent(Event{
				Kind:          EventJourneyCompleted,
				TrainID:       t.ID,
				Location:      t.CurrentStation,
				ScheduledTime: t.ScheduledArrival,
				ActualTime:    now,
				DelayMinutes:  round1(t.DelayMinutes),
				Timestamp:     now,
			})
			e.result.CompletedJourneys = append(e.result.CompletedJourneys, t.ID)
		}
	}
}

func (e *Engine) departTrain(now time.Time, t *Train) {
	t.depart(now)
	if st := e.stations[t.CurrentStation]; st != nil {
		st.Depart(t.ID)
	}
	e.enterSegment(t)
	delay := now.Sub(t.ScheduledDeparture).Minutes()
	if delay < 0 {
		delay = 0
	}
	e.recordEvent(Event{
		Kind:          EventDeparture,
		TrainID:       t.ID,
		Location:      t.Route[0],
		ScheduledTime: t.ScheduledDeparture,
		ActualTime:    now,
		DelayMinutes:  round1(delay),
		Timestamp:     now,
	})
	e.result.Statistics.Departures++
}

func (e *Engine) resumeTrain(t *Train) {
	t.resume()
	if st := e.stations[t.CurrentStation]; st != nil {
		st.Depart(t.ID)
	}
	e.enterSegment(t)
}

// enterSegment registers the train on its current segment and caps its
// speed at the segment limit. Registration is best-effort: a full or red
// segment does not hold the train, it just goes unregistered and the
// detector reports any resulting contention.
func (e *Engine) enterSegment(t *Train) {
	track := e.tracks[t.CurrentSegmentID()]
	if track == nil {
		return
	}
	track.Occupy(t.ID)
	if max := track.CurrentMaxSpeed(); t.SpeedKMH > max {
		t.SpeedKMH = max
	}
}

func (e *Engine) processIncidents(now time.Time) {
	for _, inc := range e.incidents {
		if !inc.Active && !inc.resolved && e.simSeconds >= inc.Start {
			e.activateIncident(now, inc)
		}
		if inc.Active && e.simSeconds >= inc.End {
			e.deactivateIncident(now, inc)
		}
	}
}

func (e *Engine) activateIncident(now time.Time, inc *Incident) {
	inc.Active = true
	for _, id := range e.trainOrder {
		t := e.trains[id]
		if t.Status == StatusCompleted || !inc.affects(t) {
			continue
		}
		t.ApplyIncident(inc)
		inc.Affected = append(inc.Affected, id)
		e.recordEvent(Event{
			Kind:       EventIncidentApplied,
			TrainID:    id,
			IncidentID: inc.ID,
			Location:   inc.Location,
			ActualTime: now,
			Timestamp:  now,
		})
		e.result.Statistics.IncidentsApplied++
	}
	if inc.Type == IncidentTrackMaintenance {
		if track := e.resolveTrack(inc.Location); track != nil {
			track.Signal = SignalRed
		}
	}
}

func (e *Engine) deactivateIncident(now time.Time, inc *Incident) {
	inc.Active = false
	inc.resolved = true
	for _, id := range inc.Affected {
		t := e.trains[id]
		if t == nil {
			continue
		}
		was := t.Status
		t.RemoveIncident(inc)
		if was == StatusStopped && t.Status == StatusRunning {
			if st := e.stations[t.CurrentStation]; st != nil {
				st.Depart(t.ID)
			}
			e.enterSegment(t)
		}
		e.recordEvent(Event{
			Kind:       EventIncidentResolved,
			TrainID:    id,
			IncidentID: inc.ID,
			Location:   inc.Location,
			ActualTime: now,
			Timestamp:  now,
		})
		e.result.Statistics.IncidentsResolved++
	}
	if inc.Type == IncidentTrackMaintenance {
		if track := e.resolveTrack(inc.Location); track != nil {
			track.Signal = SignalGreen
		}
	}
	inc.Affected = nil
}

// resolveTrack maps an incident location to a track: an exact segment id
// first, then the first segment whose id contains the location.
func (e *Engine) resolveTrack(location string) *Track {
	if tr, ok := e.tracks[location]; ok {
		return tr
	}
	segIDs := make([]string, 0, len(e.tracks))
	for id := range e.tracks {
		segIDs = append(segIDs, id)
	}
	sort.Strings(segIDs)
	for _, id := range segIDs {
		if strings.Contains(id, location) {
			return e.tracks[id]
		}
	}
	return nil
}

func (e *Engine) utilizationSnapshot(tick int, now time.Time) UtilizationSnapshot {
	util := make(map[string]float64, len(e.tracks))
	for id, tr := range e.tracks {
		util[id] = tr.OccupancyRate()
	}
	return UtilizationSnapshot{Tick: tick, Timestamp: now, Utilization: util}
}

func (e *Engine) recordEvent(ev Event) {
	e.result.TrainEvents = append(e.result.TrainEvents, ev)
}

func (e *Engine) notifyStarted(scenario string, totalSteps int) {
	for _, o := range e.observers {
		o.SimulationStarted(scenario, totalSteps)
	}
}

func (e *Engine) notifyProgress(step, totalSteps int, clock time.Time) {
	for _, o := range e.observers {
		o.SimulationProgress(step, totalSteps, clock)
	}
}

func (e *Engine) notifyCompleted(res *Result) {
	for _, o := range e.observers {
		o.SimulationCompleted(res)
	}
}

// SystemStatus is the aggregate live view of a run for external polling.
type SystemStatus struct {
	Running             bool       `json:"running"`
	Clock               time.Time  `json:"clock"`
	Tick                int        `json:"tick"`
	TotalTrains         int        `json:"total_trains"`
	ActiveTrains        int        `json:"active_trains"`
	CompletedTrains     int        `json:"completed_trains"`
	DelayedTrains       int        `json:"delayed_trains"`
	OnTimeTrains        int        `json:"on_time_trains"`
	ActiveIncidents     int        `json:"active_incidents"`
	AverageDelayMinutes float64    `json:"average_delay_minutes"`
	OnTimePercentage    float64    `json:"on_time_percentage"`
	Statistics          Statistics `json:"statistics"`
}

// TrainStatus returns a snapshot of one train.
func (e *Engine) TrainStatus(id string) (TrainSnapshot, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	t, ok := e.trains[id]
	if !ok {
		return TrainSnapshot{}, false
	}
	return t.Snapshot(), true
}

// FleetStatus returns snapshots of every train keyed by id.
func (e *Engine) FleetStatus() map[string]TrainSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[string]TrainSnapshot, len(e.trains))
	for id, t := range e.trains {
		out[id] = t.Snapshot()
	}
	return out
}

// SystemStatus returns the aggregate state of the run.
func (e *Engine) SystemStatus() SystemStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s := SystemStatus{
		Running:          e.running,
		Clock:            e.clockBase.Add(time.Duration(e.simSeconds * float64(time.Second))),
		Tick:             e.result.Statistics.TicksExecuted,
		TotalTrains:      len(e.trains),
		OnTimePercentage: 100,
		Statistics:       e.result.Statistics,
	}
	delayedSum := 0.0
	delayedCount := 0
	for _, t := range e.trains {
		switch t.Status {
		case StatusRunning, StatusStopped:
			s.ActiveTrains++
		case StatusCompleted:
			s.CompletedTrains++
		}
		if t.DelayMinutes > delayedThresholdMinutes {
			s.DelayedTrains++
		}
		if t.DelayMinutes > 0 {
			delayedSum += t.DelayMinutes
			delayedCount++
		}
	}
	s.OnTimeTrains = s.TotalTrains - s.DelayedTrains
	if delayedCount > 0 {
		s.AverageDelayMinutes = round1(delayedSum / float64(delayedCount))
	}
	if s.TotalTrains > 0 {
		s.OnTimePercentage = round1(100 * float64(s.OnTimeTrains) / float64(s.TotalTrains))
	}
	for _, inc := range e.incidents {
		if inc.Active {
			s.ActiveIncidents++
		}
	}
	return s
}
