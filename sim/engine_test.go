package sim

import (
	"context"
	"testing"
	"time"

	"github.com/20230802363-ux/rail-optima-sim/timetable"
)

// fixedTracks pins generated geometry so journeys are exactly predictable:
// every segment is 10 km at 120 km/h with room for two trains.
func fixedTracks(from, to string) TrackSpec {
	return TrackSpec{DistanceKM: 10, MaxSpeedKMH: 120, Capacity: 2, Electrified: true, Type: "double"}
}

func testParams(durationMin int) Params {
	return Params{
		Scenario:        "unit",
		DurationMinutes: durationMin,
		StepSeconds:     60,
		Seed:            1,
	}
}

// TestEngine_SingleJourney walks one passenger train over a two-leg route
// and checks the full event record
func TestEngine_SingleJourney(t *testing.T) {
	tt := timetable.Timetable{Entries: []timetable.Entry{testEntry("T1", "OSL", "DRM", "BGO")}}
	e, err := New(testParams(30), tt, WithTrackGenerator(fixedTracks))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res := e.Run(context.Background())

	if res.Statistics.TicksExecuted != 30 {
		t.Errorf("ticks = %d, want 30", res.Statistics.TicksExecuted)
	}
	if len(res.CompletedJourneys) != 1 || res.CompletedJourneys[0] != "T1" {
		t.Fatalf("completed journeys = %v, want [T1]", res.CompletedJourneys)
	}

	var kinds []EventKind
	for _, ev := range res.TrainEvents {
		if ev.TrainID == "T1" {
			kinds = append(kinds, ev.Kind)
		}
	}
	want := []EventKind{EventDeparture, EventArrival, EventArrival, EventJourneyCompleted}
	if len(kinds) != len(want) {
		t.Fatalf("event kinds = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("event kinds = %v, want %v", kinds, want)
		}
	}

	if res.Statistics.Departures != 1 || res.Statistics.Arrivals != 2 {
		t.Errorf("departures/arrivals = %d/%d, want 1/2", res.Statistics.Departures, res.Statistics.Arrivals)
	}
	if res.Summary.CompletedTrains != 1 || res.Summary.OnTimePerformance != 100 {
		t.Errorf("summary = %+v, want 1 completed, on-time 100", res.Summary)
	}
	if res.Summary.TotalDistanceKM <= 20 {
		t.Errorf("distance = %v, want > 20 (two 10 km legs with overshoot)", res.Summary.TotalDistanceKM)
	}
	if res.RunID == "" || res.Scenario != "unit" {
		t.Errorf("run id/scenario = %q/%q", res.RunID, res.Scenario)
	}
	if !res.StartTime.Equal(testBase) {
		t.Errorf("start time = %v, want %v", res.StartTime, testBase)
	}
	if got, want := res.EndTime, testBase.Add(30*time.Minute); !got.Equal(want) {
		t.Errorf("end time = %v, want %v", got, want)
	}
	if len(res.TrackUtilization) != 3 { // ticks 10, 20, 30
		t.Errorf("utilization snapshots = %d, want 3", len(res.TrackUtilization))
	}
	if res.Statistics.TotalEvents != len(res.TrainEvents) {
		t.Errorf("total events = %d, want %d", res.Statistics.TotalEvents, len(res.TrainEvents))
	}
}

// TestEngine_SeedReproducibility tests that equal seeds generate equal
// networks
func TestEngine_SeedReproducibility(t *testing.T) {
	tt := timetable.Timetable{Entries: []timetable.Entry{
		testEntry("T1", "OSL", "DRM", "BGO"),
		testEntry("T2", "BGO", "VOS", "TRD"),
	}}

	build := func() *Engine {
		e, err := New(testParams(10), tt)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		return e
	}
	a, b := build(), build()

	if len(a.tracks) != len(b.tracks) {
		t.Fatalf("track counts differ: %d vs %d", len(a.tracks), len(b.tracks))
	}
	for id, ta := range a.tracks {
		tb, ok := b.tracks[id]
		if !ok {
			t.Fatalf("segment %s missing from second engine", id)
		}
		if ta.DistanceKM != tb.DistanceKM || ta.MaxSpeedKMH != tb.MaxSpeedKMH || ta.Capacity != tb.Capacity {
			t.Errorf("segment %s differs: %+v vs %+v", id, ta, tb)
		}
	}
	for code, sa := range a.stations {
		if sb := b.stations[code]; sb == nil || sa.Platforms != sb.Platforms {
			t.Errorf("station %s platform counts differ", code)
		}
	}
}

// TestEngine_ZeroTrains tests that an empty run still finishes cleanly
func TestEngine_ZeroTrains(t *testing.T) {
	e, err := New(testParams(5), timetable.Timetable{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res := e.Run(context.Background())
	if res.Summary.TotalTrains != 0 || res.Summary.OnTimePerformance != 100 {
		t.Errorf("summary = %+v, want 0 trains at 100%% on-time", res.Summary)
	}
	if res.Statistics.TicksExecuted != 5 {
		t.Errorf("ticks = %d, want 5", res.Statistics.TicksExecuted)
	}
}

// TestEngine_InvalidParams tests construction guards
func TestEngine_InvalidParams(t *testing.T) {
	tt := timetable.Timetable{Entries: []timetable.Entry{testEntry("T1")}}
	if _, err := New(Params{DurationMinutes: 0, StepSeconds: 60}, tt); err == nil {
		t.Error("zero duration accepted")
	}
	if _, err := New(Params{DurationMinutes: 10, StepSeconds: 0}, tt); err == nil {
		t.Error("zero step accepted")
	}

	dup := timetable.Timetable{Entries: []timetable.Entry{testEntry("T1"), testEntry("T1")}}
	if _, err := New(testParams(10), dup); err == nil {
		t.Error("duplicate train id accepted")
	}
}

// TestEngine_Stop tests cooperative cancellation before the first tick
func TestEngine_Stop(t *testing.T) {
	tt := timetable.Timetable{Entries: []timetable.Entry{testEntry("T1")}}
	e, err := New(testParams(60), tt, WithTrackGenerator(fixedTracks))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e.Stop()
	res := e.Run(context.Background())
	if res.Statistics.TicksExecuted != 0 {
		t.Errorf("ticks = %d, want 0", res.Statistics.TicksExecuted)
	}
	if res.Summary.TotalTrains != 1 {
		t.Errorf("summary still reports the fleet: %+v", res.Summary)
	}
}

// TestEngine_ContextCancel tests that a cancelled context halts the loop
func TestEngine_ContextCancel(t *testing.T) {
	tt := timetable.Timetable{Entries: []timetable.Entry{testEntry("T1")}}
	e, err := New(testParams(60), tt, WithTrackGenerator(fixedTracks))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := e.Run(ctx)
	if res.Statistics.TicksExecuted != 0 {
		t.Errorf("ticks = %d, want 0", res.Statistics.TicksExecuted)
	}
}

// TestEngine_IncidentLifecycle tests window activation, train impact and
// resolution against a train still waiting at its origin
func TestEngine_IncidentLifecycle(t *testing.T) {
	entry := testEntry("T1", "OSL", "BGO")
	entry.ScheduledDeparture = testBase.Add(20 * time.Minute)
	end := testBase.Add(3 * time.Minute)
	tt := timetable.Timetable{
		Entries: []timetable.Entry{entry},
		Incidents: []timetable.Incident{{
			ID:        "I1",
			Type:      "equipment_failure",
			Location:  "OSL",
			StartTime: testBase.Add(time.Minute),
			EndTime:   &end,
		}},
	}
	params := testParams(30)
	params.StartTime = testBase
	e, err := New(params, tt, WithTrackGenerator(fixedTracks))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res := e.Run(context.Background())

	if res.Statistics.IncidentsApplied != 1 || res.Statistics.IncidentsResolved != 1 {
		t.Errorf("applied/resolved = %d/%d, want 1/1",
			res.Statistics.IncidentsApplied, res.Statistics.IncidentsResolved)
	}
	var sawApplied, sawResolved bool
	for _, ev := range res.TrainEvents {
		switch ev.Kind {
		case EventIncidentApplied:
			sawApplied = true
			if ev.IncidentID != "I1" || ev.TrainID != "T1" {
				t.Errorf("applied event = %+v", ev)
			}
		case EventIncidentResolved:
			sawResolved = true
		}
	}
	if !sawApplied || !sawResolved {
		t.Error("incident events missing from the record")
	}

	// The equipment failure charged its 20-minute default; the journey still
	// finished within the 2-hour schedule, so nothing was added at arrival.
	snap, ok := e.TrainStatus("T1")
	if !ok {
		t.Fatal("train missing")
	}
	if snap.Status != StatusCompleted {
		t.Errorf("status = %q, want completed", snap.Status)
	}
	if snap.DelayMinutes != 20 {
		t.Errorf("delay = %v, want 20", snap.DelayMinutes)
	}
	if res.Summary.DelayedTrains != 1 || res.Summary.OnTimePerformance != 0 {
		t.Errorf("summary = %+v, want 1 delayed train at 0%% on-time", res.Summary)
	}
}

// TestEngine_TrackMaintenance tests the red-signal side effect and the
// forced stop of an en-route train
func TestEngine_TrackMaintenance(t *testing.T) {
	end := testBase.Add(10 * time.Minute)
	tt := timetable.Timetable{
		Entries: []timetable.Entry{testEntry("T1", "OSL", "BGO")},
		Incidents: []timetable.Incident{{
			ID:        "M1",
			Type:      "track_maintenance",
			Location:  "BGO-OSL",
			StartTime: testBase.Add(5 * time.Minute),
			EndTime:   &end,
		}},
	}
	e, err := New(testParams(30), tt, WithTrackGenerator(fixedTracks))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res := e.Run(context.Background())

	snap, _ := e.TrainStatus("T1")
	if snap.Status != StatusCompleted {
		t.Fatalf("status = %q, want completed after the window closed", snap.Status)
	}
	if snap.DelayMinutes != 30 { // track maintenance default
		t.Errorf("delay = %v, want 30", snap.DelayMinutes)
	}
	if sig := e.tracks["BGO-OSL"].Signal; sig != SignalGreen {
		t.Errorf("signal after resolution = %q, want green", sig)
	}
	if res.Statistics.IncidentsApplied != 1 || res.Statistics.IncidentsResolved != 1 {
		t.Errorf("applied/resolved = %d/%d, want 1/1",
			res.Statistics.IncidentsApplied, res.Statistics.IncidentsResolved)
	}
}

// TestEngine_Observer tests callback delivery
func TestEngine_Observer(t *testing.T) {
	tt := timetable.Timetable{Entries: []timetable.Entry{testEntry("T1")}}

	var started, progressed, completed int
	var gotScenario string
	var gotResult *Result
	obs := ObserverFuncs{
		OnStart: func(scenario string, totalSteps int) {
			started++
			gotScenario = scenario
		},
		OnProgress: func(step, totalSteps int, clock time.Time) { progressed++ },
		OnComplete: func(res *Result) {
			completed++
			gotResult = res
		},
	}

	e, err := New(testParams(30), tt, WithTrackGenerator(fixedTracks), WithObserver(obs))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res := e.Run(context.Background())

	if started != 1 || completed != 1 {
		t.Errorf("started/completed = %d/%d, want 1/1", started, completed)
	}
	if progressed == 0 {
		t.Error("no progress callbacks delivered")
	}
	if gotScenario != "unit" {
		t.Errorf("scenario = %q, want unit", gotScenario)
	}
	if gotResult != res {
		t.Error("completion callback saw a different result")
	}
}

// TestEngine_SystemStatus tests the aggregate status view after a run
func TestEngine_SystemStatus(t *testing.T) {
	tt := timetable.Timetable{Entries: []timetable.Entry{testEntry("T1", "OSL", "BGO")}}
	e, err := New(testParams(30), tt, WithTrackGenerator(fixedTracks))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e.Run(context.Background())

	st := e.SystemStatus()
	if st.Running {
		t.Error("status reports running after Run returned")
	}
	if st.TotalTrains != 1 || st.CompletedTrains != 1 || st.ActiveTrains != 0 {
		t.Errorf("train counts = %+v", st)
	}
	if st.Tick != 30 {
		t.Errorf("tick = %d, want 30", st.Tick)
	}
	if st.OnTimePercentage != 100 {
		t.Errorf("on-time = %v, want 100", st.OnTimePercentage)
	}

	if _, ok := e.TrainStatus("nope"); ok {
		t.Error("unknown train id reported present")
	}
	if fleet := e.FleetStatus(); len(fleet) != 1 || fleet["T1"].ID != "T1" {
		t.Errorf("fleet = %v", fleet)
	}
}
