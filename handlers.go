package railsim

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/20230802363-ux/rail-optima-sim/config"
	"github.com/20230802363-ux/rail-optima-sim/sim"
	"github.com/20230802363-ux/rail-optima-sim/timetable"
)

// simulateRequest is the body of POST /api/simulate. Zero-valued run
// parameters fall back to the configured defaults.
type simulateRequest struct {
	Scenario        string    `json:"scenario"`
	DurationMinutes int       `json:"duration_minutes"`
	StepSeconds     int       `json:"step_seconds"`
	Seed            int64     `json:"seed"`
	StartTime       time.Time `json:"start_time,omitzero"`

	// The run input is flattened into the request: "timetable" carries the
	// entries, "incidents" and "stations" sit alongside.
	timetable.Timetable
}

type simulateResponse struct {
	RunID  string `json:"run_id"`
	Status string `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// run tracks one background simulation from submission to completion.
type run struct {
	engine *sim.Engine
	result *sim.Result // nil until the run finishes
}

// API serves simulation runs over HTTP. Runs execute in the background; the
// result endpoint reports "running" until a run finishes.
type API struct {
	mu   sync.RWMutex
	runs map[string]*run
}

func NewAPI() *API {
	return &API{runs: map[string]*run{}}
}

func (a *API) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := req.Timetable.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid timetable: "+err.Error())
		return
	}

	params := sim.Params{
		Scenario:        req.Scenario,
		DurationMinutes: req.DurationMinutes,
		StepSeconds:     req.StepSeconds,
		Seed:            req.Seed,
		StartTime:       req.StartTime,
	}
	if params.Scenario == "" {
		params.Scenario = config.Config.Simulation.Scenario
	}
	if params.DurationMinutes == 0 {
		params.DurationMinutes = config.Config.Simulation.DurationMinutes
	}
	if params.StepSeconds == 0 {
		params.StepSeconds = config.Config.Simulation.StepSeconds
	}
	if params.Seed == 0 {
		params.Seed = config.Config.Simulation.Seed
	}

	engine, err := sim.New(params, req.Timetable)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := uuid.NewString()
	entry := &run{engine: engine}
	a.mu.Lock()
	a.runs[id] = entry
	a.mu.Unlock()

	go func() {
		res := engine.Run(context.Background())
		a.mu.Lock()
		entry.result = res
		a.mu.Unlock()
		log.Printf("run %s finished: %d trains, %d conflicts", id, res.Summary.TotalTrains, res.Summary.ConflictCount)
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(simulateResponse{RunID: id, Status: "running"})
}

func (a *API) handleSimulationResult(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a.mu.RLock()
	entry, ok := a.runs[id]
	var res *sim.Result
	if ok {
		res = entry.result
	}
	a.mu.RUnlock()
	if !ok {
		writeError(w, http.StatusNotFound, "unknown run id")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if res == nil {
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(simulateResponse{RunID: id, Status: "running"})
		return
	}
	_ = json.NewEncoder(w).Encode(res)
}

func (a *API) handleSimulationStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a.mu.RLock()
	entry, ok := a.runs[id]
	a.mu.RUnlock()
	if !ok {
		writeError(w, http.StatusNotFound, "unknown run id")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(entry.engine.SystemStatus())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: msg})
}
