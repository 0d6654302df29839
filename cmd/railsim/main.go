package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	lib "github.com/20230802363-ux/rail-optima-sim"
	"github.com/20230802363-ux/rail-optima-sim/config"
	"github.com/20230802363-ux/rail-optima-sim/formatter"
	"github.com/20230802363-ux/rail-optima-sim/sim"
	"github.com/20230802363-ux/rail-optima-sim/timetable"
)

func main() {
	configPath := flag.String("config", "", "config file path (default config.yml)")
	serve := flag.Bool("serve", false, "run the HTTP API server instead of a oneshot simulation")
	timetablePath := flag.String("timetable", "", "timetable file, .json or .csv (overrides config)")
	incidentsPath := flag.String("incidents", "", "incidents JSON file (overrides config)")
	scenario := flag.String("scenario", "", "scenario name (overrides config)")
	duration := flag.Int("duration", 0, "simulated duration in minutes (overrides config)")
	step := flag.Int("step", 0, "timestep in seconds (overrides config)")
	seed := flag.Int64("seed", 0, "random seed; 0 derives one from the clock")
	format := flag.String("format", "json", "json|csv")
	flag.Parse()

	lib.InitLogging()
	if err := config.LoadAppConfig(*configPath); err != nil {
		log.Fatalf("load config: %v", err)
	}

	if *serve {
		lib.StartServer()
		lib.HandleGracefulShutdown()
		return
	}

	tt, err := loadTimetable(*timetablePath, *incidentsPath)
	if err != nil {
		log.Fatalf("load input: %v", err)
	}

	params := sim.Params{
		Scenario:        config.Config.Simulation.Scenario,
		DurationMinutes: config.Config.Simulation.DurationMinutes,
		StepSeconds:     config.Config.Simulation.StepSeconds,
		Seed:            config.Config.Simulation.Seed,
	}
	if *scenario != "" {
		params.Scenario = *scenario
	}
	if *duration > 0 {
		params.DurationMinutes = *duration
	}
	if *step > 0 {
		params.StepSeconds = *step
	}
	if *seed != 0 {
		params.Seed = *seed
	}

	engine, err := sim.New(params, tt, sim.WithObserver(progressLogger{}))
	if err != nil {
		log.Fatalf("build simulation: %v", err)
	}

	res := engine.Run(context.Background())

	rb := formatter.NewResultBuilder()
	switch *format {
	case "json":
		buf, err := rb.BuildJSON(res)
		if err != nil {
			log.Fatalf("format result: %v", err)
		}
		fmt.Println(string(buf))
	case "csv":
		if err := rb.WriteEventsCSV(os.Stdout, res); err != nil {
			log.Fatalf("format result: %v", err)
		}
		if err := rb.WriteConflictsCSV(os.Stdout, res); err != nil {
			log.Fatalf("format result: %v", err)
		}
	default:
		log.Fatalf("unknown format %q", *format)
	}
}

// loadTimetable reads the run input from flag or config paths. The
// timetable may be JSON (entries plus optional incidents and stations) or
// CSV (entries only); a separate incidents file is merged in either way.
func loadTimetable(timetablePath, incidentsPath string) (timetable.Timetable, error) {
	if timetablePath == "" {
		timetablePath = config.Config.Input.TimetablePath
	}
	if incidentsPath == "" {
		incidentsPath = config.Config.Input.IncidentsPath
	}
	if timetablePath == "" {
		return timetable.Timetable{}, fmt.Errorf("no timetable given; use -timetable or set input.timetablePath")
	}

	var tt timetable.Timetable
	var err error
	if strings.HasSuffix(timetablePath, ".csv") {
		tt.Entries, err = timetable.LoadEntriesCSV(timetablePath)
	} else {
		tt, err = timetable.LoadJSON(timetablePath)
	}
	if err != nil {
		return timetable.Timetable{}, err
	}

	if incidentsPath != "" {
		incidents, err := timetable.LoadIncidentsJSON(incidentsPath)
		if err != nil {
			return timetable.Timetable{}, err
		}
		tt.Incidents = append(tt.Incidents, incidents...)
	}

	if err := tt.Validate(); err != nil {
		return timetable.Timetable{}, err
	}
	return tt, nil
}

// progressLogger logs run milestones to the standard logger.
type progressLogger struct{}

func (progressLogger) SimulationStarted(scenario string, totalSteps int) {
	log.Printf("scenario %q: starting, %d steps", scenario, totalSteps)
}

func (progressLogger) SimulationProgress(step, totalSteps int, clock time.Time) {
	log.Printf("step %d/%d, clock %s", step, totalSteps, clock.Format(time.RFC3339))
}

func (progressLogger) SimulationCompleted(res *sim.Result) {
	log.Printf("run %s complete: %d/%d journeys finished, on-time %.1f%%, %d conflicts",
		res.RunID, res.Summary.CompletedTrains, res.Summary.TotalTrains,
		res.Summary.OnTimePerformance, res.Summary.ConflictCount)
}
