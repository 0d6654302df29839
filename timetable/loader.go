package timetable

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// LoadJSON reads a full Timetable (entries, incidents, stations) from a JSON
// file and validates it.
func LoadJSON(path string) (Timetable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Timetable{}, err
	}
	var tt Timetable
	if err := json.Unmarshal(data, &tt); err != nil {
		return Timetable{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := tt.Validate(); err != nil {
		return Timetable{}, err
	}
	return tt, nil
}

// LoadEntriesCSV reads timetable entries from a CSV file. Required columns:
// train_id, origin_station, destination_station, scheduled_departure,
// scheduled_arrival. Optional: train_type, route (pipe-separated station
// codes), priority. Times are RFC 3339.
func LoadEntriesCSV(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadEntriesCSV(f)
}

// ReadEntriesCSV consumes CSV timetable rows from r.
func ReadEntriesCSV(r io.Reader) ([]Entry, error) {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1
	rec, err := csvr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rec) == 0 {
		return nil, fmt.Errorf("empty timetable CSV")
	}
	head := rec[0]
	idx := func(col string) int {
		for i, h := range head {
			if strings.EqualFold(strings.TrimSpace(h), col) {
				return i
			}
		}
		return -1
	}
	tID := idx("train_id")
	tType := idx("train_type")
	origin := idx("origin_station")
	dest := idx("destination_station")
	dep := idx("scheduled_departure")
	arr := idx("scheduled_arrival")
	route := idx("route")
	prio := idx("priority")
	for col, i := range map[string]int{
		"train_id": tID, "origin_station": origin, "destination_station": dest,
		"scheduled_departure": dep, "scheduled_arrival": arr,
	} {
		if i < 0 {
			return nil, fmt.Errorf("timetable CSV missing column %q", col)
		}
	}

	field := func(row []string, i int) string {
		if i >= 0 && i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	entries := make([]Entry, 0, len(rec)-1)
	for n, row := range rec[1:] {
		e := Entry{
			TrainID:            field(row, tID),
			TrainType:          field(row, tType),
			OriginStation:      field(row, origin),
			DestinationStation: field(row, dest),
		}
		if e.ScheduledDeparture, err = time.Parse(time.RFC3339, field(row, dep)); err != nil {
			return nil, fmt.Errorf("row %d (train %q): scheduled_departure: %w", n+2, e.TrainID, err)
		}
		if e.ScheduledArrival, err = time.Parse(time.RFC3339, field(row, arr)); err != nil {
			return nil, fmt.Errorf("row %d (train %q): scheduled_arrival: %w", n+2, e.TrainID, err)
		}
		if rt := field(row, route); rt != "" {
			for _, code := range strings.Split(rt, "|") {
				if code = strings.TrimSpace(code); code != "" {
					e.Route = append(e.Route, code)
				}
			}
		}
		if p := field(row, prio); p != "" {
			if e.Priority, err = strconv.Atoi(p); err != nil {
				return nil, fmt.Errorf("row %d (train %q): priority: %w", n+2, e.TrainID, err)
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// LoadIncidentsJSON reads an incident list from a JSON file.
func LoadIncidentsJSON(path string) ([]Incident, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var incidents []Incident
	if err := json.Unmarshal(data, &incidents); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	for i, inc := range incidents {
		if err := validate.Struct(inc); err != nil {
			return nil, fmt.Errorf("incident %d (%s): %w", i, inc.ID, err)
		}
	}
	return incidents, nil
}
