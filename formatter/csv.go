package formatter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/20230802363-ux/rail-optima-sim/sim"
)

// WriteEventsCSV writes the result's train events as CSV
func (rb *resultBuilder) WriteEventsCSV(w io.Writer, res *sim.Result) error {
	cw := csv.NewWriter(w)
	header := []string{"timestamp", "event", "train_id", "location", "scheduled_time", "actual_time", "delay_minutes", "incident_id"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write events header: %w", err)
	}
	for _, ev := range res.TrainEvents {
		row := []string{
			ev.Timestamp.Format(time.RFC3339),
			string(ev.Kind),
			ev.TrainID,
			ev.Location,
			formatTime(ev.ScheduledTime),
			formatTime(ev.ActualTime),
			strconv.FormatFloat(ev.DelayMinutes, 'f', 1, 64),
			ev.IncidentID,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write event for train %q: %w", ev.TrainID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteConflictsCSV writes the result's conflicts as CSV
func (rb *resultBuilder) WriteConflictsCSV(w io.Writer, res *sim.Result) error {
	cw := csv.NewWriter(w)
	header := []string{"timestamp", "conflict_id", "conflict_type", "severity", "resource_id", "train_ids", "capacity", "occupancy"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write conflicts header: %w", err)
	}
	for _, c := range res.Conflicts {
		row := []string{
			c.Timestamp.Format(time.RFC3339),
			c.ID,
			string(c.Type),
			string(c.Severity),
			c.ResourceID,
			strings.Join(c.TrainIDs, "|"),
			strconv.Itoa(c.Capacity),
			strconv.Itoa(c.Occupancy),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write conflict %q: %w", c.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
