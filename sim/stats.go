package sim

import "math"

// delayedThresholdMinutes: trains later than this count as delayed in the
// on-time performance figure.
const delayedThresholdMinutes = 5

// computeSummary derives the run summary from final train state. With zero
// trains on-time performance defaults to 100, never NaN.
func computeSummary(trains map[string]*Train, conflictCount int) Summary {
	s := Summary{
		TotalTrains:       len(trains),
		OnTimePerformance: 100,
		ConflictCount:     conflictCount,
	}
	delayedSum := 0.0
	delayedCount := 0
	for _, t := range trains {
		if t.Status == StatusCompleted {
			s.CompletedTrains++
		}
		if t.DelayMinutes > delayedThresholdMinutes {
			s.DelayedTrains++
		}
		if t.DelayMinutes > 0 {
			delayedSum += t.DelayMinutes
			delayedCount++
		}
		s.TotalDelayMinutes += t.DelayMinutes
		s.TotalDistanceKM += t.DistanceKM
		s.TotalFuelLiters += t.FuelLiters
		s.TotalPassengers += t.Passengers
	}
	if s.TotalTrains > 0 {
		s.OnTimePerformance = round1(100 * float64(s.TotalTrains-s.DelayedTrains) / float64(s.TotalTrains))
	}
	if delayedCount > 0 {
		s.AverageDelayMinutes = round1(delayedSum / float64(delayedCount))
	}
	s.TotalDelayMinutes = round1(s.TotalDelayMinutes)
	return s
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
