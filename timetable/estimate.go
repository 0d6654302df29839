package timetable

// Operating speed factors per train type: trains rarely sustain the line
// maximum over a whole journey.
var speedFactors = map[string]float64{
	"express":   0.85,
	"passenger": 0.65,
	"freight":   0.45,
	"suburban":  0.60,
}

// EstimateTravelMinutes estimates journey time for a segment, including a
// per-kilometre buffer for acceleration, deceleration, and stops. Unknown
// train types use the passenger factor.
func EstimateTravelMinutes(distanceKM float64, maxSpeedKMH float64, trainType string) int {
	if distanceKM <= 0 || maxSpeedKMH <= 0 {
		return 0
	}
	factor, ok := speedFactors[trainType]
	if !ok {
		factor = speedFactors["passenger"]
	}
	effective := maxSpeedKMH * factor
	baseHours := distanceKM / effective
	bufferMinutes := distanceKM * 0.5
	return int(baseHours*60 + bufferMinutes)
}
