package timetable

import "testing"

// TestEstimateTravelMinutes tests type factors and the distance buffer
func TestEstimateTravelMinutes(t *testing.T) {
	cases := []struct {
		name      string
		distance  float64
		maxSpeed  float64
		trainType string
		want      int
	}{
		// 100 km at 160*0.85=136 km/h is 44.1 min, plus 50 min buffer.
		{"express", 100, 160, "express", 94},
		// 100 km at 120*0.65=78 km/h is 76.9 min, plus 50 min buffer.
		{"passenger", 100, 120, "passenger", 126},
		// Unknown types fall back to the passenger factor.
		{"unknown type", 100, 120, "tram", 126},
		{"freight", 50, 80, "freight", 108},
		{"zero distance", 0, 120, "passenger", 0},
		{"zero speed", 100, 0, "passenger", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := EstimateTravelMinutes(tc.distance, tc.maxSpeed, tc.trainType); got != tc.want {
				t.Errorf("EstimateTravelMinutes(%v, %v, %q) = %d, want %d",
					tc.distance, tc.maxSpeed, tc.trainType, got, tc.want)
			}
		})
	}
}
