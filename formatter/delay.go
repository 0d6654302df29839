package formatter

import (
	"fmt"
	"math"
)

// FormatDelay renders a delay in minutes as a short status message, e.g.
// "on time", "delayed by 12 minutes" or "delayed by 1 hour 5 minutes".
func FormatDelay(delayMinutes float64) string {
	mins := int(math.Round(delayMinutes))
	if mins <= 0 {
		return "on time"
	}
	if mins < 60 {
		if mins == 1 {
			return "delayed by 1 minute"
		}
		return fmt.Sprintf("delayed by %d minutes", mins)
	}
	hours := mins / 60
	rem := mins % 60
	hourWord := "hours"
	if hours == 1 {
		hourWord = "hour"
	}
	if rem == 0 {
		return fmt.Sprintf("delayed by %d %s", hours, hourWord)
	}
	minuteWord := "minutes"
	if rem == 1 {
		minuteWord = "minute"
	}
	return fmt.Sprintf("delayed by %d %s %d %s", hours, hourWord, rem, minuteWord)
}
