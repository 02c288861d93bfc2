package main

import (
	"fmt"
	"math"
	"time"

	"github.com/jonboulle/clockwork"
)

// clock is the time source for relative ages; tests swap in a fake.
var clock = clockwork.NewRealClock()

// CelsiusToFahrenheit converts temperature from Celsius to Fahrenheit,
// rounded to the nearest degree
func CelsiusToFahrenheit(celsius int) int {
	return int(math.Round(float64(celsius)*9/5)) + 32
}

// relativeTimeString describes t relative to now, in either direction
func relativeTimeString(t, now time.Time) string {
	diff := now.Sub(t)
	future := diff < 0
	if future {
		diff = -diff
	}

	// Convert to minutes for easier comparisons
	minutes := int(diff.Minutes())

	var span string
	if minutes < 1 {
		return "(just now)"
	} else if minutes < 60 {
		span = fmt.Sprintf("%d minutes", minutes)
	} else if minutes < 1440 { // less than 24 hours
		hours := minutes / 60
		mins := minutes % 60
		if mins == 0 {
			span = fmt.Sprintf("%d hours", hours)
		} else {
			span = fmt.Sprintf("%d hours, %d minutes", hours, mins)
		}
	} else {
		days := minutes / 1440
		hours := (minutes % 1440) / 60
		if hours == 0 {
			span = fmt.Sprintf("%d days", days)
		} else {
			span = fmt.Sprintf("%d days, %d hours", days, hours)
		}
	}

	if future {
		return "(in " + span + ")"
	}
	return "(" + span + " ago)"
}
