package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/Cenalian/CFPS-Parsing/internal/report"
	"github.com/Cenalian/CFPS-Parsing/internal/upperwind"
)

// Color definitions using fatih/color
var (
	labelColor   = color.New(color.FgCyan)
	dateColor    = color.New(color.FgGreen)
	sectionColor = color.New(color.FgBlue, color.Bold)
	numberColor  = color.New(color.FgGreen)
	unknownColor = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)

	// Use-window colors
	freshColor   = color.New(color.FgGreen)
	warningColor = color.New(color.FgYellow)
	expiredColor = color.New(color.FgRed)
)

// All CFPS times are UTC.
const timestampLayout = "2006-01-02 15:04:05 MST"

// unknownTemperature is printed when the feed has no temperature for a level.
const unknownTemperature = "unknown"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// getWindowStatus describes where now falls in a forecast's use window
func getWindowStatus(start, end, now time.Time) (string, *color.Color) {
	if now.Before(start) {
		return "(not yet in use)", warningColor
	} else if now.After(end) {
		return "(expired)", expiredColor
	}
	return "(in use)", freshColor
}

// formatTemperature renders a level temperature. A missing value is shown as
// unknown, never as zero.
func formatTemperature(temp *int) string {
	if temp == nil {
		return unknownColor.Sprint(unknownTemperature)
	}
	return fmt.Sprintf("%d°C | %d°F", *temp, CelsiusToFahrenheit(*temp))
}

// formatLevel converts a Level to a single display line
func formatLevel(l upperwind.Level) string {
	return fmt.Sprintf("   %s ft | Wind %s at %s kt | Temp %s",
		numberColor.Sprintf("%6s", formatNumberWithCommas(l.AltitudeFeet)),
		fmt.Sprintf("%03d°", l.WindDirection),
		strconv.Itoa(l.WindSpeed),
		formatTemperature(l.Temperature))
}

// FormatForecast formats one decoded winds aloft element for display
func FormatForecast(location string, fc *upperwind.Forecast, now time.Time) string {
	var sb strings.Builder

	sectionColor.Fprint(&sb, location)
	sb.WriteString("  " + fc.ReportType + "  " + fc.Issuer + "\n")

	labelColor.Fprint(&sb, "Issued at: ")
	dateColor.Fprint(&sb, formatTimestamp(fc.DataBasedOn))
	sb.WriteString("  ")
	labelColor.Fprint(&sb, "Valid at: ")
	dateColor.Fprint(&sb, formatTimestamp(fc.ValidAt))
	sb.WriteString(" " + relativeTimeString(fc.ValidAt, now) + "\n")

	status, statusColor := getWindowStatus(fc.UseStart, fc.UseEnd, now)
	labelColor.Fprint(&sb, "For use starting: ")
	dateColor.Fprint(&sb, formatTimestamp(fc.UseStart))
	sb.WriteString("  ")
	labelColor.Fprint(&sb, "Ending: ")
	dateColor.Fprint(&sb, formatTimestamp(fc.UseEnd))
	sb.WriteString(" ")
	statusColor.Fprint(&sb, status)
	sb.WriteString("\n")

	for _, lvl := range fc.Levels {
		sb.WriteString(formatLevel(lvl) + "\n")
	}

	return sb.String()
}

// FormatUpperWinds formats every element of a winds aloft report. Elements
// that failed to decode are flagged in place.
func FormatUpperWinds(r *upperwind.Report, now time.Time) string {
	var sb strings.Builder

	for _, el := range r.Elements {
		if el.Err != nil {
			sectionColor.Fprint(&sb, el.Location)
			sb.WriteString("  ")
			errorColor.Fprintf(&sb, "could not decode: %v", el.Err)
			sb.WriteString("\n\n")
			continue
		}

		sb.WriteString(FormatForecast(el.Location, el.Forecast, now))
		sb.WriteString("\n")
	}

	return sb.String()
}

// FormatOutcome renders a dispatch outcome for the terminal
func FormatOutcome(out report.Outcome, now time.Time) string {
	switch o := out.(type) {
	case report.UpperWinds:
		return FormatUpperWinds(o.Report, now)
	case report.NoData:
		return fmt.Sprintf("No %s data reported\n", strings.ToLower(o.Type.String()))
	case report.Placeholder:
		return fmt.Sprintf("Process %s: decoding is not available yet\n", o.Type)
	default:
		return ""
	}
}

// formatNumberWithCommas adds thousands separators to a number
func formatNumberWithCommas(n int) string {
	if n < 0 {
		return "-" + formatNumberWithCommas(-n)
	}

	// Convert to string first
	numStr := strconv.Itoa(n)

	// Add commas for thousands
	result := ""
	for i, c := range numStr {
		if i > 0 && (len(numStr)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}

	return result
}
