package logctx

import (
	"fmt"
	"gzzip/internal/global"
	"strings"
	"time"

	"github.com/fatih/color"
)

var severityColors = map[string]*color.Color{
	global.ErrorLog: color.New(color.FgRed, color.Bold),
	global.WarnLog:  color.New(color.FgYellow),
	global.InfoLog:  color.New(color.FgCyan),
}

// Stringify full event
func (event Event) Format() (text string) {
	text = event.format(false)
	return
}

func (event Event) format(colorize bool) (text string) {
	// Only print parts that are present
	var parts []string
	if !event.Timestamp.IsZero() {
		parts = append(parts, fmt.Sprintf("[%s]", padTimestamp(event.Timestamp)))
	}

	if len(event.Tags) > 0 {
		parts = append(parts, "["+strings.Join(event.Tags, "/")+"]")
	}

	if event.Severity != "" {
		severity := "[" + event.Severity + "]"
		if colorize {
			if painter, ok := severityColors[event.Severity]; ok {
				severity = painter.Sprint(severity)
			}
		}
		parts = append(parts, severity)
	}

	if event.Message != "" {
		parts = append(parts, event.Message)
	}

	text = strings.Join(parts, " ")
	// No newline, message creator determines newlines
	return
}

// Ensures fixed length strings for timestamps
func padTimestamp(timestamp time.Time) (formatted string) {
	formatted = timestamp.Format(time.RFC3339Nano)

	majorFields := strings.Split(formatted, ".")
	if len(majorFields) != 2 {
		return
	}

	// Split fractional seconds from zone (either 'Z', '+hh:mm' or '-hh:mm')
	fraction := majorFields[1]
	zoneIdx := strings.IndexAny(fraction, "Z+-")
	if zoneIdx < 0 {
		return
	}
	nanoseconds := fraction[:zoneIdx]
	zone := fraction[zoneIdx:]

	// Pad the nanoseconds part to ensure it's 9 digits long
	for len(nanoseconds) < 9 {
		nanoseconds += "0"
	}

	formatted = majorFields[0] + "." + nanoseconds + zone
	return
}
