package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
)

var dateLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// StartsAt turns the free-text date and time of an event into a point in
// time. Form inputs ("2026-11-02", "18:30") are tried first, then the
// natural language parser ("next friday 6pm").
func StartsAt(parser *when.Parser, date, clock string, loc *time.Location, now time.Time) (time.Time, error) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	combined := strings.TrimSpace(date + " " + clock)
	if combined == "" {
		return time.Time{}, fmt.Errorf("StartsAt: date and time are blank")
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, combined, loc); err == nil {
			return t, nil
		}
	}

	result, err := parser.Parse(combined, now.In(loc))
	if err != nil {
		return time.Time{}, fmt.Errorf("StartsAt: %w", err)
	}
	if result == nil {
		return time.Time{}, fmt.Errorf("StartsAt: can't understand %q", combined)
	}
	return result.Time, nil
}
