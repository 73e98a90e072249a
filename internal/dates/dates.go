// Package dates coerces user supplied date strings into time values.
package dates

import (
	"fmt"
	"strings"
	"time"

	"github.com/markusmobius/go-dateparser"
)

// layouts are tried before falling back to natural language parsing.
var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.DateOnly,
}

// Parse accepts ISO timestamps, plain dates and natural language such as
// "tomorrow" or "next friday 5pm". Values without a zone are read in loc.
func Parse(input string, now time.Time, loc *time.Location) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, fmt.Errorf("date is empty")
	}
	if loc == nil {
		loc = time.UTC
	}

	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, input, loc); err == nil {
			return t, nil
		}
	}

	cfg := &dateparser.Configuration{
		CurrentTime:     now.In(loc),
		DefaultTimezone: loc,
	}
	result, err := dateparser.Parse(cfg, input)
	if err != nil || result.Time.IsZero() {
		return time.Time{}, fmt.Errorf("could not parse date %q", input)
	}
	return result.Time, nil
}
