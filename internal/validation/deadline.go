package validation

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jinzhu/now"
)

// millisThreshold separates second and millisecond timestamps.
const millisThreshold = 1e12

// maxMillis is the largest representable date, ±100,000,000 days from epoch.
const maxMillis = 8.64e15

// offsetLayouts carry their own zone.
var offsetLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"Mon Jan 02 2006 15:04:05 GMT-0700",
}

var dateConfig = &now.Config{
	WeekStartDay: time.Monday,
	TimeLocation: time.UTC,
	TimeFormats:  dateFormats(),
}

// dateFormats extends jinzhu/now's layouts with zone-less ISO date-times and
// long-form dates. Time-only layouts are dropped: a deadline needs a date.
func dateFormats() []string {
	timeOnly := map[string]bool{"15:4:5": true, "15:4": true, "15": true, time.Kitchen: true}

	formats := []string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04",
		"January 2, 2006",
		"Jan 2, 2006",
		"January 2, 2006 15:04:05",
		"Jan 2, 2006 15:04:05",
	}
	for _, f := range now.TimeFormats {
		if !timeOnly[f] {
			formats = append(formats, f)
		}
	}
	return formats
}

// ParseInstant accepts a numeric timestamp (seconds below 1e12 in magnitude,
// milliseconds otherwise), a numeric string, or a calendar date string.
func ParseInstant(v any) (time.Time, bool) {
	switch x := v.(type) {
	case float64:
		return fromNumber(x)
	case int:
		return fromNumber(float64(x))
	case int64:
		return fromNumber(float64(x))
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return fromNumber(f)
	case string:
		return fromString(x)
	case time.Time:
		return x.UTC(), !x.IsZero()
	}
	return time.Time{}, false
}

func fromNumber(f float64) (time.Time, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}, false
	}
	if math.Abs(f) < millisThreshold {
		sec, frac := math.Modf(f)
		return time.Unix(int64(sec), int64(frac*1e9)).UTC(), true
	}
	if math.Abs(f) > maxMillis {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(f)).UTC(), true
}

func fromString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return fromNumber(f)
	}
	// Date.toString() appends the zone name in parentheses.
	if i := strings.LastIndex(s, " ("); i > 0 && strings.HasSuffix(s, ")") {
		s = s[:i]
	}
	for _, layout := range offsetLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	t, err := dateConfig.Parse(s)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}
