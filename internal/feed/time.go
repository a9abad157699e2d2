package feed

import (
	"strconv"
	"strings"
)

// ParseClockSeconds parses a GTFS time-of-day string of the form
// "H:MM:SS" or "HH:MM:SS" into seconds since local midnight. Hours may
// exceed 23 (overnight trips continue counting past midnight). Empty
// or malformed strings, or an MM/SS component out of [0,60), yield
// (0, false) so the caller treats the field as null per spec.md 4.1.
func ParseClockSeconds(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}

	parts := strings.Split(raw, ":")
	if len(parts) != 3 {
		return 0, false
	}

	hour_str, min_str, sec_str := parts[0], parts[1], parts[2]
	if len(hour_str) == 0 || len(hour_str) > 2 || len(min_str) != 2 || len(sec_str) != 2 {
		return 0, false
	}

	hours, err := strconv.Atoi(hour_str)
	if err != nil || hours < 0 {
		return 0, false
	}

	minutes, err := strconv.Atoi(min_str)
	if err != nil || minutes < 0 || minutes >= 60 {
		return 0, false
	}

	seconds, err := strconv.Atoi(sec_str)
	if err != nil || seconds < 0 || seconds >= 60 {
		return 0, false
	}

	return hours*3600 + minutes*60 + seconds, true
}
