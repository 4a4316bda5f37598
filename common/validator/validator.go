package validator

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Path parameter patterns
var (
	// EventIDPattern accepts positive decimal ids without leading zeros
	EventIDPattern = regexp.MustCompile(`^[1-9]\d{0,18}$`)
)

// ParseEventID validates and converts an event id path parameter
func ParseEventID(raw string) (int, bool) {
	trimmed := strings.TrimSpace(raw)
	if !EventIDPattern.MatchString(trimmed) {
		return 0, false
	}
	id, err := strconv.Atoi(trimmed)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// IsValidDateArray checks a [year, month, day] triple names a real calendar date
func IsValidDateArray(parts []int) bool {
	if len(parts) != 3 {
		return false
	}
	year, month, day := parts[0], parts[1], parts[2]
	if year < 1 || year > 9999 || month < 1 || month > 12 || day < 1 {
		return false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Day() == day && int(t.Month()) == month
}

// IsValidTimeArray checks an [hour, minute] pair (seconds and nanos may follow)
func IsValidTimeArray(parts []int) bool {
	if len(parts) < 2 || len(parts) > 4 {
		return false
	}
	return parts[0] >= 0 && parts[0] <= 23 && parts[1] >= 0 && parts[1] <= 59
}

// GetEventIDError returns user-friendly error message for an event id
func GetEventIDError(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "Event id is required"
	}
	if _, ok := ParseEventID(trimmed); !ok {
		return "Event id must be a positive number"
	}
	return ""
}
