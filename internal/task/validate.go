package task

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// ValidationError describes a rejected field at the input boundary
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Validate checks the fields the input form is responsible for. The core
// itself tolerates a non-positive duration by treating it as expired.
func Validate(t Task) error {
	if strings.TrimSpace(t.Title) == "" {
		return &ValidationError{Field: "title", Message: "must not be empty"}
	}
	if t.DurationMs <= 0 {
		return &ValidationError{Field: "duration", Message: "must be positive"}
	}
	if !t.Priority.IsValid() {
		return &ValidationError{Field: "priority", Message: fmt.Sprintf("unknown value %q", t.Priority)}
	}
	if t.ID == "" {
		return &ValidationError{Field: "id", Message: "must not be empty"}
	}
	if t.StartTime.IsZero() {
		return &ValidationError{Field: "startTime", Message: "must be set"}
	}
	return nil
}

// Unit is a duration unit offered by the creation form
type Unit string

const (
	UnitMinutes Unit = "minutes"
	UnitHours   Unit = "hours"
	UnitDays    Unit = "days"
)

// Units lists the form units in display order
var Units = []Unit{UnitMinutes, UnitHours, UnitDays}

// Multiplier returns the unit length
func (u Unit) Multiplier() time.Duration {
	switch u {
	case UnitHours:
		return time.Hour
	case UnitDays:
		return 24 * time.Hour
	default:
		return time.Minute
	}
}

// Next cycles through Units
func (u Unit) Next() Unit {
	for i, candidate := range Units {
		if candidate == u {
			return Units[(i+1)%len(Units)]
		}
	}
	return UnitMinutes
}

// unitAliases maps accepted spellings to units
var unitAliases = map[string]Unit{
	"m": UnitMinutes, "min": UnitMinutes, "mins": UnitMinutes, "minute": UnitMinutes, "minutes": UnitMinutes,
	"h": UnitHours, "hr": UnitHours, "hrs": UnitHours, "hour": UnitHours, "hours": UnitHours,
	"d": UnitDays, "day": UnitDays, "days": UnitDays,
}

// ParseUnit accepts the unit names and their short forms
func ParseUnit(s string) (Unit, error) {
	u, ok := unitAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unknown duration unit %q", s)
	}
	return u, nil
}

// ParseDuration reads "25", "25m", "2 hours", "1d" or any Go duration
// string such as "1h30m". A bare number means minutes.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, &ValidationError{Field: "duration", Message: "must not be empty"}
	}

	split := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
	if split == -1 {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, &ValidationError{Field: "duration", Message: err.Error()}
		}
		return scale(n, time.Minute)
	}

	if split > 0 {
		if unit, err := ParseUnit(s[split:]); err == nil {
			n, err := strconv.Atoi(s[:split])
			if err != nil {
				return 0, &ValidationError{Field: "duration", Message: err.Error()}
			}
			return scale(n, unit.Multiplier())
		}
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, &ValidationError{Field: "duration", Message: fmt.Sprintf("cannot parse %q", s)}
	}
	return positive(d)
}

// scale multiplies n by unit, rejecting products that overflow
func scale(n int, unit time.Duration) (time.Duration, error) {
	if int64(n) > math.MaxInt64/int64(unit) {
		return 0, &ValidationError{Field: "duration", Message: "too long"}
	}
	return positive(time.Duration(n) * unit)
}

func positive(d time.Duration) (time.Duration, error) {
	if d <= 0 {
		return 0, &ValidationError{Field: "duration", Message: "must be positive"}
	}
	return d, nil
}
