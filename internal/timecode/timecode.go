// Package timecode converts between calendar instants and the fixed-width
// YYYYMMDDhhmmss tokens used as task ids and start anchors.
//
// Tokens are always interpreted in local time. They sort lexically in
// chronological order and stay readable in an exported file.
package timecode

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TokenLen is the width of an encoded token.
const TokenLen = 14

// ErrInvalidTimestamp is wrapped by every DecodeError.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// DecodeError reports a value that is neither a token nor a parseable date.
type DecodeError struct {
	Value  string
	Reason string
}

func (e *DecodeError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("decoding timestamp %q: %v", e.Value, ErrInvalidTimestamp)
	}
	return fmt.Sprintf("decoding timestamp %q: %s", e.Value, e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return ErrInvalidTimestamp
}

// Encode formats t in local time as a 14-digit token.
func Encode(t time.Time) string {
	t = t.Local()
	return fmt.Sprintf("%04d%02d%02d%02d%02d%02d",
		t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
}

// DecodeString parses a token, falling back to generic date layouts for
// values that are not exactly 14 characters long.
func DecodeString(s string) (time.Time, error) {
	if len(s) == TokenLen {
		return decodeToken(s)
	}
	return parseGeneric(s)
}

// decodeToken parses the positional fields. Out-of-range fields are
// normalized by time.Date, so month 13 rolls into the next year.
func decodeToken(s string) (time.Time, error) {
	var fields [6]int
	bounds := [6][2]int{{0, 4}, {4, 6}, {6, 8}, {8, 10}, {10, 12}, {12, 14}}
	for i, b := range bounds {
		part := s[b[0]:b[1]]
		for _, r := range part {
			if r < '0' || r > '9' {
				return time.Time{}, &DecodeError{Value: s, Reason: "token contains non-digit characters"}
			}
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return time.Time{}, &DecodeError{Value: s, Reason: err.Error()}
		}
		fields[i] = n
	}

	return time.Date(fields[0], time.Month(fields[1]), fields[2],
		fields[3], fields[4], fields[5], 0, time.Local), nil
}

// localLayouts carry no zone and are read in local time.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"2006/01/02",
	time.ANSIC,
}

// zonedLayouts carry their own offset or zone name.
var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.RFC822Z,
	time.RFC822,
	time.UnixDate,
	time.RubyDate,
	"Mon Jan 02 2006 15:04:05 GMT-0700",
	"Mon, 02 Jan 2006 15:04:05 GMT",
}

func parseGeneric(s string) (time.Time, error) {
	value := strings.TrimSpace(s)
	if value == "" {
		return time.Time{}, &DecodeError{Value: s, Reason: "empty value"}
	}

	// JavaScript's Date.toString appends a zone name in parentheses.
	if i := strings.Index(value, " ("); i > 0 && strings.HasSuffix(value, ")") {
		value = value[:i]
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	// A bare ISO date is midnight UTC, matching how browsers read it.
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Time{}, &DecodeError{Value: s, Reason: "unrecognized date format"}
}
