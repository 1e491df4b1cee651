package timecode

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Stamp is a time anchor as it was supplied: either a string (normally a
// 14-digit token) or raw epoch milliseconds. It serializes back in the same
// form it was read, so exported data round-trips unchanged.
type Stamp struct {
	token  string
	millis int64
	epoch  bool
}

// FromToken wraps a string value.
func FromToken(token string) Stamp {
	return Stamp{token: token}
}

// FromMillis wraps an epoch value in milliseconds.
func FromMillis(ms int64) Stamp {
	return Stamp{millis: ms, epoch: true}
}

// FromTime encodes t as a token stamp.
func FromTime(t time.Time) Stamp {
	return Stamp{token: Encode(t)}
}

// IsEpoch reports whether the stamp holds a numeric epoch.
func (s Stamp) IsEpoch() bool { return s.epoch }

// Token returns the string form, empty for epoch stamps.
func (s Stamp) Token() string { return s.token }

// Millis returns the numeric form, zero for token stamps.
func (s Stamp) Millis() int64 { return s.millis }

// IsZero reports whether the stamp was never set.
func (s Stamp) IsZero() bool { return !s.epoch && s.token == "" }

func (s Stamp) String() string {
	if s.epoch {
		return strconv.FormatInt(s.millis, 10)
	}
	return s.token
}

// Decode resolves a stamp to an instant. Epoch values pass through
// unchanged; strings go through DecodeString.
func Decode(s Stamp) (time.Time, error) {
	if s.epoch {
		return time.UnixMilli(s.millis), nil
	}
	return DecodeString(s.token)
}

// Millis resolves a stamp to epoch milliseconds.
func Millis(s Stamp) (int64, error) {
	if s.epoch {
		return s.millis, nil
	}
	t, err := DecodeString(s.token)
	if err != nil {
		return 0, err
	}
	return t.UnixMilli(), nil
}

// MarshalJSON implements json.Marshaler.
func (s Stamp) MarshalJSON() ([]byte, error) {
	if s.epoch {
		return []byte(strconv.FormatInt(s.millis, 10)), nil
	}
	return json.Marshal(s.token)
}

// UnmarshalJSON implements json.Unmarshaler. Strings and integers are
// accepted; anything else is rejected.
func (s *Stamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return fmt.Errorf("start time: missing value")
	}

	if b[0] == '"' {
		var token string
		if err := json.Unmarshal(b, &token); err != nil {
			return fmt.Errorf("start time: %w", err)
		}
		*s = FromToken(token)
		return nil
	}

	ms, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("start time: expected string or integer epoch, got %s", b)
	}
	*s = FromMillis(ms)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (s Stamp) MarshalYAML() (interface{}, error) {
	if s.epoch {
		return s.millis, nil
	}
	return s.token, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Stamp) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("start time: expected scalar at line %d", node.Line)
	}

	switch node.ShortTag() {
	case "!!int":
		ms, err := strconv.ParseInt(node.Value, 0, 64)
		if err != nil {
			return fmt.Errorf("start time: %w", err)
		}
		*s = FromMillis(ms)
	case "!!str":
		*s = FromToken(node.Value)
	default:
		return fmt.Errorf("start time: expected string or integer epoch at line %d", node.Line)
	}
	return nil
}
