package task

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pdxmph/parastrom/internal/timecode"
)

// Task is one user-declared unit of timed work
type Task struct {
	ID         string         `json:"id" yaml:"id"`
	Title      string         `json:"title" yaml:"title"`
	Category   string         `json:"category" yaml:"category"`
	Priority   Priority       `json:"priority" yaml:"priority"`
	StartTime  timecode.Stamp `json:"startTime" yaml:"startTime"`
	DurationMs int64          `json:"durationMs" yaml:"durationMs"`
	Notes      string         `json:"notes" yaml:"notes"`
	Done       bool           `json:"done" yaml:"done"`
}

// Priority is one of low, medium or high
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists the valid priorities in display order
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// IsValid checks if the priority is one of the known values
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// ParsePriority normalizes user input. Empty input yields the default.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if p == "" {
		return PriorityLow, nil
	}
	if !p.IsValid() {
		return "", fmt.Errorf("unknown priority %q (want low, medium or high)", s)
	}
	return p, nil
}

// Next cycles low -> medium -> high -> low
func (p Priority) Next() Priority {
	for i, candidate := range Priorities {
		if candidate == p {
			return Priorities[(i+1)%len(Priorities)]
		}
	}
	return PriorityLow
}

// UnmarshalJSON rejects unknown priorities so a foreign blob with a bad
// value fails as a whole instead of loading a half-valid task.
func (p *Priority) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("priority: %w", err)
	}
	parsed, err := ParsePriority(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler with the same rules as JSON
func (p *Priority) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("priority: %w", err)
	}
	parsed, err := ParsePriority(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// New creates a task anchored at now. The id and start time share the
// same token.
func New(title, category string, priority Priority, duration time.Duration, notes string, now time.Time) Task {
	if priority == "" {
		priority = PriorityLow
	}
	token := timecode.Encode(now)
	return Task{
		ID:         token,
		Title:      title,
		Category:   category,
		Priority:   priority,
		StartTime:  timecode.FromToken(token),
		DurationMs: duration.Milliseconds(),
		Notes:      notes,
		Done:       false,
	}
}

// Duration returns the declared duration
func (t Task) Duration() time.Duration {
	return time.Duration(t.DurationMs) * time.Millisecond
}

// Start resolves the start anchor
func (t Task) Start() (time.Time, error) {
	return timecode.Decode(t.StartTime)
}

// Deadline is start plus duration
func (t Task) Deadline() (time.Time, error) {
	start, err := t.Start()
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(t.Duration()), nil
}

// Toggled returns a copy with Done flipped
func (t Task) Toggled() Task {
	t.Done = !t.Done
	return t
}
