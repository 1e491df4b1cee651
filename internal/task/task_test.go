package task

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pdxmph/parastrom/internal/timecode"
)

func TestNew(t *testing.T) {
	now := time.Date(2024, time.March, 5, 7, 8, 9, 0, time.Local)
	tk := New("Write report", "work", "", 25*time.Minute, "draft first", now)

	if tk.ID != "20240305070809" {
		t.Errorf("ID = %q, want 20240305070809", tk.ID)
	}
	if tk.StartTime != timecode.FromToken(tk.ID) {
		t.Errorf("StartTime = %v, want token equal to ID", tk.StartTime)
	}
	if tk.Priority != PriorityLow {
		t.Errorf("Priority = %q, want low default", tk.Priority)
	}
	if tk.DurationMs != 1_500_000 {
		t.Errorf("DurationMs = %d, want 1500000", tk.DurationMs)
	}
	if tk.Done {
		t.Error("new task should not be done")
	}

	deadline, err := tk.Deadline()
	if err != nil {
		t.Fatalf("Deadline: %v", err)
	}
	if want := now.Add(25 * time.Minute); !deadline.Equal(want) {
		t.Errorf("Deadline() = %v, want %v", deadline, want)
	}
}

func TestToggled(t *testing.T) {
	tk := New("x", "", PriorityHigh, time.Minute, "", time.Now())
	flipped := tk.Toggled()
	if !flipped.Done {
		t.Error("Toggled() should set Done")
	}
	if tk.Done {
		t.Error("Toggled() must not modify the receiver")
	}
	if flipped.Toggled().Done {
		t.Error("double toggle should clear Done")
	}
}

func TestJSONFieldOrder(t *testing.T) {
	tk := Task{
		ID:         "20240305070809",
		Title:      "t",
		Priority:   PriorityMedium,
		StartTime:  timecode.FromToken("20240305070809"),
		DurationMs: 60000,
	}
	data, err := json.Marshal(tk)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"id":"20240305070809","title":"t","category":"","priority":"medium","startTime":"20240305070809","durationMs":60000,"notes":"","done":false}`
	if string(data) != want {
		t.Errorf("Marshal() =\n%s\nwant\n%s", data, want)
	}
}

func TestPriorityUnmarshal(t *testing.T) {
	tests := []struct {
		in      string
		want    Priority
		wantErr bool
	}{
		{`"low"`, PriorityLow, false},
		{`"HIGH"`, PriorityHigh, false},
		{`""`, PriorityLow, false},
		{`"urgent"`, "", true},
		{`3`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var p Priority
			err := json.Unmarshal([]byte(tt.in), &p)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Unmarshal(%s) = %q, want error", tt.in, p)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal(%s): %v", tt.in, err)
			}
			if p != tt.want {
				t.Errorf("Unmarshal(%s) = %q, want %q", tt.in, p, tt.want)
			}
		})
	}
}

func TestPriorityNext(t *testing.T) {
	if got := PriorityLow.Next(); got != PriorityMedium {
		t.Errorf("low.Next() = %q", got)
	}
	if got := PriorityHigh.Next(); got != PriorityLow {
		t.Errorf("high.Next() = %q", got)
	}
	if got := Priority("bogus").Next(); got != PriorityLow {
		t.Errorf("bogus.Next() = %q", got)
	}
}

func TestValidate(t *testing.T) {
	valid := New("ok", "", PriorityLow, time.Minute, "", time.Now())

	tests := []struct {
		name  string
		edit  func(*Task)
		field string
	}{
		{"valid", func(*Task) {}, ""},
		{"blank title", func(tk *Task) { tk.Title = "  " }, "title"},
		{"zero duration", func(tk *Task) { tk.DurationMs = 0 }, "duration"},
		{"negative duration", func(tk *Task) { tk.DurationMs = -1 }, "duration"},
		{"bad priority", func(tk *Task) { tk.Priority = "urgent" }, "priority"},
		{"missing id", func(tk *Task) { tk.ID = "" }, "id"},
		{"missing start", func(tk *Task) { tk.StartTime = timecode.Stamp{} }, "startTime"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tk := valid
			tt.edit(&tk)
			err := Validate(tk)
			if tt.field == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() = %v, want *ValidationError", err)
			}
			if verr.Field != tt.field {
				t.Errorf("Field = %q, want %q", verr.Field, tt.field)
			}
		})
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"25", 25 * time.Minute, false},
		{"25m", 25 * time.Minute, false},
		{"2 hours", 2 * time.Hour, false},
		{"1d", 24 * time.Hour, false},
		{"3 days", 72 * time.Hour, false},
		{"1h30m", 90 * time.Minute, false},
		{"45s", 45 * time.Second, false},
		{"0", 0, true},
		{"-5m", 0, true},
		{"", 0, true},
		{"soon", 0, true},
		{"5 fortnights", 0, true},
		{"106751d", 106751 * 24 * time.Hour, false},
		{"106752d", 0, true},
		{"999999999999d", 0, true},
		{"1000000000000", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDuration(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseDuration(%q) = %v, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDuration(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseDuration(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestUnits(t *testing.T) {
	want := map[Unit]time.Duration{
		UnitMinutes: time.Minute,
		UnitHours:   time.Hour,
		UnitDays:    24 * time.Hour,
	}
	for u, d := range want {
		if got := u.Multiplier(); got != d {
			t.Errorf("%s.Multiplier() = %v, want %v", u, got, d)
		}
	}
	if UnitDays.Next() != UnitMinutes {
		t.Error("days should cycle back to minutes")
	}
	if _, err := ParseUnit("weeks"); err == nil || !strings.Contains(err.Error(), "weeks") {
		t.Errorf("ParseUnit(weeks) error = %v", err)
	}
}
