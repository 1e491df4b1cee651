package desktop

import (
	"errors"
	"strings"
	"testing"
)

type call struct {
	name string
	args []string
}

func recorder(calls *[]call, err error) runner {
	return func(name string, args ...string) ([]byte, error) {
		*calls = append(*calls, call{name: name, args: args})
		if err != nil {
			return []byte("boom"), err
		}
		return nil, nil
	}
}

func TestNotifySend(t *testing.T) {
	var calls []call
	n := &NotifySend{heading: "Task fertig", enabled: true, run: recorder(&calls, nil)}

	if err := n.Notify("Tea"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(calls) != 1 {
		t.Fatalf("got %d calls, want 1", len(calls))
	}
	got := calls[0]
	if got.name != "notify-send" {
		t.Errorf("command = %q", got.name)
	}
	if last := got.args[len(got.args)-1]; last != "Tea" {
		t.Errorf("body = %q, want Tea", last)
	}
}

func TestNotifySend_Disabled(t *testing.T) {
	var calls []call
	n := &NotifySend{enabled: false, run: recorder(&calls, nil)}
	if err := n.Notify("Tea"); err == nil {
		t.Error("disabled sink should refuse")
	}
	if len(calls) != 0 {
		t.Error("disabled sink must not run commands")
	}
}

func TestOsascript_QuotesTitle(t *testing.T) {
	var calls []call
	o := &Osascript{heading: "Task fertig", enabled: true, run: recorder(&calls, nil)}

	if err := o.Notify(`say "hi" \ bye`); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	script := calls[0].args[1]
	if !strings.Contains(script, `"say \"hi\" \\ bye"`) {
		t.Errorf("script not escaped: %s", script)
	}
	if !strings.Contains(script, `with title "Task fertig"`) {
		t.Errorf("script missing heading: %s", script)
	}
}

func TestOsascript_CommandFailure(t *testing.T) {
	var calls []call
	o := &Osascript{heading: "h", enabled: true, run: recorder(&calls, errors.New("exit 1"))}
	err := o.Notify("x")
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("Notify error = %v, want output included", err)
	}
}
