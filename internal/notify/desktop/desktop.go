// Package desktop registers notification sinks that talk to the host's
// desktop notification service through its command line tools.
package desktop

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/pdxmph/parastrom/internal/notify"
)

// runner executes a command and returns its combined output
type runner func(name string, args ...string) ([]byte, error)

func execRunner(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).CombinedOutput()
}

// NotifySend implements notify.Sink with libnotify's notify-send
type NotifySend struct {
	heading string
	enabled bool
	run     runner
}

// NewNotifySend creates a notify-send sink
func NewNotifySend(opts notify.Options) notify.Sink {
	heading := opts.Heading
	if heading == "" {
		heading = notify.DefaultHeading
	}
	return &NotifySend{
		heading: heading,
		enabled: isAvailable("notify-send"),
		run:     execRunner,
	}
}

// Name returns the sink identifier
func (n *NotifySend) Name() string {
	return "notify-send"
}

// IsEnabled returns whether notify-send is on PATH
func (n *NotifySend) IsEnabled() bool {
	return n.enabled
}

// Notify shows a desktop notification
func (n *NotifySend) Notify(title string) error {
	if !n.enabled {
		return fmt.Errorf("notify-send not available")
	}

	output, err := n.run("notify-send", "--app-name=parastrom", n.heading, title)
	if err != nil {
		return fmt.Errorf("running notify-send: %w (output: %s)", err, string(output))
	}
	return nil
}

// Osascript implements notify.Sink with macOS's `display notification`
type Osascript struct {
	heading string
	enabled bool
	run     runner
}

// NewOsascript creates an osascript sink
func NewOsascript(opts notify.Options) notify.Sink {
	heading := opts.Heading
	if heading == "" {
		heading = notify.DefaultHeading
	}
	return &Osascript{
		heading: heading,
		enabled: runtime.GOOS == "darwin" && isAvailable("osascript"),
		run:     execRunner,
	}
}

// Name returns the sink identifier
func (o *Osascript) Name() string {
	return "osascript"
}

// IsEnabled returns whether we are on macOS with osascript available
func (o *Osascript) IsEnabled() bool {
	return o.enabled
}

// Notify shows a notification center banner
func (o *Osascript) Notify(title string) error {
	if !o.enabled {
		return fmt.Errorf("osascript not available")
	}

	script := fmt.Sprintf(`display notification %s with title %s`,
		appleScriptString(title), appleScriptString(o.heading))
	output, err := o.run("osascript", "-e", script)
	if err != nil {
		return fmt.Errorf("running osascript: %w (output: %s)", err, string(output))
	}
	return nil
}

// appleScriptString quotes s as an AppleScript string literal
func appleScriptString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

func isAvailable(tool string) bool {
	_, err := exec.LookPath(tool)
	return err == nil
}

func init() {
	notify.Register("notify-send", NewNotifySend)
	notify.Register("osascript", NewOsascript)
}
