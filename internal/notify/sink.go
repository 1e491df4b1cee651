// Package notify delivers task completion notices. A Sink receives the
// title of a task exactly once, when its duration first runs out; how the
// notice is shown is up to the sink.
package notify

import (
	"io"

	"github.com/pdxmph/parastrom/internal/logging"
)

// DefaultHeading is the notification heading used when none is configured
const DefaultHeading = "Task fertig"

// Sink defines the interface that all notification backends must implement
type Sink interface {
	// Name returns the sink identifier (e.g., "notify-send", "bell")
	Name() string

	// IsEnabled checks if the sink can deliver notifications on this machine
	IsEnabled() bool

	// Notify announces that the task with the given title has run out
	Notify(title string) error
}

// Options carries what a sink may need at construction time
type Options struct {
	Heading string
	Out     io.Writer
	Logger  *logging.Logger
}

func (o Options) heading() string {
	if o.Heading == "" {
		return DefaultHeading
	}
	return o.Heading
}

// SinkFactory is a function that creates a new instance of a Sink
type SinkFactory func(opts Options) Sink

// Func adapts a plain function to the Sink interface
type Func func(title string) error

// Name returns "func"
func (f Func) Name() string { return "func" }

// IsEnabled is always true
func (f Func) IsEnabled() bool { return true }

// Notify calls f
func (f Func) Notify(title string) error { return f(title) }
