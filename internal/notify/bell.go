package notify

import (
	"fmt"
	"io"
	"os"
)

// BellSink rings the terminal bell and prints the notice
type BellSink struct {
	out     io.Writer
	heading string
}

// NewBellSink writes to opts.Out, or stderr when unset
func NewBellSink(opts Options) Sink {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	return &BellSink{out: out, heading: opts.heading()}
}

// Name returns the sink identifier
func (b *BellSink) Name() string {
	return "bell"
}

// IsEnabled is always true; a terminal is assumed
func (b *BellSink) IsEnabled() bool {
	return true
}

// Notify writes "\a<heading>: <title>"
func (b *BellSink) Notify(title string) error {
	_, err := fmt.Fprintf(b.out, "\a%s: %s\n", b.heading, title)
	return err
}

// LogSink records notices in the log only
type LogSink struct {
	opts Options
}

// Name returns the sink identifier
func (l *LogSink) Name() string {
	return "log"
}

// IsEnabled reports whether a logger was supplied
func (l *LogSink) IsEnabled() bool {
	return l.opts.Logger != nil
}

// Notify logs the notice at INFO
func (l *LogSink) Notify(title string) error {
	if l.opts.Logger != nil {
		l.opts.Logger.Info(l.opts.heading(), "title", title)
	}
	return nil
}

func init() {
	Register("bell", NewBellSink)
	Register("log", func(opts Options) Sink { return &LogSink{opts: opts} })
}
