package notify

// NoopSink drops every notification, used when notifications are off
type NoopSink struct{}

// NewNoopSink creates a new no-op sink
func NewNoopSink() Sink {
	return &NoopSink{}
}

// Name returns the sink identifier
func (n *NoopSink) Name() string {
	return "noop"
}

// IsEnabled always returns false for the noop sink
func (n *NoopSink) IsEnabled() bool {
	return false
}

// Notify does nothing
func (n *NoopSink) Notify(title string) error {
	return nil
}

func init() {
	Register("noop", func(Options) Sink { return NewNoopSink() })
}
