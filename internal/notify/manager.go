package notify

import (
	"fmt"

	"github.com/pdxmph/parastrom/internal/logging"
)

// preference is the order sinks are tried in when none is named
var preference = []string{"notify-send", "osascript", "bell", "noop"}

// Manager selects a sink and forwards notifications to it
type Manager struct {
	sink   Sink
	logger *logging.Logger
}

// NewManager creates a manager with the named sink. If name is empty the
// first enabled sink in order of preference is used, falling back to noop.
func NewManager(name string, opts Options) (*Manager, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}

	var sink Sink
	if name != "" {
		s, err := CreateSink(name, opts)
		if err != nil {
			return nil, fmt.Errorf("creating sink %s: %w", name, err)
		}
		sink = s
	} else {
		for _, candidate := range preference {
			s, err := CreateSink(candidate, opts)
			if err != nil {
				continue
			}
			if s.IsEnabled() {
				sink = s
				break
			}
		}
		if sink == nil {
			sink, _ = CreateSink("noop", opts)
		}
	}

	logger.Debug("notification sink selected", "sink", sink.Name(), "enabled", sink.IsEnabled())
	return &Manager{sink: sink, logger: logger}, nil
}

// Sink returns the current sink
func (m *Manager) Sink() Sink {
	return m.sink
}

// Name returns the name of the current sink
func (m *Manager) Name() string {
	return m.sink.Name()
}

// IsEnabled returns whether the current sink is enabled
func (m *Manager) IsEnabled() bool {
	return m.sink.IsEnabled()
}

// Notify forwards to the selected sink. Disabled sinks are skipped silently.
func (m *Manager) Notify(title string) error {
	if !m.sink.IsEnabled() {
		return nil
	}
	if err := m.sink.Notify(title); err != nil {
		return fmt.Errorf("%s: %w", m.sink.Name(), err)
	}
	m.logger.Info("completion notice sent", "sink", m.sink.Name(), "title", title)
	return nil
}
