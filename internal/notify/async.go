package notify

import (
	"sync"

	"github.com/pdxmph/parastrom/internal/logging"
)

// AsyncSink delivers notices on their own goroutine so callers on a UI
// event loop never wait on a slow notification tool. Delivery errors are
// logged since nobody is left to receive them.
type AsyncSink struct {
	sink   Sink
	logger *logging.Logger
	wg     sync.WaitGroup
}

// NewAsyncSink wraps sink
func NewAsyncSink(sink Sink, logger *logging.Logger) *AsyncSink {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &AsyncSink{sink: sink, logger: logger}
}

// Name returns the wrapped sink's name
func (a *AsyncSink) Name() string {
	return a.sink.Name()
}

// IsEnabled reports whether the wrapped sink is enabled
func (a *AsyncSink) IsEnabled() bool {
	return a.sink.IsEnabled()
}

// Notify starts delivery and returns immediately
func (a *AsyncSink) Notify(title string) error {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.sink.Notify(title); err != nil {
			a.logger.Error("notification failed", "sink", a.sink.Name(), "title", title, "error", err.Error())
		}
	}()
	return nil
}

// Wait blocks until every started delivery has finished
func (a *AsyncSink) Wait() {
	a.wg.Wait()
}
