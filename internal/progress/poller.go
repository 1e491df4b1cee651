package progress

import (
	"context"
	"sync"
	"time"

	"github.com/pdxmph/parastrom/internal/logging"
	"github.com/pdxmph/parastrom/internal/notify"
	"github.com/pdxmph/parastrom/internal/task"
)

// DefaultInterval is the tick period
const DefaultInterval = time.Second

// Update is the outcome of one tick for one task
type Update struct {
	ID     string
	Title  string
	Result Result
	State  State
	Err    error
}

// Source supplies the current collection on every tick
type Source func() []task.Task

// Poller keeps a registration per displayed task and recomputes all of
// them on each tick. A tick runs to completion before the next one.
type Poller struct {
	engine *Engine
	sink   notify.Sink
	logger *logging.Logger

	mu    sync.Mutex
	order []string
	tasks map[string]task.Task
}

// NewPoller wires an engine to a sink. A nil sink drops notices.
func NewPoller(engine *Engine, sink notify.Sink, logger *logging.Logger) *Poller {
	if engine == nil {
		engine = NewEngine()
	}
	if sink == nil {
		sink = notify.NewNoopSink()
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Poller{
		engine: engine,
		sink:   sink,
		logger: logger,
		tasks:  make(map[string]task.Task),
	}
}

// Engine returns the engine owning the fired flags
func (p *Poller) Engine() *Engine {
	return p.engine
}

// Sync replaces the set of registrations. Tasks that are no longer present
// are torn down and their fired flag is forgotten; tasks that remain keep it.
func (p *Poller) Sync(tasks []task.Task) {
	p.mu.Lock()
	defer p.mu.Unlock()

	next := make(map[string]task.Task, len(tasks))
	order := make([]string, 0, len(tasks))
	for _, t := range tasks {
		if _, dup := next[t.ID]; dup {
			continue
		}
		next[t.ID] = t
		order = append(order, t.ID)
	}

	for id := range p.tasks {
		if _, ok := next[id]; !ok {
			p.engine.Forget(id)
			p.logger.WithTask(id).Debug("polling stopped")
		}
	}

	p.tasks = next
	p.order = order
}

// Untrack tears down one registration
func (p *Poller) Untrack(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.tasks[id]; !ok {
		return
	}
	delete(p.tasks, id)
	for i, candidate := range p.order {
		if candidate == id {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	p.engine.Forget(id)
}

// Tracked returns the number of live registrations
func (p *Poller) Tracked() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.order)
}

// Tick recomputes every registration at now. Decode failures are logged and
// reported with fraction 0; they never stop the loop.
func (p *Poller) Tick(now time.Time) []Update {
	p.mu.Lock()
	defer p.mu.Unlock()

	updates := make([]Update, 0, len(p.order))
	for _, id := range p.order {
		t := p.tasks[id]
		r, err := p.engine.Compute(t, now)
		u := Update{ID: t.ID, Title: t.Title, Result: r, Err: err}
		if err != nil {
			p.logger.WithTask(t.ID).Warn("progress unavailable", "error", err.Error())
			u.State = StateActive
			updates = append(updates, u)
			continue
		}
		u.State = p.engine.Classify(t, r)

		if r.JustCompleted {
			log := p.logger.WithTask(t.ID)
			log.Info("task duration elapsed", "title", t.Title)
			if err := p.sink.Notify(t.Title); err != nil {
				log.Error("notification failed", "error", err.Error())
			}
		}
		updates = append(updates, u)
	}
	return updates
}

// Run ticks every interval until ctx is done, re-reading the collection from
// source before each tick. It is used by the headless watch command; the
// terminal UI drives Tick from its own timer instead.
func (p *Poller) Run(ctx context.Context, interval time.Duration, source Source, clock func() time.Time) error {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if clock == nil {
		clock = time.Now
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.Sync(source())
	p.Tick(clock())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.Sync(source())
			p.Tick(clock())
		}
	}
}
