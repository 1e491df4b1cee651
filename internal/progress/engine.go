// Package progress derives how far a task has run through its declared
// duration and reports, once per task, the moment the duration runs out.
//
// Fraction is a pure function of a task and the current time. Engine wraps
// it with the one-shot completion signal, keeping the "already fired" flag
// in a side table keyed by task id rather than on the task itself. The flag
// survives toggling done and back; it is cleared only by Forget, which the
// Poller calls when a task disappears from the collection.
//
// Poller is the recurring driver: it keeps a registration per displayed
// task, recomputes every registration on each tick and hands newly completed
// titles to a notify.Sink.
package progress

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/pdxmph/parastrom/internal/task"
	"github.com/pdxmph/parastrom/internal/timecode"
)

// Result is one progress computation
type Result struct {
	Fraction      float64
	JustCompleted bool
}

// Fraction returns elapsed/duration clamped to [0, 1]. Done tasks are
// always 1. A start time that cannot be decoded yields 0 and the error.
func Fraction(t task.Task, now time.Time) (float64, error) {
	if t.Done {
		return 1, nil
	}

	start, err := timecode.Decode(t.StartTime)
	if err != nil {
		return 0, fmt.Errorf("task %s: %w", t.ID, err)
	}

	if t.DurationMs <= 0 {
		return 1, nil
	}

	elapsed := float64(now.UnixMilli() - start.UnixMilli())
	return clamp(elapsed / float64(t.DurationMs)), nil
}

func clamp(f float64) float64 {
	switch {
	case math.IsNaN(f), f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}

// Engine computes progress and tracks which tasks have already fired their
// completion signal. It is safe for concurrent use.
type Engine struct {
	mu    sync.Mutex
	fired map[string]bool
}

// NewEngine creates an engine with an empty side table
func NewEngine() *Engine {
	return &Engine{fired: make(map[string]bool)}
}

// Compute returns the task's fraction and whether this call is the first
// to see it reach 1 while not done.
func (e *Engine) Compute(t task.Task, now time.Time) (Result, error) {
	fraction, err := Fraction(t, now)
	if err != nil {
		return Result{Fraction: 0}, err
	}
	if t.Done || fraction < 1 {
		return Result{Fraction: fraction}, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.fired[t.ID] {
		return Result{Fraction: fraction}, nil
	}
	e.fired[t.ID] = true
	return Result{Fraction: fraction, JustCompleted: true}, nil
}

// Fired reports whether the task's completion signal has already fired
func (e *Engine) Fired(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fired[id]
}

// Forget drops the fired flag for id
func (e *Engine) Forget(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.fired, id)
}

// State is a task's position in the lifecycle
type State int

const (
	// StateActive is not done and still running (or not yet notified)
	StateActive State = iota
	// StateExpired is not done, fully elapsed and already notified
	StateExpired
	// StateDone was toggled done by the user
	StateDone
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateExpired:
		return "expired"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Classify maps a task and its latest result to a State
func (e *Engine) Classify(t task.Task, r Result) State {
	if t.Done {
		return StateDone
	}
	if r.Fraction >= 1 && e.Fired(t.ID) {
		return StateExpired
	}
	return StateActive
}
