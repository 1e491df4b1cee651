package progress

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pdxmph/parastrom/internal/logging"
	"github.com/pdxmph/parastrom/internal/notify"
	"github.com/pdxmph/parastrom/internal/task"
	"github.com/pdxmph/parastrom/internal/timecode"
)

type recordingSink struct {
	mu     sync.Mutex
	titles []string
	err    error
}

func (r *recordingSink) Name() string    { return "recording" }
func (r *recordingSink) IsEnabled() bool { return true }
func (r *recordingSink) Notify(title string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.titles = append(r.titles, title)
	return r.err
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.titles)
}

var _ notify.Sink = (*recordingSink)(nil)

func TestPoller_NotifiesOnce(t *testing.T) {
	sink := &recordingSink{}
	p := NewPoller(nil, sink, nil)
	p.Sync([]task.Task{minuteTask()})

	for s := 0; s <= 180; s++ {
		p.Tick(t0.Add(time.Duration(s) * time.Second))
	}

	if sink.count() != 1 || sink.titles[0] != "Tea" {
		t.Errorf("notifications = %v, want [Tea]", sink.titles)
	}
}

func TestPoller_UpdatesInOrder(t *testing.T) {
	a := minuteTask()
	b := task.New("Soup", "", task.PriorityLow, 2*time.Minute, "", t0.Add(time.Second))
	p := NewPoller(nil, nil, nil)
	p.Sync([]task.Task{a, b})

	updates := p.Tick(t0.Add(61 * time.Second))
	if len(updates) != 2 {
		t.Fatalf("got %d updates, want 2", len(updates))
	}
	if updates[0].ID != a.ID || updates[1].ID != b.ID {
		t.Errorf("order = %s,%s", updates[0].ID, updates[1].ID)
	}
	if updates[0].State != StateExpired {
		t.Errorf("first state = %v, want expired", updates[0].State)
	}
	if updates[1].Result.Fraction != 0.5 {
		t.Errorf("second fraction = %v, want 0.5", updates[1].Result.Fraction)
	}
}

func TestPoller_BadTaskDoesNotStopLoop(t *testing.T) {
	sink := &recordingSink{}
	bad := minuteTask()
	bad.ID = "bad"
	bad.StartTime = timecode.FromToken("garbage")
	good := task.New("Good", "", task.PriorityLow, time.Minute, "", t0.Add(time.Second))

	p := NewPoller(nil, sink, nil)
	p.Sync([]task.Task{bad, good})

	updates := p.Tick(t0.Add(5 * time.Minute))
	if updates[0].Err == nil || updates[0].Result.Fraction != 0 {
		t.Errorf("bad update = %+v, want error and fraction 0", updates[0])
	}
	if updates[1].Err != nil || !updates[1].Result.JustCompleted {
		t.Errorf("good update = %+v, want completion", updates[1])
	}
	if sink.count() != 1 {
		t.Errorf("notifications = %v", sink.titles)
	}
}

func TestPoller_SinkErrorIsNotFatal(t *testing.T) {
	sink := &recordingSink{err: errors.New("dbus down")}
	var logs bytes.Buffer
	p := NewPoller(nil, sink, logging.NewWriterLogger(&logs, logging.LevelInfo))
	p.Sync([]task.Task{minuteTask()})

	updates := p.Tick(t0.Add(2 * time.Minute))
	if len(updates) != 1 || updates[0].Err != nil {
		t.Errorf("updates = %+v", updates)
	}
	if !p.Engine().Fired(minuteTask().ID) {
		t.Error("signal should count as fired even if delivery failed")
	}

	out := logs.String()
	if !strings.Contains(out, `"task_id":"`+minuteTask().ID+`"`) || !strings.Contains(out, "dbus down") {
		t.Errorf("log should name the task and the delivery error:\n%s", out)
	}
}

func TestPoller_SyncTearsDown(t *testing.T) {
	sink := &recordingSink{}
	tk := minuteTask()
	p := NewPoller(nil, sink, nil)

	p.Sync([]task.Task{tk})
	p.Tick(t0.Add(2 * time.Minute))
	if !p.Engine().Fired(tk.ID) {
		t.Fatal("expected fired flag")
	}

	p.Sync(nil)
	if p.Tracked() != 0 {
		t.Errorf("Tracked() = %d, want 0", p.Tracked())
	}
	if p.Engine().Fired(tk.ID) {
		t.Error("removed task should forget its flag")
	}
	if got := p.Tick(t0.Add(3 * time.Minute)); len(got) != 0 {
		t.Errorf("torn-down task still ticking: %+v", got)
	}
}

func TestPoller_SyncKeepsFlagForRemainingTasks(t *testing.T) {
	sink := &recordingSink{}
	tk := minuteTask()
	p := NewPoller(nil, sink, nil)

	p.Sync([]task.Task{tk})
	p.Tick(t0.Add(2 * time.Minute))

	// toggled done and back, as the store would report it
	p.Sync([]task.Task{tk.Toggled()})
	p.Tick(t0.Add(3 * time.Minute))
	p.Sync([]task.Task{tk})
	p.Tick(t0.Add(4 * time.Minute))

	if sink.count() != 1 {
		t.Errorf("notifications = %v, want exactly one", sink.titles)
	}
}

func TestPoller_Untrack(t *testing.T) {
	a := minuteTask()
	b := task.New("B", "", task.PriorityLow, time.Minute, "", t0.Add(time.Second))
	p := NewPoller(nil, nil, nil)
	p.Sync([]task.Task{a, b})

	p.Untrack(a.ID)
	p.Untrack("missing")

	updates := p.Tick(t0)
	if len(updates) != 1 || updates[0].ID != b.ID {
		t.Errorf("updates = %+v, want only %s", updates, b.ID)
	}
}

func TestPoller_Run(t *testing.T) {
	sink := &recordingSink{}
	p := NewPoller(nil, sink, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source := func() []task.Task { return []task.Task{minuteTask()} }
	clock := func() time.Time { return t0.Add(5 * time.Minute) }

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx, 5*time.Millisecond, source, clock) }()

	deadline := time.After(2 * time.Second)
	for sink.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("Run never notified")
		case <-time.After(5 * time.Millisecond):
		}
	}
	time.Sleep(30 * time.Millisecond)
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
	if sink.count() != 1 {
		t.Errorf("notifications = %d, want 1 across many ticks", sink.count())
	}
}
