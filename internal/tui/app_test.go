package tui

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pdxmph/parastrom/internal/db"
	"github.com/pdxmph/parastrom/internal/progress"
	"github.com/pdxmph/parastrom/internal/task"
	"github.com/pdxmph/parastrom/internal/taskstore"
)

var base = time.Date(2024, time.March, 5, 9, 0, 0, 0, time.Local)

type recordingSink struct {
	mu     sync.Mutex
	titles []string
}

func (r *recordingSink) Name() string    { return "recording" }
func (r *recordingSink) IsEnabled() bool { return true }
func (r *recordingSink) Notify(title string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.titles = append(r.titles, title)
	return nil
}

type harness struct {
	model  Model
	store  *taskstore.Store
	poller *progress.Poller
	sink   *recordingSink
	now    time.Time
}

func newHarness(t *testing.T, exportPath string) *harness {
	t.Helper()

	store := taskstore.New(db.NewMemory())
	if err := taskstore.SeedFixtures(store, base); err != nil {
		t.Fatalf("SeedFixtures: %v", err)
	}

	h := &harness{store: store, sink: &recordingSink{}, now: base}
	h.poller = progress.NewPoller(progress.NewEngine(), h.sink, nil)
	h.model = New(store, h.poller, Options{
		Clock:      func() time.Time { return h.now },
		ExportPath: exportPath,
	})
	h.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	return h
}

func (h *harness) send(msgs ...tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = h.model.Update(msg)
		h.model = next.(Model)
	}
	return cmd
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestView_LoadingBeforeSize(t *testing.T) {
	store := taskstore.New(db.NewMemory())
	m := New(store, progress.NewPoller(nil, nil, nil), Options{})
	if got := m.View(); got != "Loading..." {
		t.Errorf("View() = %q, want Loading...", got)
	}
}

func TestNew_RegistersAndNotifiesElapsed(t *testing.T) {
	h := newHarness(t, "")

	if got := h.poller.Tracked(); got != 5 {
		t.Errorf("Tracked() = %d, want 5", got)
	}
	if len(h.sink.titles) != 1 || h.sink.titles[0] != "Laundry cycle" {
		t.Errorf("notified %v, want [Laundry cycle]", h.sink.titles)
	}
	if !strings.Contains(h.model.Status(), "Task fertig: Laundry cycle") {
		t.Errorf("status = %q", h.model.Status())
	}

	view := h.model.View()
	if !strings.Contains(view, "4 active | 1 done") {
		t.Errorf("header missing counts:\n%s", view)
	}
	if !strings.Contains(view, "Steep tea") {
		t.Errorf("task list missing title:\n%s", view)
	}
}

func TestTick_NotifiesOnceAndReschedules(t *testing.T) {
	h := newHarness(t, "")

	h.now = base.Add(3 * time.Minute)
	if cmd := h.send(tickMsg(h.now)); cmd == nil {
		t.Fatal("tick should schedule the next tick")
	}
	h.send(tickMsg(h.now.Add(time.Second)))

	want := []string{"Laundry cycle", "Steep tea"}
	if strings.Join(h.sink.titles, ",") != strings.Join(want, ",") {
		t.Errorf("notified %v, want %v", h.sink.titles, want)
	}
	if got := h.model.updates[h.model.tasks[0].ID].State; got != progress.StateExpired {
		t.Errorf("tea state = %v, want expired", got)
	}
}

func TestToggleSelected(t *testing.T) {
	h := newHarness(t, "")
	tea0 := h.model.tasks[0]

	h.send(key(" "))

	got, _ := h.store.Get(tea0.ID)
	if !got.Done {
		t.Fatal("space should mark the selected task done")
	}
	if !strings.Contains(h.model.View(), "3 active | 2 done") {
		t.Error("header should reflect the toggle")
	}

	h.send(key("x"))
	if got, _ := h.store.Get(tea0.ID); got.Done {
		t.Error("second toggle should undo")
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	h := newHarness(t, "")
	h.send(key("j"))
	target := h.model.tasks[1]

	h.send(key("d"), key("n"))
	if len(h.store.Tasks()) != 5 {
		t.Fatal("declined delete removed a task")
	}

	h.send(key("d"))
	if !strings.Contains(h.model.View(), target.Title) {
		t.Error("confirmation should name the task")
	}
	h.send(key("y"))

	if _, ok := h.store.Get(target.ID); ok {
		t.Error("confirmed delete left the task in the store")
	}
	if len(h.model.Tasks()) != 4 || h.poller.Tracked() != 4 {
		t.Errorf("model has %d tasks, poller tracks %d; want 4", len(h.model.Tasks()), h.poller.Tracked())
	}
}

func TestForm_CreatesTask(t *testing.T) {
	h := newHarness(t, "")

	h.send(
		key("n"),
		key("Boil eggs"), key("tab"),
		key("kitchen"), key("tab"),
		key("right"), key("tab"),
		key("tab"),
		key("enter"),
		key("ctrl+s"),
	)

	if h.model.formMode {
		t.Fatalf("form still open, status %q", h.model.Status())
	}

	tasks := h.store.Tasks()
	if len(tasks) != 6 {
		t.Fatalf("store has %d tasks, want 6", len(tasks))
	}
	got := tasks[5]
	if got.Title != "Boil eggs" || got.Category != "kitchen" {
		t.Errorf("created %+v", got)
	}
	if got.Priority != task.PriorityMedium {
		t.Errorf("Priority = %s, want medium", got.Priority)
	}
	if got.Duration() != time.Hour {
		t.Errorf("Duration = %v, want 1h", got.Duration())
	}
	if got.Done {
		t.Error("new task must not be done")
	}
	if h.poller.Tracked() != 6 {
		t.Errorf("Tracked() = %d, want 6", h.poller.Tracked())
	}
}

func TestForm_ValidationKeepsFormOpen(t *testing.T) {
	h := newHarness(t, "")

	h.send(key("n"), key("ctrl+s"))

	if !h.model.formMode {
		t.Fatal("form should stay open on a blank title")
	}
	if !strings.Contains(h.model.Status(), "title") {
		t.Errorf("status = %q, want a title error", h.model.Status())
	}
	if len(h.store.Tasks()) != 5 {
		t.Error("invalid form created a task")
	}

	h.send(key("esc"))
	if h.model.formMode {
		t.Error("esc should close the form")
	}
}

func TestExportThenImport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	h := newHarness(t, path)

	h.send(key("E"), key("enter"))
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("export did not write %s: %v", path, err)
	}
	if !strings.HasPrefix(string(data), "[\n  {") {
		t.Errorf("export is not pretty JSON:\n%.60s", data)
	}

	h.send(key("j"), key("d"), key("y"))
	if len(h.store.Tasks()) != 4 {
		t.Fatal("setup delete failed")
	}

	h.send(key("I"), key("enter"))
	if len(h.store.Tasks()) != 5 {
		t.Errorf("import restored %d tasks, want 5", len(h.store.Tasks()))
	}
	if !strings.HasPrefix(h.model.Status(), "imported 5 tasks") {
		t.Errorf("status = %q", h.model.Status())
	}
}

func TestImportFailureLeavesTasks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte(`{"not": "a list"}`), 0644); err != nil {
		t.Fatal(err)
	}
	h := newHarness(t, path)
	before := h.store.Tasks()

	h.send(key("I"), key("enter"))

	if !strings.HasPrefix(h.model.Status(), "import failed:") {
		t.Errorf("status = %q, want import failed", h.model.Status())
	}
	if len(h.store.Tasks()) != len(before) || len(h.model.Tasks()) != len(before) {
		t.Error("failed import changed the collection")
	}
}

func TestFilter(t *testing.T) {
	h := newHarness(t, "")

	h.send(key("/"), key("bread"), key("enter"))

	filtered := h.model.filteredTasks()
	if len(filtered) != 1 {
		t.Fatalf("filtered %d tasks, want 1", len(filtered))
	}
	if cur, ok := h.model.current(); !ok || cur.Title != "Proof bread dough" {
		t.Errorf("current() = %+v, %v", cur, ok)
	}

	h.send(key("esc"))
	if len(h.model.filteredTasks()) != 5 {
		t.Error("esc should clear the filter")
	}
}

func TestQuit(t *testing.T) {
	h := newHarness(t, "")
	cmd := h.send(key("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}
