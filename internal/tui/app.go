package tui

import (
	"fmt"
	"os"
	"strings"
	"time"

	bar "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pdxmph/parastrom/internal/logging"
	"github.com/pdxmph/parastrom/internal/progress"
	"github.com/pdxmph/parastrom/internal/task"
	"github.com/pdxmph/parastrom/internal/taskstore"
)

// Model represents the main application state
type Model struct {
	store  *taskstore.Store
	poller *progress.Poller
	logger *logging.Logger
	clock  func() time.Time

	interval   time.Duration
	exportPath string

	tasks    []task.Task
	updates  map[string]progress.Update
	selected int
	width    int
	height   int
	status   string
	statusOK bool

	filterMode bool
	filter     textinput.Model

	// New task form
	formMode     bool
	formField    int
	formInputs   []textinput.Model
	formPriority task.Priority
	formUnit     task.Unit

	// Delete confirmation mode
	deleteConfirmMode bool
	deleteTaskID      string

	// Export/import path prompt
	pathMode   bool
	pathAction pathAction
	pathInput  textinput.Model

	bar bar.Model
}

type pathAction int

const (
	actionExport pathAction = iota
	actionImport
)

// Form field indices
const (
	FormFieldTitle = iota
	FormFieldCategory
	FormFieldPriority
	FormFieldDuration
	FormFieldUnit
	FormFieldNotes
	FormFieldCount // Total number of fields
)

// Styles
var (
	selectedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("62")).
			Foreground(lipgloss.Color("230"))

	expiredStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Strikethrough(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	statusErrStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	statusOKStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("37"))

	borderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240"))
)

// priorityColors maps priorities to the dot shown before each task
var priorityColors = map[task.Priority]lipgloss.Color{
	task.PriorityLow:    lipgloss.Color("42"),
	task.PriorityMedium: lipgloss.Color("220"),
	task.PriorityHigh:   lipgloss.Color("196"),
}

// Options configures a Model
type Options struct {
	Logger       *logging.Logger
	Clock        func() time.Time
	TickInterval time.Duration
	ExportPath   string
}

type tickMsg time.Time

// New creates a new application model over a loaded store
func New(store *taskstore.Store, poller *progress.Poller, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = logging.NopLogger()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = progress.DefaultInterval
	}
	if opts.ExportPath == "" {
		opts.ExportPath = taskstore.DefaultExportFile
	}

	ti := textinput.New()
	ti.Placeholder = "Filter tasks..."
	ti.Width = 30
	ti.CharLimit = 50
	ti.Prompt = "> "
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("230"))
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))

	pi := textinput.New()
	pi.Width = 40
	pi.CharLimit = 255
	pi.Prompt = "> "

	formInputs := make([]textinput.Model, FormFieldCount)
	for i := range formInputs {
		formInputs[i] = textinput.New()
		formInputs[i].Width = 40
		formInputs[i].CharLimit = 200

		switch i {
		case FormFieldTitle:
			formInputs[i].Placeholder = "Title"
		case FormFieldCategory:
			formInputs[i].Placeholder = "Category"
		case FormFieldDuration:
			formInputs[i].Placeholder = "1"
			formInputs[i].CharLimit = 12
		case FormFieldNotes:
			formInputs[i].Placeholder = "Notes"
		}
	}

	m := Model{
		store:        store,
		poller:       poller,
		logger:       opts.Logger,
		clock:        opts.Clock,
		interval:     opts.TickInterval,
		exportPath:   opts.ExportPath,
		tasks:        store.Tasks(),
		updates:      make(map[string]progress.Update),
		filter:       ti,
		pathInput:    pi,
		formInputs:   formInputs,
		formPriority: task.PriorityLow,
		formUnit:     task.UnitMinutes,
		bar:          bar.New(bar.WithDefaultGradient(), bar.WithoutPercentage(), bar.WithWidth(20)),
	}
	m.refresh(m.clock())
	return m
}

// Init starts the progress ticker
func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// refresh re-registers the visible collection with the poller and
// recomputes every task once.
func (m *Model) refresh(now time.Time) {
	m.poller.Sync(m.tasks)
	updates := make(map[string]progress.Update, len(m.tasks))
	for _, u := range m.poller.Tick(now) {
		updates[u.ID] = u
		if u.Result.JustCompleted {
			m.setStatus(fmt.Sprintf("Task fertig: %s", u.Title), true)
		}
	}
	m.updates = updates
}

// reload pulls the collection back from the store after a mutation
func (m *Model) reload() {
	m.tasks = m.store.Tasks()
	m.selected = m.ensureValidSelection()
	m.refresh(m.clock())
}

func (m *Model) setStatus(msg string, ok bool) {
	m.status = msg
	m.statusOK = ok
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.width > 0 {
			listWidth := m.width / 2
			m.filter.Width = listWidth - 4
			m.bar.Width = max(10, listWidth-38)
		}
		return m, nil

	case tickMsg:
		m.refresh(m.clock())
		return m, m.tick()

	case tea.KeyMsg:
		// Delete confirmation mode handling
		if m.deleteConfirmMode {
			switch msg.String() {
			case "y", "Y":
				if _, err := m.store.Delete(m.deleteTaskID); err != nil {
					m.setStatus(fmt.Sprintf("delete failed: %v", err), false)
				} else {
					m.poller.Untrack(m.deleteTaskID)
					m.setStatus("task deleted", true)
					m.reload()
				}
			}
			// Any other key cancels
			m.deleteConfirmMode = false
			m.deleteTaskID = ""
			return m, nil
		}

		if m.formMode {
			return m.updateForm(msg)
		}

		if m.pathMode {
			switch msg.String() {
			case "esc":
				m.pathMode = false
				m.pathInput.Blur()
				return m, nil
			case "enter":
				path := strings.TrimSpace(m.pathInput.Value())
				m.pathMode = false
				m.pathInput.Blur()
				if path == "" {
					return m, nil
				}
				if m.pathAction == actionExport {
					m.exportTo(path)
				} else {
					m.importFrom(path)
				}
				return m, nil
			}

			var cmd tea.Cmd
			m.pathInput, cmd = m.pathInput.Update(msg)
			return m, cmd
		}

		// Filter mode handling
		if m.filterMode {
			switch msg.String() {
			case "esc":
				m.filterMode = false
				m.filter.Reset()
				m.selected = m.ensureValidSelection()
				return m, nil
			case "enter":
				m.filterMode = false
				m.selected = m.ensureValidSelection()
				return m, nil
			case "up":
				if m.selected > 0 {
					m.selected--
				}
				return m, nil
			case "down":
				if m.selected < len(m.filteredTasks())-1 {
					m.selected++
				}
				return m, nil
			}

			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			m.selected = m.ensureValidSelection()
			return m, cmd
		}

		// Normal mode handling
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "j", "down":
			if m.selected < len(m.filteredTasks())-1 {
				m.selected++
			}

		case "k", "up":
			if m.selected > 0 {
				m.selected--
			}

		case "/":
			m.filterMode = true
			m.filter.Reset()
			m.filter.Focus()
			return m, textinput.Blink

		case "esc":
			if m.filter.Value() != "" {
				m.filter.Reset()
				m.selected = m.ensureValidSelection()
			}
			m.status = ""
			return m, nil

		case "n", "+":
			m.openForm()
			return m, textinput.Blink

		case " ", "x", "enter":
			if t, ok := m.current(); ok {
				if _, err := m.store.Toggle(t.ID); err != nil {
					m.setStatus(fmt.Sprintf("toggle failed: %v", err), false)
				} else {
					m.reload()
				}
			}

		case "d":
			if t, ok := m.current(); ok {
				m.deleteConfirmMode = true
				m.deleteTaskID = t.ID
			}
			return m, nil

		case "E":
			m.openPath(actionExport, m.exportPath)
			return m, textinput.Blink

		case "I":
			m.openPath(actionImport, m.exportPath)
			return m, textinput.Blink
		}
	}

	return m, nil
}

func (m *Model) openPath(action pathAction, initial string) {
	m.pathMode = true
	m.pathAction = action
	m.pathInput.SetValue(initial)
	m.pathInput.CursorEnd()
	m.pathInput.Focus()
}

func (m *Model) exportTo(path string) {
	data, err := m.store.Export(taskstore.FormatFromPath(path))
	if err == nil {
		err = os.WriteFile(path, data, 0644)
	}
	if err != nil {
		m.setStatus(fmt.Sprintf("export failed: %v", err), false)
		return
	}
	m.setStatus(fmt.Sprintf("exported %d tasks to %s", len(m.tasks), path), true)
}

func (m *Model) importFrom(path string) {
	data, err := os.ReadFile(path)
	if err == nil {
		err = m.store.Import(data, taskstore.FormatFromPath(path))
	}
	if err != nil {
		m.logger.Warn("import failed", "path", path, "error", err.Error())
		m.setStatus(fmt.Sprintf("import failed: %v", err), false)
		return
	}
	m.reload()
	m.setStatus(fmt.Sprintf("imported %d tasks from %s", len(m.tasks), path), true)
}

// current returns the selected task in the filtered view
func (m Model) current() (task.Task, bool) {
	tasks := m.filteredTasks()
	if len(tasks) == 0 || m.selected >= len(tasks) {
		return task.Task{}, false
	}
	return tasks[m.selected], true
}

// filteredTasks returns tasks matching the current filter
func (m Model) filteredTasks() []task.Task {
	if m.filter.Value() == "" {
		return m.tasks
	}

	filter := strings.ToLower(m.filter.Value())
	var filtered []task.Task
	for _, t := range m.tasks {
		if strings.Contains(strings.ToLower(t.Title), filter) ||
			strings.Contains(strings.ToLower(t.Category), filter) ||
			strings.Contains(strings.ToLower(t.Notes), filter) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// ensureValidSelection ensures the current selection is within bounds
func (m Model) ensureValidSelection() int {
	tasks := m.filteredTasks()
	if len(tasks) == 0 {
		return 0
	}
	if m.selected >= len(tasks) {
		return len(tasks) - 1
	}
	if m.selected < 0 {
		return 0
	}
	return m.selected
}

// Tasks returns the collection as currently displayed
func (m Model) Tasks() []task.Task {
	return m.tasks
}

// Status returns the status line text
func (m Model) Status() string {
	return m.status
}
