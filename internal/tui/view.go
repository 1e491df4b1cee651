package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/pdxmph/parastrom/internal/progress"
	"github.com/pdxmph/parastrom/internal/task"
)

// View renders the UI
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.formMode {
		return m.renderForm()
	}
	if m.deleteConfirmMode {
		return m.renderDeleteConfirmation()
	}
	if m.pathMode {
		return m.renderPathPrompt()
	}

	listWidth := m.width / 2
	detailWidth := m.width - listWidth - 4
	paneHeight := m.height - 5

	content := lipgloss.JoinHorizontal(
		lipgloss.Top,
		borderStyle.Width(listWidth).Height(paneHeight).Render(m.renderList(listWidth, paneHeight)),
		borderStyle.Width(detailWidth).Height(paneHeight).Render(m.renderDetail(detailWidth)),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		content,
		m.renderStatus(),
		m.renderHelp(),
	)
}

// renderHeader shows the app name and the active/done counter
func (m Model) renderHeader() string {
	active, done := 0, 0
	for _, t := range m.tasks {
		if t.Done {
			done++
		} else {
			active++
		}
	}

	left := titleStyle.Render("Paraström")
	right := labelStyle.Render(fmt.Sprintf("%d active | %d done", active, done))
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return " " + left + strings.Repeat(" ", gap) + right
}

// renderList renders the task list with one progress bar per task
func (m Model) renderList(width, height int) string {
	var lines []string

	if m.filterMode {
		lines = append(lines, m.filter.View(), "")
		height -= 2
	}

	tasks := m.filteredTasks()

	visibleHeight := height - 2
	startIdx := 0
	if m.selected >= visibleHeight {
		startIdx = m.selected - visibleHeight + 1
	}

	header := fmt.Sprintf("Tasks (%d)", len(tasks))
	if m.filter.Value() != "" && !m.filterMode {
		header += " [" + m.filter.Value() + "]"
	}
	lines = append(lines, header)
	lines = append(lines, strings.Repeat("─", max(0, width-2)))

	if len(tasks) == 0 {
		lines = append(lines, labelStyle.Render("No tasks. Press n to add one."))
	}

	for i := startIdx; i < len(tasks) && i < startIdx+visibleHeight; i++ {
		lines = append(lines, m.renderRow(tasks[i], i == m.selected))
	}

	return strings.Join(lines, "\n")
}

func (m Model) renderRow(t task.Task, selected bool) string {
	u := m.updates[t.ID]

	dot := lipgloss.NewStyle().Foreground(priorityColors[t.Priority]).Render("●")
	title := fmt.Sprintf("%-24s", truncate(t.Title, 24))
	pct := fmt.Sprintf("%3.0f%%", u.Result.Fraction*100)

	switch {
	case u.Err != nil:
		pct = expiredStyle.Render("  ?%")
	case u.State == progress.StateDone:
		title = doneStyle.Render(title)
	case u.State == progress.StateExpired:
		pct = expiredStyle.Render(pct)
	}

	line := fmt.Sprintf("%s %s %s %s", dot, title, m.bar.ViewAs(u.Result.Fraction), pct)
	if selected {
		return selectedStyle.Render("▸") + " " + line
	}
	return "  " + line
}

// renderDetail renders the selected task
func (m Model) renderDetail(width int) string {
	t, ok := m.current()
	if !ok {
		return "No task selected"
	}
	u := m.updates[t.ID]

	var lines []string
	lines = append(lines, t.Title)
	lines = append(lines, strings.Repeat("─", max(0, width-2)))
	lines = append(lines, "")

	if t.Category != "" {
		lines = append(lines, fmt.Sprintf("Category: %s", t.Category))
	}
	lines = append(lines, fmt.Sprintf("Priority: %s", t.Priority))
	lines = append(lines, fmt.Sprintf("State:    %s", u.State))
	lines = append(lines, fmt.Sprintf("Duration: %s", t.Duration()))

	if start, err := t.Start(); err == nil {
		deadline := start.Add(t.Duration())
		lines = append(lines, fmt.Sprintf("Started:  %s", start.Format("2006-01-02 15:04:05")))
		lines = append(lines, fmt.Sprintf("Due:      %s", deadline.Format("2006-01-02 15:04:05")))
		if !t.Done {
			if left := deadline.Sub(m.clock()); left > 0 {
				lines = append(lines, fmt.Sprintf("Left:     %s", left.Round(time.Second)))
			} else {
				lines = append(lines, expiredStyle.Render(fmt.Sprintf("Overdue:  %s", (-left).Round(time.Second))))
			}
		}
	} else {
		lines = append(lines, expiredStyle.Render(fmt.Sprintf("Start:    unreadable (%s)", t.StartTime)))
	}

	lines = append(lines, "")
	if t.Notes != "" {
		lines = append(lines, "Notes:")
		lines = append(lines, wrapText(t.Notes, width-4)...)
		lines = append(lines, "")
	}
	lines = append(lines, labelStyle.Render("id "+t.ID))

	return strings.Join(lines, "\n")
}

func (m Model) renderStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusOK {
		return " " + statusOKStyle.Render(m.status)
	}
	return " " + statusErrStyle.Render(m.status)
}

// renderHelp renders the help line
func (m Model) renderHelp() string {
	if m.filterMode {
		return " Type to filter • ↑/↓: navigate • Enter: confirm • Esc: cancel"
	}

	help := " j/k: navigate • n: new • space: done/undo • d: delete • /: filter • E: export • I: import"
	if m.filter.Value() != "" {
		help += " • Esc: clear filter"
	}
	help += " • q: quit"
	return help
}

// overlay centers a bordered box on the screen
func (m Model) overlay(content string, width int) string {
	box := borderStyle.
		Padding(1).
		Width(width).
		Background(lipgloss.Color("235")).
		Render(content)

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(box)
}

// renderForm renders the new task overlay
func (m Model) renderForm() string {
	var lines []string
	lines = append(lines, "New Task")
	lines = append(lines, strings.Repeat("─", 40))
	lines = append(lines, "")

	fieldLabels := []string{
		"Title:     ",
		"Category:  ",
		"Priority:  ",
		"Duration:  ",
		"Unit:      ",
		"Notes:     ",
	}

	for i, label := range fieldLabels {
		var fieldView string

		switch {
		case isChoiceField(i):
			value := string(m.formPriority)
			if i == FormFieldUnit {
				value = string(m.formUnit)
			}
			if i == m.formField {
				fieldView = label + selectedStyle.Render(fmt.Sprintf("< %s >", value))
			} else {
				fieldView = label + fmt.Sprintf("  %s  ", value)
			}
		case i == m.formField:
			fieldView = label + m.formInputs[i].View()
		default:
			value := m.formInputs[i].Value()
			if value == "" {
				value = labelStyle.Render(m.formInputs[i].Placeholder)
			}
			fieldView = label + value
		}

		lines = append(lines, fieldView)
	}

	lines = append(lines, "")
	if m.status != "" && !m.statusOK {
		lines = append(lines, statusErrStyle.Render(m.status), "")
	}
	lines = append(lines, "Tab/↓: next • Shift+Tab/↑: prev • ←/→: change • Ctrl+S: save • Esc: cancel")

	return m.overlay(strings.Join(lines, "\n"), 60)
}

// renderDeleteConfirmation renders the delete prompt
func (m Model) renderDeleteConfirmation() string {
	var title string
	for _, t := range m.tasks {
		if t.ID == m.deleteTaskID {
			title = t.Title
			break
		}
	}

	width := 60
	height := 7

	prompt := fmt.Sprintf("Delete task '%s'? (y/n)", title)

	content := lipgloss.NewStyle().
		Width(width-4).
		Height(height-4).
		Align(lipgloss.Center, lipgloss.Center).
		Render(prompt)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Width(width).
		Height(height).
		Render(content)

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(box)
}

// renderPathPrompt renders the export/import file prompt
func (m Model) renderPathPrompt() string {
	heading := "Export tasks to:"
	if m.pathAction == actionImport {
		heading = "Import tasks from (replaces all tasks):"
	}

	lines := []string{
		heading,
		"",
		m.pathInput.View(),
		"",
		labelStyle.Render(".yaml/.yml files use YAML, anything else JSON"),
		"Enter: confirm • Esc: cancel",
	}
	return m.overlay(strings.Join(lines, "\n"), 60)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// wrapText wraps text to fit within the specified width
func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}

	var lines []string
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{}
	}

	currentLine := words[0]
	for _, word := range words[1:] {
		if len(currentLine)+1+len(word) <= width {
			currentLine += " " + word
		} else {
			lines = append(lines, currentLine)
			currentLine = word
		}
	}
	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	return lines
}
