package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pdxmph/parastrom/internal/task"
)

// openForm resets the new task form to its defaults
func (m *Model) openForm() {
	m.formMode = true
	m.formField = FormFieldTitle
	m.status = ""
	m.formPriority = task.PriorityLow
	m.formUnit = task.UnitMinutes
	for i := range m.formInputs {
		m.formInputs[i].Reset()
		m.formInputs[i].Blur()
	}
	m.formInputs[FormFieldDuration].SetValue("1")
	m.formInputs[FormFieldTitle].Focus()
}

func (m *Model) closeForm() {
	m.formMode = false
	m.formField = FormFieldTitle
	for i := range m.formInputs {
		m.formInputs[i].Blur()
	}
}

// isChoiceField reports fields cycled with enter/left/right instead of typed
func isChoiceField(field int) bool {
	return field == FormFieldPriority || field == FormFieldUnit
}

func (m *Model) focusField(field int) {
	if !isChoiceField(m.formField) {
		m.formInputs[m.formField].Blur()
	}
	m.formField = field
	if !isChoiceField(field) {
		m.formInputs[field].Focus()
	}
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeForm()
		return m, nil

	case "ctrl+s":
		m.submitForm()
		return m, nil

	case "enter":
		switch {
		case m.formField == FormFieldPriority:
			m.formPriority = m.formPriority.Next()
			return m, nil
		case m.formField == FormFieldUnit:
			m.formUnit = m.formUnit.Next()
			return m, nil
		case m.formField == FormFieldCount-1:
			m.submitForm()
			return m, nil
		}
		m.focusField(m.formField + 1)
		return m, textinput.Blink

	case "tab", "down":
		if m.formField < FormFieldCount-1 {
			m.focusField(m.formField + 1)
		}
		return m, textinput.Blink

	case "shift+tab", "up":
		if m.formField > 0 {
			m.focusField(m.formField - 1)
		}
		return m, textinput.Blink

	case "left", "right":
		if isChoiceField(m.formField) {
			step := 1
			if msg.String() == "left" {
				step = 2
			}
			for i := 0; i < step; i++ {
				if m.formField == FormFieldPriority {
					m.formPriority = m.formPriority.Next()
				} else {
					m.formUnit = m.formUnit.Next()
				}
			}
			return m, nil
		}
	}

	if isChoiceField(m.formField) {
		return m, nil
	}

	var cmd tea.Cmd
	m.formInputs[m.formField], cmd = m.formInputs[m.formField].Update(msg)
	return m, cmd
}

// formDuration combines the amount field with the selected unit. An amount
// that is not a plain number is read as a duration string on its own.
func (m Model) formDuration() (time.Duration, error) {
	amount := strings.TrimSpace(m.formInputs[FormFieldDuration].Value())
	if amount == "" {
		amount = "1"
	}
	if strings.Trim(amount, "0123456789") == "" {
		amount += " " + string(m.formUnit)
	}
	return task.ParseDuration(amount)
}

// submitForm validates the form and creates the task. On a validation
// error the form stays open with the message in the status line.
func (m *Model) submitForm() {
	duration, err := m.formDuration()
	if err != nil {
		m.setStatus(err.Error(), false)
		return
	}

	draft := task.New(
		strings.TrimSpace(m.formInputs[FormFieldTitle].Value()),
		strings.TrimSpace(m.formInputs[FormFieldCategory].Value()),
		m.formPriority,
		duration,
		strings.TrimSpace(m.formInputs[FormFieldNotes].Value()),
		m.clock(),
	)

	created, err := m.store.Create(draft)
	if err != nil {
		m.setStatus(err.Error(), false)
		return
	}

	m.closeForm()
	m.reload()
	m.selected = len(m.filteredTasks()) - 1
	m.selected = m.ensureValidSelection()
	m.setStatus(fmt.Sprintf("added %q", created.Title), true)
}
