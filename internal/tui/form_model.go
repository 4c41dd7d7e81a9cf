package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"taskboard/internal/editor"
	"taskboard/internal/task/domain"
	"taskboard/internal/task/dto"
)

const (
	fieldTitle = iota
	fieldDescription
	fieldStatus
	fieldPriority
	fieldDueDate
	fieldCount
)

// fieldSubtasks is the checklist below the text fields; it has no textinput
// of its own.
const (
	fieldSubtasks = fieldCount
	focusStops    = fieldCount + 1
)

// noEdit means no subtask title is being typed.
const noEdit = -1

var fieldLabels = [fieldCount]string{"Title", "Description", "Status", "Priority", "Due date"}

// Messages the form sends to whoever hosts it
type (
	formSavedMsg  struct{ task *domain.Task }
	formErrorMsg  struct{ err error }
	formClosedMsg struct{}
)

// FormModel edits one task. Existing tasks save themselves as you type.
type FormModel struct {
	form   *editor.Form
	inputs []textinput.Model
	focus  int
	events chan tea.Msg
	done   chan struct{}
	once   *sync.Once

	// checklist cursor, and the subtask being renamed; len(subtasks) while adding
	sub      int
	subEdit  int
	subInput textinput.Model

	message string
	err     string
}

func NewFormModel(saver editor.Saver, task *domain.Task) FormModel {
	events := make(chan tea.Msg, 16)
	send := func(msg tea.Msg) {
		select {
		case events <- msg:
		default:
		}
	}
	form := editor.NewForm(saver, task,
		editor.OnSaved(func(t *domain.Task) { send(formSavedMsg{task: t}) }),
		editor.OnError(func(err error) { send(formErrorMsg{err: err}) }),
	)

	inputs := make([]textinput.Model, fieldCount)
	inputs[fieldTitle] = newInput("Task title (required)", 200)
	inputs[fieldDescription] = newInput("Description", 5000)
	inputs[fieldStatus] = newInput("pending / inprogress / completed", 20)
	inputs[fieldPriority] = newInput("low / medium / high", 10)
	inputs[fieldDueDate] = newInput("YYYY-MM-DD (empty for none)", 30)

	v := form.Values()
	inputs[fieldTitle].SetValue(v.Title)
	inputs[fieldDescription].SetValue(v.Description)
	inputs[fieldStatus].SetValue(v.Status)
	inputs[fieldPriority].SetValue(v.Priority)
	inputs[fieldDueDate].SetValue(v.DueDate)
	inputs[fieldTitle].Focus()

	return FormModel{
		form:     form,
		inputs:   inputs,
		events:   events,
		done:     make(chan struct{}),
		once:     &sync.Once{},
		subEdit:  noEdit,
		subInput: newInput("Subtask title", 200),
	}
}

// Init starts listening for auto-save results.
func (m FormModel) Init() tea.Cmd {
	return m.waitForEvent()
}

// waitForEvent yields the next auto-save result, or nothing once the form
// has closed.
func (m FormModel) waitForEvent() tea.Cmd {
	events, done := m.events, m.done
	return func() tea.Msg {
		select {
		case msg := <-events:
			return msg
		case <-done:
			return nil
		}
	}
}

// close flushes the pending save and releases the event listener. Safe to
// call more than once.
func (m FormModel) close() {
	m.form.Close()
	m.once.Do(func() { close(m.done) })
}

func (m FormModel) Update(msg tea.Msg) (FormModel, tea.Cmd) {
	switch msg := msg.(type) {
	case formSavedMsg:
		m.err = ""
		m.message = "Saved " + time.Now().Format("15:04:05")
		return m, m.waitForEvent()

	case formErrorMsg:
		m.message = ""
		m.err = msg.err.Error()
		return m, m.waitForEvent()

	case tea.KeyMsg:
		if m.focus == fieldSubtasks {
			if next, cmd, handled := m.updateSubtasks(msg); handled {
				return next, cmd
			}
		}
		switch msg.String() {
		case "esc":
			return m, func() tea.Msg {
				m.close()
				return formClosedMsg{}
			}
		case "tab", "down":
			return m.focusField((m.focus + 1) % focusStops), nil
		case "shift+tab", "up":
			return m.focusField((m.focus + focusStops - 1) % focusStops), nil
		case "enter":
			if !m.form.IsNew() {
				return m.focusField((m.focus + 1) % focusStops), nil
			}
			form := m.form
			return m, func() tea.Msg {
				ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
				defer cancel()
				task, err := form.Submit(ctx)
				if err != nil {
					return formErrorMsg{err: err}
				}
				return formSavedMsg{task: task}
			}
		}
	}

	if m.focus == fieldSubtasks {
		if m.subEdit == noEdit {
			return m, nil
		}
		var cmd tea.Cmd
		m.subInput, cmd = m.subInput.Update(msg)
		return m, cmd
	}
	before := m.inputs[m.focus].Value()
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	if after := m.inputs[m.focus].Value(); after != before {
		m.apply(m.focus, after)
	}
	return m, cmd
}

// updateSubtasks handles keys on the checklist. Keys it does not claim fall
// through to the form-wide bindings.
func (m FormModel) updateSubtasks(key tea.KeyMsg) (FormModel, tea.Cmd, bool) {
	subtasks := m.form.Values().Subtasks

	if m.subEdit != noEdit {
		switch key.String() {
		case "esc":
			m.stopEditing()
			return m, nil, true
		case "enter":
			title := strings.TrimSpace(m.subInput.Value())
			idx := m.subEdit
			m.stopEditing()
			if title == "" {
				return m, nil, true
			}
			m.editSubtasks(func(list []dto.SubtaskInput) []dto.SubtaskInput {
				if idx >= len(list) {
					return append(list, dto.SubtaskInput{Title: title, Status: string(domain.SubtaskPending)})
				}
				list[idx].Title = title
				return list
			})
			if idx >= len(subtasks) {
				m.sub = len(subtasks)
			}
			return m, nil, true
		}
		var cmd tea.Cmd
		m.subInput, cmd = m.subInput.Update(key)
		return m, cmd, true
	}

	switch key.String() {
	case "a":
		m.subEdit = len(subtasks)
		m.subInput.SetValue("")
		m.subInput.Focus()
		return m, textinput.Blink, true
	case "e", "enter":
		if m.sub >= len(subtasks) {
			return m, nil, true
		}
		m.subEdit = m.sub
		m.subInput.SetValue(subtasks[m.sub].Title)
		m.subInput.CursorEnd()
		m.subInput.Focus()
		return m, textinput.Blink, true
	case " ", "x":
		idx := m.sub
		m.editSubtasks(func(list []dto.SubtaskInput) []dto.SubtaskInput {
			if idx < len(list) {
				if list[idx].Status == string(domain.SubtaskCompleted) {
					list[idx].Status = string(domain.SubtaskPending)
				} else {
					list[idx].Status = string(domain.SubtaskCompleted)
				}
			}
			return list
		})
		return m, nil, true
	case "d", "delete":
		idx := m.sub
		m.editSubtasks(func(list []dto.SubtaskInput) []dto.SubtaskInput {
			if idx < len(list) {
				list = append(list[:idx], list[idx+1:]...)
			}
			return list
		})
		if m.sub > 0 && m.sub >= len(subtasks)-1 {
			m.sub--
		}
		return m, nil, true
	case "j", "down":
		if m.sub < len(subtasks)-1 {
			m.sub++
			return m, nil, true
		}
	case "k", "up":
		if m.sub > 0 {
			m.sub--
			return m, nil, true
		}
	}
	return m, nil, false
}

func (m *FormModel) stopEditing() {
	m.subEdit = noEdit
	m.subInput.Blur()
	m.subInput.SetValue("")
}

// editSubtasks rewrites the checklist through the form so it is auto-saved
// with the rest of the fields.
func (m FormModel) editSubtasks(change func([]dto.SubtaskInput) []dto.SubtaskInput) {
	m.form.Update(func(v *editor.Values) {
		v.Subtasks = change(v.Subtasks)
	})
}

func (m FormModel) focusField(i int) FormModel {
	if m.focus < fieldCount {
		m.inputs[m.focus].Blur()
	}
	m.focus = i
	if m.focus < fieldCount {
		m.inputs[m.focus].Focus()
	}
	return m
}

// apply copies one field into the form, which schedules the auto-save.
func (m FormModel) apply(field int, value string) {
	m.form.Update(func(v *editor.Values) {
		switch field {
		case fieldTitle:
			v.Title = value
		case fieldDescription:
			v.Description = value
		case fieldStatus:
			v.Status = strings.TrimSpace(value)
		case fieldPriority:
			v.Priority = strings.TrimSpace(value)
		case fieldDueDate:
			v.DueDate = strings.TrimSpace(value)
		}
	})
}

func (m FormModel) View() string {
	var b strings.Builder
	heading := "Edit task"
	if m.form.IsNew() {
		heading = "New task"
	}
	b.WriteString(titleStyle.Render(heading) + "\n\n")
	for i, in := range m.inputs {
		label := fieldLabels[i]
		if i == m.focus {
			label = titleStyle.Render("› " + label)
		} else {
			label = labelStyle.Render("  " + label)
		}
		b.WriteString(label + "\n  " + in.View() + "\n\n")
	}
	b.WriteString(m.renderSubtasks() + "\n")

	switch {
	case m.err != "":
		b.WriteString(errorStyle.Render("✗ "+m.err) + "\n")
	case m.message != "":
		b.WriteString(okStyle.Render("✓ "+m.message) + "\n")
	case m.form.Pending():
		b.WriteString(mutedStyle.Render("saving…") + "\n")
	}
	help := "tab/↑↓ move • esc back"
	if m.form.IsNew() {
		help = "tab/↑↓ move • enter create • esc cancel"
	}
	if m.focus == fieldSubtasks {
		help = "a add • e rename • space toggle • d delete • " + help
	}
	b.WriteString("\n" + helpStyle.Render(help))
	return b.String()
}

func (m FormModel) renderSubtasks() string {
	subtasks := m.form.Values().Subtasks
	focused := m.focus == fieldSubtasks

	var b strings.Builder
	label := labelStyle.Render(fmt.Sprintf("  Subtasks (%d)", len(subtasks)))
	if focused {
		label = titleStyle.Render(fmt.Sprintf("› Subtasks (%d)", len(subtasks)))
	}
	b.WriteString(label + "\n")
	if len(subtasks) == 0 && m.subEdit == noEdit {
		b.WriteString(mutedStyle.Render("  none yet") + "\n")
	}
	for i, s := range subtasks {
		box := "[ ]"
		if s.Status == string(domain.SubtaskCompleted) {
			box = "[x]"
		}
		line := box + " " + s.Title
		if i == m.subEdit {
			line = box + " " + m.subInput.View()
		}
		if focused && i == m.sub {
			b.WriteString(titleStyle.Render("  › ") + line + "\n")
		} else {
			b.WriteString("    " + line + "\n")
		}
	}
	if m.subEdit != noEdit && m.subEdit >= len(subtasks) {
		b.WriteString("  + " + m.subInput.View() + "\n")
	}
	return b.String()
}
