package tui

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taskboard/internal/board"
	"taskboard/internal/client"
	"taskboard/internal/editor"
	"taskboard/internal/task/domain"
)

const requestTimeout = 15 * time.Second

// Backend is the part of the API the board needs; *client.Client satisfies it.
type Backend interface {
	board.Mover
	editor.Saver
	ListTasks(ctx context.Context, opts client.ListOptions) ([]*domain.Task, int64, error)
	Search(ctx context.Context, q string) ([]*domain.Task, error)
}

// View represents which screen is showing
type View int

const (
	ViewBoard View = iota
	ViewForm
	ViewChart
	ViewSearch
)

type (
	tasksLoadedMsg struct {
		tasks []*domain.Task
		query string
		err   error
	}
	movedMsg struct {
		task *domain.Task
		err  error
	}
	deletedMsg struct {
		id  string
		err error
	}
)

// BoardModel is the three-column task board.
type BoardModel struct {
	api   Backend
	board *board.Board

	view     View
	column   int
	selected [3]int
	width    int
	height   int

	form   FormModel
	search textinput.Model
	query  string

	loading bool
	status  string
	err     string
	// expired is set when the server rejected the session; the program quits
	// so the caller can send the user back to login.
	expired bool
}

func NewBoardModel(api Backend) BoardModel {
	return BoardModel{
		api:     api,
		board:   board.New(nil),
		search:  newInput("search title, description or subtasks", 100),
		loading: true,
	}
}

func (m BoardModel) Init() tea.Cmd {
	return m.load("")
}

// load fetches every task, or the search results when query is set.
func (m BoardModel) load(query string) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if query != "" {
			tasks, err := api.Search(ctx, query)
			return tasksLoadedMsg{tasks: tasks, query: query, err: err}
		}
		tasks, _, err := api.ListTasks(ctx, client.ListOptions{Limit: 500})
		return tasksLoadedMsg{tasks: tasks, err: err}
	}
}

func (m BoardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tasksLoadedMsg:
		m.loading = false
		if expired(msg.err) {
			return m.logout()
		}
		if msg.err != nil {
			m.err = msg.err.Error()
			return m, nil
		}
		m.err = ""
		m.query = msg.query
		m.board.Reset(msg.tasks)
		m.clampSelection()
		return m, nil

	case movedMsg:
		// Commit has already rolled the card back or stored the server copy
		if expired(msg.err) {
			return m.logout()
		}
		if msg.err != nil {
			m.err = "move failed: " + msg.err.Error()
			m.clampSelection()
			return m, nil
		}
		m.status = fmt.Sprintf("Moved %q to %s", msg.task.Title, msg.task.Status.Label())
		return m, nil

	case deletedMsg:
		if expired(msg.err) {
			return m.logout()
		}
		if msg.err != nil {
			m.err = "delete failed: " + msg.err.Error()
			return m, nil
		}
		m.board.Remove(msg.id)
		m.status = "Task deleted"
		m.clampSelection()
		return m, nil

	case formSavedMsg:
		m.board.Upsert(msg.task)
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd

	case formErrorMsg:
		if expired(msg.err) {
			return m.logout()
		}
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd

	case formClosedMsg:
		m.view = ViewBoard
		m.clampSelection()
		return m, nil
	}

	switch m.view {
	case ViewForm:
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "ctrl+c" {
			m.form.close()
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd
	case ViewSearch:
		return m.updateSearch(msg)
	case ViewChart:
		if key, ok := msg.(tea.KeyMsg); ok {
			switch key.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "c", "esc":
				m.view = ViewBoard
			}
		}
		return m, nil
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	m.status = ""
	switch key.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "left", "h":
		if m.column > 0 {
			m.column--
		}
	case "right", "l":
		if m.column < len(domain.Statuses)-1 {
			m.column++
		}
	case "up", "k":
		if m.selected[m.column] > 0 {
			m.selected[m.column]--
		}
	case "down", "j":
		if m.selected[m.column] < len(m.board.Column(domain.Statuses[m.column]))-1 {
			m.selected[m.column]++
		}
	case "H", "<":
		return m.moveCard(-1)
	case "L", ">":
		return m.moveCard(1)
	case "e", "enter":
		task := m.current()
		if task == nil {
			return m, nil
		}
		m.form = NewFormModel(m.api, task)
		m.view = ViewForm
		return m, m.form.Init()
	case "n":
		m.form = NewFormModel(m.api, nil)
		m.view = ViewForm
		return m, m.form.Init()
	case "d":
		task := m.current()
		if task == nil {
			return m, nil
		}
		api, id := m.api, task.ID
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			return deletedMsg{id: id, err: api.DeleteTask(ctx, id)}
		}
	case "c":
		m.view = ViewChart
	case "/":
		m.view = ViewSearch
		m.search.SetValue(m.query)
		m.search.Focus()
		return m, textinput.Blink
	case "r":
		m.loading = true
		return m, m.load(m.query)
	case "esc":
		if m.query != "" {
			m.loading = true
			return m, m.load("")
		}
	}
	return m, nil
}

func expired(err error) bool {
	return client.IsStatus(err, http.StatusUnauthorized)
}

// logout ends the program on the first rejected request. The client has
// already cleared the stored session.
func (m BoardModel) logout() (tea.Model, tea.Cmd) {
	if m.view == ViewForm {
		m.form.close()
	}
	m.expired = true
	m.view = ViewBoard
	return m, tea.Quit
}

func (m BoardModel) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			m.view = ViewBoard
			m.search.Blur()
			return m, nil
		case "enter":
			m.view = ViewBoard
			m.search.Blur()
			m.loading = true
			return m, m.load(strings.TrimSpace(m.search.Value()))
		}
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

// moveCard is the keyboard drag: the card moves now and the request follows.
func (m BoardModel) moveCard(delta int) (tea.Model, tea.Cmd) {
	task := m.current()
	target := m.column + delta
	if task == nil || target < 0 || target >= len(domain.Statuses) {
		return m, nil
	}
	to := domain.Statuses[target]
	move, err := m.board.Apply(task.ID, to)
	if err != nil || move == nil {
		return m, nil
	}
	m.column = target
	m.selected[target] = 0
	m.clampSelection()

	api, b := m.api, m.board
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		saved, err := b.Commit(ctx, api, move)
		return movedMsg{task: saved, err: err}
	}
}

func (m BoardModel) current() *domain.Task {
	col := m.board.Column(domain.Statuses[m.column])
	i := m.selected[m.column]
	if i < 0 || i >= len(col) {
		return nil
	}
	return col[i]
}

func (m *BoardModel) clampSelection() {
	for i, s := range domain.Statuses {
		n := len(m.board.Column(s))
		if m.selected[i] >= n {
			m.selected[i] = n - 1
		}
		if m.selected[i] < 0 {
			m.selected[i] = 0
		}
	}
}

func (m BoardModel) View() string {
	switch m.view {
	case ViewForm:
		return lipgloss.NewStyle().Padding(1, 2).Render(m.form.View())
	case ViewChart:
		chart := RenderChart(m.board.Counts(), m.width)
		return lipgloss.NewStyle().Padding(1, 2).Render(chart + "\n\n" + helpStyle.Render("c/esc back • q quit"))
	}

	var b strings.Builder
	header := "Taskboard"
	if m.query != "" {
		header += mutedStyle.Render(fmt.Sprintf("  results for %q (esc to clear)", m.query))
	}
	b.WriteString(titleStyle.Render(header) + "\n\n")

	if m.loading {
		b.WriteString(mutedStyle.Render("Loading tasks…") + "\n")
	} else {
		b.WriteString(m.renderColumns() + "\n")
	}

	if m.view == ViewSearch {
		b.WriteString("\n" + labelStyle.Render("Search: ") + m.search.View() + "\n")
	}
	switch {
	case m.err != "":
		b.WriteString("\n" + errorStyle.Render("✗ "+m.err) + "\n")
	case m.status != "":
		b.WriteString("\n" + okStyle.Render("✓ "+m.status) + "\n")
	}
	b.WriteString("\n" + helpStyle.Render("h/l column • j/k card • H/L move • e edit • n new • d delete • c chart • / search • r refresh • q quit"))
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (m BoardModel) renderColumns() string {
	width := 30
	if m.width > 0 {
		width = max(24, (m.width-12)/len(domain.Statuses))
	}
	cols := make([]string, 0, len(domain.Statuses))
	for i, s := range domain.Statuses {
		tasks := m.board.Column(s)
		border := lipgloss.Color(ColorBorder)
		if i == m.column {
			border = lipgloss.Color(ColorBorderFocused)
		}

		var body strings.Builder
		head := lipgloss.NewStyle().Bold(true).Foreground(statusColor(s)).
			Render(fmt.Sprintf("%s (%d)", s.Label(), len(tasks)))
		body.WriteString(head + "\n")
		if len(tasks) == 0 {
			body.WriteString(mutedStyle.Render("no tasks"))
		}
		for j, t := range tasks {
			body.WriteString("\n" + renderCard(t, width-4, i == m.column && j == m.selected[i]))
		}

		cols = append(cols, lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Width(width).
			Padding(0, 1).
			Render(body.String()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func renderCard(t *domain.Task, width int, selected bool) string {
	title := t.Title
	if len([]rune(title)) > width {
		title = string([]rune(title)[:max(1, width-1)]) + "…"
	}
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText))
	if selected {
		style = style.Bold(true).Foreground(lipgloss.Color(ColorAccentBright))
		title = "› " + title
	}

	meta := lipgloss.NewStyle().Foreground(priorityColor(t.Priority)).Render(string(t.Priority))
	if t.DueDate != nil {
		meta += mutedStyle.Render(" • due " + t.DueDate.Format("Jan 2"))
	}
	if n := len(t.Subtasks); n > 0 {
		done := 0
		for _, s := range t.Subtasks {
			if s.Status == domain.SubtaskCompleted {
				done++
			}
		}
		meta += mutedStyle.Render(fmt.Sprintf(" • %d/%d", done, n))
	}
	return style.Render(title) + "\n  " + meta
}
