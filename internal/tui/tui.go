package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	authdomain "taskboard/internal/auth/domain"
	"taskboard/internal/editor"
	"taskboard/internal/task/domain"
)

var (
	// ErrCancelled is returned when the user leaves a form without submitting.
	ErrCancelled = errors.New("cancelled")
	// ErrSessionExpired is returned when the server rejects the session while
	// the board is open.
	ErrSessionExpired = errors.New("session expired")
)

// RunBoardTUI starts the interactive task board
func RunBoardTUI(api Backend) error {
	p := tea.NewProgram(NewBoardModel(api), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(BoardModel); ok && m.expired {
		return ErrSessionExpired
	}
	return nil
}

// RunLoginTUI shows the login or signup form and returns the signed-in user.
func RunLoginTUI(auth Authenticator, signup bool) (*authdomain.User, error) {
	p := tea.NewProgram(NewLoginModel(auth, signup))
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	m, ok := final.(LoginModel)
	if !ok || m.cancelled || m.user == nil {
		return nil, ErrCancelled
	}
	return m.user, nil
}

// RunFormTUI opens the task form on its own and returns the last saved copy,
// nil when nothing was saved.
func RunFormTUI(saver editor.Saver, task *domain.Task) (*domain.Task, error) {
	final, err := tea.NewProgram(formHost{form: NewFormModel(saver, task)}, tea.WithAltScreen()).Run()
	if err != nil {
		return nil, err
	}
	if h, ok := final.(formHost); ok {
		return h.saved, nil
	}
	return nil, nil
}

// formHost runs a FormModel as a whole program.
type formHost struct {
	form  FormModel
	saved *domain.Task
}

func (h formHost) Init() tea.Cmd {
	return h.form.Init()
}

func (h formHost) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case formClosedMsg:
		return h, tea.Quit
	case formSavedMsg:
		h.saved = msg.task
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			h.form.close()
			return h, tea.Quit
		}
	}
	var cmd tea.Cmd
	h.form, cmd = h.form.Update(msg)
	return h, cmd
}

func (h formHost) View() string {
	return lipgloss.NewStyle().Padding(1, 2).Render(h.form.View())
}
