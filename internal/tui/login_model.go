package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	authdomain "taskboard/internal/auth/domain"
)

// Authenticator signs a user in; *client.Client satisfies it.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*authdomain.User, error)
	Signup(ctx context.Context, name, email, password string) (*authdomain.User, error)
}

type authResultMsg struct {
	user *authdomain.User
	err  error
}

// LoginModel is the login form, or the signup form when signup is set.
type LoginModel struct {
	auth   Authenticator
	signup bool
	inputs []textinput.Model
	focus  int

	submitting bool
	user       *authdomain.User
	err        string
	cancelled  bool
}

func NewLoginModel(auth Authenticator, signup bool) LoginModel {
	var inputs []textinput.Model
	if signup {
		inputs = append(inputs, newInput("Your name", 100))
	}
	email := newInput("you@example.com", 200)
	password := newInput("Password (6+ characters)", 200)
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	inputs = append(inputs, email, password)
	inputs[0].Focus()
	return LoginModel{auth: auth, signup: signup, inputs: inputs}
}

func (m LoginModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case authResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.err = msg.err.Error()
			return m, nil
		}
		m.user = msg.user
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit
		case "tab", "down":
			return m.focusField((m.focus + 1) % len(m.inputs)), nil
		case "shift+tab", "up":
			return m.focusField((m.focus + len(m.inputs) - 1) % len(m.inputs)), nil
		case "enter":
			if m.focus < len(m.inputs)-1 {
				return m.focusField(m.focus + 1), nil
			}
			if m.submitting {
				return m, nil
			}
			if err := m.check(); err != "" {
				m.err = err
				return m, nil
			}
			m.submitting = true
			m.err = ""
			return m, m.submit()
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m LoginModel) focusField(i int) LoginModel {
	m.inputs[m.focus].Blur()
	m.focus = i
	m.inputs[m.focus].Focus()
	return m
}

func (m LoginModel) values() (name, email, password string) {
	offset := 0
	if m.signup {
		name = strings.TrimSpace(m.inputs[0].Value())
		offset = 1
	}
	return name, strings.TrimSpace(m.inputs[offset].Value()), m.inputs[offset+1].Value()
}

func (m LoginModel) check() string {
	name, email, password := m.values()
	switch {
	case m.signup && name == "":
		return "name is required"
	case !strings.Contains(email, "@"):
		return "enter a valid email address"
	case m.signup && len(password) < 6:
		return "password must be at least 6 characters"
	case password == "":
		return "password is required"
	}
	return ""
}

func (m LoginModel) submit() tea.Cmd {
	auth, signup := m.auth, m.signup
	name, email, password := m.values()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		var (
			user *authdomain.User
			err  error
		)
		if signup {
			user, err = auth.Signup(ctx, name, email, password)
		} else {
			user, err = auth.Login(ctx, email, password)
		}
		return authResultMsg{user: user, err: err}
	}
}

func (m LoginModel) View() string {
	labels := []string{"Email", "Password"}
	heading := "Log in"
	if m.signup {
		labels = append([]string{"Name"}, labels...)
		heading = "Create an account"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(heading) + "\n\n")
	for i, in := range m.inputs {
		b.WriteString(labelStyle.Render(labels[i]) + "\n" + in.View() + "\n\n")
	}
	if m.submitting {
		b.WriteString(mutedStyle.Render("Signing in…") + "\n")
	}
	if m.err != "" {
		b.WriteString(errorStyle.Render("✗ "+m.err) + "\n")
	}
	b.WriteString("\n" + helpStyle.Render("tab move • enter submit • esc cancel"))
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}
