package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"taskboard/internal/task/domain"
	"taskboard/internal/task/dto"
)

// send feeds one key to the form without running the command it returns.
func send(m FormModel, k tea.KeyMsg) FormModel {
	m, _ = m.Update(k)
	return m
}

func typeText(m FormModel, s string) FormModel {
	for _, r := range s {
		m = send(m, key(string(r)))
	}
	return m
}

func toSubtasks(m FormModel) FormModel {
	for m.focus != fieldSubtasks {
		m = send(m, tea.KeyMsg{Type: tea.KeyTab})
	}
	return m
}

// closeForm presses esc and runs the close command, which flushes the save.
func closeForm(t *testing.T, m FormModel) {
	t.Helper()
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("esc should return a close command")
	}
	if _, ok := cmd().(formClosedMsg); !ok {
		t.Fatal("close command did not report formClosedMsg")
	}
}

func TestFormModelEditsSubtasks(t *testing.T) {
	api := &fakeBackend{}
	task := &domain.Task{
		ID: "t1", Title: "release", Status: domain.TaskStatusPending, Priority: domain.PriorityHigh,
		Subtasks: []domain.Subtask{
			{ID: "s1", Title: "draft", Status: domain.SubtaskPending},
			{ID: "s2", Title: "obsolete", Status: domain.SubtaskPending},
		},
	}
	m := toSubtasks(NewFormModel(api, task))

	// toggle and rename the first one
	m = send(m, key("x"))
	m = send(m, key("e"))
	for range "draft" {
		m = send(m, tea.KeyMsg{Type: tea.KeyBackspace})
	}
	m = typeText(m, "final")
	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})

	// delete the second
	m = send(m, key("j"))
	m = send(m, key("d"))

	// add a new one
	m = send(m, key("a"))
	m = typeText(m, "review")
	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})

	closeForm(t, m)

	api.mu.Lock()
	defer api.mu.Unlock()
	if len(api.replaced) == 0 {
		t.Fatal("subtask edits were not saved")
	}
	got := api.replaced[len(api.replaced)-1].Subtasks
	want := []dto.SubtaskInput{
		{ID: "s1", Title: "final", Status: "completed"},
		{Title: "review", Status: "pending"},
	}
	if len(got) != len(want) {
		t.Fatalf("saved subtasks = %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("subtask %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestFormModelSubtaskEditCancel(t *testing.T) {
	api := &fakeBackend{}
	task := &domain.Task{ID: "t1", Title: "x", Status: domain.TaskStatusPending, Priority: domain.PriorityLow}
	m := toSubtasks(NewFormModel(api, task))

	m = send(m, key("a"))
	m = typeText(m, "never mind")
	m = send(m, tea.KeyMsg{Type: tea.KeyEscape})
	if m.subEdit != noEdit {
		t.Fatal("esc should leave the subtask input")
	}
	if n := len(m.form.Values().Subtasks); n != 0 {
		t.Errorf("cancelled subtask was kept, %d subtasks", n)
	}
	if m.focus != fieldSubtasks {
		t.Error("esc while typing must not close the form")
	}
}

func TestFormModelStopsListeningAfterClose(t *testing.T) {
	m := NewFormModel(&fakeBackend{}, &domain.Task{ID: "t1", Title: "x", Status: domain.TaskStatusPending, Priority: domain.PriorityLow})
	wait := m.Init()

	got := make(chan tea.Msg, 1)
	go func() { got <- wait() }()

	closeForm(t, m)

	select {
	case msg := <-got:
		// the final flush may report a save; either way the wait is over
		if msg != nil {
			if _, ok := msg.(formSavedMsg); !ok {
				t.Errorf("unexpected message %T", msg)
			}
		}
	case <-time.After(time.Second):
		t.Fatal("event listener still blocked after close")
	}

	// a listener armed after close returns at once
	again := make(chan tea.Msg, 1)
	go func() { again <- m.waitForEvent()() }()
	select {
	case <-again:
	case <-time.After(time.Second):
		t.Fatal("re-armed listener blocked after close")
	}
}
