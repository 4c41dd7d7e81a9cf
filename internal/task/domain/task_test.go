package domain

import "testing"

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want TaskStatus
		ok   bool
	}{
		{"pending", TaskStatusPending, true},
		{"inprogress", TaskStatusInProgress, true},
		{"in_progress", TaskStatusInProgress, true},
		{"In Progress", TaskStatusInProgress, true},
		{" completed ", TaskStatusCompleted, true},
		{"done", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseStatus(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseStatus(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParsePriority(t *testing.T) {
	if p, ok := ParsePriority("HIGH"); !ok || p != PriorityHigh {
		t.Errorf("expected high, got %q %v", p, ok)
	}
	if _, ok := ParsePriority("urgent"); ok {
		t.Error("urgent is not a priority")
	}
}

func TestTaskSubtasks(t *testing.T) {
	task := &Task{Subtasks: []Subtask{{ID: "a"}, {ID: "b"}, {ID: "c"}}}

	if st := task.Subtask("b"); st == nil || st.ID != "b" {
		t.Fatalf("expected subtask b, got %+v", st)
	}
	task.Subtask("b").Title = "changed"
	if task.Subtasks[1].Title != "changed" {
		t.Error("Subtask should return a pointer into the slice")
	}

	if !task.RemoveSubtask("b") {
		t.Fatal("expected b to be removed")
	}
	if len(task.Subtasks) != 2 || task.Subtasks[0].ID != "a" || task.Subtasks[1].ID != "c" {
		t.Errorf("unexpected order after removal: %+v", task.Subtasks)
	}
	if task.RemoveSubtask("zzz") {
		t.Error("removing an unknown subtask should report false")
	}
}

func TestStatusCounts(t *testing.T) {
	var c StatusCounts
	c.Add(TaskStatusPending, 2)
	c.Add(TaskStatusCompleted, 1)
	c.Add("bogus", 5)
	if c.Pending != 2 || c.Completed != 1 || c.InProgress != 0 || c.Total != 3 {
		t.Errorf("unexpected counts %+v", c)
	}
}
