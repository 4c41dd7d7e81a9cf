package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrSubtaskNotFound = errors.New("subtask not found")
)

// Priority represents task priority level
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities in ascending order.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

func ParsePriority(s string) (Priority, bool) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, true
	}
	return "", false
}

// TaskStatus is one of the three board columns. Any status may move to any other.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "inprogress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// Statuses in board column order.
var Statuses = []TaskStatus{TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted}

// ParseStatus accepts the canonical values plus the spellings older clients send
// for the middle column.
func ParseStatus(s string) (TaskStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return TaskStatusPending, true
	case "inprogress", "in_progress", "in progress", "in-progress":
		return TaskStatusInProgress, true
	case "completed":
		return TaskStatusCompleted, true
	}
	return "", false
}

func (s TaskStatus) Label() string {
	switch s {
	case TaskStatusPending:
		return "Pending"
	case TaskStatusInProgress:
		return "In Progress"
	case TaskStatusCompleted:
		return "Completed"
	}
	return string(s)
}

// SubtaskStatus is a checklist state.
type SubtaskStatus string

const (
	SubtaskPending   SubtaskStatus = "pending"
	SubtaskCompleted SubtaskStatus = "completed"
)

func ParseSubtaskStatus(s string) (SubtaskStatus, bool) {
	switch st := SubtaskStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case SubtaskPending, SubtaskCompleted:
		return st, true
	}
	return "", false
}

// Subtask is a checklist item embedded in its parent task.
type Subtask struct {
	ID        string        `json:"id" bson:"id"`
	Title     string        `json:"title" bson:"title"`
	Status    SubtaskStatus `json:"status" bson:"status"`
	CreatedAt time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt" bson:"updatedAt"`
}

// Task is a unit of work owned by the user in CreatedBy.
type Task struct {
	ID           string     `json:"id" gorm:"primaryKey" bson:"_id"`
	Title        string     `json:"title" gorm:"not null" bson:"title"`
	Description  string     `json:"description,omitempty" bson:"description,omitempty"`
	Status       TaskStatus `json:"status" gorm:"index;default:pending" bson:"status"`
	Priority     Priority   `json:"priority" gorm:"default:medium" bson:"priority"`
	DueDate      *time.Time `json:"dueDate,omitempty" gorm:"index" bson:"dueDate,omitempty"`
	CreatedBy    string     `json:"createdBy" gorm:"index;not null" bson:"createdBy"`
	Subtasks     []Subtask  `json:"subtasks" gorm:"type:text;serializer:json" bson:"subtasks"`
	ReminderSent bool       `json:"-" gorm:"default:false" bson:"reminderSent"`
	CreatedAt    time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// Subtask returns the embedded subtask with id, or nil.
func (t *Task) Subtask(id string) *Subtask {
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == id {
			return &t.Subtasks[i]
		}
	}
	return nil
}

// RemoveSubtask drops the subtask with id, keeping the order of the rest.
func (t *Task) RemoveSubtask(id string) bool {
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == id {
			t.Subtasks = append(t.Subtasks[:i], t.Subtasks[i+1:]...)
			return true
		}
	}
	return false
}

// ListFilter narrows an owner's task list. Zero values mean "no filter".
type ListFilter struct {
	Status *TaskStatus
	// IDs restricts the result to these tasks; a non-nil empty slice matches nothing.
	IDs      []string
	DueFrom  *time.Time
	DueUntil *time.Time
	Limit    int
	Offset   int
}

// StatusCounts is the chart aggregation.
type StatusCounts struct {
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"inprogress"`
	Completed  int64 `json:"completed"`
	Total      int64 `json:"total"`
}

func (c *StatusCounts) Add(status TaskStatus, n int64) {
	switch status {
	case TaskStatusPending:
		c.Pending += n
	case TaskStatusInProgress:
		c.InProgress += n
	case TaskStatusCompleted:
		c.Completed += n
	default:
		return
	}
	c.Total += n
}
