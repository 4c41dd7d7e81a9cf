package dto

import (
	"bytes"
	"encoding/json"

	"taskboard/internal/task/domain"
)

// SubtaskInput is one checklist item in a create or replace body. An id that
// matches an existing subtask keeps its identity; anything else is new.
type SubtaskInput struct {
	ID     string `json:"id,omitempty"`
	Title  string `json:"title"`
	Status string `json:"status,omitempty"`
}

// CreateTaskRequest is the body of POST /tasks and PUT /tasks/:id.
type CreateTaskRequest struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      string         `json:"status"`
	Priority    string         `json:"priority"`
	DueDate     *string        `json:"dueDate"`
	Subtasks    []SubtaskInput `json:"subtasks"`
}

// PatchTaskRequest is the body of PATCH /tasks/:id; absent fields are left alone.
type PatchTaskRequest struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Status      *string         `json:"status"`
	Priority    *string         `json:"priority"`
	DueDate     OptionalString  `json:"dueDate"`
	Subtasks    *[]SubtaskInput `json:"subtasks"`
}

// OptionalString tells an absent field from an explicit null.
type OptionalString struct {
	Set   bool
	Value *string
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

type StatusRequest struct {
	Status string `json:"status"`
}

type CreateSubtaskRequest struct {
	Title  string `json:"title"`
	Status string `json:"status"`
}

type PatchSubtaskRequest struct {
	Title  *string `json:"title"`
	Status *string `json:"status"`
}

// ListQuery carries the GET /tasks query string.
type ListQuery struct {
	Search    string
	StartDate string
	EndDate   string
	Status    string
	Limit     int
	Offset    int
}

type TaskListResponse struct {
	Tasks []*domain.Task `json:"tasks"`
	Total int64          `json:"total"`
}
