package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	activitydomain "taskboard/internal/activity/domain"
	"taskboard/internal/task/domain"
	"taskboard/internal/task/dto"
)

// ListOptions mirrors the GET /tasks query string; zero values are omitted.
type ListOptions struct {
	Search    string
	StartDate string
	EndDate   string
	Status    domain.TaskStatus
	Limit     int
	Offset    int
}

func (o ListOptions) values() url.Values {
	q := url.Values{}
	if o.Search != "" {
		q.Set("search", o.Search)
	}
	if o.StartDate != "" {
		q.Set("startDate", o.StartDate)
	}
	if o.EndDate != "" {
		q.Set("endDate", o.EndDate)
	}
	if o.Status != "" {
		q.Set("status", string(o.Status))
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Offset > 0 {
		q.Set("offset", strconv.Itoa(o.Offset))
	}
	return q
}

func (c *Client) ListTasks(ctx context.Context, opts ListOptions) ([]*domain.Task, int64, error) {
	var resp dto.TaskListResponse
	if err := c.do(ctx, http.MethodGet, "/tasks", opts.values(), nil, &resp); err != nil {
		return nil, 0, err
	}
	return resp.Tasks, resp.Total, nil
}

func (c *Client) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	var task domain.Task
	if err := c.do(ctx, http.MethodGet, "/tasks/"+url.PathEscape(id), nil, nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// CreateTask fills the default status and priority the server expects when
// the caller leaves them blank.
func (c *Client) CreateTask(ctx context.Context, req dto.CreateTaskRequest) (*domain.Task, error) {
	withDefaults(&req)
	var task domain.Task
	if err := c.do(ctx, http.MethodPost, "/tasks", nil, req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// ReplaceTask overwrites every editable field of a task.
func (c *Client) ReplaceTask(ctx context.Context, id string, req dto.CreateTaskRequest) (*domain.Task, error) {
	withDefaults(&req)
	var task domain.Task
	if err := c.do(ctx, http.MethodPut, "/tasks/"+url.PathEscape(id), nil, req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func withDefaults(req *dto.CreateTaskRequest) {
	if req.Status == "" {
		req.Status = string(domain.TaskStatusPending)
	}
	if req.Priority == "" {
		req.Priority = string(domain.PriorityMedium)
	}
}

// TaskPatch builds a PATCH body. Only the fields that were set are sent.
type TaskPatch map[string]any

func (p TaskPatch) Title(s string) TaskPatch {
	p["title"] = s
	return p
}

func (p TaskPatch) Description(s string) TaskPatch {
	p["description"] = s
	return p
}

func (p TaskPatch) Status(s domain.TaskStatus) TaskPatch {
	p["status"] = string(s)
	return p
}

func (p TaskPatch) Priority(pr domain.Priority) TaskPatch {
	p["priority"] = string(pr)
	return p
}

// DueDate sets the due date; an empty string clears it.
func (p TaskPatch) DueDate(s string) TaskPatch {
	if s == "" {
		p["dueDate"] = nil
		return p
	}
	p["dueDate"] = s
	return p
}

func (p TaskPatch) Subtasks(items []dto.SubtaskInput) TaskPatch {
	p["subtasks"] = items
	return p
}

func (c *Client) PatchTask(ctx context.Context, id string, patch TaskPatch) (*domain.Task, error) {
	var task domain.Task
	if err := c.do(ctx, http.MethodPatch, "/tasks/"+url.PathEscape(id), nil, map[string]any(patch), &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) UpdateStatus(ctx context.Context, id string, status domain.TaskStatus) (*domain.Task, error) {
	var task domain.Task
	err := c.do(ctx, http.MethodPatch, "/tasks/"+url.PathEscape(id)+"/status", nil,
		dto.StatusRequest{Status: string(status)}, &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) AddSubtask(ctx context.Context, taskID, title string) (*domain.Task, error) {
	var task domain.Task
	err := c.do(ctx, http.MethodPost, "/tasks/"+url.PathEscape(taskID)+"/subtasks", nil,
		dto.CreateSubtaskRequest{Title: title, Status: string(domain.SubtaskPending)}, &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// SubtaskPatch builds a subtask PATCH body; unset fields are not sent.
type SubtaskPatch map[string]any

func (p SubtaskPatch) Title(s string) SubtaskPatch {
	p["title"] = s
	return p
}

func (p SubtaskPatch) Status(s domain.SubtaskStatus) SubtaskPatch {
	p["status"] = string(s)
	return p
}

func (c *Client) UpdateSubtask(ctx context.Context, taskID, subtaskID string, patch SubtaskPatch) (*domain.Task, error) {
	var task domain.Task
	path := "/tasks/" + url.PathEscape(taskID) + "/subtasks/" + url.PathEscape(subtaskID)
	if err := c.do(ctx, http.MethodPatch, path, nil, map[string]any(patch), &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) RemoveSubtask(ctx context.Context, taskID, subtaskID string) (*domain.Task, error) {
	var task domain.Task
	path := "/tasks/" + url.PathEscape(taskID) + "/subtasks/" + url.PathEscape(subtaskID)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) Activity(ctx context.Context, taskID string) ([]*activitydomain.Activity, error) {
	var resp struct {
		Activities []*activitydomain.Activity `json:"activities"`
	}
	if err := c.do(ctx, http.MethodGet, "/tasks/"+url.PathEscape(taskID)+"/activity", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Activities, nil
}

func (c *Client) Stats(ctx context.Context) (domain.StatusCounts, error) {
	var counts domain.StatusCounts
	err := c.do(ctx, http.MethodGet, "/tasks/stats", nil, nil, &counts)
	return counts, err
}

// Search returns the caller's tasks ranked by relevance to q.
func (c *Client) Search(ctx context.Context, q string) ([]*domain.Task, error) {
	var resp struct {
		Tasks []*domain.Task `json:"tasks"`
	}
	if err := c.do(ctx, http.MethodGet, "/search", url.Values{"q": {q}}, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}
