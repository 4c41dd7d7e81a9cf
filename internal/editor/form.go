// Package editor implements the task form: explicit submit for new tasks and
// debounced auto-save for existing ones.
package editor

import (
	"context"
	"strings"
	"sync"
	"time"

	"taskboard/internal/task/domain"
	"taskboard/internal/task/dto"
	"taskboard/pkg/debounce"
	"taskboard/pkg/logging"
	"taskboard/pkg/validation"
)

// DefaultDelay is the quiet period before an edit is saved.
const DefaultDelay = 800 * time.Millisecond

const (
	dateLayout  = "2006-01-02"
	saveTimeout = 15 * time.Second
)

// Saver persists the form; *client.Client satisfies it.
type Saver interface {
	CreateTask(ctx context.Context, req dto.CreateTaskRequest) (*domain.Task, error)
	ReplaceTask(ctx context.Context, id string, req dto.CreateTaskRequest) (*domain.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// Values is what the form fields currently hold. DueDate is YYYY-MM-DD,
// an RFC3339 timestamp, or empty for no due date.
type Values struct {
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     string
	Subtasks    []dto.SubtaskInput
}

func (v Values) request() dto.CreateTaskRequest {
	req := dto.CreateTaskRequest{
		Title:       strings.TrimSpace(v.Title),
		Description: v.Description,
		Status:      v.Status,
		Priority:    v.Priority,
		Subtasks:    append([]dto.SubtaskInput{}, v.Subtasks...),
	}
	if due := strings.TrimSpace(v.DueDate); due != "" {
		req.DueDate = &due
	}
	return req
}

// ValuesOf fills the form from an existing task.
func ValuesOf(t *domain.Task) Values {
	v := Values{
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		Subtasks:    make([]dto.SubtaskInput, 0, len(t.Subtasks)),
	}
	if t.DueDate != nil {
		due := t.DueDate.UTC()
		if due.Equal(startOfDay(due)) {
			v.DueDate = due.Format(dateLayout)
		} else {
			v.DueDate = due.Format(time.RFC3339)
		}
	}
	for _, s := range t.Subtasks {
		v.Subtasks = append(v.Subtasks, dto.SubtaskInput{ID: s.ID, Title: s.Title, Status: string(s.Status)})
	}
	return v
}

// Validate checks the values the way the server will. The past-date check
// only applies to new tasks.
func Validate(v Values, isNew bool, now time.Time) error {
	if strings.TrimSpace(v.Title) == "" {
		return validation.Errorf("title", "title is required")
	}
	if _, ok := domain.ParseStatus(v.Status); !ok {
		return validation.Errorf("status", "must be one of pending, inprogress, completed")
	}
	if _, ok := domain.ParsePriority(v.Priority); !ok {
		return validation.Errorf("priority", "must be one of low, medium, high")
	}
	for i, s := range v.Subtasks {
		if strings.TrimSpace(s.Title) == "" {
			return validation.Errorf("subtasks", "subtask %d needs a title", i+1)
		}
	}
	raw := strings.TrimSpace(v.DueDate)
	if raw == "" {
		return nil
	}
	due, err := parseDate(raw)
	if err != nil {
		return validation.Errorf("dueDate", "expected YYYY-MM-DD or an RFC3339 timestamp")
	}
	if isNew && due.Before(startOfDay(now)) {
		return validation.Errorf("dueDate", "due date cannot be in the past")
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

type Option func(*Form)

func WithDelay(d time.Duration) Option {
	return func(f *Form) { f.delay = d }
}

func WithClock(now func() time.Time) Option {
	return func(f *Form) { f.now = now }
}

// OnSaved is called after every successful create or save.
func OnSaved(fn func(*domain.Task)) Option {
	return func(f *Form) { f.onSaved = fn }
}

// OnError receives validation and server errors from auto-save.
func OnError(fn func(error)) Option {
	return func(f *Form) { f.onError = fn }
}

// Form edits one task. A nil task means a new one.
type Form struct {
	saver   Saver
	delay   time.Duration
	now     func() time.Time
	onSaved func(*domain.Task)
	onError func(error)

	mu        sync.Mutex
	task      *domain.Task
	values    Values
	debouncer *debounce.Debouncer

	// seq numbers every edit; applied is the newest edit the server confirmed.
	seq     uint64
	applied uint64

	// held for the whole round trip so at most one save is in flight
	saveMu sync.Mutex
}

func NewForm(saver Saver, task *domain.Task, opts ...Option) *Form {
	f := &Form{
		saver:   saver,
		delay:   DefaultDelay,
		now:     time.Now,
		onSaved: func(*domain.Task) {},
		onError: func(error) {},
		task:    task,
	}
	for _, opt := range opts {
		opt(f)
	}
	if task != nil {
		f.values = ValuesOf(task)
	} else {
		f.values = Values{
			Status:   string(domain.TaskStatusPending),
			Priority: string(domain.PriorityMedium),
		}
	}
	f.debouncer = debounce.New(f.delay)
	return f
}

func (f *Form) IsNew() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.task == nil
}

// Task is the last saved copy, nil until a new task is submitted.
func (f *Form) Task() *domain.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.task
}

func (f *Form) Values() Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := f.values
	v.Subtasks = append([]dto.SubtaskInput(nil), f.values.Subtasks...)
	return v
}

// Update changes the fields. For an existing task the new snapshot is saved
// once edits pause for the debounce delay.
func (f *Form) Update(change func(*Values)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	change(&f.values)
	if f.task == nil {
		return
	}
	f.seq++
	id, seq := f.task.ID, f.seq
	snapshot := f.values
	snapshot.Subtasks = append([]dto.SubtaskInput(nil), f.values.Subtasks...)
	f.debouncer.Schedule(func() { f.save(id, seq, snapshot) })
}

// save sends one snapshot. Saves queue behind the one in flight, and a
// snapshot older than what the server already confirmed is dropped.
func (f *Form) save(id string, seq uint64, v Values) {
	f.saveMu.Lock()
	defer f.saveMu.Unlock()

	f.mu.Lock()
	stale := seq <= f.applied
	f.mu.Unlock()
	if stale {
		return
	}

	if err := Validate(v, false, f.now()); err != nil {
		f.onError(err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	saved, err := f.saver.ReplaceTask(ctx, id, v.request())
	if err != nil {
		logging.For("editor").Debugf("auto-save of %s failed: %v", id, err)
		f.onError(err)
		return
	}

	f.mu.Lock()
	if seq <= f.applied {
		f.mu.Unlock()
		return
	}
	f.applied = seq
	f.task = saved
	if seq == f.seq {
		adoptSubtaskIDs(f.values.Subtasks, saved.Subtasks)
	}
	f.mu.Unlock()
	f.onSaved(saved)
}

// adoptSubtaskIDs gives subtasks added in the form the ids the server
// assigned, so the next save keeps their identity.
func adoptSubtaskIDs(values []dto.SubtaskInput, saved []domain.Subtask) {
	if len(values) != len(saved) {
		return
	}
	for i := range values {
		if values[i].ID == "" && values[i].Title == saved[i].Title {
			values[i].ID = saved[i].ID
		}
	}
}

// Submit creates a new task after validating it. For an existing task it
// saves any pending edit immediately.
func (f *Form) Submit(ctx context.Context) (*domain.Task, error) {
	if !f.IsNew() {
		f.debouncer.Flush()
		f.waitForSave()
		return f.Task(), nil
	}

	v := f.Values()
	if err := Validate(v, true, f.now()); err != nil {
		return nil, err
	}
	created, err := f.saver.CreateTask(ctx, v.request())
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.task = created
	f.values = ValuesOf(created)
	f.mu.Unlock()
	f.onSaved(created)
	return created, nil
}

// Delete drops any pending save and deletes the task right away.
func (f *Form) Delete(ctx context.Context) error {
	f.debouncer.Cancel()
	f.waitForSave()
	task := f.Task()
	if task == nil {
		return nil
	}
	return f.saver.DeleteTask(ctx, task.ID)
}

// Pending reports whether an auto-save is waiting.
func (f *Form) Pending() bool {
	return f.debouncer.Pending()
}

// Close saves what is pending and stops further auto-saves.
func (f *Form) Close() {
	f.debouncer.Flush()
	f.debouncer.Stop()
	f.waitForSave()
}

// waitForSave returns once no save is in flight.
func (f *Form) waitForSave() {
	f.saveMu.Lock()
	defer f.saveMu.Unlock()
}
