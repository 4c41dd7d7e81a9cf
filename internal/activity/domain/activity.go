package domain

import "time"

// Action labels one kind of audited change.
type Action string

const (
	ActionTaskCreated    Action = "task_created"
	ActionTaskUpdated    Action = "task_updated"
	ActionStatusChanged  Action = "status_changed"
	ActionSubtaskAdded   Action = "subtask_added"
	ActionSubtaskUpdated Action = "subtask_updated"
	ActionSubtaskRemoved Action = "subtask_removed"
	ActionTaskDeleted    Action = "task_deleted"
)

// Activity is an append-only audit record. Records are never updated and
// outlive the task they describe.
type Activity struct {
	ID     string `json:"id" gorm:"primaryKey" bson:"_id"`
	TaskID string `json:"taskId" gorm:"index;not null" bson:"taskId"`
	UserID string `json:"userId" gorm:"index;not null" bson:"userId"`
	Action Action `json:"action" gorm:"not null" bson:"action"`
	// Field names the changed field for task_updated and the subtask id for subtask actions.
	Field     string    `json:"field,omitempty" bson:"field,omitempty"`
	OldValue  string    `json:"oldValue,omitempty" bson:"oldValue,omitempty"`
	NewValue  string    `json:"newValue,omitempty" bson:"newValue,omitempty"`
	CreatedAt time.Time `json:"createdAt" gorm:"index" bson:"createdAt"`
}
