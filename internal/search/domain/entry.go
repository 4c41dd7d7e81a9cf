package domain

import "time"

// Entry is a denormalized, searchable projection of a task or one of its
// subtasks. Entries are rebuilt whenever the task is written.
type Entry struct {
	ID        string    `json:"id" gorm:"primaryKey" bson:"_id"`
	OwnerID   string    `json:"ownerId" gorm:"index;not null" bson:"ownerId"`
	TaskID    string    `json:"taskId" gorm:"index;not null" bson:"taskId"`
	SubtaskID string    `json:"subtaskId,omitempty" bson:"subtaskId,omitempty"`
	Title     string    `json:"title" bson:"title"`
	Content   string    `json:"content,omitempty" bson:"content,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

func (Entry) TableName() string {
	return "search_index"
}

// Hit is one ranked task.
type Hit struct {
	TaskID string
	Score  float64
}
