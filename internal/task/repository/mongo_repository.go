package repository

import (
	"context"
	"errors"
	"time"

	"taskboard/internal/task/domain"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoTaskRepository struct {
	tasks *mongo.Collection
}

// NewMongoTaskRepository uses the tasks collection and ensures the
// owner/due-date and reminder indexes.
func NewMongoTaskRepository(ctx context.Context, db *mongo.Database) (TaskRepository, error) {
	r := &mongoTaskRepository{tasks: db.Collection("tasks")}
	_, err := r.tasks.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdBy", Value: 1}, {Key: "dueDate", Value: 1}}},
		{Keys: bson.D{{Key: "createdBy", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "reminderSent", Value: 1}, {Key: "dueDate", Value: 1}}},
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (r *mongoTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}
	task.UpdatedAt = task.CreatedAt
	if task.Subtasks == nil {
		task.Subtasks = []domain.Subtask{}
	}
	_, err := r.tasks.InsertOne(ctx, task)
	return err
}

func (r *mongoTaskRepository) FindOwned(ctx context.Context, ownerID, id string) (*domain.Task, error) {
	var task domain.Task
	err := r.tasks.FindOne(ctx, bson.M{"_id": id, "createdBy": ownerID}).Decode(&task)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}
	return normalize(&task), nil
}

func (r *mongoTaskRepository) List(ctx context.Context, ownerID string, filter domain.ListFilter) ([]*domain.Task, int64, error) {
	tasks := []*domain.Task{}
	if filter.IDs != nil && len(filter.IDs) == 0 {
		return tasks, 0, nil
	}

	match := bson.M{"createdBy": ownerID}
	if filter.Status != nil {
		match["status"] = *filter.Status
	}
	if filter.IDs != nil {
		match["_id"] = bson.M{"$in": filter.IDs}
	}
	due := bson.M{}
	if filter.DueFrom != nil {
		due["$gte"] = filter.DueFrom.UTC()
	}
	if filter.DueUntil != nil {
		due["$lte"] = filter.DueUntil.UTC()
	}
	if len(due) > 0 {
		match["dueDate"] = due
	}

	total, err := r.tasks.CountDocuments(ctx, match)
	if err != nil {
		return nil, 0, err
	}

	// ascending sort puts missing dueDate first, so rank undated tasks explicitly
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$addFields", Value: bson.M{
			"_undated": bson.M{"$cond": bson.A{bson.M{"$ifNull": bson.A{"$dueDate", false}}, 0, 1}},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "_undated", Value: 1},
			{Key: "dueDate", Value: 1},
			{Key: "createdAt", Value: -1},
		}}},
	}
	if filter.Offset > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$skip", Value: int64(filter.Offset)}})
	}
	if filter.Limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: int64(filter.Limit)}})
	}

	cursor, err := r.tasks.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, 0, err
	}
	for _, t := range tasks {
		normalize(t)
	}
	return tasks, total, nil
}

func (r *mongoTaskRepository) Update(ctx context.Context, task *domain.Task) error {
	task.UpdatedAt = time.Now().UTC()
	if task.Subtasks == nil {
		task.Subtasks = []domain.Subtask{}
	}
	set := bson.M{
		"title":        task.Title,
		"description":  task.Description,
		"status":       task.Status,
		"priority":     task.Priority,
		"subtasks":     task.Subtasks,
		"reminderSent": task.ReminderSent,
		"updatedAt":    task.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if task.DueDate != nil {
		set["dueDate"] = task.DueDate.UTC()
	} else {
		update["$unset"] = bson.M{"dueDate": ""}
	}
	res, err := r.tasks.UpdateOne(ctx, bson.M{"_id": task.ID, "createdBy": task.CreatedBy}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *mongoTaskRepository) UpdateStatus(ctx context.Context, ownerID, id string, status domain.TaskStatus) (*domain.Task, error) {
	var task domain.Task
	err := r.tasks.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "createdBy": ownerID},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&task)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}
	return normalize(&task), nil
}

func (r *mongoTaskRepository) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.tasks.DeleteOne(ctx, bson.M{"_id": id, "createdBy": ownerID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *mongoTaskRepository) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	res, err := r.tasks.DeleteMany(ctx, bson.M{"createdBy": ownerID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *mongoTaskRepository) CountByStatus(ctx context.Context, ownerID string) (domain.StatusCounts, error) {
	var counts domain.StatusCounts
	cursor, err := r.tasks.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"createdBy": ownerID}}},
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return counts, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status domain.TaskStatus `bson:"_id"`
		Count  int64             `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return counts, err
	}
	for _, row := range rows {
		counts.Add(row.Status, row.Count)
	}
	return counts, nil
}

func (r *mongoTaskRepository) FindDueForReminder(ctx context.Context, before time.Time) ([]*domain.Task, error) {
	cursor, err := r.tasks.Find(ctx, bson.M{
		"dueDate":      bson.M{"$ne": nil, "$lte": before.UTC()},
		"reminderSent": false,
		"status":       bson.M{"$ne": domain.TaskStatusCompleted},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tasks []*domain.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, err
	}
	for _, t := range tasks {
		normalize(t)
	}
	return tasks, nil
}

func (r *mongoTaskRepository) MarkReminderSent(ctx context.Context, id string) error {
	_, err := r.tasks.UpdateByID(ctx, id, bson.M{"$set": bson.M{"reminderSent": true}})
	return err
}

// normalize converts decoded times to UTC; the driver decodes into local time.
func normalize(t *domain.Task) *domain.Task {
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	if t.DueDate != nil {
		due := t.DueDate.UTC()
		t.DueDate = &due
	}
	if t.Subtasks == nil {
		t.Subtasks = []domain.Subtask{}
	}
	for i := range t.Subtasks {
		t.Subtasks[i].CreatedAt = t.Subtasks[i].CreatedAt.UTC()
		t.Subtasks[i].UpdatedAt = t.Subtasks[i].UpdatedAt.UTC()
	}
	return t
}
