package repository

import (
	"context"
	"time"

	"taskboard/internal/activity/domain"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoActivityRepository struct {
	activities *mongo.Collection
}

func NewMongoActivityRepository(ctx context.Context, db *mongo.Database) (ActivityRepository, error) {
	r := &mongoActivityRepository{activities: db.Collection("activities")}
	_, err := r.activities.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "taskId", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (r *mongoActivityRepository) Append(ctx context.Context, activity *domain.Activity) error {
	if activity.ID == "" {
		activity.ID = uuid.New().String()
	}
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now().UTC()
	}
	_, err := r.activities.InsertOne(ctx, activity)
	return err
}

func (r *mongoActivityRepository) ListByTask(ctx context.Context, userID, taskID string) ([]*domain.Activity, error) {
	cursor, err := r.activities.Find(ctx,
		bson.M{"taskId": taskID, "userId": userID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	activities := []*domain.Activity{}
	if err := cursor.All(ctx, &activities); err != nil {
		return nil, err
	}
	for _, a := range activities {
		a.CreatedAt = a.CreatedAt.UTC()
	}
	return activities, nil
}
