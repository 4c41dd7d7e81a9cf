package repository

import (
	"context"

	"taskboard/internal/search/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoSearchRepository struct {
	entries *mongo.Collection
}

// NewMongoSearchRepository uses the search_index collection with a weighted
// text index over title and content.
func NewMongoSearchRepository(ctx context.Context, db *mongo.Database) (SearchRepository, error) {
	r := &mongoSearchRepository{entries: db.Collection("search_index")}
	_, err := r.entries.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "title", Value: "text"}, {Key: "content", Value: "text"}},
			Options: options.Index().
				SetName("search_text").
				SetWeights(bson.D{{Key: "title", Value: 2}, {Key: "content", Value: 1}}),
		},
		{Keys: bson.D{{Key: "taskId", Value: 1}}},
		{Keys: bson.D{{Key: "ownerId", Value: 1}}},
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (r *mongoSearchRepository) ReplaceForTask(ctx context.Context, taskID string, entries []*domain.Entry) error {
	if _, err := r.entries.DeleteMany(ctx, bson.M{"taskId": taskID}); err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	docs := make([]interface{}, len(entries))
	for i, e := range entries {
		docs[i] = e
	}
	_, err := r.entries.InsertMany(ctx, docs)
	return err
}

func (r *mongoSearchRepository) DeleteByTask(ctx context.Context, taskID string) error {
	_, err := r.entries.DeleteMany(ctx, bson.M{"taskId": taskID})
	return err
}

func (r *mongoSearchRepository) DeleteByOwner(ctx context.Context, ownerID string) error {
	_, err := r.entries.DeleteMany(ctx, bson.M{"ownerId": ownerID})
	return err
}

func (r *mongoSearchRepository) Search(ctx context.Context, ownerID, query string, limit int) ([]domain.Hit, error) {
	opts := options.Find().
		SetProjection(bson.M{"taskId": 1, "score": bson.M{"$meta": "textScore"}}).
		SetSort(bson.M{"score": bson.M{"$meta": "textScore"}})
	cursor, err := r.entries.Find(ctx, bson.M{
		"ownerId": ownerID,
		"$text":   bson.M{"$search": query},
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		TaskID string  `bson:"taskId"`
		Score  float64 `bson:"score"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	scores := make(map[string]float64, len(rows))
	for _, row := range rows {
		if row.Score > scores[row.TaskID] {
			scores[row.TaskID] = row.Score
		}
	}
	return rank(scores, limit), nil
}
