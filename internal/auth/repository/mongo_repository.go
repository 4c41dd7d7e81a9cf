package repository

import (
	"context"
	"errors"
	"time"

	authdomain "taskboard/internal/auth/domain"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoUserRepository struct {
	users  *mongo.Collection
	tokens *mongo.Collection
}

// NewMongoUserRepository uses the users and refresh_tokens collections and
// ensures the unique email index.
func NewMongoUserRepository(ctx context.Context, db *mongo.Database) (UserRepository, error) {
	r := &mongoUserRepository{
		users:  db.Collection("users"),
		tokens: db.Collection("refresh_tokens"),
	}
	_, err := r.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, err
	}
	_, err = r.tokens.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}},
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (r *mongoUserRepository) Create(ctx context.Context, user *authdomain.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	_, err := r.users.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return authdomain.ErrEmailTaken
	}
	return err
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*authdomain.User, error) {
	var user authdomain.User
	err := r.users.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, authdomain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *mongoUserRepository) FindByEmail(ctx context.Context, email string) (*authdomain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id string) (*authdomain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoUserRepository) List(ctx context.Context) ([]*authdomain.User, error) {
	cursor, err := r.users.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []*authdomain.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *mongoUserRepository) Update(ctx context.Context, user *authdomain.User) error {
	user.UpdatedAt = time.Now().UTC()
	res, err := r.users.UpdateByID(ctx, user.ID, bson.M{"$set": bson.M{
		"name":      user.Name,
		"email":     user.Email,
		"password":  user.Password,
		"image":     user.Image,
		"role":      user.Role,
		"updatedAt": user.UpdatedAt,
	}})
	if mongo.IsDuplicateKeyError(err) {
		return authdomain.ErrEmailTaken
	}
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return authdomain.ErrUserNotFound
	}
	return nil
}

func (r *mongoUserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return authdomain.ErrUserNotFound
	}
	return r.DeleteRefreshTokensByUser(ctx, id)
}

func (r *mongoUserRepository) SaveRefreshToken(ctx context.Context, token *authdomain.RefreshToken) error {
	_, err := r.tokens.InsertOne(ctx, token)
	return err
}

func (r *mongoUserRepository) FindRefreshToken(ctx context.Context, token string) (*authdomain.RefreshToken, error) {
	var rt authdomain.RefreshToken
	err := r.tokens.FindOne(ctx, bson.M{"_id": token}).Decode(&rt)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

func (r *mongoUserRepository) DeleteRefreshToken(ctx context.Context, token string) error {
	_, err := r.tokens.DeleteOne(ctx, bson.M{"_id": token})
	return err
}

func (r *mongoUserRepository) DeleteRefreshTokensByUser(ctx context.Context, userID string) error {
	_, err := r.tokens.DeleteMany(ctx, bson.M{"userId": userID})
	return err
}

func (r *mongoUserRepository) DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) error {
	_, err := r.tokens.DeleteMany(ctx, bson.M{"expiresAt": bson.M{"$lt": now}})
	return err
}

type mongoDeviceTokenRepository struct {
	devices *mongo.Collection
}

func NewMongoDeviceTokenRepository(ctx context.Context, db *mongo.Database) (DeviceTokenRepository, error) {
	r := &mongoDeviceTokenRepository{devices: db.Collection("device_tokens")}
	_, err := r.devices.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "token", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}}},
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (r *mongoDeviceTokenRepository) SaveToken(ctx context.Context, userID, token, deviceInfo string) error {
	now := time.Now().UTC()
	_, err := r.devices.UpdateOne(ctx,
		bson.M{"token": token},
		bson.M{
			"$set":         bson.M{"userId": userID, "deviceInfo": deviceInfo, "updatedAt": now},
			"$setOnInsert": bson.M{"_id": uuid.New().String(), "createdAt": now},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *mongoDeviceTokenRepository) GetTokensByUserID(ctx context.Context, userID string) ([]authdomain.DeviceToken, error) {
	cursor, err := r.devices.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tokens []authdomain.DeviceToken
	if err := cursor.All(ctx, &tokens); err != nil {
		return nil, err
	}
	return tokens, nil
}

func (r *mongoDeviceTokenRepository) DeleteToken(ctx context.Context, token string) error {
	_, err := r.devices.DeleteOne(ctx, bson.M{"token": token})
	return err
}

func (r *mongoDeviceTokenRepository) DeleteTokensByUserID(ctx context.Context, userID string) error {
	_, err := r.devices.DeleteMany(ctx, bson.M{"userId": userID})
	return err
}
