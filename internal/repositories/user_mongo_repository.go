package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"organica/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoUserRepository is a MongoDB implementation of UserRepository.
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a MongoUserRepository over db.
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection("users")}
}

// CreateIndexes makes username and email unique.
func (r *MongoUserRepository) CreateIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	return nil
}

// Create inserts a user.
func (r *MongoUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now

	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateUser
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByUsername retrieves a user by username.
func (r *MongoUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

// GetByEmail retrieves a user by email.
func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// GetByID retrieves a user by ID.
func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}
