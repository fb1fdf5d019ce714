package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/anonto42/campus-connect/backend/internal/models"
)

// MessageRepository defines the message store operations.
type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	// ExistsBetween reports whether any direct message exists between a and b in either direction.
	ExistsBetween(ctx context.Context, a, b string) (bool, error)
	Conversation(ctx context.Context, a, b string) ([]models.Message, error)
	GroupHistory(ctx context.Context, groupID string) ([]models.Message, error)
}

// MongoMessageRepository implements MessageRepository for MongoDB
type MongoMessageRepository struct {
	collection *mongo.Collection
}

func NewMongoMessageRepository(db *mongo.Database) *MongoMessageRepository {
	return &MongoMessageRepository{collection: db.Collection("messages")}
}

func (r *MongoMessageRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "sender", Value: 1}, {Key: "receiver", Value: 1}, {Key: "createdAt", Value: 1}}},
		{Keys: bson.D{{Key: "group", Value: 1}, {Key: "createdAt", Value: 1}}},
	})
	return err
}

func (r *MongoMessageRepository) Create(ctx context.Context, msg *models.Message) error {
	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, msg)
	return err
}

func pairFilter(a, b string) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"sender": a, "receiver": b},
		bson.M{"sender": b, "receiver": a},
	}}
}

func (r *MongoMessageRepository) ExistsBetween(ctx context.Context, a, b string) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, pairFilter(a, b), options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *MongoMessageRepository) history(ctx context.Context, filter bson.M) ([]models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	messages := []models.Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *MongoMessageRepository) Conversation(ctx context.Context, a, b string) ([]models.Message, error) {
	return r.history(ctx, pairFilter(a, b))
}

func (r *MongoMessageRepository) GroupHistory(ctx context.Context, groupID string) ([]models.Message, error) {
	return r.history(ctx, bson.M{"group": groupID})
}
