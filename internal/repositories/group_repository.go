package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/anonto42/campus-connect/backend/internal/models"
)

// GroupRepository defines the group store operations.
type GroupRepository interface {
	Create(ctx context.Context, group *models.Group) error
	GetByID(ctx context.Context, id string) (*models.Group, error)
	ListByMember(ctx context.Context, userID string) ([]models.Group, error)
	// SetMembers replaces members and unread counts together.
	SetMembers(ctx context.Context, id primitive.ObjectID, members []string, unread map[string]int) error
	SetUnreadCounts(ctx context.Context, id primitive.ObjectID, unread map[string]int) error
	ResetUnread(ctx context.Context, id primitive.ObjectID, userID string) error
}

// MongoGroupRepository implements GroupRepository for MongoDB
type MongoGroupRepository struct {
	collection *mongo.Collection
}

func NewMongoGroupRepository(db *mongo.Database) *MongoGroupRepository {
	return &MongoGroupRepository{collection: db.Collection("groups")}
}

func (r *MongoGroupRepository) Create(ctx context.Context, group *models.Group) error {
	if group.ID.IsZero() {
		group.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, group)
	return err
}

func (r *MongoGroupRepository) GetByID(ctx context.Context, id string) (*models.Group, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var g models.Group
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&g); err != nil {
		return nil, translate(err)
	}
	return &g, nil
}

func (r *MongoGroupRepository) ListByMember(ctx context.Context, userID string) ([]models.Group, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"members": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	groups := []models.Group{}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *MongoGroupRepository) update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoGroupRepository) SetMembers(ctx context.Context, id primitive.ObjectID, members []string, unread map[string]int) error {
	return r.update(ctx, id, bson.M{"members": members, "unreadCounts": unread})
}

func (r *MongoGroupRepository) SetUnreadCounts(ctx context.Context, id primitive.ObjectID, unread map[string]int) error {
	return r.update(ctx, id, bson.M{"unreadCounts": unread})
}

func (r *MongoGroupRepository) ResetUnread(ctx context.Context, id primitive.ObjectID, userID string) error {
	return r.update(ctx, id, bson.M{"unreadCounts." + userID: 0})
}
