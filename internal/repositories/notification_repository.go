package repositories

import (
	"context"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/anonto42/campus-connect/backend/internal/models"
)

// NotificationRepository defines the notification store operations.
type NotificationRepository interface {
	// Increment atomically bumps the count of the notification at key, or
	// creates it with count 1. createdAt is set to at and refs are merged.
	Increment(ctx context.Context, key models.NotificationKey, refs models.Refs, at time.Time) (*models.Notification, error)
	SetMessage(ctx context.Context, id primitive.ObjectID, message string) error
	FindByKey(ctx context.Context, key models.NotificationKey) (*models.Notification, error)
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	ListByUser(ctx context.Context, userID string) ([]models.Notification, error)
	ListAll(ctx context.Context) ([]models.Notification, error)
	MarkRead(ctx context.Context, id string) (*models.Notification, error)
	MarkViewed(ctx context.Context, id string) (*models.Notification, error)
	// MarkAllViewed flags every unviewed notification of userID and returns their ids.
	MarkAllViewed(ctx context.Context, userID string) ([]string, error)
	Delete(ctx context.Context, id string) error
	WatchDeletions(ctx context.Context) (DeletionStream, error)
}

// DeletionStream yields the ids of deleted notifications.
type DeletionStream interface {
	// Next blocks for the next deleted id. It returns io.EOF once the stream ends.
	Next(ctx context.Context) (string, error)
	Close(ctx context.Context) error
}

// MongoNotificationRepository implements NotificationRepository for MongoDB
type MongoNotificationRepository struct {
	collection *mongo.Collection
}

func NewMongoNotificationRepository(db *mongo.Database) *MongoNotificationRepository {
	return &MongoNotificationRepository{collection: db.Collection("notifications")}
}

// EnsureIndexes creates the aggregation-key and listing indexes.
// The key index is not unique: concurrent first events may still create two documents.
func (r *MongoNotificationRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "type", Value: 1}, {Key: "relatedId", Value: 1}}},
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	return err
}

func keyFilter(key models.NotificationKey) bson.M {
	return bson.M{"user": key.UserID, "type": key.Type, "relatedId": key.RelatedID}
}

func refsSet(refs models.Refs) bson.M {
	set := bson.M{}
	add := func(field, value string) {
		if value != "" {
			set[field] = value
		}
	}
	add("requestId", refs.RequestID)
	add("messageId", refs.MessageID)
	add("postId", refs.PostID)
	add("commentId", refs.CommentID)
	add("banRequestId", refs.BanRequestID)
	add("senderId", refs.SenderID)
	return set
}

func (r *MongoNotificationRepository) Increment(ctx context.Context, key models.NotificationKey, refs models.Refs, at time.Time) (*models.Notification, error) {
	set := refsSet(refs)
	set["createdAt"] = at

	update := bson.M{
		"$inc": bson.M{"count": 1},
		"$set": set,
		"$setOnInsert": bson.M{
			"message": "",
			"read":    false,
			"viewed":  false,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var n models.Notification
	if err := r.collection.FindOneAndUpdate(ctx, keyFilter(key), update, opts).Decode(&n); err != nil {
		return nil, translate(err)
	}
	return &n, nil
}

func (r *MongoNotificationRepository) SetMessage(ctx context.Context, id primitive.ObjectID, message string) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"message": message}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoNotificationRepository) FindByKey(ctx context.Context, key models.NotificationKey) (*models.Notification, error) {
	var n models.Notification
	if err := r.collection.FindOne(ctx, keyFilter(key)).Decode(&n); err != nil {
		return nil, translate(err)
	}
	return &n, nil
}

func (r *MongoNotificationRepository) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var n models.Notification
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&n); err != nil {
		return nil, translate(err)
	}
	return &n, nil
}

func (r *MongoNotificationRepository) find(ctx context.Context, filter bson.M) ([]models.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *MongoNotificationRepository) ListByUser(ctx context.Context, userID string) ([]models.Notification, error) {
	return r.find(ctx, bson.M{"user": userID})
}

func (r *MongoNotificationRepository) ListAll(ctx context.Context) ([]models.Notification, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoNotificationRepository) setFlag(ctx context.Context, id, field string) (*models.Notification, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var n models.Notification
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{field: true}}, opts).Decode(&n)
	if err != nil {
		return nil, translate(err)
	}
	return &n, nil
}

func (r *MongoNotificationRepository) MarkRead(ctx context.Context, id string) (*models.Notification, error) {
	return r.setFlag(ctx, id, "read")
}

func (r *MongoNotificationRepository) MarkViewed(ctx context.Context, id string) (*models.Notification, error) {
	return r.setFlag(ctx, id, "viewed")
}

func (r *MongoNotificationRepository) MarkAllViewed(ctx context.Context, userID string) ([]string, error) {
	pending, err := r.find(ctx, bson.M{"user": userID, "viewed": false})
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return nil, nil
	}

	oids := make([]primitive.ObjectID, len(pending))
	ids := make([]string, len(pending))
	for i, n := range pending {
		oids[i] = n.ID
		ids[i] = n.ID.Hex()
	}
	_, err = r.collection.UpdateMany(ctx, bson.M{"_id": bson.M{"$in": oids}}, bson.M{"$set": bson.M{"viewed": true}})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *MongoNotificationRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// WatchDeletions opens a change stream filtered to delete events.
// Requires a replica set or sharded cluster.
func (r *MongoNotificationRepository) WatchDeletions(ctx context.Context) (DeletionStream, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "operationType", Value: "delete"}}}},
	}
	cs, err := r.collection.Watch(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	return &changeStreamDeletions{cs: cs}, nil
}

type changeStreamDeletions struct {
	cs *mongo.ChangeStream
}

type deleteEvent struct {
	DocumentKey struct {
		ID primitive.ObjectID `bson:"_id"`
	} `bson:"documentKey"`
}

func (s *changeStreamDeletions) Next(ctx context.Context) (string, error) {
	if !s.cs.Next(ctx) {
		if err := s.cs.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	var ev deleteEvent
	if err := s.cs.Decode(&ev); err != nil {
		return "", err
	}
	return ev.DocumentKey.ID.Hex(), nil
}

func (s *changeStreamDeletions) Close(ctx context.Context) error {
	return s.cs.Close(ctx)
}
