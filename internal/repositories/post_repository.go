package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/anonto42/campus-connect/backend/internal/models"
)

// PostRepository defines the post store operations.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	List(ctx context.Context, skip, limit int64) ([]models.Post, error)
	// AddReaction puts userID in the like (or dislike) set and takes it out of the other.
	AddReaction(ctx context.Context, id primitive.ObjectID, userID string, like bool) (*models.Post, error)
	RemoveReaction(ctx context.Context, id primitive.ObjectID, userID string) (*models.Post, error)
	AddComment(ctx context.Context, id primitive.ObjectID, comment models.Comment) (*models.Post, error)
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

func (r *MongoPostRepository) Create(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	if post.Likes == nil {
		post.Likes = []string{}
	}
	if post.Dislikes == nil {
		post.Dislikes = []string{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

func (r *MongoPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var post models.Post
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&post); err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

func (r *MongoPostRepository) List(ctx context.Context, skip, limit int64) ([]models.Post, error) {
	opts := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *MongoPostRepository) modify(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.Post, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var post models.Post
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&post); err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

func reactionFields(like bool) (string, string) {
	if like {
		return "likes", "dislikes"
	}
	return "dislikes", "likes"
}

func (r *MongoPostRepository) AddReaction(ctx context.Context, id primitive.ObjectID, userID string, like bool) (*models.Post, error) {
	set, other := reactionFields(like)
	return r.modify(ctx, id, bson.M{
		"$addToSet": bson.M{set: userID},
		"$pull":     bson.M{other: userID},
		"$set":      bson.M{"updated_at": time.Now()},
	})
}

func (r *MongoPostRepository) RemoveReaction(ctx context.Context, id primitive.ObjectID, userID string) (*models.Post, error) {
	return r.modify(ctx, id, bson.M{
		"$pull": bson.M{"likes": userID, "dislikes": userID},
		"$set":  bson.M{"updated_at": time.Now()},
	})
}

func (r *MongoPostRepository) AddComment(ctx context.Context, id primitive.ObjectID, comment models.Comment) (*models.Post, error) {
	return r.modify(ctx, id, bson.M{
		"$push": bson.M{"comments": comment},
		"$set":  bson.M{"updated_at": time.Now()},
	})
}
