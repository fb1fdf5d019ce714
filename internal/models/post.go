package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post is stored in MongoDB with its reactions and comments embedded.
type Post struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AuthorID  string             `json:"author" bson:"author"`
	Content   string             `json:"content" bson:"content"`
	Likes     []string           `json:"likes" bson:"likes"`
	Dislikes  []string           `json:"dislikes" bson:"dislikes"`
	Comments  []Comment          `json:"comments" bson:"comments"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

type Comment struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	UserID    string             `json:"user" bson:"user"`
	Text      string             `json:"text" bson:"text"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

type CreatePostRequest struct {
	Content string `json:"content" validate:"required,min=1,max=5000"`
}

type CreateCommentRequest struct {
	Text string `json:"text" validate:"required,min=1,max=2000"`
}
