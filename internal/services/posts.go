package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/anonto42/campus-connect/backend/internal/models"
	"github.com/anonto42/campus-connect/backend/internal/repositories"
	"github.com/anonto42/campus-connect/backend/pkg/apperrors"
)

// PostService handles posts and the reactions that notify their authors.
type PostService struct {
	posts    repositories.PostRepository
	users    repositories.UserRepository
	router   *Router
	content  *bluemonday.Policy
	comments *bluemonday.Policy
	now      func() time.Time
}

func NewPostService(posts repositories.PostRepository, users repositories.UserRepository, router *Router) *PostService {
	return &PostService{
		posts:    posts,
		users:    users,
		router:   router,
		content:  bluemonday.UGCPolicy(),
		comments: bluemonday.StrictPolicy(),
		now:      time.Now,
	}
}

// activeUser loads userID and rejects banned accounts.
func (s *PostService) activeUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, lookupErr(err, "User not found", "get user")
	}
	if user.Banned {
		return nil, apperrors.Forbidden("Your account has been banned")
	}
	return user, nil
}

func (s *PostService) Create(ctx context.Context, authorID, content string) (*models.Post, error) {
	author, err := s.activeUser(ctx, authorID)
	if err != nil {
		return nil, err
	}
	clean := strings.TrimSpace(s.content.Sanitize(content))
	if clean == "" {
		return nil, apperrors.InvalidInput("Post content is required")
	}
	post := &models.Post{AuthorID: author.ID, Content: clean}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, apperrors.Storage(err, "create post")
	}
	return post, nil
}

func (s *PostService) Get(ctx context.Context, id string) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "Post not found", "get post")
	}
	return post, nil
}

func (s *PostService) List(ctx context.Context, skip, limit int64) ([]models.Post, error) {
	posts, err := s.posts.List(ctx, skip, limit)
	if err != nil {
		return nil, apperrors.Storage(err, "list posts")
	}
	return posts, nil
}

// Like toggles the caller's like. Liking clears an existing dislike.
func (s *PostService) Like(ctx context.Context, userID, postID string) (*models.Post, error) {
	return s.react(ctx, userID, postID, true)
}

// Dislike toggles the caller's dislike. Disliking clears an existing like.
func (s *PostService) Dislike(ctx context.Context, userID, postID string) (*models.Post, error) {
	return s.react(ctx, userID, postID, false)
}

func (s *PostService) react(ctx context.Context, userID, postID string, like bool) (*models.Post, error) {
	user, err := s.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	post, err := s.Get(ctx, postID)
	if err != nil {
		return nil, err
	}

	same := post.Likes
	if !like {
		same = post.Dislikes
	}
	added := !containsID(same, user.ID)
	var updated *models.Post
	if added {
		updated, err = s.posts.AddReaction(ctx, post.ID, user.ID, like)
	} else {
		updated, err = s.posts.RemoveReaction(ctx, post.ID, user.ID)
	}
	if err != nil {
		return nil, lookupErr(err, "Post not found", "update reactions")
	}

	if added && post.AuthorID != user.ID {
		var subject models.Subject = models.PostLiked{PostID: post.ID.Hex(), LikerID: user.ID}
		verb := "liked"
		if !like {
			subject = models.PostDisliked{PostID: post.ID.Hex(), DislikerID: user.ID}
			verb = "disliked"
		}
		err = s.router.Fanout(ctx, Event{
			Audience:  AudienceDirect,
			Actor:     user.ID,
			Recipient: post.AuthorID,
			Subject:   subject,
			Render: func(count int) string {
				if count > 1 {
					return fmt.Sprintf("%s and %d others %s your post", user.Name, count-1, verb)
				}
				return fmt.Sprintf("%s %s your post", user.Name, verb)
			},
		})
		if err != nil {
			return nil, err
		}
	}
	return updated, nil
}

func (s *PostService) Comment(ctx context.Context, userID, postID, text string) (*models.Post, error) {
	clean := strings.TrimSpace(s.comments.Sanitize(text))
	if clean == "" {
		return nil, apperrors.InvalidInput("Comment text is required")
	}
	user, err := s.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	post, err := s.Get(ctx, postID)
	if err != nil {
		return nil, err
	}

	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		UserID:    user.ID,
		Text:      clean,
		CreatedAt: s.now(),
	}
	updated, err := s.posts.AddComment(ctx, post.ID, comment)
	if err != nil {
		return nil, lookupErr(err, "Post not found", "add comment")
	}

	if post.AuthorID != user.ID {
		err = s.router.Fanout(ctx, Event{
			Audience:  AudienceDirect,
			Actor:     user.ID,
			Recipient: post.AuthorID,
			Subject: models.PostCommented{
				PostID:      post.ID.Hex(),
				CommentID:   comment.ID.Hex(),
				CommenterID: user.ID,
			},
			Render: func(count int) string {
				if count > 1 {
					return fmt.Sprintf("%d new comments on your post, latest from %s", count, user.Name)
				}
				return fmt.Sprintf("%s commented on your post", user.Name)
			},
		})
		if err != nil {
			return nil, err
		}
	}
	return updated, nil
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func withoutID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
