package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/campus-connect/backend/internal/models"
	"github.com/anonto42/campus-connect/backend/pkg/apperrors"
)

func TestPosts_CreateSanitizesContent(t *testing.T) {
	e := newEnv(t, alice)
	ctx := context.Background()

	post, err := e.postSvc.Create(ctx, "alice", `<p>Exam moved</p><script>alert(1)</script>`)
	require.NoError(t, err)
	assert.Equal(t, "<p>Exam moved</p>", post.Content)

	_, err = e.postSvc.Create(ctx, "alice", "<script>alert(1)</script>")
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))
}

func TestPosts_BannedUsersCannotPost(t *testing.T) {
	banned := carol
	banned.Banned = true
	e := newEnv(t, banned)

	_, err := e.postSvc.Create(context.Background(), "carol", "hello")
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
}

func TestPosts_LikesAggregatePerPost(t *testing.T) {
	e := newEnv(t, alice, bob, carol)
	ctx := context.Background()
	post, err := e.postSvc.Create(ctx, "alice", "study group tonight")
	require.NoError(t, err)
	pid := post.ID.Hex()

	got, err := e.postSvc.Like(ctx, "bob", pid)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, got.Likes)
	assert.Equal(t, "Bob liked your post", e.notificationFor(t, "alice", models.KindLike).Message)

	_, err = e.postSvc.Like(ctx, "carol", pid)
	require.NoError(t, err)
	n := e.notificationFor(t, "alice", models.KindLike)
	assert.Equal(t, 2, n.Count)
	assert.Equal(t, "Carol and 1 others liked your post", n.Message)
	assert.Equal(t, pid, n.RelatedID)

	got, err = e.postSvc.Like(ctx, "bob", pid)
	require.NoError(t, err)
	assert.Equal(t, []string{"carol"}, got.Likes)
	assert.Equal(t, 2, e.notificationFor(t, "alice", models.KindLike).Count)
}

func TestPosts_DislikeReplacesLike(t *testing.T) {
	e := newEnv(t, alice, bob)
	ctx := context.Background()
	post, err := e.postSvc.Create(ctx, "alice", "hot take")
	require.NoError(t, err)
	pid := post.ID.Hex()

	_, err = e.postSvc.Like(ctx, "bob", pid)
	require.NoError(t, err)
	got, err := e.postSvc.Dislike(ctx, "bob", pid)
	require.NoError(t, err)
	assert.Empty(t, got.Likes)
	assert.Equal(t, []string{"bob"}, got.Dislikes)
	assert.Equal(t, "Bob disliked your post", e.notificationFor(t, "alice", models.KindDislike).Message)
}

func TestPosts_ReactionsKeyOnCanonicalPostID(t *testing.T) {
	e := newEnv(t, alice, bob, carol)
	ctx := context.Background()
	post, err := e.postSvc.Create(ctx, "alice", "same post, two spellings")
	require.NoError(t, err)
	pid := post.ID.Hex()

	_, err = e.postSvc.Like(ctx, "bob", strings.ToUpper(pid))
	require.NoError(t, err)
	_, err = e.postSvc.Like(ctx, "carol", pid)
	require.NoError(t, err)

	n := e.notificationFor(t, "alice", models.KindLike)
	assert.Equal(t, 2, n.Count)
	assert.Equal(t, pid, n.RelatedID)
}

func TestPosts_ConcurrentReactionsAreKept(t *testing.T) {
	e := newEnv(t, alice, bob, carol)
	ctx := context.Background()
	post, err := e.postSvc.Create(ctx, "alice", "popular")
	require.NoError(t, err)
	pid := post.ID.Hex()

	var wg sync.WaitGroup
	for _, user := range []string{"bob", "carol"} {
		wg.Add(1)
		go func(user string) {
			defer wg.Done()
			_, err := e.postSvc.Like(ctx, user, pid)
			assert.NoError(t, err)
		}(user)
	}
	wg.Wait()

	got, err := e.postSvc.Get(ctx, pid)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"bob", "carol"}, got.Likes)
}

func TestPosts_OwnReactionsDoNotNotify(t *testing.T) {
	e := newEnv(t, alice)
	ctx := context.Background()
	post, err := e.postSvc.Create(ctx, "alice", "note to self")
	require.NoError(t, err)

	_, err = e.postSvc.Like(ctx, "alice", post.ID.Hex())
	require.NoError(t, err)
	_, err = e.postSvc.Comment(ctx, "alice", post.ID.Hex(), "bump")
	require.NoError(t, err)
	assert.Zero(t, e.notifications.count())
}

func TestPosts_Comment(t *testing.T) {
	e := newEnv(t, alice, bob)
	ctx := context.Background()
	post, err := e.postSvc.Create(ctx, "alice", "thoughts?")
	require.NoError(t, err)

	_, err = e.postSvc.Comment(ctx, "bob", post.ID.Hex(), "  ")
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))

	got, err := e.postSvc.Comment(ctx, "bob", post.ID.Hex(), "<b>agreed</b>")
	require.NoError(t, err)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "agreed", got.Comments[0].Text)

	n := e.notificationFor(t, "alice", models.KindComment)
	assert.Equal(t, "Bob commented on your post", n.Message)
	assert.Equal(t, got.Comments[0].ID.Hex(), n.CommentID)

	_, err = e.postSvc.Comment(ctx, "bob", "65f000000000000000000000", "hello")
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}
