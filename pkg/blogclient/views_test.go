package blogclient

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViewsFixture(t *testing.T) (*Views, *RegisterResult) {
	t.Helper()
	c := newClient(t)
	reg, err := c.Register(context.Background(), "viewer@example.com", "StrongPass1", "Viewer")
	require.NoError(t, err)

	v := NewViews(c)
	v.CommentRetryDelay = time.Millisecond
	return v, reg
}

func TestViews_CreatePostValidationFailsLocally(t *testing.T) {
	t.Parallel()
	v, reg := newViewsFixture(t)
	ctx := context.Background()

	_, err := v.CreatePost(ctx, CreatePostInput{
		Title: "Keeper", Content: "stays", AuthorID: reg.UID, AuthorName: reg.DisplayName,
	})
	require.NoError(t, err)

	before, err := v.Posts(ctx)
	require.NoError(t, err)
	require.Len(t, before, 1)

	// A missing title fails per-field validation before any network call,
	// so no placeholder ever enters the cached list.
	_, err = v.CreatePost(ctx, CreatePostInput{
		Content: "no title", AuthorID: reg.UID, AuthorName: reg.DisplayName,
	})
	var fieldErrs FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs, "title")

	after, err := v.Posts(ctx)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, "Keeper", after[0].Title)
}

func TestViews_DoubleToggleRestoresOriginalState(t *testing.T) {
	t.Parallel()
	v, reg := newViewsFixture(t)
	ctx := context.Background()

	post, err := v.CreatePost(ctx, CreatePostInput{
		Title: "Likeable", Content: "body", AuthorID: reg.UID, AuthorName: reg.DisplayName,
	})
	require.NoError(t, err)

	res, err := v.ToggleLike(ctx, reg.UID, post.ID)
	require.NoError(t, err)
	assert.True(t, res.IsLiked)
	assert.EqualValues(t, 1, res.Likes)

	liked, err := v.LikedPosts(ctx, reg.UID)
	require.NoError(t, err)
	assert.Equal(t, []uint{post.ID}, liked)

	res, err = v.ToggleLike(ctx, reg.UID, post.ID)
	require.NoError(t, err)
	assert.False(t, res.IsLiked)
	assert.EqualValues(t, 0, res.Likes)

	liked, err = v.LikedPosts(ctx, reg.UID)
	require.NoError(t, err)
	assert.Empty(t, liked)

	posts, err := v.Posts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.EqualValues(t, 0, posts[0].Likes)
	assert.Empty(t, posts[0].LikedBy)
}

func TestViews_AddComment(t *testing.T) {
	t.Parallel()
	v, reg := newViewsFixture(t)
	ctx := context.Background()

	post, err := v.CreatePost(ctx, CreatePostInput{
		Title: "Discussed", Content: "body", AuthorID: reg.UID, AuthorName: reg.DisplayName,
	})
	require.NoError(t, err)

	created, err := v.AddComment(ctx, CreateCommentInput{
		PostID: post.ID, Content: "first!", AuthorID: reg.UID, AuthorName: reg.DisplayName,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	comments, err := v.Comments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "first!", comments[0].Content)
}

func TestViews_AddCommentToMissingPostRollsBack(t *testing.T) {
	t.Parallel()
	v, reg := newViewsFixture(t)
	ctx := context.Background()

	v.CommentRetryAttempts = 1

	_, err := v.AddComment(ctx, CreateCommentInput{
		PostID: 9999, Content: "orphan", AuthorID: reg.UID, AuthorName: reg.DisplayName,
	})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.StatusCode)

	comments, err := v.Comments(ctx, 9999)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestViews_DeletePostRemovesFromCache(t *testing.T) {
	t.Parallel()
	v, reg := newViewsFixture(t)
	ctx := context.Background()

	post, err := v.CreatePost(ctx, CreatePostInput{
		Title: "Doomed", Content: "body", AuthorID: reg.UID, AuthorName: reg.DisplayName,
	})
	require.NoError(t, err)

	require.NoError(t, v.DeletePost(ctx, post.ID))

	posts, err := v.Posts(ctx)
	require.NoError(t, err)
	assert.Empty(t, posts)
}
