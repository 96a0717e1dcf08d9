package blogclient

import (
	"context"
	"strconv"
	"time"

	"inkwell/pkg/swr"
)

// Views layers stale-while-revalidate caching over a Client. Reads serve
// cached data and mutations update the caches optimistically, rolling back
// when the server rejects the change.
type Views struct {
	client *Client

	// Comment creation is retried on transient failures.
	CommentRetryAttempts int
	CommentRetryDelay    time.Duration

	posts    *swr.Resource[[]Post]
	comments *swr.Cache[[]Comment] // keyed by post ID
	liked    *swr.Cache[[]uint]    // keyed by user ID
}

// NewViews creates Views over the given client.
func NewViews(c *Client) *Views {
	v := &Views{
		client:               c,
		CommentRetryAttempts: 3,
		CommentRetryDelay:    5 * time.Second,
	}
	v.posts = swr.NewResource(func(ctx context.Context) ([]Post, error) {
		return c.ListPosts(ctx, PostFilter{})
	})
	v.comments = swr.NewCache(func(ctx context.Context, key string) ([]Comment, error) {
		postID, err := parseKey(key)
		if err != nil {
			return nil, err
		}
		return c.ListComments(ctx, postID)
	})
	v.liked = swr.NewCache(func(ctx context.Context, key string) ([]uint, error) {
		userID, err := parseKey(key)
		if err != nil {
			return nil, err
		}
		return c.LikedPostIDs(ctx, userID)
	})
	return v
}

func parseKey(key string) (uint, error) {
	id, err := strconv.ParseUint(key, 10, 64)
	return uint(id), err
}

func idKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// Posts returns the cached post list, fetching it on first use.
func (v *Views) Posts(ctx context.Context) ([]Post, error) {
	return v.posts.Get(ctx)
}

// RefreshPosts refetches the post list from the server.
func (v *Views) RefreshPosts(ctx context.Context) ([]Post, error) {
	return v.posts.Revalidate(ctx)
}

// Comments returns the cached comments of a post.
func (v *Views) Comments(ctx context.Context, postID uint) ([]Comment, error) {
	return v.comments.Get(ctx, idKey(postID))
}

// LikedPosts returns the cached IDs of posts the user has liked.
func (v *Views) LikedPosts(ctx context.Context, userID uint) ([]uint, error) {
	return v.liked.Get(ctx, idKey(userID))
}

// CreatePost creates a post. The post list shows a placeholder immediately;
// the rollback removes it if the server rejects the post.
func (v *Views) CreatePost(ctx context.Context, in CreatePostInput) (*Post, error) {
	// Invalid input fails before the optimistic update, so nothing to roll back.
	if err := in.Validate(); err != nil {
		return nil, err
	}

	placeholder := Post{
		Title:      in.Title,
		Content:    in.Content,
		AuthorID:   in.AuthorID,
		AuthorName: in.AuthorName,
		Tags:       in.Tags,
		LikedBy:    []uint{},
		CreatedAt:  time.Now(),
	}
	if placeholder.Tags == nil {
		placeholder.Tags = []string{}
	}

	var created *Post
	_, err := v.posts.Mutate(ctx,
		func(posts []Post) []Post {
			return append([]Post{placeholder}, posts...)
		},
		func(ctx context.Context) error {
			p, err := v.client.CreatePost(ctx, in)
			if err != nil {
				return err
			}
			created = p
			return nil
		})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdatePost applies a partial update, merging the changed fields into the
// cached list before the server confirms them.
func (v *Views) UpdatePost(ctx context.Context, in UpdatePostInput) (*Post, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var updated *Post
	_, err := v.posts.Mutate(ctx,
		func(posts []Post) []Post {
			out := append([]Post{}, posts...)
			for i := range out {
				if out[i].ID != in.PostID {
					continue
				}
				if in.Title != nil {
					out[i].Title = *in.Title
				}
				if in.Content != nil {
					out[i].Content = *in.Content
				}
				if in.Tags != nil {
					out[i].Tags = *in.Tags
				}
			}
			return out
		},
		func(ctx context.Context) error {
			p, err := v.client.UpdatePost(ctx, in)
			if err != nil {
				return err
			}
			updated = p
			return nil
		})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeletePost removes a post from the cached list immediately and restores it
// if the server refuses the deletion.
func (v *Views) DeletePost(ctx context.Context, postID uint) error {
	_, err := v.posts.Mutate(ctx,
		func(posts []Post) []Post {
			out := make([]Post, 0, len(posts))
			for _, p := range posts {
				if p.ID != postID {
					out = append(out, p)
				}
			}
			return out
		},
		func(ctx context.Context) error {
			return v.client.DeletePost(ctx, postID)
		})
	if err != nil {
		return err
	}
	v.comments.Invalidate(idKey(postID))
	return nil
}

// AddComment appends the comment to the post's cached comment list before the
// server confirms it. Transient failures are retried; the optimistic comment
// is rolled back once retries are exhausted.
func (v *Views) AddComment(ctx context.Context, in CreateCommentInput) (*Comment, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	optimistic := Comment{
		PostID:     in.PostID,
		Content:    in.Content,
		AuthorID:   in.AuthorID,
		AuthorName: in.AuthorName,
		CreatedAt:  time.Now(),
	}

	var created *Comment
	commit := swr.Retry(v.CommentRetryAttempts, v.CommentRetryDelay,
		func(ctx context.Context) error {
			c, err := v.client.CreateComment(ctx, in)
			if err != nil {
				return err
			}
			created = c
			return nil
		})

	_, err := v.comments.Resource(idKey(in.PostID)).Mutate(ctx,
		func(comments []Comment) []Comment {
			return append([]Comment{optimistic}, comments...)
		},
		commit)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ToggleLike flips the user's like on a post. The liked-post list updates
// optimistically; the cached post list is patched with the server's counter
// once the toggle is confirmed.
func (v *Views) ToggleLike(ctx context.Context, userID, postID uint) (*LikeResult, error) {
	var result *LikeResult
	_, err := v.liked.Resource(idKey(userID)).Mutate(ctx,
		func(ids []uint) []uint {
			out := make([]uint, 0, len(ids)+1)
			found := false
			for _, id := range ids {
				if id == postID {
					found = true
					continue
				}
				out = append(out, id)
			}
			if !found {
				out = append(out, postID)
			}
			return out
		},
		func(ctx context.Context) error {
			r, err := v.client.ToggleLike(ctx, userID, postID)
			if err != nil {
				return err
			}
			result = r
			return nil
		})
	if err != nil {
		return nil, err
	}

	v.posts.Update(func(posts []Post) []Post {
		out := append([]Post{}, posts...)
		for i := range out {
			if out[i].ID != postID {
				continue
			}
			out[i].Likes = result.Likes
			out[i].LikedBy = toggleID(out[i].LikedBy, userID, result.IsLiked)
		}
		return out
	})
	return result, nil
}

func toggleID(ids []uint, id uint, present bool) []uint {
	out := make([]uint, 0, len(ids)+1)
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	if present {
		out = append(out, id)
	}
	return out
}
