package repository

import (
	"context"
	"errors"
	"strings"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/observability"

	"gorm.io/gorm"
)

// PostFilter narrows a post listing. Zero values mean "no filter".
type PostFilter struct {
	AuthorID uint
	Tag      string
}

// PostUpdate carries the fields a post update may change.
// Nil pointers leave the stored value untouched.
type PostUpdate struct {
	Title   *string
	Content *string
	Tags    *models.Tags
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, filter PostFilter) ([]*models.Post, error)
	Update(ctx context.Context, id uint, update PostUpdate) (*models.Post, error)
	Delete(ctx context.Context, id uint) error
	ToggleLike(ctx context.Context, userID, postID uint) (isLiked bool, likes int, err error)
	LikedPostIDs(ctx context.Context, userID uint) ([]uint, error)
}

type postRepository struct {
	db      *gorm.DB
	metrics *observability.DatabaseMetrics
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, metrics: observability.NewDatabaseMetrics(db)}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if post.Tags == nil {
		post.Tags = models.Tags{}
	}
	err := r.db.WithContext(ctx).Create(post).Error
	if err == nil {
		post.Normalize()
		cache.Invalidate(ctx, cache.PostsListKey)
	}
	return err
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	key := cache.PostKey(id)

	err := cache.Aside(ctx, key, &post, cache.PostTTL, func() error {
		if err := r.applyPostDetails(r.db.WithContext(ctx)).First(&post, id).Error; err != nil {
			return err
		}
		return r.attachLikedBy(ctx, []*models.Post{&post})
	})
	if err != nil {
		return nil, err
	}

	post.Normalize()
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, filter PostFilter) ([]*models.Post, error) {
	defer r.metrics.TrackQuery("list", "posts")()

	var posts []*models.Post

	// The unfiltered listing is the hot path; it goes through the cache.
	if filter == (PostFilter{}) {
		err := cache.Aside(ctx, cache.PostsListKey, &posts, cache.PostsListTTL, func() error {
			return r.fetchPosts(ctx, filter, &posts)
		})
		if err != nil {
			return nil, err
		}
	} else {
		if err := r.fetchPosts(ctx, filter, &posts); err != nil {
			return nil, err
		}
	}

	for _, p := range posts {
		p.Normalize()
	}
	return posts, nil
}

func (r *postRepository) fetchPosts(ctx context.Context, filter PostFilter, posts *[]*models.Post) error {
	q := r.applyPostDetails(r.db.WithContext(ctx))
	if filter.AuthorID != 0 {
		q = q.Where("author_id = ?", filter.AuthorID)
	}
	if filter.Tag != "" {
		// Tags are stored as a JSON array in a text column; match the quoted element.
		q = q.Where("posts.tags LIKE ?", "%"+`"`+strings.ReplaceAll(filter.Tag, `"`, ``)+`"`+"%")
	}
	if err := q.Order("created_at DESC").Find(posts).Error; err != nil {
		return err
	}
	return r.attachLikedBy(ctx, *posts)
}

// applyPostDetails adds a subquery to fetch the like count in a single query.
func (r *postRepository) applyPostDetails(db *gorm.DB) *gorm.DB {
	return db.Select("posts.*, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) as likes")
}

// attachLikedBy fills LikedBy for the given posts with one query over the likes table.
func (r *postRepository) attachLikedBy(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}

	var likes []models.Like
	if err := r.db.WithContext(ctx).
		Where("post_id IN ?", ids).
		Find(&likes).Error; err != nil {
		return err
	}

	byPost := make(map[uint][]uint, len(posts))
	for _, l := range likes {
		byPost[l.PostID] = append(byPost[l.PostID], l.UserID)
	}
	for _, p := range posts {
		p.LikedBy = byPost[p.ID]
		if p.LikedBy == nil {
			p.LikedBy = []uint{}
		}
	}
	return nil
}

func (r *postRepository) Update(ctx context.Context, id uint, update PostUpdate) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if update.Title != nil {
		changes["title"] = *update.Title
	}
	if update.Content != nil {
		changes["content"] = *update.Content
	}
	if update.Tags != nil {
		changes["tags"] = *update.Tags
	}

	if len(changes) > 0 {
		if err := r.db.WithContext(ctx).Model(&post).Updates(changes).Error; err != nil {
			return nil, err
		}
	} else {
		// No field changed; still refresh updatedAt to mark the write.
		if err := r.db.WithContext(ctx).Model(&post).Update("updated_at", gorm.Expr("CURRENT_TIMESTAMP")).Error; err != nil {
			return nil, err
		}
	}

	cache.InvalidatePost(ctx, id)
	return r.GetByID(ctx, id)
}

// Delete removes the post together with its comments and like records in one
// transaction, so no orphaned comments survive a partial failure.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	defer r.metrics.TrackQuery("delete", "posts")()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, id).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
	if err != nil {
		return err
	}

	cache.InvalidatePost(ctx, id)
	return nil
}

// ToggleLike flips the like state of (userID, postID) and returns the new
// state together with the post-toggle like count, all inside one transaction
// so the count can never drift from the like records or go negative.
func (r *postRepository) ToggleLike(ctx context.Context, userID, postID uint) (bool, int, error) {
	defer r.metrics.TrackQuery("toggle_like", "likes")()

	var isLiked bool
	var likes int64

	toggle := func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var post models.Post
			if err := tx.First(&post, postID).Error; err != nil {
				return err
			}

			var existing models.Like
			err := tx.Where("user_id = ? AND post_id = ?", userID, postID).First(&existing).Error
			switch {
			case err == nil:
				// Hard delete; like rows carry no soft-delete state.
				if err := tx.Unscoped().Delete(&existing).Error; err != nil {
					return err
				}
				isLiked = false
			case errors.Is(err, gorm.ErrRecordNotFound):
				if err := tx.Create(&models.Like{UserID: userID, PostID: postID}).Error; err != nil {
					return err
				}
				isLiked = true
			default:
				return err
			}

			return tx.Model(&models.Like{}).Where("post_id = ?", postID).Count(&likes).Error
		})
	}

	err := toggle()
	if err != nil && isUniqueViolation(err) {
		// Lost a race with a concurrent toggle on the same pair; the state
		// has moved, so one retry resolves to the opposite transition.
		observability.LikeToggleConflicts.Inc()
		err = toggle()
	}
	if err != nil {
		if isUniqueViolation(err) {
			return false, 0, models.NewConflictError("Like state changed concurrently, please retry")
		}
		return false, 0, err
	}

	cache.InvalidatePost(ctx, postID)
	cache.InvalidateLikedIDs(ctx, userID)

	if likes < 0 {
		likes = 0
	}
	return isLiked, int(likes), nil
}

func (r *postRepository) LikedPostIDs(ctx context.Context, userID uint) ([]uint, error) {
	ids := []uint{}
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ?", userID).
		Order("post_id").
		Pluck("post_id", &ids).Error
	return ids, err
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
