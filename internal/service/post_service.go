package service

import (
	"context"

	"inkwell/internal/models"
	"inkwell/internal/repository"
)

type PostService struct {
	postRepo repository.PostRepository
}

type CreatePostInput struct {
	Title      string
	Content    string
	AuthorID   uint
	AuthorName string
	Tags       models.Tags
}

type UpdatePostInput struct {
	PostID  uint
	Title   *string
	Content *string
	Tags    *models.Tags
}

// ToggleLikeResult is the outcome of a like toggle: the new state for the
// toggling user and the post's resulting like count.
type ToggleLikeResult struct {
	IsLiked bool
	Likes   int
}

func NewPostService(postRepo repository.PostRepository) *PostService {
	return &PostService{postRepo: postRepo}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	const (
		maxTitleLen   = 300
		maxContentLen = 50000
	)

	if in.Title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(in.Title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 300 characters)")
	}
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 50000 characters)")
	}
	if in.AuthorName == "" {
		return nil, models.NewValidationError("Author name is required")
	}
	if in.AuthorID == 0 {
		return nil, models.NewValidationError("Author ID is required")
	}

	post := &models.Post{
		Title:      in.Title,
		Content:    in.Content,
		AuthorID:   in.AuthorID,
		AuthorName: in.AuthorName,
		Tags:       in.Tags,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	return s.postRepo.GetByID(ctx, post.ID)
}

func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

func (s *PostService) ListPosts(ctx context.Context, filter repository.PostFilter) ([]*models.Post, error) {
	return s.postRepo.List(ctx, filter)
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	if in.PostID == 0 {
		return nil, models.NewValidationError("Post ID is required")
	}
	if in.Title != nil && *in.Title == "" {
		return nil, models.NewValidationError("Title cannot be empty")
	}
	if in.Content != nil && *in.Content == "" {
		return nil, models.NewValidationError("Content cannot be empty")
	}

	return s.postRepo.Update(ctx, in.PostID, repository.PostUpdate{
		Title:   in.Title,
		Content: in.Content,
		Tags:    in.Tags,
	})
}

func (s *PostService) DeletePost(ctx context.Context, id uint) error {
	if id == 0 {
		return models.NewValidationError("Post ID is required")
	}
	return s.postRepo.Delete(ctx, id)
}

func (s *PostService) ToggleLike(ctx context.Context, userID, postID uint) (*ToggleLikeResult, error) {
	if userID == 0 || postID == 0 {
		return nil, models.NewValidationError("User ID and Post ID are required")
	}

	isLiked, likes, err := s.postRepo.ToggleLike(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	return &ToggleLikeResult{IsLiked: isLiked, Likes: likes}, nil
}

func (s *PostService) LikedPostIDs(ctx context.Context, userID uint) ([]uint, error) {
	if userID == 0 {
		return nil, models.NewValidationError("User ID is required")
	}
	return s.postRepo.LikedPostIDs(ctx, userID)
}
