// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"inkwell/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

// All seeded users share this password so developers can sign in as any of them.
const seedPassword = "SeedPass123"

var tagPool = []string{
	"technology", "programming", "go", "webdev", "databases", "devops",
	"design", "writing", "travel", "food", "music", "books", "science",
	"productivity", "career", "opensource",
}

// Seed populates the database with test data
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Starting database seeding with %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	gofakeit.Seed(time.Now().UnixNano())

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	users, err := createUsers(db, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("created %d users", len(users))

	posts, err := createPosts(db, users, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("created %d posts", len(posts))

	comments, err := createComments(db, users, posts)
	if err != nil {
		return fmt.Errorf("failed to create comments: %w", err)
	}
	log.Printf("created %d comments", comments)

	likes, err := createLikes(db, users, posts)
	if err != nil {
		return fmt.Errorf("failed to create likes: %w", err)
	}
	log.Printf("created %d likes", likes)

	log.Println("Seeding complete")
	return nil
}

// clearData removes seedable rows in dependency order.
func clearData(db *gorm.DB) error {
	for _, model := range []interface{}{
		&models.Like{}, &models.Comment{}, &models.Post{}, &models.User{},
	} {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Unscoped().Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

func createUsers(db *gorm.DB, count int) ([]models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, count)
	for i := 0; i < count; i++ {
		name := gofakeit.Name()
		user := models.User{
			// Index prefix keeps generated emails unique.
			Email:       fmt.Sprintf("%d.%s", i, gofakeit.Email()),
			DisplayName: name,
			Password:    string(hashed),
			Avatar:      fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func createPosts(db *gorm.DB, users []models.User, count int) ([]models.Post, error) {
	if len(users) == 0 {
		return nil, nil
	}

	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	posts := make([]models.Post, 0, count)
	for i := 0; i < count; i++ {
		author := users[r.Intn(len(users))]
		post := models.Post{
			Title:      gofakeit.Sentence(5),
			Content:    gofakeit.Paragraph(2, 4, 8, "\n\n"),
			AuthorID:   author.ID,
			AuthorName: author.DisplayName,
			Tags:       randomTags(r),
		}
		// realistic created_at spread over the last 90 days
		daysBack := r.Intn(90)
		hoursBack := r.Intn(24)
		post.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)

		if err := db.Create(&post).Error; err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func randomTags(r *rand.Rand) models.Tags {
	n := r.Intn(4)
	tags := models.Tags{}
	seen := map[string]bool{}
	for len(tags) < n {
		tag := tagPool[r.Intn(len(tagPool))]
		if seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags
}

func createComments(db *gorm.DB, users []models.User, posts []models.Post) (int, error) {
	if len(users) == 0 || len(posts) == 0 {
		return 0, nil
	}

	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	created := 0
	for _, post := range posts {
		for i := 0; i < r.Intn(5); i++ {
			author := users[r.Intn(len(users))]
			comment := models.Comment{
				PostID:     post.ID,
				Content:    gofakeit.Sentence(gofakeit.Number(5, 20)),
				AuthorID:   author.ID,
				AuthorName: author.DisplayName,
			}
			if err := db.Create(&comment).Error; err != nil {
				return created, err
			}
			created++
		}
	}
	return created, nil
}

// createLikes creates at most one like per user per post, matching the
// unique index on the likes table.
func createLikes(db *gorm.DB, users []models.User, posts []models.Post) (int, error) {
	if len(users) == 0 || len(posts) == 0 {
		return 0, nil
	}

	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	created := 0
	for _, post := range posts {
		for _, idx := range r.Perm(len(users))[:r.Intn(len(users)+1)] {
			like := models.Like{UserID: users[idx].ID, PostID: post.ID}
			if err := db.Create(&like).Error; err != nil {
				return created, err
			}
			created++
		}
	}
	return created, nil
}
