// Package blogclient is a Go client for the Inkwell API. It wraps the HTTP
// endpoints with typed methods and keeps the session cookie in a jar, so a
// sign-in or session exchange authenticates subsequent calls automatically.
package blogclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// APIError is an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
}

// Post is a blog post as returned by the API.
type Post struct {
	ID         uint      `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	AuthorID   uint      `json:"authorId"`
	AuthorName string    `json:"authorName"`
	Tags       []string  `json:"tags"`
	Likes      int64     `json:"likes"`
	LikedBy    []uint    `json:"likedBy"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Comment is a comment on a post.
type Comment struct {
	ID         uint      `json:"id"`
	PostID     uint      `json:"postId"`
	Content    string    `json:"content"`
	AuthorID   uint      `json:"authorId"`
	AuthorName string    `json:"authorName"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// User is the public view of an account.
type User struct {
	UID         uint   `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// RegisterResult is the response of a successful registration. CustomToken is
// a short-lived single-use token redeemed for a session cookie.
type RegisterResult struct {
	UID         uint   `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	CustomToken string `json:"customToken"`
}

// LikeResult is the state of a post's like counter after a toggle.
type LikeResult struct {
	Success bool  `json:"success"`
	IsLiked bool  `json:"isLiked"`
	Likes   int64 `json:"likes"`
}

// CreatePostInput are the fields for a new post.
type CreatePostInput struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	AuthorID   uint     `json:"authorId"`
	AuthorName string   `json:"authorName"`
	Tags       []string `json:"tags,omitempty"`
}

// UpdatePostInput are the fields for a post update. Nil fields are left
// unchanged on the server.
type UpdatePostInput struct {
	PostID  uint      `json:"postId"`
	Title   *string   `json:"title,omitempty"`
	Content *string   `json:"content,omitempty"`
	Tags    *[]string `json:"tags,omitempty"`
}

// CreateCommentInput are the fields for a new comment.
type CreateCommentInput struct {
	PostID     uint   `json:"postId"`
	Content    string `json:"content"`
	AuthorID   uint   `json:"authorId"`
	AuthorName string `json:"authorName"`
}

// Client talks to one Inkwell server.
type Client struct {
	base string
	http *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. A cookie jar is added
// if the client has none, since the session cookie lives in the jar.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	c := &Client{base: strings.TrimRight(baseURL, "/")}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 30 * time.Second}
	}
	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		c.http.Jar = jar
	}
	return c, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var wire struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&wire) == nil && wire.Error != "" {
			apiErr.Message = wire.Error
		} else {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Register creates an account and redeems the returned custom token for a
// session cookie, leaving the client signed in.
func (c *Client) Register(ctx context.Context, email, password, displayName string) (*RegisterResult, error) {
	if err := validateRegistration(email, password, displayName); err != nil {
		return nil, err
	}

	var res RegisterResult
	err := c.do(ctx, http.MethodPost, "/api/auth/register", map[string]string{
		"email":       email,
		"password":    password,
		"displayName": displayName,
	}, &res)
	if err != nil {
		return nil, err
	}
	if err := c.EstablishSession(ctx, res.CustomToken); err != nil {
		return nil, fmt.Errorf("registered but session exchange failed: %w", err)
	}
	return &res, nil
}

// EstablishSession redeems a custom token for a session cookie.
func (c *Client) EstablishSession(ctx context.Context, customToken string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/session", map[string]string{
		"token": customToken,
	}, nil)
}

// SignIn authenticates with email and password and stores the session cookie.
func (c *Client) SignIn(ctx context.Context, email, password string) (*User, error) {
	if err := validateSignIn(email, password); err != nil {
		return nil, err
	}

	var res struct {
		Success bool `json:"success"`
		User    User `json:"user"`
	}
	err := c.do(ctx, http.MethodPost, "/api/auth/signin", map[string]string{
		"email":    email,
		"password": password,
	}, &res)
	if err != nil {
		return nil, err
	}
	return &res.User, nil
}

// Session returns the account behind the current session cookie.
func (c *Client) Session(ctx context.Context) (*User, error) {
	var res struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/session", nil, &res); err != nil {
		return nil, err
	}
	return &res.User, nil
}

// SignOut revokes the current session.
func (c *Client) SignOut(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/signout", nil, nil)
}

// PostFilter narrows ListPosts. Zero values mean no filtering.
type PostFilter struct {
	AuthorID uint
	Tag      string
}

// ListPosts returns posts newest first, optionally filtered.
func (c *Client) ListPosts(ctx context.Context, filter PostFilter) ([]Post, error) {
	q := url.Values{}
	if filter.AuthorID != 0 {
		q.Set("authorId", fmt.Sprint(filter.AuthorID))
	}
	if filter.Tag != "" {
		q.Set("tag", filter.Tag)
	}
	path := "/api/posts"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var res struct {
		Posts []Post `json:"posts"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, err
	}
	return res.Posts, nil
}

// GetPost returns a single post by ID.
func (c *Client) GetPost(ctx context.Context, id uint) (*Post, error) {
	var post Post
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/posts/%d", id), nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// CreatePost creates a post and returns it with server-assigned fields.
func (c *Client) CreatePost(ctx context.Context, in CreatePostInput) (*Post, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var post Post
	if err := c.do(ctx, http.MethodPost, "/api/posts", in, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// UpdatePost applies a partial update and returns the updated post.
func (c *Client) UpdatePost(ctx context.Context, in UpdatePostInput) (*Post, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var post Post
	if err := c.do(ctx, http.MethodPut, "/api/posts", in, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost deletes a post together with its comments and likes.
func (c *Client) DeletePost(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, "/api/posts", map[string]uint{"postId": id}, nil)
}

// ListComments returns the comments of a post, newest first.
func (c *Client) ListComments(ctx context.Context, postID uint) ([]Comment, error) {
	var res struct {
		Comments []Comment `json:"comments"`
	}
	path := fmt.Sprintf("/api/comments?postId=%d", postID)
	if err := c.do(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, err
	}
	return res.Comments, nil
}

// CreateComment adds a comment to a post.
func (c *Client) CreateComment(ctx context.Context, in CreateCommentInput) (*Comment, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var comment Comment
	if err := c.do(ctx, http.MethodPost, "/api/comments", in, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// LikedPostIDs returns the IDs of posts the user has liked.
func (c *Client) LikedPostIDs(ctx context.Context, userID uint) ([]uint, error) {
	var res struct {
		PostIDs []uint `json:"postIds"`
	}
	path := fmt.Sprintf("/api/likes?userId=%d", userID)
	if err := c.do(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, err
	}
	return res.PostIDs, nil
}

// ToggleLike likes an unliked post or unlikes a liked one.
func (c *Client) ToggleLike(ctx context.Context, userID, postID uint) (*LikeResult, error) {
	var res LikeResult
	err := c.do(ctx, http.MethodPost, "/api/likes", map[string]uint{
		"userId": userID,
		"postId": postID,
	}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Online reports whether the server considers itself connected to its
// database.
func (c *Client) Online(ctx context.Context) (bool, error) {
	var res struct {
		IsOnline bool `json:"isOnline"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/connection", nil, &res); err != nil {
		return false, err
	}
	return res.IsOnline, nil
}
