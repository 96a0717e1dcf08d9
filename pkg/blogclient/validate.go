package blogclient

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// FieldErrors maps input field names to validation messages. Inputs are
// validated before any network call, so a failed validation never reaches
// the server.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, e[f]))
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func validateEmail(errs FieldErrors, email string) {
	switch {
	case email == "":
		errs["email"] = "Email is required"
	case len(email) > 254 || !emailPattern.MatchString(email):
		errs["email"] = "Invalid email address"
	}
}

func validatePassword(errs FieldErrors, password string) {
	if password == "" {
		errs["password"] = "Password is required"
		return
	}
	if len(password) < 8 {
		errs["password"] = "Password must be at least 8 characters"
		return
	}
	if len(password) > 128 {
		errs["password"] = "Password must be at most 128 characters"
		return
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		errs["password"] = "Password must contain upper and lower case letters and a digit"
	}
}

// validateRegistration checks the registration form fields.
func validateRegistration(email, password, displayName string) error {
	errs := FieldErrors{}
	validateEmail(errs, email)
	validatePassword(errs, password)
	switch n := len(strings.TrimSpace(displayName)); {
	case n == 0:
		errs["displayName"] = "Display name is required"
	case n < 2 || n > 50:
		errs["displayName"] = "Display name must be between 2 and 50 characters"
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// validateSignIn checks the login form fields.
func validateSignIn(email, password string) error {
	errs := FieldErrors{}
	validateEmail(errs, email)
	if password == "" {
		errs["password"] = "Password is required"
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Validate checks the post form fields.
func (in CreatePostInput) Validate() error {
	errs := FieldErrors{}
	if strings.TrimSpace(in.Title) == "" {
		errs["title"] = "Title is required"
	} else if len(in.Title) > 300 {
		errs["title"] = "Title must be at most 300 characters"
	}
	if strings.TrimSpace(in.Content) == "" {
		errs["content"] = "Content is required"
	} else if len(in.Content) > 50000 {
		errs["content"] = "Content must be at most 50000 characters"
	}
	if in.AuthorID == 0 {
		errs["authorId"] = "Author ID is required"
	}
	if strings.TrimSpace(in.AuthorName) == "" {
		errs["authorName"] = "Author name is required"
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Validate checks the post edit form fields. Nil fields are skipped.
func (in UpdatePostInput) Validate() error {
	errs := FieldErrors{}
	if in.PostID == 0 {
		errs["postId"] = "Post ID is required"
	}
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			errs["title"] = "Title cannot be empty"
		} else if len(*in.Title) > 300 {
			errs["title"] = "Title must be at most 300 characters"
		}
	}
	if in.Content != nil {
		if strings.TrimSpace(*in.Content) == "" {
			errs["content"] = "Content cannot be empty"
		} else if len(*in.Content) > 50000 {
			errs["content"] = "Content must be at most 50000 characters"
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Validate checks the comment form fields.
func (in CreateCommentInput) Validate() error {
	errs := FieldErrors{}
	if in.PostID == 0 {
		errs["postId"] = "Post ID is required"
	}
	if strings.TrimSpace(in.Content) == "" {
		errs["content"] = "Content is required"
	} else if len(in.Content) > 10000 {
		errs["content"] = "Content must be at most 10000 characters"
	}
	if in.AuthorID == 0 {
		errs["authorId"] = "Author ID is required"
	}
	if strings.TrimSpace(in.AuthorName) == "" {
		errs["authorName"] = "Author name is required"
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
