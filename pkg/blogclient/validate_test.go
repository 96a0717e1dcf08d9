package blogclient

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRegistration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		email       string
		password    string
		displayName string
		wantFields  []string
	}{
		{"valid", "jane@example.com", "StrongPass1", "Jane Doe", nil},
		{"missing everything", "", "", "", []string{"email", "password", "displayName"}},
		{"bad email", "not-an-email", "StrongPass1", "Jane", []string{"email"}},
		{"short password", "jane@example.com", "Ab1", "Jane", []string{"password"}},
		{"no digit", "jane@example.com", "NoDigitsHere", "Jane", []string{"password"}},
		{"no upper case", "jane@example.com", "alllower1", "Jane", []string{"password"}},
		{"display name too short", "jane@example.com", "StrongPass1", "J", []string{"displayName"}},
		{"display name too long", "jane@example.com", "StrongPass1", strings.Repeat("x", 51), []string{"displayName"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRegistration(tt.email, tt.password, tt.displayName)
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}
			var fieldErrs FieldErrors
			require.ErrorAs(t, err, &fieldErrs)
			require.Len(t, fieldErrs, len(tt.wantFields))
			for _, f := range tt.wantFields {
				assert.Contains(t, fieldErrs, f)
			}
		})
	}
}

func TestCreatePostInputValidate(t *testing.T) {
	t.Parallel()

	valid := CreatePostInput{Title: "t", Content: "c", AuthorID: 1, AuthorName: "Jane"}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name      string
		mutate    func(*CreatePostInput)
		wantField string
	}{
		{"missing title", func(in *CreatePostInput) { in.Title = "  " }, "title"},
		{"title too long", func(in *CreatePostInput) { in.Title = strings.Repeat("x", 301) }, "title"},
		{"missing content", func(in *CreatePostInput) { in.Content = "" }, "content"},
		{"missing author id", func(in *CreatePostInput) { in.AuthorID = 0 }, "authorId"},
		{"missing author name", func(in *CreatePostInput) { in.AuthorName = "" }, "authorName"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			var fieldErrs FieldErrors
			require.ErrorAs(t, in.Validate(), &fieldErrs)
			assert.Contains(t, fieldErrs, tt.wantField)
		})
	}
}

func TestUpdatePostInputValidate(t *testing.T) {
	t.Parallel()

	title := "new title"
	assert.NoError(t, UpdatePostInput{PostID: 1, Title: &title}.Validate())
	// Fields left nil are not validated.
	assert.NoError(t, UpdatePostInput{PostID: 1}.Validate())

	empty := "  "
	var fieldErrs FieldErrors
	require.ErrorAs(t, UpdatePostInput{PostID: 1, Title: &empty}.Validate(), &fieldErrs)
	assert.Contains(t, fieldErrs, "title")

	require.ErrorAs(t, UpdatePostInput{Title: &title}.Validate(), &fieldErrs)
	assert.Contains(t, fieldErrs, "postId")
}

func TestCreateCommentInputValidate(t *testing.T) {
	t.Parallel()

	valid := CreateCommentInput{PostID: 1, Content: "hi", AuthorID: 1, AuthorName: "Jane"}
	assert.NoError(t, valid.Validate())

	long := valid
	long.Content = strings.Repeat("x", 10001)
	var fieldErrs FieldErrors
	require.ErrorAs(t, long.Validate(), &fieldErrs)
	assert.Contains(t, fieldErrs, "content")

	missing := CreateCommentInput{}
	require.ErrorAs(t, missing.Validate(), &fieldErrs)
	assert.Len(t, fieldErrs, 4)
}

func TestFieldErrorsMessage(t *testing.T) {
	t.Parallel()

	err := FieldErrors{"title": "Title is required", "content": "Content is required"}
	assert.Equal(t, "invalid input: content: Content is required; title: Title is required", err.Error())
}
