package blogservice

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zentinela/blog/internal/common"
)

func strptr(s string) *string {
	return &s
}

func testPost() Post {
	author := uuid.MustParse("3d8f6c0a-5e2b-4c71-8f3e-2a9d4b6e7c10")
	published := time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)

	return Post{
		ID:            uuid.MustParse("7f1c2a4e-3b59-4d0e-9a61-0c2f3d9b8e11"),
		Title:         "Threat Landscape 2024",
		Slug:          "threat-landscape-2024",
		Excerpt:       strptr("The year in review."),
		Content:       "# Threat Landscape\n\nBody.",
		FeaturedImage: strptr("/blog/threats.jpg"),
		AuthorID:      &author,
		PublishedAt:   published,
		UpdatedAt:     published,
		Tags:          []string{"threat intel", "annual"},
	}
}

func TestPostPatch_UnmarshalJSON(t *testing.T) {
	var p PostPatch
	err := json.Unmarshal([]byte(`{"excerpt": null, "title": "New title", "tags": ["a", "b"]}`), &p)
	require.NoError(t, err)

	assert.Equal(t, Some("New title"), p.Title)
	assert.Equal(t, Clear[string](), p.Excerpt)
	assert.Equal(t, Some([]string{"a", "b"}), p.Tags)
	assert.False(t, p.Content.Set, "omitted field must stay unset")
	assert.False(t, p.FeaturedImage.Set, "omitted field must stay unset")
}

func TestApplyPatch(t *testing.T) {
	testCases := []struct {
		name        string
		patch       PostPatch
		want        func(p *Post)
		expectedErr error
	}{
		{
			name:  "excerpt only leaves every other field untouched",
			patch: PostPatch{Excerpt: Some("x")},
			want: func(p *Post) {
				p.Excerpt = strptr("x")
			},
		},
		{
			name:  "empty patch changes nothing",
			patch: PostPatch{},
			want:  func(p *Post) {},
		},
		{
			name:  "new title re-derives the slug",
			patch: PostPatch{Title: Some("Hello, World! 2024")},
			want: func(p *Post) {
				p.Title = "Hello, World! 2024"
				p.Slug = "hello-world-2024"
			},
		},
		{
			name:  "same title keeps the stored slug",
			patch: PostPatch{Title: Some("Threat Landscape 2024")},
			want:  func(p *Post) {},
		},
		{
			name:  "null clears the excerpt",
			patch: PostPatch{Excerpt: Clear[string]()},
			want: func(p *Post) {
				p.Excerpt = nil
			},
		},
		{
			name:  "empty string clears the featured image",
			patch: PostPatch{FeaturedImage: Some("")},
			want: func(p *Post) {
				p.FeaturedImage = nil
			},
		},
		{
			name:  "null tags become an empty list",
			patch: PostPatch{Tags: Clear[[]string]()},
			want: func(p *Post) {
				p.Tags = []string{}
			},
		},
		{
			name:  "tags are normalized in order",
			patch: PostPatch{Tags: Some([]string{" zeta ", "", "alpha"})},
			want: func(p *Post) {
				p.Tags = []string{"zeta", "alpha"}
			},
		},
		{
			name:  "content is sanitized",
			patch: PostPatch{Content: Some("ok<script>x()</script>")},
			want: func(p *Post) {
				p.Content = "ok"
			},
		},
		{
			name:        "title cannot be cleared",
			patch:       PostPatch{Title: Clear[string]()},
			expectedErr: common.ValidationError{Errors: map[string]string{"title": "must be provided"}},
		},
		{
			name:        "empty title is rejected, not ignored",
			patch:       PostPatch{Title: Some("   ")},
			expectedErr: common.ValidationError{Errors: map[string]string{"title": "must be provided"}},
		},
		{
			name:  "short title",
			patch: PostPatch{Title: Some("Go")},
			want: func(p *Post) {
				p.Title = "Go"
				p.Slug = "go"
			},
		},
		{
			name:        "title too long",
			patch:       PostPatch{Title: Some(strings.Repeat("a", 201))},
			expectedErr: common.ValidationError{Errors: map[string]string{"title": "must not be more than 200 characters long"}},
		},
		{
			name:        "content cannot be cleared",
			patch:       PostPatch{Content: Clear[string]()},
			expectedErr: common.ValidationError{Errors: map[string]string{"content": "must be provided"}},
		},
		{
			name:        "content cannot be emptied",
			patch:       PostPatch{Content: Some("")},
			expectedErr: common.ValidationError{Errors: map[string]string{"content": "must be provided"}},
		},
		{
			name:        "invalid image reference",
			patch:       PostPatch{FeaturedImage: Some("javascript:alert(1)")},
			expectedErr: common.ValidationError{Errors: map[string]string{"featured_image": "must be an http(s) URL or a site-relative path"}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := testPost()
			err := applyPatch(&got, tc.patch)
			if tc.expectedErr != nil {
				assert.Equal(t, tc.expectedErr, err)
				return
			}
			require.NoError(t, err)

			want := testPost()
			tc.want(&want)
			assert.Equal(t, want, got)
		})
	}
}
