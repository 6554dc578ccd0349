package blogservice

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zentinela/blog/internal/common"
)

func newTestFallback(t *testing.T) *FallbackSource {
	t.Helper()

	src, err := NewDefaultFallbackSource(common.NewCache(time.Minute, time.Minute))
	require.NoError(t, err)

	return src
}

func TestFallbackSource_ListPosts(t *testing.T) {
	src := newTestFallback(t)

	posts, err := src.ListPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 3)

	assert.Equal(t, "protecting-your-organization-from-social-engineering-attacks", posts[0].Slug)
	assert.Equal(t, "the-rise-of-osint-in-corporate-due-diligence", posts[1].Slug)
	assert.Equal(t, "understanding-digital-footprints-what-you-leave-behind-online", posts[2].Slug)

	for _, p := range posts {
		assert.Equal(t, "Admin User", p.AuthorName)
		assert.Empty(t, p.AuthorEmail)
		assert.Zero(t, p.ViewCount)
		assert.NotNil(t, p.Tags)
	}
}

func TestFallbackSource_GetPostBySlug(t *testing.T) {
	src := newTestFallback(t)
	ctx := context.Background()

	testCases := []struct {
		name        string
		slug        string
		check       func(t *testing.T, p *PostWithAuthor)
		expectedErr error
	}{
		{
			name: "missing updatedAt becomes publishedAt",
			slug: "the-rise-of-osint-in-corporate-due-diligence",
			check: func(t *testing.T, p *PostWithAuthor) {
				assert.Equal(t, p.PublishedAt, p.UpdatedAt)
				assert.Equal(t, time.Date(2024, 4, 2, 9, 0, 0, 0, time.UTC), p.PublishedAt.UTC())
			},
		},
		{
			name: "empty excerpt and missing image become nil",
			slug: "protecting-your-organization-from-social-engineering-attacks",
			check: func(t *testing.T, p *PostWithAuthor) {
				assert.Nil(t, p.Excerpt)
				assert.Nil(t, p.FeaturedImage)
				assert.True(t, p.UpdatedAt.After(p.PublishedAt))
			},
		},
		{
			name: "catalog ids are kept",
			slug: "understanding-digital-footprints-what-you-leave-behind-online",
			check: func(t *testing.T, p *PostWithAuthor) {
				assert.Equal(t, uuid.MustParse("7f1c2a4e-3b59-4d0e-9a61-0c2f3d9b8e11"), p.ID)
				require.NotNil(t, p.AuthorID)
				assert.Equal(t, uuid.MustParse("3d8f6c0a-5e2b-4c71-8f3e-2a9d4b6e7c10"), *p.AuthorID)
				require.NotNil(t, p.FeaturedImage)
				assert.Equal(t, "/blog/digital-footprint.jpg", *p.FeaturedImage)
			},
		},
		{
			name:        "unknown slug",
			slug:        "no-such-post",
			expectedErr: ErrRecordNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := src.GetPostBySlug(ctx, tc.slug)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)
			tc.check(t, p)
		})
	}
}

func TestFallbackSource_GetPopularPosts(t *testing.T) {
	src := newTestFallback(t)
	ctx := context.Background()

	testCases := []struct {
		name     string
		limit    int
		expected int
	}{
		{name: "limit below catalog size", limit: 2, expected: 2},
		{name: "limit above catalog size", limit: 10, expected: 3},
		{name: "zero", limit: 0, expected: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			posts, err := src.GetPopularPosts(ctx, tc.limit)
			require.NoError(t, err)
			assert.Len(t, posts, tc.expected)
		})
	}
}

func TestNewFallbackSource(t *testing.T) {
	testCases := []struct {
		name    string
		catalog string
		check   func(t *testing.T, src *FallbackSource)
		wantErr bool
	}{
		{
			name:    "non uuid ids map to a stable uuid",
			catalog: `[{"id": "1", "title": "Hello, World! 2024", "content": "x", "publishedAt": "2024-01-02"}]`,
			check: func(t *testing.T, src *FallbackSource) {
				p, err := src.GetPostBySlug(context.Background(), "hello-world-2024")
				require.NoError(t, err)
				assert.Equal(t, fallbackUUID("1"), p.ID)
				assert.NotEqual(t, uuid.Nil, p.ID)
				assert.Nil(t, p.AuthorID)
				assert.Equal(t, UnknownAuthor, p.AuthorName)
				assert.Equal(t, []string{}, p.Tags)
			},
		},
		{
			name:    "malformed json",
			catalog: `[{"id": `,
			wantErr: true,
		},
		{
			name:    "bad publishedAt",
			catalog: `[{"id": "1", "slug": "a", "title": "A post", "publishedAt": "yesterday"}]`,
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			src, err := NewFallbackSource(common.NewCache(time.Minute, time.Minute), strings.NewReader(tc.catalog))
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tc.check(t, src)
		})
	}
}

func TestSamplePosts(t *testing.T) {
	reqs, err := SamplePosts()
	require.NoError(t, err)
	require.Len(t, reqs, 3)

	assert.Equal(t, time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC), reqs[0].PublishedAt.UTC())
	assert.Equal(t, reqs[1].PublishedAt, reqs[1].UpdatedAt)
	assert.Equal(t, time.Date(2024, 5, 22, 14, 30, 0, 0, time.UTC), reqs[2].UpdatedAt.UTC())

	for _, req := range reqs {
		v := common.NewValidator()
		validateTitle(v, req.Title)
		validateContent(v, req.Content)
		assert.True(t, v.Valid(), "sample %q: %v", req.Title, v.Errors)
	}
}
