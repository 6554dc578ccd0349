package blogservice

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/zentinela/blog/internal/common"
)

//go:embed fallback_posts.json
var defaultCatalog []byte

// fallbackPost is the catalog shape used by the marketing site's static post list.
type fallbackPost struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Slug          string         `json:"slug"`
	Excerpt       string         `json:"excerpt"`
	Content       string         `json:"content"`
	FeaturedImage string         `json:"featuredImage"`
	PublishedAt   string         `json:"publishedAt"`
	UpdatedAt     string         `json:"updatedAt"`
	Tags          []string       `json:"tags"`
	Author        fallbackAuthor `json:"author"`
}

type fallbackAuthor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FallbackSource serves posts from an in-memory catalog when the primary store is unavailable.
// It never records views.
type FallbackSource struct {
	c *common.Cache
}

// NewFallbackSource loads a JSON catalog into c. Every entry is adapted once up front so a
// malformed catalog fails at startup rather than on the read path.
func NewFallbackSource(c *common.Cache, catalog io.Reader) (*FallbackSource, error) {
	var posts []fallbackPost
	if err := json.NewDecoder(catalog).Decode(&posts); err != nil {
		return nil, fmt.Errorf("decode fallback catalog: %w", err)
	}

	for _, fp := range posts {
		if fp.Slug == "" {
			fp.Slug = Slugify(fp.Title)
		}
		if _, err := adaptFallbackPost(fp); err != nil {
			return nil, err
		}
		c.Set(common.CacheKeyFallbackPost(fp.Slug), fp, common.NoExpiration)
	}

	return &FallbackSource{c: c}, nil
}

// NewDefaultFallbackSource uses the catalog compiled into the binary.
func NewDefaultFallbackSource(c *common.Cache) (*FallbackSource, error) {
	return NewFallbackSource(c, bytes.NewReader(defaultCatalog))
}

func LoadFallbackSource(c *common.Cache, path string) (*FallbackSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return NewFallbackSource(c, f)
}

func (s *FallbackSource) ListPosts(ctx context.Context) ([]PostWithAuthor, error) {
	values := s.c.Values(common.CacheKeyFallbackPosts())

	posts := make([]PostWithAuthor, 0, len(values))
	for _, value := range values {
		fp, ok := value.(fallbackPost)
		if !ok {
			return nil, fmt.Errorf("unexpected fallback catalog entry %T", value)
		}

		p, err := adaptFallbackPost(fp)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}

	slices.SortFunc(posts, func(a, b PostWithAuthor) int {
		if c := b.PublishedAt.Compare(a.PublishedAt); c != 0 {
			return c
		}
		if a.Slug < b.Slug {
			return -1
		}
		if a.Slug > b.Slug {
			return 1
		}
		return 0
	})

	return posts, nil
}

func (s *FallbackSource) GetPostBySlug(ctx context.Context, slug string) (*PostWithAuthor, error) {
	value, ok := s.c.Get(common.CacheKeyFallbackPost(slug))
	if !ok {
		return nil, ErrRecordNotFound
	}

	fp, ok := value.(fallbackPost)
	if !ok {
		return nil, fmt.Errorf("unexpected fallback catalog entry %T", value)
	}

	p, err := adaptFallbackPost(fp)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// GetPopularPosts has no view data to rank by, so every post counts as zero views and the
// newest ones win.
func (s *FallbackSource) GetPopularPosts(ctx context.Context, limit int) ([]PostWithAuthor, error) {
	posts, err := s.ListPosts(ctx)
	if err != nil {
		return nil, err
	}

	if limit >= 0 && len(posts) > limit {
		posts = posts[:limit]
	}

	return posts, nil
}

// adaptFallbackPost reshapes a catalog entry into the primary store's shape. Missing
// values get the primary's defaults: empty strings become nil, a missing updatedAt
// becomes publishedAt, and the author email is always empty.
func adaptFallbackPost(fp fallbackPost) (PostWithAuthor, error) {
	publishedAt, err := parseFallbackTime(fp.PublishedAt)
	if err != nil {
		return PostWithAuthor{}, fmt.Errorf("fallback post %q: publishedAt: %w", fp.Slug, err)
	}

	updatedAt := publishedAt
	if fp.UpdatedAt != "" {
		updatedAt, err = parseFallbackTime(fp.UpdatedAt)
		if err != nil {
			return PostWithAuthor{}, fmt.Errorf("fallback post %q: updatedAt: %w", fp.Slug, err)
		}
	}

	slug := fp.Slug
	if slug == "" {
		slug = Slugify(fp.Title)
	}

	var authorID *uuid.UUID
	if fp.Author.ID != "" {
		id := fallbackUUID(fp.Author.ID)
		authorID = &id
	}

	authorName := fp.Author.Name
	if authorName == "" {
		authorName = UnknownAuthor
	}

	return PostWithAuthor{
		Post: Post{
			ID:            fallbackUUID(fp.ID),
			Title:         fp.Title,
			Slug:          slug,
			Excerpt:       nonEmpty(fp.Excerpt),
			Content:       fp.Content,
			FeaturedImage: nonEmpty(fp.FeaturedImage),
			AuthorID:      authorID,
			PublishedAt:   publishedAt,
			UpdatedAt:     updatedAt,
			Tags:          normalizeTags(fp.Tags),
		},
		AuthorName:  authorName,
		AuthorEmail: "",
	}, nil
}

// fallbackUUID keeps catalog ids that already are UUIDs and maps anything else to a
// stable name-based UUID.
func fallbackUUID(id string) uuid.UUID {
	if parsed, err := uuid.Parse(id); err == nil {
		return parsed
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("zentinela:fallback:"+id))
}

func parseFallbackTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// SamplePosts returns the built-in catalog as create requests, used to seed an empty
// database. The catalog's publication and update dates are kept.
func SamplePosts() ([]CreatePostRequest, error) {
	var posts []fallbackPost
	if err := json.Unmarshal(defaultCatalog, &posts); err != nil {
		return nil, err
	}

	reqs := make([]CreatePostRequest, 0, len(posts))
	for _, fp := range posts {
		p, err := adaptFallbackPost(fp)
		if err != nil {
			return nil, err
		}

		reqs = append(reqs, CreatePostRequest{
			Title:         fp.Title,
			Content:       fp.Content,
			Excerpt:       fp.Excerpt,
			FeaturedImage: fp.FeaturedImage,
			Tags:          fp.Tags,
			PublishedAt:   p.PublishedAt,
			UpdatedAt:     p.UpdatedAt,
		})
	}

	return reqs, nil
}
