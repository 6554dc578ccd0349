package blogservice

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/zentinela/blog/internal/common"
)

// UnknownAuthor is the display name used when a post has no resolvable author.
const UnknownAuthor = "Unknown"

type Post struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
	Slug  string    `json:"slug"`
	// Excerpt and FeaturedImage are nil when not set.
	Excerpt *string `json:"excerpt"`
	// Content is stored in Markdown format.
	Content       string     `json:"content"`
	FeaturedImage *string    `json:"featured_image"`
	AuthorID      *uuid.UUID `json:"author_id"`
	PublishedAt   time.Time  `json:"published_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	Tags          []string   `json:"tags"`
}

type PostWithAuthor struct {
	Post
	AuthorName  string `json:"author_name"`
	AuthorEmail string `json:"author_email"`
	// ViewCount is the stored count at read time; the fallback catalog has none.
	ViewCount int64 `json:"view_count,omitempty"`
}

type ViewRecord struct {
	PostID       uuid.UUID `json:"post_id"`
	ViewCount    int64     `json:"view_count"`
	LastViewedAt time.Time `json:"last_viewed_at"`
}

// PostReader is a source of published posts. The Postgres model and the in-memory
// fallback catalog both implement it.
type PostReader interface {
	ListPosts(ctx context.Context) ([]PostWithAuthor, error)
	GetPostBySlug(ctx context.Context, slug string) (*PostWithAuthor, error)
	GetPopularPosts(ctx context.Context, limit int) ([]PostWithAuthor, error)
}

type ViewRecorder interface {
	RecordView(ctx context.Context, postID uuid.UUID, at time.Time) error
}

type PostModel struct {
	db *sql.DB
}

type BlogService struct {
	m        *PostModel
	primary  PostReader
	fallback PostReader
	views    ViewRecorder
	policy   ReadPolicy
	mb       common.MessageProducer
	logger   *slog.Logger
	now      func() time.Time
}
