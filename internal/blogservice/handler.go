package blogservice

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zentinela/blog/internal/common"
)

const (
	DefaultPopularLimit = 5
	MaxPopularLimit     = 50
)

// NewBlogService wires the Postgres model as primary source and view recorder.
// fallback may be nil, in which case a failed read goes straight to the read policy;
// mb may be nil to disable post events.
func NewBlogService(db *sql.DB, fallback PostReader, mb common.MessageProducer, policy ReadPolicy, logger *slog.Logger) *BlogService {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	m := newPostModel(db)

	return &BlogService{
		m:        m,
		primary:  m,
		fallback: fallback,
		views:    m,
		policy:   policy,
		mb:       mb,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ListPosts returns every post, newest first. Read failures fall back to the
// fallback source and then to the read policy.
func (s *BlogService) ListPosts(ctx context.Context) ([]PostWithAuthor, error) {
	posts, _, err := s.ListPostsFromSource(ctx)
	return posts, err
}

// ListPostsFromSource is ListPosts that also reports which source served the posts,
// so callers can avoid caching a degraded result.
func (s *BlogService) ListPostsFromSource(ctx context.Context) ([]PostWithAuthor, ReadSource, error) {
	read := func(r PostReader) ([]PostWithAuthor, error) {
		return r.ListPosts(ctx)
	}

	posts, src, err := readWithFallback(s, "list posts", read, read)
	if err != nil {
		return nil, src, err
	}

	if posts == nil {
		posts = []PostWithAuthor{}
	}

	return posts, src, nil
}

// GetPostBySlug returns the post and records a view when it was served by the primary
// store. A failed view update is logged and does not fail the read.
func (s *BlogService) GetPostBySlug(ctx context.Context, slug string) (*PostWithAuthor, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrRecordNotFound
	}

	primary := func(r PostReader) (*PostWithAuthor, error) {
		post, err := r.GetPostBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}

		if err := s.IncrementViewCount(ctx, post.ID); err != nil {
			s.logger.Error("failed to increment view count", slog.String("slug", slug), slog.String("error", err.Error()))
		}

		return post, nil
	}
	fallback := func(r PostReader) (*PostWithAuthor, error) {
		return r.GetPostBySlug(ctx, slug)
	}

	post, _, err := readWithFallback(s, "get post by slug", primary, fallback)
	if err != nil {
		return nil, err
	}

	if post == nil {
		return nil, ErrRecordNotFound
	}

	return post, nil
}

// GetPopularPosts returns at most limit posts ordered by view count, then by publication
// date. A limit below one means DefaultPopularLimit.
func (s *BlogService) GetPopularPosts(ctx context.Context, limit int) ([]PostWithAuthor, error) {
	posts, _, err := s.GetPopularPostsFromSource(ctx, limit)
	return posts, err
}

func (s *BlogService) GetPopularPostsFromSource(ctx context.Context, limit int) ([]PostWithAuthor, ReadSource, error) {
	if limit < 1 {
		limit = DefaultPopularLimit
	}

	if limit > MaxPopularLimit {
		limit = MaxPopularLimit
	}

	read := func(r PostReader) ([]PostWithAuthor, error) {
		return r.GetPopularPosts(ctx, limit)
	}

	posts, src, err := readWithFallback(s, "get popular posts", read, read)
	if err != nil {
		return nil, src, err
	}

	if posts == nil {
		posts = []PostWithAuthor{}
	}

	return posts, src, nil
}

// IncrementViewCount creates the post's view record with a count of one, or increments
// the existing count and refreshes its last-viewed time.
func (s *BlogService) IncrementViewCount(ctx context.Context, postID uuid.UUID) error {
	return s.views.RecordView(ctx, postID, s.now())
}

// GetViewRecord returns the view statistics of a post, ErrRecordNotFound if it was never viewed.
func (s *BlogService) GetViewRecord(ctx context.Context, postID uuid.UUID) (*ViewRecord, error) {
	return s.m.getViewRecord(ctx, postID)
}

// GetPostByID reads straight from the primary store for the admin editor. No view is
// recorded and errors are returned as is.
func (s *BlogService) GetPostByID(ctx context.Context, id uuid.UUID) (*Post, error) {
	v := common.NewValidator()
	validateID(v, id)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.getPostByID(ctx, id)
}

type CreatePostRequest struct {
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Excerpt       string   `json:"excerpt"`
	FeaturedImage string   `json:"featured_image"`
	Tags          []string `json:"tags"`
	// PublishedAt and UpdatedAt keep the dates of imported posts. Zero means now;
	// an UpdatedAt before PublishedAt is ignored.
	PublishedAt time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

func (req *CreatePostRequest) timestamps(now time.Time) (time.Time, time.Time) {
	published := now
	if !req.PublishedAt.IsZero() {
		published = req.PublishedAt.UTC()
	}

	updated := published
	if req.UpdatedAt.After(published) {
		updated = req.UpdatedAt.UTC()
	}

	return published, updated
}

// CreatePost publishes a new post by authorID. The slug is derived from the title; a
// title whose slug is already taken fails with ErrDuplicateSlug.
func (s *BlogService) CreatePost(ctx context.Context, authorID uuid.UUID, req *CreatePostRequest) (*Post, error) {
	publishedAt, updatedAt := req.timestamps(s.now())

	post := &Post{
		Title:         strings.TrimSpace(req.Title),
		Excerpt:       nonEmpty(req.Excerpt),
		Content:       sanitizeMarkdown(req.Content),
		FeaturedImage: nonEmpty(req.FeaturedImage),
		AuthorID:      &authorID,
		PublishedAt:   publishedAt,
		UpdatedAt:     updatedAt,
		Tags:          normalizeTags(req.Tags),
	}
	post.Slug = Slugify(post.Title)

	v := common.NewValidator()
	validateAuthorID(v, authorID)
	validatePost(v, post)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if err := s.m.insertPost(ctx, post); err != nil {
		return nil, err
	}

	s.publish(ctx, common.PostCreatedKey, "created", post.ID, post.Slug)

	return post, nil
}

// UpdatePost applies a partial update. Omitted fields are left untouched and updated_at is
// always refreshed. Returns ErrRecordNotFound when the post does not exist.
func (s *BlogService) UpdatePost(ctx context.Context, id uuid.UUID, patch PostPatch) (*Post, error) {
	v := common.NewValidator()
	validateID(v, id)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	var previousSlug string
	post, err := s.m.updatePost(ctx, id, s.now(), func(p *Post) error {
		previousSlug = p.Slug
		return applyPatch(p, patch)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, common.PostUpdatedKey, "updated", post.ID, post.Slug)
	if previousSlug != post.Slug {
		s.logger.Info("post slug changed", slog.String("from", previousSlug), slog.String("to", post.Slug))
	}

	return post, nil
}

// DeletePost removes a post and its view record. It returns false, and changes nothing,
// when the post does not exist.
func (s *BlogService) DeletePost(ctx context.Context, id uuid.UUID) (bool, error) {
	slug, err := s.m.deletePost(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, ErrRecordNotFound):
			return false, nil
		default:
			return false, err
		}
	}

	s.publish(ctx, common.PostDeletedKey, "deleted", id, slug)

	return true, nil
}
