package blogservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrRecordNotFound   = errors.New("record not found")
	ErrDuplicateSlug    = errors.New("a post with this slug already exists")
	ErrAuthorForeignKey = errors.New("author_id does not exist")
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

func newPostModel(db *sql.DB) *PostModel {
	return &PostModel{db: db}
}

// constraintError reports whether err is a Postgres error with the given code raised by the named constraint.
func constraintError(err error, code pq.ErrorCode, name string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == code && pqErr.Constraint == name
	}

	return false
}

func mapWriteError(err error) error {
	switch {
	case constraintError(err, pqUniqueViolation, "blog_posts_slug_key"):
		return ErrDuplicateSlug
	case constraintError(err, pqForeignKeyViolation, "blog_posts_author_id_fkey"):
		return ErrAuthorForeignKey
	default:
		return err
	}
}

const selectPostWithAuthor = `
	SELECT bp.id, bp.title, bp.slug, bp.excerpt, bp.content, bp.featured_image, bp.author_id,
		bp.published_at, bp.updated_at, bp.tags,
		TRIM(COALESCE(u.first_name, '') || ' ' || COALESCE(u.last_name, '')),
		COALESCE(u.email, ''),
		COALESCE(v.view_count, 0)
	FROM blog_posts bp
	LEFT JOIN users u ON bp.author_id = u.id
	LEFT JOIN blog_post_views v ON bp.id = v.post_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner, p *Post, extra ...any) error {
	dest := []any{
		&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Content, &p.FeaturedImage, &p.AuthorID,
		&p.PublishedAt, &p.UpdatedAt, (*pq.StringArray)(&p.Tags),
	}
	return row.Scan(append(dest, extra...)...)
}

func scanPostWithAuthor(row rowScanner) (*PostWithAuthor, error) {
	var p PostWithAuthor
	err := scanPost(row, &p.Post, &p.AuthorName, &p.AuthorEmail, &p.ViewCount)
	if err != nil {
		return nil, err
	}

	if p.AuthorName == "" {
		p.AuthorName = UnknownAuthor
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}

	return &p, nil
}

func (m *PostModel) queryPostsWithAuthor(ctx context.Context, query string, args ...any) ([]PostWithAuthor, error) {
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []PostWithAuthor{}
	for rows.Next() {
		p, err := scanPostWithAuthor(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return posts, nil
}

// ListPosts returns every post joined with its author, newest published first.
func (m *PostModel) ListPosts(ctx context.Context) ([]PostWithAuthor, error) {
	query := selectPostWithAuthor + `
	ORDER BY bp.published_at DESC`

	return m.queryPostsWithAuthor(ctx, query)
}

func (m *PostModel) GetPostBySlug(ctx context.Context, slug string) (*PostWithAuthor, error) {
	query := selectPostWithAuthor + `
	WHERE bp.slug = $1`

	p, err := scanPostWithAuthor(m.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return p, nil
}

// GetPopularPosts orders by view count, treating posts without a view record as zero,
// then by publication date.
func (m *PostModel) GetPopularPosts(ctx context.Context, limit int) ([]PostWithAuthor, error) {
	query := selectPostWithAuthor + `
	ORDER BY COALESCE(v.view_count, 0) DESC, bp.published_at DESC
	LIMIT $1`

	return m.queryPostsWithAuthor(ctx, query, limit)
}

func (m *PostModel) getPostByID(ctx context.Context, id uuid.UUID) (*Post, error) {
	query := `
		SELECT id, title, slug, excerpt, content, featured_image, author_id, published_at, updated_at, tags
		FROM blog_posts
		WHERE id = $1`

	var p Post
	err := scanPost(m.db.QueryRowContext(ctx, query, id), &p)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &p, nil
}

func (m *PostModel) insertPost(ctx context.Context, p *Post) error {
	query := `
		INSERT INTO blog_posts (title, slug, excerpt, content, featured_image, author_id, tags, published_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, published_at, updated_at`

	args := []any{
		p.Title,
		p.Slug,
		p.Excerpt,
		p.Content,
		p.FeaturedImage,
		p.AuthorID,
		pq.StringArray(p.Tags),
		p.PublishedAt,
		p.UpdatedAt,
	}

	err := m.db.QueryRowContext(ctx, query, args...).Scan(&p.ID, &p.PublishedAt, &p.UpdatedAt)
	if err != nil {
		return mapWriteError(err)
	}

	return nil
}

// updatePost loads the post under a row lock, lets merge mutate it, then writes every
// column back. updatedAt always replaces the stored updated_at.
func (m *PostModel) updatePost(ctx context.Context, id uuid.UUID, updatedAt time.Time, merge func(*Post) error) (*Post, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	selectQuery := `
		SELECT id, title, slug, excerpt, content, featured_image, author_id, published_at, updated_at, tags
		FROM blog_posts
		WHERE id = $1
		FOR UPDATE`

	var p Post
	err = scanPost(tx.QueryRowContext(ctx, selectQuery, id), &p)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	if err := merge(&p); err != nil {
		return nil, err
	}

	updateQuery := `
		UPDATE blog_posts
		SET title = $1, slug = $2, excerpt = $3, content = $4, featured_image = $5, tags = $6, updated_at = $7
		WHERE id = $8
		RETURNING updated_at`

	args := []any{
		p.Title,
		p.Slug,
		p.Excerpt,
		p.Content,
		p.FeaturedImage,
		pq.StringArray(p.Tags),
		updatedAt,
		p.ID,
	}

	err = tx.QueryRowContext(ctx, updateQuery, args...).Scan(&p.UpdatedAt)
	if err != nil {
		return nil, mapWriteError(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &p, nil
}

// deletePost removes the post and returns its slug. The view record goes with it
// through ON DELETE CASCADE.
func (m *PostModel) deletePost(ctx context.Context, id uuid.UUID) (string, error) {
	query := `
		DELETE FROM blog_posts
		WHERE id = $1
		RETURNING slug`

	var slug string
	err := m.db.QueryRowContext(ctx, query, id).Scan(&slug)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return "", ErrRecordNotFound
		default:
			return "", err
		}
	}

	return slug, nil
}

// RecordView creates the view record with a count of one, or bumps the existing one.
func (m *PostModel) RecordView(ctx context.Context, postID uuid.UUID, at time.Time) error {
	query := `
		INSERT INTO blog_post_views (post_id, view_count, last_viewed_at)
		VALUES ($1, 1, $2)
		ON CONFLICT (post_id) DO UPDATE
		SET view_count = blog_post_views.view_count + 1, last_viewed_at = EXCLUDED.last_viewed_at`

	_, err := m.db.ExecContext(ctx, query, postID, at)
	if err != nil {
		return fmt.Errorf("record view for post %s: %w", postID, err)
	}

	return nil
}

func (m *PostModel) getViewRecord(ctx context.Context, postID uuid.UUID) (*ViewRecord, error) {
	query := `
		SELECT post_id, view_count, last_viewed_at
		FROM blog_post_views
		WHERE post_id = $1`

	var r ViewRecord
	err := m.db.QueryRowContext(ctx, query, postID).Scan(&r.PostID, &r.ViewCount, &r.LastViewedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &r, nil
}
