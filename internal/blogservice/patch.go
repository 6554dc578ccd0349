package blogservice

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/zentinela/blog/internal/common"
)

// Field is one entry of a partial update. The zero value means the field was
// omitted; Null marks an explicit JSON null.
type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func Some[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

func Clear[T any]() Field[T] {
	return Field[T]{Set: true, Null: true}
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.Null = true
		return nil
	}
	return json.Unmarshal(data, &f.Value)
}

type PostPatch struct {
	Title         Field[string]   `json:"title"`
	Content       Field[string]   `json:"content"`
	Excerpt       Field[string]   `json:"excerpt"`
	FeaturedImage Field[string]   `json:"featured_image"`
	Tags          Field[[]string] `json:"tags"`
}

// applyPatch merges p into post field by field and validates the result. Title and
// content cannot be cleared; excerpt and featured image are cleared by null or "".
// The slug is re-derived only when the title actually changes.
func applyPatch(post *Post, p PostPatch) error {
	v := common.NewValidator()

	if p.Title.Set {
		title := strings.TrimSpace(p.Title.Value)
		v.Check(!p.Title.Null && title != "", "title", "must be provided")
		if title != "" && title != post.Title {
			post.Title = title
			post.Slug = Slugify(title)
		}
	}

	if p.Content.Set {
		v.Check(!p.Content.Null && p.Content.Value != "", "content", "must be provided")
		if p.Content.Value != "" {
			post.Content = sanitizeMarkdown(p.Content.Value)
		}
	}

	if p.Excerpt.Set {
		post.Excerpt = optionalString(p.Excerpt)
	}

	if p.FeaturedImage.Set {
		post.FeaturedImage = optionalString(p.FeaturedImage)
	}

	if p.Tags.Set {
		post.Tags = normalizeTags(p.Tags.Value)
	}

	if !v.Valid() {
		return v.ValidationError()
	}

	validatePost(v, post)
	if !v.Valid() {
		return v.ValidationError()
	}

	return nil
}

func optionalString(f Field[string]) *string {
	if f.Null || f.Value == "" {
		return nil
	}
	s := f.Value
	return &s
}
