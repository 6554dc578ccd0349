package blogservice

import (
	"github.com/google/uuid"
	"github.com/zentinela/blog/internal/common"
)

const (
	maxTitleLength   = 200
	maxExcerptLength = 500
	maxTags          = 20
	maxTagLength     = 50
)

func validateTitle(v *common.Validator, title string) {
	v.Check(title != "", "title", "must be provided")
	v.Check(v.CheckStringLength(title, 1, maxTitleLength), "title", "must not be more than 200 characters long")
	v.Check(Slugify(title) != "", "title", "must contain at least one letter or number")
}

func validateContent(v *common.Validator, content string) {
	v.Check(content != "", "content", "must be provided")
}

func validateExcerpt(v *common.Validator, excerpt *string) {
	if excerpt == nil {
		return
	}
	v.Check(v.CheckStringLength(*excerpt, 0, maxExcerptLength), "excerpt", "must not be more than 500 characters long")
}

func validateFeaturedImage(v *common.Validator, image *string) {
	if image == nil {
		return
	}
	v.Check(v.CheckImageRef(*image), "featured_image", "must be an http(s) URL or a site-relative path")
}

func validateTags(v *common.Validator, tags []string) {
	v.Check(len(tags) <= maxTags, "tags", "must not contain more than 20 tags")
	for _, tag := range tags {
		v.Check(v.CheckStringLength(tag, 1, maxTagLength), "tags", "each tag must be between 1 and 50 characters long")
	}
}

func validateAuthorID(v *common.Validator, id uuid.UUID) {
	v.Check(id != uuid.Nil, "author_id", "must be provided")
}

func validateID(v *common.Validator, id uuid.UUID) {
	v.Check(id != uuid.Nil, "id", "must be provided")
}

// validatePost checks a fully merged post before it is written.
func validatePost(v *common.Validator, post *Post) {
	validateTitle(v, post.Title)
	validateContent(v, post.Content)
	validateExcerpt(v, post.Excerpt)
	validateFeaturedImage(v, post.FeaturedImage)
	validateTags(v, post.Tags)
}
