package main

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/zentinela/blog/internal/blogservice"
	"github.com/zentinela/blog/internal/common"
)

func (app *application) listPostsHandler(w http.ResponseWriter, r *http.Request) {
	key := common.CacheKeyPosts()
	if posts, ok := app.cache.Get(key); ok {
		app.writePosts(w, r, posts)
		return
	}

	posts, src, err := app.blogService.ListPostsFromSource(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.cachePosts(key, posts, src)
	app.writePosts(w, r, posts)
}

func (app *application) popularPostsHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := app.readIntQuery(r, "limit")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	key := common.CacheKeyPopularPosts(limit)
	if posts, ok := app.cache.Get(key); ok {
		app.writePosts(w, r, posts)
		return
	}

	posts, src, err := app.blogService.GetPopularPostsFromSource(r.Context(), limit)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.cachePosts(key, posts, src)
	app.writePosts(w, r, posts)
}

// cachePosts keeps only results read from the primary store, so an outage is not
// served from the cache after the database is back.
func (app *application) cachePosts(key string, posts []blogservice.PostWithAuthor, src blogservice.ReadSource) {
	if src.Degraded() {
		return
	}
	app.cache.Set(key, posts)
}

func (app *application) writePosts(w http.ResponseWriter, r *http.Request, posts any) {
	err := app.writeJSON(w, http.StatusOK, envelope{"posts": posts}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// getPostBySlugHandler is never cached: every hit counts as a view.
func (app *application) getPostBySlugHandler(w http.ResponseWriter, r *http.Request) {
	slug := app.readStringParam(r, "slug")

	post, err := app.blogService.GetPostBySlug(r.Context(), slug)
	if err != nil {
		switch {
		case errors.Is(err, blogservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"post": post}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) getPostByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readUUIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	post, err := app.blogService.GetPostByID(r.Context(), id)
	if err != nil {
		app.writeServiceError(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"post": post}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

type createPostRequest struct {
	AuthorID      uuid.UUID `json:"author_id"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	Excerpt       string    `json:"excerpt"`
	FeaturedImage string    `json:"featured_image"`
	Tags          []string  `json:"tags"`
}

func (app *application) createPostHandler(w http.ResponseWriter, r *http.Request) {
	var input createPostRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	req := &blogservice.CreatePostRequest{
		Title:         input.Title,
		Content:       input.Content,
		Excerpt:       input.Excerpt,
		FeaturedImage: input.FeaturedImage,
		Tags:          input.Tags,
	}

	post, err := app.blogService.CreatePost(r.Context(), input.AuthorID, req)
	if err != nil {
		app.writeServiceError(w, r, err)
		return
	}

	app.cache.Flush()

	headers := make(http.Header)
	headers.Set("Location", "/v1/posts/slug/"+post.Slug)

	err = app.writeJSON(w, http.StatusCreated, envelope{"post": post}, headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) updatePostHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readUUIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	var patch blogservice.PostPatch
	err = app.parseJSON(w, r, &patch)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	post, err := app.blogService.UpdatePost(r.Context(), id, patch)
	if err != nil {
		app.writeServiceError(w, r, err)
		return
	}

	app.cache.Flush()

	err = app.writeJSON(w, http.StatusOK, envelope{"post": post}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) deletePostHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readUUIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	deleted, err := app.blogService.DeletePost(r.Context(), id)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	if !deleted {
		app.notFoundErrorResponse(w, r)
		return
	}

	app.cache.Flush()

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "post deleted"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

// writeServiceError maps the errors of the admin operations to responses.
func (app *application) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr common.ValidationError

	switch {
	case errors.Is(err, blogservice.ErrRecordNotFound):
		app.notFoundErrorResponse(w, r)
	case errors.Is(err, blogservice.ErrDuplicateSlug):
		app.failedValidationErrorResponse(w, r, map[string]string{"title": "a post with this title already exists"})
	case errors.Is(err, blogservice.ErrAuthorForeignKey):
		app.failedValidationErrorResponse(w, r, map[string]string{"author_id": "does not exist"})
	case errors.As(err, &validationErr):
		app.failedValidationErrorResponse(w, r, validationErr.Errors)
	default:
		app.serverErrorResponse(w, r, err)
	}
}
