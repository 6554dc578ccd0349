package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundErrorResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedErrorResponse)

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthCheckHandler)

	// public reads
	router.HandlerFunc(http.MethodGet, "/v1/posts", app.listPostsHandler)
	router.HandlerFunc(http.MethodGet, "/v1/posts/popular", app.popularPostsHandler)
	router.HandlerFunc(http.MethodGet, "/v1/posts/slug/:slug", app.getPostBySlugHandler)

	// admin
	router.HandlerFunc(http.MethodPost, "/v1/posts", app.requireAdmin(app.createPostHandler))
	router.HandlerFunc(http.MethodGet, "/v1/posts/id/:id", app.requireAdmin(app.getPostByIDHandler))
	router.HandlerFunc(http.MethodPatch, "/v1/posts/id/:id", app.requireAdmin(app.updatePostHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/posts/id/:id", app.requireAdmin(app.deletePostHandler))

	return app.recoverPanic(app.logRequest(app.rateLimit(router)))
}
