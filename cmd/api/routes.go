// cmd/api/routes.go
package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// routes registers all HTTP endpoints and returns the configured router wrapped
// in the middleware chain.
//
// Middleware chain (outermost → innermost):
//
//	recoverPanic → requestID → logRequest → rateLimit → router
//
// Public endpoints:
//
//	GET    /v1/healthcheck                – service status
//	GET    /v1/forms/:form                – field list and debounce delay for a form
//	POST   /v1/forms/:form/validate       – validate one field as the visitor types
//	POST   /v1/contact                    – submit the contact form
//	GET    /v1/documents                  – list downloadable documents
//	POST   /v1/documents/:id/download     – submit the download form, receive the file URL
//	GET    /v1/posts                      – list published blog posts
//	GET    /v1/posts/:slug                – read one published post
//
// Admin endpoints (bearer token):
//
//	GET    /v1/admin/posts                – list all posts, drafts included
//	POST   /v1/admin/posts                – create a post
//	GET    /v1/admin/posts/:id            – read any post
//	PATCH  /v1/admin/posts/:id            – partially update a post
//	DELETE /v1/admin/posts/:id            – delete a post
//	POST   /v1/admin/documents            – add a document
//	DELETE /v1/admin/documents/:id        – delete a document
//	GET    /v1/admin/contacts             – list contact leads
//	GET    /v1/admin/downloads            – list download leads
func (app *applicationDependencies) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedResponse)

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthcheckHandler)

	router.HandlerFunc(http.MethodGet, "/v1/forms/:form", app.showFormHandler)
	router.HandlerFunc(http.MethodPost, "/v1/forms/:form/validate", app.validateFieldHandler)
	router.HandlerFunc(http.MethodPost, "/v1/contact", app.createContactHandler)

	router.HandlerFunc(http.MethodGet, "/v1/documents", app.listDocumentsHandler)
	router.HandlerFunc(http.MethodPost, "/v1/documents/:id/download", app.createDownloadHandler)

	router.HandlerFunc(http.MethodGet, "/v1/posts", app.listPostsHandler)
	router.HandlerFunc(http.MethodGet, "/v1/posts/:slug", app.showPostHandler)

	router.HandlerFunc(http.MethodGet, "/v1/admin/posts", app.requireAdmin(app.listAllPostsHandler))
	router.HandlerFunc(http.MethodPost, "/v1/admin/posts", app.requireAdmin(app.createPostHandler))
	router.HandlerFunc(http.MethodGet, "/v1/admin/posts/:id", app.requireAdmin(app.showAnyPostHandler))
	router.HandlerFunc(http.MethodPatch, "/v1/admin/posts/:id", app.requireAdmin(app.updatePostHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/admin/posts/:id", app.requireAdmin(app.deletePostHandler))

	router.HandlerFunc(http.MethodPost, "/v1/admin/documents", app.requireAdmin(app.createDocumentHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/admin/documents/:id", app.requireAdmin(app.deleteDocumentHandler))

	router.HandlerFunc(http.MethodGet, "/v1/admin/contacts", app.requireAdmin(app.listContactsHandler))
	router.HandlerFunc(http.MethodGet, "/v1/admin/downloads", app.requireAdmin(app.listDownloadsHandler))

	return app.recoverPanic(app.requestID(app.logRequest(app.rateLimit(router))))
}
