// cmd/api/content.go
// Handlers for the blog and the document catalogue. Reads are public; writes
// sit behind requireAdmin.
package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/aoideee/dronesite/internal/data"
	"github.com/aoideee/dronesite/internal/validator"
)

var (
	postSortSafeList     = []string{"-created_at", "created_at", "title", "-title", "-updated_at", "updated_at"}
	documentSortSafeList = []string{"-created_at", "created_at", "title", "-title"}
)

// listDocumentsHandler handles GET /v1/documents.
func (app *applicationDependencies) listDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	v := validator.New()
	filters := app.readFilters(r.URL.Query(), v, documentSortSafeList...)
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	documents, metadata, err := app.models.Documents.GetAll(r.Context(), filters)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"documents": documents, "metadata": metadata}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// createDocumentHandler handles POST /v1/admin/documents.
func (app *applicationDependencies) createDocumentHandler(w http.ResponseWriter, r *http.Request) {
	var input data.DocumentInput
	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	doc := &data.Document{
		Title:       input.Title,
		Description: input.Description,
		FileURL:     input.FileURL,
	}

	v := validator.New()
	if data.ValidateDocument(v, doc); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	err = app.models.Documents.Insert(r.Context(), doc)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/v1/documents/%d", doc.ID))

	err = app.writeJSON(w, http.StatusCreated, envelope{"document": doc, "file_url": doc.FileURL}, headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// deleteDocumentHandler handles DELETE /v1/admin/documents/:id.
func (app *applicationDependencies) deleteDocumentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	err = app.models.Documents.Delete(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "document successfully deleted"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *applicationDependencies) listPosts(w http.ResponseWriter, r *http.Request, publishedOnly bool) {
	v := validator.New()
	filters := app.readFilters(r.URL.Query(), v, postSortSafeList...)
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	posts, metadata, err := app.models.Posts.GetAll(r.Context(), publishedOnly, filters)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"posts": posts, "metadata": metadata}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// listPostsHandler handles GET /v1/posts (published only).
func (app *applicationDependencies) listPostsHandler(w http.ResponseWriter, r *http.Request) {
	app.listPosts(w, r, true)
}

// listAllPostsHandler handles GET /v1/admin/posts (drafts included).
func (app *applicationDependencies) listAllPostsHandler(w http.ResponseWriter, r *http.Request) {
	app.listPosts(w, r, false)
}

// showPostHandler handles GET /v1/posts/:slug.
func (app *applicationDependencies) showPostHandler(w http.ResponseWriter, r *http.Request) {
	slug := httprouter.ParamsFromContext(r.Context()).ByName("slug")

	post, err := app.models.Posts.GetBySlug(r.Context(), slug)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"post": post}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// showAnyPostHandler handles GET /v1/admin/posts/:id.
func (app *applicationDependencies) showAnyPostHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	post, err := app.models.Posts.Get(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"post": post}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// createPostHandler handles POST /v1/admin/posts.
// Editor HTML is sanitized before it is validated and stored; a missing slug
// is derived from the title.
func (app *applicationDependencies) createPostHandler(w http.ResponseWriter, r *http.Request) {
	var input data.CreatePostInput
	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	post := &data.Post{
		Title:     input.Title,
		Slug:      input.Slug,
		Excerpt:   input.Excerpt,
		Content:   data.SanitizeHTML(input.Content),
		Published: input.Published,
	}
	if post.Slug == "" {
		post.Slug = data.Slugify(post.Title)
	}

	v := validator.New()
	if data.ValidatePost(v, post); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	err = app.models.Posts.Insert(r.Context(), post)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrDuplicateSlug):
			app.duplicateSlugResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/v1/admin/posts/%d", post.ID))

	err = app.writeJSON(w, http.StatusCreated, envelope{"post": post}, headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// updatePostHandler handles PATCH /v1/admin/posts/:id.
// Only the fields present in the body are changed.
func (app *applicationDependencies) updatePostHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	post, err := app.models.Posts.Get(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	var input data.UpdatePostInput
	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	input.Apply(post)

	v := validator.New()
	if data.ValidatePost(v, post); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	err = app.models.Posts.Update(r.Context(), post)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		case errors.Is(err, data.ErrDuplicateSlug):
			app.duplicateSlugResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"post": post}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// deletePostHandler handles DELETE /v1/admin/posts/:id.
func (app *applicationDependencies) deletePostHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	err = app.models.Posts.Delete(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "post successfully deleted"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
