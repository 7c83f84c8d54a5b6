// cmd/api/handlers.go
// This file contains the handlers for the public lead forms (contact and
// document download), their live field validation, and the admin listings
// of captured leads.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/aoideee/dronesite/internal/data"
	"github.com/aoideee/dronesite/internal/mailer"
	"github.com/aoideee/dronesite/internal/validator"
)

var leadSortSafeList = []string{"-created_at", "created_at", "-id", "id", "name", "-name"}

// healthcheckHandler handles GET /v1/healthcheck.
func (app *applicationDependencies) healthcheckHandler(w http.ResponseWriter, r *http.Request) {
	env := envelope{
		"status": "available",
		"system_info": map[string]string{
			"environment": app.config.environment,
			"version":     appVersion,
		},
	}
	err := app.writeJSON(w, http.StatusOK, env, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// submissionForm returns a form that validates every change immediately.
// Requests carry the whole form at once, so there is nothing to debounce.
func (app *applicationDependencies) submissionForm(fields []validator.Field) (*validator.Form, error) {
	return validator.NewForm(fields, validator.WithDelay(0))
}

// readFormParam resolves the ":form" URL parameter to its field list.
func readFormParam(r *http.Request) (string, []validator.Field, bool) {
	name := httprouter.ParamsFromContext(r.Context()).ByName("form")
	fields, ok := validator.FormFields[name]
	return name, fields, ok
}

// showFormHandler handles GET /v1/forms/:form.
// It tells the front-end which fields the form has and how long to debounce.
func (app *applicationDependencies) showFormHandler(w http.ResponseWriter, r *http.Request) {
	name, fields, ok := readFormParam(r)
	if !ok {
		app.notFoundResponse(w, r)
		return
	}

	form := map[string]any{
		"name":        name,
		"fields":      fields,
		"debounce_ms": app.config.forms.debounce.Milliseconds(),
	}
	err := app.writeJSON(w, http.StatusOK, envelope{"form": form}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// validateFieldHandler handles POST /v1/forms/:form/validate.
// It runs the transformer and the field's rule and returns the normalized
// value together with the message ("" when valid). A failing rule is still a
// 200: the request itself succeeded.
func (app *applicationDependencies) validateFieldHandler(w http.ResponseWriter, r *http.Request) {
	_, fields, ok := readFormParam(r)
	if !ok {
		app.notFoundResponse(w, r)
		return
	}

	var input struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}
	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	field, err := validator.ParseField(input.Field, fields)
	if err != nil {
		app.failedValidationResponse(w, r, map[string]string{"field": "is not part of this form"})
		return
	}

	form, err := app.submissionForm(fields)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	defer form.Close()

	err = form.ChangeImmediate(field, input.Value)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	result := map[string]string{
		"field": string(field),
		"value": form.Value(field),
		"error": form.Errors()[field],
	}
	err = app.writeJSON(w, http.StatusOK, envelope{"result": result}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// createContactHandler handles POST /v1/contact.
// The whole form is validated at once; on success the lead is stored and the
// sales inbox is notified in the background.
func (app *applicationDependencies) createContactHandler(w http.ResponseWriter, r *http.Request) {
	var input data.ContactInput
	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	form, err := app.submissionForm(validator.ContactFields)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	defer form.Close()

	if err = form.Load(input.Values()); err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	if !form.ValidateAll() {
		app.invalidFormResponse(w, r, form.Errors())
		return
	}

	contact := data.NewContact(form.Values())
	err = app.models.Contacts.Insert(r.Context(), contact)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.sendNotification(func() (mailer.Message, error) {
		return mailer.ContactNotification(app.config.notify.recipients, contact)
	})

	err = app.writeJSON(w, http.StatusCreated, envelope{"contact": contact}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// createDownloadHandler handles POST /v1/documents/:id/download.
// The file URL is only returned once the visitor's details are recorded.
func (app *applicationDependencies) createDownloadHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	var input data.DownloadInput
	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	doc, err := app.models.Documents.Get(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	form, err := app.submissionForm(validator.DownloadFields)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	defer form.Close()

	if err = form.Load(input.Values()); err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	if !form.ValidateAll() {
		app.invalidFormResponse(w, r, form.Errors())
		return
	}

	req := data.NewDownloadRequest(doc.ID, form.Values())
	err = app.models.Downloads.Insert(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	app.sendNotification(func() (mailer.Message, error) {
		return mailer.DownloadNotification(app.config.notify.recipients, req, doc)
	})

	download := map[string]any{
		"request_id":  req.ID,
		"document_id": doc.ID,
		"title":       doc.Title,
		"file_url":    doc.FileURL,
	}
	err = app.writeJSON(w, http.StatusCreated, envelope{"download": download}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// sendNotification renders and sends a lead email in the background. Failures
// are logged; the visitor's submission has already been stored.
func (app *applicationDependencies) sendNotification(build func() (mailer.Message, error)) {
	if len(app.config.notify.recipients) == 0 {
		return
	}

	app.background(func() {
		msg, err := build()
		if err != nil {
			app.logger.Error(fmt.Sprintf("render notification: %v", err))
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := app.mailer.Send(ctx, msg); err != nil {
			app.logger.Error(err.Error(), "subject", msg.Subject)
		}
	})
}

// listContactsHandler handles GET /v1/admin/contacts.
func (app *applicationDependencies) listContactsHandler(w http.ResponseWriter, r *http.Request) {
	v := validator.New()
	filters := app.readFilters(r.URL.Query(), v, leadSortSafeList...)
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	contacts, metadata, err := app.models.Contacts.GetAll(r.Context(), filters)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"contacts": contacts, "metadata": metadata}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// listDownloadsHandler handles GET /v1/admin/downloads.
func (app *applicationDependencies) listDownloadsHandler(w http.ResponseWriter, r *http.Request) {
	v := validator.New()
	filters := app.readFilters(r.URL.Query(), v, leadSortSafeList...)
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	downloads, metadata, err := app.models.Downloads.GetAll(r.Context(), filters)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"downloads": downloads, "metadata": metadata}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
