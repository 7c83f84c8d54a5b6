package main

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aoideee/dronesite/internal/data"
	"github.com/aoideee/dronesite/internal/validator"
)

func TestHealthcheck(t *testing.T) {
	ta := newTestApp(t)

	res := ta.do(t, http.MethodGet, "/v1/healthcheck", nil, false)
	assert.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, "available", res.body["status"])
	assert.NotEmpty(t, res.header.Get("X-Request-ID"))
}

func TestCreateContact(t *testing.T) {
	ta := newTestApp(t)

	res := ta.do(t, http.MethodPost, "/v1/contact", map[string]string{
		"name":    "An Nguyen",
		"email":   "an@test.com",
		"phone":   "912 345 678",
		"service": "Phun thuốc",
		"message": "Xin chao",
	}, false)
	require.Equal(t, http.StatusCreated, res.status, res.body)

	ta.wg.Wait()

	require.Len(t, ta.contacts.rows, 1)
	assert.Equal(t, "0912345678", ta.contacts.rows[0].Phone)
	sent := ta.mail.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"sales@example.vn"}, sent[0].To)
	assert.Contains(t, sent[0].Subject, "An Nguyen")
}

func TestCreateContactInvalid(t *testing.T) {
	ta := newTestApp(t)

	res := ta.do(t, http.MethodPost, "/v1/contact", map[string]string{
		"name":    "A",
		"email":   "bad",
		"phone":   "123",
		"message": "",
	}, false)
	require.Equal(t, http.StatusUnprocessableEntity, res.status)

	assert.Equal(t, map[string]any{
		"name":    validator.MsgNameTooShort,
		"email":   validator.MsgEmailInvalid,
		"phone":   validator.MsgPhoneInvalid,
		"message": validator.MsgMessageRequired,
	}, res.body["error"])
	assert.Empty(t, ta.contacts.rows)
	assert.Empty(t, ta.mail.Sent())
}

func TestCreateContactBadJSON(t *testing.T) {
	ta := newTestApp(t)

	res := ta.do(t, http.MethodPost, "/v1/contact", `{"name": "An", "fax": "1"}`, false)
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, `body contains unknown key "fax"`, res.body["error"])

	res = ta.do(t, http.MethodPost, "/v1/contact", ``, false)
	assert.Equal(t, "body must not be empty", res.body["error"])
}

func TestValidateField(t *testing.T) {
	ta := newTestApp(t)

	res := ta.do(t, http.MethodPost, "/v1/forms/contact/validate", map[string]string{
		"field": "phone", "value": "912 345 678",
	}, false)
	require.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, map[string]any{"field": "phone", "value": "0912345678", "error": ""}, res.body["result"])

	res = ta.do(t, http.MethodPost, "/v1/forms/download/validate", map[string]string{
		"field": "email", "value": "a@b",
	}, false)
	require.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, validator.MsgEmailInvalid, res.body["result"].(map[string]any)["error"])
}

func TestValidateFieldRejectsForeignField(t *testing.T) {
	ta := newTestApp(t)

	res := ta.do(t, http.MethodPost, "/v1/forms/download/validate", map[string]string{
		"field": "message", "value": "hello",
	}, false)
	assert.Equal(t, http.StatusUnprocessableEntity, res.status)

	res = ta.do(t, http.MethodPost, "/v1/forms/newsletter/validate", map[string]string{
		"field": "email", "value": "a@b.com",
	}, false)
	assert.Equal(t, http.StatusNotFound, res.status)
}

func TestShowForm(t *testing.T) {
	ta := newTestApp(t)

	res := ta.do(t, http.MethodGet, "/v1/forms/download", nil, false)
	require.Equal(t, http.StatusOK, res.status)

	form := res.body["form"].(map[string]any)
	assert.Equal(t, []any{"name", "phone", "email", "company"}, form["fields"])
	assert.EqualValues(t, 200, form["debounce_ms"])
}

func TestCreateDownload(t *testing.T) {
	ta := newTestApp(t)
	doc := &data.Document{Title: "Hồ sơ năng lực", FileURL: "https://cdn.example.vn/profile.pdf"}
	require.NoError(t, ta.documents.Insert(t.Context(), doc))

	res := ta.do(t, http.MethodPost, "/v1/documents/1/download", map[string]string{
		"name": "Trần Bình", "phone": "+84 912 345 678", "email": "binh@test.com",
	}, false)
	require.Equal(t, http.StatusCreated, res.status, res.body)

	download := res.body["download"].(map[string]any)
	assert.Equal(t, "https://cdn.example.vn/profile.pdf", download["file_url"])

	ta.wg.Wait()
	require.Len(t, ta.downloads.rows, 1)
	assert.Equal(t, "84912345678", ta.downloads.rows[0].Phone)
	assert.Len(t, ta.mail.Sent(), 1)
}

func TestCreateDownloadErrors(t *testing.T) {
	ta := newTestApp(t)

	res := ta.do(t, http.MethodPost, "/v1/documents/99/download", map[string]string{
		"name": "Trần Bình", "phone": "0912345678", "email": "binh@test.com",
	}, false)
	assert.Equal(t, http.StatusNotFound, res.status)

	require.NoError(t, ta.documents.Insert(t.Context(), &data.Document{Title: "Bảng giá", FileURL: "https://cdn.example.vn/p.pdf"}))
	res = ta.do(t, http.MethodPost, "/v1/documents/1/download", map[string]string{
		"name": "Trần Bình", "phone": "", "email": "binh@test.com", "company": "AB",
	}, false)
	require.Equal(t, http.StatusUnprocessableEntity, res.status)
	assert.Equal(t, map[string]any{
		"phone":   validator.MsgPhoneRequired,
		"company": validator.MsgCompanyTooShort,
	}, res.body["error"])
}

func TestDocumentListHidesFileURL(t *testing.T) {
	ta := newTestApp(t)
	require.NoError(t, ta.documents.Insert(t.Context(), &data.Document{Title: "Bảng giá", FileURL: "https://cdn.example.vn/p.pdf"}))

	res := ta.do(t, http.MethodGet, "/v1/documents", nil, false)
	require.Equal(t, http.StatusOK, res.status)

	docs := res.body["documents"].([]any)
	require.Len(t, docs, 1)
	assert.NotContains(t, docs[0].(map[string]any), "file_url")
}

func TestListFiltersValidated(t *testing.T) {
	ta := newTestApp(t)

	res := ta.do(t, http.MethodGet, "/v1/documents?page=abc&page_size=1000&sort=file_url", nil, false)
	require.Equal(t, http.StatusUnprocessableEntity, res.status)
	assert.Equal(t, map[string]any{
		"page":      "must be an integer value",
		"page_size": "must be a maximum of 100",
		"sort":      "invalid sort value",
	}, res.body["error"])
}

func TestAdminLeadListings(t *testing.T) {
	ta := newTestApp(t)
	require.NoError(t, ta.contacts.Insert(t.Context(), &data.Contact{Name: "An Nguyen"}))

	res := ta.do(t, http.MethodGet, "/v1/admin/contacts", nil, false)
	assert.Equal(t, http.StatusUnauthorized, res.status)
	assert.Equal(t, "Bearer", res.header.Get("WWW-Authenticate"))

	res = ta.do(t, http.MethodGet, "/v1/admin/contacts?sort=-created_at", nil, true)
	require.Equal(t, http.StatusOK, res.status)
	assert.Len(t, res.body["contacts"], 1)

	res = ta.do(t, http.MethodGet, "/v1/admin/downloads", nil, true)
	require.Equal(t, http.StatusOK, res.status)
	assert.Empty(t, res.body["downloads"])
}

func TestNotificationSkippedWithoutRecipients(t *testing.T) {
	ta := newTestApp(t)
	ta.config.notify.recipients = nil

	res := ta.do(t, http.MethodPost, "/v1/contact", map[string]string{
		"name": "An Nguyen", "email": "an@test.com", "phone": "0912345678", "message": "Xin chao",
	}, false)
	require.Equal(t, http.StatusCreated, res.status)

	ta.wg.Wait()
	assert.Empty(t, ta.mail.Sent())
}
