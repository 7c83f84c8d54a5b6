package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aoideee/dronesite/internal/data"
	"github.com/aoideee/dronesite/internal/mailer"
)

const testAdminToken = "s3cret-admin-token"

type memContacts struct {
	mu   sync.Mutex
	rows []*data.Contact
}

func (m *memContacts) Insert(_ context.Context, c *data.Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = int64(len(m.rows) + 1)
	c.CreatedAt = time.Now()
	m.rows = append(m.rows, c)
	return nil
}

func (m *memContacts) GetAll(_ context.Context, f data.Filters) ([]*data.Contact, data.Metadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*data.Contact{}, m.rows...), data.Metadata{CurrentPage: f.Page, PageSize: f.PageSize, TotalRecords: len(m.rows)}, nil
}

type memDownloads struct {
	mu   sync.Mutex
	rows []*data.DownloadRequest
}

func (m *memDownloads) Insert(_ context.Context, d *data.DownloadRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d.ID = int64(len(m.rows) + 1)
	d.CreatedAt = time.Now()
	m.rows = append(m.rows, d)
	return nil
}

func (m *memDownloads) GetAll(_ context.Context, _ data.Filters) ([]*data.DownloadRequest, data.Metadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*data.DownloadRequest{}, m.rows...), data.Metadata{}, nil
}

type memDocuments struct {
	mu   sync.Mutex
	next int64
	rows map[int64]*data.Document
}

func (m *memDocuments) Insert(_ context.Context, d *data.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	d.ID = m.next
	m.rows[d.ID] = d
	return nil
}

func (m *memDocuments) Get(_ context.Context, id int64) (*data.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.rows[id]
	if !ok {
		return nil, data.ErrRecordNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *memDocuments) GetAll(_ context.Context, _ data.Filters) ([]*data.Document, data.Metadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	docs := []*data.Document{}
	for _, d := range m.rows {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, data.Metadata{}, nil
}

func (m *memDocuments) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return data.ErrRecordNotFound
	}
	delete(m.rows, id)
	return nil
}

type memPosts struct {
	mu   sync.Mutex
	next int64
	rows map[int64]*data.Post
}

func (m *memPosts) slugTaken(slug string, except int64) bool {
	for id, p := range m.rows {
		if p.Slug == slug && id != except {
			return true
		}
	}
	return false
}

func (m *memPosts) Insert(_ context.Context, p *data.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.slugTaken(p.Slug, 0) {
		return data.ErrDuplicateSlug
	}
	m.next++
	p.ID = m.next
	cp := *p
	m.rows[p.ID] = &cp
	return nil
}

func (m *memPosts) Get(_ context.Context, id int64) (*data.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok {
		return nil, data.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPosts) GetBySlug(_ context.Context, slug string) (*data.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.rows {
		if p.Slug == slug && p.Published {
			cp := *p
			return &cp, nil
		}
	}
	return nil, data.ErrRecordNotFound
}

func (m *memPosts) GetAll(_ context.Context, publishedOnly bool, _ data.Filters) ([]*data.Post, data.Metadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	posts := []*data.Post{}
	for _, p := range m.rows {
		if publishedOnly && !p.Published {
			continue
		}
		posts = append(posts, p)
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID < posts[j].ID })
	return posts, data.Metadata{TotalRecords: len(posts)}, nil
}

func (m *memPosts) Update(_ context.Context, p *data.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[p.ID]; !ok {
		return data.ErrRecordNotFound
	}
	if m.slugTaken(p.Slug, p.ID) {
		return data.ErrDuplicateSlug
	}
	cp := *p
	m.rows[p.ID] = &cp
	return nil
}

func (m *memPosts) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return data.ErrRecordNotFound
	}
	delete(m.rows, id)
	return nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (m *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) Sent() []mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mailer.Message(nil), m.sent...)
}

type testApp struct {
	*applicationDependencies
	contacts  *memContacts
	downloads *memDownloads
	documents *memDocuments
	posts     *memPosts
	mail      *fakeMailer
	handler   http.Handler
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	ta := &testApp{
		contacts:  &memContacts{},
		downloads: &memDownloads{},
		documents: &memDocuments{rows: map[int64]*data.Document{}},
		posts:     &memPosts{rows: map[int64]*data.Post{}},
		mail:      &fakeMailer{},
	}

	var cfg serverConfig
	cfg.environment = "testing"
	cfg.admin.token = testAdminToken
	cfg.notify.recipients = []string{"sales@example.vn"}
	cfg.forms.debounce = 200 * time.Millisecond

	ta.applicationDependencies = &applicationDependencies{
		config: cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		models: data.Models{
			Contacts:  ta.contacts,
			Downloads: ta.downloads,
			Documents: ta.documents,
			Posts:     ta.posts,
		},
		mailer: ta.mail,
	}
	ta.handler = ta.routes()
	return ta
}

type response struct {
	status int
	header http.Header
	body   map[string]any
}

func (ta *testApp) do(t *testing.T, method, target string, body any, admin bool) response {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		js, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(js)
	}

	req := httptest.NewRequest(method, target, reader)
	if admin {
		req.Header.Set("Authorization", "Bearer "+testAdminToken)
	}
	rr := httptest.NewRecorder()
	ta.handler.ServeHTTP(rr, req)

	res := response{status: rr.Code, header: rr.Header()}
	if rr.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res.body), rr.Body.String())
	}
	return res
}
