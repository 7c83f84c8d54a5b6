// internal/data/models.go
package data

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"strings"

	"github.com/lib/pq"

	"github.com/aoideee/dronesite/internal/validator"
)

// ContactStore persists contact-form submissions.
type ContactStore interface {
	Insert(ctx context.Context, c *Contact) error
	GetAll(ctx context.Context, filters Filters) ([]*Contact, Metadata, error)
}

// DownloadStore persists document-download leads.
type DownloadStore interface {
	Insert(ctx context.Context, d *DownloadRequest) error
	GetAll(ctx context.Context, filters Filters) ([]*DownloadRequest, Metadata, error)
}

// DocumentStore manages the downloadable document catalogue.
type DocumentStore interface {
	Insert(ctx context.Context, d *Document) error
	Get(ctx context.Context, id int64) (*Document, error)
	GetAll(ctx context.Context, filters Filters) ([]*Document, Metadata, error)
	Delete(ctx context.Context, id int64) error
}

// PostStore manages blog posts.
type PostStore interface {
	Insert(ctx context.Context, p *Post) error
	Get(ctx context.Context, id int64) (*Post, error)
	GetBySlug(ctx context.Context, slug string) (*Post, error)
	GetAll(ctx context.Context, publishedOnly bool, filters Filters) ([]*Post, Metadata, error)
	Update(ctx context.Context, p *Post) error
	Delete(ctx context.Context, id int64) error
}

// Models is a top-level container that groups all stores together.
// It is passed around the application via applicationDependencies so every handler
// has access to persistence without importing sql directly.
type Models struct {
	Contacts  ContactStore
	Downloads DownloadStore
	Documents DocumentStore
	Posts     PostStore
}

// NewModels constructs a Models value wired up to the given PostgreSQL pool.
func NewModels(db *sql.DB) Models {
	return Models{
		Contacts:  ContactModel{DB: db},
		Downloads: DownloadRequestModel{DB: db},
		Documents: DocumentModel{DB: db},
		Posts:     PostModel{DB: db},
	}
}

var (
	// ErrRecordNotFound is returned when a query finds no matching row.
	ErrRecordNotFound = errors.New("record not found")

	// ErrDuplicateSlug is returned when a post slug is already taken.
	ErrDuplicateSlug = errors.New("duplicate slug")
)

// pq error codes, see https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// Filters holds pagination and sorting parameters extracted from URL query strings.
type Filters struct {
	Page         int      // Current page number (1-indexed)
	PageSize     int      // Number of records per page
	Sort         string   // Column name to sort by (prefix with "-" for DESC)
	SortSafeList []string // Allowed sort columns to prevent SQL injection
}

// ValidateFilters records any problem with f in v.
func ValidateFilters(v *validator.Validator, f Filters) {
	v.Check(f.Page > 0, "page", "must be greater than zero")
	v.Check(f.Page <= 10_000_000, "page", "must be a maximum of 10 million")
	v.Check(f.PageSize > 0, "page_size", "must be greater than zero")
	v.Check(f.PageSize <= 100, "page_size", "must be a maximum of 100")
	v.Check(validator.In(f.Sort, f.SortSafeList...), "sort", "invalid sort value")
}

// sortColumn returns the validated column name for ORDER BY, defaulting to id.
func (f Filters) sortColumn() string {
	for _, safe := range f.SortSafeList {
		if f.Sort == safe {
			return strings.TrimPrefix(f.Sort, "-")
		}
	}
	return "id"
}

// sortDirection returns "ASC" or "DESC" based on the Sort prefix.
func (f Filters) sortDirection() string {
	if strings.HasPrefix(f.Sort, "-") {
		return "DESC"
	}
	return "ASC"
}

func (f Filters) limit() int { return f.PageSize }

func (f Filters) offset() int { return (f.Page - 1) * f.PageSize }

// Metadata contains pagination information returned alongside list responses.
type Metadata struct {
	CurrentPage  int `json:"current_page,omitempty"`
	PageSize     int `json:"page_size,omitempty"`
	FirstPage    int `json:"first_page,omitempty"`
	LastPage     int `json:"last_page,omitempty"`
	TotalRecords int `json:"total_records,omitempty"`
}

// calculateMetadata computes page metadata from total record count and filter values.
func calculateMetadata(totalRecords, page, pageSize int) Metadata {
	if totalRecords == 0 {
		return Metadata{}
	}
	return Metadata{
		CurrentPage:  page,
		PageSize:     pageSize,
		FirstPage:    1,
		LastPage:     int(math.Ceil(float64(totalRecords) / float64(pageSize))),
		TotalRecords: totalRecords,
	}
}
