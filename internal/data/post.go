// internal/data/post.go
package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/unicode/norm"

	"github.com/aoideee/dronesite/internal/validator"
)

// Post is a blog article. Content holds the HTML produced by the admin's
// rich-text editor, already sanitized.
type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Excerpt   string    `json:"excerpt,omitempty"`
	Content   string    `json:"content"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreatePostInput holds the fields an admin supplies when creating a post.
// Slug is derived from Title when omitted.
type CreatePostInput struct {
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	Excerpt   string `json:"excerpt"`
	Content   string `json:"content"`
	Published bool   `json:"published"`
}

// UpdatePostInput holds the fields an admin may supply when partially
// updating a post. nil means "not provided, leave as-is".
type UpdatePostInput struct {
	Title     *string `json:"title"`
	Slug      *string `json:"slug"`
	Excerpt   *string `json:"excerpt"`
	Content   *string `json:"content"`
	Published *bool   `json:"published"`
}

// Apply copies every provided field onto p, sanitizing content on the way.
func (in UpdatePostInput) Apply(p *Post) {
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Slug != nil {
		p.Slug = *in.Slug
	}
	if in.Excerpt != nil {
		p.Excerpt = *in.Excerpt
	}
	if in.Content != nil {
		p.Content = SanitizeHTML(*in.Content)
	}
	if in.Published != nil {
		p.Published = *in.Published
	}
}

// ValidatePost records any problem with p in v.
func ValidatePost(v *validator.Validator, p *Post) {
	v.Check(validator.NotBlank(p.Title), "title", "must be provided")
	v.Check(validator.MaxChars(p.Title, 200), "title", "must not be more than 200 characters")
	v.Check(p.Slug != "", "slug", "must be provided")
	v.Check(validator.Matches(p.Slug, validator.SlugRX), "slug", "must contain only lowercase letters, digits and hyphens")
	v.Check(len(p.Slug) <= 200, "slug", "must not be more than 200 bytes")
	v.Check(validator.MaxChars(p.Excerpt, 500), "excerpt", "must not be more than 500 characters")
	v.Check(validator.NotBlank(p.Content), "content", "must be provided")
}

var (
	ugcPolicyOnce sync.Once
	ugcPolicy     *bluemonday.Policy
)

// SanitizeHTML strips scripts, event handlers and other unsafe markup from
// editor output while keeping formatting, links and images.
func SanitizeHTML(raw string) string {
	ugcPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AddTargetBlankToFullyQualifiedLinks(true)
		ugcPolicy = policy
	})
	return strings.TrimSpace(ugcPolicy.Sanitize(raw))
}

// Slugify turns a Vietnamese title into an ASCII URL slug:
// "Khảo sát địa hình bằng Drone" becomes "khao-sat-dia-hinh-bang-drone".
func Slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range norm.NFD.String(strings.ToLower(title)) {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case r == 'đ':
			r = 'd'
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// PostModel wraps a *sql.DB for the posts table.
type PostModel struct {
	DB *sql.DB
}

// Insert returns ErrDuplicateSlug when the slug is already taken.
func (m PostModel) Insert(ctx context.Context, p *Post) error {
	query := `
		INSERT INTO posts (title, slug, excerpt, content, published)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := m.DB.QueryRowContext(ctx, query, p.Title, p.Slug, p.Excerpt, p.Content, p.Published).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if pqCode(err) == pqUniqueViolation {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

const postColumns = `id, title, slug, excerpt, content, published, created_at, updated_at`

func scanPost(row interface{ Scan(...any) error }, p *Post) error {
	return row.Scan(
		&p.ID,
		&p.Title,
		&p.Slug,
		&p.Excerpt,
		&p.Content,
		&p.Published,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}

func (m PostModel) Get(ctx context.Context, id int64) (*Post, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}
	return m.getOne(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
}

// GetBySlug returns only published posts; drafts are not public.
func (m PostModel) GetBySlug(ctx context.Context, slug string) (*Post, error) {
	return m.getOne(ctx, `SELECT `+postColumns+` FROM posts WHERE slug = $1 AND published`, slug)
}

func (m PostModel) getOne(ctx context.Context, query string, arg any) (*Post, error) {
	var p Post
	err := scanPost(m.DB.QueryRowContext(ctx, query, arg), &p)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &p, nil
}

// GetAll lists posts; publishedOnly hides drafts for the public blog.
func (m PostModel) GetAll(ctx context.Context, publishedOnly bool, filters Filters) ([]*Post, Metadata, error) {
	query := fmt.Sprintf(`
		SELECT count(*) OVER(), %s
		FROM posts
		WHERE (published OR NOT $1)
		ORDER BY %s %s, id ASC
		LIMIT $2 OFFSET $3`, postColumns, filters.sortColumn(), filters.sortDirection())

	rows, err := m.DB.QueryContext(ctx, query, publishedOnly, filters.limit(), filters.offset())
	if err != nil {
		return nil, Metadata{}, err
	}
	defer rows.Close()

	totalRecords := 0
	posts := []*Post{}

	for rows.Next() {
		var p Post
		err := rows.Scan(
			&totalRecords,
			&p.ID,
			&p.Title,
			&p.Slug,
			&p.Excerpt,
			&p.Content,
			&p.Published,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, Metadata{}, err
		}
		posts = append(posts, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, Metadata{}, err
	}

	return posts, calculateMetadata(totalRecords, filters.Page, filters.PageSize), nil
}

// Update saves p and scans the refreshed updated_at back into it.
func (m PostModel) Update(ctx context.Context, p *Post) error {
	query := `
		UPDATE posts
		SET title = $1, slug = $2, excerpt = $3, content = $4, published = $5,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $6
		RETURNING updated_at`

	args := []any{p.Title, p.Slug, p.Excerpt, p.Content, p.Published, p.ID}

	err := m.DB.QueryRowContext(ctx, query, args...).Scan(&p.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrRecordNotFound
		case pqCode(err) == pqUniqueViolation:
			return ErrDuplicateSlug
		default:
			return err
		}
	}
	return nil
}

func (m PostModel) Delete(ctx context.Context, id int64) error {
	if id < 1 {
		return ErrRecordNotFound
	}

	result, err := m.DB.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
