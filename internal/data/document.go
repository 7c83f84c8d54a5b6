// internal/data/document.go
package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aoideee/dronesite/internal/validator"
)

// Document is a downloadable file (brochure, capability statement, price list).
// FileURL points at the object storage location; it is only revealed after a
// download request is recorded.
type Document struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	FileURL     string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DocumentInput is the admin payload for creating a document.
type DocumentInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	FileURL     string `json:"file_url"`
}

// ValidateDocument records any problem with d in v.
func ValidateDocument(v *validator.Validator, d *Document) {
	v.Check(validator.NotBlank(d.Title), "title", "must be provided")
	v.Check(validator.MaxChars(d.Title, 200), "title", "must not be more than 200 characters")
	v.Check(validator.MaxChars(d.Description, 1000), "description", "must not be more than 1000 characters")
	v.Check(validator.NotBlank(d.FileURL), "file_url", "must be provided")
	v.Check(validator.Matches(d.FileURL, validator.URLRX), "file_url", "must be an absolute http(s) URL")
}

// DocumentModel wraps a *sql.DB for the documents table.
type DocumentModel struct {
	DB *sql.DB
}

func (m DocumentModel) Insert(ctx context.Context, d *Document) error {
	query := `
		INSERT INTO documents (title, description, file_url)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err := m.DB.QueryRowContext(ctx, query, d.Title, d.Description, d.FileURL).
		Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// Get returns ErrRecordNotFound if no document with the given id exists.
func (m DocumentModel) Get(ctx context.Context, id int64) (*Document, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	query := `
		SELECT id, title, description, file_url, created_at, updated_at
		FROM documents
		WHERE id = $1`

	var d Document
	err := m.DB.QueryRowContext(ctx, query, id).Scan(
		&d.ID,
		&d.Title,
		&d.Description,
		&d.FileURL,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &d, nil
}

func (m DocumentModel) GetAll(ctx context.Context, filters Filters) ([]*Document, Metadata, error) {
	query := fmt.Sprintf(`
		SELECT count(*) OVER(), id, title, description, file_url, created_at, updated_at
		FROM documents
		ORDER BY %s %s, id ASC
		LIMIT $1 OFFSET $2`, filters.sortColumn(), filters.sortDirection())

	rows, err := m.DB.QueryContext(ctx, query, filters.limit(), filters.offset())
	if err != nil {
		return nil, Metadata{}, err
	}
	defer rows.Close()

	totalRecords := 0
	documents := []*Document{}

	for rows.Next() {
		var d Document
		err := rows.Scan(&totalRecords, &d.ID, &d.Title, &d.Description, &d.FileURL, &d.CreatedAt, &d.UpdatedAt)
		if err != nil {
			return nil, Metadata{}, err
		}
		documents = append(documents, &d)
	}
	if err = rows.Err(); err != nil {
		return nil, Metadata{}, err
	}

	return documents, calculateMetadata(totalRecords, filters.Page, filters.PageSize), nil
}

// Delete removes the document and, through ON DELETE CASCADE, its leads.
func (m DocumentModel) Delete(ctx context.Context, id int64) error {
	if id < 1 {
		return ErrRecordNotFound
	}

	result, err := m.DB.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
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
