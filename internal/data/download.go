// internal/data/download.go
package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aoideee/dronesite/internal/validator"
)

// DownloadRequest is the lead captured before a document is handed out.
type DownloadRequest struct {
	ID         int64     `json:"id"`
	DocumentID int64     `json:"document_id"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Email      string    `json:"email"`
	Company    string    `json:"company,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// DownloadInput is the JSON body of the download modal.
type DownloadInput struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Company string `json:"company"`
}

func (in DownloadInput) Values() map[validator.Field]string {
	return map[validator.Field]string{
		validator.FieldName:    in.Name,
		validator.FieldPhone:   in.Phone,
		validator.FieldEmail:   in.Email,
		validator.FieldCompany: in.Company,
	}
}

// NewDownloadRequest builds a lead for documentID from normalized form values.
func NewDownloadRequest(documentID int64, values map[validator.Field]string) *DownloadRequest {
	return &DownloadRequest{
		DocumentID: documentID,
		Name:       values[validator.FieldName],
		Phone:      values[validator.FieldPhone],
		Email:      values[validator.FieldEmail],
		Company:    values[validator.FieldCompany],
	}
}

// DownloadRequestModel wraps a *sql.DB for the download_requests table.
type DownloadRequestModel struct {
	DB *sql.DB
}

// Insert stores d. A document deleted in the meantime yields ErrRecordNotFound.
func (m DownloadRequestModel) Insert(ctx context.Context, d *DownloadRequest) error {
	query := `
		INSERT INTO download_requests (document_id, name, phone, email, company)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := m.DB.QueryRowContext(ctx, query, d.DocumentID, d.Name, d.Phone, d.Email, d.Company).
		Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		if pqCode(err) == pqForeignKeyViolation {
			return ErrRecordNotFound
		}
		return fmt.Errorf("insert download request: %w", err)
	}
	return nil
}

func (m DownloadRequestModel) GetAll(ctx context.Context, filters Filters) ([]*DownloadRequest, Metadata, error) {
	query := fmt.Sprintf(`
		SELECT count(*) OVER(), id, document_id, name, phone, email, company, created_at
		FROM download_requests
		ORDER BY %s %s, id ASC
		LIMIT $1 OFFSET $2`, filters.sortColumn(), filters.sortDirection())

	rows, err := m.DB.QueryContext(ctx, query, filters.limit(), filters.offset())
	if err != nil {
		return nil, Metadata{}, err
	}
	defer rows.Close()

	totalRecords := 0
	requests := []*DownloadRequest{}

	for rows.Next() {
		var d DownloadRequest
		err := rows.Scan(&totalRecords, &d.ID, &d.DocumentID, &d.Name, &d.Phone, &d.Email, &d.Company, &d.CreatedAt)
		if err != nil {
			return nil, Metadata{}, err
		}
		requests = append(requests, &d)
	}
	if err = rows.Err(); err != nil {
		return nil, Metadata{}, err
	}

	return requests, calculateMetadata(totalRecords, filters.Page, filters.PageSize), nil
}
