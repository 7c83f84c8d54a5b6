// Package data provides the data models and PostgreSQL access logic for the
// drone-services site: leads captured by the public forms, the document
// catalogue and the blog.
package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aoideee/dronesite/internal/validator"
)

// Contact is one submission of the contact form.
type Contact struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Company   string    `json:"company,omitempty"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Service   string    `json:"service,omitempty"`
	Location  string    `json:"location,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// ContactInput is the JSON body accepted by the contact endpoint.
type ContactInput struct {
	Name     string `json:"name"`
	Company  string `json:"company"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Service  string `json:"service"`
	Location string `json:"location"`
	Message  string `json:"message"`
}

// Values keys the input by form field, ready for Form.Load.
func (in ContactInput) Values() map[validator.Field]string {
	return map[validator.Field]string{
		validator.FieldName:     in.Name,
		validator.FieldCompany:  in.Company,
		validator.FieldEmail:    in.Email,
		validator.FieldPhone:    in.Phone,
		validator.FieldService:  in.Service,
		validator.FieldLocation: in.Location,
		validator.FieldMessage:  in.Message,
	}
}

// NewContact builds a Contact from the normalized values held by a form.
func NewContact(values map[validator.Field]string) *Contact {
	return &Contact{
		Name:     values[validator.FieldName],
		Company:  values[validator.FieldCompany],
		Email:    values[validator.FieldEmail],
		Phone:    values[validator.FieldPhone],
		Service:  values[validator.FieldService],
		Location: values[validator.FieldLocation],
		Message:  values[validator.FieldMessage],
	}
}

// ContactModel wraps a *sql.DB for the contacts table.
type ContactModel struct {
	DB *sql.DB
}

// Insert adds c and writes back its id and created_at.
func (m ContactModel) Insert(ctx context.Context, c *Contact) error {
	query := `
		INSERT INTO contacts (name, company, email, phone, service, location, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	args := []any{c.Name, c.Company, c.Email, c.Phone, c.Service, c.Location, c.Message}
	err := m.DB.QueryRowContext(ctx, query, args...).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}
	return nil
}

// GetAll lists submissions using COUNT(*) OVER() for the total in one round-trip.
func (m ContactModel) GetAll(ctx context.Context, filters Filters) ([]*Contact, Metadata, error) {
	query := fmt.Sprintf(`
		SELECT count(*) OVER(), id, name, company, email, phone, service, location, message, created_at
		FROM contacts
		ORDER BY %s %s, id ASC
		LIMIT $1 OFFSET $2`, filters.sortColumn(), filters.sortDirection())

	rows, err := m.DB.QueryContext(ctx, query, filters.limit(), filters.offset())
	if err != nil {
		return nil, Metadata{}, err
	}
	defer rows.Close()

	totalRecords := 0
	contacts := []*Contact{}

	for rows.Next() {
		var c Contact
		err := rows.Scan(
			&totalRecords,
			&c.ID,
			&c.Name,
			&c.Company,
			&c.Email,
			&c.Phone,
			&c.Service,
			&c.Location,
			&c.Message,
			&c.CreatedAt,
		)
		if err != nil {
			return nil, Metadata{}, err
		}
		contacts = append(contacts, &c)
	}
	if err = rows.Err(); err != nil {
		return nil, Metadata{}, err
	}

	return contacts, calculateMetadata(totalRecords, filters.Page, filters.PageSize), nil
}
