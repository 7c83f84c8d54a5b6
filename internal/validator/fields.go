// internal/validator/fields.go
package validator

import "errors"

// Field identifies one input of a site form.
type Field string

const (
	FieldName     Field = "name"
	FieldCompany  Field = "company"
	FieldEmail    Field = "email"
	FieldPhone    Field = "phone"
	FieldService  Field = "service"
	FieldLocation Field = "location"
	FieldMessage  Field = "message"
)

// ContactFields lists the inputs of the contact form, in display order.
var ContactFields = []Field{
	FieldName, FieldCompany, FieldEmail, FieldPhone, FieldService, FieldLocation, FieldMessage,
}

// DownloadFields lists the inputs of the document-download modal.
var DownloadFields = []Field{
	FieldName, FieldPhone, FieldEmail, FieldCompany,
}

// FormFields maps the public form identifiers used in URLs to their fields.
var FormFields = map[string][]Field{
	"contact":  ContactFields,
	"download": DownloadFields,
}

// ErrorMap maps every field of a form to its current error message.
// An empty message means the field is valid.
type ErrorMap map[Field]string

// Valid reports whether every entry is empty.
func (m ErrorMap) Valid() bool {
	for _, msg := range m {
		if msg != "" {
			return false
		}
	}
	return true
}

var (
	// ErrUnknownField is returned when a field is not part of a form or registry.
	ErrUnknownField = errors.New("unknown field")

	// ErrClosed is returned by a Form once Close has been called.
	ErrClosed = errors.New("form is closed")
)

// ParseField converts s into a Field belonging to fields.
func ParseField(s string, fields []Field) (Field, error) {
	for _, f := range fields {
		if string(f) == s {
			return f, nil
		}
	}
	return "", ErrUnknownField
}
