// internal/validator/rules.go

package validator

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Messages shown to visitors. The site is Vietnamese-only.
const (
	MsgNameRequired    = "Họ tên là bắt buộc"
	MsgNameTooShort    = "Họ tên phải có ít nhất 3 ký tự"
	MsgNameInvalid     = "Họ tên chỉ được chứa chữ cái và khoảng trắng"
	MsgCompanyTooShort = "Tên công ty phải có ít nhất 3 ký tự"
	MsgEmailRequired   = "Email là bắt buộc"
	MsgEmailInvalid    = "Email không hợp lệ"
	MsgPhoneRequired   = "Số điện thoại là bắt buộc"
	MsgPhoneInvalid    = "Số điện thoại không hợp lệ"
	MsgLocationShort   = "Địa điểm phải có ít nhất 3 ký tự"
	MsgMessageRequired = "Nội dung là bắt buộc"
	MsgMessageTooShort = "Nội dung phải có ít nhất 3 ký tự"
)

const minTextLength = 3

var (
	// NameRX accepts Latin letters (Vietnamese diacritics included) and whitespace.
	NameRX = regexp.MustCompile(`^[\p{Latin}\s]+$`)

	// EmailRX is intentionally loose: local@domain.tld with no whitespace.
	EmailRX = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	// PhoneRX is the single canonical Vietnamese number rule, applied to digits only.
	PhoneRX = regexp.MustCompile(`^(0[0-9]{9,10}|84[0-9]{9,10})$`)

	nonDigitRX = regexp.MustCompile(`[^0-9]`)
)

// ValidateFunc is a per-field rule for the site's lead forms: a pure function
// that returns the user-facing message for value, or "" when it is acceptable.
type ValidateFunc func(value string) string

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// ValidateName requires at least three letters-or-spaces characters.
func ValidateName(value string) string {
	// NFC so that decomposed diacritics count as one letter.
	trimmed := norm.NFC.String(strings.TrimSpace(value))
	switch {
	case trimmed == "":
		return MsgNameRequired
	case runeLen(trimmed) < minTextLength:
		return MsgNameTooShort
	case !NameRX.MatchString(trimmed):
		return MsgNameInvalid
	}
	return ""
}

// ValidateCompany is optional; when given it needs three characters.
func ValidateCompany(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed != "" && runeLen(trimmed) < minTextLength {
		return MsgCompanyTooShort
	}
	return ""
}

func ValidateEmail(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return MsgEmailRequired
	}
	if !EmailRX.MatchString(trimmed) {
		return MsgEmailInvalid
	}
	return ""
}

// ValidatePhone strips every non-digit character before matching PhoneRX,
// so "0912 345 678" and "+84 912 345 678" are both accepted.
func ValidatePhone(value string) string {
	if strings.TrimSpace(value) == "" {
		return MsgPhoneRequired
	}
	if !PhoneRX.MatchString(nonDigitRX.ReplaceAllString(value, "")) {
		return MsgPhoneInvalid
	}
	return ""
}

// ValidateService accepts anything; the service select has no rules yet.
func ValidateService(string) string {
	return ""
}

func ValidateLocation(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed != "" && runeLen(trimmed) < minTextLength {
		return MsgLocationShort
	}
	return ""
}

func ValidateMessage(value string) string {
	trimmed := strings.TrimSpace(value)
	switch {
	case trimmed == "":
		return MsgMessageRequired
	case runeLen(trimmed) < minTextLength:
		return MsgMessageTooShort
	}
	return ""
}

// Registry holds the rule for every known field.
type Registry map[Field]ValidateFunc

// DefaultRegistry returns a fresh Registry with the rules above.
// Callers may replace entries without affecting other registries.
func DefaultRegistry() Registry {
	return Registry{
		FieldName:     ValidateName,
		FieldCompany:  ValidateCompany,
		FieldEmail:    ValidateEmail,
		FieldPhone:    ValidatePhone,
		FieldService:  ValidateService,
		FieldLocation: ValidateLocation,
		FieldMessage:  ValidateMessage,
	}
}

// Validate runs the rule registered for field.
func (r Registry) Validate(field Field, value string) (string, error) {
	fn, ok := r[field]
	if !ok {
		return "", ErrUnknownField
	}
	return fn(value), nil
}
