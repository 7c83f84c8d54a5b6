// internal/validator/transform.go
package validator

import "strings"

// Transform normalizes a raw input before it is stored or validated.
// Only the phone field is rewritten; names are passed through untouched so
// that no visitor input is silently dropped.
func Transform(field Field, raw string) string {
	if field == FieldPhone {
		return NormalizePhone(raw)
	}
	return raw
}

// NormalizePhone keeps only digits and makes sure the number starts with
// either "84" or "0", prefixing "0" otherwise. It is idempotent.
func NormalizePhone(raw string) string {
	digits := nonDigitRX.ReplaceAllString(raw, "")
	switch {
	case digits == "":
		return ""
	case strings.HasPrefix(digits, "84"), strings.HasPrefix(digits, "0"):
		return digits
	default:
		return "0" + digits
	}
}
