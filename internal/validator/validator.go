// Package validator provides the field validation engine used by the site's
// forms (contact, document download) and a small accumulating Validator for
// admin inputs such as blog posts, documents and list filters.
package validator

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// SlugRX matches lowercase, hyphen-separated URL slugs such as "khao-sat-dat-dai".
var SlugRX = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// URLRX is a loose check for absolute http(s) URLs pointing at stored files.
var URLRX = regexp.MustCompile(`^https?://[^\s/$.?#].[^\s]*$`)

// Validator holds a map of field names to their validation error messages.
// A Validator with an empty Errors map is considered valid.
type Validator struct {
	Errors map[string]string
}

// New creates and returns a fresh, empty Validator.
func New() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

// Valid returns true if the Errors map contains no entries.
func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

// AddError records key as failing with the given message.
// If key already has an error it is not overwritten, so the first
// failure for a field is always the one that is reported.
func (v *Validator) AddError(key, message string) {
	if _, exists := v.Errors[key]; !exists {
		v.Errors[key] = message
	}
}

// Check adds an error for key with message only when ok is false.
//
//	v.Check(validator.NotBlank(post.Title), "title", "must be provided")
func (v *Validator) Check(ok bool, key, message string) {
	if !ok {
		v.AddError(key, message)
	}
}

// Merge copies every non-empty entry of an ErrorMap into v.
func (v *Validator) Merge(errs ErrorMap) {
	for field, msg := range errs {
		if msg != "" {
			v.AddError(string(field), msg)
		}
	}
}

// NotBlank reports whether value has any non-whitespace content.
func NotBlank(value string) bool {
	return strings.TrimSpace(value) != ""
}

// MinChars reports whether the trimmed value holds at least n runes.
func MinChars(value string, n int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(value)) >= n
}

// MaxChars reports whether the trimmed value holds at most n runes.
func MaxChars(value string, n int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(value)) <= n
}

// In returns true if value is present in the list slice.
func In(value string, list ...string) bool {
	for _, item := range list {
		if value == item {
			return true
		}
	}
	return false
}

// Matches returns true if value matches the provided compiled regexp.
func Matches(value string, rx *regexp.Regexp) bool {
	return rx.MatchString(value)
}

// Unique returns true if every string in values is distinct.
func Unique(values []string) bool {
	seen := make(map[string]bool)
	for _, v := range values {
		if seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}
