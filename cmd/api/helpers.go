// cmd/api/helpers.go
// This file contains general-purpose helper functions for the application.
// Error-response helpers live in errors.go; only non-error utilities are here.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"

	"github.com/aoideee/dronesite/internal/data"
	"github.com/aoideee/dronesite/internal/validator"
)

// envelope is the top-level JSON wrapper type used for all API responses.
// Every response body is a JSON object with at least one named key,
// e.g. {"post": {...}} or {"posts": [...], "metadata": {...}}.
type envelope map[string]any

// readIDParam extracts and validates the ":id" URL parameter added by httprouter.
// Returns an error if the value is missing, non-numeric, or less than 1.
func (app *applicationDependencies) readIDParam(r *http.Request) (int64, error) {
	params := httprouter.ParamsFromContext(r.Context())
	id, err := strconv.ParseInt(params.ByName("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, errors.New("invalid id parameter")
	}
	return id, nil
}

// readString reads a string query parameter from qs, returning defaultValue
// if the key is absent or empty.
func (app *applicationDependencies) readString(qs url.Values, key, defaultValue string) string {
	s := qs.Get(key)
	if s == "" {
		return defaultValue
	}
	return s
}

// readInt reads an integer query parameter from qs. A value that is present
// but not an integer is reported through v.
func (app *applicationDependencies) readInt(qs url.Values, key string, defaultValue int, v *validator.Validator) int {
	s := qs.Get(key)
	if s == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		v.AddError(key, "must be an integer value")
		return defaultValue
	}
	return i
}

// readFilters parses page, page_size and sort from the query string and
// validates them against sortSafeList. The first safe-list entry is the
// default sort.
func (app *applicationDependencies) readFilters(qs url.Values, v *validator.Validator, sortSafeList ...string) data.Filters {
	f := data.Filters{
		Page:         app.readInt(qs, "page", 1, v),
		PageSize:     app.readInt(qs, "page_size", 20, v),
		Sort:         app.readString(qs, "sort", sortSafeList[0]),
		SortSafeList: sortSafeList,
	}
	data.ValidateFilters(v, f)
	return f
}

// writeJSON marshals data to indented JSON, applies any custom headers,
// sets Content-Type to "application/json", writes the status code, and
// streams the body to the client.
func (app *applicationDependencies) writeJSON(w http.ResponseWriter, status int, data envelope, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(js)
	return nil
}

// readJSON decodes a single JSON value from the request body into dst.
// It enforces a 1 MB size limit, rejects unknown fields, and ensures the
// body contains exactly one JSON value (no trailing data). Decoder errors
// are rewritten into messages fit for the client.
func (app *applicationDependencies) readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	const maxBytes = 1_048_576
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBytesError.Limit)
		default:
			return err
		}
	}

	// Ensure there is no second JSON value in the body.
	err = dec.Decode(&struct{}{})
	if err != io.EOF {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

// background runs fn in a goroutine tracked by app.wg so that graceful
// shutdown waits for it. Panics are recovered and logged.
func (app *applicationDependencies) background(fn func()) {
	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		defer func() {
			if err := recover(); err != nil {
				app.logger.Error(fmt.Sprintf("background task panic: %v", err))
			}
		}()
		fn()
	}()
}
