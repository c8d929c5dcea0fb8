// Package response provides small helpers for writing and reading JSON over
// HTTP handlers.
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrEmptyRequestBody is returned by Decode when the request carries no body.
var ErrEmptyRequestBody = errors.New("empty request body")

// errorBody is the uniform error payload shape.
type errorBody struct {
	Error string `json:"error"`
}

// JSON writes v as an application/json response with the given status.
// Encoding goes directly to the response writer. A nil v with a 204 or 304
// status produces no body per the HTTP spec.
func JSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	switch status {
	case http.StatusNoContent, http.StatusNotModified:
		return nil
	}
	return json.NewEncoder(w).Encode(v)
}

// Error writes a JSON error payload with the given status.
func Error(w http.ResponseWriter, status int, message string) {
	_ = JSON(w, status, errorBody{Error: message})
}

// Decode reads the request body into v, rejecting unknown fields so typos in
// client payloads fail loudly instead of silently zeroing values.
func Decode(r *http.Request, v any) error {
	if r.Body == nil {
		return ErrEmptyRequestBody
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}
