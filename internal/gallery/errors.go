package gallery

import (
	"errors"
	"fmt"
	"gallery/internal/upload"
	"sort"
	"strings"
)

// ValidationError carries a message per rejected input field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}

	return "validation failed: " + strings.Join(parts, "; ")
}

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// uploadError maps normalizer rejections onto the field they came from.
// Disk failures are returned unchanged.
func uploadError(field string, err error) error {
	switch {
	case errors.Is(err, upload.ErrEmptyFile):
		return invalid(field, "the file is empty")
	case errors.Is(err, upload.ErrFileTooLarge):
		return invalid(field, "the file is too large")
	case errors.Is(err, upload.ErrUnsupportedType):
		return invalid(field, "the file must be an image of an allowed type")
	case errors.Is(err, upload.ErrMalformedDataURI):
		return invalid(field, "the base64 image data is malformed")
	case errors.Is(err, upload.ErrTypeMismatch):
		return invalid(field, "the file content does not match its extension")
	case errors.Is(err, upload.ErrStoredURL):
		return invalid(field, "must not point at a file stored for another image")
	case errors.Is(err, upload.ErrInvalidURL):
		return invalid(field, "must be an http(s) URL, a path or a base64 image data URI")
	}
	return err
}
