package gateway

import (
	"bytes"
	"encoding/json"
	"mime"
	"net/http"
	"strconv"
	"strings"
)

// Result is the settled outcome of one request. Value holds the decoded JSON
// document when the response declared a JSON content type, otherwise the raw
// body as a string.
type Result struct {
	Status      int
	Header      http.Header
	ContentType string
	Body        []byte
	Value       any
}

// decode populates Value according to the declared content type. A JSON
// body that fails to parse is a DecodeError, not a silent fallback to text.
func (r *Result) decode() error {
	if !isJSON(r.ContentType) {
		r.Value = string(r.Body)
		return nil
	}
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(r.Body, &v); err != nil {
		return &DecodeError{ContentType: r.ContentType, Err: err}
	}
	r.Value = v
	return nil
}

// DecodeJSON unmarshals the result body into T for callers that know the
// response shape.
func DecodeJSON[T any](r *Result) (T, error) {
	var v T
	if err := json.Unmarshal(r.Body, &v); err != nil {
		return v, &DecodeError{ContentType: r.ContentType, Err: err}
	}
	return v, nil
}

// failureMessage extracts a human-readable message from an error response:
// the body's "detail" field, then "message", then a generic status string.
func failureMessage(r *Result) string {
	if isJSON(r.ContentType) {
		var body struct {
			Detail  string `json:"detail"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(r.Body, &body); err == nil {
			if body.Detail != "" {
				return body.Detail
			}
			if body.Message != "" {
				return body.Message
			}
		}
	}
	return "HTTP Error " + strconv.Itoa(r.Status)
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
