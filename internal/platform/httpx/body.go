package httpx

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
)

const maxBodyBytes = 1 << 20

// Body is a decoded JSON object. Numbers are kept as json.Number.
type Body map[string]any

// Has reports whether key is present, even with a null value.
func (b Body) Has(key string) bool {
	_, ok := b[key]
	return ok
}

const emptyBodyMessage = "Request body is required"

// ReadBody decodes the request body as a JSON object.
func ReadBody(r *http.Request) (Body, error) {
	return ReadBodyOr(r, emptyBodyMessage)
}

// ReadBodyOr is ReadBody with a custom message for a missing body.
func ReadBodyOr(r *http.Request, emptyMessage string) (Body, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, Validation(emptyMessage)
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, Validation("Could not read request body")
	}
	return decode(raw, emptyMessage)
}

// DecodeBody decodes raw as a JSON object.
func DecodeBody(raw []byte) (Body, error) {
	return decode(raw, emptyBodyMessage)
}

func decode(raw []byte, emptyMessage string) (Body, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, Validation(emptyMessage)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, Validation("Invalid JSON in request body")
	}
	if dec.More() {
		return nil, Validation("Invalid JSON in request body")
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, Validation("Request body must be a JSON object")
	}
	return Body(obj), nil
}
