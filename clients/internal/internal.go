package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/DaihanaA/avanzatech-blog/errors"
)

// EncodeBody JSON-encodes a request payload. A nil payload yields a nil
// reader.
func EncodeBody(v interface{}) (io.Reader, error) {
	if v == nil {
		return nil, nil
	}

	body := &bytes.Buffer{}
	if err := json.NewEncoder(body).Encode(v); err != nil {
		return nil, err
	}
	return body, nil
}

// Decode consumes the response body: 2xx responses are decoded into v (when
// non-nil), anything else becomes an error carrying the status code and the
// server-provided detail.
func Decode(res *http.Response, v interface{}) error {
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return Error(res)
	}

	if v == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(v)
}

// Error maps a non-2xx response to an error. The server detail is kept
// verbatim so the caller can translate known messages, unknown payload
// shapes fall back to the HTTP status text.
func Error(res *http.Response) error {
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.New(fmt.Sprintf("error in call: %s", http.StatusText(res.StatusCode)), errors.WithCode(res.StatusCode))
	}

	detail := detailOf(data)
	if detail == "" {
		detail = http.StatusText(res.StatusCode)
	}

	return errors.New(detail, errors.WithCode(res.StatusCode))
}

// detailOf extracts a human-readable message from the error payload shapes
// the API produces: {"detail": "..."}, {"message": "..."} or a DRF-style
// field error map {"field": ["...", ...]}.
func detailOf(data []byte) string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(data, &payload); err != nil {
		return strings.TrimSpace(string(data))
	}

	for _, key := range []string{"detail", "message", "error"} {
		if raw, ok := payload[key]; ok {
			var msg string
			if err := json.Unmarshal(raw, &msg); err == nil && msg != "" {
				return msg
			}
		}
	}

	fields := make([]string, 0, len(payload))
	for field := range payload {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var parts []string
	for _, field := range fields {
		var msgs []string
		if err := json.Unmarshal(payload[field], &msgs); err != nil || len(msgs) == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(msgs, " ")))
	}

	return strings.Join(parts, "; ")
}
