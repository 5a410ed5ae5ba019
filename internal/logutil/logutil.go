// Package logutil keeps credentials out of log lines and error messages.
package logutil

import (
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"
)

// Redacted replaces every sensitive value.
const Redacted = "[REDACTED]"

// sensitiveMarkers are matched against keys lowercased with separators removed.
// "pasword" covers the profile page's misspelt "New Pasword" label.
var sensitiveMarkers = []string{
	"password",
	"pasword",
	"token",
	"secret",
	"apikey",
	"cookie",
	"auth",
}

var separators = strings.NewReplacer("-", "", "_", "", " ", "")

// IsSensitiveLogField reports whether key names a credential, such as a
// password input, a session cookie or an auth header.
func IsSensitiveLogField(key string) bool {
	k := separators.Replace(strings.ToLower(strings.TrimSpace(key)))
	return slices.ContainsFunc(sensitiveMarkers, func(m string) bool {
		return strings.Contains(k, m)
	})
}

// RedactValue hides value when field looks sensitive.
// Empty values stay empty so logs still show that nothing was typed.
func RedactValue(field, value string) string {
	if value != "" && IsSensitiveLogField(field) {
		return Redacted
	}
	return value
}

// FormatHeadersForLog renders headers as sorted `name="v1, v2"` pairs with
// sensitive values redacted.
func FormatHeadersForLog(headers http.Header) string {
	if len(headers) == 0 {
		return "{}"
	}
	parts := make([]string, 0, len(headers))
	for _, k := range slices.Sorted(maps.Keys(headers)) {
		values := headers.Values(k)
		if len(values) == 0 {
			parts = append(parts, strings.ToLower(k)+"=<empty>")
			continue
		}
		out := make([]string, len(values))
		for i, v := range values {
			out[i] = RedactValue(k, v)
		}
		parts = append(parts, fmt.Sprintf("%s=%q", strings.ToLower(k), strings.Join(out, ", ")))
	}
	return strings.Join(parts, "; ")
}

// FormatBodyForLog returns at most maxBytes of body (all of it when
// maxBytes <= 0). JSON bodies have sensitive keys redacted at every depth.
// Cut or already truncated bodies are suffixed with " [truncated]".
func FormatBodyForLog(contentType string, body []byte, maxBytes int, truncated bool) string {
	if len(body) == 0 {
		return ""
	}
	if maxBytes > 0 && len(body) > maxBytes {
		body = body[:maxBytes]
		truncated = true
	}
	text := string(body)
	if strings.Contains(strings.ToLower(contentType), "json") {
		text = redactJSON(body, text)
	}
	if truncated {
		text += " [truncated]"
	}
	return text
}

func redactJSON(body []byte, fallback string) string {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return fallback
	}
	out, err := json.Marshal(redactTree(v))
	if err != nil {
		return fallback
	}
	return string(out)
}

func redactTree(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			if IsSensitiveLogField(k) {
				t[k] = Redacted
			} else {
				t[k] = redactTree(child)
			}
		}
	case []any:
		for i, child := range t {
			t[i] = redactTree(child)
		}
	}
	return v
}

// TruncateForLog trims value, escapes newlines and cuts it to maxChars
// (no limit when maxChars <= 0).
func TruncateForLog(value string, maxChars int) string {
	s := strings.ReplaceAll(strings.TrimSpace(value), "\n", `\n`)
	if maxChars > 0 && len(s) > maxChars {
		return s[:maxChars] + "... [truncated]"
	}
	return s
}
