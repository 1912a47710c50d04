package logger

import (
	"regexp"
	"strings"
)

const redacted = "[REDACTED]"

// Redactor masks secrets in log messages and fields.
type Redactor struct {
	keys     []string
	patterns []*regexp.Regexp
}

// DefaultRedactor masks credential-looking keys, bearer tokens, JWTs and
// OpenAI-style API keys.
func DefaultRedactor() *Redactor {
	return &Redactor{
		keys: []string{
			"password", "secret", "token", "api_key", "apikey",
			"authorization", "access_key", "secret_key", "credential",
		},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`),
			regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._~+/=-]+`),
			regexp.MustCompile(`sk-[A-Za-z0-9_-]{16,}`),
		},
	}
}

// Redact masks every pattern match in s.
func (r *Redactor) Redact(s string) string {
	if r == nil {
		return s
	}
	for _, p := range r.patterns {
		s = p.ReplaceAllString(s, redacted)
	}
	return s
}

// RedactFields returns a copy of fields with sensitive keys masked and
// string values scrubbed.
func (r *Redactor) RedactFields(fields map[string]any) map[string]any {
	if r == nil || fields == nil {
		return fields
	}
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if r.sensitiveKey(k) {
			out[k] = redacted
			continue
		}
		if s, ok := v.(string); ok {
			out[k] = r.Redact(s)
			continue
		}
		out[k] = v
	}
	return out
}

func (r *Redactor) sensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, k := range r.keys {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
