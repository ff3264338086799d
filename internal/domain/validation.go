package domain

import (
	"sort"
	"strings"
)

// FieldErrors collects validation messages per field. It is the structured
// details payload of the API error envelope. Cross-field violations are
// reported under the primary offending field.
type FieldErrors map[string][]string

// Add appends a message for the given field.
func (e FieldErrors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// HasErrors reports whether any field has a message.
func (e FieldErrors) HasErrors() bool {
	return len(e) > 0
}

// Error implements error. Fields are sorted for stable output.
func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	var parts []string
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(e[f], "; "))
	}
	return strings.Join(parts, "; ")
}
