package domain

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError carries per-field validation failures / Porte les échecs de validation par champ
//
// The map is keyed by form field name. A submission rejected with a
// ValidationError produced no persistence and no mail side effect.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError wraps a non-empty field error map / Encapsule une map d'erreurs de champs non vide
func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// Error lists the failing fields in a stable order.
func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString("validation failed:")
	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%q", k, e.Fields[k])
	}
	return sb.String()
}
