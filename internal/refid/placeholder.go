// internal/refid/placeholder.go
package refid

import (
	"fmt"
	"regexp"
)

var placeholderRegex = regexp.MustCompile(`^%([A-Za-z0-9_.-]+)%$`)

// Placeholder is a reference to a server-side parameter, e.g. `%github.oauth%`.
type Placeholder struct {
	Name string
}

// ParsePlaceholder parses a `%name%` placeholder. A literal value is rejected
// so that secrets never end up in a configuration file.
func ParsePlaceholder(raw string) (Placeholder, error) {
	if raw == "" {
		return Placeholder{}, fmt.Errorf("placeholder cannot be empty")
	}
	matches := placeholderRegex.FindStringSubmatch(raw)
	if matches == nil {
		return Placeholder{}, fmt.Errorf("value must be a %%parameter%% placeholder, got a literal value")
	}
	return Placeholder{Name: matches[1]}, nil
}

// String returns the placeholder in its `%name%` form.
func (p Placeholder) String() string {
	if p.Name == "" {
		return ""
	}
	return "%" + p.Name + "%"
}

// IsZero reports whether the placeholder is unset.
func (p Placeholder) IsZero() bool {
	return p.Name == ""
}
