// internal/refid/id.go
package refid

import (
	"fmt"
	"regexp"
)

// MaxIDLength is the longest identifier the CI server accepts.
const MaxIDLength = 225

// idRegex matches an external id: a Latin letter followed by letters, digits
// or underscores.
var idRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// ValidateID reports whether raw is a well-formed identifier.
func ValidateID(raw string) error {
	if raw == "" {
		return fmt.Errorf("identifier cannot be empty")
	}
	if len(raw) > MaxIDLength {
		return fmt.Errorf("identifier %q is longer than %d characters", raw, MaxIDLength)
	}
	if !idRegex.MatchString(raw) {
		return fmt.Errorf("invalid identifier %q: must start with a Latin letter and contain only letters, digits and underscores", raw)
	}
	return nil
}
