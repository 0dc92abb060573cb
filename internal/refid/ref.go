// internal/refid/ref.go
package refid

import (
	"fmt"
	"strings"
)

// AbsolutePrefix marks the canonical string form of an absolute reference.
const AbsolutePrefix = "absolute:"

// Ref is a reference to a build type, either local to the configuration set
// or absolute within the CI server.
type Ref struct {
	ID       string
	Absolute bool
}

// Local returns a reference to an entity in the same configuration set.
func Local(id string) Ref {
	return Ref{ID: id}
}

// Absolute returns a reference to a build type owned by another project.
func Absolute(id string) Ref {
	return Ref{ID: id, Absolute: true}
}

// Parse creates a Ref from its canonical string representation.
func Parse(raw string) (Ref, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Ref{}, fmt.Errorf("reference cannot be empty")
	}

	ref := Ref{ID: raw}
	if rest, ok := strings.CutPrefix(raw, AbsolutePrefix); ok {
		ref = Ref{ID: rest, Absolute: true}
	}

	if err := ValidateID(ref.ID); err != nil {
		return Ref{}, err
	}
	return ref, nil
}

// String serializes the Ref into its canonical form.
func (r Ref) String() string {
	if r.Absolute {
		return AbsolutePrefix + r.ID
	}
	return r.ID
}

// Validate checks the syntax of the referenced id.
func (r Ref) Validate() error {
	return ValidateID(r.ID)
}
