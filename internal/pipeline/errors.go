package pipeline

import (
	"fmt"
	"strings"
)

// DuplicateIDError is returned when an entity is registered under an id that
// is already taken.
type DuplicateIDError struct {
	Kind string
	ID   string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate %s id %q", e.Kind, e.ID)
}

// NotFoundError is returned when a lookup by id finds nothing.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// UnresolvedReferenceError is returned when a definition references an id
// that cannot be resolved. Path is set when the reference closes a
// dependency cycle.
type UnresolvedReferenceError struct {
	From   string
	ID     string
	Reason string
	Path   []string
}

func (e *UnresolvedReferenceError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "build type %q: unresolved reference %q", e.From, e.ID)
	if e.Reason != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Reason)
	}
	if len(e.Path) > 0 {
		sb.WriteString(" (")
		sb.WriteString(strings.Join(e.Path, " -> "))
		sb.WriteString(")")
	}
	return sb.String()
}

// SerializationError is returned by emitters when a field holds content that
// cannot be rendered, such as an empty id.
type SerializationError struct {
	ID    string
	Field string
	Err   error
}

func (e *SerializationError) Error() string {
	target := e.ID
	if target == "" {
		target = "<empty id>"
	}
	if e.Err != nil {
		return fmt.Sprintf("cannot serialize %s field %q: %v", target, e.Field, e.Err)
	}
	return fmt.Sprintf("cannot serialize %s field %q", target, e.Field)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

// ValidationError collects every problem found while constructing a value.
type ValidationError struct {
	Kind     string
	ID       string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q:\n- %s", e.Kind, e.ID, strings.Join(e.Problems, "\n- "))
}
