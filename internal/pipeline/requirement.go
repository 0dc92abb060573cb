package pipeline

import (
	"fmt"
	"regexp"
	"strings"
)

// RequirementKind is the comparison an agent property must satisfy.
type RequirementKind string

const (
	RequireExists         RequirementKind = "exists"
	RequireDoesNotExist   RequirementKind = "does-not-exist"
	RequireEquals         RequirementKind = "equals"
	RequireDoesNotEqual   RequirementKind = "does-not-equal"
	RequireContains       RequirementKind = "contains"
	RequireDoesNotContain RequirementKind = "does-not-contain"
	RequireStartsWith     RequirementKind = "starts-with"
	RequireEndsWith       RequirementKind = "ends-with"
	RequireMatches        RequirementKind = "matches"
)

// takesValue reports whether the kind compares against a value.
func (k RequirementKind) takesValue() bool {
	switch k {
	case RequireExists, RequireDoesNotExist:
		return false
	}
	return true
}

// ParseRequirementKind maps a kind name to a RequirementKind.
func ParseRequirementKind(raw string) (RequirementKind, error) {
	k := RequirementKind(strings.ReplaceAll(strings.ToLower(raw), "_", "-"))
	switch k {
	case RequireExists, RequireDoesNotExist, RequireEquals, RequireDoesNotEqual,
		RequireContains, RequireDoesNotContain, RequireStartsWith, RequireEndsWith,
		RequireMatches:
		return k, nil
	}
	return "", fmt.Errorf("unknown requirement kind %q", raw)
}

// Requirement is a predicate over one agent property.
type Requirement struct {
	kind     RequirementKind
	property string
	value    string
	re       *regexp.Regexp
}

// NewRequirement constructs a validated requirement. Exists and
// DoesNotExist take no value; every other kind requires one. Matches
// requires a valid regular expression.
func NewRequirement(kind RequirementKind, property, value string) (Requirement, error) {
	r := Requirement{kind: kind, property: property, value: value}
	if strings.TrimSpace(property) == "" {
		return Requirement{}, fmt.Errorf("%s requirement: property cannot be empty", kind)
	}
	if _, err := ParseRequirementKind(string(kind)); err != nil {
		return Requirement{}, err
	}
	if kind.takesValue() && value == "" {
		return Requirement{}, fmt.Errorf("%s requirement on %q: value cannot be empty", kind, property)
	}
	if !kind.takesValue() && value != "" {
		return Requirement{}, fmt.Errorf("%s requirement on %q: takes no value", kind, property)
	}
	if kind == RequireMatches {
		re, err := regexp.Compile(value)
		if err != nil {
			return Requirement{}, fmt.Errorf("matches requirement on %q: %w", property, err)
		}
		r.re = re
	}
	return r, nil
}

// Exists requires the property to be defined on the agent.
func Exists(property string) Requirement {
	return Requirement{kind: RequireExists, property: property}
}

// Contains requires the property value to contain value.
func Contains(property, value string) Requirement {
	return Requirement{kind: RequireContains, property: property, value: value}
}

func (r Requirement) Kind() RequirementKind { return r.kind }
func (r Requirement) Property() string      { return r.property }
func (r Requirement) Value() string         { return r.value }

// SatisfiedBy evaluates the requirement against an agent's properties.
func (r Requirement) SatisfiedBy(props map[string]string) bool {
	v, ok := props[r.property]
	switch r.kind {
	case RequireExists:
		return ok
	case RequireDoesNotExist:
		return !ok
	case RequireEquals:
		return ok && v == r.value
	case RequireDoesNotEqual:
		return !ok || v != r.value
	case RequireContains:
		return ok && strings.Contains(v, r.value)
	case RequireDoesNotContain:
		return !ok || !strings.Contains(v, r.value)
	case RequireStartsWith:
		return ok && strings.HasPrefix(v, r.value)
	case RequireEndsWith:
		return ok && strings.HasSuffix(v, r.value)
	case RequireMatches:
		re := r.re
		if re == nil {
			var err error
			if re, err = regexp.Compile(r.value); err != nil {
				return false
			}
		}
		return ok && re.MatchString(v)
	}
	return false
}

// Requirements is a conjunction: all members must hold.
type Requirements []Requirement

// SatisfiedBy reports whether every requirement holds for props. An empty
// list is satisfied by any agent.
func (rs Requirements) SatisfiedBy(props map[string]string) bool {
	for _, r := range rs {
		if !r.SatisfiedBy(props) {
			return false
		}
	}
	return true
}
