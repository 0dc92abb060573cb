package config

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// SchemaVersion is the version of the configuration schema understood by
// this build. Projects declare the version they were written against.
const SchemaVersion = "0.1.0"

// CheckVersion verifies that a declared project version is compatible with
// SchemaVersion under a caret constraint. An empty version is accepted.
func CheckVersion(declared string) error {
	if declared == "" {
		return nil
	}

	constraint, err := semver.NewConstraint("^" + SchemaVersion)
	if err != nil {
		return fmt.Errorf("invalid schema version: %w", err)
	}

	v, err := semver.NewVersion(declared)
	if err != nil {
		return fmt.Errorf("invalid project version %q: %w", declared, err)
	}

	if !constraint.Check(v) {
		return fmt.Errorf("project version %s is not compatible with schema version %s", v, SchemaVersion)
	}
	return nil
}
