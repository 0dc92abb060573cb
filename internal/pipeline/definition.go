package pipeline

import (
	"fmt"
	"strings"

	"github.com/vk/pipedef/internal/refid"
)

// BuildDefinition is a named CI pipeline stage. It is immutable: accessors
// return copies and there are no setters.
type BuildDefinition struct {
	id            string
	name          string
	description   string
	artifactRules []string
	vcsRoots      []string
	steps         []Step
	requirements  Requirements
	features      []Feature
	dependencies  []Dependency
}

func (d *BuildDefinition) ID() string          { return d.id }
func (d *BuildDefinition) Name() string        { return d.name }
func (d *BuildDefinition) Description() string { return d.description }

// ArtifactRules returns the artifact publishing patterns, verbatim.
func (d *BuildDefinition) ArtifactRules() []string {
	return append([]string(nil), d.artifactRules...)
}

// VcsRoots returns the ids of the VCS roots checked out by the definition.
func (d *BuildDefinition) VcsRoots() []string {
	return append([]string(nil), d.vcsRoots...)
}

// Steps returns the steps in execution order.
func (d *BuildDefinition) Steps() []Step {
	return append([]Step(nil), d.steps...)
}

// Requirements returns the agent requirements. All must hold.
func (d *BuildDefinition) Requirements() Requirements {
	return append(Requirements(nil), d.requirements...)
}

func (d *BuildDefinition) Features() []Feature {
	return append([]Feature(nil), d.features...)
}

func (d *BuildDefinition) Dependencies() []Dependency {
	return append([]Dependency(nil), d.dependencies...)
}

// String implements fmt.Stringer.
func (d *BuildDefinition) String() string {
	return fmt.Sprintf("%s (%q)", d.id, d.name)
}

// Builder accumulates the parts of a BuildDefinition. Build validates
// everything at once, so callers never observe a partially initialised
// definition.
type Builder struct {
	def BuildDefinition
}

// NewBuildDefinition starts a definition with the given id and display name.
func NewBuildDefinition(id, name string) *Builder {
	return &Builder{def: BuildDefinition{id: id, name: name}}
}

func (b *Builder) Description(text string) *Builder {
	b.def.description = text
	return b
}

// ArtifactRules appends artifact publishing patterns.
func (b *Builder) ArtifactRules(rules ...string) *Builder {
	b.def.artifactRules = append(b.def.artifactRules, rules...)
	return b
}

// VcsRoot attaches a VCS root by id.
func (b *Builder) VcsRoot(ids ...string) *Builder {
	b.def.vcsRoots = append(b.def.vcsRoots, ids...)
	return b
}

// Step appends steps in execution order.
func (b *Builder) Step(steps ...Step) *Builder {
	b.def.steps = append(b.def.steps, steps...)
	return b
}

func (b *Builder) Require(reqs ...Requirement) *Builder {
	b.def.requirements = append(b.def.requirements, reqs...)
	return b
}

func (b *Builder) Feature(features ...Feature) *Builder {
	b.def.features = append(b.def.features, features...)
	return b
}

func (b *Builder) DependsOn(deps ...Dependency) *Builder {
	b.def.dependencies = append(b.def.dependencies, deps...)
	return b
}

// Build validates the accumulated parts and returns the definition.
func (b *Builder) Build() (*BuildDefinition, error) {
	var problems []string

	if err := refid.ValidateID(b.def.id); err != nil {
		problems = append(problems, err.Error())
	}
	if strings.TrimSpace(b.def.name) == "" {
		problems = append(problems, "name cannot be empty")
	}
	for i, rule := range b.def.artifactRules {
		if strings.TrimSpace(rule) == "" {
			problems = append(problems, fmt.Sprintf("artifact rule %d is empty", i))
		}
	}
	for _, id := range b.def.vcsRoots {
		if err := refid.ValidateID(id); err != nil {
			problems = append(problems, fmt.Sprintf("vcs root: %v", err))
		}
	}
	for i, s := range b.def.steps {
		if err := ValidateStep(s); err != nil {
			problems = append(problems, fmt.Sprintf("step %d: %v", i, err))
		}
	}
	for i, r := range b.def.requirements {
		if _, err := NewRequirement(r.kind, r.property, r.value); err != nil {
			problems = append(problems, fmt.Sprintf("requirement %d: %v", i, err))
		}
	}
	for i, f := range b.def.features {
		if f == nil {
			problems = append(problems, fmt.Sprintf("feature %d is nil", i))
		}
	}
	for i, d := range b.def.dependencies {
		if err := d.target.Validate(); err != nil {
			problems = append(problems, fmt.Sprintf("dependency %d: %v", i, err))
		}
		if d.target.ID == b.def.id && !d.target.Absolute {
			problems = append(problems, fmt.Sprintf("dependency %d: build type cannot depend on itself", i))
		}
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Kind: "build type", ID: b.def.id, Problems: problems}
	}

	def := b.def
	def.artifactRules = append([]string(nil), b.def.artifactRules...)
	def.vcsRoots = append([]string(nil), b.def.vcsRoots...)
	def.steps = append([]Step(nil), b.def.steps...)
	def.requirements = append(Requirements(nil), b.def.requirements...)
	def.features = append([]Feature(nil), b.def.features...)
	def.dependencies = append([]Dependency(nil), b.def.dependencies...)
	return &def, nil
}
