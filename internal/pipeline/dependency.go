package pipeline

import "github.com/vk/pipedef/internal/refid"

// ArtifactDependency describes which files are copied from the dependency.
type ArtifactDependency struct {
	CleanDestination bool
	Rules            []string
}

// Dependency is a reference to another build definition whose artifacts are
// consumed by this one.
type Dependency struct {
	target    refid.Ref
	artifacts *ArtifactDependency
}

// NewDependency returns a dependency on target. artifacts may be nil for a
// plain ordering dependency.
func NewDependency(target refid.Ref, artifacts *ArtifactDependency) Dependency {
	d := Dependency{target: target}
	if artifacts != nil {
		d.artifacts = &ArtifactDependency{
			CleanDestination: artifacts.CleanDestination,
			Rules:            append([]string(nil), artifacts.Rules...),
		}
	}
	return d
}

// Target returns the referenced build type.
func (d Dependency) Target() refid.Ref { return d.target }

// Artifacts returns a copy of the artifact rules, or nil.
func (d Dependency) Artifacts() *ArtifactDependency {
	if d.artifacts == nil {
		return nil
	}
	return &ArtifactDependency{
		CleanDestination: d.artifacts.CleanDestination,
		Rules:            append([]string(nil), d.artifacts.Rules...),
	}
}
