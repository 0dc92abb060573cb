package config

import "github.com/vk/pipedef/internal/pipeline"

// Model is the unified, format-agnostic representation of one configuration
// set. Slices preserve declaration order across files; duplicates are kept so
// that the registry can report them.
type Model struct {
	Project    pipeline.Project
	VcsRoots   []*pipeline.VcsRoot
	BuildTypes []*pipeline.BuildDefinition
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{}
}
