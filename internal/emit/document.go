package emit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vk/pipedef/internal/config"
	"github.com/vk/pipedef/internal/pipeline"
	"github.com/vk/pipedef/internal/refid"
)

// Document is the format-independent descriptor. Field order is the order
// of the emitted mapping keys.
type Document struct {
	Version    string         `yaml:"version" json:"version"`
	Project    *ProjectDoc    `yaml:"project,omitempty" json:"project,omitempty"`
	VcsRoots   []VcsRootDoc   `yaml:"vcsRoots" json:"vcsRoots"`
	BuildTypes []BuildTypeDoc `yaml:"buildTypes" json:"buildTypes"`
}

type ProjectDoc struct {
	ID      string `yaml:"id" json:"id"`
	Name    string `yaml:"name,omitempty" json:"name,omitempty"`
	Version string `yaml:"version,omitempty" json:"version,omitempty"`
}

type VcsRootDoc struct {
	ID         string   `yaml:"id" json:"id"`
	Name       string   `yaml:"name" json:"name"`
	URL        string   `yaml:"url" json:"url"`
	Branch     string   `yaml:"branch,omitempty" json:"branch,omitempty"`
	BranchSpec []string `yaml:"branchSpec,omitempty" json:"branchSpec,omitempty"`
}

type BuildTypeDoc struct {
	ID            string           `yaml:"id" json:"id"`
	Name          string           `yaml:"name" json:"name"`
	Description   string           `yaml:"description,omitempty" json:"description,omitempty"`
	ArtifactRules []string         `yaml:"artifactRules,omitempty" json:"artifactRules,omitempty"`
	Vcs           []string         `yaml:"vcs,omitempty" json:"vcs,omitempty"`
	Steps         []StepDoc        `yaml:"steps" json:"steps"`
	Requirements  []RequirementDoc `yaml:"requirements,omitempty" json:"requirements,omitempty"`
	Features      []FeatureDoc     `yaml:"features,omitempty" json:"features,omitempty"`
	Dependencies  []DependencyDoc  `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
}

// StepDoc carries exactly one of ScriptContent, File or SubCommand,
// depending on Type.
type StepDoc struct {
	Type          string `yaml:"type" json:"type"`
	Name          string `yaml:"name,omitempty" json:"name,omitempty"`
	ScriptContent string `yaml:"scriptContent,omitempty" json:"scriptContent,omitempty"`
	File          string `yaml:"file,omitempty" json:"file,omitempty"`
	SubCommand    string `yaml:"subCommand,omitempty" json:"subCommand,omitempty"`
}

type RequirementDoc struct {
	Kind     string `yaml:"kind" json:"kind"`
	Property string `yaml:"property" json:"property"`
	Value    string `yaml:"value,omitempty" json:"value,omitempty"`
}

type FeatureDoc struct {
	Type             string `yaml:"type" json:"type"`
	VcsRoot          string `yaml:"vcsRoot" json:"vcsRoot"`
	Provider         string `yaml:"provider" json:"provider"`
	AuthToken        string `yaml:"authToken,omitempty" json:"authToken,omitempty"`
	AuthorRoleFilter string `yaml:"authorRoleFilter,omitempty" json:"authorRoleFilter,omitempty"`
}

type DependencyDoc struct {
	BuildType BuildTypeRefDoc `yaml:"buildType" json:"buildType"`
	Artifacts *ArtifactsDoc   `yaml:"artifacts,omitempty" json:"artifacts,omitempty"`
}

type BuildTypeRefDoc struct {
	ID       string `yaml:"id" json:"id"`
	Absolute bool   `yaml:"absolute" json:"absolute"`
}

type ArtifactsDoc struct {
	CleanDestination bool     `yaml:"cleanDestination" json:"cleanDestination"`
	Rules            []string `yaml:"rules" json:"rules"`
}

// NewDocument converts the project, VCS roots and definitions into a
// Document, preserving the given order everywhere.
func NewDocument(project pipeline.Project, vcsRoots []*pipeline.VcsRoot, defs []*pipeline.BuildDefinition) (*Document, error) {
	doc := &Document{
		Version:    config.SchemaVersion,
		VcsRoots:   make([]VcsRootDoc, 0, len(vcsRoots)),
		BuildTypes: make([]BuildTypeDoc, 0, len(defs)),
	}
	if project.ID != "" {
		doc.Project = &ProjectDoc{ID: project.ID, Name: project.Name, Version: project.Version}
	}

	for _, root := range vcsRoots {
		rd, err := newVcsRootDoc(root)
		if err != nil {
			return nil, err
		}
		doc.VcsRoots = append(doc.VcsRoots, rd)
	}

	for _, def := range defs {
		bd, err := newBuildTypeDoc(def)
		if err != nil {
			return nil, err
		}
		doc.BuildTypes = append(doc.BuildTypes, bd)
	}
	return doc, nil
}

func newVcsRootDoc(root *pipeline.VcsRoot) (VcsRootDoc, error) {
	if root == nil {
		return VcsRootDoc{}, &pipeline.SerializationError{Field: "vcs_root", Err: errors.New("nil VCS root")}
	}
	if root.ID() == "" {
		return VcsRootDoc{}, &pipeline.SerializationError{Field: "id"}
	}
	if strings.TrimSpace(root.URL()) == "" {
		return VcsRootDoc{}, &pipeline.SerializationError{ID: root.ID(), Field: "url"}
	}
	return VcsRootDoc{
		ID:         root.ID(),
		Name:       root.Name(),
		URL:        root.URL(),
		Branch:     root.Branch(),
		BranchSpec: root.BranchSpec(),
	}, nil
}

func newBuildTypeDoc(def *pipeline.BuildDefinition) (BuildTypeDoc, error) {
	if def == nil {
		return BuildTypeDoc{}, &pipeline.SerializationError{Field: "build_type", Err: errors.New("nil definition")}
	}
	id := def.ID()
	if id == "" {
		return BuildTypeDoc{}, &pipeline.SerializationError{Field: "id"}
	}
	if strings.TrimSpace(def.Name()) == "" {
		return BuildTypeDoc{}, &pipeline.SerializationError{ID: id, Field: "name"}
	}

	bd := BuildTypeDoc{
		ID:            id,
		Name:          def.Name(),
		Description:   def.Description(),
		ArtifactRules: def.ArtifactRules(),
		Vcs:           def.VcsRoots(),
		Steps:         make([]StepDoc, 0, len(def.Steps())),
	}

	for i, step := range def.Steps() {
		sd, err := newStepDoc(step)
		if err != nil {
			return BuildTypeDoc{}, &pipeline.SerializationError{ID: id, Field: fmt.Sprintf("steps[%d]", i), Err: err}
		}
		bd.Steps = append(bd.Steps, sd)
	}

	for i, req := range def.Requirements() {
		if req.Property() == "" {
			return BuildTypeDoc{}, &pipeline.SerializationError{ID: id, Field: fmt.Sprintf("requirements[%d].property", i)}
		}
		bd.Requirements = append(bd.Requirements, RequirementDoc{
			Kind:     string(req.Kind()),
			Property: req.Property(),
			Value:    req.Value(),
		})
	}

	for i, feature := range def.Features() {
		fd, err := newFeatureDoc(feature)
		if err != nil {
			return BuildTypeDoc{}, &pipeline.SerializationError{ID: id, Field: fmt.Sprintf("features[%d]", i), Err: err}
		}
		bd.Features = append(bd.Features, fd)
	}

	for i, dep := range def.Dependencies() {
		target := dep.Target()
		if target.ID == "" {
			return BuildTypeDoc{}, &pipeline.SerializationError{ID: id, Field: fmt.Sprintf("dependencies[%d].build_type", i)}
		}
		dd := DependencyDoc{BuildType: BuildTypeRefDoc{ID: target.ID, Absolute: target.Absolute}}
		if a := dep.Artifacts(); a != nil {
			rules := a.Rules
			if rules == nil {
				rules = []string{}
			}
			dd.Artifacts = &ArtifactsDoc{CleanDestination: a.CleanDestination, Rules: rules}
		}
		bd.Dependencies = append(bd.Dependencies, dd)
	}
	return bd, nil
}

func newStepDoc(step pipeline.Step) (StepDoc, error) {
	switch s := step.(type) {
	case pipeline.ScriptStep:
		if strings.TrimSpace(s.Content()) == "" {
			return StepDoc{}, errors.New("empty script content")
		}
		return StepDoc{Type: string(s.Kind()), Name: s.Name(), ScriptContent: s.Content()}, nil
	case pipeline.ComposeStep:
		if strings.TrimSpace(s.File()) == "" {
			return StepDoc{}, errors.New("empty compose file")
		}
		return StepDoc{Type: string(s.Kind()), Name: s.Name(), File: s.File()}, nil
	case pipeline.DockerCommandStep:
		if strings.TrimSpace(s.SubCommand()) == "" {
			return StepDoc{}, errors.New("empty docker sub-command")
		}
		return StepDoc{Type: string(s.Kind()), Name: s.Name(), SubCommand: s.SubCommand()}, nil
	}
	return StepDoc{}, fmt.Errorf("unknown step variant %T", step)
}

func newFeatureDoc(feature pipeline.Feature) (FeatureDoc, error) {
	token, err := tokenString(feature)
	if err != nil {
		return FeatureDoc{}, err
	}
	switch f := feature.(type) {
	case pipeline.PullRequests:
		p := f.Provider()
		return FeatureDoc{
			Type:             string(f.Type()),
			VcsRoot:          f.VcsRootID(),
			Provider:         string(p.Type),
			AuthToken:        token,
			AuthorRoleFilter: string(p.RoleFilter),
		}, nil
	case pipeline.CommitStatusPublisher:
		return FeatureDoc{
			Type:      string(f.Type()),
			VcsRoot:   f.VcsRootID(),
			Provider:  string(f.Provider()),
			AuthToken: token,
		}, nil
	}
	return FeatureDoc{}, fmt.Errorf("unknown feature variant %T", feature)
}

// tokenString renders the feature token. Only placeholders are emitted.
func tokenString(feature pipeline.Feature) (string, error) {
	if feature == nil {
		return "", errors.New("nil feature")
	}
	token := feature.AuthToken()
	if token.IsZero() {
		return "", nil
	}
	if _, err := refid.ParsePlaceholder(token.String()); err != nil {
		return "", fmt.Errorf("auth_token: %w", err)
	}
	return token.String(), nil
}
