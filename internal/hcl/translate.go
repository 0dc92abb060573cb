// This file translates the decoded HCL schema structs into immutable
// pipeline values.

package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/vk/pipedef/internal/config"
	"github.com/vk/pipedef/internal/ctxlog"
	"github.com/vk/pipedef/internal/pipeline"
	"github.com/vk/pipedef/internal/refid"
)

func translateProject(p *projectBlock) (pipeline.Project, error) {
	project := pipeline.Project{ID: p.ID, Name: p.Name, Version: p.Version}
	if err := project.Validate(); err != nil {
		return pipeline.Project{}, fmt.Errorf("project %q: %w", p.ID, err)
	}
	if err := config.CheckVersion(p.Version); err != nil {
		return pipeline.Project{}, fmt.Errorf("project %q: %w", p.ID, err)
	}
	return project, nil
}

func translateVcsRoot(v *vcsRootBlock) (*pipeline.VcsRoot, error) {
	return pipeline.NewVcsRoot(pipeline.VcsRootSpec{
		ID:         v.ID,
		Name:       v.Name,
		URL:        v.URL,
		Branch:     v.Branch,
		BranchSpec: v.BranchSpec,
	})
}

// translateBuildType converts a build_type block into a BuildDefinition.
func translateBuildType(ctx context.Context, bt *buildTypeBlock, evalCtx *hcl.EvalContext) (*pipeline.BuildDefinition, error) {
	logger := ctxlog.FromContext(ctx).With("build_type", bt.ID)
	logger.Debug("Translating build type.", "steps", len(bt.Steps), "requirements", len(bt.Requirements), "features", len(bt.Features))

	b := pipeline.NewBuildDefinition(bt.ID, bt.Name).
		Description(bt.Description).
		ArtifactRules(bt.ArtifactRules...).
		VcsRoot(bt.VcsRoots...)

	for _, block := range bt.Steps {
		step, err := translateStep(block, evalCtx)
		if err != nil {
			return nil, fmt.Errorf("build type %q: %w", bt.ID, err)
		}
		b.Step(step)
	}

	for _, block := range bt.Requirements {
		req, err := translateRequirement(block, evalCtx)
		if err != nil {
			return nil, fmt.Errorf("build type %q: %w", bt.ID, err)
		}
		b.Require(req)
	}

	for _, block := range bt.Features {
		feature, err := translateFeature(block, evalCtx)
		if err != nil {
			return nil, fmt.Errorf("build type %q: %w", bt.ID, err)
		}
		b.Feature(feature)
	}

	for _, block := range bt.Dependencies {
		dep, err := translateDependency(block)
		if err != nil {
			return nil, fmt.Errorf("build type %q: %w", bt.ID, err)
		}
		b.DependsOn(dep)
	}

	return b.Build()
}

func translateStep(block *labelledBlock, evalCtx *hcl.EvalContext) (pipeline.Step, error) {
	switch pipeline.StepKind(block.Kind) {
	case pipeline.StepScript:
		var body scriptStepBody
		if diags := gohcl.DecodeBody(block.Body, evalCtx, &body); diags.HasErrors() {
			return nil, fmt.Errorf("%s: script step: %w", block.Range, diags)
		}
		return pipeline.NewScriptStep(body.Name, body.Content), nil

	case pipeline.StepDockerCompose:
		var body composeStepBody
		if diags := gohcl.DecodeBody(block.Body, evalCtx, &body); diags.HasErrors() {
			return nil, fmt.Errorf("%s: docker_compose step: %w", block.Range, diags)
		}
		return pipeline.NewComposeStep(body.Name, body.File), nil

	case pipeline.StepDockerCommand:
		var body dockerCommandStepBody
		if diags := gohcl.DecodeBody(block.Body, evalCtx, &body); diags.HasErrors() {
			return nil, fmt.Errorf("%s: docker_command step: %w", block.Range, diags)
		}
		return pipeline.NewDockerCommandStep(body.Name, body.SubCommand), nil
	}
	return nil, fmt.Errorf("%s: unknown step kind %q", block.Range, block.Kind)
}

func translateRequirement(block *labelledBlock, evalCtx *hcl.EvalContext) (pipeline.Requirement, error) {
	kind, err := pipeline.ParseRequirementKind(block.Kind)
	if err != nil {
		return pipeline.Requirement{}, fmt.Errorf("%s: %w", block.Range, err)
	}

	var body requirementBody
	if diags := gohcl.DecodeBody(block.Body, evalCtx, &body); diags.HasErrors() {
		return pipeline.Requirement{}, fmt.Errorf("%s: %s requirement: %w", block.Range, kind, diags)
	}

	req, err := pipeline.NewRequirement(kind, body.Property, body.Value)
	if err != nil {
		return pipeline.Requirement{}, fmt.Errorf("%s: %w", block.Range, err)
	}
	return req, nil
}

func translateFeature(block *labelledBlock, evalCtx *hcl.EvalContext) (pipeline.Feature, error) {
	switch pipeline.FeatureType(block.Kind) {
	case pipeline.FeaturePullRequests:
		var body pullRequestsBody
		if diags := gohcl.DecodeBody(block.Body, evalCtx, &body); diags.HasErrors() {
			return nil, fmt.Errorf("%s: pull_requests feature: %w", block.Range, diags)
		}
		token, err := parseToken(body.AuthToken)
		if err != nil {
			return nil, fmt.Errorf("%s: pull_requests feature: auth_token: %w", block.Range, err)
		}

		var provider pipeline.PullRequestProvider
		switch pipeline.ProviderType(body.Provider) {
		case pipeline.ProviderGitHub:
			filter := pipeline.RoleFilter("")
			if body.AuthorRoleFilter != "" {
				if filter, err = pipeline.ParseRoleFilter(body.AuthorRoleFilter); err != nil {
					return nil, fmt.Errorf("%s: %w", block.Range, err)
				}
			}
			provider = pipeline.GitHub(token, filter)
		case pipeline.ProviderGitLab:
			provider = pipeline.GitLab(token)
			if body.AuthorRoleFilter != "" {
				provider.RoleFilter = pipeline.RoleFilter(body.AuthorRoleFilter)
			}
		default:
			provider = pipeline.PullRequestProvider{Type: pipeline.ProviderType(body.Provider), AuthToken: token}
		}

		feature, err := pipeline.NewPullRequests(body.VcsRoot, provider)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", block.Range, err)
		}
		return feature, nil

	case pipeline.FeatureCommitStatusPublisher:
		var body commitStatusPublisherBody
		if diags := gohcl.DecodeBody(block.Body, evalCtx, &body); diags.HasErrors() {
			return nil, fmt.Errorf("%s: commit_status_publisher feature: %w", block.Range, diags)
		}
		token, err := parseToken(body.AuthToken)
		if err != nil {
			return nil, fmt.Errorf("%s: commit_status_publisher feature: auth_token: %w", block.Range, err)
		}
		feature, err := pipeline.NewCommitStatusPublisher(body.VcsRoot, pipeline.ProviderType(body.Provider), token)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", block.Range, err)
		}
		return feature, nil
	}
	return nil, fmt.Errorf("%s: unknown feature type %q", block.Range, block.Kind)
}

func translateDependency(block *dependencyBlock) (pipeline.Dependency, error) {
	target, err := refid.Parse(block.BuildType)
	if err != nil {
		return pipeline.Dependency{}, fmt.Errorf("dependency: %w", err)
	}

	var artifacts *pipeline.ArtifactDependency
	if block.Artifacts != nil {
		artifacts = &pipeline.ArtifactDependency{
			CleanDestination: block.Artifacts.CleanDestination,
			Rules:            block.Artifacts.Rules,
		}
	}
	return pipeline.NewDependency(target, artifacts), nil
}

// parseToken accepts an empty token or a %placeholder%.
func parseToken(raw string) (refid.Placeholder, error) {
	if raw == "" {
		return refid.Placeholder{}, nil
	}
	return refid.ParsePlaceholder(raw)
}
