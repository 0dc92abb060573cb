package pipeline

import (
	"fmt"
	"strings"

	"github.com/vk/pipedef/internal/refid"
)

// FeatureType identifies the variant of a Feature.
type FeatureType string

const (
	FeaturePullRequests          FeatureType = "pull_requests"
	FeatureCommitStatusPublisher FeatureType = "commit_status_publisher"
)

// Feature is auxiliary behaviour attached to a build definition. The
// interface is sealed.
type Feature interface {
	Type() FeatureType
	// VcsRootID is the VCS root the feature operates on.
	VcsRootID() string
	// AuthToken is the placeholder for the credential the feature uses.
	AuthToken() refid.Placeholder
	isFeature()
}

// RoleFilter restricts which pull-request authors trigger a build.
type RoleFilter string

const (
	RoleMember               RoleFilter = "MEMBER"
	RoleMemberOrCollaborator RoleFilter = "MEMBER_OR_COLLABORATOR"
	RoleEverybody            RoleFilter = "EVERYBODY"
)

// ParseRoleFilter maps a filter name to a RoleFilter.
func ParseRoleFilter(raw string) (RoleFilter, error) {
	f := RoleFilter(strings.ToUpper(raw))
	switch f {
	case RoleMember, RoleMemberOrCollaborator, RoleEverybody:
		return f, nil
	}
	return "", fmt.Errorf("unknown author role filter %q", raw)
}

// ProviderType names a pull-request hosting service.
type ProviderType string

const (
	ProviderGitHub ProviderType = "github"
	ProviderGitLab ProviderType = "gitlab"
)

// PullRequestProvider configures how pull requests are discovered.
type PullRequestProvider struct {
	Type       ProviderType
	AuthToken  refid.Placeholder
	RoleFilter RoleFilter
}

// GitHub returns a GitHub provider authenticating with token.
func GitHub(token refid.Placeholder, filter RoleFilter) PullRequestProvider {
	return PullRequestProvider{Type: ProviderGitHub, AuthToken: token, RoleFilter: filter}
}

// GitLab returns a GitLab provider authenticating with token.
func GitLab(token refid.Placeholder) PullRequestProvider {
	return PullRequestProvider{Type: ProviderGitLab, AuthToken: token}
}

func (p PullRequestProvider) validate() error {
	switch p.Type {
	case ProviderGitHub:
		if p.RoleFilter != "" {
			if _, err := ParseRoleFilter(string(p.RoleFilter)); err != nil {
				return err
			}
		}
	case ProviderGitLab:
		if p.RoleFilter != "" {
			return fmt.Errorf("author role filter is only supported by the github provider")
		}
	default:
		return fmt.Errorf("unknown pull request provider %q", p.Type)
	}
	return nil
}

// PullRequests gates builds on pull requests of a VCS root.
type PullRequests struct {
	vcsRootID string
	provider  PullRequestProvider
}

// NewPullRequests builds a validated pull-request feature.
func NewPullRequests(vcsRootID string, provider PullRequestProvider) (PullRequests, error) {
	if vcsRootID == "" {
		return PullRequests{}, fmt.Errorf("pull_requests feature: vcs_root cannot be empty")
	}
	if err := provider.validate(); err != nil {
		return PullRequests{}, fmt.Errorf("pull_requests feature: %w", err)
	}
	return PullRequests{vcsRootID: vcsRootID, provider: provider}, nil
}

func (f PullRequests) Type() FeatureType             { return FeaturePullRequests }
func (f PullRequests) VcsRootID() string             { return f.vcsRootID }
func (f PullRequests) AuthToken() refid.Placeholder  { return f.provider.AuthToken }
func (f PullRequests) Provider() PullRequestProvider { return f.provider }

func (PullRequests) isFeature() {}

// CommitStatusPublisher reports build status back to the VCS hosting service.
type CommitStatusPublisher struct {
	vcsRootID string
	provider  ProviderType
	token     refid.Placeholder
}

// NewCommitStatusPublisher builds a validated commit status publisher.
func NewCommitStatusPublisher(vcsRootID string, provider ProviderType, token refid.Placeholder) (CommitStatusPublisher, error) {
	if vcsRootID == "" {
		return CommitStatusPublisher{}, fmt.Errorf("commit_status_publisher feature: vcs_root cannot be empty")
	}
	switch provider {
	case ProviderGitHub, ProviderGitLab:
	default:
		return CommitStatusPublisher{}, fmt.Errorf("commit_status_publisher feature: unknown provider %q", provider)
	}
	return CommitStatusPublisher{vcsRootID: vcsRootID, provider: provider, token: token}, nil
}

func (f CommitStatusPublisher) Type() FeatureType            { return FeatureCommitStatusPublisher }
func (f CommitStatusPublisher) VcsRootID() string            { return f.vcsRootID }
func (f CommitStatusPublisher) AuthToken() refid.Placeholder { return f.token }
func (f CommitStatusPublisher) Provider() ProviderType       { return f.provider }

func (CommitStatusPublisher) isFeature() {}
