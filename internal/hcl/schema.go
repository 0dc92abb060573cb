package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot is used to decode all possible top-level blocks from any file.
// Any other block or attribute is a decode error.
type fileRoot struct {
	Projects   []*projectBlock   `hcl:"project,block"`
	VcsRoots   []*vcsRootBlock   `hcl:"vcs_root,block"`
	BuildTypes []*buildTypeBlock `hcl:"build_type,block"`
}

// projectBlock names the namespace of the configuration set.
type projectBlock struct {
	ID      string `hcl:"id,label"`
	Name    string `hcl:"name,optional"`
	Version string `hcl:"version,optional"`
}

type vcsRootBlock struct {
	ID         string   `hcl:"id,label"`
	Name       string   `hcl:"name,optional"`
	URL        string   `hcl:"url"`
	Branch     string   `hcl:"branch,optional"`
	BranchSpec []string `hcl:"branch_spec,optional"`
}

type buildTypeBlock struct {
	ID            string             `hcl:"id,label"`
	Name          string             `hcl:"name"`
	Description   string             `hcl:"description,optional"`
	ArtifactRules []string           `hcl:"artifact_rules,optional"`
	VcsRoots      []string           `hcl:"vcs_roots,optional"`
	Steps         []*labelledBlock   `hcl:"step,block"`
	Requirements  []*labelledBlock   `hcl:"requirement,block"`
	Features      []*labelledBlock   `hcl:"feature,block"`
	Dependencies  []*dependencyBlock `hcl:"dependency,block"`
}

// labelledBlock holds a block whose schema depends on its label.
type labelledBlock struct {
	Kind  string    `hcl:"kind,label"`
	Body  hcl.Body  `hcl:",remain"`
	Range hcl.Range `hcl:",def_range"`
}

type dependencyBlock struct {
	BuildType string          `hcl:"build_type"`
	Artifacts *artifactsBlock `hcl:"artifacts,block"`
}

type artifactsBlock struct {
	CleanDestination bool     `hcl:"clean_destination,optional"`
	Rules            []string `hcl:"rules"`
}

// --- Kind-specific bodies ---

type scriptStepBody struct {
	Name    string `hcl:"name,optional"`
	Content string `hcl:"content"`
}

type composeStepBody struct {
	Name string `hcl:"name,optional"`
	File string `hcl:"file"`
}

type dockerCommandStepBody struct {
	Name       string `hcl:"name,optional"`
	SubCommand string `hcl:"sub_command"`
}

type requirementBody struct {
	Property string `hcl:"property"`
	Value    string `hcl:"value,optional"`
}

type pullRequestsBody struct {
	VcsRoot          string `hcl:"vcs_root"`
	Provider         string `hcl:"provider"`
	AuthToken        string `hcl:"auth_token,optional"`
	AuthorRoleFilter string `hcl:"author_role_filter,optional"`
}

type commitStatusPublisherBody struct {
	VcsRoot   string `hcl:"vcs_root"`
	Provider  string `hcl:"provider"`
	AuthToken string `hcl:"auth_token,optional"`
}
