package pipeline

import (
	"fmt"

	"github.com/vk/pipedef/internal/refid"
)

// VcsRoot is a named source repository location shared by build definitions.
type VcsRoot struct {
	id         string
	name       string
	url        string
	branch     string
	branchSpec []string
}

// VcsRootSpec holds the fields used to construct a VcsRoot.
type VcsRootSpec struct {
	ID         string
	Name       string
	URL        string
	Branch     string
	BranchSpec []string
}

// NewVcsRoot validates spec and returns an immutable VcsRoot.
func NewVcsRoot(spec VcsRootSpec) (*VcsRoot, error) {
	var problems []string
	if err := refid.ValidateID(spec.ID); err != nil {
		problems = append(problems, err.Error())
	}
	if spec.URL == "" {
		problems = append(problems, "url cannot be empty")
	}
	if len(problems) > 0 {
		return nil, &ValidationError{Kind: "vcs root", ID: spec.ID, Problems: problems}
	}

	name := spec.Name
	if name == "" {
		name = spec.ID
	}
	return &VcsRoot{
		id:         spec.ID,
		name:       name,
		url:        spec.URL,
		branch:     spec.Branch,
		branchSpec: append([]string(nil), spec.BranchSpec...),
	}, nil
}

func (v *VcsRoot) ID() string     { return v.id }
func (v *VcsRoot) Name() string   { return v.name }
func (v *VcsRoot) URL() string    { return v.url }
func (v *VcsRoot) Branch() string { return v.branch }

// BranchSpec returns a copy of the branch filter lines.
func (v *VcsRoot) BranchSpec() []string {
	return append([]string(nil), v.branchSpec...)
}

// String implements fmt.Stringer.
func (v *VcsRoot) String() string {
	return fmt.Sprintf("%s (%s)", v.id, v.url)
}
