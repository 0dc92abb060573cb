package pipeline

import "github.com/vk/pipedef/internal/refid"

// Project is the namespace a configuration set belongs to.
type Project struct {
	ID      string
	Name    string
	Version string
}

// Validate checks the project id. A zero Project is valid and means the
// configuration set is not bound to a named project.
func (p Project) Validate() error {
	if p.ID == "" {
		return nil
	}
	return refid.ValidateID(p.ID)
}
