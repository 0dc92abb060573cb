package registry

import (
	"context"
	"fmt"

	"github.com/vk/pipedef/internal/config"
	"github.com/vk/pipedef/internal/ctxlog"
)

// Populate registers every VCS root and build definition of a loaded model,
// in model order. It stops at the first failure.
func (r *Registry) Populate(ctx context.Context, model *config.Model) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Registry populating from config model.", "vcs_roots", len(model.VcsRoots), "build_types", len(model.BuildTypes))

	for _, root := range model.VcsRoots {
		if err := r.RegisterVcsRoot(root); err != nil {
			return fmt.Errorf("failed to register vcs root: %w", err)
		}
		logger.Debug("Registered vcs root.", "id", root.ID())
	}

	for _, def := range model.BuildTypes {
		if err := r.Register(def); err != nil {
			return fmt.Errorf("failed to register build type: %w", err)
		}
		logger.Debug("Registered build type.", "id", def.ID(), "steps", len(def.Steps()))
	}

	if r.Len() == 0 {
		logger.Warn("No build types found in configuration.")
	}
	logger.Info("Registry loaded successfully.", "build_types", r.Len(), "vcs_roots", len(r.VcsRoots()))
	return nil
}
