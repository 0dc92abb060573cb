package resolve

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/pipedef/internal/ctxlog"
	"github.com/vk/pipedef/internal/depgraph"
	"github.com/vk/pipedef/internal/pipeline"
	"github.com/vk/pipedef/internal/refid"
	"github.com/vk/pipedef/internal/registry"
)

// ExternalIDs is the optional allow-list of absolute build type ids. When it
// is empty, absolute references are only checked for well-formedness.
type ExternalIDs map[string]struct{}

// NewExternalIDs builds an allow-list from ids.
func NewExternalIDs(ids ...string) ExternalIDs {
	ext := make(ExternalIDs, len(ids))
	for _, id := range ids {
		ext[id] = struct{}{}
	}
	return ext
}

// Resolve checks every reference of def against reg and externalIDs. It
// returns a *pipeline.UnresolvedReferenceError naming the first offending id.
func Resolve(ctx context.Context, def *pipeline.BuildDefinition, reg *registry.Registry, externalIDs ExternalIDs) error {
	logger := ctxlog.FromContext(ctx).With("build_type", def.ID())
	logger.Debug("Resolving references.")

	for _, dep := range def.Dependencies() {
		if err := resolveBuildType(def.ID(), dep.Target(), reg, externalIDs); err != nil {
			return err
		}
		logger.Debug("Dependency resolved.", "target", dep.Target().String())
	}

	for _, rootID := range def.VcsRoots() {
		if err := resolveVcsRoot(def.ID(), rootID, reg); err != nil {
			return err
		}
	}

	for _, f := range def.Features() {
		if err := resolveVcsRoot(def.ID(), f.VcsRootID(), reg); err != nil {
			return err
		}
		if f.AuthToken().IsZero() {
			continue
		}
		if _, err := refid.ParsePlaceholder(f.AuthToken().String()); err != nil {
			return &pipeline.UnresolvedReferenceError{
				From:   def.ID(),
				ID:     string(f.Type()) + ".auth_token",
				Reason: err.Error(),
			}
		}
	}

	logger.Debug("References resolved.")
	return nil
}

// ResolveAll resolves every registered definition, then verifies that the
// in-namespace dependencies form an acyclic graph.
func ResolveAll(ctx context.Context, reg *registry.Registry, externalIDs ExternalIDs) error {
	logger := ctxlog.FromContext(ctx)
	defs := reg.Definitions()
	logger.Debug("Resolving all build types.", "count", len(defs))

	graph := depgraph.New()
	for _, def := range defs {
		if err := Resolve(ctx, def, reg, externalIDs); err != nil {
			return err
		}
		graph.AddNode(def.ID())
	}

	for _, def := range defs {
		for _, dep := range def.Dependencies() {
			if dep.Target().Absolute {
				continue
			}
			if err := graph.AddEdge(def.ID(), dep.Target().ID); err != nil {
				return fmt.Errorf("internal error linking %s: %w", def.ID(), err)
			}
		}
	}

	if err := graph.DetectCycles(); err != nil {
		var cycleErr *depgraph.CycleError
		if errors.As(err, &cycleErr) {
			return &pipeline.UnresolvedReferenceError{
				From:   cycleErr.Path[0],
				ID:     cycleErr.Path[1],
				Reason: "dependency cycle",
				Path:   cycleErr.Path,
			}
		}
		return err
	}

	logger.Info("All references resolved.", "build_types", len(defs))
	return nil
}

func resolveBuildType(from string, target refid.Ref, reg *registry.Registry, externalIDs ExternalIDs) error {
	if err := target.Validate(); err != nil {
		return &pipeline.UnresolvedReferenceError{From: from, ID: target.String(), Reason: err.Error()}
	}

	if target.Absolute {
		if len(externalIDs) == 0 {
			return nil
		}
		if _, ok := externalIDs[target.ID]; !ok {
			return &pipeline.UnresolvedReferenceError{From: from, ID: target.String(), Reason: "absolute build type is not in the list of known external ids"}
		}
		return nil
	}

	if !reg.Has(target.ID) {
		return &pipeline.UnresolvedReferenceError{From: from, ID: target.ID, Reason: "no build type with this id is registered"}
	}
	return nil
}

func resolveVcsRoot(from, id string, reg *registry.Registry) error {
	if _, err := reg.VcsRoot(id); err != nil {
		return &pipeline.UnresolvedReferenceError{From: from, ID: id, Reason: "no vcs root with this id is registered"}
	}
	return nil
}
