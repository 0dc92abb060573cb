package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/pipedef/internal/config"
	"github.com/vk/pipedef/internal/ctxlog"
	"github.com/vk/pipedef/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file under paths and translates all discovered
// blocks into a single model. Files are processed in discovery order and
// blocks in source order.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.CollectFiles(paths, ".hcl")
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))
	if len(files) == 0 {
		logger.Warn("No .hcl files found.", "paths", paths)
	}

	model := config.NewModel()
	parser := hclparse.NewParser()
	evalCtx := newEvalContext()
	projectFile := ""

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, p := range root.Projects {
			if projectFile != "" {
				return nil, fmt.Errorf("%s: project %q: only one project block is allowed (already declared in %s)", file, p.ID, projectFile)
			}
			project, err := translateProject(p)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			model.Project = project
			projectFile = file
		}

		for _, v := range root.VcsRoots {
			vcsRoot, err := translateVcsRoot(v)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			model.VcsRoots = append(model.VcsRoots, vcsRoot)
		}

		for _, bt := range root.BuildTypes {
			def, err := translateBuildType(ctx, bt, evalCtx)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			model.BuildTypes = append(model.BuildTypes, def)
		}
		logger.Debug("Loaded HCL file.", "file", file, "vcs_roots", len(root.VcsRoots), "build_types", len(root.BuildTypes))
	}

	logger.Debug("HCL loading complete.", "project", model.Project.ID, "vcs_roots", len(model.VcsRoots), "build_types", len(model.BuildTypes))
	return model, nil
}

var _ config.Loader = (*Loader)(nil)
