package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/pipedef/internal/config"
	"github.com/vk/pipedef/internal/ctxlog"
	"github.com/vk/pipedef/internal/registry"
	"github.com/vk/pipedef/internal/resolve"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	loader config.Loader
	config *Config
}

// NewApp is the constructor for the main application. Command output goes to
// outW and logs to logW, so an emitted descriptor on stdout is never mixed
// with log lines.
func NewApp(outW, logW io.Writer, cfg *Config, loader config.Loader) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	return &App{
		outW:   outW,
		logger: logger,
		loader: loader,
		config: cfg,
	}
}

// loaded is the result of the load, register and resolve stages.
type loaded struct {
	model    *config.Model
	registry *registry.Registry
}

// load runs every stage up to and including reference resolution. A fresh
// registry is built on every call.
func (a *App) load(ctx context.Context) (*loaded, error) {
	logger := ctxlog.FromContext(ctx)

	model, err := a.loader.Load(ctx, a.config.Paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Debug("Configuration loaded and translated into unified model.")

	reg := registry.New()
	if err := reg.Populate(ctx, model); err != nil {
		return nil, err
	}
	logger.Debug("Registry populated from config model.", "build_types", reg.Len())

	external := resolve.NewExternalIDs(a.config.ExternalIDs...)
	if err := resolve.ResolveAll(ctx, reg, external); err != nil {
		return nil, fmt.Errorf("reference resolution failed: %w", err)
	}
	logger.Debug("All references resolved.")

	return &loaded{model: model, registry: reg}, nil
}
