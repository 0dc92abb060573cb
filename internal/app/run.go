package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/vk/pipedef/internal/ctxlog"
	"github.com/vk/pipedef/internal/emit"
	"github.com/vk/pipedef/internal/history"
)

// Run executes the configured command.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "command", a.config.Command)

	var err error
	switch a.config.Command {
	case CommandEmit:
		err = a.runEmit(ctx)
	case CommandValidate:
		err = a.runValidate(ctx)
	case CommandMatch:
		err = a.runMatch(ctx)
	case CommandHistory:
		err = a.runHistory(ctx)
	default:
		err = fmt.Errorf("unknown command %q", a.config.Command)
	}
	if err != nil {
		return err
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

func (a *App) runEmit(ctx context.Context) error {
	l, err := a.load(ctx)
	if err != nil {
		return err
	}

	defs := l.registry.Definitions()
	out, err := emit.Emit(ctx, emit.Input{
		Project:     l.model.Project,
		VcsRoots:    l.registry.VcsRoots(),
		Definitions: defs,
	}, a.config.Format)
	if err != nil {
		return fmt.Errorf("failed to emit descriptor: %w", err)
	}
	sum := emit.Digest(out)

	if a.config.OutPath == "" {
		if _, err := a.outW.Write(out); err != nil {
			return fmt.Errorf("failed to write descriptor: %w", err)
		}
	} else if err := writeFileAtomic(a.config.OutPath, out); err != nil {
		return err
	}
	a.logger.Info("Descriptor emitted.", "format", a.config.Format, "build_types", len(defs), "digest", sum, "out", a.config.OutPath)

	if a.config.HistoryDB == "" {
		return nil
	}
	return a.record(ctx, history.Entry{
		Project:     l.model.Project.ID,
		Format:      string(a.config.Format),
		Digest:      sum,
		Definitions: len(defs),
	})
}

// record appends the entry to the ledger and logs whether the descriptor
// changed since the previous emit of the same project and format.
func (a *App) record(ctx context.Context, entry history.Entry) error {
	ledger, err := a.openLedger(ctx)
	if err != nil {
		return err
	}
	defer ledger.Close()

	prev, err := ledger.Latest(ctx, entry.Project, entry.Format)
	switch {
	case errors.Is(err, history.ErrNoEntries):
		a.logger.Info("First recorded descriptor for project.", "project", entry.Project, "format", entry.Format)
	case err != nil:
		return err
	case prev.Digest == entry.Digest:
		a.logger.Info("Descriptor unchanged since last emit.", "previous_id", prev.ID, "previous_at", prev.CreatedAt.Format(time.RFC3339))
	default:
		a.logger.Info("Descriptor changed since last emit.", "previous_id", prev.ID, "previous_digest", prev.Digest)
	}

	recorded, err := ledger.Record(ctx, entry)
	if err != nil {
		return err
	}
	a.logger.Debug("History entry recorded.", "id", recorded.ID)
	return nil
}

func (a *App) openLedger(ctx context.Context) (*history.Ledger, error) {
	ledger, err := history.Open(a.config.HistoryDB)
	if err != nil {
		return nil, fmt.Errorf("failed to open history ledger: %w", err)
	}
	if err := ledger.Migrate(ctx); err != nil {
		ledger.Close()
		return nil, fmt.Errorf("failed to migrate history ledger: %w", err)
	}
	return ledger, nil
}

func (a *App) runValidate(ctx context.Context) error {
	l, err := a.load(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.outW, "OK: %d build types, %d VCS roots\n", l.registry.Len(), len(l.registry.VcsRoots()))
	a.logger.Info("Configuration is valid.", "build_types", l.registry.Len())
	return nil
}

// runMatch prints the ids of the build types whose requirements are all
// satisfied by the configured agent properties.
func (a *App) runMatch(ctx context.Context) error {
	l, err := a.load(ctx)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(a.config.Properties))
	for k := range a.config.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	a.logger.Debug("Matching build types against agent properties.", "properties", keys)

	matched := 0
	for _, def := range l.registry.Definitions() {
		if !def.Requirements().SatisfiedBy(a.config.Properties) {
			continue
		}
		fmt.Fprintln(a.outW, def.ID())
		matched++
	}
	a.logger.Info("Agent matching complete.", "matched", matched, "build_types", l.registry.Len())
	return nil
}

func (a *App) runHistory(ctx context.Context) error {
	ledger, err := a.openLedger(ctx)
	if err != nil {
		return err
	}
	defer ledger.Close()

	entries, err := ledger.List(ctx, a.config.HistoryLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		a.logger.Warn("History ledger is empty.", "path", a.config.HistoryDB)
	}

	w := tabwriter.NewWriter(a.outW, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPROJECT\tFORMAT\tDEFINITIONS\tDIGEST\tCREATED")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n", e.ID, e.Project, e.Format, e.Definitions, e.Digest, e.CreatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}
