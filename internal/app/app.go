// Package app implements the application layer for relock.
package app

import (
	"context"
	"fmt"
	"path/filepath"

	"go.trai.ch/relock/internal/core/domain"
	"go.trai.ch/relock/internal/core/ports"
	"go.trai.ch/relock/internal/engine/resolver"
	"go.trai.ch/relock/internal/engine/updater"
	"go.trai.ch/relock/internal/engine/validator"
	"go.trai.ch/zerr"
)

// DefaultRegistryFile is the registry snapshot name looked up next to the
// root manifest.
const DefaultRegistryFile = "registry.yaml"

// App orchestrates the resolve, update, validate and diff pipelines.
type App struct {
	manifests ports.ManifestLoader
	registry  ports.MetadataProvider
	store     ports.LockfileStore
	log       ports.Logger
	tracer    ports.Tracer

	builder   *resolver.Builder
	updater   *updater.Updater
	validator *validator.Validator

	registryFile string
}

// New creates a new App instance.
func New(
	manifests ports.ManifestLoader,
	registry ports.MetadataProvider,
	store ports.LockfileStore,
	log ports.Logger,
	tracer ports.Tracer,
	builder *resolver.Builder,
	upd *updater.Updater,
	val *validator.Validator,
) *App {
	return &App{
		manifests:    manifests,
		registry:     registry,
		store:        store,
		log:          log,
		tracer:       tracer,
		builder:      builder,
		updater:      upd,
		validator:    val,
		registryFile: DefaultRegistryFile,
	}
}

// SetRegistryFile overrides the registry snapshot filename.
func (a *App) SetRegistryFile(name string) {
	if name != "" {
		a.registryFile = name
	}
}

// Resolve builds the full graph from the manifests in dir, validates it and
// writes the lockfile. The returned diff is relative to the previous
// lockfile, empty when nothing changed.
func (a *App) Resolve(ctx context.Context, dir string) (domain.Diff, error) {
	ctx, span := a.tracer.Start(ctx, "resolve")
	defer span.End()

	g, err := a.buildGraph(ctx, dir)
	if err != nil {
		span.RecordError(err)
		return domain.Diff{}, err
	}

	newLock := g.Lock()
	oldLock, err := a.store.Read(dir)
	if err != nil {
		span.RecordError(err)
		return domain.Diff{}, err
	}

	if oldLock != nil {
		same, err := a.sameFingerprint(oldLock, newLock)
		if err != nil {
			span.RecordError(err)
			return domain.Diff{}, err
		}
		if same {
			a.log.Info("lockfile up to date")
			return domain.Diff{}, nil
		}
	} else {
		oldLock = &domain.Lockfile{Entries: map[string]domain.LockEntry{}}
	}

	if err := a.store.Write(dir, newLock); err != nil {
		span.RecordError(err)
		return domain.Diff{}, err
	}

	d := domain.CompareLockfiles(oldLock, newLock)
	a.log.Info(fmt.Sprintf("lockfile written: %d added, %d removed, %d changed",
		len(d.Added), len(d.Removed), len(d.Changed)))
	return d, nil
}

// Update applies a targeted bump to one dependency of one workspace member
// and writes the new lockfile. The update is rejected, and nothing written,
// if the resulting graph fails the clean-install check.
func (a *App) Update(ctx context.Context, dir, workspace, name, rawConstraint string) (domain.Diff, error) {
	ctx, span := a.tracer.Start(ctx, "update")
	defer span.End()
	span.SetAttribute("package", name)

	if err := a.registry.Load(filepath.Join(dir, a.registryFile)); err != nil {
		span.RecordError(err)
		return domain.Diff{}, err
	}

	oldLock, err := a.store.Read(dir)
	if err != nil {
		span.RecordError(err)
		return domain.Diff{}, err
	}
	if oldLock == nil {
		return domain.Diff{}, zerr.With(domain.ErrLockfileMissing, "dir", dir)
	}

	g, err := oldLock.Graph()
	if err != nil {
		span.RecordError(err)
		return domain.Diff{}, err
	}

	c, err := domain.NewConstraint(rawConstraint)
	if err != nil {
		span.RecordError(err)
		return domain.Diff{}, err
	}

	next, err := a.updater.Bump(ctx, g, updater.Request{
		Workspace:  workspace,
		Name:       name,
		Constraint: c,
	})
	if err != nil {
		span.RecordError(err)
		return domain.Diff{}, err
	}

	newLock := next.Lock()
	if err := a.store.Write(dir, newLock); err != nil {
		span.RecordError(err)
		return domain.Diff{}, err
	}

	d := domain.CompareLockfiles(oldLock, newLock)
	a.log.Info(fmt.Sprintf("updated %s: %d added, %d removed, %d changed",
		name, len(d.Added), len(d.Removed), len(d.Changed)))
	return d, nil
}

// Validate runs the clean-install check against the lockfile in dir.
func (a *App) Validate(ctx context.Context, dir string) error {
	_, span := a.tracer.Start(ctx, "validate")
	defer span.End()

	lock, err := a.store.Read(dir)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if lock == nil {
		return zerr.With(domain.ErrLockfileMissing, "dir", dir)
	}

	g, err := lock.Graph()
	if err != nil {
		span.RecordError(err)
		return err
	}

	issues, err := a.validator.Check(g)
	for _, u := range issues {
		a.log.Error(zerr.With(domain.ErrBrokenLockfile, "edge", u.String()))
	}
	if err != nil {
		span.RecordError(err)
		return err
	}

	a.log.Info("lockfile is consistent")
	return nil
}

// Diff rebuilds the graph from manifests and reports how the lockfile would
// change, without writing anything.
func (a *App) Diff(ctx context.Context, dir string) (domain.Diff, error) {
	ctx, span := a.tracer.Start(ctx, "diff")
	defer span.End()

	g, err := a.buildGraph(ctx, dir)
	if err != nil {
		span.RecordError(err)
		return domain.Diff{}, err
	}

	oldLock, err := a.store.Read(dir)
	if err != nil {
		span.RecordError(err)
		return domain.Diff{}, err
	}
	if oldLock == nil {
		oldLock = &domain.Lockfile{Entries: map[string]domain.LockEntry{}}
	}

	return domain.CompareLockfiles(oldLock, g.Lock()), nil
}

// buildGraph loads manifests and the registry snapshot, builds the graph
// and gates it through the validator.
func (a *App) buildGraph(ctx context.Context, dir string) (*domain.Graph, error) {
	if err := a.registry.Load(filepath.Join(dir, a.registryFile)); err != nil {
		return nil, err
	}

	tree, err := a.manifests.Load(dir)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load manifests")
	}

	g, err := a.builder.Build(ctx, tree)
	if err != nil {
		return nil, err
	}

	if _, err := a.validator.Check(g); err != nil {
		return nil, err
	}
	return g, nil
}

func (a *App) sameFingerprint(oldLock, newLock *domain.Lockfile) (bool, error) {
	oldFP, err := a.store.Fingerprint(oldLock)
	if err != nil {
		return false, err
	}
	newFP, err := a.store.Fingerprint(newLock)
	if err != nil {
		return false, err
	}
	return oldFP == newFP, nil
}
