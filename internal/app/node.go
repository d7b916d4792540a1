package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/relock/internal/adapters/lockfile"  //nolint:depguard // Wired in app layer
	"go.trai.ch/relock/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/relock/internal/adapters/manifest"  //nolint:depguard // Wired in app layer
	"go.trai.ch/relock/internal/adapters/registry"  //nolint:depguard // Wired in app layer
	"go.trai.ch/relock/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/relock/internal/core/ports"
	"go.trai.ch/relock/internal/engine/resolver"
	"go.trai.ch/relock/internal/engine/updater"
	"go.trai.ch/relock/internal/engine/validator"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components bundles the App with the adapters callers need direct access to.
type Components struct {
	App    *App
	Logger ports.Logger
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			manifest.NodeID,
			registry.NodeID,
			lockfile.NodeID,
			logger.NodeID,
			telemetry.NodeID,
			resolver.NodeID,
			updater.NodeID,
			validator.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			a, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{App: a, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	manifests, err := graft.Dep[ports.ManifestLoader](ctx)
	if err != nil {
		return nil, err
	}
	provider, err := graft.Dep[ports.MetadataProvider](ctx)
	if err != nil {
		return nil, err
	}
	store, err := graft.Dep[ports.LockfileStore](ctx)
	if err != nil {
		return nil, err
	}
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}
	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}
	builder, err := graft.Dep[*resolver.Builder](ctx)
	if err != nil {
		return nil, err
	}
	upd, err := graft.Dep[*updater.Updater](ctx)
	if err != nil {
		return nil, err
	}
	val, err := graft.Dep[*validator.Validator](ctx)
	if err != nil {
		return nil, err
	}

	return New(manifests, provider, store, log, tracer, builder, upd, val), nil
}
