package updater

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/relock/internal/adapters/logger" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/relock/internal/core/ports"
	"go.trai.ch/relock/internal/engine/resolver"
	"go.trai.ch/relock/internal/engine/validator"
)

// NodeID is the unique identifier for the updater Graft node.
const NodeID graft.ID = "engine.updater"

func init() {
	graft.Register(graft.Node[*Updater]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			resolver.NodeID,
			validator.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Updater, error) {
			builder, err := graft.Dep[*resolver.Builder](ctx)
			if err != nil {
				return nil, err
			}
			val, err := graft.Dep[*validator.Validator](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(builder, val, log), nil
		},
	})
}
