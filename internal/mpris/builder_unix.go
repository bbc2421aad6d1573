//go:build linux || freebsd

package mpris

import (
	"context"

	"github.com/genricoloni/resonance/internal/controller"
	"github.com/genricoloni/resonance/internal/domain"
	"go.uber.org/zap"
)

// NewBuilder returns a builder connecting to the session bus
func NewBuilder(logger *zap.Logger, cfg domain.Config, cmds controller.Sender) controller.Builder {
	return func(ctx context.Context) (controller.Controller, error) {
		bus, err := NewSessionBus()
		if err != nil {
			return nil, err
		}
		sink, err := Build(ctx, logger, cfg, bus, cmds)
		if err != nil {
			return nil, err
		}
		return sink, nil
	}
}
