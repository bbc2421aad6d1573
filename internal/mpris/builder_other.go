//go:build !linux && !freebsd

package mpris

import (
	"context"

	"github.com/genricoloni/resonance/internal/controller"
	"github.com/genricoloni/resonance/internal/domain"
	"go.uber.org/zap"
)

// NewBuilder returns a no-op controller on platforms without a session bus
func NewBuilder(logger *zap.Logger, cfg domain.Config, cmds controller.Sender) controller.Builder {
	return func(context.Context) (controller.Controller, error) {
		logger.Info("MPRIS is not available on this platform")
		return controller.Nop{}, nil
	}
}
