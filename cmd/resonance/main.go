package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/genricoloni/resonance/internal/artwork"
	"github.com/genricoloni/resonance/internal/config"
	"github.com/genricoloni/resonance/internal/controller"
	"github.com/genricoloni/resonance/internal/display"
	"github.com/genricoloni/resonance/internal/domain"
	"github.com/genricoloni/resonance/internal/engine"
	"github.com/genricoloni/resonance/internal/media"
	"github.com/genricoloni/resonance/internal/mpris"
	"github.com/genricoloni/resonance/internal/player"
	"github.com/genricoloni/resonance/internal/tray"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const stopTimeout = 10 * time.Second

// launchURIs are the songs named on the command line
type launchURIs []string

// AppOptions wires the whole application
var AppOptions = fx.Options(
	// Logger configuration
	fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: log}
	}),

	// Provide dependencies
	fx.Provide(
		newLogLevel,
		newLogger,
		newLaunchURIs,
		fx.Annotate(config.NewAppConfig, fx.As(new(domain.Config))),
		display.NewScreenResolution,
		fx.Annotate(artwork.NewImageDecoder, fx.As(new(artwork.Decoder))),
		artwork.NewCache,
		newResolver,
		media.NewLoader,
		controller.NewHub,
		controller.NewCommands,
		player.NewQueue,
		newEngine,
	),

	// Lifecycle hooks
	fx.Invoke(applyLogLevel, registerHooks),
)

func main() {
	app := fx.New(AppOptions)

	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Start the application
	if err := app.Start(ctx); err != nil {
		panic(err)
	}

	// Wait for an interrupt signal or a Quit command
	select {
	case <-ctx.Done():
	case <-app.Done():
	}

	// Stop the application gracefully
	stopCtx, stopCancel := context.WithTimeout(context.Background(), stopTimeout)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		panic(err)
	}
}

func newLogLevel() zap.AtomicLevel {
	return zap.NewAtomicLevelAt(zap.InfoLevel)
}

// newLogger creates a new zap logger instance whose level can be changed
// once the configuration is loaded
func newLogger(level zap.AtomicLevel) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = level
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger, nil
}

// applyLogLevel switches the logger to the configured level
func applyLogLevel(cfg domain.Config, level zap.AtomicLevel, logger *zap.Logger) {
	parsed, err := zapcore.ParseLevel(cfg.LogLevel())
	if err != nil {
		logger.Warn("Invalid log level, keeping default",
			zap.String("level", cfg.LogLevel()),
			zap.Stringer("default", level.Level()))
		return
	}
	level.SetLevel(parsed)
}

// newLaunchURIs collects positional arguments, skipping flags
func newLaunchURIs() launchURIs {
	var uris launchURIs
	for _, arg := range os.Args[1:] {
		if strings.HasPrefix(arg, "-") {
			continue
		}
		uris = append(uris, arg)
	}
	return uris
}

func newResolver(logger *zap.Logger, cache *artwork.Cache) *media.Resolver {
	return media.NewResolver(logger, nil, cache)
}

func newEngine(
	logger *zap.Logger,
	queue *player.Queue,
	hub *controller.Hub,
	cmds *controller.Commands,
	loader *media.Loader,
	shutdowner fx.Shutdowner,
) *engine.Engine {
	return engine.NewEngine(logger, queue, hub, cmds.C(), loader, shutdowner)
}

type hookParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Logger    *zap.Logger
	Config    domain.Config
	Loader    *media.Loader
	Queue     *player.Queue
	Hub       *controller.Hub
	Commands  *controller.Commands
	Engine    *engine.Engine
	URIs      launchURIs
}

// registerHooks sets up application lifecycle hooks. fx runs OnStop hooks
// in reverse, so controllers go away before the engine and the engine
// before the player.
func registerHooks(p hookParams) {
	logger := p.Logger

	p.Lifecycle.Append(fx.Hook{
		OnStart: p.Loader.Start,
		OnStop:  p.Loader.Stop,
	})

	p.Lifecycle.Append(fx.Hook{
		OnStart: p.Queue.Start,
		OnStop:  p.Queue.Stop,
	})

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			p.Commands.Close()
			return p.Hub.Close(ctx)
		},
	})

	p.Lifecycle.Append(fx.Hook{
		OnStart: p.Engine.Start,
		OnStop:  p.Engine.Stop,
	})

	var host *tray.SystrayHost
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if p.Config.MPRISEnabled() {
				p.Hub.RegisterAsync(context.Background(), "mpris", p.Config.MPRISTimeout(),
					mpris.NewBuilder(logger, p.Config, p.Commands))
			}
			if p.Config.TrayEnabled() {
				host = startTray(ctx, logger, p)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if host != nil {
				host.Stop()
			}
			return nil
		},
	})

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("Resonance Started", zap.Int("songs", len(p.URIs)))
			if len(p.URIs) > 0 {
				p.Engine.Load(p.URIs)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Shutting down")
			return nil
		},
	})
}

// startTray shows the notification-area icon. A desktop without a tray is
// not an error.
func startTray(ctx context.Context, logger *zap.Logger, p hookParams) *tray.SystrayHost {
	host := tray.NewSystrayHost(logger)
	if err := host.Start(ctx); err != nil {
		logger.Warn("Tray unavailable", zap.Error(err))
		return nil
	}

	sink, err := tray.New(logger, host, p.Commands, p.Config)
	if err != nil {
		logger.Warn("Tray unavailable", zap.Error(err))
		host.Stop()
		return nil
	}
	p.Hub.Register("tray", sink)
	return host
}
