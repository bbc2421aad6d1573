package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/genricoloni/resonance/internal/domain"
	"github.com/genricoloni/resonance/internal/media"
	"github.com/genricoloni/resonance/internal/player"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// resolvedBuffer holds resolutions waiting for the loop
const resolvedBuffer = 64

//go:generate mockgen -destination=mocks/engine_mock.go -package=mocks github.com/genricoloni/resonance/internal/engine Broadcaster

// Broadcaster fans player state out to every controller
type Broadcaster interface {
	BroadcastSong(item *media.Item)
	BroadcastPosition(position time.Duration)
	BroadcastPlaybackState(state domain.PlaybackState)
	BroadcastRepeatMode(mode domain.RepeatMode)
}

// Player is the playback engine driven by commands
type Player interface {
	Events() <-chan player.Event
	Apply(cmd domain.Command) error
	Load(items []*media.Item)
}

// Enqueuer resolves items in the background
type Enqueuer interface {
	Enqueue(item *media.Item) error
}

// Engine connects the player, the controllers and the command channel.
// Player events are broadcast to controllers; commands from controllers
// are applied to the player in the order they were sent.
type Engine struct {
	logger     *zap.Logger
	player     Player
	hub        Broadcaster
	commands   <-chan domain.Command
	loader     Enqueuer
	shutdowner fx.Shutdowner
	// items whose metadata arrived, consumed by the loop
	resolved chan *media.Item
	// closed once the loop has returned
	exited   chan struct{}
	exitOnce sync.Once

	mu      sync.Mutex
	current *media.Item
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewEngine creates a new orchestration engine
func NewEngine(
	logger *zap.Logger,
	p Player,
	hub Broadcaster,
	commands <-chan domain.Command,
	loader Enqueuer,
	shutdowner fx.Shutdowner,
) *Engine {
	return &Engine{
		logger:     logger,
		player:     p,
		hub:        hub,
		commands:   commands,
		loader:     loader,
		shutdowner: shutdowner,
		resolved:   make(chan *media.Item, resolvedBuffer),
		exited:     make(chan struct{}),
	}
}

// Start launches the engine's event processing loop in a goroutine.
// It returns immediately (non-blocking).
func (e *Engine) Start(ctx context.Context) error {
	e.logger.Info("Engine starting...")

	loopCtx, cancel := context.WithCancel(context.Background())
	e.mu.Lock()
	e.cancel = cancel
	e.done = make(chan struct{})
	e.mu.Unlock()

	go e.runLoop(loopCtx)
	return nil
}

// Stop ends the loop and waits for it to return
func (e *Engine) Stop(ctx context.Context) error {
	e.logger.Info("Engine stopping...")

	e.mu.Lock()
	cancel, done := e.cancel, e.done
	e.mu.Unlock()
	if cancel == nil {
		e.exitOnce.Do(func() { close(e.exited) })
		return nil
	}

	cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Load queues uris for playback. Items start as placeholders and are
// re-announced once resolved.
func (e *Engine) Load(uris []string) {
	items := make([]*media.Item, 0, len(uris))
	for _, uri := range uris {
		item := media.NewItem(uri)
		item.OnChange(func(c media.Change) {
			if c == media.ChangeMetadata {
				e.postResolved(item)
			}
		})
		if err := e.loader.Enqueue(item); err != nil {
			e.logger.Warn("Song will not be resolved",
				zap.String("uri", uri),
				zap.Error(err))
		}
		items = append(items, item)
	}

	e.logger.Info("Queue loaded", zap.Int("songs", len(items)))
	e.player.Load(items)
}

func (e *Engine) runLoop(ctx context.Context) {
	defer close(e.done)
	defer e.exitOnce.Do(func() { close(e.exited) })

	events := e.player.Events()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("Engine loop stopped")
			return

		case ev, ok := <-events:
			if !ok {
				e.logger.Info("Player events channel closed")
				return
			}
			e.handleEvent(ev)

		case cmd, ok := <-e.commands:
			if !ok {
				e.logger.Info("Command channel closed")
				return
			}
			e.handleCommand(cmd)

		case item := <-e.resolved:
			e.songResolved(item)
		}
	}
}

func (e *Engine) handleEvent(ev player.Event) {
	switch ev.Kind {
	case player.SongChanged:
		e.mu.Lock()
		previous := e.current
		e.current = ev.Song
		e.mu.Unlock()

		if previous != nil && previous != ev.Song {
			previous.SetPlaying(false)
		}
		if ev.Song != nil {
			ev.Song.SetPlaying(true)
			e.logger.Info("Now playing",
				zap.String("title", ev.Song.Title()),
				zap.String("artist", ev.Song.Artist()))
		}
		e.hub.BroadcastSong(ev.Song)
	case player.PositionChanged:
		e.hub.BroadcastPosition(ev.Position)
	case player.PlaybackStateChanged:
		e.hub.BroadcastPlaybackState(ev.State)
	case player.RepeatModeChanged:
		e.hub.BroadcastRepeatMode(ev.Repeat)
	}
}

func (e *Engine) handleCommand(cmd domain.Command) {
	e.logger.Debug("Command received",
		zap.Stringer("command", cmd.Kind),
		zap.String("origin", cmd.Origin))

	switch cmd.Kind {
	case domain.CommandQuit:
		e.logger.Info("Quit requested", zap.String("origin", cmd.Origin))
		if err := e.shutdowner.Shutdown(); err != nil {
			e.logger.Error("Failed to request shutdown", zap.Error(err))
		}
	case domain.CommandRaise:
		// headless: nothing to present
		e.logger.Info("Raise requested", zap.String("origin", cmd.Origin))
	default:
		if err := e.player.Apply(cmd); err != nil {
			level := zap.WarnLevel
			if errors.Is(err, player.ErrUnsupportedCommand) {
				level = zap.DebugLevel
			}
			e.logger.Log(level, "Command not applied",
				zap.Stringer("command", cmd.Kind),
				zap.Error(err))
		}
	}
}

// postResolved hands a resolved item to the loop. It runs on a loader
// worker and gives up once the loop has exited.
func (e *Engine) postResolved(item *media.Item) {
	select {
	case e.resolved <- item:
	case <-e.exited:
	}
}

// songResolved re-announces the current song once its metadata arrives.
// It runs on the loop so the check and the broadcast cannot be split by a
// song change.
func (e *Engine) songResolved(item *media.Item) {
	e.mu.Lock()
	current := e.current == item
	e.mu.Unlock()

	if !current {
		e.logger.Debug("Resolved song is no longer current", zap.Stringer("song", item))
		return
	}
	e.logger.Debug("Current song resolved", zap.Stringer("song", item))
	e.hub.BroadcastSong(item)
}
