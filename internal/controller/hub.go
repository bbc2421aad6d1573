package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/genricoloni/resonance/internal/domain"
	"github.com/genricoloni/resonance/internal/media"
	"go.uber.org/zap"
)

// ErrUnknownSink is returned by WaitReady for a name that was never registered
var ErrUnknownSink = errors.New("unknown sink")

type sink struct {
	name    string
	ctrl    Controller
	state   SinkState
	settled chan struct{} // closed when state leaves Constructing
}

// snapshot is the last known full playback state
type snapshot struct {
	song     *media.Item
	position time.Duration
	state    domain.PlaybackState
	repeat   domain.RepeatMode
}

// Hub delivers every state change to its registered controllers in
// registration order. Controllers still under construction miss updates and
// receive the full snapshot once they become ready.
type Hub struct {
	logger *zap.Logger

	// mu serializes broadcasts, registration and readiness transitions
	mu    sync.Mutex
	sinks []*sink
	state snapshot

	builders sync.WaitGroup
	cancel   context.CancelFunc
	ctx      context.Context
}

// NewHub creates an empty hub
func NewHub(logger *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Register adds a controller that is usable immediately. It receives the
// current snapshot before any later broadcast.
func (h *Hub) Register(name string, c Controller) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := &sink{name: name, ctrl: c, settled: make(chan struct{})}
	h.sinks = append(h.sinks, s)
	h.markReady(s)
}

// RegisterAsync reserves a slot for a controller built by build. The builder
// runs in the background bounded by timeout; on failure the slot becomes
// Unavailable and is skipped from then on.
func (h *Hub) RegisterAsync(ctx context.Context, name string, timeout time.Duration, build Builder) {
	h.mu.Lock()
	s := &sink{name: name, state: StateConstructing, settled: make(chan struct{})}
	h.sinks = append(h.sinks, s)
	h.mu.Unlock()

	h.logger.Debug("Constructing controller", zap.String("sink", name))

	h.builders.Add(1)
	go func() {
		defer h.builders.Done()
		h.construct(ctx, s, timeout, build)
	}()
}

func (h *Hub) construct(ctx context.Context, s *sink, timeout time.Duration, build Builder) {
	buildCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(h.ctx, cancel)
	defer stop()
	if timeout > 0 {
		var cancelTimeout context.CancelFunc
		buildCtx, cancelTimeout = context.WithTimeout(buildCtx, timeout)
		defer cancelTimeout()
	}

	type result struct {
		ctrl Controller
		err  error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("builder panic: %v", r)}
			}
		}()
		c, err := build(buildCtx)
		done <- result{ctrl: c, err: err}
	}()

	var res result
	select {
	case res = <-done:
	case <-buildCtx.Done():
		res.err = buildCtx.Err()
		// a builder that ignores ctx may still succeed; release what it made
		go func() {
			if late := <-done; late.ctrl != nil {
				closeController(h.logger, s.name, late.ctrl)
			}
		}()
	}

	if res.err == nil && res.ctrl == nil {
		res.err = fmt.Errorf("builder returned no controller")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if res.err != nil {
		s.state = StateUnavailable
		close(s.settled)
		h.logger.Warn("Controller unavailable",
			zap.String("sink", s.name),
			zap.Error(res.err))
		return
	}

	s.ctrl = res.ctrl
	h.markReady(s)
}

// markReady replays the snapshot to s and flips it to Ready. Callers hold mu,
// so no broadcast can interleave with the replay.
func (h *Hub) markReady(s *sink) {
	if h.state.song != nil {
		h.deliver(s, "song", func(c Controller) error { return c.SetSong(h.state.song) })
	}
	position, state, repeat := h.state.position, h.state.state, h.state.repeat
	h.deliver(s, "position", func(c Controller) error { return c.SetPosition(position) })
	h.deliver(s, "playback state", func(c Controller) error { return c.SetPlaybackState(state) })
	h.deliver(s, "repeat mode", func(c Controller) error { return c.SetRepeatMode(repeat) })

	s.state = StateReady
	close(s.settled)
	h.logger.Info("Controller ready", zap.String("sink", s.name))
}

// BroadcastSong records item as the current song and delivers it
func (h *Hub) BroadcastSong(item *media.Item) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state.song = item
	h.broadcast("song", func(c Controller) error { return c.SetSong(item) })
}

// BroadcastPosition records and delivers the transport position
func (h *Hub) BroadcastPosition(position time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state.position = position
	h.broadcast("position", func(c Controller) error { return c.SetPosition(position) })
}

// BroadcastPlaybackState records and delivers the transport state
func (h *Hub) BroadcastPlaybackState(state domain.PlaybackState) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state.state = state
	h.broadcast("playback state", func(c Controller) error { return c.SetPlaybackState(state) })
}

// BroadcastRepeatMode records and delivers the repeat mode
func (h *Hub) BroadcastRepeatMode(mode domain.RepeatMode) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state.repeat = mode
	h.broadcast("repeat mode", func(c Controller) error { return c.SetRepeatMode(mode) })
}

// Song returns the last broadcast song
func (h *Hub) Song() (*media.Item, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state.song, h.state.song != nil
}

func (h *Hub) broadcast(what string, fn func(Controller) error) {
	for _, s := range h.sinks {
		if s.state != StateReady {
			continue
		}
		h.deliver(s, what, fn)
	}
}

// deliver isolates one controller's failure from the others
func (h *Hub) deliver(s *sink, what string, fn func(Controller) error) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("Controller panicked",
				zap.String("sink", s.name),
				zap.String("update", what),
				zap.Any("panic", r))
		}
	}()

	if err := fn(s.ctrl); err != nil {
		h.logger.Warn("Controller update failed",
			zap.String("sink", s.name),
			zap.String("update", what),
			zap.Error(err))
	}
}

// States reports every sink in registration order
func (h *Hub) States() []SinkStatus {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]SinkStatus, 0, len(h.sinks))
	for _, s := range h.sinks {
		out = append(out, SinkStatus{Name: s.name, State: s.state})
	}
	return out
}

// WaitReady blocks until the named sink leaves Constructing and returns its state
func (h *Hub) WaitReady(ctx context.Context, name string) (SinkState, error) {
	h.mu.Lock()
	var target *sink
	for _, s := range h.sinks {
		if s.name == name {
			target = s
			break
		}
	}
	h.mu.Unlock()

	if target == nil {
		return StateUnavailable, fmt.Errorf("%w: %s", ErrUnknownSink, name)
	}

	select {
	case <-target.settled:
		h.mu.Lock()
		defer h.mu.Unlock()
		return target.state, nil
	case <-ctx.Done():
		return StateConstructing, ctx.Err()
	}
}

// Close cancels pending constructions, waits for them and closes every
// controller that holds resources
func (h *Hub) Close(ctx context.Context) error {
	h.cancel()

	done := make(chan struct{})
	go func() {
		h.builders.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, s := range h.sinks {
		if s.state == StateReady {
			closeController(h.logger, s.name, s.ctrl)
		}
		s.state = StateUnavailable
	}
	h.logger.Info("Controller hub closed", zap.Int("sinks", len(h.sinks)))
	return nil
}

func closeController(logger *zap.Logger, name string, c Controller) {
	closer, ok := c.(io.Closer)
	if !ok {
		return
	}
	if err := closer.Close(); err != nil {
		logger.Warn("Failed to close controller",
			zap.String("sink", name),
			zap.Error(err))
	}
}
