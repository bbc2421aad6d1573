// Package player is a headless playback engine: a queue, a transport state
// machine and a position clock. It produces no audio.
package player

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/genricoloni/resonance/internal/domain"
	"github.com/genricoloni/resonance/internal/media"
	"go.uber.org/zap"
)

const (
	defaultTick = time.Second
	// Previous restarts the song instead when past this point
	restartThreshold = 2 * time.Second
	eventBuffer      = 64
)

// ErrUnsupportedCommand is returned for commands the application handles itself
var ErrUnsupportedCommand = errors.New("unsupported command")

// ErrStopped is returned when starting a queue that was already stopped
var ErrStopped = errors.New("player stopped")

// EventKind identifies a state change
type EventKind int

const (
	SongChanged EventKind = iota
	PositionChanged
	PlaybackStateChanged
	RepeatModeChanged
)

func (k EventKind) String() string {
	switch k {
	case SongChanged:
		return "SongChanged"
	case PositionChanged:
		return "PositionChanged"
	case PlaybackStateChanged:
		return "PlaybackStateChanged"
	case RepeatModeChanged:
		return "RepeatModeChanged"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is a state change. Only the field matching Kind is meaningful.
type Event struct {
	Kind     EventKind
	Song     *media.Item
	Position time.Duration
	State    domain.PlaybackState
	Repeat   domain.RepeatMode
}

// Queue plays a list of items in order
type Queue struct {
	logger *zap.Logger
	events chan Event
	tick   time.Duration

	mu              sync.Mutex
	items           []*media.Item
	current         int
	state           domain.PlaybackState
	position        time.Duration
	repeat          domain.RepeatMode
	running         bool
	stopped         bool
	cancel          context.CancelFunc
	wg              sync.WaitGroup
	lastDropWarning time.Time
}

// NewQueue creates an empty, stopped queue
func NewQueue(logger *zap.Logger) *Queue {
	return &Queue{
		logger:  logger,
		events:  make(chan Event, eventBuffer),
		tick:    defaultTick,
		current: -1,
	}
}

// Events returns a read-only channel of state changes. It is closed by Stop.
func (q *Queue) Events() <-chan Event {
	return q.events
}

// Start launches the position clock. It returns immediately.
func (q *Queue) Start(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stopped {
		return ErrStopped
	}
	if q.running {
		return nil
	}
	q.running = true

	clockCtx, cancel := context.WithCancel(context.Background())
	q.cancel = cancel

	q.wg.Add(1)
	go q.runClock(clockCtx)

	q.logger.Info("Player started", zap.Duration("tick", q.tick))
	return nil
}

// Stop halts the clock and closes the event channel
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return nil
	}
	q.running = false
	q.stopped = true
	q.cancel()
	q.mu.Unlock()

	// Wait for the clock before closing the channel it sends on
	q.wg.Wait()

	q.mu.Lock()
	close(q.events)
	q.mu.Unlock()

	q.logger.Info("Player stopped")
	return nil
}

func (q *Queue) runClock(ctx context.Context) {
	defer q.wg.Done()

	ticker := time.NewTicker(q.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			q.advanceClock(q.tick)
		}
	}
}

// advanceClock moves the position while playing and handles end of song
func (q *Queue) advanceClock(elapsed time.Duration) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.state != domain.StatePlaying || q.current < 0 {
		return
	}

	duration := q.items[q.current].Duration()
	q.position += elapsed
	if duration <= 0 || q.position < duration {
		q.emit(Event{Kind: PositionChanged, Position: q.position})
		return
	}

	// end of song
	switch {
	case q.repeat == domain.RepeatOne:
		q.setPosition(0)
	case q.current+1 < len(q.items):
		q.selectSong(q.current + 1)
	case q.repeat == domain.RepeatAll:
		q.selectSong(0)
	default:
		q.setPosition(0)
		q.setState(domain.StateStopped)
	}
}

// Load replaces the queue and selects its first item
func (q *Queue) Load(items []*media.Item) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = append([]*media.Item(nil), items...)
	q.setState(domain.StateStopped)
	if len(q.items) == 0 {
		q.current = -1
		q.position = 0
		q.emit(Event{Kind: SongChanged})
		return
	}
	q.selectSong(0)
}

// Apply executes a transport command
func (q *Queue) Apply(cmd domain.Command) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	switch cmd.Kind {
	case domain.CommandPlay:
		q.play()
	case domain.CommandPause:
		if q.state == domain.StatePlaying {
			q.setState(domain.StatePaused)
		}
	case domain.CommandToggle:
		if q.state == domain.StatePlaying {
			q.setState(domain.StatePaused)
		} else {
			q.play()
		}
	case domain.CommandStop:
		q.setState(domain.StateStopped)
		q.setPosition(0)
	case domain.CommandSkip:
		q.skip()
	case domain.CommandPrevious:
		q.previous()
	case domain.CommandSeek:
		q.seek(q.position + cmd.Offset)
	case domain.CommandSeekTo:
		q.seek(cmd.Offset)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedCommand, cmd.Kind)
	}
	return nil
}

// SetRepeatMode changes what happens at the end of a song
func (q *Queue) SetRepeatMode(mode domain.RepeatMode) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.setRepeat(mode)
}

// CycleRepeatMode advances Consecutive -> RepeatAll -> RepeatOne
func (q *Queue) CycleRepeatMode() domain.RepeatMode {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.setRepeat(q.repeat.Next())
	return q.repeat
}

// Current returns the selected item
func (q *Queue) Current() (*media.Item, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.current < 0 {
		return nil, false
	}
	return q.items[q.current], true
}

// State returns the transport state and position
func (q *Queue) State() (domain.PlaybackState, time.Duration) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state, q.position
}

func (q *Queue) play() {
	if len(q.items) == 0 {
		return
	}
	if q.current < 0 {
		q.selectSong(0)
	}
	q.setState(domain.StatePlaying)
}

func (q *Queue) skip() {
	switch {
	case len(q.items) == 0:
	case q.current+1 < len(q.items):
		q.selectSong(q.current + 1)
	case q.repeat == domain.RepeatAll:
		q.selectSong(0)
	default:
		q.setState(domain.StateStopped)
		q.setPosition(0)
	}
}

func (q *Queue) previous() {
	switch {
	case len(q.items) == 0:
	case q.position > restartThreshold:
		q.setPosition(0)
	case q.current > 0:
		q.selectSong(q.current - 1)
	case q.repeat == domain.RepeatAll:
		q.selectSong(len(q.items) - 1)
	default:
		q.setPosition(0)
	}
}

func (q *Queue) seek(target time.Duration) {
	if q.current < 0 {
		return
	}
	if target < 0 {
		target = 0
	}
	if d := q.items[q.current].Duration(); d > 0 && target > d {
		target = d
	}
	q.setPosition(target)
}

// selectSong makes index current, rewinding and announcing it
func (q *Queue) selectSong(index int) {
	q.current = index
	q.position = 0
	q.emit(Event{Kind: SongChanged, Song: q.items[index]})
	q.emit(Event{Kind: PositionChanged, Position: 0})
}

func (q *Queue) setState(state domain.PlaybackState) {
	if q.state == state {
		return
	}
	q.state = state
	q.emit(Event{Kind: PlaybackStateChanged, State: state})
}

func (q *Queue) setPosition(position time.Duration) {
	q.position = position
	q.emit(Event{Kind: PositionChanged, Position: position})
}

func (q *Queue) setRepeat(mode domain.RepeatMode) {
	if q.repeat == mode {
		return
	}
	q.repeat = mode
	q.emit(Event{Kind: RepeatModeChanged, Repeat: mode})
}

// emit sends without blocking; callers hold mu so events keep their order
func (q *Queue) emit(e Event) {
	if q.stopped {
		return
	}
	select {
	case q.events <- e:
	default:
		q.logChannelFullWarning(e)
	}
}

// logChannelFullWarning logs a rate-limited warning when events are dropped
func (q *Queue) logChannelFullWarning(e Event) {
	now := time.Now()
	if now.Sub(q.lastDropWarning) > 5*time.Second {
		q.logger.Warn("Player event channel full, dropping event",
			zap.Stringer("event", e.Kind))
		q.lastDropWarning = now
	}
}
