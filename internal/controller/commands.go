package controller

import (
	"errors"
	"sync"

	"github.com/genricoloni/resonance/internal/domain"
	"go.uber.org/zap"
)

var (
	// ErrQueueFull means the consumer is not keeping up; the command is dropped
	ErrQueueFull = errors.New("command queue full")
	// ErrQueueClosed means the consumer has shut down
	ErrQueueClosed = errors.New("command queue closed")
)

// Sender accepts commands from a control surface
type Sender interface {
	Send(cmd domain.Command) error
}

// Commands is the single multi-producer queue between control surfaces and
// the playback engine. Commands are consumed in the order they were accepted.
type Commands struct {
	mu     sync.RWMutex
	closed bool
	ch     chan domain.Command
}

// NewCommands creates a queue holding up to cfg.CommandBuffer() commands
func NewCommands(cfg domain.Config) *Commands {
	size := cfg.CommandBuffer()
	if size <= 0 {
		size = 1
	}
	return &Commands{ch: make(chan domain.Command, size)}
}

// Send enqueues cmd without blocking
func (c *Commands) Send(cmd domain.Command) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrQueueClosed
	}
	select {
	case c.ch <- cmd:
		return nil
	default:
		return ErrQueueFull
	}
}

// C returns the consumer side of the queue. It is closed by Close.
func (c *Commands) C() <-chan domain.Command {
	return c.ch
}

// Close rejects further sends and closes the consumer channel
func (c *Commands) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.ch)
}

// Dispatch sends cmd and logs a failure instead of returning it
func Dispatch(logger *zap.Logger, s Sender, cmd domain.Command) bool {
	if err := s.Send(cmd); err != nil {
		logger.Warn("Dropping command",
			zap.Stringer("command", cmd),
			zap.String("origin", cmd.Origin),
			zap.Error(err))
		return false
	}
	return true
}
