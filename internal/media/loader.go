package media

import (
	"context"
	"errors"
	"sync"

	"github.com/genricoloni/resonance/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrLoaderStopped is returned by Enqueue after Stop
var ErrLoaderStopped = errors.New("loader stopped")

// Loader resolves items off the caller's goroutine. Load returns a
// placeholder at once; a worker later fills it in and notifies its
// listeners exactly once with ChangeMetadata.
type Loader struct {
	logger   *zap.Logger
	resolver *Resolver
	workers  int

	mu      sync.Mutex
	running bool
	stopped bool
	ctx     context.Context
	cancel  context.CancelFunc
	jobs    chan *Item
	group   errgroup.Group
	// items queued before Start
	pending []*Item
}

// NewLoader creates a loader with cfg.ResolverWorkers() workers
func NewLoader(logger *zap.Logger, resolver *Resolver, cfg domain.Config) *Loader {
	workers := cfg.ResolverWorkers()
	if workers <= 0 {
		workers = 1
	}
	return &Loader{
		logger:   logger,
		resolver: resolver,
		workers:  workers,
	}
}

// Start launches the worker pool. It returns immediately.
func (l *Loader) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running || l.stopped {
		return nil
	}

	l.ctx, l.cancel = context.WithCancel(context.Background())
	l.jobs = make(chan *Item, len(l.pending)+l.workers*4)
	l.running = true

	for n := 0; n < l.workers; n++ {
		l.group.Go(func() error {
			l.work(l.ctx, l.jobs)
			return nil
		})
	}

	for _, item := range l.pending {
		l.jobs <- item
	}
	l.pending = nil

	l.logger.Info("Metadata loader started", zap.Int("workers", l.workers))
	return nil
}

// Load returns a placeholder for uri and schedules its resolution
func (l *Loader) Load(uri string) *Item {
	item := NewItem(uri)
	if err := l.Enqueue(item); err != nil {
		l.logger.Debug("Item left unresolved",
			zap.String("uri", uri),
			zap.Error(err))
	}
	return item
}

// Enqueue schedules resolution of an existing placeholder. It never blocks.
func (l *Loader) Enqueue(item *Item) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.stopped {
		return ErrLoaderStopped
	}
	if !l.running {
		l.pending = append(l.pending, item)
		return nil
	}

	select {
	case l.jobs <- item:
	default:
		// queue full: resolve on an extra goroutine rather than block the caller
		ctx := l.ctx
		l.group.Go(func() error {
			l.resolveInto(ctx, item)
			return nil
		})
	}
	return nil
}

// Stop cancels outstanding work and waits for the workers to exit.
// Items still queued stay placeholders.
func (l *Loader) Stop(ctx context.Context) error {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return nil
	}
	l.stopped = true
	wasRunning := l.running
	l.running = false
	l.pending = nil
	if wasRunning {
		l.cancel()
		close(l.jobs)
	}
	l.mu.Unlock()

	if !wasRunning {
		return nil
	}

	done := make(chan struct{})
	go func() {
		_ = l.group.Wait()
		close(done)
	}()

	select {
	case <-done:
		l.logger.Info("Metadata loader stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loader) work(ctx context.Context, jobs <-chan *Item) {
	for item := range jobs {
		l.resolveInto(ctx, item)
	}
}

func (l *Loader) resolveInto(ctx context.Context, item *Item) {
	if ctx.Err() != nil {
		return
	}
	item.apply(l.resolver.resolve(ctx, item.URI()))
}
