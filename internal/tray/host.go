// Package tray shows the player in the desktop notification area.
package tray

import (
	"context"
	"fmt"
	"sync"

	"fyne.io/systray"
	"go.uber.org/zap"
)

// Host is the notification-area icon the sink drives
type Host interface {
	SetIcon(png []byte)
	SetTitle(title string)
	SetTooltip(tooltip string)
	// AddMenuItem appends an entry to the right-click menu and returns its click channel
	AddMenuItem(title, tooltip string) <-chan struct{}
	// OnTapped sets the left-click handler
	OnTapped(fn func())
}

// SystrayHost adapts fyne.io/systray. Only one may run per process.
type SystrayHost struct {
	logger *zap.Logger

	mu      sync.Mutex
	started bool
	end     func()
	ready   chan struct{}
}

// NewSystrayHost creates an idle host; Start registers the icon
func NewSystrayHost(logger *zap.Logger) *SystrayHost {
	return &SystrayHost{logger: logger, ready: make(chan struct{})}
}

// Start registers the icon with the desktop and waits until it can take menu items
func (h *SystrayHost) Start(ctx context.Context) error {
	h.mu.Lock()
	if h.started {
		h.mu.Unlock()
		return nil
	}
	h.started = true

	var once sync.Once
	start, end := systray.RunWithExternalLoop(func() {
		once.Do(func() { close(h.ready) })
	}, func() {
		h.logger.Debug("Tray icon removed")
	})
	h.end = end
	h.mu.Unlock()

	start()

	select {
	case <-h.ready:
		h.logger.Info("Tray icon registered")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("tray registration: %w", ctx.Err())
	}
}

// Stop removes the icon
func (h *SystrayHost) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.end != nil {
		h.end()
		h.end = nil
	}
}

func (h *SystrayHost) SetIcon(png []byte) { systray.SetIcon(png) }

func (h *SystrayHost) SetTitle(title string) { systray.SetTitle(title) }

func (h *SystrayHost) SetTooltip(tooltip string) { systray.SetTooltip(tooltip) }

func (h *SystrayHost) AddMenuItem(title, tooltip string) <-chan struct{} {
	return systray.AddMenuItem(title, tooltip).ClickedCh
}

func (h *SystrayHost) OnTapped(fn func()) { systray.SetOnTapped(fn) }
