package tray

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/genricoloni/resonance/internal/controller"
	"github.com/genricoloni/resonance/internal/domain"
	"github.com/genricoloni/resonance/internal/media"
	"go.uber.org/zap"
)

const (
	iconSize = 64
	origin   = "tray"
)

var defaultIconColor = color.NRGBA{R: 0x35, G: 0x84, B: 0xe4, A: 0xff}

type menuEntry struct {
	title   string
	tooltip string
	kind    domain.CommandKind
}

var menu = []menuEntry{
	{"Play/Pause", "Toggle playback", domain.CommandToggle},
	{"Next", "Skip to the next song", domain.CommandSkip},
	{"Previous", "Go back to the previous song", domain.CommandPrevious},
	{"Show", "Show the player window", domain.CommandRaise},
	{"Quit", "Quit the player", domain.CommandQuit},
}

// Sink mirrors the current song on a notification-area icon. Left click
// toggles playback; the menu sends the other commands.
type Sink struct {
	logger   *zap.Logger
	host     Host
	cmds     controller.Sender
	identity string

	defaultIcon []byte

	mu       sync.Mutex
	iconFor  string // cover UUID the current icon was rendered from
	done     chan struct{}
	wg       sync.WaitGroup
	isClosed bool
}

// New builds the menu on host and starts forwarding clicks to cmds
func New(logger *zap.Logger, host Host, cmds controller.Sender, cfg domain.Config) (*Sink, error) {
	icon, err := encodeIcon(imaging.New(iconSize, iconSize, defaultIconColor))
	if err != nil {
		return nil, fmt.Errorf("failed to render default icon: %w", err)
	}

	s := &Sink{
		logger:      logger,
		host:        host,
		cmds:        cmds,
		identity:    cfg.Identity(),
		defaultIcon: icon,
		done:        make(chan struct{}),
	}

	host.SetIcon(icon)
	host.SetTitle(s.identity)
	host.SetTooltip(s.identity)
	host.OnTapped(func() { s.send(domain.CommandToggle) })

	for _, entry := range menu {
		clicks := host.AddMenuItem(entry.title, entry.tooltip)
		s.wg.Add(1)
		go s.forward(clicks, entry.kind)
	}

	return s, nil
}

func (s *Sink) forward(clicks <-chan struct{}, kind domain.CommandKind) {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case _, ok := <-clicks:
			if !ok {
				return
			}
			s.send(kind)
		}
	}
}

func (s *Sink) send(kind domain.CommandKind) {
	controller.Dispatch(s.logger, s.cmds, domain.Command{Kind: kind, Origin: origin})
}

// SetSong shows "Title - Artist" and the cover as the icon
func (s *Sink) SetSong(item *media.Item) error {
	if item == nil {
		s.host.SetTooltip(s.identity)
		return s.setIcon("", nil)
	}

	s.host.SetTooltip(fmt.Sprintf("%s - %s", item.Title(), item.Artist()))

	art, ok := item.Artwork()
	if !ok {
		return s.setIcon("", nil)
	}
	return s.setIcon(art.UUID(), art.Bitmap())
}

func (s *Sink) setIcon(key string, cover image.Image) error {
	s.mu.Lock()
	if s.iconFor == key {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	icon := s.defaultIcon
	if cover != nil {
		var err error
		icon, err = encodeIcon(imaging.Fill(cover, iconSize, iconSize, imaging.Center, imaging.Lanczos))
		if err != nil {
			return fmt.Errorf("failed to render cover icon: %w", err)
		}
	}

	s.host.SetIcon(icon)

	s.mu.Lock()
	s.iconFor = key
	s.mu.Unlock()
	return nil
}

// SetPlaybackState prefixes the title with the transport state
func (s *Sink) SetPlaybackState(state domain.PlaybackState) error {
	switch state {
	case domain.StatePlaying:
		s.host.SetTitle("▶ " + s.identity)
	case domain.StatePaused:
		s.host.SetTitle("⏸ " + s.identity)
	default:
		s.host.SetTitle(s.identity)
	}
	return nil
}

// SetPosition is not shown in the notification area
func (s *Sink) SetPosition(time.Duration) error { return nil }

// SetRepeatMode is not shown in the notification area
func (s *Sink) SetRepeatMode(domain.RepeatMode) error { return nil }

// Close stops forwarding clicks
func (s *Sink) Close() error {
	s.mu.Lock()
	if s.isClosed {
		s.mu.Unlock()
		return nil
	}
	s.isClosed = true
	close(s.done)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

func encodeIcon(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
