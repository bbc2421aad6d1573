package mpris

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/genricoloni/resonance/internal/controller"
	"github.com/genricoloni/resonance/internal/domain"
	"github.com/genricoloni/resonance/internal/media"
	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"
	"go.uber.org/zap"
)

const (
	objectPath    = dbus.ObjectPath("/org/mpris/MediaPlayer2")
	rootInterface = "org.mpris.MediaPlayer2"
	playerIface   = "org.mpris.MediaPlayer2.Player"
	busNamePrefix = "org.mpris.MediaPlayer2."
	seekedSignal  = playerIface + ".Seeked"
	origin        = "mpris"
	notSupported  = "org.freedesktop.DBus.Error.NotSupported"
	seekTolerance = 2 * time.Second
)

// Sink publishes playback state as an MPRIS2 media session and turns
// incoming method calls into commands.
type Sink struct {
	logger  *zap.Logger
	bus     Bus
	props   Properties
	cmds    controller.Sender
	prefix  string
	busName string

	mu       sync.Mutex
	track    dbus.ObjectPath
	position time.Duration
	closed   bool
}

// Build exports the MPRIS objects on bus and claims the player's bus name.
// The bus is closed on failure.
func Build(ctx context.Context, logger *zap.Logger, cfg domain.Config, bus Bus, cmds controller.Sender) (s *Sink, err error) {
	defer func() {
		if err != nil {
			if cerr := bus.Close(); cerr != nil {
				logger.Warn("Failed to close D-Bus connection", zap.Error(cerr))
			}
		}
	}()

	s = &Sink{
		logger:  logger,
		bus:     bus,
		cmds:    cmds,
		prefix:  trackPrefix(cfg.AppID()),
		busName: busNamePrefix + cfg.AppID(),
		track:   noTrack,
	}
	root := &mediaPlayer2{sink: s}
	player := &player{sink: s}

	if err := bus.Export(root, objectPath, rootInterface); err != nil {
		return nil, fmt.Errorf("failed to export %s: %w", rootInterface, err)
	}
	if err := bus.Export(player, objectPath, playerIface); err != nil {
		return nil, fmt.Errorf("failed to export %s: %w", playerIface, err)
	}

	props, err := bus.ExportProperties(objectPath, propertySpec(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to export properties: %w", err)
	}
	s.props = props

	node := &introspect.Node{
		Name: string(objectPath),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			prop.IntrospectData,
			{Name: rootInterface, Methods: introspect.Methods(root)},
			{
				Name:    playerIface,
				Methods: introspect.Methods(player),
				Signals: []introspect.Signal{{
					Name: "Seeked",
					Args: []introspect.Arg{{Name: "Position", Type: "x"}},
				}},
			},
		},
	}
	if err := bus.Export(introspect.NewIntrospectable(node), objectPath, "org.freedesktop.DBus.Introspectable"); err != nil {
		return nil, fmt.Errorf("failed to export introspection: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reply, err := bus.RequestName(s.busName)
	if err != nil {
		return nil, fmt.Errorf("failed to request %s: %w", s.busName, err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return nil, fmt.Errorf("name %s already taken", s.busName)
	}

	logger.Info("MPRIS session registered", zap.String("name", s.busName))
	return s, nil
}

func propertySpec(cfg domain.Config) map[string]map[string]*prop.Prop {
	ro := func(v interface{}) *prop.Prop {
		return &prop.Prop{Value: v, Writable: false, Emit: prop.EmitTrue}
	}
	return map[string]map[string]*prop.Prop{
		rootInterface: {
			"CanQuit":             ro(true),
			"CanRaise":            ro(true),
			"HasTrackList":        ro(false),
			"Identity":            ro(cfg.Identity()),
			"DesktopEntry":        ro(cfg.AppID()),
			"SupportedUriSchemes": ro([]string{"file"}),
			"SupportedMimeTypes":  ro([]string{"audio/mpeg", "audio/flac", "audio/ogg", "audio/mp4", "audio/x-wav"}),
		},
		playerIface: {
			"PlaybackStatus": ro(playbackStatus(domain.StateStopped)),
			"LoopStatus":     ro(loopStatus(domain.RepeatConsecutive)),
			"Rate":           ro(1.0),
			"MinimumRate":    ro(1.0),
			"MaximumRate":    ro(1.0),
			"Shuffle":        ro(false),
			"Volume":         ro(1.0),
			"Metadata":       ro(metadataFor("", nil)),
			"Position":       {Value: int64(0), Writable: false, Emit: prop.EmitFalse},
			"CanGoNext":      ro(true),
			"CanGoPrevious":  ro(true),
			"CanPlay":        ro(false),
			"CanPause":       ro(true),
			"CanSeek":        ro(true),
			"CanControl":     ro(true),
		},
	}
}

// SetSong publishes the item's metadata
func (s *Sink) SetSong(item *media.Item) error {
	md := metadataFor(s.prefix, item)

	s.mu.Lock()
	s.track = trackID(s.prefix, item)
	s.position = 0
	s.mu.Unlock()

	return s.set(playerIface, "Metadata", md)
}

// SetPlaybackState publishes PlaybackStatus
func (s *Sink) SetPlaybackState(state domain.PlaybackState) error {
	return s.set(playerIface, "PlaybackStatus", playbackStatus(state))
}

// SetPosition updates Position and signals Seeked when the position jumps
// rather than advancing with playback
func (s *Sink) SetPosition(position time.Duration) error {
	s.mu.Lock()
	last := s.position
	s.position = position
	s.mu.Unlock()

	if err := s.set(playerIface, "Position", microseconds(position)); err != nil {
		return err
	}

	if position < last || position-last > seekTolerance {
		if err := s.bus.Emit(objectPath, seekedSignal, microseconds(position)); err != nil {
			return fmt.Errorf("failed to emit Seeked: %w", err)
		}
	}
	return nil
}

// SetRepeatMode publishes LoopStatus
func (s *Sink) SetRepeatMode(mode domain.RepeatMode) error {
	return s.set(playerIface, "LoopStatus", loopStatus(mode))
}

// Close releases the bus name and the connection
func (s *Sink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.logger.Info("Closing MPRIS session", zap.String("name", s.busName))
	return s.bus.Close()
}

func (s *Sink) set(iface, name string, v interface{}) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to set %s: %v", name, r)
		}
	}()
	s.props.SetMust(iface, name, v)
	return nil
}

func (s *Sink) currentTrack() dbus.ObjectPath {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.track
}

// send enqueues a command on behalf of a D-Bus caller
func (s *Sink) send(cmd domain.Command) *dbus.Error {
	cmd.Origin = origin
	if err := s.cmds.Send(cmd); err != nil {
		s.logger.Warn("Dropping MPRIS command",
			zap.Stringer("command", cmd),
			zap.Error(err))
		return dbus.MakeFailedError(err)
	}
	s.logger.Debug("MPRIS command queued", zap.Stringer("command", cmd))
	return nil
}

// mediaPlayer2 implements org.mpris.MediaPlayer2
type mediaPlayer2 struct {
	sink *Sink
}

func (m *mediaPlayer2) Raise() *dbus.Error {
	return m.sink.send(domain.Command{Kind: domain.CommandRaise})
}

func (m *mediaPlayer2) Quit() *dbus.Error {
	return m.sink.send(domain.Command{Kind: domain.CommandQuit})
}

// player implements org.mpris.MediaPlayer2.Player
type player struct {
	sink *Sink
}

func (p *player) Next() *dbus.Error {
	return p.sink.send(domain.Command{Kind: domain.CommandSkip})
}

func (p *player) Previous() *dbus.Error {
	return p.sink.send(domain.Command{Kind: domain.CommandPrevious})
}

func (p *player) Pause() *dbus.Error {
	return p.sink.send(domain.Command{Kind: domain.CommandPause})
}

func (p *player) PlayPause() *dbus.Error {
	return p.sink.send(domain.Command{Kind: domain.CommandToggle})
}

func (p *player) Stop() *dbus.Error {
	return p.sink.send(domain.Command{Kind: domain.CommandStop})
}

func (p *player) Play() *dbus.Error {
	return p.sink.send(domain.Command{Kind: domain.CommandPlay})
}

// Seek moves by offset microseconds
func (p *player) Seek(offset int64) *dbus.Error {
	return p.sink.send(domain.Command{Kind: domain.CommandSeek, Offset: time.Duration(offset) * time.Microsecond})
}

// SetPosition is ignored unless trackID names the current track
func (p *player) SetPosition(trackID dbus.ObjectPath, position int64) *dbus.Error {
	if position < 0 {
		return nil
	}
	if current := p.sink.currentTrack(); trackID != current {
		p.sink.logger.Debug("Ignoring SetPosition for stale track",
			zap.String("track", string(trackID)),
			zap.String("current", string(current)))
		return nil
	}
	return p.sink.send(domain.Command{Kind: domain.CommandSeekTo, Offset: time.Duration(position) * time.Microsecond})
}

func (p *player) OpenUri(uri string) *dbus.Error {
	return dbus.NewError(notSupported, []interface{}{"OpenUri is not supported"})
}
