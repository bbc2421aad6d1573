// Package controller fans playback state out to control surfaces and
// funnels their commands back into a single queue.
package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/genricoloni/resonance/internal/domain"
	"github.com/genricoloni/resonance/internal/media"
)

// Controller is a control surface receiving playback state. Every variant
// implements all four methods; one that cannot represent a value returns nil.
//
//go:generate mockgen -destination=mocks/controller_mock.go -package=mocks github.com/genricoloni/resonance/internal/controller Controller
type Controller interface {
	SetPlaybackState(state domain.PlaybackState) error
	SetSong(item *media.Item) error
	SetPosition(position time.Duration) error
	SetRepeatMode(mode domain.RepeatMode) error
}

// Builder constructs a controller that needs a handshake before it is usable
type Builder func(ctx context.Context) (Controller, error)

// SinkState is the availability of a registered controller
type SinkState int

const (
	StateConstructing SinkState = iota
	StateReady
	// StateUnavailable is terminal
	StateUnavailable
)

func (s SinkState) String() string {
	switch s {
	case StateConstructing:
		return "Constructing"
	case StateReady:
		return "Ready"
	case StateUnavailable:
		return "Unavailable"
	default:
		return fmt.Sprintf("SinkState(%d)", int(s))
	}
}

// SinkStatus reports one registered controller
type SinkStatus struct {
	Name  string
	State SinkState
}

// Nop is the controller used where a surface is not supported
type Nop struct{}

func (Nop) SetPlaybackState(domain.PlaybackState) error { return nil }
func (Nop) SetSong(*media.Item) error                   { return nil }
func (Nop) SetPosition(time.Duration) error             { return nil }
func (Nop) SetRepeatMode(domain.RepeatMode) error       { return nil }
