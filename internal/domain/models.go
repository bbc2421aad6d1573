package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Digest is a SHA-256 hash used as a stable identity key
type Digest [sha256.Size]byte

// SumDigest hashes data into a Digest
func SumDigest(data []byte) Digest {
	return Digest(sha256.Sum256(data))
}

// String returns the lowercase hex encoding of the digest
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Short returns the first 12 hex characters, for logging
func (d Digest) Short() string {
	return d.String()[:12]
}

// PlaybackState represents the transport state of the playback engine
type PlaybackState int

const (
	// StateStopped indicates nothing is playing
	StateStopped PlaybackState = iota
	// StatePlaying indicates the current song is playing
	StatePlaying
	// StatePaused indicates the current song is paused
	StatePaused
)

func (s PlaybackState) String() string {
	switch s {
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	default:
		return "Stopped"
	}
}

// RepeatMode controls what happens at the end of a song
type RepeatMode int

const (
	// RepeatConsecutive plays the queue once
	RepeatConsecutive RepeatMode = iota
	// RepeatAll wraps around at the end of the queue
	RepeatAll
	// RepeatOne repeats the current song
	RepeatOne
)

func (m RepeatMode) String() string {
	switch m {
	case RepeatAll:
		return "RepeatAll"
	case RepeatOne:
		return "RepeatOne"
	default:
		return "Consecutive"
	}
}

// Next cycles Consecutive -> RepeatAll -> RepeatOne -> Consecutive
func (m RepeatMode) Next() RepeatMode {
	switch m {
	case RepeatConsecutive:
		return RepeatAll
	case RepeatAll:
		return RepeatOne
	default:
		return RepeatConsecutive
	}
}

// CommandKind enumerates the control inputs accepted by the playback engine
type CommandKind int

const (
	CommandPlay CommandKind = iota
	CommandPause
	CommandToggle
	CommandStop
	CommandSkip
	CommandPrevious
	CommandSeek
	CommandSeekTo
	CommandRaise
	CommandQuit
)

var commandNames = map[CommandKind]string{
	CommandPlay:     "Play",
	CommandPause:    "Pause",
	CommandToggle:   "Toggle",
	CommandStop:     "Stop",
	CommandSkip:     "Skip",
	CommandPrevious: "Previous",
	CommandSeek:     "Seek",
	CommandSeekTo:   "SeekTo",
	CommandRaise:    "Raise",
	CommandQuit:     "Quit",
}

func (k CommandKind) String() string {
	if name, ok := commandNames[k]; ok {
		return name
	}
	return fmt.Sprintf("CommandKind(%d)", int(k))
}

// Command is a control request from a control surface.
// Offset is relative for CommandSeek and absolute for CommandSeekTo.
type Command struct {
	Kind   CommandKind
	Offset time.Duration
	// Origin names the control surface that issued the command
	Origin string
}

func (c Command) String() string {
	switch c.Kind {
	case CommandSeek, CommandSeekTo:
		return fmt.Sprintf("%s(%s)", c.Kind, c.Offset)
	default:
		return c.Kind.String()
	}
}

// ScreenResolution holds the display dimensions
type ScreenResolution struct {
	Width  int
	Height int
}
