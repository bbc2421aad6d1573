// Package media holds the playable item model and the metadata resolver.
package media

import (
	"fmt"
	"sync"
	"time"

	"github.com/genricoloni/resonance/internal/artwork"
	"github.com/genricoloni/resonance/internal/domain"
	"github.com/lucasb-eyer/go-colorful"
)

const (
	UnknownArtist = "Unknown artist"
	UnknownTitle  = "Unknown title"
	UnknownAlbum  = "Unknown album"
)

// Metadata holds the descriptive fields of an item. A nil field was not
// found anywhere; a pointer to "" is a present but empty tag.
type Metadata struct {
	Artist   *string
	Title    *string
	Album    *string
	Duration time.Duration
}

// Change identifies what an Item notification is about
type Change int

const (
	ChangeMetadata Change = iota
	ChangePlaying
	ChangeSelected
)

func (c Change) String() string {
	switch c {
	case ChangeMetadata:
		return "metadata"
	case ChangePlaying:
		return "playing"
	case ChangeSelected:
		return "selected"
	default:
		return fmt.Sprintf("Change(%d)", int(c))
	}
}

// resolved is everything the resolver computes for a URI
type resolved struct {
	fingerprint *domain.Digest
	metadata    Metadata
	artwork     *artwork.Artwork
	coverUUID   string
}

// Item is a playable media item. The URI is fixed at construction; identity
// and metadata are set once by resolution; playing and selected are
// presentation flags that never affect equality.
type Item struct {
	uri string

	mu        sync.RWMutex
	res       resolved
	playing   bool
	selected  bool
	listeners []func(Change)
}

// NewItem creates an unresolved placeholder for uri
func NewItem(uri string) *Item {
	return &Item{uri: uri}
}

func newResolvedItem(uri string, res resolved) *Item {
	return &Item{uri: uri, res: res}
}

// URI returns the source locator
func (i *Item) URI() string { return i.uri }

// Fingerprint returns the identity digest, absent when the file could not be stat'ed
func (i *Item) Fingerprint() (domain.Digest, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.res.fingerprint == nil {
		return domain.Digest{}, false
	}
	return *i.res.fingerprint, true
}

// Valid reports whether the item was backed by a readable file
func (i *Item) Valid() bool {
	_, ok := i.Fingerprint()
	return ok
}

// Metadata returns a copy of the raw optional fields
func (i *Item) Metadata() Metadata {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.res.metadata
}

// Artist returns the artist or UnknownArtist
func (i *Item) Artist() string { return orDefault(i.Metadata().Artist, UnknownArtist) }

// Title returns the title or UnknownTitle
func (i *Item) Title() string { return orDefault(i.Metadata().Title, UnknownTitle) }

// Album returns the album or UnknownAlbum
func (i *Item) Album() string { return orDefault(i.Metadata().Album, UnknownAlbum) }

// Duration is zero until resolved or when the file has no stream length
func (i *Item) Duration() time.Duration { return i.Metadata().Duration }

// Artwork returns the shared cover, if the file embeds one
func (i *Item) Artwork() (*artwork.Artwork, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.res.artwork, i.res.artwork != nil
}

// CoverUUID returns the cover identifier assigned by the artwork cache
func (i *Item) CoverUUID() (string, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.res.coverUUID, i.res.coverUUID != ""
}

// CoverColor returns the accent colour of the cover
func (i *Item) CoverColor() (colorful.Color, bool) {
	art, ok := i.Artwork()
	if !ok {
		return colorful.Color{}, false
	}
	return art.Accent()
}

// SearchKey is the text matched by playlist filtering
func (i *Item) SearchKey() string {
	return fmt.Sprintf("%s %s %s", i.Artist(), i.Album(), i.Title())
}

// Playing reports whether the player has this item current
func (i *Item) Playing() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.playing
}

// SetPlaying updates the playing flag, notifying listeners only on change
func (i *Item) SetPlaying(playing bool) {
	i.mu.Lock()
	if i.playing == playing {
		i.mu.Unlock()
		return
	}
	i.playing = playing
	listeners := i.listeners
	i.mu.Unlock()

	notify(listeners, ChangePlaying)
}

// Selected reports whether a controller has this item selected
func (i *Item) Selected() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.selected
}

// SetSelected updates the selected flag, notifying listeners only on change
func (i *Item) SetSelected(selected bool) {
	i.mu.Lock()
	if i.selected == selected {
		i.mu.Unlock()
		return
	}
	i.selected = selected
	listeners := i.listeners
	i.mu.Unlock()

	notify(listeners, ChangeSelected)
}

// OnChange registers fn to be called after every change. Callbacks run on the
// goroutine that made the change, without the item lock held.
func (i *Item) OnChange(fn func(Change)) {
	if fn == nil {
		return
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	// copy on write, notify works on a snapshot
	listeners := make([]func(Change), len(i.listeners), len(i.listeners)+1)
	copy(listeners, i.listeners)
	i.listeners = append(listeners, fn)
}

// apply replaces the resolved fields of a placeholder and notifies once
func (i *Item) apply(res resolved) {
	i.mu.Lock()
	i.res = res
	listeners := i.listeners
	i.mu.Unlock()

	notify(listeners, ChangeMetadata)
}

// Equal compares fingerprints when both are present, URIs otherwise
func (i *Item) Equal(other *Item) bool {
	if i == nil || other == nil {
		return i == other
	}
	if i == other {
		return true
	}
	a, aok := i.Fingerprint()
	b, bok := other.Fingerprint()
	if aok && bok {
		return a == b
	}
	return i.uri == other.uri
}

func (i *Item) String() string {
	if fp, ok := i.Fingerprint(); ok {
		return fmt.Sprintf("Item(%s, %s)", fp.Short(), i.uri)
	}
	return fmt.Sprintf("Item(%s)", i.uri)
}

func notify(listeners []func(Change), c Change) {
	for _, fn := range listeners {
		fn(c)
	}
}

func orDefault(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}
