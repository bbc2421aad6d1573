package mpris

import (
	"net/url"
	"strings"
	"time"

	"github.com/genricoloni/resonance/internal/domain"
	"github.com/genricoloni/resonance/internal/media"
	"github.com/godbus/dbus/v5"
)

const noTrack = dbus.ObjectPath("/org/mpris/MediaPlayer2/TrackList/NoTrack")

func playbackStatus(s domain.PlaybackState) string {
	switch s {
	case domain.StatePlaying:
		return "Playing"
	case domain.StatePaused:
		return "Paused"
	default:
		return "Stopped"
	}
}

func loopStatus(m domain.RepeatMode) string {
	switch m {
	case domain.RepeatAll:
		return "Playlist"
	case domain.RepeatOne:
		return "Track"
	default:
		return "None"
	}
}

func microseconds(d time.Duration) int64 {
	return d.Microseconds()
}

// trackPrefix turns an application id into an object path prefix
func trackPrefix(appID string) string {
	var b strings.Builder
	for _, part := range strings.Split(appID, ".") {
		if part == "" {
			continue
		}
		b.WriteByte('/')
		for _, r := range part {
			if r > 127 || !(r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
				r = '_'
			}
			b.WriteRune(r)
		}
	}
	b.WriteString("/track/")
	return b.String()
}

// trackID derives a stable object path from the item's fingerprint,
// falling back to a hash of its URI
func trackID(prefix string, item *media.Item) dbus.ObjectPath {
	if item == nil {
		return noTrack
	}
	fp, ok := item.Fingerprint()
	if !ok {
		fp = domain.SumDigest([]byte(item.URI()))
	}
	return dbus.ObjectPath(prefix + fp.String())
}

// metadataFor builds the xesam/mpris metadata map for item
func metadataFor(prefix string, item *media.Item) map[string]dbus.Variant {
	if item == nil {
		return map[string]dbus.Variant{
			"mpris:trackid": dbus.MakeVariant(noTrack),
		}
	}

	md := map[string]dbus.Variant{
		"mpris:trackid": dbus.MakeVariant(trackID(prefix, item)),
		"xesam:title":   dbus.MakeVariant(item.Title()),
		"xesam:artist":  dbus.MakeVariant([]string{item.Artist()}),
		"xesam:album":   dbus.MakeVariant(item.Album()),
		"xesam:url":     dbus.MakeVariant(item.URI()),
	}
	if d := item.Duration(); d > 0 {
		md["mpris:length"] = dbus.MakeVariant(microseconds(d))
	}
	if art, ok := item.Artwork(); ok {
		if path, ok := art.CachePath(); ok {
			md["mpris:artUrl"] = dbus.MakeVariant((&url.URL{Scheme: "file", Path: path}).String())
		}
	}
	return md
}
