// Package artwork implements the content-addressed cover art cache.
package artwork

import (
	"image"

	"github.com/genricoloni/resonance/internal/domain"
	"github.com/google/uuid"
	"github.com/lucasb-eyer/go-colorful"
)

// namespace for deterministic cover UUIDs
var coverNamespace = uuid.MustParse("3f0b8a52-6d1e-4c52-9a57-0c1f2f7f4e11")

// Artwork is a decoded cover, shared by every media item embedding the same bytes.
// It is never mutated after creation.
type Artwork struct {
	digest    domain.Digest
	uuid      string
	format    string
	bitmap    image.Image
	palette   []colorful.Color
	cachePath string
}

// CoverUUID derives the cover UUID string for a digest
func CoverUUID(d domain.Digest) string {
	return uuid.NewSHA1(coverNamespace, d[:]).String()
}

// Digest returns the hash of the raw embedded image bytes
func (a *Artwork) Digest() domain.Digest { return a.digest }

// UUID returns the cover UUID derived from the digest
func (a *Artwork) UUID() string { return a.uuid }

// Format returns the source image format (jpeg, png, gif, webp)
func (a *Artwork) Format() string { return a.format }

// Bitmap returns the decoded, display-sized image
func (a *Artwork) Bitmap() image.Image { return a.bitmap }

// Palette returns the dominant colours; index 0 is the accent colour
func (a *Artwork) Palette() []colorful.Color {
	out := make([]colorful.Color, len(a.palette))
	copy(out, a.palette)
	return out
}

// Accent returns the primary palette colour
func (a *Artwork) Accent() (colorful.Color, bool) {
	if len(a.palette) == 0 {
		return colorful.Color{}, false
	}
	return a.palette[0], true
}

// CachePath returns the persisted copy of the original bytes, if any
func (a *Artwork) CachePath() (string, bool) {
	return a.cachePath, a.cachePath != ""
}
