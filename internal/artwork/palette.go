package artwork

import (
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/EdlinOrg/prominentcolor"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

const sampleSize = 16

// extractPalette quantizes img to at most k colours ordered by dominance.
// Background masks are tried first; covers that are entirely masked (plain
// black or white) are retried without them. Flat covers reduce to their mean colour.
func extractPalette(img image.Image, k int) (palette []colorful.Color, err error) {
	if img == nil {
		return nil, fmt.Errorf("nil image")
	}
	defer func() {
		if r := recover(); r != nil {
			palette, err = []colorful.Color{meanColor(img)}, nil
		}
	}()

	// k-means needs at least k distinct points
	if distinct := distinctColors(img, k); distinct < k {
		k = distinct
	}
	if k <= 1 {
		return []colorful.Color{meanColor(img)}, nil
	}

	items, err := prominentcolor.KmeansWithAll(k, img, prominentcolor.ArgumentNoCropping,
		prominentcolor.DefaultSize, prominentcolor.GetDefaultMasks())
	if err != nil || len(items) == 0 {
		items, err = prominentcolor.KmeansWithAll(k, img, prominentcolor.ArgumentNoCropping,
			prominentcolor.DefaultSize, nil)
	}
	if err != nil || len(items) == 0 {
		return []colorful.Color{meanColor(img)}, nil
	}

	type ranked struct {
		color  colorful.Color
		count  int
		chroma float64
	}
	seen := make(map[string]bool, len(items))
	candidates := make([]ranked, 0, len(items))
	for _, item := range items {
		c := colorful.Color{
			R: float64(item.Color.R) / 255.0,
			G: float64(item.Color.G) / 255.0,
			B: float64(item.Color.B) / 255.0,
		}
		if math.IsNaN(c.R) || math.IsNaN(c.G) || math.IsNaN(c.B) || item.Cnt <= 0 {
			continue
		}
		c = c.Clamped()
		if seen[c.Hex()] {
			continue
		}
		seen[c.Hex()] = true
		_, chroma, _ := c.Hcl()
		candidates = append(candidates, ranked{color: c, count: item.Cnt, chroma: chroma})
	}

	// Most pixels first, the more vivid colour breaks ties
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].count != candidates[j].count {
			return candidates[i].count > candidates[j].count
		}
		return candidates[i].chroma > candidates[j].chroma
	})

	if len(candidates) == 0 {
		return []colorful.Color{meanColor(img)}, nil
	}

	palette = make([]colorful.Color, 0, len(candidates))
	for _, c := range candidates {
		palette = append(palette, c.color)
	}
	return palette, nil
}

// distinctColors counts distinct colours on a thumbnail, stopping at limit
func distinctColors(img image.Image, limit int) int {
	thumb := imaging.Resize(img, sampleSize, sampleSize, imaging.NearestNeighbor)
	seen := make(map[uint32]struct{}, limit)
	for y := 0; y < sampleSize; y++ {
		for x := 0; x < sampleSize; x++ {
			c := thumb.NRGBAAt(x, y)
			if c.A < 128 {
				continue
			}
			seen[uint32(c.R)<<16|uint32(c.G)<<8|uint32(c.B)] = struct{}{}
			if len(seen) >= limit {
				return limit
			}
		}
	}
	return len(seen)
}

func meanColor(img image.Image) colorful.Color {
	px := imaging.Resize(img, 1, 1, imaging.Box)
	c, _ := colorful.MakeColor(px.NRGBAAt(0, 0))
	return c
}
