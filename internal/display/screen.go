package display

import (
	"github.com/genricoloni/resonance/internal/domain"
	"github.com/kbinani/screenshot"
	"go.uber.org/zap"
)

const (
	fallbackWidth  = 1920
	fallbackHeight = 1080
	// Cover art is displayed at most at this fraction of the screen height
	coverHeightRatio = 0.40
	minCoverSize     = 256
)

// NewScreenResolution detects the primary screen resolution at startup
func NewScreenResolution(logger *zap.Logger) *domain.ScreenResolution {
	n := screenshot.NumActiveDisplays()
	if n <= 0 {
		logger.Warn("No active displays detected, falling back to 1920x1080")
		return &domain.ScreenResolution{Width: fallbackWidth, Height: fallbackHeight}
	}

	// Use primary monitor (index 0)
	bounds := screenshot.GetDisplayBounds(0)
	res := &domain.ScreenResolution{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}

	logger.Info("Screen resolution detected",
		zap.Int("width", res.Width),
		zap.Int("height", res.Height))

	return res
}

// CoverSize returns the longest side, in pixels, that decoded cover art is
// scaled down to. A positive configured size wins over the screen-derived one.
func CoverSize(res *domain.ScreenResolution, configured int) int {
	if configured > 0 {
		return configured
	}
	if res == nil || res.Height <= 0 {
		return int(float64(fallbackHeight) * coverHeightRatio)
	}
	size := int(float64(res.Height) * coverHeightRatio)
	if size < minCoverSize {
		return minCoverSize
	}
	return size
}
