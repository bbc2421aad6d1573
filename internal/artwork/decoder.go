package artwork

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // GIF format support
	_ "image/jpeg" // JPEG format support
	_ "image/png"  // PNG format support

	"github.com/disintegration/imaging"
	"github.com/genricoloni/resonance/internal/display"
	"github.com/genricoloni/resonance/internal/domain"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp" // WebP format support
)

// maxPixels rejects decompression bombs before allocating the bitmap
const maxPixels = 64 * 1024 * 1024

// Decoder turns raw embedded picture bytes into a display bitmap
type Decoder interface {
	// Decode returns the bitmap and the source format name
	Decode(data []byte) (image.Image, string, error)
}

// ImageDecoder decodes with imaging and scales covers down to a maximum size
type ImageDecoder struct {
	logger  *zap.Logger
	maxSize int
}

// NewImageDecoder creates a decoder bounded by the configured size, or by the
// screen-derived cover size when none is configured
func NewImageDecoder(logger *zap.Logger, res *domain.ScreenResolution, cfg domain.Config) *ImageDecoder {
	return &ImageDecoder{
		logger:  logger,
		maxSize: display.CoverSize(res, cfg.ArtworkMaxSize()),
	}
}

// Decode validates, decodes and downscales the image
func (d *ImageDecoder) Decode(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("failed to decode image: empty data")
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, "", fmt.Errorf("invalid image dimensions: %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Width*cfg.Height > maxPixels {
		return nil, "", fmt.Errorf("image too large: %dx%d", cfg.Width, cfg.Height)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	if d.maxSize > 0 && (bounds.Dx() > d.maxSize || bounds.Dy() > d.maxSize) {
		d.logger.Debug("Downscaling cover",
			zap.Int("w", bounds.Dx()),
			zap.Int("h", bounds.Dy()),
			zap.Int("max", d.maxSize))
		img = imaging.Fit(img, d.maxSize, d.maxSize, imaging.Lanczos)
	}

	return img, format, nil
}
