//go:build govips && cgo

package imaging

import (
	"context"
	"fmt"

	"github.com/davidbyttow/govips/v2/vips"
)

type govipsTransformer struct{}

func (t govipsTransformer) Transform(ctx context.Context, input []byte, profile Profile) ([]byte, int, int, error) {
	select {
	case <-ctx.Done():
		return nil, 0, 0, ctx.Err()
	default:
	}

	img, err := vips.NewImageFromBuffer(input)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%w: decode: %v", ErrUnsupportedImage, err)
	}
	defer img.Close()

	srcW, srcH := img.Width(), img.Height()
	if srcW <= 0 || srcH <= 0 {
		return nil, 0, 0, fmt.Errorf("%w: empty image", ErrUnsupportedImage)
	}

	width, height := fitInside(srcW, srcH, profile.MaxWidth, profile.MaxHeight)
	if width != srcW || height != srcH {
		hScale := float64(width) / float64(srcW)
		vScale := float64(height) / float64(srcH)
		if err := img.ResizeWithVScale(hScale, vScale, vips.KernelLanczos3); err != nil {
			return nil, 0, 0, fmt.Errorf("resize image: %w", err)
		}
	}

	if img.HasAlpha() {
		if err := img.Flatten(&vips.Color{}); err != nil {
			return nil, 0, 0, fmt.Errorf("flatten alpha: %w", err)
		}
	}

	params := vips.NewJpegExportParams()
	params.Quality = profile.Quality
	params.Interlace = profile.Progressive
	params.StripMetadata = true

	data, _, err := img.ExportJpeg(params)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("encode jpeg: %w", err)
	}

	return data, img.Width(), img.Height(), nil
}
