package imaging

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// stdlibTransformer is the pure-Go backend. image/jpeg has no progressive
// mode, so Profile.Progressive is ignored here.
type stdlibTransformer struct{}

func (t stdlibTransformer) Transform(ctx context.Context, input []byte, profile Profile) ([]byte, int, int, error) {
	select {
	case <-ctx.Done():
		return nil, 0, 0, ctx.Err()
	default:
	}

	src, _, err := image.Decode(bytes.NewReader(input))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%w: decode: %v", ErrUnsupportedImage, err)
	}

	srcBounds := src.Bounds()
	if srcBounds.Dx() == 0 || srcBounds.Dy() == 0 {
		return nil, 0, 0, fmt.Errorf("%w: empty image", ErrUnsupportedImage)
	}

	width, height := fitInside(srcBounds.Dx(), srcBounds.Dy(), profile.MaxWidth, profile.MaxHeight)
	out := src
	if width != srcBounds.Dx() || height != srcBounds.Dy() {
		dst := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, srcBounds, draw.Src, nil)
		out = dst
	}

	select {
	case <-ctx.Done():
		return nil, 0, 0, ctx.Err()
	default:
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: profile.Quality}); err != nil {
		return nil, 0, 0, fmt.Errorf("encode jpeg: %w", err)
	}

	return buf.Bytes(), width, height, nil
}
