package imaging

import (
	"context"
	"math"
)

// Transformer decodes an image, fits it inside the profile box and encodes
// it as JPEG.
type Transformer interface {
	Transform(ctx context.Context, input []byte, profile Profile) (data []byte, width, height int, err error)
}

// fitInside returns the largest size with the source aspect ratio that fits
// inside maxW x maxH. Sources already inside the box keep their size.
func fitInside(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}

	scale := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	outW := int(math.Round(float64(w) * scale))
	outH := int(math.Round(float64(h) * scale))

	return clamp(outW, 1, maxW), clamp(outH, 1, maxH)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
