package scenes

import "image"

// FrameScore computes the normalized color delta between two rasters: the
// mean over all pixels of (|dR|+|dG|+|dB|)/765, alpha ignored. This is an
// intentionally cheap O(pixels) metric, not a perceptual hash. Rasters of
// differing bounds are compared over their shared region.
func FrameScore(a, b *image.RGBA) float64 {
	if a == nil || b == nil {
		return 0
	}

	w := a.Rect.Dx()
	if bw := b.Rect.Dx(); bw < w {
		w = bw
	}
	h := a.Rect.Dy()
	if bh := b.Rect.Dy(); bh < h {
		h = bh
	}
	if w <= 0 || h <= 0 {
		return 0
	}

	var sum uint64
	for y := 0; y < h; y++ {
		ao := a.PixOffset(a.Rect.Min.X, a.Rect.Min.Y+y)
		bo := b.PixOffset(b.Rect.Min.X, b.Rect.Min.Y+y)
		for x := 0; x < w; x++ {
			sum += absDiff(a.Pix[ao], b.Pix[bo])
			sum += absDiff(a.Pix[ao+1], b.Pix[bo+1])
			sum += absDiff(a.Pix[ao+2], b.Pix[bo+2])
			ao += 4
			bo += 4
		}
	}

	return float64(sum) / (765 * float64(w) * float64(h))
}

func absDiff(a, b uint8) uint64 {
	if a > b {
		return uint64(a - b)
	}
	return uint64(b - a)
}
