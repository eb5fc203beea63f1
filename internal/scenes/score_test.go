package scenes

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestFrameScoreIdentical(t *testing.T) {
	a := solid(16, 16, color.RGBA{R: 40, G: 90, B: 200, A: 255})
	b := solid(16, 16, color.RGBA{R: 40, G: 90, B: 200, A: 255})

	if got := FrameScore(a, b); got != 0 {
		t.Errorf("identical rasters score = %v, want 0", got)
	}
}

func TestFrameScoreOpposite(t *testing.T) {
	a := solid(16, 16, color.RGBA{A: 255})
	b := solid(16, 16, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	if got := FrameScore(a, b); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("black/white score = %v, want 1.0", got)
	}
}

func TestFrameScoreSingleChannel(t *testing.T) {
	a := solid(16, 16, color.RGBA{A: 255})
	b := solid(16, 16, color.RGBA{R: 255, A: 255})

	if got := FrameScore(a, b); math.Abs(got-255.0/765.0) > 1e-9 {
		t.Errorf("single-channel score = %v, want %v", got, 255.0/765.0)
	}
}

func TestFrameScoreIgnoresAlpha(t *testing.T) {
	a := solid(16, 16, color.RGBA{R: 10, G: 10, B: 10, A: 255})
	b := solid(16, 16, color.RGBA{R: 10, G: 10, B: 10, A: 0})

	if got := FrameScore(a, b); got != 0 {
		t.Errorf("alpha-only delta score = %v, want 0", got)
	}
}

func TestFrameScoreMismatchedBounds(t *testing.T) {
	a := solid(16, 16, color.RGBA{A: 255})
	b := solid(8, 8, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	// Compared over the shared 8x8 region.
	if got := FrameScore(a, b); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("mismatched-bounds score = %v, want 1.0", got)
	}
}

func TestFrameScoreNil(t *testing.T) {
	a := solid(4, 4, color.RGBA{A: 255})
	if got := FrameScore(nil, a); got != 0 {
		t.Errorf("nil raster score = %v, want 0", got)
	}
	if got := FrameScore(a, nil); got != 0 {
		t.Errorf("nil raster score = %v, want 0", got)
	}
}
