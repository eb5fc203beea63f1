package media

import (
	"context"
	"image"
)

// Frame is a single decoded sample: a timestamp, a size-capped raster used
// for frame comparison, and a compressed preview thumbnail. The raster is
// transient and dropped once scored; the thumbnail is retained by whichever
// scene ends up owning it.
type Frame struct {
	Timestamp float64
	Raster    *image.RGBA
	Thumbnail []byte
}

// Info holds probed metadata for a playable video resource.
type Info struct {
	Path     string
	Duration float64
	Width    int
	Height   int
	FPS      float64
}

// Decoder renders a raster at an arbitrary timestamp. Implementations seek
// the underlying resource; a context deadline bounds each seek.
type Decoder interface {
	Render(ctx context.Context, timestamp float64) (*image.RGBA, error)
}

// Opener probes a video resource and returns a decoder bound to it.
type Opener interface {
	Open(ctx context.Context, path string) (Decoder, Info, error)
}
