package sampler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"io"
	"math"
	"time"

	"github.com/nfnt/resize"
	"github.com/rs/zerolog"

	"github.com/clipform/clipform/internal/media"
)

const (
	// veryEarlySec places the first sample just after t=0 so intro text is
	// captured before any fade-in completes.
	veryEarlySec = 0.1
	// nearFinalOffsetSec backs the last sample off the end of the video so
	// the outro is still renderable.
	nearFinalOffsetSec = 0.25
)

// Config controls timestamp planning and per-frame capture.
type Config struct {
	// Interval is the sampling cadence in seconds for fixed-cadence runs.
	Interval float64
	// MinSamples and MaxSamples clamp the planned count regardless of the
	// video duration, bounding downstream scoring cost.
	MinSamples int
	MaxSamples int
	// TargetSamples, when positive, overrides cadence planning with an
	// explicit count.
	TargetSamples int
	// RasterMaxEdge caps the longest edge of the comparison raster.
	RasterMaxEdge int
	// ThumbMaxEdge caps the longest edge of the preview thumbnail.
	ThumbMaxEdge int
	// SeekTimeout bounds a single decoder seek+render.
	SeekTimeout time.Duration
	// JPEGQuality is the thumbnail encoding quality.
	JPEGQuality int
}

// DefaultConfig returns the standard sampling parameters.
func DefaultConfig() Config {
	return Config{
		Interval:      1.0,
		MinSamples:    10,
		MaxSamples:    30,
		RasterMaxEdge: 720,
		ThumbMaxEdge:  320,
		SeekTimeout:   5 * time.Second,
		JPEGQuality:   80,
	}
}

// PlanTimestamps computes the monotonically increasing sample timestamps
// for a video of the given total duration, all within [0, total). The plan
// always includes a very-early and a near-final timestamp.
func PlanTimestamps(total float64, cfg Config) ([]float64, error) {
	if total <= 0 {
		return nil, fmt.Errorf("plan samples for %.2fs video: %w", total, media.ErrComputation)
	}

	minSamples := cfg.MinSamples
	if minSamples <= 0 {
		minSamples = 10
	}
	maxSamples := cfg.MaxSamples
	if maxSamples < minSamples {
		maxSamples = 30
	}

	count := cfg.TargetSamples
	if count <= 0 {
		interval := cfg.Interval
		if interval <= 0 {
			interval = 1.0
		}
		count = int(math.Round(total / interval))
		if count < minSamples {
			count = minSamples
		}
		if count > maxSamples {
			count = maxSamples
		}
	}
	if count < 2 {
		count = 2
	}

	step := total / float64(count)
	timestamps := make([]float64, count)
	for i := range timestamps {
		timestamps[i] = float64(i) * step
	}

	if early := math.Min(veryEarlySec, step/2); timestamps[0] < early {
		timestamps[0] = early
	}
	if late := total - nearFinalOffsetSec; late > timestamps[count-1] {
		timestamps[count-1] = late
	}

	return timestamps, nil
}

// Sampler captures ordered frames from a decoder according to a plan.
type Sampler struct {
	logger zerolog.Logger
	dec    media.Decoder
	cfg    Config
}

// New creates a sampler bound to one decoder.
func New(logger zerolog.Logger, dec media.Decoder, cfg Config) *Sampler {
	return &Sampler{
		logger: logger.With().Str("component", "sampler").Logger(),
		dec:    dec,
		cfg:    cfg,
	}
}

// Stream plans the timestamps for the given duration and returns a
// pull-based frame stream over them.
func (s *Sampler) Stream(total float64) (*Stream, error) {
	plan, err := PlanTimestamps(total, s.cfg)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Int("samples", len(plan)).
		Float64("duration", total).
		Msg("sampling plan ready")

	return &Stream{s: s, plan: plan}, nil
}

// Stream yields frames one at a time in timestamp order. Each Stream owns
// its own cursor, so concurrent runs over different videos never share
// state.
type Stream struct {
	s        *Sampler
	plan     []float64
	next     int
	produced int
}

// Planned returns the number of scheduled samples.
func (st *Stream) Planned() int {
	return len(st.plan)
}

// Next returns the next usable frame. Frames whose seek or render fails
// are skipped, except the very first frame of the run, whose failure marks
// the whole resource undecodable. Next returns io.EOF once the plan is
// exhausted, or an empty-result error if no frame was ever usable.
func (st *Stream) Next(ctx context.Context) (media.Frame, error) {
	for st.next < len(st.plan) {
		ts := st.plan[st.next]
		first := st.next == 0
		st.next++

		raster, err := st.render(ctx, ts)
		if err != nil {
			if ctx.Err() != nil {
				return media.Frame{}, ctx.Err()
			}
			if first {
				return media.Frame{}, fmt.Errorf("first frame at %.2fs: %v: %w", ts, err, media.ErrDecode)
			}
			st.s.logger.Warn().
				Float64("ts", ts).
				Err(err).
				Msg("frame skipped")
			continue
		}

		frame, err := st.finish(ts, raster)
		if err != nil {
			if first {
				return media.Frame{}, fmt.Errorf("first frame at %.2fs: %v: %w", ts, err, media.ErrDecode)
			}
			st.s.logger.Warn().
				Float64("ts", ts).
				Err(err).
				Msg("frame unusable")
			continue
		}

		st.produced++
		return frame, nil
	}

	if st.produced == 0 {
		return media.Frame{}, fmt.Errorf("no usable frames: %w", media.ErrEmptyResult)
	}
	return media.Frame{}, io.EOF
}

// render performs one bounded seek+render against the decoder.
func (st *Stream) render(ctx context.Context, ts float64) (*image.RGBA, error) {
	timeout := st.s.cfg.SeekTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	seekCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	raster, err := st.s.dec.Render(seekCtx, ts)
	if err != nil {
		if ctx.Err() == nil && errors.Is(seekCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("seek to %.2fs: %w", ts, media.ErrSeekTimeout)
		}
		return nil, err
	}
	return raster, nil
}

// finish downsizes the raster to the comparison cap and encodes the
// preview thumbnail.
func (st *Stream) finish(ts float64, raster *image.RGBA) (media.Frame, error) {
	cfg := st.s.cfg

	capped := capRaster(raster, cfg.RasterMaxEdge)

	thumb, err := encodeThumbnail(capped, cfg.ThumbMaxEdge, cfg.JPEGQuality)
	if err != nil {
		return media.Frame{}, fmt.Errorf("encode thumbnail at %.2fs: %w", ts, err)
	}

	return media.Frame{
		Timestamp: ts,
		Raster:    capped,
		Thumbnail: thumb,
	}, nil
}

// capRaster scales the raster down so its longest edge does not exceed
// maxEdge. Rasters already inside the cap pass through untouched.
func capRaster(img *image.RGBA, maxEdge int) *image.RGBA {
	if maxEdge <= 0 {
		return img
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxEdge && h <= maxEdge {
		return img
	}

	var scaled image.Image
	if w >= h {
		scaled = resize.Resize(uint(maxEdge), 0, img, resize.Bilinear)
	} else {
		scaled = resize.Resize(0, uint(maxEdge), img, resize.Bilinear)
	}

	return toRGBA(scaled)
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

func encodeThumbnail(img *image.RGBA, maxEdge, quality int) ([]byte, error) {
	preview := capRaster(img, maxEdge)

	if quality <= 0 || quality > 100 {
		quality = 80
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, preview, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
