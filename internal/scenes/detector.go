package scenes

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/rs/zerolog"

	"github.com/clipform/clipform/internal/media"
	"github.com/clipform/clipform/pkg/timeutil"
)

// Scene is a contiguous video interval whose visual content differs from
// its neighbors beyond the configured threshold.
type Scene struct {
	ID          int     `json:"id"`
	StartTime   float64 `json:"startTime"`
	EndTime     float64 `json:"endTime"`
	Duration    float64 `json:"duration"`
	Thumbnail   []byte  `json:"thumbnail,omitempty"`
	Description string  `json:"description"`
}

// Config controls boundary detection behavior.
type Config struct {
	// Threshold is the minimum normalized frame-difference score that
	// qualifies as a scene boundary.
	Threshold float64
	// MinSceneDuration suppresses boundaries that would produce a scene
	// shorter than this, absorbing flicker into the scene in progress.
	MinSceneDuration float64
}

// DefaultConfig returns the standard detection parameters.
func DefaultConfig() Config {
	return Config{
		Threshold:        0.3,
		MinSceneDuration: 1.5,
	}
}

// ProgressFunc observes detection progress as a fraction in [0, 1]. It is
// called once per processed frame with non-decreasing values and has no
// influence on detection output.
type ProgressFunc func(fraction float64)

// FrameSource yields frames in strict timestamp order. sampler.Stream
// satisfies this.
type FrameSource interface {
	Next(ctx context.Context) (media.Frame, error)
	Planned() int
}

// Detector partitions a video into scenes from an ordered frame stream.
// Each Detect call owns its own run state, so detectors are safe to reuse
// across concurrent runs.
type Detector struct {
	logger zerolog.Logger
	cfg    Config
}

// New creates a detector.
func New(logger zerolog.Logger, cfg Config) *Detector {
	return &Detector{
		logger: logger.With().Str("component", "scene-detector").Logger(),
		cfg:    cfg,
	}
}

// Detect consumes the frame stream and returns the scene partition of
// [0, total). Scenes finalized before a cancellation remain valid and are
// returned alongside the context error; no partial scene is ever emitted.
func (d *Detector) Detect(ctx context.Context, src FrameSource, total float64, progress ProgressFunc) ([]Scene, error) {
	if total <= 0 {
		return nil, fmt.Errorf("detect scenes over %.2fs: %w", total, media.ErrComputation)
	}

	r := &run{
		cfg:      d.cfg,
		planned:  src.Planned(),
		progress: progress,
	}

	for {
		frame, err := src.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				d.logger.Warn().
					Int("frames", r.processed).
					Int("scenes", len(r.scenes)).
					Msg("detection aborted")
				return r.scenes, err
			}
			return nil, err
		}
		r.observe(frame)
		r.report()
	}

	if r.processed == 0 {
		return nil, fmt.Errorf("no frames processed: %w", media.ErrEmptyResult)
	}

	r.flush(total, d.logger)
	r.finish()

	d.logger.Info().
		Int("frames", r.processed).
		Int("scenes", len(r.scenes)).
		Float64("threshold", d.cfg.Threshold).
		Msg("scene detection complete")

	return r.scenes, nil
}

// run carries the mutable per-extraction state: the previous raster, the
// open scene cursor, and the progress counter. Nothing here outlives one
// Detect call.
type run struct {
	cfg          Config
	prev         *image.RGBA
	sceneStart   float64
	lastThumb    []byte
	scenes       []Scene
	processed    int
	planned      int
	lastFraction float64
	progress     ProgressFunc
}

func (r *run) observe(f media.Frame) {
	if r.prev == nil {
		r.prev = f.Raster
		r.lastThumb = f.Thumbnail
		r.processed++
		return
	}

	score := FrameScore(r.prev, f.Raster)
	if score > r.cfg.Threshold && f.Timestamp-r.sceneStart >= r.cfg.MinSceneDuration {
		r.finalize(f.Timestamp)
	}

	// Previous raster is no longer needed once scored.
	r.prev = f.Raster
	r.lastThumb = f.Thumbnail
	r.processed++
}

// finalize closes the open scene at the boundary timestamp. The scene
// keeps the last thumbnail captured inside it.
func (r *run) finalize(end float64) {
	id := len(r.scenes) + 1
	r.scenes = append(r.scenes, Scene{
		ID:          id,
		StartTime:   r.sceneStart,
		EndTime:     end,
		Duration:    timeutil.RoundTenth(end - r.sceneStart),
		Thumbnail:   r.lastThumb,
		Description: fmt.Sprintf("Scene %d", id),
	})
	r.sceneStart = end
}

// flush emits the trailing scene up to the total duration, dropping it if
// it would violate the minimum scene duration.
func (r *run) flush(total float64, logger zerolog.Logger) {
	tail := total - r.sceneStart
	if tail >= r.cfg.MinSceneDuration {
		r.finalize(total)
		return
	}
	logger.Debug().
		Float64("start", r.sceneStart).
		Float64("tail", tail).
		Msg("dropping too-short trailing scene")
}

func (r *run) report() {
	if r.progress == nil || r.planned <= 0 {
		return
	}
	fraction := float64(r.processed) / float64(r.planned)
	if fraction > 1 {
		fraction = 1
	}
	if fraction < r.lastFraction {
		fraction = r.lastFraction
	}
	r.lastFraction = fraction
	r.progress(fraction)
}

func (r *run) finish() {
	if r.progress == nil {
		return
	}
	if r.lastFraction < 1 {
		r.lastFraction = 1
		r.progress(1)
	}
}
