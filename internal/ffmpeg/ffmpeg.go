package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os/exec"

	"github.com/rs/zerolog"

	"github.com/clipform/clipform/internal/media"
	"github.com/clipform/clipform/pkg/timeutil"
)

// Executor shells out to ffmpeg/ffprobe for probing and frame extraction.
type Executor struct {
	logger      zerolog.Logger
	ffmpegPath  string
	ffprobePath string
	threads     int
}

// New creates an executor, resolving both binaries up front so a missing
// install fails at startup rather than mid-run.
func New(logger zerolog.Logger, ffmpegBin, ffprobeBin string, threads int) (*Executor, error) {
	if ffmpegBin == "" {
		ffmpegBin = "ffmpeg"
	}
	if ffprobeBin == "" {
		ffprobeBin = "ffprobe"
	}

	ffmpegPath, err := exec.LookPath(ffmpegBin)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	ffprobePath, err := exec.LookPath(ffprobeBin)
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found in PATH: %w", err)
	}

	return &Executor{
		logger:      logger.With().Str("component", "ffmpeg").Logger(),
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		threads:     threads,
	}, nil
}

// Open probes the video and returns a decoder bound to it. Probe failures
// mean the resource is unreadable, so they carry the decode error class.
func (e *Executor) Open(ctx context.Context, path string) (media.Decoder, media.Info, error) {
	info, err := e.Probe(ctx, path)
	if err != nil {
		return nil, media.Info{}, fmt.Errorf("probe %s: %v: %w", path, err, media.ErrDecode)
	}
	if info.Width <= 0 || info.Height <= 0 {
		return nil, media.Info{}, fmt.Errorf("probe %s: no video stream: %w", path, media.ErrDecode)
	}

	dec := &Decoder{
		exec:   e,
		path:   path,
		width:  info.Width,
		height: info.Height,
	}
	return dec, info, nil
}

// Decoder renders single frames from one video file.
type Decoder struct {
	exec   *Executor
	path   string
	width  int
	height int
}

// Render seeks to the given timestamp and decodes exactly one frame as an
// RGBA raster at source resolution.
func (d *Decoder) Render(ctx context.Context, timestamp float64) (*image.RGBA, error) {
	e := d.exec

	args := []string{"-hide_banner", "-loglevel", "error"}
	if e.threads > 0 {
		args = append(args, "-threads", fmt.Sprintf("%d", e.threads))
	}
	args = append(args,
		"-ss", timeutil.FormatSeconds(timestamp),
		"-i", d.path,
		"-frames:v", "1",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"pipe:1",
	)

	e.logger.Debug().
		Str("input", d.path).
		Float64("ts", timestamp).
		Msg("extracting frame")

	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("ffmpeg frame extract failed: %w: %s", err, stderr.String())
	}

	want := d.width * d.height * 4
	buf := stdout.Bytes()
	if len(buf) < want {
		return nil, fmt.Errorf("no frame decoded at %.3fs (got %d of %d bytes)", timestamp, len(buf), want)
	}

	img := &image.RGBA{
		Pix:    buf[:want],
		Stride: d.width * 4,
		Rect:   image.Rect(0, 0, d.width, d.height),
	}
	return img, nil
}
