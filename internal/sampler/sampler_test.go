package sampler

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/clipform/clipform/internal/media"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.SeekTimeout = 50 * time.Millisecond
	return cfg
}

func solidRaster(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// fakeDecoder returns solid-color rasters and fails selected call indices.
type fakeDecoder struct {
	width  int
	height int
	fail   map[int]bool
	calls  int
}

func (d *fakeDecoder) Render(ctx context.Context, ts float64) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	idx := d.calls
	d.calls++
	if d.fail[idx] {
		return nil, fmt.Errorf("decode failure at call %d", idx)
	}
	w, h := d.width, d.height
	if w == 0 {
		w, h = 64, 64
	}
	return solidRaster(w, h, color.RGBA{R: 128, G: 128, B: 128, A: 255}), nil
}

func TestPlanTimestampsCadence(t *testing.T) {
	cases := []struct {
		total     float64
		wantCount int
	}{
		{5, 10},   // clamped up
		{20, 20},  // 1/s cadence
		{120, 30}, // clamped down
	}

	for _, c := range cases {
		plan, err := PlanTimestamps(c.total, testConfig())
		if err != nil {
			t.Fatalf("PlanTimestamps(%v): %v", c.total, err)
		}
		if len(plan) != c.wantCount {
			t.Errorf("PlanTimestamps(%v) count = %d, want %d", c.total, len(plan), c.wantCount)
		}
		for i := 1; i < len(plan); i++ {
			if plan[i] <= plan[i-1] {
				t.Fatalf("plan not strictly increasing at %d: %v <= %v", i, plan[i], plan[i-1])
			}
		}
		if plan[0] <= 0 || plan[len(plan)-1] >= c.total {
			t.Errorf("plan outside (0, total): first=%v last=%v", plan[0], plan[len(plan)-1])
		}
	}
}

func TestPlanTimestampsEdgeSamples(t *testing.T) {
	plan, err := PlanTimestamps(20, testConfig())
	if err != nil {
		t.Fatal(err)
	}

	if plan[0] != 0.1 {
		t.Errorf("very-early sample = %v, want 0.1", plan[0])
	}
	if got := plan[len(plan)-1]; got != 19.75 {
		t.Errorf("near-final sample = %v, want 19.75", got)
	}
}

func TestPlanTimestampsExplicitCount(t *testing.T) {
	cfg := testConfig()
	cfg.TargetSamples = 4

	plan, err := PlanTimestamps(40, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(plan) != 4 {
		t.Errorf("explicit count = %d, want 4", len(plan))
	}
}

func TestPlanTimestampsInvalidDuration(t *testing.T) {
	for _, total := range []float64{0, -3} {
		if _, err := PlanTimestamps(total, testConfig()); !errors.Is(err, media.ErrComputation) {
			t.Errorf("PlanTimestamps(%v) error = %v, want ErrComputation", total, err)
		}
	}
}

func TestStreamSkipsFailedFrames(t *testing.T) {
	dec := &fakeDecoder{fail: map[int]bool{3: true, 7: true}}
	s := New(zerolog.Nop(), dec, testConfig())

	stream, err := s.Stream(15)
	if err != nil {
		t.Fatal(err)
	}

	var frames []media.Frame
	for {
		frame, err := stream.Next(context.Background())
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		frames = append(frames, frame)
	}

	if want := stream.Planned() - 2; len(frames) != want {
		t.Errorf("usable frames = %d, want %d", len(frames), want)
	}
	for i := 1; i < len(frames); i++ {
		if frames[i].Timestamp <= frames[i-1].Timestamp {
			t.Fatalf("frames out of order at %d", i)
		}
	}
}

func TestStreamFirstFrameFailureIsFatal(t *testing.T) {
	dec := &fakeDecoder{fail: map[int]bool{0: true}}
	s := New(zerolog.Nop(), dec, testConfig())

	stream, err := s.Stream(15)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := stream.Next(context.Background()); !errors.Is(err, media.ErrDecode) {
		t.Errorf("first-frame failure = %v, want ErrDecode", err)
	}
}

func TestStreamCapsRaster(t *testing.T) {
	dec := &fakeDecoder{width: 1080, height: 1920}
	s := New(zerolog.Nop(), dec, testConfig())

	stream, err := s.Stream(15)
	if err != nil {
		t.Fatal(err)
	}

	frame, err := stream.Next(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	b := frame.Raster.Bounds()
	if b.Dy() != 720 {
		t.Errorf("capped height = %d, want 720", b.Dy())
	}
	if b.Dx() > 720 {
		t.Errorf("capped width = %d, want <= 720", b.Dx())
	}
	if len(frame.Thumbnail) == 0 {
		t.Error("thumbnail missing")
	}
}

func TestStreamCancellation(t *testing.T) {
	dec := &fakeDecoder{}
	s := New(zerolog.Nop(), dec, testConfig())

	stream, err := s.Stream(15)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if _, err := stream.Next(ctx); err != nil {
		t.Fatalf("Next before cancel: %v", err)
	}

	cancel()
	if _, err := stream.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Next after cancel = %v, want context.Canceled", err)
	}
}
