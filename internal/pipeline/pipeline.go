package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/clipform/clipform/internal/assemble"
	"github.com/clipform/clipform/internal/config"
	"github.com/clipform/clipform/internal/ffmpeg"
	"github.com/clipform/clipform/internal/media"
	"github.com/clipform/clipform/internal/sampler"
	"github.com/clipform/clipform/internal/scenes"
	"github.com/clipform/clipform/internal/template"
	"github.com/clipform/clipform/internal/timeline"
)

// Pipeline orchestrates the template extraction workflow: probe, sample,
// detect, group, assemble, persist. Runs share no mutable state; every
// Analyze call builds its own frame stream and detection run.
type Pipeline struct {
	logger    zerolog.Logger
	cfg       *config.Config
	opener    media.Opener
	store     *template.Store
	detector  *scenes.Detector
	allocator *timeline.Allocator
	assembler *assemble.Assembler
}

// New creates a new pipeline instance from application config.
func New(logger zerolog.Logger, cfg *config.Config) (*Pipeline, error) {
	exec, err := ffmpeg.New(logger, cfg.FFmpeg.BinaryPath, cfg.FFmpeg.ProbePath, cfg.FFmpeg.Threads)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ffmpeg: %w", err)
	}

	store, err := template.NewStore(logger, cfg.TemplatesDir())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize template store: %w", err)
	}

	return &Pipeline{
		logger:    logger.With().Str("component", "pipeline").Logger(),
		cfg:       cfg,
		opener:    exec,
		store:     store,
		detector:  scenes.New(logger, detectionConfig(cfg)),
		allocator: timeline.NewAllocator(logger),
		assembler: assemble.New(logger, styleCatalog(cfg.Styles),
			cfg.Styles.HookText, cfg.Styles.CTAText),
	}, nil
}

// Store exposes the template store for listing commands.
func (p *Pipeline) Store() *template.Store {
	return p.store
}

// AnalyzeOptions configures a single extraction run.
type AnalyzeOptions struct {
	// Labels are the per-item texts from an external source; missing
	// entries fall back to placeholders.
	Labels []string
	// Items is the item count; zero means len(Labels).
	Items int
	// Duration overrides the probed duration when positive, and enables
	// the count-based fallback when the source cannot be opened at all.
	Duration float64
	// Budget bounds the detection wall clock; zero uses the configured
	// default, negative disables it.
	Budget time.Duration
	// Progress observes detection progress. It never influences output.
	Progress scenes.ProgressFunc
	// Media maps group ids to externally supplied media references.
	Media map[int]string
	// Name labels the produced template.
	Name string
	// Save persists the template to the store.
	Save bool
}

// Analyze runs scene detection on the input video and assembles a
// template. When detection fails recoverably (undecodable source, empty
// result, blown budget, too few scenes for the labels) and a duration is
// known, it falls back to count-based allocation so a usable timeline is
// still produced.
func (p *Pipeline) Analyze(ctx context.Context, input string, opts AnalyzeOptions) (*template.Template, error) {
	if input == "" {
		return nil, fmt.Errorf("input path cannot be empty")
	}

	items := opts.Items
	if items == 0 {
		items = len(opts.Labels)
	}

	p.logger.Info().
		Str("input", input).
		Int("items", items).
		Msg("starting analysis")

	tl, total, err := p.extract(ctx, input, items, opts)
	if err != nil {
		tl, err = p.fallback(total, items, opts.Labels, err)
		if err != nil {
			return nil, err
		}
	}

	tpl := &template.Template{
		Name:     opts.Name,
		Source:   tl.Source,
		Duration: tl.Duration,
		Timeline: tl,
	}
	if opts.Save {
		if err := p.store.Save(tpl); err != nil {
			return nil, err
		}
	}

	p.logger.Info().
		Str("source", tpl.Source).
		Int("clips", len(tl.Clips)).
		Int("groups", len(tl.Groups)).
		Float64("duration", tpl.Duration).
		Msg("analysis complete")
	return tpl, nil
}

// extract runs the visual path. It returns the resolved duration even on
// failure so the fallback can reuse it.
func (p *Pipeline) extract(ctx context.Context, input string, items int, opts AnalyzeOptions) (*assemble.Timeline, float64, error) {
	dec, info, err := p.opener.Open(ctx, input)
	if err != nil {
		return nil, opts.Duration, err
	}

	total := info.Duration
	if opts.Duration > 0 {
		total = opts.Duration
	}
	if total <= 0 {
		return nil, 0, fmt.Errorf("video duration %.2fs: %w", total, media.ErrComputation)
	}

	runCtx := ctx
	if budget := p.budget(opts); budget > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, budget)
		defer cancel()
	}

	smp := sampler.New(p.logger, dec, p.samplingConfig())
	stream, err := smp.Stream(total)
	if err != nil {
		return nil, total, err
	}

	scs, err := p.detector.Detect(runCtx, stream, total, opts.Progress)
	if err != nil {
		// A blown budget is its own error class, distinct from any other
		// detection outcome. The caller's own cancellation passes through.
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			err = fmt.Errorf("detection stopped after %d scenes: %w", len(scs), media.ErrExtractionTimeout)
		}
		return nil, total, err
	}

	tl, err := p.assembler.FromScenes(scs, total, itemLabels(items, opts.Labels), opts.Media)
	if err != nil {
		return nil, total, err
	}
	return tl, total, nil
}

// fallback produces the count-based timeline when the visual path failed
// recoverably and a duration is known.
func (p *Pipeline) fallback(total float64, items int, labels []string, cause error) (*assemble.Timeline, error) {
	recoverable := errors.Is(cause, media.ErrDecode) ||
		errors.Is(cause, media.ErrEmptyResult) ||
		errors.Is(cause, media.ErrExtractionTimeout) ||
		errors.Is(cause, assemble.ErrTooFewScenes)
	if !recoverable {
		return nil, cause
	}
	if total <= 0 {
		return nil, fmt.Errorf("no duration available for fallback: %w", cause)
	}

	p.logger.Warn().
		Err(cause).
		Float64("duration", total).
		Int("items", items).
		Msg("detection unavailable, using count-based allocation")

	segs, err := p.allocator.Allocate(total, items, labels)
	if err != nil {
		return nil, err
	}
	return p.assembler.FromSegments(segs, nil)
}

// Allocate builds a template directly from a duration and item count,
// without touching any video.
func (p *Pipeline) Allocate(total float64, items int, labels []string, name string, save bool) (*template.Template, error) {
	segs, err := p.allocator.Allocate(total, items, labels)
	if err != nil {
		return nil, err
	}

	tl, err := p.assembler.FromSegments(segs, nil)
	if err != nil {
		return nil, err
	}

	tpl := &template.Template{
		Name:     name,
		Source:   tl.Source,
		Duration: tl.Duration,
		Timeline: tl,
	}
	if save {
		if err := p.store.Save(tpl); err != nil {
			return nil, err
		}
	}
	return tpl, nil
}

func (p *Pipeline) budget(opts AnalyzeOptions) time.Duration {
	if opts.Budget != 0 {
		if opts.Budget < 0 {
			return 0
		}
		return opts.Budget
	}
	return time.Duration(p.cfg.Detection.BudgetSec * float64(time.Second))
}

func (p *Pipeline) samplingConfig() sampler.Config {
	s := p.cfg.Sampling
	cfg := sampler.DefaultConfig()
	if s.IntervalSec > 0 {
		cfg.Interval = s.IntervalSec
	}
	if s.MinSamples > 0 {
		cfg.MinSamples = s.MinSamples
	}
	if s.MaxSamples > 0 {
		cfg.MaxSamples = s.MaxSamples
	}
	cfg.TargetSamples = s.TargetSamples
	if s.RasterMaxEdge > 0 {
		cfg.RasterMaxEdge = s.RasterMaxEdge
	}
	if s.ThumbMaxEdge > 0 {
		cfg.ThumbMaxEdge = s.ThumbMaxEdge
	}
	if s.SeekTimeoutSec > 0 {
		cfg.SeekTimeout = time.Duration(s.SeekTimeoutSec * float64(time.Second))
	}
	if s.JPEGQuality > 0 {
		cfg.JPEGQuality = s.JPEGQuality
	}
	return cfg
}

func detectionConfig(cfg *config.Config) scenes.Config {
	d := scenes.DefaultConfig()
	if cfg.Detection.Threshold > 0 {
		d.Threshold = cfg.Detection.Threshold
	}
	if cfg.Detection.MinSceneSec > 0 {
		d.MinSceneDuration = cfg.Detection.MinSceneSec
	}
	return d
}

// itemLabels pads the label list with placeholders up to the item count so
// scene grouping and count-based allocation name groups identically.
func itemLabels(items int, labels []string) []string {
	if items <= len(labels) {
		return labels
	}
	out := make([]string, items)
	copy(out, labels)
	for i := len(labels); i < items; i++ {
		out[i] = fmt.Sprintf("Location %d", i+1)
	}
	return out
}

func styleCatalog(s config.StylesConfig) timeline.StyleCatalog {
	cat := timeline.DefaultCatalog()
	apply := func(dst *timeline.TextStyle, src config.StyleConfig) {
		if s.FontFamily != "" {
			dst.FontFamily = s.FontFamily
		}
		if s.FontColor != "" {
			dst.Color = s.FontColor
		}
		if src.FontSize > 0 {
			dst.FontSize = src.FontSize
		}
		if src.FontWeight != "" {
			dst.FontWeight = src.FontWeight
		}
		if src.Emoji != "" {
			dst.Emoji = src.Emoji
		}
		if src.EmojiPosition != "" {
			dst.EmojiPosition = src.EmojiPosition
		}
		if src.Position != "" {
			dst.Position = src.Position
		}
		if src.Alignment != "" {
			dst.Alignment = src.Alignment
		}
	}
	apply(&cat.Hook, s.Hook)
	apply(&cat.Numbered, s.Numbered)
	apply(&cat.CTA, s.CTA)
	return cat
}
