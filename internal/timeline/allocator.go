package timeline

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/clipform/clipform/internal/media"
	"github.com/clipform/clipform/pkg/timeutil"
)

// Kind classifies a timeline segment.
type Kind string

const (
	KindIntro   Kind = "intro"
	KindContent Kind = "content"
	KindOutro   Kind = "outro"
)

// Segment is one named slot in the allocated time partition.
type Segment struct {
	Ordinal  int        `json:"ordinal"`
	Kind     Kind       `json:"kind"`
	Label    string     `json:"label"`
	Duration float64    `json:"duration"`
	Text     *string    `json:"text,omitempty"`
	Style    StyleClass `json:"style"`
}

// Allocator converts a total duration and an item count into a named
// intro/content/outro partition. It is the fallback path when visual
// detection is unavailable, and the label-layout path when boundaries
// come from an external item source.
type Allocator struct {
	logger zerolog.Logger
}

// NewAllocator creates an allocator.
func NewAllocator(logger zerolog.Logger) *Allocator {
	return &Allocator{
		logger: logger.With().Str("component", "allocator").Logger(),
	}
}

// Allocate partitions total seconds into intro, n content items, and an
// outro. Missing labels fall back to "Location i" placeholders. The final
// outro absorbs all rounding drift so the summed durations track the total
// as closely as the one-second floors allow.
func (a *Allocator) Allocate(total float64, n int, labels []string) ([]Segment, error) {
	if total <= 0 {
		return nil, fmt.Errorf("allocate %.2fs: %w", total, media.ErrComputation)
	}
	if n < 0 {
		n = 0
	}

	intro := math.Round(math.Min(2, 0.1*total))
	if intro < 1 {
		intro = 1
	}
	outro := math.Min(2, 0.1*total)
	content := total - intro - outro
	perItem := content / math.Max(float64(n), 1)

	segCount := n + 2
	segments := make([]Segment, 0, segCount)

	segments = append(segments, Segment{
		Ordinal:  1,
		Kind:     KindIntro,
		Label:    "Intro",
		Duration: intro,
		Style:    ClassFor(0, segCount),
	})
	cursor := intro

	for i := 1; i <= n; i++ {
		d := timeutil.ClampSegment(perItem)
		label := fmt.Sprintf("Location %d", i)
		if i-1 < len(labels) && labels[i-1] != "" {
			label = labels[i-1]
		}
		text := fmt.Sprintf("%d. %s", i, label)
		segments = append(segments, Segment{
			Ordinal:  i + 1,
			Kind:     KindContent,
			Label:    label,
			Duration: d,
			Text:     &text,
			Style:    ClassFor(i, segCount),
		})
		cursor = timeutil.RoundTenth(cursor + d)
	}

	// The outro is not perItem-derived: it takes the true remainder so the
	// partition sums back to the total.
	outroFinal := math.Max(1, timeutil.RoundTenth(total-cursor))
	segments = append(segments, Segment{
		Ordinal:  segCount,
		Kind:     KindOutro,
		Label:    "Outro",
		Duration: outroFinal,
		Style:    ClassFor(segCount-1, segCount),
	})

	if sum := Sum(segments); sum > total {
		// Stacked one-second floors on very short videos push the sum past
		// the total. Documented, bounded drift; never silently rescaled.
		a.logger.Warn().
			Float64("total", total).
			Float64("allocated", sum).
			Msg("allocation exceeds duration due to minimum segment floors")
	}

	a.logger.Debug().
		Float64("total", total).
		Int("items", n).
		Float64("per_item", perItem).
		Msg("timeline allocated")

	return segments, nil
}

// Sum returns the summed segment durations rounded to one decimal.
func Sum(segments []Segment) float64 {
	var sum float64
	for _, s := range segments {
		sum = timeutil.RoundTenth(sum + s.Duration)
	}
	return sum
}
