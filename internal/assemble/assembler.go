package assemble

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/clipform/clipform/internal/media"
	"github.com/clipform/clipform/internal/scenes"
	"github.com/clipform/clipform/internal/timeline"
	"github.com/clipform/clipform/pkg/timeutil"
)

// ErrTooFewScenes means detection produced fewer scenes than the label
// list needs (intro + items + outro). Callers fall back to the
// count-based allocator.
var ErrTooFewScenes = errors.New("too few scenes for label grouping")

// Clip binds one segment or scene to its slot on the final track and to
// optional externally supplied media.
type Clip struct {
	Ordinal int     `json:"ordinal"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	GroupID int     `json:"groupId"`
	Media   string  `json:"media,omitempty"`
}

// TextOverlay is the single overlay of a location group, spanning the
// group's full clip range.
type TextOverlay struct {
	GroupID int                `json:"groupId"`
	Text    string             `json:"text"`
	Style   timeline.TextStyle `json:"style"`
	Start   float64            `json:"start"`
	End     float64            `json:"end"`
}

// SceneInfo is a scene enriched with its group's overlay text and style.
// Only the first scene of a group carries the overlay; the rest are nil.
type SceneInfo struct {
	scenes.Scene
	TextOverlay *string             `json:"textOverlay"`
	TextStyle   *timeline.TextStyle `json:"textStyle"`
}

// LocationGroup is a named cluster of contiguous scenes sharing one
// semantic label and one overlay window. Location id 0 is the intro.
type LocationGroup struct {
	LocationID    int         `json:"locationId"`
	LocationName  string      `json:"locationName"`
	Scenes        []SceneInfo `json:"scenes"`
	TotalDuration float64     `json:"totalDuration"`
}

// Timeline is the assembled, initially authoritative edit timeline.
type Timeline struct {
	Duration float64         `json:"duration"`
	Source   string          `json:"source"`
	Clips    []Clip          `json:"clips"`
	Groups   []LocationGroup `json:"groups"`
	Overlays []TextOverlay   `json:"overlays"`
}

// Assembler merges segments or scenes with media references into the
// final clip track and per-group overlays.
type Assembler struct {
	logger   zerolog.Logger
	styles   timeline.StyleCatalog
	hookText string
	ctaText  string
}

// New creates an assembler. hookText and ctaText fill the intro and outro
// overlays when no external text supplies them.
func New(logger zerolog.Logger, styles timeline.StyleCatalog, hookText, ctaText string) *Assembler {
	if hookText == "" {
		hookText = "Watch till the end"
	}
	if ctaText == "" {
		ctaText = "Save this for later"
	}
	return &Assembler{
		logger:   logger.With().Str("component", "assembler").Logger(),
		styles:   styles,
		hookText: hookText,
		ctaText:  ctaText,
	}
}

// FromSegments lays an allocated partition onto the clip track: one clip
// and one single-member group per segment, clips contiguous from zero.
func (a *Assembler) FromSegments(segs []timeline.Segment, mediaRefs map[int]string) (*Timeline, error) {
	if len(segs) == 0 {
		return nil, fmt.Errorf("no segments to assemble: %w", media.ErrEmptyResult)
	}

	contentCount := 0
	for _, s := range segs {
		if s.Kind == timeline.KindContent {
			contentCount++
		}
	}

	tl := &Timeline{Source: "count"}
	cursor := 0.0
	contentSeen := 0

	for i, seg := range segs {
		groupID := a.segmentGroupID(seg, contentCount, &contentSeen)
		start := cursor
		end := timeutil.RoundTenth(cursor + seg.Duration)
		cursor = end

		tl.Clips = append(tl.Clips, Clip{
			Ordinal: i + 1,
			Start:   start,
			End:     end,
			GroupID: groupID,
			Media:   mediaRefs[groupID],
		})

		text := a.overlayText(seg)
		style := a.styles.For(seg.Style)

		sc := scenes.Scene{
			ID:          i + 1,
			StartTime:   start,
			EndTime:     end,
			Duration:    timeutil.RoundTenth(end - start),
			Description: seg.Label,
		}
		tl.Groups = append(tl.Groups, LocationGroup{
			LocationID:    groupID,
			LocationName:  seg.Label,
			Scenes:        []SceneInfo{{Scene: sc, TextOverlay: &text, TextStyle: &style}},
			TotalDuration: sc.Duration,
		})
		tl.Overlays = append(tl.Overlays, TextOverlay{
			GroupID: groupID,
			Text:    text,
			Style:   style,
			Start:   start,
			End:     end,
		})
	}

	tl.Duration = cursor
	a.logger.Debug().
		Int("clips", len(tl.Clips)).
		Int("groups", len(tl.Groups)).
		Msg("assembled timeline from segments")
	return tl, nil
}

func (a *Assembler) segmentGroupID(seg timeline.Segment, contentCount int, contentSeen *int) int {
	switch seg.Kind {
	case timeline.KindIntro:
		return 0
	case timeline.KindOutro:
		return contentCount + 1
	default:
		*contentSeen++
		return *contentSeen
	}
}

func (a *Assembler) overlayText(seg timeline.Segment) string {
	if seg.Text != nil && *seg.Text != "" {
		return *seg.Text
	}
	switch seg.Kind {
	case timeline.KindIntro:
		return a.hookText
	case timeline.KindOutro:
		return a.ctaText
	default:
		return seg.Label
	}
}

// FromScenes clusters a detected scene partition into intro, item, and
// outro groups. The first scene opens the video, the last closes it, and
// the interior scenes split into contiguous near-equal runs, one per
// label.
func (a *Assembler) FromScenes(scs []scenes.Scene, total float64, labels []string, mediaRefs map[int]string) (*Timeline, error) {
	if len(scs) == 0 {
		return nil, fmt.Errorf("no scenes to assemble: %w", media.ErrEmptyResult)
	}

	n := len(labels)
	if len(scs) < n+2 {
		return nil, fmt.Errorf("%d scenes for %d labels: %w", len(scs), n, ErrTooFewScenes)
	}

	groupOf := assignGroups(len(scs), n)

	tl := &Timeline{Source: "scenes", Duration: total}
	groupCount := n + 2
	members := make([][]scenes.Scene, groupCount)

	for i, sc := range scs {
		g := groupOf[i]
		members[g] = append(members[g], sc)
		tl.Clips = append(tl.Clips, Clip{
			Ordinal: i + 1,
			Start:   sc.StartTime,
			End:     sc.EndTime,
			GroupID: g,
			Media:   mediaRefs[g],
		})
	}

	for g := 0; g < groupCount; g++ {
		if len(members[g]) == 0 {
			continue
		}

		name, text, style := a.groupPresentation(g, groupCount, labels)

		infos := make([]SceneInfo, len(members[g]))
		for i, sc := range members[g] {
			infos[i] = SceneInfo{Scene: sc}
			if i == 0 {
				t := text
				s := style
				infos[i].TextOverlay = &t
				infos[i].TextStyle = &s
			}
		}

		first := members[g][0]
		last := members[g][len(members[g])-1]
		tl.Groups = append(tl.Groups, LocationGroup{
			LocationID:    g,
			LocationName:  name,
			Scenes:        infos,
			TotalDuration: timeutil.RoundTenth(last.EndTime - first.StartTime),
		})
		tl.Overlays = append(tl.Overlays, TextOverlay{
			GroupID: g,
			Text:    text,
			Style:   style,
			Start:   first.StartTime,
			End:     last.EndTime,
		})
	}

	a.logger.Debug().
		Int("scenes", len(scs)).
		Int("groups", len(tl.Groups)).
		Msg("assembled timeline from scenes")
	return tl, nil
}

func (a *Assembler) groupPresentation(g, groupCount int, labels []string) (name, text string, style timeline.TextStyle) {
	switch {
	case g == 0:
		return "Intro", a.hookText, a.styles.For(timeline.StyleHook)
	case g == groupCount-1:
		return "Outro", a.ctaText, a.styles.For(timeline.StyleCTA)
	default:
		name = labels[g-1]
		return name, fmt.Sprintf("%d. %s", g, name), a.styles.For(timeline.StyleNumbered)
	}
}

// assignGroups maps scene index to group id: scene 0 is the intro, the
// last scene the outro, and the interior splits into n contiguous runs
// with earlier runs taking the extras.
func assignGroups(sceneCount, n int) []int {
	groupOf := make([]int, sceneCount)
	groupOf[0] = 0
	groupOf[sceneCount-1] = n + 1

	interior := sceneCount - 2
	if n == 0 {
		// No labeled items: interior scenes trail into the outro group.
		for i := 1; i < sceneCount-1; i++ {
			groupOf[i] = 1
		}
		return groupOf
	}

	base := interior / n
	extra := interior % n
	idx := 1
	for g := 1; g <= n; g++ {
		size := base
		if g <= extra {
			size++
		}
		for k := 0; k < size; k++ {
			groupOf[idx] = g
			idx++
		}
	}
	return groupOf
}
