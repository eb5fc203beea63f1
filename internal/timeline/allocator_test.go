package timeline

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/clipform/clipform/internal/media"
)

func TestAllocateExactSum(t *testing.T) {
	a := NewAllocator(zerolog.Nop())

	segs, err := a.Allocate(30, 5, nil)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	if len(segs) != 7 {
		t.Fatalf("segment count = %d, want 7", len(segs))
	}
	if got := Sum(segs); got != 30.0 {
		t.Errorf("sum = %v, want exactly 30.0", got)
	}

	// intro 2, five 5.2s items, outro absorbing the remainder
	if segs[0].Duration != 2 {
		t.Errorf("intro = %v, want 2", segs[0].Duration)
	}
	for i := 1; i <= 5; i++ {
		if segs[i].Duration != 5.2 {
			t.Errorf("item %d = %v, want 5.2", i, segs[i].Duration)
		}
	}
	if segs[6].Duration != 2 {
		t.Errorf("outro = %v, want 2", segs[6].Duration)
	}
}

func TestAllocateScenario(t *testing.T) {
	a := NewAllocator(zerolog.Nop())
	labels := []string{"Cafe A", "Park B", "Museum C", "Beach D"}

	segs, err := a.Allocate(20, 4, labels)
	if err != nil {
		t.Fatal(err)
	}

	want := []struct {
		kind     Kind
		label    string
		duration float64
	}{
		{KindIntro, "Intro", 2},
		{KindContent, "Cafe A", 4},
		{KindContent, "Park B", 4},
		{KindContent, "Museum C", 4},
		{KindContent, "Beach D", 4},
		{KindOutro, "Outro", 2},
	}

	if len(segs) != len(want) {
		t.Fatalf("segment count = %d, want %d", len(segs), len(want))
	}
	for i, w := range want {
		if segs[i].Kind != w.kind || segs[i].Label != w.label || segs[i].Duration != w.duration {
			t.Errorf("segment %d = {%s %q %v}, want {%s %q %v}",
				i, segs[i].Kind, segs[i].Label, segs[i].Duration, w.kind, w.label, w.duration)
		}
		if segs[i].Ordinal != i+1 {
			t.Errorf("segment %d ordinal = %d", i, segs[i].Ordinal)
		}
	}
	if got := Sum(segs); got != 20.0 {
		t.Errorf("sum = %v, want exactly 20.0", got)
	}

	// Content items carry numeric-prefixed overlay text.
	if segs[1].Text == nil || *segs[1].Text != "1. Cafe A" {
		t.Errorf("item text = %v, want \"1. Cafe A\"", segs[1].Text)
	}
	if segs[4].Text == nil || *segs[4].Text != "4. Beach D" {
		t.Errorf("item text = %v, want \"4. Beach D\"", segs[4].Text)
	}
}

func TestAllocateNoItems(t *testing.T) {
	a := NewAllocator(zerolog.Nop())

	segs, err := a.Allocate(10, 0, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(segs) != 2 {
		t.Fatalf("segment count = %d, want 2 (intro + outro)", len(segs))
	}
	if segs[0].Kind != KindIntro || segs[1].Kind != KindOutro {
		t.Errorf("kinds = %s, %s", segs[0].Kind, segs[1].Kind)
	}
	if got := Sum(segs); got != 10.0 {
		t.Errorf("sum = %v, want 10.0", got)
	}
}

func TestAllocatePlaceholderLabels(t *testing.T) {
	a := NewAllocator(zerolog.Nop())

	segs, err := a.Allocate(30, 3, []string{"Cafe A"})
	if err != nil {
		t.Fatal(err)
	}

	if segs[1].Label != "Cafe A" {
		t.Errorf("label 1 = %q", segs[1].Label)
	}
	if segs[2].Label != "Location 2" || segs[3].Label != "Location 3" {
		t.Errorf("placeholder labels = %q, %q", segs[2].Label, segs[3].Label)
	}
}

func TestAllocateShortVideoDrift(t *testing.T) {
	a := NewAllocator(zerolog.Nop())

	// 2-second video: one-second floors stack up past the total. The
	// drift is documented behavior, not rescaled away.
	segs, err := a.Allocate(2, 1, nil)
	if err != nil {
		t.Fatal(err)
	}

	sum := Sum(segs)
	if sum <= 2.0 {
		t.Errorf("sum = %v, expected bounded drift above the 2.0 total", sum)
	}
	if sum > 5.0 {
		t.Errorf("sum = %v, drift should stay bounded by the floors", sum)
	}
	for i, s := range segs {
		if s.Duration < 1 {
			t.Errorf("segment %d duration %v below one-second floor", i, s.Duration)
		}
	}
}

func TestAllocateInvalidDuration(t *testing.T) {
	a := NewAllocator(zerolog.Nop())
	for _, total := range []float64{0, -10} {
		if _, err := a.Allocate(total, 3, nil); !errors.Is(err, media.ErrComputation) {
			t.Errorf("Allocate(%v) err = %v, want ErrComputation", total, err)
		}
	}
}

func TestStyleMappingPurity(t *testing.T) {
	a := NewAllocator(zerolog.Nop())

	for _, n := range []int{0, 1, 5, 17} {
		segs, err := a.Allocate(120, n, nil)
		if err != nil {
			t.Fatalf("Allocate(n=%d): %v", n, err)
		}

		if segs[0].Style != StyleHook {
			t.Errorf("n=%d: first segment style = %s, want hook", n, segs[0].Style)
		}
		if last := segs[len(segs)-1]; last.Style != StyleCTA {
			t.Errorf("n=%d: last segment style = %s, want cta", n, last.Style)
		}
		for i := 1; i < len(segs)-1; i++ {
			if segs[i].Style != StyleNumbered {
				t.Errorf("n=%d: segment %d style = %s, want numbered", n, i, segs[i].Style)
			}
		}
	}
}

func TestStyleCatalogResolution(t *testing.T) {
	cat := DefaultCatalog()

	if got := cat.For(StyleHook); got.Position != "center" || got.EmojiPosition != "both" {
		t.Errorf("hook style = %+v", got)
	}
	if got := cat.For(StyleNumbered); got.Position != "top" || got.EmojiPosition != "leading" {
		t.Errorf("numbered style = %+v", got)
	}
	if got := cat.For(StyleCTA); got.Position != "center" || got.EmojiPosition != "trailing" {
		t.Errorf("cta style = %+v", got)
	}
}
