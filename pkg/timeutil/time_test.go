package timeutil

import (
	"math"
	"testing"
)

func TestRoundTenth(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{5.24, 5.2},
		{5.25, 5.3},
		{0.04, 0.0},
		{2.0000000004, 2.0},
		{-1.26, -1.3},
	}

	for _, c := range cases {
		if got := RoundTenth(c.in); got != c.want {
			t.Errorf("RoundTenth(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestClampSegment(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{5.26, 5.3},
		{1.0, 1.0},
		{0.4, 1.0},
		{0.96, 1.0},
		{-2.5, 1.0},
	}

	for _, c := range cases {
		if got := ClampSegment(c.in); got != c.want {
			t.Errorf("ClampSegment(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestFormatSeconds(t *testing.T) {
	if got := FormatSeconds(3725.5); got != "01:02:05.500" {
		t.Errorf("FormatSeconds(3725.5) = %q", got)
	}
	if got := FormatSeconds(0); got != "00:00:00.000" {
		t.Errorf("FormatSeconds(0) = %q", got)
	}
}

func TestParseTimestamp(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"45.5", 45.5},
		{"01:30", 90},
		{"01:02:05.5", 3725.5},
		{" 12 ", 12},
	}

	for _, c := range cases {
		got, err := ParseTimestamp(c.in)
		if err != nil {
			t.Fatalf("ParseTimestamp(%q): %v", c.in, err)
		}
		if math.Abs(got-c.want) > 1e-9 {
			t.Errorf("ParseTimestamp(%q) = %v, want %v", c.in, got, c.want)
		}
	}

	if _, err := ParseTimestamp("1:2:3:4"); err == nil {
		t.Error("expected error for malformed timestamp")
	}
	if _, err := ParseTimestamp("abc"); err == nil {
		t.Error("expected error for non-numeric timestamp")
	}
}

func TestParseFrameRate(t *testing.T) {
	if got := ParseFrameRate("30/1"); got != 30 {
		t.Errorf("ParseFrameRate(30/1) = %v", got)
	}
	if got := ParseFrameRate("30000/1001"); math.Abs(got-29.97) > 0.01 {
		t.Errorf("ParseFrameRate(30000/1001) = %v", got)
	}
	if got := ParseFrameRate("bogus"); got != 0 {
		t.Errorf("ParseFrameRate(bogus) = %v", got)
	}
	if got := ParseFrameRate("1/0"); got != 0 {
		t.Errorf("ParseFrameRate(1/0) = %v", got)
	}
}
