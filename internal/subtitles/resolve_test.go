package subtitles

import "testing"

// TestResolveBoundaries checks inclusive range matching per position.
func TestResolveBoundaries(t *testing.T) {
	track := &Track{Cues: []Cue{{Start: 1000, End: 3000, Text: "Hello"}}}

	cases := []struct {
		name     string
		position int64
		want     string
	}{
		{"before", 500, ""},
		{"at start", 1000, "Hello"},
		{"inside", 2000, "Hello"},
		{"at end", 3000, "Hello"},
		{"after", 3001, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Resolve(track, tc.position); got != tc.want {
				t.Fatalf("Resolve(%d) = %q, want %q", tc.position, got, tc.want)
			}
		})
	}
}

// TestResolveZeroDurationCue includes cues with start == end at that instant.
func TestResolveZeroDurationCue(t *testing.T) {
	track := &Track{Cues: []Cue{{Start: 5000, End: 5000, Text: "Flash"}}}

	if got := Resolve(track, 5000); got != "Flash" {
		t.Fatalf("Resolve(5000) = %q, want Flash", got)
	}
	if got := Resolve(track, 4999); got != "" {
		t.Fatalf("Resolve(4999) = %q, want empty", got)
	}
}

// TestResolveConcatenatesOverlappingCues joins simultaneous cues in track order.
func TestResolveConcatenatesOverlappingCues(t *testing.T) {
	track := &Track{Cues: []Cue{
		{Start: 0, End: 4000, Text: "first"},
		{Start: 1000, End: 3000, Text: "second"},
	}}

	if got := Resolve(track, 2000); got != "first\nsecond" {
		t.Fatalf("Resolve(2000) = %q, want both cues newline-joined", got)
	}
}

// TestResolveAbsentTrack returns empty text for nil and empty tracks.
func TestResolveAbsentTrack(t *testing.T) {
	if got := Resolve(nil, 1000); got != "" {
		t.Fatalf("Resolve(nil) = %q, want empty", got)
	}
	if got := Resolve(&Track{}, 1000); got != "" {
		t.Fatalf("Resolve(empty) = %q, want empty", got)
	}
}

// TestClipForWindowClipsPartialOverlap rebases and clamps an overlapping cue.
// A cue entering the window late keeps only its overlapping portion; the
// rebased end is the cue's own remaining length, never the window edge.
func TestClipForWindowClipsPartialOverlap(t *testing.T) {
	track := &Track{Cues: []Cue{{Start: 60000, End: 70000, Text: "X"}}}

	clipped := ClipForWindow(track, 65000, 10000)
	if len(clipped.Cues) != 1 {
		t.Fatalf("cue count = %d, want 1", len(clipped.Cues))
	}
	cue := clipped.Cues[0]
	if cue.Start != 0 || cue.End != 5000 {
		t.Fatalf("clipped cue = [%d,%d], want [0,5000]", cue.Start, cue.End)
	}
	if cue.Text != "X" {
		t.Fatalf("clipped text = %q, want X", cue.Text)
	}

	// Source track must remain untouched.
	if track.Cues[0].Start != 60000 || track.Cues[0].End != 70000 {
		t.Fatalf("source cue mutated: %+v", track.Cues[0])
	}
}

// TestClipForWindowDropsOutsideCues removes cues fully outside the window.
func TestClipForWindowDropsOutsideCues(t *testing.T) {
	track := &Track{Cues: []Cue{
		{Start: 0, End: 1000, Text: "too early"},
		{Start: 12000, End: 14000, Text: "inside"},
		{Start: 30000, End: 32000, Text: "too late"},
	}}

	clipped := ClipForWindow(track, 10000, 10000)
	if len(clipped.Cues) != 1 {
		t.Fatalf("cue count = %d, want 1", len(clipped.Cues))
	}
	if clipped.Cues[0].Text != "inside" {
		t.Fatalf("kept cue = %q, want inside", clipped.Cues[0].Text)
	}
	if clipped.Cues[0].Start != 2000 || clipped.Cues[0].End != 4000 {
		t.Fatalf("kept cue timing = [%d,%d], want [2000,4000]", clipped.Cues[0].Start, clipped.Cues[0].End)
	}
}

// TestClipForWindowBounds keeps every output cue inside [0, duration].
func TestClipForWindowBounds(t *testing.T) {
	track := &Track{Cues: []Cue{
		{Start: 500, End: 90000, Text: "spans everything"},
	}}

	clipped := ClipForWindow(track, 1000, 5000)
	for _, cue := range clipped.Cues {
		if cue.Start < 0 || cue.End > 5000 || cue.Start > cue.End {
			t.Fatalf("cue out of bounds: %+v", cue)
		}
	}
	if len(clipped.Cues) != len(track.Cues) && len(clipped.Cues) > len(track.Cues) {
		t.Fatalf("output cue count %d exceeds input %d", len(clipped.Cues), len(track.Cues))
	}
}

// TestClipForWindowNilTrack passes through absent tracks.
func TestClipForWindowNilTrack(t *testing.T) {
	if got := ClipForWindow(nil, 0, 1000); got != nil {
		t.Fatalf("ClipForWindow(nil) = %+v, want nil", got)
	}
}
