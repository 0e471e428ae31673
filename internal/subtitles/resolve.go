package subtitles

import "strings"

// Resolve returns the concatenated text of every cue active at the given
// playback position, one cue per line, in track order. An absent track or
// a position outside every cue yields the empty string.
//
// Boundaries are inclusive on both ends, so a zero-duration cue is visible
// at exactly its start position. The function never mutates the track; it
// runs on every playback position update.
func Resolve(track *Track, positionMs int64) string {
	if track == nil || len(track.Cues) == 0 {
		return ""
	}

	var b strings.Builder
	for _, cue := range track.Cues {
		if cue.Start <= positionMs && positionMs <= cue.End {
			b.WriteString(cue.Text)
			b.WriteByte('\n')
		}
	}
	return strings.TrimSpace(b.String())
}

// ClipForWindow rebases a track onto the clip window [startMs, startMs+durationMs),
// for preview exports. Cues fully outside the window are dropped; cues
// partially overlapping are clipped to the window edges. Every returned cue
// lies within [0, durationMs]. The input track is left untouched.
func ClipForWindow(track *Track, startMs, durationMs int64) *Track {
	if track == nil {
		return nil
	}

	endMs := startMs + durationMs
	clipped := &Track{Format: track.Format, Language: track.Language}
	for _, cue := range track.Cues {
		if cue.End <= startMs || cue.Start >= endMs {
			continue
		}
		clipped.Cues = append(clipped.Cues, Cue{
			Start: max64(0, cue.Start-startMs),
			End:   min64(durationMs, cue.End-startMs),
			Text:  cue.Text,
		})
	}
	return clipped
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
