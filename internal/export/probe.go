package export

import (
	"context"
	"strconv"
	"strings"
)

// ProbeDuration asks ffprobe for the source duration in seconds. Any
// failure (missing binary, non-numeric output) yields 0.0, which the
// supervisor treats as unknown duration and reports no percentages.
func ProbeDuration(ctx context.Context, videoPath string) float64 {
	return probeDuration(ctx, &execRunner{}, videoPath)
}

func probeDuration(ctx context.Context, runner commandRunner, videoPath string) float64 {
	result, err := runner.Run(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		videoPath,
	)
	if err != nil {
		return 0.0
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(result.Stdout), 64)
	if err != nil || seconds < 0 {
		return 0.0
	}
	return seconds
}
