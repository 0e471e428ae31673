package export

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"dual-subtitle-burner/internal/domain"
	"dual-subtitle-burner/internal/subtitles"
)

// Window is an optional clip of the source video, in seconds.
type Window struct {
	StartSeconds    float64
	DurationSeconds float64
}

// Job describes one export invocation. It is consumed by Build and
// discarded once the supervisor owns the running process.
type Job struct {
	VideoPath  string
	Track1     *subtitles.Track
	Track2     *subtitles.Track
	Style1     domain.Style
	Style2     domain.Style
	Clip       *Window
	OutputPath string
}

// Command is a fully resolved encoder invocation.
type Command struct {
	Name string
	Args []string
}

// String renders the command for logs.
func (c Command) String() string {
	return c.Name + " " + strings.Join(c.Args, " ")
}

// ValidationError rejects an export request before any process starts.
type ValidationError struct {
	Message string
}

// Error returns the user-facing validation message.
func (e *ValidationError) Error() string {
	return e.Message
}

// Build translates an export job into an ffmpeg invocation plus the list
// of temporary subtitle files it wrote. The caller must delete every
// returned temp file after the process exits, on every outcome. On error
// no temp files survive.
func Build(job Job, encoder HardwareEncoder) (Command, []string, error) {
	if job.Track1 == nil && job.Track2 == nil {
		return Command{}, nil, &ValidationError{Message: "no subtitles to export"}
	}

	var tempFiles []string
	var filters []string
	cleanup := func() {
		for _, path := range tempFiles {
			os.Remove(path)
		}
	}

	type slot struct {
		track *subtitles.Track
		style domain.Style
		name  string
	}
	for _, s := range []slot{
		{job.Track1, job.Style1, "Sub1"},
		{job.Track2, job.Style2, "Sub2"},
	} {
		if s.track == nil {
			continue
		}
		path, err := subtitles.WriteTempASS(s.track, s.style, s.name)
		if err != nil {
			cleanup()
			return Command{}, nil, fmt.Errorf("prepare %s: %w", s.name, err)
		}
		tempFiles = append(tempFiles, path)
		filters = append(filters, "ass="+escapeFilterPath(path))
	}

	args := []string{"-hide_banner", "-nostdin"}
	args = append(args, encoder.accelArgs()...)
	// Input-side seek: frame timestamps restart at zero, so they line up
	// with cue times that were rebased onto the clip window.
	if job.Clip != nil {
		args = append(args,
			"-ss", formatSeconds(job.Clip.StartSeconds),
			"-t", formatSeconds(job.Clip.DurationSeconds),
		)
	}
	args = append(args, "-i", job.VideoPath)
	args = append(args, encoder.codecArgs()...)
	args = append(args, "-vf", strings.Join(filters, ","))
	args = append(args, "-c:a", "copy")
	args = append(args, "-y", job.OutputPath)

	return Command{Name: "ffmpeg", Args: args}, tempFiles, nil
}

// formatSeconds renders a seconds value without exponent notation.
func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', -1, 64)
}

// escapeFilterPath quotes characters that are structural inside an ffmpeg
// filter graph description, so temp paths survive the -vf argument.
func escapeFilterPath(path string) string {
	return strings.NewReplacer(
		`\`, `/`,
		`:`, `\:`,
		`,`, `\,`,
		`'`, `\'`,
		`[`, `\[`,
		`]`, `\]`,
	).Replace(path)
}
