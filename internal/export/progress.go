package export

import (
	"strconv"
	"strings"
)

// progressParser extracts elapsed encode times from ffmpeg's diagnostic
// stream. The stream arrives in arbitrary chunks, so the parser carries
// any partial trailing line between Feed calls. ffmpeg terminates status
// lines with carriage returns, which count as line breaks here.
type progressParser struct {
	partial string
}

// Feed consumes one chunk and returns the elapsed seconds found on each
// completed progress line, in order. Malformed markers are skipped.
func (p *progressParser) Feed(chunk string) []float64 {
	data := p.partial + chunk

	splitAt := func(r rune) bool { return r == '\n' || r == '\r' }
	lastBreak := strings.LastIndexFunc(data, splitAt)
	if lastBreak < 0 {
		p.partial = data
		return nil
	}
	complete := data[:lastBreak]
	p.partial = data[lastBreak+1:]

	var elapsed []float64
	for _, line := range strings.FieldsFunc(complete, splitAt) {
		if seconds, ok := parseProgressLine(line); ok {
			elapsed = append(elapsed, seconds)
		}
	}
	return elapsed
}

// parseProgressLine extracts the "time=HH:MM:SS[.ff]" marker from one
// status line and converts it to seconds.
func parseProgressLine(line string) (float64, bool) {
	idx := strings.Index(line, "time=")
	if idx < 0 {
		return 0, false
	}

	token := line[idx+len("time="):]
	if end := strings.IndexByte(token, ' '); end >= 0 {
		token = token[:end]
	}

	parts := strings.Split(token, ":")
	if len(parts) != 3 {
		return 0, false
	}

	hours, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, false
	}
	minutes, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, false
	}

	return hours*3600 + minutes*60 + seconds, true
}

// percentOf converts elapsed seconds into a clamped completion percentage.
// An unknown (zero) total reports no progress.
func percentOf(elapsed, total float64) (float64, bool) {
	if total <= 0 {
		return 0, false
	}

	percent := elapsed / total * 100
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	return percent, true
}
