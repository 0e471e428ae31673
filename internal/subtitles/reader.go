package subtitles

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	srtTimingPattern = regexp.MustCompile(`(\d{2}):(\d{2}):(\d{2})[,.](\d{3})\s*-->\s*(\d{2}):(\d{2}):(\d{2})[,.](\d{3})`)
	vttTimingPattern = regexp.MustCompile(`(?:(\d+):)?(\d{2}):(\d{2})\.(\d{3})\s*-->\s*(?:(\d+):)?(\d{2}):(\d{2})\.(\d{3})`)
	inlineTagPattern = regexp.MustCompile(`<[^>]*>`)
)

// Load parses a subtitle file into a track, choosing the decoder by file
// extension. A file with zero cues is a valid, empty track.
func Load(path string) (*Track, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{Path: path, Message: "cannot open subtitle file", Err: err}
	}
	defer file.Close()

	var track *Track
	switch strings.ToLower(filepath.Ext(path)) {
	case ".srt":
		track, err = parseSRT(path, bufio.NewScanner(file))
	case ".vtt":
		track, err = parseVTT(path, bufio.NewScanner(file))
	default:
		return nil, &ParseError{
			Path:    path,
			Message: fmt.Sprintf("unsupported subtitle format %q, expected .srt or .vtt", filepath.Ext(path)),
		}
	}
	if err != nil {
		return nil, err
	}

	track.Language = detectLanguage(track.Cues)
	return track, nil
}

// parseSRT decodes SubRip input with an index/timing/text state machine.
func parseSRT(path string, scanner *bufio.Scanner) (*Track, error) {
	const (
		stateIndex = iota
		stateTiming
		stateText
	)

	var cues []Cue
	var current Cue
	var textLines []string
	state := stateIndex
	lineNo := 0

	flush := func() {
		if len(textLines) > 0 {
			current.Text = plaintext(strings.Join(textLines, "\n"))
			cues = append(cues, current)
		}
		current = Cue{}
		textLines = nil
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(stripBOM(scanner.Text()))

		switch state {
		case stateIndex:
			if line == "" {
				continue
			}
			if _, err := strconv.Atoi(line); err != nil {
				// Some SRT writers omit indices; a timing line is accepted here too.
				if !srtTimingPattern.MatchString(line) {
					continue
				}
				start, end, perr := parseSRTTiming(path, lineNo, line)
				if perr != nil {
					return nil, perr
				}
				current.Start, current.End = start, end
				state = stateText
				continue
			}
			state = stateTiming

		case stateTiming:
			if line == "" {
				continue
			}
			start, end, perr := parseSRTTiming(path, lineNo, line)
			if perr != nil {
				return nil, perr
			}
			current.Start, current.End = start, end
			state = stateText

		case stateText:
			if line == "" {
				flush()
				state = stateIndex
				continue
			}
			textLines = append(textLines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &ParseError{Path: path, Message: "read failure", Err: err}
	}
	if state == stateText {
		flush()
	}

	return &Track{Cues: cues, Format: "srt"}, nil
}

// parseVTT decodes WebVTT input, skipping NOTE/STYLE/REGION blocks and
// optional cue identifiers.
func parseVTT(path string, scanner *bufio.Scanner) (*Track, error) {
	if !scanner.Scan() {
		return nil, &ParseError{Path: path, Message: "empty file, missing WEBVTT header"}
	}
	header := strings.TrimSpace(stripBOM(scanner.Text()))
	if !strings.HasPrefix(header, "WEBVTT") {
		return nil, &ParseError{Path: path, Line: 1, Message: "missing WEBVTT header"}
	}

	var cues []Cue
	var current Cue
	var textLines []string
	inCue := false
	skipBlock := false
	lineNo := 1

	flush := func() {
		if inCue && len(textLines) > 0 {
			current.Text = plaintext(strings.Join(textLines, "\n"))
			cues = append(cues, current)
		}
		current = Cue{}
		textLines = nil
		inCue = false
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			flush()
			skipBlock = false
			continue
		}
		if skipBlock {
			continue
		}
		if !inCue && (strings.HasPrefix(line, "NOTE") || line == "STYLE" || strings.HasPrefix(line, "REGION")) {
			skipBlock = true
			continue
		}

		if strings.Contains(line, "-->") {
			start, end, perr := parseVTTTiming(path, lineNo, line)
			if perr != nil {
				return nil, perr
			}
			current.Start, current.End = start, end
			inCue = true
			textLines = nil
			continue
		}

		if inCue {
			textLines = append(textLines, line)
		}
		// Lines before a timing line inside a block are cue identifiers.
	}
	if err := scanner.Err(); err != nil {
		return nil, &ParseError{Path: path, Message: "read failure", Err: err}
	}
	flush()

	return &Track{Cues: cues, Format: "vtt"}, nil
}

// parseSRTTiming converts "HH:MM:SS,mmm --> HH:MM:SS,mmm" to milliseconds.
func parseSRTTiming(path string, lineNo int, line string) (int64, int64, *ParseError) {
	matches := srtTimingPattern.FindStringSubmatch(line)
	if len(matches) != 9 {
		return 0, 0, &ParseError{Path: path, Line: lineNo, Message: fmt.Sprintf("invalid timing line %q", line)}
	}

	start := timestampMillis(matches[1], matches[2], matches[3], matches[4])
	end := timestampMillis(matches[5], matches[6], matches[7], matches[8])
	if start > end {
		return 0, 0, &ParseError{Path: path, Line: lineNo, Message: fmt.Sprintf("cue start after end in %q", line)}
	}
	return start, end, nil
}

// parseVTTTiming converts "[HH:]MM:SS.mmm --> [HH:]MM:SS.mmm" to milliseconds.
func parseVTTTiming(path string, lineNo int, line string) (int64, int64, *ParseError) {
	matches := vttTimingPattern.FindStringSubmatch(line)
	if len(matches) != 9 {
		return 0, 0, &ParseError{Path: path, Line: lineNo, Message: fmt.Sprintf("invalid timing line %q", line)}
	}

	start := timestampMillis(matches[1], matches[2], matches[3], matches[4])
	end := timestampMillis(matches[5], matches[6], matches[7], matches[8])
	if start > end {
		return 0, 0, &ParseError{Path: path, Line: lineNo, Message: fmt.Sprintf("cue start after end in %q", line)}
	}
	return start, end, nil
}

// timestampMillis folds hour/minute/second/millisecond strings into one
// millisecond count. Empty hour fields (short VTT form) count as zero.
func timestampMillis(hours, minutes, seconds, millis string) int64 {
	h, _ := strconv.ParseInt(hours, 10, 64)
	m, _ := strconv.ParseInt(minutes, 10, 64)
	s, _ := strconv.ParseInt(seconds, 10, 64)
	ms, _ := strconv.ParseInt(millis, 10, 64)
	return ((h*60+m)*60+s)*1000 + ms
}

// plaintext strips inline markup tags so cues carry display text only.
func plaintext(text string) string {
	return strings.TrimSpace(inlineTagPattern.ReplaceAllString(text, ""))
}

// stripBOM removes a UTF-8 byte order mark from the first line of a file.
func stripBOM(line string) string {
	return strings.TrimPrefix(line, "\uFEFF")
}
