package subtitles

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"dual-subtitle-burner/internal/domain"
)

// overrideTag is one ASS override placed in the tag block that opens a
// dialogue line. Modeling overrides as nodes instead of string-prefixing
// keeps cue text containing markup-sensitive characters from corrupting
// the tag block.
type overrideTag struct {
	name  string
	value string
}

// render emits the tag in \name value form.
func (o overrideTag) render() string {
	return "\\" + o.name + o.value
}

// primaryColorOverride builds the per-cue color override carried by every
// exported dialogue line. ASS colors are BGR-ordered.
func primaryColorOverride(color domain.RGB) overrideTag {
	return overrideTag{
		name:  "c",
		value: fmt.Sprintf("&H%02X%02X%02X&", color.B, color.G, color.R),
	}
}

// assColor formats an RGB value as an ASS &HAABBGGRR style color with a
// fully opaque alpha channel.
func assColor(color domain.RGB) string {
	return fmt.Sprintf("&H00%02X%02X%02X", color.B, color.G, color.R)
}

// assTimestamp formats milliseconds as H:MM:SS.cc (centisecond precision).
func assTimestamp(ms int64) string {
	cs := (ms % 1000) / 10
	totalSeconds := ms / 1000
	return fmt.Sprintf("%d:%02d:%02d.%02d",
		totalSeconds/3600,
		(totalSeconds/60)%60,
		totalSeconds%60,
		cs,
	)
}

// assDialogueText renders override tags plus cue text as one dialogue
// payload. Newlines become soft breaks; braces in cue text are replaced
// because ASS has no escape sequence for them.
func assDialogueText(overrides []overrideTag, text string) string {
	var b strings.Builder
	if len(overrides) > 0 {
		b.WriteByte('{')
		for _, tag := range overrides {
			b.WriteString(tag.render())
		}
		b.WriteByte('}')
	}

	sanitized := strings.NewReplacer(
		"{", "(",
		"}", ")",
		"\r\n", "\\N",
		"\n", "\\N",
	).Replace(text)
	b.WriteString(sanitized)
	return b.String()
}

// WriteASS serializes a track and its style as an ASS document with one
// style record and one dialogue line per cue. Every dialogue line opens
// with a primary-color override derived from the style, matching how the
// burn-in filter expects per-cue colors.
func WriteASS(w io.Writer, track *Track, style domain.Style, styleName string) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "[Script Info]")
	fmt.Fprintln(bw, "ScriptType: v4.00+")
	fmt.Fprintln(bw, "WrapStyle: 0")
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "[V4+ Styles]")
	fmt.Fprintln(bw, "Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding")
	fmt.Fprintf(bw, "Style: %s,%s,%g,%s,%s,%s,%s,0,0,0,0,100,100,0,0,1,%g,0,2,10,10,%d,1\n",
		styleName,
		style.FontFamily,
		style.FontSize,
		assColor(style.PrimaryColor),
		assColor(domain.RGB{R: 255, G: 0, B: 0}),
		assColor(style.OutlineColor),
		assColor(domain.RGB{}),
		style.EffectiveOutline(),
		style.VerticalMargin,
	)
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "[Events]")
	fmt.Fprintln(bw, "Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text")
	colorTag := primaryColorOverride(style.PrimaryColor)
	for _, cue := range track.Cues {
		fmt.Fprintf(bw, "Dialogue: 0,%s,%s,%s,,0,0,0,,%s\n",
			assTimestamp(cue.Start),
			assTimestamp(cue.End),
			styleName,
			assDialogueText([]overrideTag{colorTag}, cue.Text),
		)
	}

	return bw.Flush()
}

// WriteTempASS writes the track as an ASS document to a fresh temporary
// file and returns its path. The caller owns deletion.
func WriteTempASS(track *Track, style domain.Style, styleName string) (string, error) {
	file, err := os.CreateTemp("", "dualsub-*.ass")
	if err != nil {
		return "", fmt.Errorf("create temp subtitle file: %w", err)
	}

	if err := WriteASS(file, track, style, styleName); err != nil {
		file.Close()
		os.Remove(file.Name())
		return "", fmt.Errorf("write temp subtitle file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(file.Name())
		return "", fmt.Errorf("close temp subtitle file: %w", err)
	}

	return file.Name(), nil
}
