package subtitles

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"dual-subtitle-burner/internal/domain"
)

func testStyle() domain.Style {
	return domain.Style{
		FontFamily:       "SimSun",
		FontSize:         12,
		PrimaryColor:     domain.RGB{R: 255, G: 200, B: 100},
		OutlineEnabled:   true,
		OutlineThickness: 0.5,
		OutlineColor:     domain.RGB{},
		VerticalMargin:   35,
	}
}

// TestWriteASSStyleRecord checks BGR color order and style fields.
func TestWriteASSStyleRecord(t *testing.T) {
	track := &Track{Cues: []Cue{{Start: 1000, End: 3000, Text: "Hello"}}}

	var buf bytes.Buffer
	if err := WriteASS(&buf, track, testStyle(), "Sub1"); err != nil {
		t.Fatalf("WriteASS() error = %v", err)
	}
	out := buf.String()

	// R=255 G=200 B=100 serializes blue-first as 64C8FF.
	if !strings.Contains(out, "Style: Sub1,SimSun,12,&H0064C8FF,") {
		t.Fatalf("style record missing or color not BGR:\n%s", out)
	}
	if !strings.Contains(out, "[Events]") {
		t.Fatalf("missing events section:\n%s", out)
	}
}

// TestWriteASSDialogueColorOverride checks the per-cue color override tag.
func TestWriteASSDialogueColorOverride(t *testing.T) {
	track := &Track{Cues: []Cue{{Start: 1000, End: 3000, Text: "Hello"}}}

	var buf bytes.Buffer
	if err := WriteASS(&buf, track, testStyle(), "Sub1"); err != nil {
		t.Fatalf("WriteASS() error = %v", err)
	}

	want := `Dialogue: 0,0:00:01.00,0:00:03.00,Sub1,,0,0,0,,{\c&H64C8FF&}Hello`
	if !strings.Contains(buf.String(), want) {
		t.Fatalf("dialogue line missing, want %q in:\n%s", want, buf.String())
	}
}

// TestWriteASSSanitizesCueText neutralizes braces and encodes line breaks.
func TestWriteASSSanitizesCueText(t *testing.T) {
	track := &Track{Cues: []Cue{{Start: 0, End: 1000, Text: "a {\\b1} b\nnext"}}}

	var buf bytes.Buffer
	if err := WriteASS(&buf, track, testStyle(), "Sub1"); err != nil {
		t.Fatalf("WriteASS() error = %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, `a (\b1) b\Nnext`) {
		t.Fatalf("cue text not sanitized:\n%s", out)
	}
	// The only brace pair must be the leading override block.
	if strings.Count(out[strings.Index(out, "Dialogue"):], "{") != 1 {
		t.Fatalf("stray brace escaped into dialogue text:\n%s", out)
	}
}

// TestWriteASSDisabledOutline serializes a zero outline width.
func TestWriteASSDisabledOutline(t *testing.T) {
	style := testStyle()
	style.OutlineEnabled = false
	style.OutlineThickness = 3

	var buf bytes.Buffer
	if err := WriteASS(&buf, &Track{}, style, "Sub2"); err != nil {
		t.Fatalf("WriteASS() error = %v", err)
	}

	if !strings.Contains(buf.String(), ",1,0,0,2,10,10,35,1") {
		t.Fatalf("disabled outline should serialize as 0:\n%s", buf.String())
	}
}

// TestAssTimestamp checks centisecond formatting across hour boundaries.
func TestAssTimestamp(t *testing.T) {
	cases := []struct {
		ms   int64
		want string
	}{
		{0, "0:00:00.00"},
		{1000, "0:00:01.00"},
		{65320, "0:01:05.32"},
		{3723450, "1:02:03.45"},
	}
	for _, tc := range cases {
		if got := assTimestamp(tc.ms); got != tc.want {
			t.Fatalf("assTimestamp(%d) = %q, want %q", tc.ms, got, tc.want)
		}
	}
}

// TestWriteTempASS round-trips through a temporary file owned by the caller.
func TestWriteTempASS(t *testing.T) {
	track := &Track{Cues: []Cue{{Start: 0, End: 2000, Text: "temp"}}}

	path, err := WriteTempASS(track, testStyle(), "Sub1")
	if err != nil {
		t.Fatalf("WriteTempASS() error = %v", err)
	}
	defer os.Remove(path)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read temp file: %v", err)
	}
	if !strings.Contains(string(data), "Dialogue: 0,0:00:00.00,0:00:02.00,Sub1") {
		t.Fatalf("temp file content unexpected:\n%s", data)
	}
	if !strings.HasSuffix(path, ".ass") {
		t.Fatalf("temp path = %q, want .ass suffix", path)
	}
}
