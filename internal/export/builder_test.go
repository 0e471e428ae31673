package export

import (
	"errors"
	"os"
	"strings"
	"testing"

	"dual-subtitle-burner/internal/domain"
	"dual-subtitle-burner/internal/subtitles"
)

func testTrack(text string) *subtitles.Track {
	return &subtitles.Track{Cues: []subtitles.Cue{{Start: 1000, End: 3000, Text: text}}}
}

func removeAll(t *testing.T, paths []string) {
	t.Helper()
	for _, path := range paths {
		os.Remove(path)
	}
}

// TestBuildRejectsJobWithoutTracks fails validation before touching disk.
func TestBuildRejectsJobWithoutTracks(t *testing.T) {
	_, temps, err := Build(Job{VideoPath: "/in.mp4", OutputPath: "/out.mp4"}, EncoderSoftware)
	if err == nil {
		t.Fatal("expected error")
	}

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("error type = %T, want *ValidationError", err)
	}
	if vErr.Message != "no subtitles to export" {
		t.Fatalf("message = %q", vErr.Message)
	}
	if len(temps) != 0 {
		t.Fatalf("temp files = %v, want none", temps)
	}
}

// TestBuildSingleTrack produces one burn filter and one temp file.
func TestBuildSingleTrack(t *testing.T) {
	cmd, temps, err := Build(Job{
		VideoPath:  "/videos/in.mp4",
		Track2:     testTrack("hola"),
		Style2:     domain.Style{FontFamily: "Arial", FontSize: 16},
		OutputPath: "/videos/out.mp4",
	}, EncoderSoftware)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer removeAll(t, temps)

	if len(temps) != 1 {
		t.Fatalf("temp file count = %d, want 1", len(temps))
	}
	if _, err := os.Stat(temps[0]); err != nil {
		t.Fatalf("temp file missing: %v", err)
	}

	vf := argValue(cmd.Args, "-vf")
	if strings.Count(vf, "ass=") != 1 {
		t.Fatalf("filter chain = %q, want exactly one ass filter", vf)
	}
}

// TestBuildBothTracksOrderedFilters chains both burn filters, slot 1 first.
func TestBuildBothTracksOrderedFilters(t *testing.T) {
	cmd, temps, err := Build(Job{
		VideoPath:  "/in.mkv",
		Track1:     testTrack("one"),
		Track2:     testTrack("two"),
		Style1:     domain.Style{FontFamily: "SimSun", FontSize: 12},
		Style2:     domain.Style{FontFamily: "Arial", FontSize: 16},
		OutputPath: "/out.mp4",
	}, EncoderSoftware)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer removeAll(t, temps)

	if len(temps) != 2 {
		t.Fatalf("temp file count = %d, want 2", len(temps))
	}

	vf := argValue(cmd.Args, "-vf")
	if strings.Count(vf, "ass=") != 2 {
		t.Fatalf("filter chain = %q, want two ass filters", vf)
	}
	if !strings.Contains(vf, ",ass=") {
		t.Fatalf("filters not comma-chained: %q", vf)
	}
}

// TestBuildSoftwareEncoderArgs checks the fixed-quality fallback codec.
func TestBuildSoftwareEncoderArgs(t *testing.T) {
	cmd, temps, err := Build(Job{
		VideoPath:  "/in.mp4",
		Track1:     testTrack("x"),
		OutputPath: "/out.mp4",
	}, EncoderSoftware)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer removeAll(t, temps)

	if argValue(cmd.Args, "-c:v") != "libx264" {
		t.Fatalf("codec = %q, want libx264", argValue(cmd.Args, "-c:v"))
	}
	if argValue(cmd.Args, "-crf") != "23" {
		t.Fatalf("crf = %q, want 23", argValue(cmd.Args, "-crf"))
	}
	if hasArg(cmd.Args, "-hwaccel") {
		t.Fatalf("software path must not request hwaccel: %v", cmd.Args)
	}
}

// TestBuildHardwareEncoderArgs checks accel flag and codec per encoder.
func TestBuildHardwareEncoderArgs(t *testing.T) {
	cases := []struct {
		encoder   HardwareEncoder
		wantAccel string
		wantCodec string
	}{
		{EncoderNVENC, "cuda", "h264_nvenc"},
		{EncoderAMF, "auto", "h264_amf"},
		{EncoderQSV, "qsv", "h264_qsv"},
	}
	for _, tc := range cases {
		t.Run(string(tc.encoder), func(t *testing.T) {
			cmd, temps, err := Build(Job{
				VideoPath:  "/in.mp4",
				Track1:     testTrack("x"),
				OutputPath: "/out.mp4",
			}, tc.encoder)
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			defer removeAll(t, temps)

			if got := argValue(cmd.Args, "-hwaccel"); got != tc.wantAccel {
				t.Fatalf("hwaccel = %q, want %q", got, tc.wantAccel)
			}
			if got := argValue(cmd.Args, "-c:v"); got != tc.wantCodec {
				t.Fatalf("codec = %q, want %q", got, tc.wantCodec)
			}
		})
	}
}

// TestBuildClipFlagsPrecedeInput places -ss/-t before -i. Input-side
// seeking restarts frame timestamps at zero, which is what rebased clip
// cue times are burned against.
func TestBuildClipFlagsPrecedeInput(t *testing.T) {
	cmd, temps, err := Build(Job{
		VideoPath:  "/in.mp4",
		Track1:     testTrack("x"),
		Clip:       &Window{StartSeconds: 65, DurationSeconds: 10},
		OutputPath: "/out.mp4",
	}, EncoderSoftware)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer removeAll(t, temps)

	args := cmd.Args
	inputIdx := -1
	for i, arg := range args {
		if arg == "-i" {
			inputIdx = i
			break
		}
	}
	if inputIdx < 0 {
		t.Fatalf("-i missing from args: %v", args)
	}
	if inputIdx < 4 || args[inputIdx-4] != "-ss" || args[inputIdx-3] != "65" {
		t.Fatalf("-ss not before input: %v", args)
	}
	if args[inputIdx-2] != "-t" || args[inputIdx-1] != "10" {
		t.Fatalf("-t not between -ss and -i: %v", args)
	}
	if args[inputIdx+1] != "/in.mp4" {
		t.Fatalf("input path must follow -i: %v", args)
	}
}

// TestBuildWithoutClipOmitsTrimFlags keeps full exports seek-free.
func TestBuildWithoutClipOmitsTrimFlags(t *testing.T) {
	cmd, temps, err := Build(Job{
		VideoPath:  "/in.mp4",
		Track1:     testTrack("x"),
		OutputPath: "/out.mp4",
	}, EncoderSoftware)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer removeAll(t, temps)

	if hasArg(cmd.Args, "-ss") || hasArg(cmd.Args, "-t") {
		t.Fatalf("unclipped export must not carry trim flags: %v", cmd.Args)
	}
}

// TestBuildCopiesAudioAndForcesOverwrite checks tail args and output last.
func TestBuildCopiesAudioAndForcesOverwrite(t *testing.T) {
	cmd, temps, err := Build(Job{
		VideoPath:  "/in.mp4",
		Track1:     testTrack("x"),
		OutputPath: "/final.mp4",
	}, EncoderSoftware)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer removeAll(t, temps)

	if argValue(cmd.Args, "-c:a") != "copy" {
		t.Fatalf("audio codec = %q, want copy", argValue(cmd.Args, "-c:a"))
	}
	if !hasArg(cmd.Args, "-y") {
		t.Fatalf("missing overwrite flag: %v", cmd.Args)
	}
	if cmd.Args[len(cmd.Args)-1] != "/final.mp4" {
		t.Fatalf("output path not last: %v", cmd.Args)
	}
	if cmd.Name != "ffmpeg" {
		t.Fatalf("command = %q, want ffmpeg", cmd.Name)
	}
}

// TestEscapeFilterPath quotes filter-structural characters.
func TestEscapeFilterPath(t *testing.T) {
	got := escapeFilterPath(`C:\tmp\a,b's[1].ass`)
	want := `C\:/tmp/a\,b\'s\[1\].ass`
	if got != want {
		t.Fatalf("escaped = %q, want %q", got, want)
	}
}

// argValue returns value for key-style CLI args.
func argValue(args []string, key string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == key {
			return args[i+1]
		}
	}
	return ""
}

// hasArg reports whether args include the target flag.
func hasArg(args []string, key string) bool {
	for _, arg := range args {
		if arg == key {
			return true
		}
	}
	return false
}
