package export

import (
	"context"
	"strings"
	"time"
)

// HardwareEncoder identifies the GPU encode path selected for a session.
type HardwareEncoder string

const (
	EncoderSoftware HardwareEncoder = ""
	EncoderNVENC    HardwareEncoder = "nvenc"
	EncoderAMF      HardwareEncoder = "amf"
	EncoderQSV      HardwareEncoder = "qsv"
)

// detectTimeout bounds the capability probe so a hung ffmpeg cannot stall
// application startup.
const detectTimeout = 5 * time.Second

// DetectHardwareEncoder probes ffmpeg's encoder list once and picks the
// first supported GPU encoder. Every failure mode (missing binary,
// timeout, unreadable output) degrades silently to software encoding;
// detection is a fast-path optimization, never a user-facing error.
func DetectHardwareEncoder(ctx context.Context) HardwareEncoder {
	return detectHardwareEncoder(ctx, &execRunner{})
}

func detectHardwareEncoder(ctx context.Context, runner commandRunner) HardwareEncoder {
	ctx, cancel := context.WithTimeout(ctx, detectTimeout)
	defer cancel()

	result, err := runner.Run(ctx, "ffmpeg", "-hide_banner", "-encoders")
	if err != nil {
		return EncoderSoftware
	}

	listing := result.Stdout + result.Stderr
	switch {
	case strings.Contains(listing, "h264_nvenc"):
		return EncoderNVENC
	case strings.Contains(listing, "h264_amf"):
		return EncoderAMF
	case strings.Contains(listing, "h264_qsv"):
		return EncoderQSV
	default:
		return EncoderSoftware
	}
}

// accelArgs returns the input-side hardware acceleration flags.
func (e HardwareEncoder) accelArgs() []string {
	switch e {
	case EncoderNVENC:
		return []string{"-hwaccel", "cuda"}
	case EncoderAMF:
		return []string{"-hwaccel", "auto"}
	case EncoderQSV:
		return []string{"-hwaccel", "qsv"}
	default:
		return nil
	}
}

// codecArgs returns the video codec selection with per-encoder tuning.
// Software fallback uses a fixed quality preset.
func (e HardwareEncoder) codecArgs() []string {
	switch e {
	case EncoderNVENC:
		return []string{"-c:v", "h264_nvenc", "-preset", "fast", "-cq", "23"}
	case EncoderAMF:
		return []string{"-c:v", "h264_amf", "-usage", "lowlatency"}
	case EncoderQSV:
		return []string{"-c:v", "h264_qsv", "-preset", "veryfast"}
	default:
		return []string{"-c:v", "libx264", "-preset", "veryfast", "-crf", "23"}
	}
}
