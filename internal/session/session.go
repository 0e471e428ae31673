// Package session holds the mutable editing state of one application run:
// the loaded video, the two subtitle slots with their styles, and the
// active preset. All mutation happens from the UI control loop, so the
// type is deliberately not safe for concurrent writers.
package session

import (
	"errors"
	"fmt"

	"dual-subtitle-burner/internal/domain"
	"dual-subtitle-burner/internal/preview"
	"dual-subtitle-burner/internal/subtitles"
)

// ErrSlotDisabled rejects loading or configuring a slot the active preset
// has disabled.
var ErrSlotDisabled = errors.New("subtitle slot is disabled by the active preset")

// Overlay is one positioned subtitle block ready for the GUI to draw.
type Overlay struct {
	Slot domain.TrackSlot `json:"slot"`
	Text string           `json:"text"`
	X    float64          `json:"x"`
	Y    float64          `json:"y"`
}

// Session is the per-run editing state feeding both preview and export.
type Session struct {
	VideoPath string

	track1 *subtitles.Track
	track2 *subtitles.Track
	style1 domain.Style
	style2 domain.Style
	preset domain.Preset

	layout *preview.Engine
}

// New creates a session with per-slot default styles and no preset.
func New(layout *preview.Engine) *Session {
	if layout == nil {
		layout = preview.NewEngine(nil)
	}
	return &Session{
		style1: domain.DefaultStyle(domain.SlotPrimary),
		style2: domain.DefaultStyle(domain.SlotSecondary),
		preset: domain.PresetNone,
		layout: layout,
	}
}

// Restore overwrites styles and preset from persisted settings.
func (s *Session) Restore(settings domain.Settings) {
	s.style1 = settings.Style1
	s.style2 = settings.Style2
	if settings.Preset != "" {
		s.SetPreset(settings.Preset)
	}
}

// LoadTrack parses a subtitle file into the given slot, replacing any
// previous track wholesale. The slot's style is untouched.
func (s *Session) LoadTrack(slot domain.TrackSlot, path string) (*subtitles.Track, error) {
	if !s.preset.SlotEnabled(slot) {
		return nil, fmt.Errorf("load subtitle %d: %w", slot, ErrSlotDisabled)
	}

	track, err := subtitles.Load(path)
	if err != nil {
		return nil, err
	}

	if slot == domain.SlotPrimary {
		s.track1 = track
	} else {
		s.track2 = track
	}
	return track, nil
}

// Track returns the track currently bound to the slot, or nil.
func (s *Session) Track(slot domain.TrackSlot) *subtitles.Track {
	if slot == domain.SlotPrimary {
		return s.track1
	}
	return s.track2
}

// Style returns the slot's current style.
func (s *Session) Style(slot domain.TrackSlot) domain.Style {
	if slot == domain.SlotPrimary {
		return s.style1
	}
	return s.style2
}

// ApplyStyleEdit replaces a slot's style after normalizing out-of-range
// values. Applied synchronously; the preview picks it up on the next
// position update.
func (s *Session) ApplyStyleEdit(slot domain.TrackSlot, style domain.Style) (domain.Style, error) {
	if !s.preset.SlotEnabled(slot) {
		return domain.Style{}, fmt.Errorf("configure subtitle %d: %w", slot, ErrSlotDisabled)
	}

	normalized := NormalizeStyle(style)
	if slot == domain.SlotPrimary {
		s.style1 = normalized
	} else {
		s.style2 = normalized
	}
	return normalized, nil
}

// Preset returns the active preset.
func (s *Session) Preset() domain.Preset {
	return s.preset
}

// SetPreset switches the active preset: it resets the enabled slots'
// margins to the preset defaults and clears the content of any slot the
// preset disables. Styles survive preset switches so re-enabling a slot
// needs no reconfiguration.
func (s *Session) SetPreset(preset domain.Preset) {
	s.preset = preset

	switch preset {
	case domain.PresetPrimaryOnly:
		s.style1.VerticalMargin = preset.DefaultMargin(domain.SlotPrimary)
		s.track2 = nil
	case domain.PresetSecondaryOnly:
		s.style2.VerticalMargin = preset.DefaultMargin(domain.SlotSecondary)
		s.track1 = nil
	default:
		s.style1.VerticalMargin = preset.DefaultMargin(domain.SlotPrimary)
		s.style2.VerticalMargin = preset.DefaultMargin(domain.SlotSecondary)
	}
}

// OverlaysAt resolves both tracks at the playback position and lays each
// block out independently in the viewport. Disabled or silent slots are
// omitted. Called on every position update; performs no I/O.
func (s *Session) OverlaysAt(positionMs int64, viewportWidth, viewportHeight float64) []Overlay {
	overlays := make([]Overlay, 0, 2)

	for _, slot := range []domain.TrackSlot{domain.SlotPrimary, domain.SlotSecondary} {
		text := subtitles.Resolve(s.Track(slot), positionMs)
		if text == "" {
			continue
		}
		style := s.Style(slot)
		pos := s.layout.Layout(text, style, viewportWidth, viewportHeight)
		overlays = append(overlays, Overlay{Slot: slot, Text: text, X: pos.X, Y: pos.Y})
	}
	return overlays
}

// ValidateForExport checks that every track the active preset requires is
// loaded. It runs before any temp file is written.
func (s *Session) ValidateForExport() error {
	switch s.preset {
	case domain.PresetPrimaryOnly:
		if s.track1 == nil {
			return errors.New("subtitle 1 must be loaded for the primary-only preset")
		}
	case domain.PresetSecondaryOnly:
		if s.track2 == nil {
			return errors.New("subtitle 2 must be loaded for the secondary-only preset")
		}
	default:
		if s.track1 == nil || s.track2 == nil {
			return errors.New("both subtitles must be loaded before exporting")
		}
	}
	return nil
}

// NormalizeStyle clamps user-editable fields to their documented ranges:
// outline thickness 0-10 in 0.5 steps, vertical margin 0-1000 pixels.
func NormalizeStyle(style domain.Style) domain.Style {
	if style.OutlineThickness < 0 {
		style.OutlineThickness = 0
	}
	if style.OutlineThickness > 10 {
		style.OutlineThickness = 10
	}
	style.OutlineThickness = float64(int(style.OutlineThickness*2+0.5)) / 2

	if style.VerticalMargin < 0 {
		style.VerticalMargin = 0
	}
	if style.VerticalMargin > 1000 {
		style.VerticalMargin = 1000
	}
	if style.FontSize <= 0 {
		style.FontSize = 1
	}
	return style
}
