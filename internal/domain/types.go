package domain

// TrackSlot identifies one of the two subtitle slots in a session.
type TrackSlot int

const (
	// SlotPrimary is the upper caption line (conventionally the
	// logographic-script track in a dual-language layout).
	SlotPrimary TrackSlot = 1
	// SlotSecondary is the lower caption line.
	SlotSecondary TrackSlot = 2
)

// JobStatus tracks the lifecycle of a single export job.
type JobStatus string

const (
	JobStatusIdle      JobStatus = "idle"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// Job stores the current export job identity and lifecycle status.
type Job struct {
	ID         string    `json:"id"`
	Status     JobStatus `json:"status"`
	OutputPath string    `json:"outputPath,omitempty"`
}

// RGB is an opaque display color. Subtitle markup serializes it in BGR
// order; that reordering happens at the markup boundary, never here.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Style holds the visual rendering parameters bound to one track slot.
// A style outlives the track it renders: replacing or clearing a track
// leaves its slot's style untouched.
type Style struct {
	FontFamily       string  `json:"fontFamily"`
	FontSize         float64 `json:"fontSize"`
	PrimaryColor     RGB     `json:"primaryColor"`
	OutlineEnabled   bool    `json:"outlineEnabled"`
	OutlineThickness float64 `json:"outlineThickness"`
	OutlineColor     RGB     `json:"outlineColor"`
	VerticalMargin   int     `json:"verticalMargin"`
}

// EffectiveOutline returns the outline width the renderer should use,
// collapsing a disabled outline to zero.
func (s Style) EffectiveOutline() float64 {
	if !s.OutlineEnabled {
		return 0
	}
	return s.OutlineThickness
}

// Preset selects which track slots are active and their default margins.
type Preset string

const (
	// PresetNone enables both slots.
	PresetNone Preset = "none"
	// PresetPrimaryOnly enables only slot 1.
	PresetPrimaryOnly Preset = "primary_only"
	// PresetSecondaryOnly enables only slot 2.
	PresetSecondaryOnly Preset = "secondary_only"
)

// SlotEnabled reports whether the preset permits loading and configuring
// the given slot.
func (p Preset) SlotEnabled(slot TrackSlot) bool {
	switch p {
	case PresetPrimaryOnly:
		return slot == SlotPrimary
	case PresetSecondaryOnly:
		return slot == SlotSecondary
	default:
		return true
	}
}

// Settings contains user configuration persisted across launches.
type Settings struct {
	Style1    Style  `json:"style1"`
	Style2    Style  `json:"style2"`
	Preset    Preset `json:"preset"`
	OutputDir string `json:"outputDir"`
}
