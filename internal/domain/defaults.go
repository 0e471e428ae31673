package domain

// Default vertical margins per slot. The secondary-only preset raises the
// lower track since it becomes the only caption line.
const (
	DefaultMarginPrimary    = 35
	DefaultMarginSecondary  = 5
	MarginSecondaryWhenSolo = 25
)

// DefaultStyle returns the initial style for a slot. The asymmetry is the
// dual-language caption convention: a smaller logographic line above a
// larger roman-script line.
func DefaultStyle(slot TrackSlot) Style {
	white := RGB{R: 255, G: 255, B: 255}
	black := RGB{}

	if slot == SlotPrimary {
		return Style{
			FontFamily:       "SimSun",
			FontSize:         12,
			PrimaryColor:     white,
			OutlineEnabled:   true,
			OutlineThickness: 0.5,
			OutlineColor:     black,
			VerticalMargin:   DefaultMarginPrimary,
		}
	}
	return Style{
		FontFamily:       "Gotham Medium",
		FontSize:         16,
		PrimaryColor:     white,
		OutlineEnabled:   true,
		OutlineThickness: 0.5,
		OutlineColor:     black,
		VerticalMargin:   DefaultMarginSecondary,
	}
}

// DefaultMargin returns the vertical margin the preset assigns to a slot
// when it becomes active.
func (p Preset) DefaultMargin(slot TrackSlot) int {
	if slot == SlotSecondary && p == PresetSecondaryOnly {
		return MarginSecondaryWhenSolo
	}
	if slot == SlotPrimary {
		return DefaultMarginPrimary
	}
	return DefaultMarginSecondary
}
