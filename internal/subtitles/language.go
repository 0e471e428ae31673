package subtitles

import (
	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/language"
)

// detectLanguage guesses the dominant language of a cue list by majority
// vote over per-cue detection. Tracks are short free text, so this is a
// hint for the UI, never an input to export behavior.
func detectLanguage(cues []Cue) language.Tag {
	if len(cues) == 0 {
		return language.Und
	}

	counts := make(map[string]int)
	for _, cue := range cues {
		iso := whatlanggo.DetectLang(cue.Text).Iso6391()
		counts[iso]++
	}

	var topLang string
	var topCount int
	for iso, count := range counts {
		if count > topCount {
			topLang = iso
			topCount = count
		}
	}

	return language.All.Make(topLang)
}
