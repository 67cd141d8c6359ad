package theme

import (
	"sort"

	"folio/internal/colors"
)

const (
	darkBrightnessCeiling    = 0.3
	lightBrightnessFloor     = 0.8
	overlaySaturationCeiling = 0.5
	primaryContrastFloor     = 13.0
)

func backgroundBrightnessTest(darkVariant bool) func(colors.Color) bool {
	if darkVariant {
		return func(candidate colors.Color) bool { return candidate.Brightness() < darkBrightnessCeiling }
	}
	return func(candidate colors.Color) bool { return candidate.Brightness() > lightBrightnessFloor }
}

// selectBackground picks the first ranked candidate inside the variant's
// brightness bound. Otherwise the last ranked candidate is pushed toward black
// (dark) or white (light) and kept only if it is now muted and inside the bound.
func selectBackground(ranked []colors.Color, darkVariant bool) (colors.Color, bool) {
	withinBound := backgroundBrightnessTest(darkVariant)
	for _, candidate := range ranked {
		if withinBound(candidate) {
			return candidate, true
		}
	}

	if len(ranked) == 0 {
		return colors.Color{}, false
	}

	peak := ranked[len(ranked)-1]
	overlay := peak.OverlayWhite()
	if darkVariant {
		overlay = peak.OverlayBlack()
	}
	if overlay.Saturation() < overlaySaturationCeiling && withinBound(overlay) {
		return overlay, true
	}

	return colors.Color{}, false
}

// selectPrimary picks text color: at least primaryContrastFloor against the
// background and on the opposite side of the brightness range. The overlay
// fallback uses a looser brightness bound than the first pass.
func selectPrimary(ranked []colors.Color, background colors.Color, darkVariant bool) (colors.Color, bool) {
	strict := func(candidate colors.Color) bool { return candidate.Brightness() < darkBrightnessCeiling }
	loose := func(candidate colors.Color) bool { return candidate.Brightness() > darkBrightnessCeiling }
	if darkVariant {
		strict = func(candidate colors.Color) bool { return candidate.Brightness() > lightBrightnessFloor }
		loose = func(candidate colors.Color) bool { return candidate.Brightness() < lightBrightnessFloor }
	}

	for _, candidate := range ranked {
		if colors.ContrastRatio(candidate, background) > primaryContrastFloor && strict(candidate) {
			return candidate, true
		}
	}

	if len(ranked) == 0 {
		return colors.Color{}, false
	}

	peak := ranked[len(ranked)-1]
	overlay := peak.OverlayBlack()
	if darkVariant {
		overlay = peak.OverlayWhite()
	}
	if colors.ContrastRatio(overlay, background) > primaryContrastFloor && loose(overlay) {
		return overlay, true
	}

	return colors.Color{}, false
}

// selectAccent keeps candidates darker than the background and returns the
// one with the highest contrast against primary. Ties keep ranked order.
func selectAccent(ranked []colors.Color, background colors.Color, primary colors.Color) (colors.Color, bool) {
	darker := make([]colors.Color, 0, len(ranked))
	for _, candidate := range ranked {
		if colors.IsDarker(candidate, background) {
			darker = append(darker, candidate)
		}
	}
	if len(darker) == 0 {
		return colors.Color{}, false
	}

	sort.SliceStable(darker, func(i, j int) bool {
		return colors.ContrastRatio(darker[i], primary) > colors.ContrastRatio(darker[j], primary)
	})

	return darker[0], true
}
