package theme

import (
	"sort"

	"folio/internal/colors"
)

// LightSorted orders candidates lightest first. The sort is stable, so colors
// of equal brightness keep their input order.
func LightSorted(candidates []colors.Color) []colors.Color {
	ranked := append([]colors.Color(nil), candidates...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return colors.IsLighter(ranked[i], ranked[j])
	})
	return ranked
}

// DarkSorted is the mirror of LightSorted: darkest first, stable.
func DarkSorted(candidates []colors.Color) []colors.Color {
	ranked := append([]colors.Color(nil), candidates...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return colors.IsDarker(ranked[i], ranked[j])
	})
	return ranked
}

func rankFor(candidates []colors.Color, darkVariant bool) []colors.Color {
	if darkVariant {
		return DarkSorted(candidates)
	}
	return LightSorted(candidates)
}
