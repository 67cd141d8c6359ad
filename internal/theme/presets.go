package theme

import (
	"fmt"
	"sort"
	"strings"

	"folio/internal/colors"
)

// presetColors holds the chosen roles of a preset. Secondaries are derived
// from the primaries.
type presetColors struct {
	background     string
	primary        string
	accent         string
	darkBackground string
	darkPrimary    string
	darkAccent     string
}

var presets = map[string]presetColors{
	"Default": {
		background:     DefaultBackgroundHex,
		primary:        DefaultPrimaryHex,
		accent:         DefaultAccentHex,
		darkBackground: DarkBackgroundHex,
		darkPrimary:    DarkPrimaryHex,
		darkAccent:     DarkAccentHex,
	},
	"Paper": {
		background:     "F7F1E3",
		primary:        "2B2118",
		accent:         "A4552B",
		darkBackground: "1E1A15",
		darkPrimary:    "EFE6D2",
		darkAccent:     "D98E5F",
	},
	"Dusk": {
		background:     "F2EEF7",
		primary:        "2A2238",
		accent:         "7A4FC4",
		darkBackground: "17131F",
		darkPrimary:    "E8E2F2",
		darkAccent:     "A98BE6",
	},
	"Midnight": {
		background:     "E9EEF5",
		primary:        "14213D",
		accent:         "2F6FDB",
		darkBackground: "070B14",
		darkPrimary:    "DCE5F2",
		darkAccent:     "5C93F0",
	},
}

func (p presetColors) values() map[Role]string {
	return map[Role]string{
		RoleDefaultBackground: p.background,
		RoleDefaultPrimary:    p.primary,
		RoleDefaultSecondary:  colors.MustParseHex(p.primary).OverlayBlack().Hex(),
		RoleDefaultAccent:     p.accent,
		RoleDarkBackground:    p.darkBackground,
		RoleDarkPrimary:       p.darkPrimary,
		RoleDarkSecondary:     colors.MustParseHex(p.darkPrimary).OverlayWhite().Hex(),
		RoleDarkAccent:        p.darkAccent,
	}
}

// PresetNames lists the bundled presets alphabetically.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preset builds a bundled theme by name (case-insensitive) through the
// parameter construction path.
func (s *Synthesizer) Preset(name string) (Theme, error) {
	for presetName, preset := range presets {
		if strings.EqualFold(presetName, strings.TrimSpace(name)) {
			return s.Synthesize(FromParams{Title: presetName, Values: preset.values()}, DefaultOptions()), nil
		}
	}
	return Theme{}, fmt.Errorf("unknown preset %q", name)
}
