package theme

import (
	"testing"

	"folio/internal/colors"
)

func TestResolveSelectsVariant(t *testing.T) {
	t.Parallel()

	theme := DefaultTheme("Default")

	light := theme.Resolve(Light)
	if light.Background != DefaultBackgroundHex || light.Primary != DefaultPrimaryHex || light.Accent != DefaultAccentHex {
		t.Fatalf("unexpected light palette: %+v", light)
	}
	if light.Secondary != theme.DefaultSecondary {
		t.Fatalf("expected light secondary %q, got %q", theme.DefaultSecondary, light.Secondary)
	}

	dark := theme.Resolve(Dark)
	if dark.Background != DarkBackgroundHex || dark.Primary != DarkPrimaryHex || dark.Accent != DarkAccentHex {
		t.Fatalf("unexpected dark palette: %+v", dark)
	}
}

func TestParseVariant(t *testing.T) {
	t.Parallel()

	cases := map[string]Variant{"": Light, "light": Light, "default": Light, "dark": Dark}
	for input, want := range cases {
		got, err := ParseVariant(input)
		if err != nil {
			t.Fatalf("parse %q: %v", input, err)
		}
		if got != want {
			t.Fatalf("parse %q: expected %v, got %v", input, want, got)
		}
	}

	if _, err := ParseVariant("sepia"); err == nil {
		t.Fatal("expected error for unknown variant")
	}
}

func TestValidateNamesMissingRole(t *testing.T) {
	t.Parallel()

	theme := DefaultTheme("Partial")
	theme.DarkAccent = ""
	if err := theme.Validate(); err == nil {
		t.Fatal("expected error for unset dark accent")
	}

	theme.DarkAccent = "#459FFF"
	if theme.Complete() {
		t.Fatal("expected '#'-prefixed value to be rejected")
	}
}

func TestRankingIsStable(t *testing.T) {
	t.Parallel()

	// Pure red, green and blue share HSL lightness 0.5.
	candidates := hexes("FF0000", "00FF00", "FFFFFF", "0000FF", "000000")

	light := LightSorted(candidates)
	wantLight := []string{"FFFFFF", "FF0000", "00FF00", "0000FF", "000000"}
	assertOrder(t, light, wantLight)
	assertOrder(t, LightSorted(candidates), wantLight)

	dark := DarkSorted(candidates)
	wantDark := []string{"000000", "FF0000", "00FF00", "0000FF", "FFFFFF"}
	assertOrder(t, dark, wantDark)
	assertOrder(t, DarkSorted(candidates), wantDark)

	if candidates[0].Hex() != "FF0000" {
		t.Fatal("expected ranking to leave its input untouched")
	}
}

func TestPresetDefaultMatchesDefaultTheme(t *testing.T) {
	t.Parallel()

	synthesizer := NewSynthesizer(nil, nil)
	preset, err := synthesizer.Preset("default")
	if err != nil {
		t.Fatalf("load preset: %v", err)
	}
	if preset != DefaultTheme("Default") {
		t.Fatalf("expected Default preset to equal default construction, got %+v", preset)
	}

	for _, name := range PresetNames() {
		preset, err := synthesizer.Preset(name)
		if err != nil {
			t.Fatalf("load preset %q: %v", name, err)
		}
		if err := preset.Validate(); err != nil {
			t.Fatalf("preset %q: %v", name, err)
		}
		if want := colors.MustParseHex(preset.DefaultPrimary).OverlayBlack().Hex(); preset.DefaultSecondary != want {
			t.Fatalf("preset %q: expected light secondary %s, got %s", name, want, preset.DefaultSecondary)
		}
		if want := colors.MustParseHex(preset.DarkPrimary).OverlayWhite().Hex(); preset.DarkSecondary != want {
			t.Fatalf("preset %q: expected dark secondary %s, got %s", name, want, preset.DarkSecondary)
		}
	}

	if _, err := synthesizer.Preset("Neon"); err == nil {
		t.Fatal("expected error for unknown preset")
	}
}

func assertOrder(t *testing.T, ranked []colors.Color, want []string) {
	t.Helper()

	if len(ranked) != len(want) {
		t.Fatalf("expected %d colors, got %d", len(want), len(ranked))
	}
	for index, candidate := range ranked {
		if candidate.Hex() != want[index] {
			t.Fatalf("position %d: expected %s, got %s", index, want[index], candidate.Hex())
		}
	}
}

func TestMergeRederivesSecondary(t *testing.T) {
	t.Parallel()

	base := DefaultTheme("Dune")
	merged := Merge(base, Theme{DefaultPrimary: "808080", DarkAccent: "E0B000"})

	if merged.Title != "Dune" {
		t.Fatalf("expected title to be kept, got %q", merged.Title)
	}
	if merged.DefaultPrimary != "808080" || merged.DefaultSecondary != "535353" {
		t.Fatalf("unexpected light primary/secondary %q/%q", merged.DefaultPrimary, merged.DefaultSecondary)
	}
	if merged.DarkAccent != "E0B000" || merged.DarkSecondary != base.DarkSecondary {
		t.Fatalf("unexpected dark roles %+v", merged.Resolve(Dark))
	}

	explicit := Merge(base, Theme{DefaultPrimary: "808080", DefaultSecondary: "101010"})
	if explicit.DefaultSecondary != "101010" {
		t.Fatalf("expected explicit secondary to win, got %q", explicit.DefaultSecondary)
	}
}
