package theme

import (
	"fmt"

	"folio/internal/colors"
)

// Role names one of the eight stored theme colors.
type Role string

const (
	RoleDefaultBackground Role = "defaultBackground"
	RoleDefaultPrimary    Role = "defaultPrimary"
	RoleDefaultSecondary  Role = "defaultSecondary"
	RoleDefaultAccent     Role = "defaultAccent"
	RoleDarkBackground    Role = "darkBackground"
	RoleDarkPrimary       Role = "darkPrimary"
	RoleDarkSecondary     Role = "darkSecondary"
	RoleDarkAccent        Role = "darkAccent"
)

var allRoles = []Role{
	RoleDefaultBackground,
	RoleDefaultPrimary,
	RoleDefaultSecondary,
	RoleDefaultAccent,
	RoleDarkBackground,
	RoleDarkPrimary,
	RoleDarkSecondary,
	RoleDarkAccent,
}

// Roles lists every role in storage order.
func Roles() []Role {
	roles := make([]Role, len(allRoles))
	copy(roles, allRoles)
	return roles
}

// Hard defaults used when synthesis cannot produce a role.
const (
	DefaultBackgroundHex = "FFFFFF"
	DefaultPrimaryHex    = "37454E"
	DefaultAccentHex     = "3488D1"
	DarkBackgroundHex    = "050505"
	DarkPrimaryHex       = "EEEEEE"
	DarkAccentHex        = "459FFF"
)

type Variant int

const (
	Light Variant = iota
	Dark
)

func (v Variant) String() string {
	if v == Dark {
		return "dark"
	}
	return "light"
}

// ParseVariant accepts "light", "default" (or empty) and "dark".
func ParseVariant(value string) (Variant, error) {
	switch value {
	case "", "light", "default":
		return Light, nil
	case "dark":
		return Dark, nil
	default:
		return Light, fmt.Errorf("unknown variant %q", value)
	}
}

// Theme holds the eight synthesized colors as RRGGBB strings. Which four are
// active is chosen by the reader through Resolve.
type Theme struct {
	Title             string `json:"title" yaml:"title" toml:"title"`
	DefaultBackground string `json:"defaultBackground" yaml:"defaultBackground" toml:"defaultBackground"`
	DefaultPrimary    string `json:"defaultPrimary" yaml:"defaultPrimary" toml:"defaultPrimary"`
	DefaultSecondary  string `json:"defaultSecondary" yaml:"defaultSecondary" toml:"defaultSecondary"`
	DefaultAccent     string `json:"defaultAccent" yaml:"defaultAccent" toml:"defaultAccent"`
	DarkBackground    string `json:"darkBackground" yaml:"darkBackground" toml:"darkBackground"`
	DarkPrimary       string `json:"darkPrimary" yaml:"darkPrimary" toml:"darkPrimary"`
	DarkSecondary     string `json:"darkSecondary" yaml:"darkSecondary" toml:"darkSecondary"`
	DarkAccent        string `json:"darkAccent" yaml:"darkAccent" toml:"darkAccent"`
}

// Palette is the active set of four colors for one variant.
type Palette struct {
	Background string `json:"background" yaml:"background" toml:"background"`
	Primary    string `json:"primary" yaml:"primary" toml:"primary"`
	Secondary  string `json:"secondary" yaml:"secondary" toml:"secondary"`
	Accent     string `json:"accent" yaml:"accent" toml:"accent"`
}

func (t Theme) Resolve(variant Variant) Palette {
	if variant == Dark {
		return Palette{
			Background: t.DarkBackground,
			Primary:    t.DarkPrimary,
			Secondary:  t.DarkSecondary,
			Accent:     t.DarkAccent,
		}
	}

	return Palette{
		Background: t.DefaultBackground,
		Primary:    t.DefaultPrimary,
		Secondary:  t.DefaultSecondary,
		Accent:     t.DefaultAccent,
	}
}

func (t Theme) Get(role Role) string {
	switch role {
	case RoleDefaultBackground:
		return t.DefaultBackground
	case RoleDefaultPrimary:
		return t.DefaultPrimary
	case RoleDefaultSecondary:
		return t.DefaultSecondary
	case RoleDefaultAccent:
		return t.DefaultAccent
	case RoleDarkBackground:
		return t.DarkBackground
	case RoleDarkPrimary:
		return t.DarkPrimary
	case RoleDarkSecondary:
		return t.DarkSecondary
	case RoleDarkAccent:
		return t.DarkAccent
	default:
		return ""
	}
}

func (t *Theme) set(role Role, hex string) {
	switch role {
	case RoleDefaultBackground:
		t.DefaultBackground = hex
	case RoleDefaultPrimary:
		t.DefaultPrimary = hex
	case RoleDefaultSecondary:
		t.DefaultSecondary = hex
	case RoleDefaultAccent:
		t.DefaultAccent = hex
	case RoleDarkBackground:
		t.DarkBackground = hex
	case RoleDarkPrimary:
		t.DarkPrimary = hex
	case RoleDarkSecondary:
		t.DarkSecondary = hex
	case RoleDarkAccent:
		t.DarkAccent = hex
	}
}

// Complete reports whether every role holds a valid RRGGBB value.
func (t Theme) Complete() bool {
	return t.Validate() == nil
}

func (t Theme) Validate() error {
	for _, role := range allRoles {
		value := t.Get(role)
		if value == "" {
			return fmt.Errorf("theme %q: %s is unset", t.Title, role)
		}
		if !colors.IsHex(value) {
			return fmt.Errorf("theme %q: %s has invalid value %q", t.Title, role, value)
		}
	}
	return nil
}

// Color parses one role. Unset or invalid roles return an error.
func (t Theme) Color(role Role) (colors.Color, error) {
	return colors.ParseHex(t.Get(role))
}

// Merge copies the set roles of over onto base. A primary that changes
// without its secondary also re-derives that secondary.
func Merge(base Theme, over Theme) Theme {
	merged := base
	if over.Title != "" {
		merged.Title = over.Title
	}
	for _, role := range allRoles {
		if value := over.Get(role); value != "" {
			merged.set(role, value)
		}
	}

	if over.DefaultPrimary != "" && over.DefaultSecondary == "" {
		if primary, err := colors.ParseHex(over.DefaultPrimary); err == nil {
			merged.DefaultSecondary = primary.OverlayBlack().Hex()
		}
	}
	if over.DarkPrimary != "" && over.DarkSecondary == "" {
		if primary, err := colors.ParseHex(over.DarkPrimary); err == nil {
			merged.DarkSecondary = primary.OverlayWhite().Hex()
		}
	}

	return merged
}
