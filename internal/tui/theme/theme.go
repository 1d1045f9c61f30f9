// Package theme holds the color palettes the calculator can be drawn with.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme maps color roles to concrete colors. Each role names what it
// marks in the calculator, not its hue.
type Theme struct {
	Name          string
	Background    lipgloss.Color // Behind cards and the tab bar
	Surface       lipgloss.Color // Card interiors
	SurfaceHover  lipgloss.Color // Active tab
	SurfaceBright lipgloss.Color // Selected field or rate row
	Border        lipgloss.Color // Card frames and separators
	BorderAccent  lipgloss.Color // Help overlay frame
	TextDim       lipgloss.Color // Hints, read-only fields, chart axis
	TextMuted     lipgloss.Color // Field labels
	TextPrimary   lipgloss.Color // Field values
	Accent        lipgloss.Color // Section headings, tab keys, chart bars
	AccentBright  lipgloss.Color // Active tab text, field being edited
	Gain          lipgloss.Color // Gains and their chart bars
	Saved         lipgloss.Color // Settings saved
	Warning       lipgloss.Color // Stale rates, rejected settings
	Invalid       lipgloss.Color // Field text that does not evaluate
	HelpKey       lipgloss.Color // Key names in the help overlay
}

// Active is read by every renderer; change it with SetActive.
var Active = FlexokiDark

// FlexokiDark is the default.
var FlexokiDark = Theme{
	Name:          "flexoki-dark",
	Background:    lipgloss.Color("#100F0F"),
	Surface:       lipgloss.Color("#1C1B1A"),
	SurfaceHover:  lipgloss.Color("#282726"),
	SurfaceBright: lipgloss.Color("#343331"),
	Border:        lipgloss.Color("#403E3C"),
	BorderAccent:  lipgloss.Color("#3AA99F"),
	TextDim:       lipgloss.Color("#575653"),
	TextMuted:     lipgloss.Color("#878580"),
	TextPrimary:   lipgloss.Color("#FFFCF0"),
	Accent:        lipgloss.Color("#3AA99F"),
	AccentBright:  lipgloss.Color("#5BC8BE"),
	Gain:          lipgloss.Color("#879A39"),
	Saved:         lipgloss.Color("#A3B859"),
	Warning:       lipgloss.Color("#DA702C"),
	Invalid:       lipgloss.Color("#D14D41"),
	HelpKey:       lipgloss.Color("#24837B"),
}

// CatppuccinMocha is a pastel palette.
var CatppuccinMocha = Theme{
	Name:          "catppuccin-mocha",
	Background:    lipgloss.Color("#1E1E2E"),
	Surface:       lipgloss.Color("#313244"),
	SurfaceHover:  lipgloss.Color("#45475A"),
	SurfaceBright: lipgloss.Color("#585B70"),
	Border:        lipgloss.Color("#585B70"),
	BorderAccent:  lipgloss.Color("#89B4FA"),
	TextDim:       lipgloss.Color("#6C7086"),
	TextMuted:     lipgloss.Color("#A6ADC8"),
	TextPrimary:   lipgloss.Color("#CDD6F4"),
	Accent:        lipgloss.Color("#89B4FA"),
	AccentBright:  lipgloss.Color("#B4D0FB"),
	Gain:          lipgloss.Color("#A6E3A1"),
	Saved:         lipgloss.Color("#C6F6C1"),
	Warning:       lipgloss.Color("#FAB387"),
	Invalid:       lipgloss.Color("#F38BA8"),
	HelpKey:       lipgloss.Color("#94E2D5"),
}

// TokyoNight is a blue/purple palette.
var TokyoNight = Theme{
	Name:          "tokyo-night",
	Background:    lipgloss.Color("#1A1B26"),
	Surface:       lipgloss.Color("#24283B"),
	SurfaceHover:  lipgloss.Color("#343A52"),
	SurfaceBright: lipgloss.Color("#414868"),
	Border:        lipgloss.Color("#565F89"),
	BorderAccent:  lipgloss.Color("#7AA2F7"),
	TextDim:       lipgloss.Color("#565F89"),
	TextMuted:     lipgloss.Color("#A9B1D6"),
	TextPrimary:   lipgloss.Color("#C0CAF5"),
	Accent:        lipgloss.Color("#7AA2F7"),
	AccentBright:  lipgloss.Color("#A9C1FF"),
	Gain:          lipgloss.Color("#9ECE6A"),
	Saved:         lipgloss.Color("#B9E87A"),
	Warning:       lipgloss.Color("#FF9E64"),
	Invalid:       lipgloss.Color("#F7768E"),
	HelpKey:       lipgloss.Color("#7DCFFF"),
}

// Terminal sticks to the 16 ANSI colors.
var Terminal = Theme{
	Name:          "terminal",
	Background:    lipgloss.Color("0"),
	Surface:       lipgloss.Color("0"),
	SurfaceHover:  lipgloss.Color("8"),
	SurfaceBright: lipgloss.Color("8"),
	Border:        lipgloss.Color("8"),
	BorderAccent:  lipgloss.Color("6"),
	TextDim:       lipgloss.Color("8"),
	TextMuted:     lipgloss.Color("7"),
	TextPrimary:   lipgloss.Color("15"),
	Accent:        lipgloss.Color("6"),
	AccentBright:  lipgloss.Color("14"),
	Gain:          lipgloss.Color("2"),
	Saved:         lipgloss.Color("10"),
	Warning:       lipgloss.Color("3"),
	Invalid:       lipgloss.Color("1"),
	HelpKey:       lipgloss.Color("6"),
}

// All lists the selectable themes in menu order.
var All = []Theme{FlexokiDark, CatppuccinMocha, TokyoNight, Terminal}

// Lookup finds a theme by name.
func Lookup(name string) (Theme, bool) {
	for _, t := range All {
		if t.Name == name {
			return t, true
		}
	}
	return Theme{}, false
}

// ByName is Lookup falling back to FlexokiDark.
func ByName(name string) Theme {
	if t, ok := Lookup(name); ok {
		return t
	}
	return FlexokiDark
}

// Names returns the theme names in menu order.
func Names() []string {
	names := make([]string, len(All))
	for i, t := range All {
		names[i] = t.Name
	}
	return names
}

// SetActive switches the active theme. Unknown names select FlexokiDark.
func SetActive(name string) {
	Active = ByName(name)
}
