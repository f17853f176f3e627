package humane

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Color output modes accepted by [Config].
const (
	// ColorAuto colors output when the sink is a terminal and NO_COLOR is
	// unset.
	ColorAuto = "auto"
	// ColorAlways colors output unconditionally.
	ColorAlways = "always"
	// ColorNever renders plain text.
	ColorNever = "never"
)

// colorAttrs maps color tokens to their ANSI foreground attributes.
var colorAttrs = map[string]color.Attribute{
	"black":      color.FgBlack,
	"red":        color.FgRed,
	"green":      color.FgGreen,
	"yellow":     color.FgYellow,
	"blue":       color.FgBlue,
	"magenta":    color.FgMagenta,
	"cyan":       color.FgCyan,
	"white":      color.FgWhite,
	"hi-black":   color.FgHiBlack,
	"hi-red":     color.FgHiRed,
	"hi-green":   color.FgHiGreen,
	"hi-yellow":  color.FgHiYellow,
	"hi-blue":    color.FgHiBlue,
	"hi-magenta": color.FgHiMagenta,
	"hi-cyan":    color.FgHiCyan,
	"hi-white":   color.FgHiWhite,
}

// ParseColor resolves a color token, case-insensitively, to a renderer.
func ParseColor(token string) (*color.Color, error) {
	attr, ok := colorAttrs[strings.ToLower(token)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColor, token)
	}

	return color.New(attr), nil
}

// ColorTokens returns all recognized color tokens, sorted.
func ColorTokens() []string {
	return slices.Sorted(maps.Keys(colorAttrs))
}

// ColorModes returns the color output modes accepted by [Config].
func ColorModes() []string {
	return []string{ColorAuto, ColorAlways, ColorNever}
}

// DefaultPalette returns the default severity-to-color mapping. Hosts that
// want to tweak a single severity can start from this map.
func DefaultPalette() map[string]string {
	return map[string]string{
		"warning": "yellow",
		"info":    "green",
		"debug":   "blue",
		"notice":  "cyan",
		"fatal":   "red",
	}
}

// colorEnabled reports whether colored output should be used for w under the
// given mode.
func colorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}

	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}
