// Package color decides whether pulsemon output is styled.
//
// It honours NO_COLOR (https://no-color.org/) and plain-text output when the
// destination is a pipe or a file. When color is off, lipgloss is switched to
// the Ascii profile so every styled render comes out as plain text.
package color

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Disabled reports whether output written to f should carry no escape
// sequences. lookup is normally os.LookupEnv.
func Disabled(lookup func(string) (string, bool), f *os.File) bool {
	// Any value counts, including the empty string.
	if _, ok := lookup("NO_COLOR"); ok {
		return true
	}
	fd := f.Fd()
	return !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd)
}

// Apply configures the global lipgloss renderer for output to f and returns
// true if color stays enabled.
func Apply(f *os.File) bool {
	if Disabled(os.LookupEnv, f) {
		lipgloss.SetColorProfile(termenv.Ascii)
		return false
	}
	return true
}

// ForceDisable switches lipgloss to the Ascii profile unconditionally.
func ForceDisable() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// StripANSI removes CSI escape sequences from s.
func StripANSI(s string) string {
	result := make([]byte, 0, len(s))
	inEscape := false
	for i := 0; i < len(s); i++ {
		if inEscape {
			if (s[i] >= 'a' && s[i] <= 'z') || (s[i] >= 'A' && s[i] <= 'Z') || s[i] == '~' {
				inEscape = false
			}
			continue
		}
		if s[i] == '\x1b' {
			inEscape = true
			continue
		}
		result = append(result, s[i])
	}
	return string(result)
}
