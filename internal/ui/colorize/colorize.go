// Package colorize applies syntax highlighting to profile documents shown
// in the terminal.
package colorize

import (
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// getProfileLexer returns a lexer for the given profile format with fallbacks
func getProfileLexer(format string) chroma.Lexer {
	var candidates []string
	switch strings.ToLower(format) {
	case "json", ".json":
		candidates = []string{"json", "JSON"}
	default:
		candidates = []string{"yaml", "YAML"}
	}
	for _, name := range candidates {
		if lexer := lexers.Get(name); lexer != nil {
			return lexer
		}
	}
	return nil
}

// getProfileStyle returns the profile style with fallbacks
func getProfileStyle() *chroma.Style {
	// Try our custom style first, then fallbacks
	candidates := []string{"visistruct-dark", "dracula", "monokai"}
	for _, name := range candidates {
		if style := styles.Get(name); style != nil {
			return style
		}
	}
	return styles.Fallback
}

// getTerminalFormatter returns an appropriate terminal formatter
func getTerminalFormatter() chroma.Formatter {
	// Try high-color first, then fallback
	candidates := []string{"terminal16m", "terminal256"}
	for _, name := range candidates {
		if formatter := formatters.Get(name); formatter != nil {
			return formatter
		}
	}
	return formatters.Fallback
}

// Profile highlights a profile document. format is the file extension or
// format name ("yaml" or "json").
func Profile(src, format string) (string, error) {
	// Check if colors are disabled
	if os.Getenv("VISISTRUCT_NO_COLOR") != "" {
		return src, nil
	}

	lexer := getProfileLexer(format)
	if lexer == nil {
		// Return plain text if no lexer available
		return src, nil
	}

	// Make sure our custom style is registered
	_ = VisistructDark

	style := getProfileStyle()
	formatter := getTerminalFormatter()

	iterator, err := lexer.Tokenise(nil, src)
	if err != nil {
		return src, err
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return src, err
	}

	return buf.String(), nil
}
