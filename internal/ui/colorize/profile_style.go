package colorize

import (
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
)

func init() {
	// Register our custom profile style on package initialization
	_ = VisistructDark
}

// VisistructDark is a custom style for profile documents matching the
// annotation color wheel
var VisistructDark = styles.Register(chroma.MustNewStyle("visistruct-dark", chroma.StyleEntries{
	chroma.Text:       "#FFFFFF",    // Default text white
	chroma.Background: "bg:#1e1e1e", // Dark background
	chroma.Comment:    "#7C7C7C",    // Gray comments

	// Mapping keys (field names) in gold
	chroma.NameTag:       "#FFD700",
	chroma.NameAttribute: "#FFD700",
	chroma.Keyword:       "#FFD700",

	// Numbers
	chroma.LiteralNumber:        "#FF5F87", // Decimal numbers in pink
	chroma.LiteralNumberHex:     "#FF5F87", // Hex numbers in pink
	chroma.LiteralNumberInteger: "#FF5F87", // Integer literals in pink
	chroma.LiteralNumberFloat:   "#FF5F87", // Float literals in pink

	// Strings (type names, const values)
	chroma.String:       "#EACD53", // Strings in golden
	chroma.StringDouble: "#EACD53",

	// Operators and punctuation
	chroma.Operator:    "#FFFFFF",
	chroma.Punctuation: "#FFFFFF",
}))
