// Package render turns a FieldAnnotation tree into terminal output: an
// indented field tree and a hex dump whose bytes are colored by the field
// that owns them. Colors rotate through a fixed wheel so adjacent fields
// stay distinguishable.
package render

import (
	"fmt"
	"image/color"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"

	"github.com/danofsteel32/visistruct"
)

// The original wheel: cyan, green, blue, yellow, purple, red.
var palette = []color.Color{
	lipgloss.Color("6"),
	lipgloss.Color("2"),
	lipgloss.Color("4"),
	lipgloss.Color("3"),
	lipgloss.Color("5"),
	lipgloss.Color("1"),
}

var boldStyle = lipgloss.NewStyle().Bold(true)

// Enabled reports whether color output is on. VISISTRUCT_NO_COLOR
// disables it, useful for piping and tests.
func Enabled() bool {
	return os.Getenv("VISISTRUCT_NO_COLOR") == ""
}

type row struct {
	text  string
	color int // palette index, -1 for none
	depth int
}

type span struct {
	offset int
	size   int
	color  int
}

// flatten assigns every node below the root a color in document order and
// collects display rows plus the byte spans leaves own.
func flatten(root *visistruct.FieldAnnotation) ([]row, []span) {
	var rows []row
	var spans []span
	next := 0
	root.Walk(func(n *visistruct.FieldAnnotation, depth int) {
		if depth == 0 {
			return
		}
		color := next % len(palette)
		next++
		leaf := len(n.Children) == 0
		var text string
		if leaf {
			text = fmt.Sprintf("%s %s : %s | sz=%d offset=%d",
				n.Name, n.Kind, formatValue(n.Value), n.Size, n.Offset)
		} else {
			text = fmt.Sprintf("%s %s | sz=%d offset=%d",
				n.Name, n.Kind, n.Size, n.Offset)
		}
		rows = append(rows, row{text: text, color: color, depth: depth})
		// padding bytes stay unclaimed so the hex dump leaves them unstyled
		if leaf && n.Size > 0 && n.Kind != "Padding" {
			spans = append(spans, span{offset: n.Offset, size: n.Size, color: color})
		}
	})
	return rows, spans
}

// Tree renders the annotation tree, one row per field, two spaces of
// indentation per nesting level.
func Tree(root *visistruct.FieldAnnotation) string {
	rows, _ := flatten(root)
	var b strings.Builder

	header := fmt.Sprintf("%s %s | sz=%d", root.Name, root.Kind, root.Size)
	if Enabled() {
		header = boldStyle.Render(header)
	}
	b.WriteString(header)
	b.WriteByte('\n')

	for _, r := range rows {
		line := strings.Repeat("  ", r.depth) + r.text
		if Enabled() {
			line = lipgloss.NewStyle().Foreground(palette[r.color]).Render(line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "<nil>"
	case []byte:
		return fmt.Sprintf("0x%x", val)
	case string:
		return val
	case float64:
		return fmt.Sprintf("%g", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
