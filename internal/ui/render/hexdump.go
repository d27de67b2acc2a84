package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"

	"github.com/danofsteel32/visistruct"
)

// DefaultHexWidth is the bytes-per-row fallback when no width is given.
const DefaultHexWidth = 16

// HexDump renders raw as rows of width hex cells, each byte styled with
// the color of the leaf field that owns it. Bytes no leaf claims (padding,
// skipped regions) stay unstyled. The final row is padded with ".." cells
// so every row has the same width.
func HexDump(root *visistruct.FieldAnnotation, raw []byte, width int) string {
	if width <= 0 {
		width = DefaultHexWidth
	}
	_, spans := flatten(root)

	var b strings.Builder
	cur := 0 // index into spans
	for i := 0; i < len(raw); i += width {
		for j := i; j < i+width; j++ {
			if j >= len(raw) {
				b.WriteString(" .. ")
				continue
			}
			for cur < len(spans) && spans[cur].offset+spans[cur].size <= j {
				cur++
			}
			cell := fmt.Sprintf(" %02x ", raw[j])
			if cur < len(spans) && j >= spans[cur].offset && Enabled() {
				cell = lipgloss.NewStyle().Foreground(palette[spans[cur].color]).Render(cell)
			}
			b.WriteString(cell)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
