package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/danofsteel32/visistruct/internal/visistruct/styles"
)

const profileReference = `# Profile format

A profile is a YAML or JSON document describing a binary layout. The top
level has a ` + "`name`" + ` and a ` + "`fields`" + ` list; each field has a
` + "`name`" + ` and a ` + "`type`" + `.

## Leaf types

- ` + "`uint8` .. `uint64`, `int8` .. `int64`, `float32`, `float64`" + ` -
  fixed-width numbers. ` + "`endian: big`" + ` overrides the little-endian
  default.
- ` + "`varint`" + ` - unsigned LEB128 variable-length integer.
- ` + "`const`" + ` - expected bytes, given as literal text or ` + "`0x`" + `-prefixed
  hex in ` + "`value`" + `. A mismatch fails the parse.
- ` + "`enum`" + ` - integer (` + "`base`" + `, default uint8) mapped through
  ` + "`values`" + ` to symbolic names.
- ` + "`cstring`" + ` - NUL-terminated string; the terminator counts toward the
  field's size. ` + "`encoding`" + `: ascii, utf8, utf16le, utf32le.
- ` + "`paddedstring`" + ` - fixed ` + "`size`" + ` bytes, NUL padding stripped.
- ` + "`pascalstring`" + ` - varint byte-length prefix, then the string data.
- ` + "`bytes`" + ` - raw slice of ` + "`size`" + ` bytes.
- ` + "`padding`" + ` - ` + "`size`" + ` bytes skipped without interpretation.

## Composite types

- ` + "`struct`" + ` - nested ` + "`fields`" + ` list.
- ` + "`array`" + ` - repeats ` + "`of`" + ` either ` + "`count`" + ` times or as many
  times as the earlier sibling named by ` + "`count_of`" + ` parsed to.
- ` + "`switch`" + ` - picks a branch from ` + "`cases`" + ` by the value of the
  earlier sibling named by ` + "`on`" + `; ` + "`default`" + ` is optional.
- ` + "`if`" + ` - parses ` + "`inner`" + ` only when the sibling named by ` + "`on`" + `
  is truthy; otherwise consumes zero bytes.
- ` + "`peek`" + ` - parses ` + "`inner`" + ` and rewinds, consuming zero bytes.

## Example

` + "```yaml" + `
name: header
fields:
  - {name: magic, type: const, value: FAKE}
  - {name: version, type: uint32}
  - {name: title, type: cstring, encoding: ascii}
  - {name: n_records, type: uint16}
  - name: records
    type: array
    count_of: n_records
    of:
      type: struct
      fields:
        - {name: id, type: uint16}
        - {name: score, type: float32}
` + "```" + `
`

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Show the profile format reference",
	RunE: func(cmd *cobra.Command, args []string) error {
		width := 80
		if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
			width = w
		}
		r := styles.GetMarkdownRenderer(width)
		out, err := r.Render(profileReference)
		if err != nil {
			// Rendering is cosmetic; show the plain markdown instead.
			fmt.Print(profileReference)
			return nil
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(docsCmd)
}
