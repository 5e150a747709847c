package img2ascii

import (
	"fmt"
	"strings"

	"github.com/wbrown/img2ascii/imageutil"
)

// ESC is the ANSI escape character.
const ESC = "\u001b"

// RenderToANSI renders a cell grid as lines of truecolor ANSI text for
// terminal preview. Adjacent cells with the same display color are
// coalesced into a single escape sequence, which keeps frame payloads
// small enough for animation in a terminal. Each line ends with a
// color reset.
func RenderToANSI(cells [][]Cell) string {
	var sb strings.Builder
	for _, row := range cells {
		var current imageutil.RGB
		haveColor := false
		for _, cell := range row {
			if !haveColor || cell.Color != current {
				current = cell.Color
				haveColor = true
				fmt.Fprintf(&sb, "%s[38;2;%d;%d;%dm",
					ESC, current.R, current.G, current.B)
			}
			sb.WriteRune(cell.Glyph)
		}
		sb.WriteString(ESC + "[0m\n")
	}
	return sb.String()
}

// RenderToText renders a cell grid as plain text, one line per row,
// discarding color. Useful for diffing glyph output in tests.
func RenderToText(cells [][]Cell) string {
	var sb strings.Builder
	for _, row := range cells {
		for _, cell := range row {
			sb.WriteRune(cell.Glyph)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
