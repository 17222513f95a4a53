package game

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// Render writes a text picture of the board: one line per vertex row with
// roads between horizontal neighbors, one line of vertical connections
// between rows, then the tile list. Settlements show the owner's initial in
// lower case and cities in upper case.
func (b *Board) Render(w io.Writer) error {
	var buf bytes.Buffer

	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			buf.WriteString(b.vertexGlyph(r, c))
			if c == Cols-1 {
				break
			}
			buf.WriteString(b.horizontalGlyph(r, c))
		}
		buf.WriteByte('\n')

		if r == Rows-1 {
			break
		}
		for c := 0; c < Cols; c++ {
			buf.WriteString(b.verticalGlyph(r, c))
			if c < Cols-1 {
				buf.WriteString("   ")
			}
		}
		buf.WriteByte('\n')
	}

	buf.WriteByte('\n')
	for _, t := range b.tiles {
		first := vertexCoords[t.Vertices[0]]
		if t.Number == 0 {
			fmt.Fprintf(&buf, "tile %2d  %-6s  --  @%d,%d\n", t.ID, t.Resource, first.Row, first.Col)
			continue
		}
		fmt.Fprintf(&buf, "tile %2d  %-6s  %2d  @%d,%d\n", t.ID, t.Resource, t.Number, first.Row, first.Col)
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// String returns the text rendering of the board.
func (b *Board) String() string {
	var sb strings.Builder
	_ = b.Render(&sb)
	return sb.String()
}

func ownerInitial(id string) rune {
	for _, r := range id {
		return r
	}
	return '?'
}

func (b *Board) vertexGlyph(r, c int) string {
	v := b.Vertex(r, c)
	switch {
	case v == nil:
		return " "
	case v.City:
		return string(unicode.ToUpper(ownerInitial(v.Owner)))
	case v.Settled:
		return string(unicode.ToLower(ownerInitial(v.Owner)))
	}
	return "o"
}

func (b *Board) horizontalGlyph(r, c int) string {
	a, ok1 := LookupVertex(r, c)
	z, ok2 := LookupVertex(r, c+1)
	if !ok1 || !ok2 {
		return "   "
	}
	return b.connectionGlyph(b.EdgeBetween(a, z), "---", " - ")
}

func (b *Board) verticalGlyph(r, c int) string {
	if (r+c)%2 != 0 {
		return " "
	}
	a, ok1 := LookupVertex(r, c)
	z, ok2 := LookupVertex(r+1, c)
	if !ok1 || !ok2 {
		return " "
	}
	return b.connectionGlyph(b.EdgeBetween(a, z), "|", ":")
}

func (b *Board) connectionGlyph(e *Edge, road, empty string) string {
	if e == nil {
		return strings.Repeat(" ", len(empty))
	}
	if e.HasRoad() {
		return road
	}
	return empty
}
