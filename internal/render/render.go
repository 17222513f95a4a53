// Package render draws a board as a raster image.
package render

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/colornames"

	"settlers/internal/game"
)

// Scheme defines how tiles, roads and buildings are coloured.
type Scheme struct {
	Background color.Color
	Outline    color.Color
	Text       color.Color
	Empty      color.Color // Unowned intersections
	Tiles      map[game.ResourceType]color.Color
	Players    map[game.PlayerColor]color.Color
}

// DefaultScheme returns a reasonable default Scheme.
func DefaultScheme() *Scheme {
	return &Scheme{
		Background: colornames.Steelblue,
		Outline:    colornames.Black,
		Text:       colornames.Black,
		Empty:      colornames.Lightgray,
		Tiles: map[game.ResourceType]color.Color{
			game.ResourceTree:   colornames.Forestgreen,
			game.ResourceClay:   colornames.Firebrick,
			game.ResourceWool:   colornames.Lightgreen,
			game.ResourceCrop:   colornames.Gold,
			game.ResourceIron:   colornames.Slategray,
			game.ResourceDesert: colornames.Tan,
		},
		Players: map[game.PlayerColor]color.Color{
			game.ColorRed:    colornames.Red,
			game.ColorBlue:   colornames.Royalblue,
			game.ColorOrange: colornames.Darkorange,
			game.ColorWhite:  colornames.White,
		},
	}
}

// Options controls image geometry.
type Options struct {
	Side   float64 // Hex side length in pixels
	Margin float64
	Scheme *Scheme
}

// DefaultOptions returns a 60px hex layout with the default scheme.
func DefaultOptions() Options {
	return Options{Side: 60, Margin: 40, Scheme: DefaultScheme()}
}

// Renderer draws boards with fixed options.
type Renderer struct {
	opts Options
	dx   float64 // Horizontal distance between adjacent columns
}

// New creates a Renderer. A zero Side, negative Margin or nil Scheme takes
// its default.
func New(opts Options) *Renderer {
	def := DefaultOptions()
	if opts.Side <= 0 {
		opts.Side = def.Side
	}
	if opts.Margin < 0 {
		opts.Margin = def.Margin
	}
	if opts.Scheme == nil {
		opts.Scheme = def.Scheme
	}
	return &Renderer{opts: opts, dx: math.Sqrt(3) / 2 * opts.Side}
}

// Size returns the image dimensions in pixels.
func (r *Renderer) Size() (int, int) {
	s := r.opts.Side
	w := 2*r.opts.Margin + float64(game.Cols-1)*r.dx
	h := 2*r.opts.Margin + float64(game.Rows-1)*1.5*s + 0.5*s
	return int(math.Ceil(w)), int(math.Ceil(h))
}

// Point returns the pixel position of the intersection at (row, col).
// Intersections that connect downward sit half a side lower than their row.
func (r *Renderer) Point(row, col int) (float64, float64) {
	s := r.opts.Side
	x := r.opts.Margin + float64(col)*r.dx
	y := r.opts.Margin + float64(row)*1.5*s
	if (row+col)%2 == 0 {
		y += 0.5 * s
	}
	return x, y
}

// TileCenter returns the pixel centre of a tile.
func (r *Renderer) TileCenter(b *game.Board, t *game.Tile) (float64, float64) {
	var sx, sy float64
	for _, id := range t.Vertices {
		c := b.VertexAt(id).Coord
		x, y := r.Point(c.Row, c.Col)
		sx += x
		sy += y
	}
	return sx / 6, sy / 6
}

// hexOrder walks a tile's corners around its outline. Corners are stored
// column by column, top before bottom.
var hexOrder = [6]int{0, 2, 4, 5, 3, 1}

// Image draws the board. owners maps player IDs to their colour; buildings
// of unknown players are drawn in the outline colour.
func (r *Renderer) Image(b *game.Board, owners map[string]game.PlayerColor) image.Image {
	w, h := r.Size()
	dc := gg.NewContext(w, h)
	sc := r.opts.Scheme
	s := r.opts.Side

	dc.SetColor(sc.Background)
	dc.Clear()

	for _, t := range b.Tiles() {
		for _, i := range hexOrder {
			c := b.VertexAt(t.Vertices[i]).Coord
			dc.LineTo(r.Point(c.Row, c.Col))
		}
		dc.ClosePath()
		dc.SetColor(sc.Tiles[t.Resource])
		dc.FillPreserve()
		dc.SetColor(sc.Outline)
		dc.SetLineWidth(1)
		dc.Stroke()

		if t.Number == 0 {
			continue
		}
		cx, cy := r.TileCenter(b, t)
		dc.DrawCircle(cx, cy, 0.3*s)
		dc.SetColor(colornames.Ivory)
		dc.Fill()
		dc.SetColor(sc.Text)
		if t.Number == 6 || t.Number == 8 {
			dc.SetColor(colornames.Darkred)
		}
		dc.DrawStringAnchored(fmt.Sprint(t.Number), cx, cy, 0.5, 0.35)
	}

	for _, e := range b.Edges() {
		if !e.HasRoad() {
			continue
		}
		a, c := b.VertexAt(e.A).Coord, b.VertexAt(e.B).Coord
		x1, y1 := r.Point(a.Row, a.Col)
		x2, y2 := r.Point(c.Row, c.Col)
		dc.SetLineCapRound()
		dc.SetLineWidth(0.16 * s)
		dc.SetColor(sc.Outline)
		dc.DrawLine(x1, y1, x2, y2)
		dc.Stroke()
		dc.SetLineWidth(0.1 * s)
		dc.SetColor(r.playerColor(owners, e.RoadOwner))
		dc.DrawLine(x1, y1, x2, y2)
		dc.Stroke()
	}

	for _, v := range b.Vertices() {
		x, y := r.Point(v.Coord.Row, v.Coord.Col)
		switch {
		case v.City:
			size := 0.32 * s
			dc.DrawRectangle(x-size/2, y-size/2, size, size)
		case v.Settled:
			dc.DrawCircle(x, y, 0.14*s)
		default:
			dc.DrawCircle(x, y, 0.05*s)
			dc.SetColor(sc.Empty)
			dc.Fill()
			continue
		}
		dc.SetColor(r.playerColor(owners, v.Owner))
		dc.FillPreserve()
		dc.SetColor(sc.Outline)
		dc.SetLineWidth(1.5)
		dc.Stroke()
	}

	return dc.Image()
}

func (r *Renderer) playerColor(owners map[string]game.PlayerColor, playerID string) color.Color {
	if pc, ok := owners[playerID]; ok {
		if c, ok := r.opts.Scheme.Players[pc]; ok {
			return c
		}
	}
	return r.opts.Scheme.Outline
}

// WritePNG draws the board and encodes it as PNG.
func (r *Renderer) WritePNG(w io.Writer, b *game.Board, owners map[string]game.PlayerColor) error {
	img := r.Image(b, owners)
	return gg.NewContextForImage(img).EncodePNG(w)
}

// Owners collects the colour of every player in a game.
func Owners(g *game.GameState) map[string]game.PlayerColor {
	out := make(map[string]game.PlayerColor, len(g.Players))
	for id, p := range g.Players {
		out[id] = p.Color
	}
	return out
}
