package game

import (
	"encoding/json"
	"fmt"
	"math/rand"
)

// Board is the graph of intersections, connections and production areas for
// one game session. The topology is fixed once built; only ownership changes.
type Board struct {
	vertices  []*Vertex
	edges     []*Edge
	tiles     []*Tile
	edgeIndex map[edgeKey]EdgeID
}

// NewBoard builds a board with tile types and dice numbers shuffled by rng.
func NewBoard(rng *rand.Rand) *Board {
	b := newTopology()
	b.layTiles(rng)
	return b
}

// newTopology allocates the vertices and edges and caches all adjacency.
func newTopology() *Board {
	b := &Board{
		vertices:  make([]*Vertex, VertexCount),
		edges:     make([]*Edge, 0, 72),
		edgeIndex: make(map[edgeKey]EdgeID, 72),
	}

	for id := VertexID(0); id < VertexCount; id++ {
		b.vertices[id] = &Vertex{ID: id, Coord: vertexCoords[id]}
	}

	for _, v := range b.vertices {
		for _, n := range gridNeighbors(v.Coord.Row, v.Coord.Col) {
			nid := vertexIndex[n.Row][n.Col]
			v.Neighbors = append(v.Neighbors, nid)

			key := makeEdgeKey(v.ID, nid)
			if _, ok := b.edgeIndex[key]; ok {
				continue
			}
			e := &Edge{ID: EdgeID(len(b.edges)), A: key.lo, B: key.hi}
			b.edges = append(b.edges, e)
			b.edgeIndex[key] = e.ID
		}
	}

	for _, e := range b.edges {
		b.vertices[e.A].Edges = append(b.vertices[e.A].Edges, e.ID)
		b.vertices[e.B].Edges = append(b.vertices[e.B].Edges, e.ID)
	}
	for _, e := range b.edges {
		for _, end := range [2]VertexID{e.A, e.B} {
			for _, other := range b.vertices[end].Edges {
				if other != e.ID {
					e.Neighbors = append(e.Neighbors, other)
				}
			}
		}
	}

	return b
}

// layTiles shuffles the tile types and numbers and maps each tile onto the
// grid band by band.
func (b *Board) layTiles(rng *rand.Rand) {
	types := tileTypes
	numbers := tileNumbers
	rng.Shuffle(len(types), func(i, j int) { types[i], types[j] = types[j], types[i] })
	rng.Shuffle(len(numbers), func(i, j int) { numbers[i], numbers[j] = numbers[j], numbers[i] })
	b.placeTiles(types, numbers)
}

func (b *Board) placeTiles(types [TileCount]ResourceType, numbers [TileCount - 1]int) {
	b.tiles = make([]*Tile, 0, TileCount)
	next := 0
	for _, band := range tileBands {
		for i := 0; i < band.count; i++ {
			t := &Tile{
				ID:       TileID(len(b.tiles)),
				Resource: types[len(b.tiles)],
				Vertices: tileCorners(band.row, band.startCol+2*i),
			}
			if t.Resource.IsProducing() {
				t.Number = numbers[next]
				next++
			}
			b.tiles = append(b.tiles, t)
		}
	}
}

// Vertex returns the intersection at (row, col), or nil if out of bounds.
func (b *Board) Vertex(row, col int) *Vertex {
	id, ok := LookupVertex(row, col)
	if !ok {
		return nil
	}
	return b.vertices[id]
}

// VertexAt returns the intersection with the given ID.
func (b *Board) VertexAt(id VertexID) *Vertex {
	if id < 0 || int(id) >= len(b.vertices) {
		return nil
	}
	return b.vertices[id]
}

// Vertices returns all intersections in ID order.
func (b *Board) Vertices() []*Vertex {
	return b.vertices
}

// Edge returns the connection with the given ID.
func (b *Board) Edge(id EdgeID) *Edge {
	if id < 0 || int(id) >= len(b.edges) {
		return nil
	}
	return b.edges[id]
}

// Edges returns all connections in ID order.
func (b *Board) Edges() []*Edge {
	return b.edges
}

// EdgeBetween returns the connection joining a and b in either order, or nil.
func (b *Board) EdgeBetween(a, c VertexID) *Edge {
	id, ok := b.edgeIndex[makeEdgeKey(a, c)]
	if !ok {
		return nil
	}
	return b.edges[id]
}

// Tiles returns all production areas in insertion order.
func (b *Board) Tiles() []*Tile {
	return b.tiles
}

// TilesAt returns the tiles that include the given intersection.
func (b *Board) TilesAt(id VertexID) []*Tile {
	var out []*Tile
	for _, t := range b.tiles {
		for _, v := range t.Vertices {
			if v == id {
				out = append(out, t)
				break
			}
		}
	}
	return out
}

// boardJSON is the persisted form of a board. Adjacency is not stored; it is
// rebuilt from the fixed grid on load.
type boardJSON struct {
	Tiles    []tileJSON   `json:"tiles"`
	Vertices []vertexJSON `json:"vertices"`
	Roads    []roadJSON   `json:"roads"`
}

type tileJSON struct {
	Resource ResourceType `json:"resource"`
	Number   int          `json:"number"`
}

type vertexJSON struct {
	Coord
	Owner string `json:"owner"`
	City  bool   `json:"city,omitempty"`
}

type roadJSON struct {
	From  Coord  `json:"from"`
	To    Coord  `json:"to"`
	Owner string `json:"owner"`
}

// MarshalJSON encodes the tile layout and ownership.
func (b *Board) MarshalJSON() ([]byte, error) {
	out := boardJSON{
		Tiles:    make([]tileJSON, len(b.tiles)),
		Vertices: []vertexJSON{},
		Roads:    []roadJSON{},
	}
	for i, t := range b.tiles {
		out.Tiles[i] = tileJSON{Resource: t.Resource, Number: t.Number}
	}
	for _, v := range b.vertices {
		if v.Settled {
			out.Vertices = append(out.Vertices, vertexJSON{Coord: v.Coord, Owner: v.Owner, City: v.City})
		}
	}
	for _, e := range b.edges {
		if e.HasRoad() {
			out.Roads = append(out.Roads, roadJSON{
				From:  b.vertices[e.A].Coord,
				To:    b.vertices[e.B].Coord,
				Owner: e.RoadOwner,
			})
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON rebuilds the topology and restores tiles and ownership.
func (b *Board) UnmarshalJSON(data []byte) error {
	var in boardJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if len(in.Tiles) != TileCount {
		return fmt.Errorf("board: expected %d tiles, got %d", TileCount, len(in.Tiles))
	}

	fresh := newTopology()
	var types [TileCount]ResourceType
	var numbers [TileCount - 1]int
	next := 0
	for i, t := range in.Tiles {
		types[i] = t.Resource
		if t.Resource.IsProducing() {
			if next >= len(numbers) {
				return fmt.Errorf("board: too many producing tiles")
			}
			numbers[next] = t.Number
			next++
		}
	}
	fresh.placeTiles(types, numbers)

	for _, sv := range in.Vertices {
		v := fresh.Vertex(sv.Row, sv.Col)
		if v == nil || sv.Owner == "" {
			return fmt.Errorf("board: invalid settlement at %d,%d", sv.Row, sv.Col)
		}
		v.claim(sv.Owner)
		v.City = sv.City
	}
	for _, r := range in.Roads {
		from, ok1 := LookupVertex(r.From.Row, r.From.Col)
		to, ok2 := LookupVertex(r.To.Row, r.To.Col)
		e := fresh.EdgeBetween(from, to)
		if !ok1 || !ok2 || e == nil || r.Owner == "" {
			return fmt.Errorf("board: invalid road %v-%v", r.From, r.To)
		}
		e.build(r.Owner)
	}

	*b = *fresh
	return nil
}
