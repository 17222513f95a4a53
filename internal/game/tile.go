package game

// TileID indexes a production area in the board arena.
type TileID int

// Tile is a hexagonal production area touching six intersections.
type Tile struct {
	ID       TileID       `json:"id"`
	Resource ResourceType `json:"resource"`
	Number   int          `json:"number"` // 2..12, 0 for the desert
	Vertices [6]VertexID  `json:"vertices"`
}

// Produces reports whether this tile yields on the given dice sum.
func (t *Tile) Produces(sum int) bool {
	return t.Resource.IsProducing() && t.Number != 0 && t.Number == sum
}

// TileCount is the number of production areas on the board, desert included.
const TileCount = 19

// tileTypes is the fixed multiset of tile types shuffled onto the board.
var tileTypes = [TileCount]ResourceType{
	ResourceTree, ResourceTree, ResourceTree, ResourceTree,
	ResourceClay, ResourceClay, ResourceClay,
	ResourceWool, ResourceWool, ResourceWool, ResourceWool,
	ResourceCrop, ResourceCrop, ResourceCrop, ResourceCrop,
	ResourceIron, ResourceIron, ResourceIron,
	ResourceDesert,
}

// tileNumbers is the fixed multiset of dice values for non-desert tiles.
var tileNumbers = [TileCount - 1]int{2, 3, 3, 4, 4, 5, 5, 6, 6, 8, 8, 9, 9, 10, 10, 11, 11, 12}

// tileBands lists, for each pair of vertex rows, the column where the first
// tile starts and how many tiles sit in that band. Tiles step two columns.
var tileBands = [...]struct {
	row, startCol, count int
}{
	{0, 2, 3},
	{1, 1, 4},
	{2, 0, 5},
	{3, 1, 4},
	{4, 2, 3},
}

// tileCorners returns the six intersections covered by a tile whose top-left
// corner is (row, col).
func tileCorners(row, col int) [6]VertexID {
	var out [6]VertexID
	i := 0
	for dc := 0; dc < 3; dc++ {
		for dr := 0; dr < 2; dr++ {
			out[i] = vertexIndex[row+dr][col+dc]
			i++
		}
	}
	return out
}
