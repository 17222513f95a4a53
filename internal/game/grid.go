package game

// Board grid dimensions. Vertices live on a Rows x Cols matrix; the corners
// of the matrix are holes that do not exist on the board.
const (
	Rows = 6
	Cols = 11
)

// VertexCount is the number of real intersections on the board.
const VertexCount = Rows*Cols - 12

// Coord is a (row, col) position in the vertex matrix.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// vertexIndex maps every matrix cell to a VertexID, or NoVertex for holes.
// It is derived once from the fixed grid and never changes.
var vertexIndex [Rows][Cols]VertexID

// vertexCoords is the inverse of vertexIndex.
var vertexCoords [VertexCount]Coord

func init() {
	next := VertexID(0)
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			if isHole(r, c) {
				vertexIndex[r][c] = NoVertex
				continue
			}
			vertexIndex[r][c] = next
			vertexCoords[next] = Coord{Row: r, Col: c}
			next++
		}
	}
}

func isHole(row, col int) bool {
	switch row {
	case 0, Rows - 1:
		return col == 0 || col == 1 || col == Cols-2 || col == Cols-1
	case 1, Rows - 2:
		return col == 0 || col == Cols-1
	}
	return false
}

// IsOutOfBounds reports whether (row, col) is outside the matrix or on a hole.
func IsOutOfBounds(row, col int) bool {
	if row < 0 || row >= Rows || col < 0 || col >= Cols {
		return true
	}
	return isHole(row, col)
}

// LookupVertex returns the VertexID at (row, col).
func LookupVertex(row, col int) (VertexID, bool) {
	if IsOutOfBounds(row, col) {
		return NoVertex, false
	}
	return vertexIndex[row][col], true
}

// gridNeighbors returns the coordinates adjacent to (row, col). Horizontal
// neighbors are always candidates; the single vertical neighbor points down
// when row+col is even and up otherwise.
func gridNeighbors(row, col int) []Coord {
	candidates := [3]Coord{
		{row, col - 1},
		{row, col + 1},
	}
	if (row+col)%2 == 0 {
		candidates[2] = Coord{row + 1, col}
	} else {
		candidates[2] = Coord{row - 1, col}
	}

	out := make([]Coord, 0, 3)
	for _, c := range candidates {
		if !IsOutOfBounds(c.Row, c.Col) {
			out = append(out, c)
		}
	}
	return out
}
