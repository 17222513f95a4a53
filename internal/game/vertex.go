package game

// VertexID indexes an intersection in the board arena.
type VertexID int

// NoVertex marks a hole in the vertex matrix.
const NoVertex VertexID = -1

// Vertex is an intersection where settlements and cities are built.
type Vertex struct {
	ID        VertexID   `json:"id"`
	Coord     Coord      `json:"coord"`
	Owner     string     `json:"owner,omitempty"` // Player ID, empty if unowned
	Settled   bool       `json:"settled"`
	City      bool       `json:"city"`
	Neighbors []VertexID `json:"-"`
	Edges     []EdgeID   `json:"-"`
}

// IsOwned returns whether any player owns this vertex.
func (v *Vertex) IsOwned() bool {
	return v.Owner != ""
}

// claim marks the vertex as a settlement of playerID.
func (v *Vertex) claim(playerID string) {
	if playerID == "" {
		panic("game: claiming vertex for empty player")
	}
	v.Owner = playerID
	v.Settled = true
}

// upgrade turns an owned settlement into a city.
func (v *Vertex) upgrade() {
	if !v.Settled {
		panic("game: city upgrade on unsettled vertex")
	}
	v.City = true
}

// Yield returns how many resources this vertex collects from an adjacent
// producing tile.
func (v *Vertex) Yield() int {
	switch {
	case v.City:
		return 2
	case v.Settled:
		return 1
	}
	return 0
}
