package game

// EdgeID indexes a connection in the board arena.
type EdgeID int

// Edge is a connection between two adjacent intersections where roads are built.
type Edge struct {
	ID        EdgeID   `json:"id"`
	A         VertexID `json:"a"`
	B         VertexID `json:"b"`
	RoadOwner string   `json:"roadOwner,omitempty"` // Player ID, empty if no road
	Neighbors []EdgeID `json:"-"`
}

// HasRoad returns whether a road has been built on this edge.
func (e *Edge) HasRoad() bool {
	return e.RoadOwner != ""
}

// Touches reports whether v is one of the endpoints.
func (e *Edge) Touches(v VertexID) bool {
	return e.A == v || e.B == v
}

// Other returns the endpoint opposite v.
func (e *Edge) Other(v VertexID) VertexID {
	if e.A == v {
		return e.B
	}
	return e.A
}

func (e *Edge) build(playerID string) {
	if playerID == "" {
		panic("game: building road for empty player")
	}
	e.RoadOwner = playerID
}

// edgeKey is the unordered endpoint pair used for edge lookup.
type edgeKey struct{ lo, hi VertexID }

func makeEdgeKey(a, b VertexID) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}
