package domain

// Coordinate is a point in the backend's projected reference system
// (Lambert-93 / EPSG:2154 unless configured otherwise).
type Coordinate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Bounds represents a projected bounding box.
type Bounds struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}
