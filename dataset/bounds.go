package dataset

// ============================================================================
// STATE BOUNDS — Approximate Bounding Boxes for Grid Aggregation
// ============================================================================
// Keyed by canonical taxonomy state name. Grid cells whose center falls
// inside the box contribute to that state's annual rainfall figure.
// Bounding boxes overlap at the borders; that imprecision is inherent to
// the source method and acceptable for state-level aggregates.
// ============================================================================

// Bounds is a geographic bounding box in decimal degrees.
type Bounds struct {
	LonMin, LonMax float64
	LatMin, LatMax float64
}

// Contains reports whether a grid point falls inside the box (inclusive).
func (b Bounds) Contains(lat, lon float64) bool {
	return lon >= b.LonMin && lon <= b.LonMax && lat >= b.LatMin && lat <= b.LatMax
}

// StateBounds maps canonical state names to their bounding boxes.
var StateBounds = map[string]Bounds{
	"Andhra Pradesh": {76.0, 84.0, 12.0, 20.0},
	"Assam":          {89.0, 96.0, 24.0, 28.0},
	"Bihar":          {83.0, 88.0, 24.0, 28.0},
	"Gujarat":        {68.0, 75.0, 20.0, 25.0},
	"Karnataka":      {74.0, 78.5, 11.5, 18.5},
	"Kerala":         {74.5, 77.5, 8.0, 12.5},
	"Madhya Pradesh": {73.0, 82.0, 21.0, 27.0},
	"Maharashtra":    {72.0, 81.0, 15.0, 22.0},
	"Odisha":         {81.0, 88.0, 17.0, 22.5},
	"Punjab":         {73.5, 77.0, 29.5, 32.5},
	"Rajasthan":      {69.0, 78.5, 23.0, 30.5},
	"Tamil Nadu":     {76.0, 80.5, 8.0, 13.5},
	"Telangana":      {77.0, 81.0, 15.5, 20.0},
	"Uttar Pradesh":  {77.0, 85.0, 24.0, 31.0},
	"West Bengal":    {86.0, 90.0, 21.5, 27.5},
}
