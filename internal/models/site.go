package models

// Site represents a stored place that still needs resolving: either its
// three-word label is known and its coordinates are missing, or the other
// way around.
type Site struct {
	ID    int         // ID is the unique identifier for the site.
	Words string      // Words is the three-word label, empty if not resolved yet.
	Point Coordinates // Point holds the coordinates, zero if not resolved yet.
}
