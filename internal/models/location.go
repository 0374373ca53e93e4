package models

import "encoding/json"

// Location is the normalized result of a forward or reverse lookup.
// It is a value object: constructed once per successful parse and never mutated.
type Location struct {
	Words string          // Words is the three-word label of the point.
	Point Coordinates     // Point is the geographical position of the label.
	Raw   json.RawMessage // Raw is the unmodified response fragment the result was parsed from.
}
