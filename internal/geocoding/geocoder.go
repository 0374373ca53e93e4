package geocoding

import (
	"context"

	"github.com/karstmaps/threewords/internal/models"
)

// Geocoder is the interface consumed by the resolver service.
// Geocode converts a three-word label into coordinates, Reverse converts
// coordinates into the three-word label of the containing grid square.
// Both return exactly one location: the address scheme maps every point
// on the covered surface to exactly one label and back.
type Geocoder interface {
	Geocode(ctx context.Context, words, lang string) (*models.Location, error)
	Reverse(ctx context.Context, point models.Coordinates, lang string) (*models.Location, error)
}
