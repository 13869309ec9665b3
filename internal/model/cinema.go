package model

import (
	"strconv"

	"github.com/iliyamo/cinexplorer/internal/geo"
)

// Cinema represents a venue in the catalog. It corresponds to a row in the
// `cinemas` table (room types are stored comma separated).
//
// Fields:
//
//	ID          – primary key identifier.
//	Name        – display name of the venue.
//	Address     – free-form street address.
//	RoomTypes   – screen formats offered (2D, 3D, IMAX, VIP, 4DX).
//	Rating      – average review score, 0 to 5.
//	ReviewCount – number of reviews behind Rating.
//	Location    – geographic position; nil when the venue has none on file.
type Cinema struct {
	ID          uint64          `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Address     string          `json:"address" yaml:"address"`
	RoomTypes   []string        `json:"room_types" yaml:"room_types"`
	Rating      float64         `json:"rating" yaml:"rating"`
	ReviewCount int             `json:"review_count" yaml:"review_count"`
	Location    *geo.Coordinate `json:"location,omitempty" yaml:"location,omitempty"`
}

// Venue projects the cinema onto the fields distance ranking needs.
func (c Cinema) Venue() geo.Venue {
	return geo.Venue{
		ID:       strconv.FormatUint(c.ID, 10),
		Name:     c.Name,
		Rating:   c.Rating,
		Location: c.Location,
	}
}
