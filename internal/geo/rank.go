package geo

import (
	"sort"
	"strings"
)

// Venue is anything that can be ranked by distance. Location is nil when
// the venue has no known coordinate.
type Venue struct {
	ID       string
	Name     string
	Rating   float64
	Location *Coordinate
}

// Ranked pairs a venue with its distance from the shopper. DistanceKm is
// nil when either side has no coordinate.
type Ranked struct {
	Venue
	DistanceKm *float64
}

// Rank orders venues by ascending distance from user. Venues without a
// location come after every located venue, in their input order. When user
// is nil no distance can be computed and ok is false; callers should fall
// back to SortByName or SortByRating.
func Rank(user *Coordinate, venues []Venue) (ranked []Ranked, ok bool) {
	if user == nil {
		return nil, false
	}
	ranked = make([]Ranked, len(venues))
	for i, v := range venues {
		ranked[i] = Ranked{Venue: v}
		if v.Location != nil {
			d := DistanceKm(*user, *v.Location)
			ranked[i].DistanceKm = &d
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		di, dj := ranked[i].DistanceKm, ranked[j].DistanceKm
		switch {
		case di == nil:
			return false
		case dj == nil:
			return true
		default:
			return *di < *dj
		}
	})
	return ranked, true
}

// SortByName returns venues ordered case-insensitively by name.
func SortByName(venues []Venue) []Ranked {
	out := unranked(venues)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// SortByRating returns venues ordered by descending rating.
func SortByRating(venues []Venue) []Ranked {
	out := unranked(venues)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	return out
}

func unranked(venues []Venue) []Ranked {
	out := make([]Ranked, len(venues))
	for i, v := range venues {
		out[i] = Ranked{Venue: v}
	}
	return out
}
