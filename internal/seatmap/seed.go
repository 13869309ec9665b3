package seatmap

// RNG abstracts random number generation so seeding can be deterministic
// in tests.
type RNG interface {
	// Float64 returns a pseudo-random number in [0.0, 1.0).
	Float64() float64
}

// DefaultOccupancy is the per-seat probability used for demo data.
const DefaultOccupancy = 0.2

// Seeder picks a random set of already-sold seats for demo sessions. It is
// kept apart from Generate so that layouts stay reproducible: the seeded set
// is computed once and stored, then fed to Generate like any sold set.
type Seeder struct {
	rng       RNG
	occupancy float64
}

// NewSeeder returns a Seeder marking each seat occupied with the given
// probability. Values outside [0,1] are clamped.
func NewSeeder(rng RNG, occupancy float64) *Seeder {
	if occupancy < 0 {
		occupancy = 0
	}
	if occupancy > 1 {
		occupancy = 1
	}
	return &Seeder{rng: rng, occupancy: occupancy}
}

// Occupied draws the occupied set for a rows x seatsPerRow room.
func (s *Seeder) Occupied(rows, seatsPerRow int) (SeatSet, error) {
	if err := ValidateGeometry(rows, seatsPerRow); err != nil {
		return nil, err
	}
	set := SeatSet{}
	for i := 0; i < rows; i++ {
		for n := 1; n <= seatsPerRow; n++ {
			if s.rng.Float64() < s.occupancy {
				set[SeatID{Row: RowLabel(i), Number: n}] = struct{}{}
			}
		}
	}
	return set, nil
}
