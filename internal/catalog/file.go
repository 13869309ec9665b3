package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/iliyamo/cinexplorer/internal/model"
)

// ErrInvalidSeed is returned when a seed file references missing records or
// carries inconsistent seat counts.
var ErrInvalidSeed = errors.New("invalid catalog seed")

// Seed is the on-disk shape of a catalog file.
type Seed struct {
	Movies   []model.Movie   `yaml:"movies"`
	Cinemas  []model.Cinema  `yaml:"cinemas"`
	Rooms    []model.Room    `yaml:"rooms"`
	Sessions []model.Session `yaml:"sessions"`
}

// FileProvider serves the catalog from memory. It is immutable after load
// and safe for concurrent use.
type FileProvider struct {
	seed     Seed
	cinemas  map[uint64]model.Cinema
	rooms    map[uint64]model.Room
	movies   map[uint64]model.Movie
	sessions map[uint64]model.Session
}

// LoadFile reads and validates a YAML seed from path.
func LoadFile(path string) (*FileProvider, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

// Parse builds a FileProvider from YAML bytes.
func Parse(raw []byte) (*FileProvider, error) {
	var s Seed
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return NewFileProvider(s)
}

// NewFileProvider indexes s after checking its references: every room
// belongs to a known cinema, every session points at a known movie and a
// room of its own cinema, and session seat totals match the room.
func NewFileProvider(s Seed) (*FileProvider, error) {
	p := &FileProvider{
		seed:     s,
		cinemas:  make(map[uint64]model.Cinema, len(s.Cinemas)),
		rooms:    make(map[uint64]model.Room, len(s.Rooms)),
		movies:   make(map[uint64]model.Movie, len(s.Movies)),
		sessions: make(map[uint64]model.Session, len(s.Sessions)),
	}
	for _, m := range s.Movies {
		p.movies[m.ID] = m
	}
	for _, c := range s.Cinemas {
		p.cinemas[c.ID] = c
	}
	for _, r := range s.Rooms {
		if _, ok := p.cinemas[r.CinemaID]; !ok {
			return nil, fmt.Errorf("%w: room %d references cinema %d", ErrInvalidSeed, r.ID, r.CinemaID)
		}
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSeed, err)
		}
		p.rooms[r.ID] = r
	}
	for _, ss := range s.Sessions {
		room, ok := p.rooms[ss.RoomID]
		if !ok || room.CinemaID != ss.CinemaID {
			return nil, fmt.Errorf("%w: session %d references room %d of cinema %d", ErrInvalidSeed, ss.ID, ss.RoomID, ss.CinemaID)
		}
		if _, ok := p.movies[ss.MovieID]; !ok {
			return nil, fmt.Errorf("%w: session %d references movie %d", ErrInvalidSeed, ss.ID, ss.MovieID)
		}
		if ss.TotalSeats != room.TotalSeats {
			return nil, fmt.Errorf("%w: session %d has %d seats, room %d has %d", ErrInvalidSeed, ss.ID, ss.TotalSeats, room.ID, room.TotalSeats)
		}
		if err := ss.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSeed, err)
		}
		p.sessions[ss.ID] = ss
	}
	return p, nil
}

// Seed returns the records the provider was built from.
func (p *FileProvider) Seed() Seed { return p.seed }

func (p *FileProvider) ListCinemas(_ context.Context) ([]model.Cinema, error) {
	out := make([]model.Cinema, len(p.seed.Cinemas))
	copy(out, p.seed.Cinemas)
	return out, nil
}

func (p *FileProvider) GetCinema(_ context.Context, id uint64) (model.Cinema, error) {
	c, ok := p.cinemas[id]
	if !ok {
		return model.Cinema{}, ErrCinemaNotFound
	}
	return c, nil
}

func (p *FileProvider) GetRoom(_ context.Context, id uint64) (model.Room, error) {
	r, ok := p.rooms[id]
	if !ok {
		return model.Room{}, ErrRoomNotFound
	}
	return r, nil
}

func (p *FileProvider) GetSession(_ context.Context, id uint64) (model.Session, error) {
	s, ok := p.sessions[id]
	if !ok {
		return model.Session{}, ErrSessionNotFound
	}
	return s, nil
}

// ListSessionsByCinema returns the cinema's sessions ordered by date, time
// and id. An unknown cinema is an error rather than an empty list.
func (p *FileProvider) ListSessionsByCinema(_ context.Context, cinemaID uint64) ([]model.Session, error) {
	if _, ok := p.cinemas[cinemaID]; !ok {
		return nil, ErrCinemaNotFound
	}
	var out []model.Session
	for _, s := range p.seed.Sessions {
		if s.CinemaID == cinemaID {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].Time != out[j].Time {
			return out[i].Time < out[j].Time
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (p *FileProvider) GetMovie(_ context.Context, id uint64) (model.Movie, error) {
	m, ok := p.movies[id]
	if !ok {
		return model.Movie{}, ErrMovieNotFound
	}
	return m, nil
}
