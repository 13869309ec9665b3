// Package catalog defines read access to cinemas, rooms, movies and sessions
// and provides a file-backed implementation loaded from a YAML seed.
package catalog

import (
	"context"
	"errors"

	"github.com/iliyamo/cinexplorer/internal/model"
)

var (
	ErrCinemaNotFound  = errors.New("cinema not found")
	ErrRoomNotFound    = errors.New("room not found")
	ErrMovieNotFound   = errors.New("movie not found")
	ErrSessionNotFound = errors.New("session not found")
)

// Provider is the read side of the catalog. Both the MySQL repository and
// the YAML file provider implement it.
type Provider interface {
	ListCinemas(ctx context.Context) ([]model.Cinema, error)
	GetCinema(ctx context.Context, id uint64) (model.Cinema, error)
	GetRoom(ctx context.Context, id uint64) (model.Room, error)
	GetSession(ctx context.Context, id uint64) (model.Session, error)
	ListSessionsByCinema(ctx context.Context, cinemaID uint64) ([]model.Session, error)
	GetMovie(ctx context.Context, id uint64) (model.Movie, error)
}
