// Package repository contains data access logic separated from HTTP handlers.
// This file implements the catalog read model on MySQL: cinemas, rooms,
// movies and sessions. Only the checkout path writes to sessions, through
// SessionRepo.
package repository

import (
	"context"      // context allows passing deadlines and cancellation signals to DB operations
	"database/sql" // sql provides generic database operations and drivers
	"errors"
	"strings"

	"github.com/iliyamo/cinexplorer/internal/catalog"
	"github.com/iliyamo/cinexplorer/internal/geo"
	"github.com/iliyamo/cinexplorer/internal/model"
)

// CatalogRepo encapsulates all catalog queries. It satisfies
// catalog.Provider.
type CatalogRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

var _ catalog.Provider = (*CatalogRepo)(nil)

// NewCatalogRepo constructs a CatalogRepo with the provided DB handle.
func NewCatalogRepo(db *sql.DB) *CatalogRepo {
	return &CatalogRepo{db: db}
}

const cinemaColumns = "id, name, address, room_types, rating, review_count, lat, lng"

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCinema(s scanner) (model.Cinema, error) {
	var (
		c         model.Cinema
		roomTypes string
		lat, lng  sql.NullFloat64
	)
	if err := s.Scan(&c.ID, &c.Name, &c.Address, &roomTypes, &c.Rating, &c.ReviewCount, &lat, &lng); err != nil {
		return model.Cinema{}, err
	}
	c.RoomTypes = splitList(roomTypes)
	// a venue has a location only when both coordinates are on file
	if lat.Valid && lng.Valid {
		c.Location = &geo.Coordinate{Lat: lat.Float64, Lng: lng.Float64}
	}
	return c, nil
}

// ListCinemas returns every cinema ordered by id.
func (r *CatalogRepo) ListCinemas(ctx context.Context) ([]model.Cinema, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+cinemaColumns+" FROM cinemas ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Cinema
	for rows.Next() {
		c, err := scanCinema(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetCinema fetches a cinema by id or returns catalog.ErrCinemaNotFound.
func (r *CatalogRepo) GetCinema(ctx context.Context, id uint64) (model.Cinema, error) {
	c, err := scanCinema(r.db.QueryRowContext(ctx, "SELECT "+cinemaColumns+" FROM cinemas WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Cinema{}, catalog.ErrCinemaNotFound
	}
	return c, err
}

// GetRoom fetches a room by id or returns catalog.ErrRoomNotFound.
func (r *CatalogRepo) GetRoom(ctx context.Context, id uint64) (model.Room, error) {
	const q = `SELECT id, cinema_id, name, type, seat_rows, seats_per_row, total_seats
	           FROM rooms WHERE id = ?`
	var room model.Room
	err := r.db.QueryRowContext(ctx, q, id).Scan(&room.ID, &room.CinemaID, &room.Name, &room.Type,
		&room.Rows, &room.SeatsPerRow, &room.TotalSeats)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Room{}, catalog.ErrRoomNotFound
	}
	return room, err
}

// DATE and TIME columns are formatted in SQL so the model keeps the plain
// YYYY-MM-DD and HH:MM strings regardless of parseTime.
const sessionColumns = `id, movie_id, cinema_id, room_id,
	DATE_FORMAT(show_date, '%Y-%m-%d'), TIME_FORMAT(show_time, '%H:%i'),
	price_cents, available_seats, total_seats`

func scanSession(s scanner) (model.Session, error) {
	var ss model.Session
	err := s.Scan(&ss.ID, &ss.MovieID, &ss.CinemaID, &ss.RoomID, &ss.Date, &ss.Time,
		&ss.PriceCents, &ss.AvailableSeats, &ss.TotalSeats)
	return ss, err
}

// GetSession fetches a session by id or returns catalog.ErrSessionNotFound.
func (r *CatalogRepo) GetSession(ctx context.Context, id uint64) (model.Session, error) {
	s, err := scanSession(r.db.QueryRowContext(ctx, "SELECT "+sessionColumns+" FROM sessions WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Session{}, catalog.ErrSessionNotFound
	}
	return s, err
}

// ListSessionsByCinema returns the sessions of one cinema in screening
// order. An unknown cinema yields catalog.ErrCinemaNotFound.
func (r *CatalogRepo) ListSessionsByCinema(ctx context.Context, cinemaID uint64) ([]model.Session, error) {
	var exists int
	if err := r.db.QueryRowContext(ctx, "SELECT 1 FROM cinemas WHERE id = ?", cinemaID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalog.ErrCinemaNotFound
		}
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE cinema_id = ? ORDER BY show_date, show_time, id", cinemaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetMovie fetches a movie by id or returns catalog.ErrMovieNotFound.
func (r *CatalogRepo) GetMovie(ctx context.Context, id uint64) (model.Movie, error) {
	const q = `SELECT id, title, COALESCE(synopsis, ''), duration_min, classification, genres
	           FROM movies WHERE id = ?`
	var (
		m      model.Movie
		genres string
	)
	err := r.db.QueryRowContext(ctx, q, id).Scan(&m.ID, &m.Title, &m.Synopsis, &m.DurationMin, &m.Classification, &genres)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Movie{}, catalog.ErrMovieNotFound
	}
	if err != nil {
		return model.Movie{}, err
	}
	m.Genres = splitList(genres)
	return m, nil
}

// Import upserts a catalog seed in one transaction. Existing sessions keep
// their available_seats counter so re-importing never resells seats.
func (r *CatalogRepo) Import(ctx context.Context, seed catalog.Seed) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	for _, m := range seed.Movies {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO movies (id, title, synopsis, duration_min, classification, genres) VALUES (?, ?, ?, ?, ?, ?)
			 ON DUPLICATE KEY UPDATE title = VALUES(title), synopsis = VALUES(synopsis), duration_min = VALUES(duration_min),
			 classification = VALUES(classification), genres = VALUES(genres)`,
			m.ID, m.Title, m.Synopsis, m.DurationMin, m.Classification, strings.Join(m.Genres, ",")); err != nil {
			return err
		}
	}
	for _, c := range seed.Cinemas {
		var lat, lng sql.NullFloat64
		if c.Location != nil {
			lat = sql.NullFloat64{Float64: c.Location.Lat, Valid: true}
			lng = sql.NullFloat64{Float64: c.Location.Lng, Valid: true}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO cinemas (id, name, address, room_types, rating, review_count, lat, lng) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			 ON DUPLICATE KEY UPDATE name = VALUES(name), address = VALUES(address), room_types = VALUES(room_types),
			 rating = VALUES(rating), review_count = VALUES(review_count), lat = VALUES(lat), lng = VALUES(lng)`,
			c.ID, c.Name, c.Address, strings.Join(c.RoomTypes, ","), c.Rating, c.ReviewCount, lat, lng); err != nil {
			return err
		}
	}
	for _, room := range seed.Rooms {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO rooms (id, cinema_id, name, type, seat_rows, seats_per_row, total_seats) VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON DUPLICATE KEY UPDATE cinema_id = VALUES(cinema_id), name = VALUES(name), type = VALUES(type),
			 seat_rows = VALUES(seat_rows), seats_per_row = VALUES(seats_per_row), total_seats = VALUES(total_seats)`,
			room.ID, room.CinemaID, room.Name, room.Type, room.Rows, room.SeatsPerRow, room.TotalSeats); err != nil {
			return err
		}
	}
	for _, s := range seed.Sessions {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sessions (id, movie_id, cinema_id, room_id, show_date, show_time, price_cents, available_seats, total_seats)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON DUPLICATE KEY UPDATE movie_id = VALUES(movie_id), cinema_id = VALUES(cinema_id), room_id = VALUES(room_id),
			 show_date = VALUES(show_date), show_time = VALUES(show_time), price_cents = VALUES(price_cents)`,
			s.ID, s.MovieID, s.CinemaID, s.RoomID, s.Date, s.Time, s.PriceCents, s.AvailableSeats, s.TotalSeats); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// splitList turns a comma separated column into a slice, skipping blanks.
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
