// Package catalog implements the management-side CRUD use cases for the
// store catalog: the album lifecycle plus the simpler artist and genre
// creation flows.
package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"musicstore/internal/store"
)

// Store captures the persistence needs of the catalog manager.
type Store interface {
	Albums(ctx context.Context, withRefs bool) ([]store.Album, error)
	AlbumByID(ctx context.Context, id int64, withRefs bool) (store.Album, error)
	AlbumExists(ctx context.Context, id int64) (bool, error)
	CreateAlbum(ctx context.Context, album store.Album) (store.Album, error)
	UpdateAlbum(ctx context.Context, album store.Album) (store.Album, error)
	DeleteAlbum(ctx context.Context, id int64) error

	Artists(ctx context.Context) ([]store.Artist, error)
	CreateArtist(ctx context.Context, artist store.Artist) (store.Artist, error)

	Genres(ctx context.Context) ([]store.Genre, error)
	CreateGenre(ctx context.Context, genre store.Genre) (store.Genre, error)
}

// Service coordinates catalog management operations.
type Service struct {
	store  Store
	logger zerolog.Logger
}

// New constructs a Service backed by the provided Store.
func New(s Store, logger zerolog.Logger) *Service {
	return &Service{store: s, logger: logger}
}

// ListAlbums returns every album with its artist and genre resolved.
func (s *Service) ListAlbums(ctx context.Context) ([]store.Album, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.Albums(ctx, true)
}

// GetAlbum returns one album with its artist and genre resolved.
func (s *Service) GetAlbum(ctx context.Context, id int64) (store.Album, error) {
	if err := ctx.Err(); err != nil {
		return store.Album{}, err
	}
	return s.store.AlbumByID(ctx, id, true)
}

// CreateAlbum validates the payload and inserts it. On a validation failure
// the rejected payload comes back alongside the field-level error set and
// the database is never touched.
func (s *Service) CreateAlbum(ctx context.Context, album store.Album) (store.Album, error) {
	if err := ctx.Err(); err != nil {
		return album, err
	}
	if err := store.ValidateAlbum(album); err != nil {
		return album, err
	}

	created, err := s.store.CreateAlbum(ctx, album)
	if err != nil {
		return album, err
	}

	s.logger.Info().Int64("album_id", created.AlbumID).Str("title", created.Title).Msg("album created")
	return created, nil
}

// UpdateAlbum replaces the album keyed by id. The payload must carry the
// matching key and the row version it was read with. When the optimistic
// check fails, a concurrently deleted row surfaces as ErrNotFound; a row
// that still exists propagates the conflict to the caller untouched.
func (s *Service) UpdateAlbum(ctx context.Context, id int64, album store.Album) (store.Album, error) {
	if err := ctx.Err(); err != nil {
		return album, err
	}
	if album.AlbumID != id {
		return album, store.ErrNotFound
	}
	if err := store.ValidateAlbum(album); err != nil {
		return album, err
	}

	updated, err := s.store.UpdateAlbum(ctx, album)
	if err != nil {
		if errors.Is(err, store.ErrConcurrencyConflict) {
			exists, existsErr := s.store.AlbumExists(ctx, id)
			if existsErr != nil {
				return album, existsErr
			}
			if !exists {
				return album, store.ErrNotFound
			}
			s.logger.Warn().Int64("album_id", id).Msg("album update lost a concurrent write")
		}
		return album, err
	}

	s.logger.Info().Int64("album_id", updated.AlbumID).Int64("row_version", updated.RowVersion).Msg("album updated")
	return updated, nil
}

// DeleteAlbum fetches the album for the confirmation step. Nothing is
// removed until ConfirmDeleteAlbum.
func (s *Service) DeleteAlbum(ctx context.Context, id int64) (store.Album, error) {
	if err := ctx.Err(); err != nil {
		return store.Album{}, err
	}
	return s.store.AlbumByID(ctx, id, true)
}

// ConfirmDeleteAlbum performs the irreversible delete. A row that vanished
// between confirmation and execution surfaces as ErrNotFound, never as a
// partial failure.
func (s *Service) ConfirmDeleteAlbum(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.store.DeleteAlbum(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Int64("album_id", id).Msg("album deleted")
	return nil
}

// ListArtists returns the artist selection list.
func (s *Service) ListArtists(ctx context.Context) ([]store.Artist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.Artists(ctx)
}

// CreateArtist validates and inserts a new artist, returning only after the
// write has durably completed.
func (s *Service) CreateArtist(ctx context.Context, name string) (store.Artist, error) {
	if err := ctx.Err(); err != nil {
		return store.Artist{}, err
	}

	artist := store.Artist{Name: strings.TrimSpace(name)}
	if err := store.ValidateArtist(artist); err != nil {
		return artist, err
	}

	created, err := s.store.CreateArtist(ctx, artist)
	if err != nil {
		return artist, err
	}

	s.logger.Info().Int64("artist_id", created.ArtistID).Str("name", created.Name).Msg("artist created")
	return created, nil
}

// ListGenres returns the genre selection list.
func (s *Service) ListGenres(ctx context.Context) ([]store.Genre, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.Genres(ctx)
}

// CreateGenre validates and inserts a new genre, returning only after the
// write has durably completed. Genre names are stored upper-cased so they
// compare case-insensitively.
func (s *Service) CreateGenre(ctx context.Context, name, description string) (store.Genre, error) {
	if err := ctx.Err(); err != nil {
		return store.Genre{}, err
	}

	genre := store.Genre{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
	}
	if err := store.ValidateGenre(genre); err != nil {
		return genre, err
	}
	genre.Name = strings.ToUpper(genre.Name)

	created, err := s.store.CreateGenre(ctx, genre)
	if err != nil {
		return genre, err
	}

	s.logger.Info().Int64("genre_id", created.GenreID).Str("name", created.Name).Msg("genre created")
	return created, nil
}
