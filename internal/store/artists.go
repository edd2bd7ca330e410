package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Artist models a recording artist referenced by albums.
type Artist struct {
	ArtistID int64  `json:"artistId"`
	Name     string `json:"name"`
}

// Artists returns all artists ordered by name, for selection lists.
func (s *Store) Artists(ctx context.Context) ([]Artist, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT artist_id, name
		FROM artists
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("select artists: %w", err)
	}
	defer rows.Close()

	var artists []Artist
	for rows.Next() {
		var a Artist
		if err := rows.Scan(&a.ArtistID, &a.Name); err != nil {
			return nil, fmt.Errorf("scan artist: %w", err)
		}
		artists = append(artists, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artists: %w", err)
	}

	return artists, nil
}

// ArtistByID returns a single artist by primary key.
func (s *Store) ArtistByID(ctx context.Context, id int64) (Artist, error) {
	var a Artist
	err := s.db.QueryRowContext(ctx, `
		SELECT artist_id, name
		FROM artists
		WHERE artist_id = $1
	`, id).Scan(&a.ArtistID, &a.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Artist{}, ErrNotFound
		}
		return Artist{}, fmt.Errorf("select artist: %w", err)
	}
	return a, nil
}

// CreateArtist inserts a new artist and returns it once the write has
// committed.
func (s *Store) CreateArtist(ctx context.Context, artist Artist) (Artist, error) {
	if err := ValidateArtist(artist); err != nil {
		return Artist{}, err
	}

	artist.Name = strings.TrimSpace(artist.Name)

	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO artists (name)
		VALUES ($1)
		RETURNING artist_id
	`, artist.Name).Scan(&id)
	if err != nil {
		return Artist{}, fmt.Errorf("insert artist: %w", err)
	}

	artist.ArtistID = id
	return artist, nil
}

// DeleteArtist removes the artist and cascades to its albums and their
// dependent cart lines and order details, atomically.
func (s *Store) DeleteArtist(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM order_details
		WHERE album_id IN (SELECT album_id FROM albums WHERE artist_id = $1)
	`, id); err != nil {
		return fmt.Errorf("delete order details: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM carts
		WHERE album_id IN (SELECT album_id FROM albums WHERE artist_id = $1)
	`, id); err != nil {
		return fmt.Errorf("delete cart lines: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM albums
		WHERE artist_id = $1
	`, id); err != nil {
		return fmt.Errorf("delete albums: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		DELETE FROM artists
		WHERE artist_id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("delete artist: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete artist rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return nil
}
