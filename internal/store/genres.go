package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Genre models a music genre referenced by albums.
type Genre struct {
	GenreID     int64  `json:"genreId"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Genres returns all genres ordered by name, for selection lists.
func (s *Store) Genres(ctx context.Context) ([]Genre, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT genre_id, name, description
		FROM genres
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("select genres: %w", err)
	}
	defer rows.Close()

	var genres []Genre
	for rows.Next() {
		var g Genre
		if err := rows.Scan(&g.GenreID, &g.Name, &g.Description); err != nil {
			return nil, fmt.Errorf("scan genre: %w", err)
		}
		genres = append(genres, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate genres: %w", err)
	}

	return genres, nil
}

// GenreByID returns a single genre by primary key.
func (s *Store) GenreByID(ctx context.Context, id int64) (Genre, error) {
	var g Genre
	err := s.db.QueryRowContext(ctx, `
		SELECT genre_id, name, description
		FROM genres
		WHERE genre_id = $1
	`, id).Scan(&g.GenreID, &g.Name, &g.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Genre{}, ErrNotFound
		}
		return Genre{}, fmt.Errorf("select genre: %w", err)
	}
	return g, nil
}

// CreateGenre inserts a new genre and returns it once the write has
// committed. Callers normalize the name; the store persists it verbatim.
func (s *Store) CreateGenre(ctx context.Context, genre Genre) (Genre, error) {
	if err := ValidateGenre(genre); err != nil {
		return Genre{}, err
	}

	genre.Name = strings.TrimSpace(genre.Name)
	genre.Description = strings.TrimSpace(genre.Description)

	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO genres (name, description)
		VALUES ($1, $2)
		RETURNING genre_id
	`, genre.Name, genre.Description).Scan(&id)
	if err != nil {
		return Genre{}, fmt.Errorf("insert genre: %w", err)
	}

	genre.GenreID = id
	return genre, nil
}

// DeleteGenre removes the genre and cascades to its albums and their
// dependent cart lines and order details, atomically. Order details that
// carry the genre as an optional reference keep their row and lose the
// reference.
func (s *Store) DeleteGenre(ctx context.Context, id int64) error {
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
		UPDATE order_details
		SET genre_id = NULL
		WHERE genre_id = $1
	`, id); err != nil {
		return fmt.Errorf("clear order detail genre: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM order_details
		WHERE album_id IN (SELECT album_id FROM albums WHERE genre_id = $1)
	`, id); err != nil {
		return fmt.Errorf("delete order details: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM carts
		WHERE album_id IN (SELECT album_id FROM albums WHERE genre_id = $1)
	`, id); err != nil {
		return fmt.Errorf("delete cart lines: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM albums
		WHERE genre_id = $1
	`, id); err != nil {
		return fmt.Errorf("delete albums: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		DELETE FROM genres
		WHERE genre_id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("delete genre: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete genre rows affected: %w", err)
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
