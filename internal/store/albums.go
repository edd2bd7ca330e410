package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Album models a record in the store catalog. Artist and Genre are resolved
// reference caches populated by joined queries; relationships are always
// looked up by key, never traversed through back-references.
type Album struct {
	AlbumID     int64           `json:"albumId"`
	GenreID     int64           `json:"genreId"`
	ArtistID    int64           `json:"artistId"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	AlbumArtURL string          `json:"albumArtUrl,omitempty"`
	RowVersion  int64           `json:"rowVersion"`
	Artist      *Artist         `json:"artist,omitempty"`
	Genre       *Genre          `json:"genre,omitempty"`
}

// Albums returns every album in the catalog. With withRefs set, the artist
// and genre rows are resolved in the same round trip.
func (s *Store) Albums(ctx context.Context, withRefs bool) ([]Album, error) {
	if !withRefs {
		rows, err := s.db.QueryContext(ctx, `
			SELECT album_id, genre_id, artist_id, title, price, album_art_url, row_version
			FROM albums
			ORDER BY title ASC, album_id ASC
		`)
		if err != nil {
			return nil, fmt.Errorf("select albums: %w", err)
		}
		defer rows.Close()
		return collectAlbumRows(rows, scanAlbumRow)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT a.album_id, a.genre_id, a.artist_id, a.title, a.price, a.album_art_url, a.row_version,
			ar.name, g.name, g.description
		FROM albums a
		JOIN artists ar ON ar.artist_id = a.artist_id
		JOIN genres g ON g.genre_id = a.genre_id
		ORDER BY a.title ASC, a.album_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("select albums: %w", err)
	}
	defer rows.Close()
	return collectAlbumRows(rows, scanAlbumWithRefsRow)
}

// AlbumByID returns a single album by primary key.
func (s *Store) AlbumByID(ctx context.Context, id int64, withRefs bool) (Album, error) {
	var (
		album Album
		err   error
	)

	if withRefs {
		row := s.db.QueryRowContext(ctx, `
			SELECT a.album_id, a.genre_id, a.artist_id, a.title, a.price, a.album_art_url, a.row_version,
				ar.name, g.name, g.description
			FROM albums a
			JOIN artists ar ON ar.artist_id = a.artist_id
			JOIN genres g ON g.genre_id = a.genre_id
			WHERE a.album_id = $1
		`, id)
		album, err = scanAlbumWithRefsRow(row)
	} else {
		row := s.db.QueryRowContext(ctx, `
			SELECT album_id, genre_id, artist_id, title, price, album_art_url, row_version
			FROM albums
			WHERE album_id = $1
		`, id)
		album, err = scanAlbumRow(row)
	}

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Album{}, ErrNotFound
		}
		return Album{}, err
	}
	return album, nil
}

// AlbumExists reports whether the album row is still present.
func (s *Store) AlbumExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM albums WHERE album_id = $1)
	`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check album: %w", err)
	}
	return exists, nil
}

// CreateAlbum inserts a new album and returns it with the assigned key.
func (s *Store) CreateAlbum(ctx context.Context, album Album) (Album, error) {
	if err := ValidateAlbum(album); err != nil {
		return Album{}, err
	}

	album.Title = strings.TrimSpace(album.Title)

	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO albums (genre_id, artist_id, title, price, album_art_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING album_id
	`, album.GenreID, album.ArtistID, album.Title, album.Price, album.AlbumArtURL).Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return Album{}, fmt.Errorf("%w: artist or genre does not exist", ErrConstraintViolation)
		}
		return Album{}, fmt.Errorf("insert album: %w", err)
	}

	album.AlbumID = id
	album.RowVersion = 0
	return album, nil
}

// UpdateAlbum replaces the full row keyed by the album's primary key. The
// write is optimistic: it only lands if row_version still matches the value
// the caller read, and a miss surfaces as ErrConcurrencyConflict. Callers
// distinguish a deleted row from a changed one with AlbumExists.
func (s *Store) UpdateAlbum(ctx context.Context, album Album) (Album, error) {
	if err := ValidateAlbum(album); err != nil {
		return Album{}, err
	}

	album.Title = strings.TrimSpace(album.Title)

	res, err := s.db.ExecContext(ctx, `
		UPDATE albums
		SET genre_id = $1, artist_id = $2, title = $3, price = $4, album_art_url = $5, row_version = row_version + 1
		WHERE album_id = $6 AND row_version = $7
	`, album.GenreID, album.ArtistID, album.Title, album.Price, album.AlbumArtURL, album.AlbumID, album.RowVersion)
	if err != nil {
		if isForeignKeyViolation(err) {
			return Album{}, fmt.Errorf("%w: artist or genre does not exist", ErrConstraintViolation)
		}
		return Album{}, fmt.Errorf("update album: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return Album{}, fmt.Errorf("update album rows affected: %w", err)
	}
	if affected == 0 {
		return Album{}, ErrConcurrencyConflict
	}

	album.RowVersion++
	return album, nil
}

// DeleteAlbum removes the album together with the cart lines and order
// details that reference it, all in one transaction. Dependents go first so
// the sequence is portable across stores without cascade triggers.
func (s *Store) DeleteAlbum(ctx context.Context, id int64) error {
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
		WHERE album_id = $1
	`, id); err != nil {
		return fmt.Errorf("delete order details: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM carts
		WHERE album_id = $1
	`, id); err != nil {
		return fmt.Errorf("delete cart lines: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		DELETE FROM albums
		WHERE album_id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("delete album: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete album rows affected: %w", err)
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

type albumScanner interface {
	Scan(dest ...any) error
}

func scanAlbumRow(scanner albumScanner) (Album, error) {
	var a Album
	if err := scanner.Scan(&a.AlbumID, &a.GenreID, &a.ArtistID, &a.Title, &a.Price, &a.AlbumArtURL, &a.RowVersion); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Album{}, err
		}
		return Album{}, fmt.Errorf("scan album: %w", err)
	}
	return a, nil
}

func scanAlbumWithRefsRow(scanner albumScanner) (Album, error) {
	var (
		a                Album
		artistName       string
		genreName        string
		genreDescription string
	)

	if err := scanner.Scan(
		&a.AlbumID,
		&a.GenreID,
		&a.ArtistID,
		&a.Title,
		&a.Price,
		&a.AlbumArtURL,
		&a.RowVersion,
		&artistName,
		&genreName,
		&genreDescription,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Album{}, err
		}
		return Album{}, fmt.Errorf("scan album: %w", err)
	}

	a.Artist = &Artist{ArtistID: a.ArtistID, Name: artistName}
	a.Genre = &Genre{GenreID: a.GenreID, Name: genreName, Description: genreDescription}
	return a, nil
}

func collectAlbumRows(rows *sql.Rows, scan func(albumScanner) (Album, error)) ([]Album, error) {
	var albums []Album
	for rows.Next() {
		a, err := scan(rows)
		if err != nil {
			return nil, err
		}
		albums = append(albums, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate albums: %w", err)
	}
	return albums, nil
}
