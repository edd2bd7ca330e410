package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CartLine models one album held in a shopping cart. Carts have no table of
// their own; a cart is the set of lines sharing a cart token.
type CartLine struct {
	RecordID    int64     `json:"recordId"`
	CartID      string    `json:"cartId"`
	AlbumID     int64     `json:"albumId"`
	Count       int       `json:"count"`
	DateCreated time.Time `json:"dateCreated"`
	Album       *Album    `json:"album,omitempty"`
}

// NewCartID mints a fresh cart token.
func NewCartID() string {
	return uuid.NewString()
}

type cartContextKey struct{}

// WithCartID stores the cart token on the context. The token is request
// scoped, never process-wide state.
func WithCartID(ctx context.Context, cartID string) context.Context {
	return context.WithValue(ctx, cartContextKey{}, cartID)
}

// CartIDFromContext returns the cart token carried by the context, if any.
func CartIDFromContext(ctx context.Context) (string, bool) {
	cartID, ok := ctx.Value(cartContextKey{}).(string)
	return cartID, ok && cartID != ""
}

// AddCartLine inserts a cart line and returns it with the assigned key.
func (s *Store) AddCartLine(ctx context.Context, line CartLine) (CartLine, error) {
	if err := ValidateCartLine(line); err != nil {
		return CartLine{}, err
	}

	if line.DateCreated.IsZero() {
		line.DateCreated = time.Now().UTC()
	}

	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO carts (cart_id, album_id, count, date_created)
		VALUES ($1, $2, $3, $4)
		RETURNING record_id
	`, line.CartID, line.AlbumID, line.Count, line.DateCreated).Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return CartLine{}, fmt.Errorf("%w: album does not exist", ErrConstraintViolation)
		}
		return CartLine{}, fmt.Errorf("insert cart line: %w", err)
	}

	line.RecordID = id
	return line, nil
}

// CartLines returns every line of the given cart with the album resolved.
func (s *Store) CartLines(ctx context.Context, cartID string) ([]CartLine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.record_id, c.cart_id, c.album_id, c.count, c.date_created,
			a.genre_id, a.artist_id, a.title, a.price, a.album_art_url, a.row_version
		FROM carts c
		JOIN albums a ON a.album_id = c.album_id
		WHERE c.cart_id = $1
		ORDER BY c.date_created ASC, c.record_id ASC
	`, cartID)
	if err != nil {
		return nil, fmt.Errorf("select cart lines: %w", err)
	}
	defer rows.Close()

	var lines []CartLine
	for rows.Next() {
		var (
			line  CartLine
			album Album
		)
		if err := rows.Scan(
			&line.RecordID,
			&line.CartID,
			&line.AlbumID,
			&line.Count,
			&line.DateCreated,
			&album.GenreID,
			&album.ArtistID,
			&album.Title,
			&album.Price,
			&album.AlbumArtURL,
			&album.RowVersion,
		); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		album.AlbumID = line.AlbumID
		line.Album = &album
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart lines: %w", err)
	}

	return lines, nil
}

// CartLineByID returns a single cart line by primary key.
func (s *Store) CartLineByID(ctx context.Context, recordID int64) (CartLine, error) {
	var line CartLine
	err := s.db.QueryRowContext(ctx, `
		SELECT record_id, cart_id, album_id, count, date_created
		FROM carts
		WHERE record_id = $1
	`, recordID).Scan(&line.RecordID, &line.CartID, &line.AlbumID, &line.Count, &line.DateCreated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CartLine{}, ErrNotFound
		}
		return CartLine{}, fmt.Errorf("select cart line: %w", err)
	}
	return line, nil
}

// DeleteCartLine removes a single cart line.
func (s *Store) DeleteCartLine(ctx context.Context, recordID int64) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM carts
		WHERE record_id = $1
	`, recordID)
	if err != nil {
		return fmt.Errorf("delete cart line: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete cart line rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// EmptyCart removes every line of the given cart.
func (s *Store) EmptyCart(ctx context.Context, cartID string) error {
	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM carts
		WHERE cart_id = $1
	`, cartID); err != nil {
		return fmt.Errorf("empty cart: %w", err)
	}
	return nil
}
