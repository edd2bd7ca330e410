package store

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// ErrValidation is the sentinel every field-level validation failure matches.
var ErrValidation = errors.New("validation failed")

// FieldError names a single rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates the field-level failures for one payload. It is
// returned before any write reaches the database.
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is makes errors.Is(err, ErrValidation) match any *ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) add(field, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
}

// orNil returns a typed nil-free error so callers never see a non-nil
// interface wrapping a nil pointer.
func (e *ValidationError) orNil() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

func requireText(e *ValidationError, field, value string, maxLen int) {
	if strings.TrimSpace(value) == "" {
		e.add(field, "is required")
		return
	}
	limitText(e, field, value, maxLen)
}

func limitText(e *ValidationError, field, value string, maxLen int) {
	if utf8.RuneCountInString(value) > maxLen {
		e.add(field, fmt.Sprintf("must be at most %d characters", maxLen))
	}
}

var (
	albumPriceMin = decimal.RequireFromString("0.01")
	albumPriceMax = decimal.RequireFromString("200.00")
)

// ValidateAlbum checks the field constraints of an album payload.
func ValidateAlbum(album Album) error {
	e := &ValidationError{}
	requireText(e, "title", album.Title, 160)
	limitText(e, "albumArtUrl", album.AlbumArtURL, 1024)
	if album.ArtistID <= 0 {
		e.add("artistId", "is required")
	}
	if album.GenreID <= 0 {
		e.add("genreId", "is required")
	}
	if album.Price.LessThan(albumPriceMin) || album.Price.GreaterThan(albumPriceMax) {
		e.add("price", "must be between 0.01 and 200.00")
	}
	return e.orNil()
}

// ValidateArtist checks the field constraints of an artist payload.
func ValidateArtist(artist Artist) error {
	e := &ValidationError{}
	requireText(e, "name", artist.Name, 200)
	return e.orNil()
}

// ValidateGenre checks the field constraints of a genre payload.
func ValidateGenre(genre Genre) error {
	e := &ValidationError{}
	requireText(e, "name", genre.Name, 100)
	requireText(e, "description", genre.Description, 5000)
	return e.orNil()
}

// ValidateCartLine checks the field constraints of a cart line payload.
func ValidateCartLine(line CartLine) error {
	e := &ValidationError{}
	if strings.TrimSpace(line.CartID) == "" {
		e.add("cartId", "is required")
	}
	if line.AlbumID <= 0 {
		e.add("albumId", "is required")
	}
	if line.Count < 1 {
		e.add("count", "must be at least 1")
	}
	return e.orNil()
}

// ValidateOrder checks an order payload and its detail lines.
func ValidateOrder(order Order) error {
	e := &ValidationError{}
	if order.UserID <= 0 {
		e.add("userId", "is required")
	}
	if len(order.Details) == 0 {
		e.add("details", "at least one line is required")
	}
	for i, d := range order.Details {
		prefix := fmt.Sprintf("details[%d].", i)
		if d.AlbumID <= 0 {
			e.add(prefix+"albumId", "is required")
		}
		if d.Quantity < 1 {
			e.add(prefix+"quantity", "must be at least 1")
		}
		if d.UnitPrice.IsNegative() {
			e.add(prefix+"unitPrice", "must not be negative")
		}
	}
	return e.orNil()
}

// ValidateUser checks the field constraints of a user payload.
func ValidateUser(user User) error {
	e := &ValidationError{}
	requireText(e, "login", user.Login, 100)
	requireText(e, "password", user.Password, 100)
	requireText(e, "email", user.Email, 200)
	requireText(e, "name", user.Name, 200)
	return e.orNil()
}
