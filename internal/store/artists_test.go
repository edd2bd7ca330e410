package store

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestValidateArtist(t *testing.T) {
	if err := ValidateArtist(Artist{Name: "Queen"}); err != nil {
		t.Fatalf("expected nil error but got %v", err)
	}
	if err := ValidateArtist(Artist{Name: "  "}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if err := ValidateArtist(Artist{Name: strings.Repeat("a", 201)}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestCreateArtistSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`
		INSERT INTO artists (name)
		VALUES ($1)
		RETURNING artist_id
	`)).
		WithArgs("Queen").
		WillReturnRows(sqlmock.NewRows([]string{"artist_id"}).AddRow(int64(1)))

	got, err := s.CreateArtist(context.Background(), Artist{Name: " Queen "})
	if err != nil {
		t.Fatalf("CreateArtist error: %v", err)
	}

	if got.ArtistID != 1 || got.Name != "Queen" {
		t.Fatalf("unexpected artist: %#v", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteArtistCascades(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`
		DELETE FROM order_details
		WHERE album_id IN (SELECT album_id FROM albums WHERE artist_id = $1)
	`)).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`
		DELETE FROM carts
		WHERE album_id IN (SELECT album_id FROM albums WHERE artist_id = $1)
	`)).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`
		DELETE FROM albums
		WHERE artist_id = $1
	`)).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`
		DELETE FROM artists
		WHERE artist_id = $1
	`)).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := s.DeleteArtist(context.Background(), 1); err != nil {
		t.Fatalf("DeleteArtist error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestArtistsList(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT artist_id, name
		FROM artists
		ORDER BY name ASC
	`)).
		WillReturnRows(sqlmock.NewRows([]string{"artist_id", "name"}).
			AddRow(int64(3), "Daft Punk").
			AddRow(int64(2), "Miles Davis").
			AddRow(int64(1), "Queen"))

	artists, err := s.Artists(context.Background())
	if err != nil {
		t.Fatalf("Artists error: %v", err)
	}

	if len(artists) != 3 || artists[0].Name != "Daft Punk" {
		t.Fatalf("unexpected artists: %#v", artists)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
