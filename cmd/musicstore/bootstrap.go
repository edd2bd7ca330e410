package main

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"musicstore/internal/app/catalog"
	"musicstore/internal/store"
)

// bootstrapDemoData seeds a small catalog through the management service so
// the same validation and normalization paths run as in production use. The
// seed is idempotent: a non-empty catalog is left alone.
func bootstrapDemoData(ctx context.Context, svc *catalog.Service) error {
	albums, err := svc.ListAlbums(ctx)
	if err != nil {
		return fmt.Errorf("check catalog: %w", err)
	}
	if len(albums) > 0 {
		return nil
	}

	genres := map[string]string{
		"Rock":       "Guitar-driven music from garage to stadium.",
		"Jazz":       "Improvisation over swing and blue notes.",
		"Electronic": "Synthesizers, samplers and drum machines.",
	}
	genreIDs := make(map[string]int64, len(genres))
	for name, description := range genres {
		g, err := svc.CreateGenre(ctx, name, description)
		if err != nil {
			return fmt.Errorf("seed genre %q: %w", name, err)
		}
		genreIDs[name] = g.GenreID
	}

	artists := []string{"Queen", "Miles Davis", "Daft Punk"}
	artistIDs := make(map[string]int64, len(artists))
	for _, name := range artists {
		a, err := svc.CreateArtist(ctx, name)
		if err != nil {
			return fmt.Errorf("seed artist %q: %w", name, err)
		}
		artistIDs[name] = a.ArtistID
	}

	seed := []struct {
		title  string
		artist string
		genre  string
		price  string
	}{
		{"A Night at the Opera", "Queen", "Rock", "9.99"},
		{"Kind of Blue", "Miles Davis", "Jazz", "11.99"},
		{"Discovery", "Daft Punk", "Electronic", "8.99"},
	}
	for _, a := range seed {
		if _, err := svc.CreateAlbum(ctx, store.Album{
			Title:    a.title,
			ArtistID: artistIDs[a.artist],
			GenreID:  genreIDs[a.genre],
			Price:    decimal.RequireFromString(a.price),
		}); err != nil {
			return fmt.Errorf("seed album %q: %w", a.title, err)
		}
	}

	return nil
}
