package library

import (
	"context"
	"errors"
	"testing"

	"github.com/jingletube/jingletube/db"
	"github.com/jingletube/jingletube/service/youtube"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	database, err := db.New(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := database.Initialize(); err != nil {
		t.Fatalf("failed to initialize test database: %v", err)
	}

	// no metadata service; lookups are optional
	return NewService(database, nil)
}

func TestSongID(t *testing.T) {
	tests := []struct {
		name   string
		title  string
		artist string
		want   string
	}{
		{name: "simple", title: "Bohemian Rhapsody", artist: "Queen", want: "queen_bohemian_rhapsody"},
		{name: "multi word artist", title: "Africa", artist: "Toto Band", want: "toto_band_africa"},
		{name: "mixed case", title: "DANCE Monkey", artist: "Tones And I", want: "tones_and_i_dance_monkey"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SongID(tt.title, tt.artist); got != tt.want {
				t.Errorf("SongID(%q, %q) = %v, want %v", tt.title, tt.artist, got, tt.want)
			}
		})
	}
}

func TestAddSong(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	song, err := svc.AddSong(ctx, 1, AddSongInput{Title: "Bohemian Rhapsody", Artist: "Queen"})
	if err != nil {
		t.Fatalf("AddSong() unexpected error: %v", err)
	}
	if song.ID != "queen_bohemian_rhapsody" {
		t.Errorf("AddSong() ID = %v, want queen_bohemian_rhapsody", song.ID)
	}

	// same title/artist pair is rejected
	_, err = svc.AddSong(ctx, 2, AddSongInput{Title: "Bohemian Rhapsody", Artist: "Queen"})
	if !errors.Is(err, db.ErrDuplicateSong) {
		t.Errorf("AddSong() duplicate error = %v, want ErrDuplicateSong", err)
	}

	_, err = svc.AddSong(ctx, 1, AddSongInput{Title: "Orphan Title"})
	if !errors.Is(err, ErrMissingFields) {
		t.Errorf("AddSong() without artist error = %v, want ErrMissingFields", err)
	}

	_, err = svc.AddSong(ctx, 1, AddSongInput{Title: "A", Artist: "B", YouTubeURL: "https://vimeo.com/123"})
	if !errors.Is(err, youtube.ErrInvalidVideoID) {
		t.Errorf("AddSong() with bad URL error = %v, want ErrInvalidVideoID", err)
	}
}

func TestAddSongStoresVideoID(t *testing.T) {
	svc := newTestService(t)

	song, err := svc.AddSong(context.Background(), 1, AddSongInput{
		Title:      "Never Gonna Give You Up",
		Artist:     "Rick Astley",
		YouTubeURL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
	})
	if err != nil {
		t.Fatalf("AddSong() unexpected error: %v", err)
	}

	if song.YouTubeID == nil || *song.YouTubeID != "dQw4w9WgXcQ" {
		t.Errorf("AddSong() YouTubeID = %v, want dQw4w9WgXcQ", song.YouTubeID)
	}
}

func TestSearch(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	seed := []AddSongInput{
		{Title: "Bohemian Rhapsody", Artist: "Queen"},
		{Title: "Somebody To Love", Artist: "Queen"},
		{Title: "Africa", Artist: "Toto"},
	}
	for _, input := range seed {
		if _, err := svc.AddSong(ctx, 1, input); err != nil {
			t.Fatalf("seed AddSong(%q) failed: %v", input.Title, err)
		}
	}

	results, err := svc.Search("bohemian", 10)
	if err != nil {
		t.Fatalf("Search() unexpected error: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("Search() returned no results")
	}
	if results[0].ID != "queen_bohemian_rhapsody" {
		t.Errorf("Search() top result = %v, want queen_bohemian_rhapsody", results[0].ID)
	}

	// empty query is a no-op, not an error
	results, err = svc.Search("   ", 10)
	if err != nil {
		t.Fatalf("Search() with blank query unexpected error: %v", err)
	}
	if results != nil {
		t.Errorf("Search() with blank query = %v, want nil", results)
	}
}

func TestMatchTitle(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddSong(ctx, 1, AddSongInput{Title: "Bohemian Rhapsody", Artist: "Queen"}); err != nil {
		t.Fatalf("seed AddSong failed: %v", err)
	}

	tests := []struct {
		name   string
		title  string
		wantID string
	}{
		{name: "exact title", title: "Bohemian Rhapsody", wantID: "queen_bohemian_rhapsody"},
		{name: "case and typo tolerant", title: "bohemian rapsody", wantID: "queen_bohemian_rhapsody"},
		{name: "below threshold", title: "Stairway To Heaven", wantID: ""},
		{name: "blank", title: "", wantID: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matched, err := svc.MatchTitle(tt.title)
			if err != nil {
				t.Fatalf("MatchTitle(%q) unexpected error: %v", tt.title, err)
			}
			if tt.wantID == "" {
				if matched != nil {
					t.Errorf("MatchTitle(%q) = %v, want no match", tt.title, matched.ID)
				}
				return
			}
			if matched == nil || matched.ID != tt.wantID {
				t.Errorf("MatchTitle(%q) = %v, want %v", tt.title, matched, tt.wantID)
			}
		})
	}
}

func TestFavorites(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	song, err := svc.AddSong(ctx, 1, AddSongInput{Title: "Africa", Artist: "Toto"})
	if err != nil {
		t.Fatalf("seed AddSong failed: %v", err)
	}

	if err := svc.AddFavorite(1, "no_such_song"); !errors.Is(err, db.ErrSongNotFound) {
		t.Errorf("AddFavorite() for missing song error = %v, want ErrSongNotFound", err)
	}

	if err := svc.AddFavorite(1, song.ID); err != nil {
		t.Fatalf("AddFavorite() unexpected error: %v", err)
	}
	// favoriting twice is a no-op
	if err := svc.AddFavorite(1, song.ID); err != nil {
		t.Fatalf("AddFavorite() repeated unexpected error: %v", err)
	}

	fav, err := svc.IsFavorite(1, song.ID)
	if err != nil || !fav {
		t.Errorf("IsFavorite() = %v, %v, want true, nil", fav, err)
	}

	songs, err := svc.ListFavorites(1)
	if err != nil {
		t.Fatalf("ListFavorites() unexpected error: %v", err)
	}
	if len(songs) != 1 || songs[0].ID != song.ID {
		t.Errorf("ListFavorites() = %v, want one entry %v", songs, song.ID)
	}

	if err := svc.RemoveFavorite(1, song.ID); err != nil {
		t.Fatalf("RemoveFavorite() unexpected error: %v", err)
	}
	fav, _ = svc.IsFavorite(1, song.ID)
	if fav {
		t.Error("IsFavorite() after removal = true, want false")
	}
}
