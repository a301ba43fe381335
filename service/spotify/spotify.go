package spotify

import (
	"context"
	"errors"
	"strings"
	"time"

	spotifyapi "github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

var ErrNotConfigured = errors.New("spotify credentials not configured")

// CatalogTrack is a search hit from the Spotify catalog
type CatalogTrack struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Album      string `json:"album"`
	DurationMs int64  `json:"durationMs"`
	URL        string `json:"url,omitempty"`
}

// Service searches the Spotify catalog using the client-credentials flow
type Service struct {
	client  *spotifyapi.Client
	limiter *rate.Limiter
}

// NewService builds a catalog search service. Returns a disabled service
// (nil client) when credentials are missing; Search then reports
// ErrNotConfigured.
func NewService(ctx context.Context, clientID, clientSecret string) *Service {
	s := &Service{
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 1),
	}

	if clientID == "" || clientSecret == "" {
		return s
	}

	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	httpClient := config.Client(ctx)
	s.client = spotifyapi.New(httpClient)

	return s
}

// Enabled reports whether catalog search is available
func (s *Service) Enabled() bool {
	return s.client != nil
}

// Search queries the catalog for tracks matching a free-text query
func (s *Service) Search(ctx context.Context, query string, limit int) ([]CatalogTrack, error) {
	if s.client == nil {
		return nil, ErrNotConfigured
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	results, err := s.client.Search(ctx, query, spotifyapi.SearchTypeTrack, spotifyapi.Limit(limit))
	if err != nil {
		return nil, err
	}

	if results.Tracks == nil {
		return nil, nil
	}

	tracks := make([]CatalogTrack, 0, len(results.Tracks.Tracks))
	for _, t := range results.Tracks.Tracks {
		artists := make([]string, 0, len(t.Artists))
		for _, a := range t.Artists {
			artists = append(artists, a.Name)
		}

		tracks = append(tracks, CatalogTrack{
			ID:         string(t.ID),
			Title:      t.Name,
			Artist:     strings.Join(artists, ", "),
			Album:      t.Album.Name,
			DurationMs: int64(t.Duration),
			URL:        t.ExternalURLs["spotify"],
		})
	}

	return tracks, nil
}
