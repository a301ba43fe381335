package library

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/jingletube/jingletube/db"
	"github.com/jingletube/jingletube/models"
	"github.com/jingletube/jingletube/service/youtube"
)

var ErrMissingFields = errors.New("title and artist are required")

// matchThreshold is the minimum Jaro-Winkler similarity for a fuzzy
// title match against the library.
const matchThreshold = 0.85

// Service manages the karaoke song library
type Service struct {
	database *db.DB
	metadata *youtube.MetadataService
}

func NewService(database *db.DB, metadata *youtube.MetadataService) *Service {
	return &Service{
		database: database,
		metadata: metadata,
	}
}

// SongID builds the library slug for a title/artist pair
func SongID(title, artist string) string {
	return strings.ToLower(strings.ReplaceAll(artist+"_"+title, " ", "_"))
}

// AddSongInput is the request to add a library song
type AddSongInput struct {
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	YouTubeURL string `json:"youtubeUrl,omitempty"`
	FilePath   string `json:"filePath,omitempty"`
}

// AddSong validates and stores a new library song. A YouTube URL, when
// given, is parsed for its video ID; missing title or artist are filled
// from the video metadata when a lookup succeeds.
func (s *Service) AddSong(ctx context.Context, userID int64, input AddSongInput) (*models.Song, error) {
	title := strings.TrimSpace(input.Title)
	artist := strings.TrimSpace(input.Artist)

	var videoID *string
	var durationMs *int64

	if input.YouTubeURL != "" {
		id, err := youtube.ExtractVideoID(input.YouTubeURL)
		if err != nil {
			return nil, err
		}
		videoID = &id

		if s.metadata != nil {
			meta, err := s.metadata.Lookup(ctx, id)
			if err != nil {
				// Lookup failures don't block the add; the caller's
				// title/artist still have to carry the song.
				log.Printf("library: metadata lookup failed for %s: %v", id, err)
			} else {
				if title == "" {
					title = meta.Title
				}
				if artist == "" {
					artist = meta.Author
				}
				if meta.DurationMs > 0 {
					durationMs = &meta.DurationMs
				}
			}
		}
	}

	if title == "" || artist == "" {
		return nil, ErrMissingFields
	}

	song := &models.Song{
		ID:         SongID(title, artist),
		Title:      title,
		Artist:     artist,
		YouTubeID:  videoID,
		DurationMs: durationMs,
		AddedBy:    userID,
	}
	if input.FilePath != "" {
		fp := input.FilePath
		song.FilePath = &fp
	}

	if err := s.database.CreateSong(song); err != nil {
		return nil, err
	}

	return song, nil
}

// ListSongs returns the newest library entries
func (s *Service) ListSongs(limit int) ([]*models.Song, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.database.ListSongs(limit)
}

// GetSong retrieves a song by slug
func (s *Service) GetSong(id string) (*models.Song, error) {
	return s.database.GetSong(id)
}

// scoredSong pairs a song with its similarity to the query
type scoredSong struct {
	song  *models.Song
	score float64
}

// Search ranks library songs against a free-text query. A substring
// prefilter narrows candidates; Jaro-Winkler similarity orders them.
func (s *Service) Search(query string, limit int) ([]*models.Song, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	candidates, err := s.database.SearchSongs(query, 200)
	if err != nil {
		return nil, err
	}

	jw := metrics.NewJaroWinkler()
	q := strings.ToLower(query)

	scored := make([]scoredSong, 0, len(candidates))
	for _, song := range candidates {
		target := strings.ToLower(song.Artist + " " + song.Title)
		scored = append(scored, scoredSong{
			song:  song,
			score: strutil.Similarity(q, target, jw),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}

	results := make([]*models.Song, len(scored))
	for i, ss := range scored {
		results[i] = ss.song
	}

	return results, nil
}

// MatchTitle finds the library song whose title best matches an
// arbitrary string, or nil when nothing clears the threshold.
func (s *Service) MatchTitle(title string) (*models.Song, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, nil
	}

	songs, err := s.database.AllSongs()
	if err != nil {
		return nil, err
	}

	jw := metrics.NewJaroWinkler()
	q := strings.ToLower(title)

	var best *models.Song
	var bestScore float64

	for _, song := range songs {
		score := strutil.Similarity(q, strings.ToLower(song.Title), jw)
		if score > bestScore && score >= matchThreshold {
			bestScore = score
			best = song
		}
	}

	return best, nil
}

// Favorites

func (s *Service) AddFavorite(userID int64, songID string) error {
	// make sure the song exists so favorites can't dangle
	if _, err := s.database.GetSong(songID); err != nil {
		return err
	}
	return s.database.AddFavorite(userID, songID)
}

func (s *Service) RemoveFavorite(userID int64, songID string) error {
	return s.database.RemoveFavorite(userID, songID)
}

func (s *Service) IsFavorite(userID int64, songID string) (bool, error) {
	return s.database.IsFavorite(userID, songID)
}

func (s *Service) ListFavorites(userID int64) ([]*models.Song, error) {
	return s.database.ListFavorites(userID)
}
