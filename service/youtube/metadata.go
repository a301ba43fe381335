package youtube

import (
	"context"
	"log"
	"os"
	"sync"
	"time"

	ytclient "github.com/kkdai/youtube/v2"
	"golang.org/x/time/rate"
)

// VideoMetadata is what the library needs to know about a video
type VideoMetadata struct {
	VideoID    string
	Title      string
	Author     string
	DurationMs int64
}

// cacheEntry holds the cached data and its expiration time.
type cacheEntry struct {
	metadata  *VideoMetadata
	expiresAt time.Time
}

// MetadataService fetches video metadata with rate limiting and caching
type MetadataService struct {
	client     ytclient.Client
	limiter    *rate.Limiter
	cache      map[string]cacheEntry
	cacheMutex sync.RWMutex
	cacheTTL   time.Duration
	logger     *log.Logger
}

// NewMetadataService creates a new service instance with rate limiting and caching.
func NewMetadataService(cacheTTL time.Duration) *MetadataService {
	// Keep lookups to 1 request per second
	limiter := rate.NewLimiter(rate.Every(time.Second), 1)
	logger := log.New(os.Stdout, "youtube: ", log.LstdFlags|log.Lmsgprefix)

	if cacheTTL <= 0 {
		cacheTTL = time.Hour
	}

	return &MetadataService{
		client:   ytclient.Client{},
		limiter:  limiter,
		cache:    make(map[string]cacheEntry),
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// Lookup fetches metadata for a video ID, serving from cache when fresh
func (s *MetadataService) Lookup(ctx context.Context, videoID string) (*VideoMetadata, error) {
	if !IsValidVideoID(videoID) {
		return nil, ErrInvalidVideoID
	}

	s.cacheMutex.RLock()
	entry, found := s.cache[videoID]
	s.cacheMutex.RUnlock()

	if found && time.Now().Before(entry.expiresAt) {
		return entry.metadata, nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	video, err := s.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, err
	}

	metadata := &VideoMetadata{
		VideoID:    videoID,
		Title:      video.Title,
		Author:     video.Author,
		DurationMs: video.Duration.Milliseconds(),
	}

	s.cacheMutex.Lock()
	s.cache[videoID] = cacheEntry{
		metadata:  metadata,
		expiresAt: time.Now().Add(s.cacheTTL),
	}
	s.cacheMutex.Unlock()

	s.logger.Printf("fetched metadata for %s: %q by %q", videoID, video.Title, video.Author)

	return metadata, nil
}
