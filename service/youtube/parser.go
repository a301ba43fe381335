package youtube

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var ErrInvalidVideoID = errors.New("invalid YouTube URL or video ID")

// URL patterns that carry an 11-character video ID
var idPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/watch\?.*v=([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtu\.be/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/embed/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube-nocookie\.com/embed/([a-zA-Z0-9_-]{11})`),
}

var videoIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)

// URL templates per form
var baseURLs = map[string]string{
	"video":    "https://www.youtube.com/watch?v=",
	"short":    "https://youtu.be/",
	"embed":    "https://www.youtube.com/embed/",
	"nocookie": "https://www.youtube-nocookie.com/embed/",
}

// Thumbnail qualities served by img.youtube.com
var thumbnailQualities = []string{"default", "mqdefault", "hqdefault", "sddefault", "maxresdefault"}

// VideoInfo is the full set of URLs derived from a single video ID
type VideoInfo struct {
	VideoID       string            `json:"videoId"`
	VideoURL      string            `json:"videoUrl"`
	ShortURL      string            `json:"shortUrl"`
	EmbedURL      string            `json:"embedUrl"`
	NocookieURL   string            `json:"nocookieUrl"`
	ThumbnailURL  string            `json:"thumbnailUrl"`
	AllThumbnails map[string]string `json:"allThumbnails"`
}

// ExtractVideoID pulls the video ID out of any supported YouTube URL
// form, or validates the input as a bare ID.
func ExtractVideoID(urlOrID string) (string, error) {
	urlOrID = strings.TrimSpace(urlOrID)
	if urlOrID == "" {
		return "", ErrInvalidVideoID
	}

	if videoIDPattern.MatchString(urlOrID) {
		return urlOrID, nil
	}

	for _, pattern := range idPatterns {
		if m := pattern.FindStringSubmatch(urlOrID); m != nil {
			return m[1], nil
		}
	}

	return "", ErrInvalidVideoID
}

// IsValidVideoID reports whether a string is a well-formed video ID
func IsValidVideoID(videoID string) bool {
	return videoIDPattern.MatchString(videoID)
}

// GenerateURL builds a YouTube URL of the given form
// ("video", "short", "embed", "nocookie") from a video ID.
func GenerateURL(videoID, urlType string) (string, error) {
	if !IsValidVideoID(videoID) {
		return "", ErrInvalidVideoID
	}

	base, ok := baseURLs[urlType]
	if !ok {
		return "", fmt.Errorf("unknown URL type %q", urlType)
	}

	return base + videoID, nil
}

// GenerateThumbnailURL builds a thumbnail URL at the given quality
// (default, mqdefault, hqdefault, sddefault, maxresdefault).
func GenerateThumbnailURL(videoID, quality string) (string, error) {
	if !IsValidVideoID(videoID) {
		return "", ErrInvalidVideoID
	}

	for _, q := range thumbnailQualities {
		if q == quality {
			return fmt.Sprintf("https://img.youtube.com/vi/%s/%s.jpg", videoID, quality), nil
		}
	}

	return "", fmt.Errorf("unknown thumbnail quality %q", quality)
}

// AllThumbnailURLs returns every thumbnail URL keyed by quality
func AllThumbnailURLs(videoID string) (map[string]string, error) {
	if !IsValidVideoID(videoID) {
		return nil, ErrInvalidVideoID
	}

	urls := make(map[string]string, len(thumbnailQualities))
	for _, q := range thumbnailQualities {
		urls[q] = fmt.Sprintf("https://img.youtube.com/vi/%s/%s.jpg", videoID, q)
	}

	return urls, nil
}

// Parse extracts the video ID from a URL and derives the full info set
func Parse(rawURL string) (*VideoInfo, error) {
	videoID, err := ExtractVideoID(rawURL)
	if err != nil {
		return nil, err
	}

	info := &VideoInfo{VideoID: videoID}
	info.VideoURL, _ = GenerateURL(videoID, "video")
	info.ShortURL, _ = GenerateURL(videoID, "short")
	info.EmbedURL, _ = GenerateURL(videoID, "embed")
	info.NocookieURL, _ = GenerateURL(videoID, "nocookie")
	info.ThumbnailURL, _ = GenerateThumbnailURL(videoID, "hqdefault")
	info.AllThumbnails, _ = AllThumbnailURLs(videoID)

	return info, nil
}

// VideoParameters returns the query parameters of a YouTube URL
func VideoParameters(rawURL string) (url.Values, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}

	host := parsed.Hostname()
	if !strings.Contains(host, "youtube.com") && !strings.Contains(host, "youtu.be") {
		return nil, ErrInvalidVideoID
	}

	return parsed.Query(), nil
}
