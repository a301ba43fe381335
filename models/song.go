package models

import "time"

// Song represents an entry in the karaoke library
type Song struct {
	ID         string    `json:"id"` // artist_title slug
	Title      string    `json:"title"`
	Artist     string    `json:"artist"`
	YouTubeID  *string   `json:"youtubeId,omitempty"`
	FilePath   *string   `json:"filePath,omitempty"`
	DurationMs *int64    `json:"durationMs,omitempty"`
	AddedBy    int64     `json:"addedBy"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Playlist is a user-owned ordered collection of songs
type Playlist struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"userId"`
	Name      string    `json:"name"`
	Songs     []Song    `json:"songs,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
