package models

import "time"

// Score represents a single karaoke performance
type Score struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"userId"`
	Player     string    `json:"player"`
	SongID     *string   `json:"songId,omitempty"` // set when the title matched a library song
	SongTitle  string    `json:"songTitle"`
	Score      int64     `json:"score"`
	NotesHit   int64     `json:"notesHit"`
	NotesTotal int64     `json:"notesTotal"`
	Accuracy   float64   `json:"accuracy"` // percentage, 0-100
	CreatedAt  time.Time `json:"createdAt"`
}

// PlayerStats aggregates a player's performances
type PlayerStats struct {
	Player      string  `json:"player"`
	Plays       int64   `json:"plays"`
	BestScore   int64   `json:"bestScore"`
	TotalScore  int64   `json:"totalScore"`
	AvgAccuracy float64 `json:"avgAccuracy"`
}
