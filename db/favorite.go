package db

import (
	"time"

	"github.com/jingletube/jingletube/models"
)

// AddFavorite marks a song as a user's favorite. Idempotent.
func (db *DB) AddFavorite(userID int64, songID string) error {
	_, err := db.Exec(`
	INSERT OR IGNORE INTO favorites (user_id, song_id, created_at)
	VALUES (?, ?, ?)`, userID, songID, time.Now())

	return err
}

// RemoveFavorite unmarks a favorite. Removing a non-favorite is a no-op.
func (db *DB) RemoveFavorite(userID int64, songID string) error {
	_, err := db.Exec(`
	DELETE FROM favorites WHERE user_id = ? AND song_id = ?`, userID, songID)

	return err
}

// IsFavorite reports whether a song is in the user's favorites
func (db *DB) IsFavorite(userID int64, songID string) (bool, error) {
	var count int

	err := db.QueryRow(`
	SELECT COUNT(*) FROM favorites WHERE user_id = ? AND song_id = ?`,
		userID, songID).Scan(&count)

	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// ListFavorites returns a user's favorite songs, most recently added first
func (db *DB) ListFavorites(userID int64) ([]*models.Song, error) {
	rows, err := db.Query(`
	SELECT s.id, s.title, s.artist, s.youtube_id, s.file_path, s.duration_ms, s.added_by, s.created_at
	FROM favorites f
	JOIN songs s ON s.id = f.song_id
	WHERE f.user_id = ?
	ORDER BY f.created_at DESC`, userID)

	if err != nil {
		return nil, err
	}

	return scanSongRows(rows)
}
