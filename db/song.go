package db

import (
	"database/sql"
	"time"

	"github.com/jingletube/jingletube/models"
)

// CreateSong stores a library song. The caller supplies the slug ID;
// inserting an existing slug returns ErrDuplicateSong.
func (db *DB) CreateSong(song *models.Song) error {
	now := time.Now()

	_, err := db.Exec(`
	INSERT INTO songs (id, title, artist, youtube_id, file_path, duration_ms, added_by, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		song.ID, song.Title, song.Artist, song.YouTubeID, song.FilePath,
		song.DurationMs, song.AddedBy, now)

	if err != nil {
		if isConstraintErr(err) {
			return ErrDuplicateSong
		}
		return err
	}

	song.CreatedAt = now
	return nil
}

const songColumns = `id, title, artist, youtube_id, file_path, duration_ms, added_by, created_at`

func scanSongRows(rows *sql.Rows) ([]*models.Song, error) {
	defer rows.Close()

	var songs []*models.Song

	for rows.Next() {
		song := &models.Song{}
		err := rows.Scan(
			&song.ID, &song.Title, &song.Artist, &song.YouTubeID,
			&song.FilePath, &song.DurationMs, &song.AddedBy, &song.CreatedAt)

		if err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}

	return songs, rows.Err()
}

// GetSong retrieves a song by slug ID
func (db *DB) GetSong(id string) (*models.Song, error) {
	song := &models.Song{}

	err := db.QueryRow(`
	SELECT `+songColumns+` FROM songs WHERE id = ?`, id).Scan(
		&song.ID, &song.Title, &song.Artist, &song.YouTubeID,
		&song.FilePath, &song.DurationMs, &song.AddedBy, &song.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrSongNotFound
	}

	if err != nil {
		return nil, err
	}

	return song, nil
}

// ListSongs returns library songs in insertion order, newest first
func (db *DB) ListSongs(limit int) ([]*models.Song, error) {
	rows, err := db.Query(`
	SELECT `+songColumns+`
	FROM songs
	ORDER BY created_at DESC
	LIMIT ?`, limit)

	if err != nil {
		return nil, err
	}

	return scanSongRows(rows)
}

// AllSongs returns the whole library. Used for fuzzy matching where
// candidate filtering happens in the service layer.
func (db *DB) AllSongs() ([]*models.Song, error) {
	rows, err := db.Query(`SELECT ` + songColumns + ` FROM songs ORDER BY id`)
	if err != nil {
		return nil, err
	}

	return scanSongRows(rows)
}

// CountSongs returns the library size
func (db *DB) CountSongs() (int64, error) {
	var count int64
	err := db.QueryRow(`SELECT COUNT(*) FROM songs`).Scan(&count)
	return count, err
}

// SearchSongs does a case-insensitive substring prefilter on title and artist
func (db *DB) SearchSongs(query string, limit int) ([]*models.Song, error) {
	pattern := "%" + query + "%"

	rows, err := db.Query(`
	SELECT `+songColumns+`
	FROM songs
	WHERE title LIKE ? COLLATE NOCASE OR artist LIKE ? COLLATE NOCASE
	ORDER BY artist, title
	LIMIT ?`, pattern, pattern, limit)

	if err != nil {
		return nil, err
	}

	return scanSongRows(rows)
}
