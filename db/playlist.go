package db

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jingletube/jingletube/models"
)

var (
	ErrPlaylistNotFound = errors.New("playlist not found")
	ErrNotPlaylistOwner = errors.New("playlist belongs to another user")
)

// CreatePlaylist stores a new empty playlist. The caller supplies the ID.
func (db *DB) CreatePlaylist(playlist *models.Playlist) error {
	now := time.Now()

	_, err := db.Exec(`
	INSERT INTO playlists (id, user_id, name, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?)`,
		playlist.ID, playlist.UserID, playlist.Name, now, now)

	if err != nil {
		return err
	}

	playlist.CreatedAt = now
	playlist.UpdatedAt = now
	return nil
}

// GetPlaylist retrieves a playlist and its songs in position order
func (db *DB) GetPlaylist(id string) (*models.Playlist, error) {
	playlist := &models.Playlist{}

	err := db.QueryRow(`
	SELECT id, user_id, name, created_at, updated_at
	FROM playlists WHERE id = ?`, id).Scan(
		&playlist.ID, &playlist.UserID, &playlist.Name,
		&playlist.CreatedAt, &playlist.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrPlaylistNotFound
	}

	if err != nil {
		return nil, err
	}

	rows, err := db.Query(`
	SELECT s.id, s.title, s.artist, s.youtube_id, s.file_path, s.duration_ms, s.added_by, s.created_at
	FROM playlist_songs ps
	JOIN songs s ON s.id = ps.song_id
	WHERE ps.playlist_id = ?
	ORDER BY ps.position`, id)

	if err != nil {
		return nil, err
	}

	songs, err := scanSongRows(rows)
	if err != nil {
		return nil, err
	}

	for _, s := range songs {
		playlist.Songs = append(playlist.Songs, *s)
	}

	return playlist, nil
}

// ListPlaylists returns a user's playlists without song bodies
func (db *DB) ListPlaylists(userID int64) ([]*models.Playlist, error) {
	rows, err := db.Query(`
	SELECT id, user_id, name, created_at, updated_at
	FROM playlists
	WHERE user_id = ?
	ORDER BY updated_at DESC`, userID)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var playlists []*models.Playlist

	for rows.Next() {
		p := &models.Playlist{}
		err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, p)
	}

	return playlists, rows.Err()
}

// DeletePlaylist removes a playlist and its song entries
func (db *DB) DeletePlaylist(id string) error {
	if _, err := db.Exec(`DELETE FROM playlist_songs WHERE playlist_id = ?`, id); err != nil {
		return err
	}

	result, err := db.Exec(`DELETE FROM playlists WHERE id = ?`, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrPlaylistNotFound
	}

	return nil
}

// AddSongToPlaylist appends a song at the next free position.
// Adding a song twice is a no-op.
func (db *DB) AddSongToPlaylist(playlistID, songID string) error {
	now := time.Now()

	_, err := db.Exec(`
	INSERT OR IGNORE INTO playlist_songs (playlist_id, song_id, position, added_at)
	VALUES (?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM playlist_songs WHERE playlist_id = ?), ?)`,
		playlistID, songID, playlistID, now)

	if err != nil {
		return err
	}

	_, err = db.Exec(`UPDATE playlists SET updated_at = ? WHERE id = ?`, now, playlistID)
	return err
}

// RemoveSongFromPlaylist drops a song from a playlist
func (db *DB) RemoveSongFromPlaylist(playlistID, songID string) error {
	_, err := db.Exec(`
	DELETE FROM playlist_songs WHERE playlist_id = ? AND song_id = ?`,
		playlistID, songID)

	if err != nil {
		return err
	}

	_, err = db.Exec(`UPDATE playlists SET updated_at = ? WHERE id = ?`, time.Now(), playlistID)
	return err
}
