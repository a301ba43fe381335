package db

import (
	"database/sql"
	"time"

	"github.com/jingletube/jingletube/models"
)

// SaveScore stores a performance score
func (db *DB) SaveScore(score *models.Score) (int64, error) {
	now := time.Now()

	result, err := db.Exec(`
	INSERT INTO scores (user_id, player, song_id, song_title, score, notes_hit, notes_total, accuracy, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		score.UserID, score.Player, score.SongID, score.SongTitle,
		score.Score, score.NotesHit, score.NotesTotal, score.Accuracy, now)

	if err != nil {
		return 0, err
	}

	score.CreatedAt = now
	return result.LastInsertId()
}

const scoreColumns = `id, user_id, player, song_id, song_title, score, notes_hit, notes_total, accuracy, created_at`

func scanScoreRows(rows *sql.Rows) ([]*models.Score, error) {
	defer rows.Close()

	var scores []*models.Score

	for rows.Next() {
		s := &models.Score{}
		err := rows.Scan(
			&s.ID, &s.UserID, &s.Player, &s.SongID, &s.SongTitle,
			&s.Score, &s.NotesHit, &s.NotesTotal, &s.Accuracy, &s.CreatedAt)

		if err != nil {
			return nil, err
		}
		scores = append(scores, s)
	}

	return scores, rows.Err()
}

// TopScores returns the highest scores across all players, best first.
// Ties break on older performance first.
func (db *DB) TopScores(limit int) ([]*models.Score, error) {
	rows, err := db.Query(`
	SELECT `+scoreColumns+`
	FROM scores
	ORDER BY score DESC, created_at ASC
	LIMIT ?`, limit)

	if err != nil {
		return nil, err
	}

	return scanScoreRows(rows)
}

// GetScoresByUser returns a user's own performances, newest first
func (db *DB) GetScoresByUser(userID int64, limit int) ([]*models.Score, error) {
	rows, err := db.Query(`
	SELECT `+scoreColumns+`
	FROM scores
	WHERE user_id = ?
	ORDER BY created_at DESC
	LIMIT ?`, userID, limit)

	if err != nil {
		return nil, err
	}

	return scanScoreRows(rows)
}

// GetPlayerStats aggregates all performances registered under a player name
func (db *DB) GetPlayerStats(player string) (*models.PlayerStats, error) {
	stats := &models.PlayerStats{Player: player}

	err := db.QueryRow(`
	SELECT COUNT(*), COALESCE(MAX(score), 0), COALESCE(SUM(score), 0), COALESCE(AVG(accuracy), 0)
	FROM scores
	WHERE player = ?`, player).Scan(
		&stats.Plays, &stats.BestScore, &stats.TotalScore, &stats.AvgAccuracy)

	if err != nil {
		return nil, err
	}

	return stats, nil
}
